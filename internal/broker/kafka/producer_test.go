package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelTrack/internal/broker/messages"
)

type fakeWriter struct {
	last []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.last = append([]kafka.Message{}, msgs...)
	return w.err
}

func TestProducer_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := newProducerWithWriter(fw, "shipment.synced")

	require.NoError(t, p.Publish(context.Background(), "t", []byte("k"), []byte("v")))
	require.Len(t, fw.last, 1)
	require.Equal(t, "t", fw.last[0].Topic)
	require.Equal(t, []byte("k"), fw.last[0].Key)
	require.Equal(t, []byte("v"), fw.last[0].Value)
}

func TestProducer_PublishShipmentSynced(t *testing.T) {
	fw := &fakeWriter{}
	p := newProducerWithWriter(fw, "shipment.synced")

	msg := messages.ShipmentSynced{
		ShipmentID: 42,
		OwnerID:    7,
		Provider:   "ship24",
		Status:     "delivered",
		Inserted:   2,
		SyncedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishShipmentSynced(context.Background(), msg))
	require.Len(t, fw.last, 1)
	require.Equal(t, "shipment.synced", fw.last[0].Topic)
	require.Equal(t, []byte("42"), fw.last[0].Key)

	var got messages.ShipmentSynced
	require.NoError(t, json.Unmarshal(fw.last[0].Value, &got))
	require.Equal(t, msg, got)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "t")
	require.NotNil(t, p)
	require.NoError(t, p.Close())
}
