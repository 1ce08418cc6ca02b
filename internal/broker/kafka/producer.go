package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/BearBump/ParcelTrack/internal/broker/messages"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Producer struct {
	w     messageWriter
	topic string
	close func() error
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{w: w, topic: topic, close: w.Close}
}

func newProducerWithWriter(w messageWriter, topic string) *Producer {
	return &Producer{w: w, topic: topic, close: func() error { return nil }}
}

func (p *Producer) Close() error {
	return p.close()
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	}); err != nil {
		return errors.Wrap(err, "kafka publish")
	}
	return nil
}

// PublishShipmentSynced: ключ сообщения = id посылки, чтобы события одной
// посылки попадали в одну партицию.
func (p *Producer) PublishShipmentSynced(ctx context.Context, msg messages.ShipmentSynced) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal shipment synced")
	}
	return p.Publish(ctx, p.topic, []byte(strconv.FormatUint(msg.ShipmentID, 10)), b)
}
