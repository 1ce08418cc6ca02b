package fake

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/models"
)

const Provider = "fake"

// FakeClient — офлайн "перевозчик" для демо и тестов.
// Статус детерминирован по трек-номеру: часть треков станет delivered.
type FakeClient struct {
	now func() time.Time
}

func New() *FakeClient {
	return &FakeClient{now: func() time.Time { return time.Now().UTC() }}
}

func (f *FakeClient) Provider() string { return Provider }

func (f *FakeClient) FetchTracking(ctx context.Context, trackingNumber, carrierHint string) (carrier.SyncResult, error) {
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if trackingNumber == "" {
		return carrier.SyncResult{}, carrier.ErrTrackingNumberRequired
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	v := h.Sum32()

	// события на фиксированных часах от "сегодня", чтобы повторный sync не плодил дубликаты
	day := f.now().Truncate(24 * time.Hour)
	events := []*models.TrackingEvent{
		{EventTime: day, Location: ptr("Origin facility"), Description: "Shipment information received"},
		{EventTime: day.Add(6 * time.Hour), Location: ptr("Sorting hub"), Description: "Departed facility"},
	}

	// 20% треков считаем доставленными
	status := models.StatusInTransit
	if v%5 == 0 {
		status = models.StatusDelivered
		events = append(events, &models.TrackingEvent{
			EventTime:   day.Add(12 * time.Hour),
			Location:    ptr("Destination"),
			Description: "Delivered",
		})
	}

	carrierCode := strings.TrimSpace(carrierHint)
	if carrierCode == "" {
		carrierCode = Provider
	}

	return carrier.SyncResult{
		Status:  status,
		Carrier: carrierCode,
		Events:  events,
	}, nil
}

func ptr(s string) *string { return &s }
