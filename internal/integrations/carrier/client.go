package carrier

import (
	"context"

	"github.com/BearBump/ParcelTrack/internal/models"
)

// SyncResult: нормализованный ответ провайдера: канонический статус, перевозчик
// и события по возрастанию event_time.
type SyncResult struct {
	Status  models.ShipmentStatus
	Carrier string
	Events  []*models.TrackingEvent
}

type Client interface {
	Provider() string
	FetchTracking(ctx context.Context, trackingNumber, carrierHint string) (SyncResult, error)
}
