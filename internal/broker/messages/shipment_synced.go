package messages

import "time"

// ShipmentSynced публикуется после успешного merge результата синхронизации.
type ShipmentSynced struct {
	ShipmentID uint64    `json:"shipment_id"`
	OwnerID    uint64    `json:"owner_id"`
	Provider   string    `json:"provider"`
	Status     string    `json:"status"`
	Carrier    string    `json:"carrier,omitempty"`
	Inserted   int       `json:"inserted"`
	SyncedAt   time.Time `json:"synced_at"`
}
