package models

import (
	"strings"
	"time"
)

// ShipmentStatus — нормализованный статус посылки, не зависящий от словаря перевозчика.
type ShipmentStatus string

const (
	StatusCreated        ShipmentStatus = "created"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusException      ShipmentStatus = "exception"
	StatusUnknown        ShipmentStatus = "unknown"
)

var allStatuses = map[ShipmentStatus]struct{}{
	StatusCreated:        {},
	StatusInTransit:      {},
	StatusOutForDelivery: {},
	StatusDelivered:      {},
	StatusException:      {},
	StatusUnknown:        {},
}

// Valid reports whether s is one of the six canonical statuses.
func (s ShipmentStatus) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// ParseStatus принимает только канонические значения, всё остальное -> unknown.
func ParseStatus(raw string) ShipmentStatus {
	s := ShipmentStatus(strings.TrimSpace(raw))
	if s.Valid() {
		return s
	}
	return StatusUnknown
}

// EventTimeLayout: формат event_time при отображении и в API.
const EventTimeLayout = "2006-01-02 15:04:05"

type Shipment struct {
	ID             uint64         `json:"id"`
	OwnerID        uint64         `json:"owner_id"`
	TrackingNumber string         `json:"tracking_number"`
	Carrier        *string        `json:"carrier,omitempty"`
	Label          *string        `json:"label,omitempty"`
	Status         ShipmentStatus `json:"status"`
	LastEventAt    *time.Time     `json:"last_event_at,omitempty"`
	Archived       bool           `json:"archived"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Только для списков: location последнего события.
	LastLocation *string `json:"last_location,omitempty"`
}

type TrackingEvent struct {
	ID          uint64    `json:"id"`
	ShipmentID  uint64    `json:"shipment_id"`
	EventTime   time.Time `json:"event_time"`
	Location    *string   `json:"location,omitempty"`
	Description string    `json:"description"`
	RawPayload  *string   `json:"raw_payload,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventTimeText returns the event time as "YYYY-MM-DD HH:MM:SS" in UTC.
func (e *TrackingEvent) EventTimeText() string {
	return e.EventTime.UTC().Format(EventTimeLayout)
}

// LocationKey is the location part of the dedup identity key.
func (e *TrackingEvent) LocationKey() string {
	if e.Location == nil {
		return ""
	}
	return *e.Location
}

type ShipmentCreateInput struct {
	TrackingNumber string
	Label          *string
	Carrier        *string
}

// ManualEvent: событие, добавленное пользователем руками.
type ManualEvent struct {
	EventTime   time.Time
	Location    *string
	Description string
	Status      string
}

// MergeInput: нормализованный результат синхронизации для атомарного merge.
type MergeInput struct {
	OwnerID    uint64
	ShipmentID uint64
	Status     ShipmentStatus
	Carrier    string
	Events     []*TrackingEvent
}

type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
