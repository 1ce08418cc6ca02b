package models

import (
	"strings"
	"time"
)

// Normalize trims the input. Blank label/carrier become nil.
func (in ShipmentCreateInput) Normalize() (ShipmentCreateInput, error) {
	out := ShipmentCreateInput{
		TrackingNumber: strings.TrimSpace(in.TrackingNumber),
		Label:          NullableTrim(in.Label),
		Carrier:        NullableTrim(in.Carrier),
	}
	if out.TrackingNumber == "" {
		return ShipmentCreateInput{}, NewValidationError("tracking_number", "Tracking number is required.")
	}
	return out, nil
}

// Normalize проверяет ручное событие: description обязателен, status вне
// канонического набора -> unknown, пустое время -> now.
func (ev ManualEvent) Normalize(now time.Time) (ManualEvent, error) {
	out := ManualEvent{
		EventTime:   ev.EventTime,
		Location:    NullableTrim(ev.Location),
		Description: strings.TrimSpace(ev.Description),
		Status:      string(ParseStatus(ev.Status)),
	}
	if out.Description == "" {
		return ManualEvent{}, NewValidationError("description", "Event description is required.")
	}
	if out.EventTime.IsZero() {
		out.EventTime = now
	}
	out.EventTime = out.EventTime.UTC().Truncate(time.Second)
	return out, nil
}
