package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	require.Equal(t, StatusDelivered, ParseStatus("delivered"))
	require.Equal(t, StatusInTransit, ParseStatus("  in_transit "))
	require.Equal(t, StatusUnknown, ParseStatus("IN_TRANSIT"))
	require.Equal(t, StatusUnknown, ParseStatus(""))
	require.Equal(t, StatusUnknown, ParseStatus("lost"))
}

func TestTrackingEvent_EventTimeText(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	e := &TrackingEvent{EventTime: time.Date(2025, 3, 1, 12, 30, 5, 0, loc)}
	require.Equal(t, "2025-03-01 09:30:05", e.EventTimeText())
	require.Equal(t, "", e.LocationKey())
}

func TestNullableTrim(t *testing.T) {
	require.Nil(t, NullableTrim(nil))
	blank := "   "
	require.Nil(t, NullableTrim(&blank))
	v := " UPS "
	require.Equal(t, "UPS", *NullableTrim(&v))
}

func TestShipmentCreateInput_Normalize(t *testing.T) {
	label := "  "
	carrier := " DHL "
	in, err := ShipmentCreateInput{TrackingNumber: " AB1 ", Label: &label, Carrier: &carrier}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "AB1", in.TrackingNumber)
	require.Nil(t, in.Label)
	require.Equal(t, "DHL", *in.Carrier)

	_, err = ShipmentCreateInput{TrackingNumber: "   "}.Normalize()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "tracking_number", ve.Field)
}

func TestManualEvent_Normalize(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 500, time.UTC)

	ev, err := ManualEvent{Description: " Picked up ", Status: "teleported"}.Normalize(now)
	require.NoError(t, err)
	require.Equal(t, "Picked up", ev.Description)
	require.Equal(t, string(StatusUnknown), ev.Status)
	require.Equal(t, now.Truncate(time.Second), ev.EventTime)

	_, err = ManualEvent{Description: "  "}.Normalize(now)
	require.Error(t, err)
}
