package normalize

import (
	"regexp"
	"testing"
	"time"

	"github.com/BearBump/ParcelTrack/internal/models"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 500, time.UTC)

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "b", FirstNonEmpty("", "  ", " b ", "c"))
	require.Equal(t, "", FirstNonEmpty("", " "))
	require.Equal(t, "", FirstNonEmpty())
}

func TestLocation(t *testing.T) {
	require.Nil(t, Location("", "  "))
	require.Equal(t, "Berlin, DE", *Location("Berlin", "", "DE"))
	require.Equal(t, "Berlin, BE, DE", *Location(" Berlin", "BE", "Berlin", "DE"))
}

func TestParseTime(t *testing.T) {
	cases := map[string]string{
		"2025-01-02T03:04:05Z":          "2025-01-02 03:04:05",
		"2025-01-02T03:04:05.987Z":      "2025-01-02 03:04:05",
		"2025-01-02T06:04:05+03:00":     "2025-01-02 03:04:05",
		"2025-01-02T06:04:05+0300":      "2025-01-02 03:04:05",
		"2025-01-02T03:04:05":           "2025-01-02 03:04:05",
		"2025-01-02 03:04":              "2025-01-02 03:04:00",
		"2025-01-02T03:04":              "2025-01-02 03:04:00",
		"2025-01-02 03:04:05":           "2025-01-02 03:04:05",
		"2025-01-02":                    "2025-01-02 00:00:00",
		"Thu, 02 Jan 2025 03:04:05 +0000": "2025-01-02 03:04:05",
	}
	for in, want := range cases {
		require.Equal(t, want, FormatTime(ParseTime(in, now)), in)
	}
}

func TestParseTime_FallbackToNow(t *testing.T) {
	want := now.Truncate(time.Second)
	require.Equal(t, want, ParseTime("", now))
	require.Equal(t, want, ParseTime("yesterday-ish", now))
	require.Equal(t, want, ParseTime("2025-13-45 99:99:99", now))
}

func TestFinalize_SortsAndDropsEmpty(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	in := []*models.TrackingEvent{
		{EventTime: t3, Description: "Delivered"},
		{EventTime: t1, Description: "  "},
		nil,
		{EventTime: t1, Description: "Accepted"},
		{EventTime: t2, Description: " Departed "},
	}
	out := Finalize(in, "Tracking created", nil, now)
	require.Len(t, out, 3)
	require.Equal(t, "Accepted", out[0].Description)
	require.Equal(t, "Departed", out[1].Description)
	require.Equal(t, "Delivered", out[2].Description)
	for i := 1; i < len(out); i++ {
		require.False(t, out[i].EventTime.Before(out[i-1].EventTime))
	}
}

func TestFinalize_EmptySynthesizesFallback(t *testing.T) {
	payload := `{"status":"in_transit"}`
	out := Finalize(nil, "Tracking created", &payload, now)
	require.Len(t, out, 1)
	require.Equal(t, "Tracking created", out[0].Description)
	require.Equal(t, now.Truncate(time.Second), out[0].EventTime)
	require.Equal(t, payload, *out[0].RawPayload)
	require.Nil(t, out[0].Location)

	out = Finalize(nil, "", nil, now)
	require.Equal(t, "Tracking update", out[0].Description)
}

func TestStatusTable_Map(t *testing.T) {
	tbl := StatusTable{
		"in_transit":       models.StatusInTransit,
		"out_for_delivery": models.StatusOutForDelivery,
	}
	require.Equal(t, models.StatusInTransit, tbl.Map("In Transit"))
	require.Equal(t, models.StatusOutForDelivery, tbl.Map(" out-for-delivery "))
	require.Equal(t, models.StatusUnknown, tbl.Map("teleported"))
	require.Equal(t, models.StatusUnknown, tbl.Map(""))
}

func TestCarrierCode(t *testing.T) {
	tbl := map[string]string{"dhl express": "dhl", "dhl ecommerce": "dhl-ecommerce"}
	inv := regexp.MustCompile(`[^a-z0-9-]+`)
	require.Equal(t, "dhl", CarrierCode("DHL Express", tbl, inv))
	require.Equal(t, "dhl-ecommerce", CarrierCode(" dhl ecommerce ", tbl, inv))
	require.Equal(t, "royal-mail", CarrierCode("Royal Mail!", tbl, inv))
	require.Equal(t, "", CarrierCode("  ", tbl, inv))
	require.Equal(t, "", CarrierCode("!!!", tbl, inv))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 5))
	require.Equal(t, "ab", Truncate("abc", 2))
	require.Equal(t, "Мо", Truncate("Москва", 2))
}

func TestClassifyText(t *testing.T) {
	require.Equal(t, models.StatusDelivered, ClassifyText("Package delivered, signed by J."))
	require.Equal(t, models.StatusOutForDelivery, ClassifyText("Out for delivery"))
	require.Equal(t, models.StatusOutForDelivery, ClassifyText("", "with courier since 8am"))
	require.Equal(t, models.StatusException, ClassifyText("Held at customs"))
	require.Equal(t, models.StatusInTransit, ClassifyText("Departed facility"))
	require.Equal(t, models.StatusCreated, ClassifyText("Shipping label created"))
	require.Equal(t, models.StatusInTransit, ClassifyText("Some unrelated text"))
	require.Equal(t, models.StatusInTransit, ClassifyText())
	// delivered имеет приоритет над exception
	require.Equal(t, models.StatusDelivered, ClassifyText("failed attempt", "later delivered"))
}
