package ship24

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/models"
)

func TestClient_FetchTracking_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/trackers/track", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "1Z999", body["trackingNumber"])
		require.Equal(t, "dhl", body["courierCode"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "data": {
    "trackings": [{
      "tracker": {"trackingNumber": "1Z999"},
      "shipment": {"statusMilestone": "out_for_delivery"},
      "courierCode": "dhl",
      "events": [
        {"status": "Out for delivery", "occurrenceDatetime": "2025-03-02T08:00:00Z", "location": {"city": "Berlin", "countryCode": "DE"}},
        {"status": "Picked up", "occurrenceDatetime": "2025-03-01T10:00:00+02:00", "location": "Leipzig"},
        {"status": "", "occurrenceDatetime": "2025-03-01T11:00:00Z"}
      ]
    }]
  }
}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", 0)
	res, err := c.FetchTracking(context.Background(), " 1z999 ", "DHL Express")
	require.NoError(t, err)
	require.Equal(t, models.StatusOutForDelivery, res.Status)
	require.Equal(t, "dhl", res.Carrier)
	require.Len(t, res.Events, 2)

	require.Equal(t, "Picked up", res.Events[0].Description)
	require.Equal(t, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), res.Events[0].EventTime)
	require.Equal(t, "Leipzig", *res.Events[0].Location)
	require.Equal(t, "Berlin, DE", *res.Events[1].Location)
	require.NotNil(t, res.Events[1].RawPayload)
}

func TestClient_FetchTracking_NoKeyMakesNoCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, "  ", 0)
	_, err := c.FetchTracking(context.Background(), "1Z999", "")
	require.Error(t, err)
	require.True(t, carrier.IsConfigurationError(err))
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestClient_FetchTracking_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid API key"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", 0)
	_, err := c.FetchTracking(context.Background(), "1Z999", "")
	require.Error(t, err)

	var pe *carrier.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	require.Equal(t, "Invalid API key", pe.Error())
}

func TestClient_FetchTracking_EmptyEventsSynthesizesOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"tracking":{"trackingNumber":"AB1","statusMilestone":"in_transit","events":[]}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key", 0)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	res, err := c.FetchTracking(context.Background(), "ab1", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusInTransit, res.Status)
	require.Len(t, res.Events, 1)
	require.Equal(t, "Tracking created", res.Events[0].Description)
	require.Equal(t, fixed, res.Events[0].EventTime)
}

func TestClient_FetchTracking_NoTrackingObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"foo":"bar"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "key", 0).FetchTracking(context.Background(), "AB1", "")
	var pe *carrier.ProviderError
	require.ErrorAs(t, err, &pe)
}

func TestNormalizeCourierCode(t *testing.T) {
	require.Equal(t, "dhl", NormalizeCourierCode("DHL Express"))
	require.Equal(t, "dhl-ecommerce", NormalizeCourierCode("dhl ecommerce"))
	require.Equal(t, "usps", NormalizeCourierCode("United States Postal Service"))
	require.Equal(t, "royal-mail", NormalizeCourierCode("Royal Mail"))
	require.Equal(t, "", NormalizeCourierCode("  "))
}
