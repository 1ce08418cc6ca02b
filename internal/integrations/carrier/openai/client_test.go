package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/models"
)

func outputTextBody(t *testing.T, text string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"output": []any{
			map[string]any{"type": "web_search_call"},
			map[string]any{"content": []any{map[string]any{"type": "output_text", "text": text}}},
		},
	})
	require.NoError(t, err)
	return b
}

func newTestClient(url string) *Client {
	c := New(Options{BaseURL: url, APIKey: "sk-test", WebSearch: true})
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClient_FetchTracking_FencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/responses", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, defaultModel, req["model"])
		require.EqualValues(t, maxOutputTokens, req["max_output_tokens"])
		require.Equal(t, "auto", req["tool_choice"])

		_, _ = w.Write(outputTextBody(t, "```json\n"+`{"status":"Out for delivery","carrier":"UPS","events":[`+
			`{"event_time":"2025-05-31 18:00","location":"  Kyiv  ","description":"Arrived at facility"},`+
			`{"event_time":"2025-05-30T07:00:00Z","location":null,"description":"Label created"},`+
			`{"event_time":"2025-05-30T08:00:00Z","description":""}]}`+"\n```"))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusOutForDelivery, res.Status)
	require.Equal(t, "UPS", res.Carrier)
	require.Len(t, res.Events, 2)
	require.Equal(t, "Label created", res.Events[0].Description)
	require.Nil(t, res.Events[0].Location)
	require.Equal(t, "Kyiv", *res.Events[1].Location)
	require.Equal(t, time.Date(2025, 5, 31, 18, 0, 0, 0, time.UTC), res.Events[1].EventTime)
}

func TestClient_FetchTracking_RepairsOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"output_text":"The parcel was delivered yesterday."}`))
			return
		}
		require.EqualValues(t, repairMaxTokens, req["max_output_tokens"])
		input, ok := req["input"].(string)
		require.True(t, ok)
		require.Contains(t, input, "The parcel was delivered yesterday.")
		_, _ = w.Write(outputTextBody(t, `Here you go: {"status":"delivered","carrier":null,"notes":"Delivered","events":[]} thanks`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "usps")
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
	require.Equal(t, models.StatusDelivered, res.Status)
	require.Equal(t, "usps", res.Carrier)
	require.Len(t, res.Events, 1)
	require.Equal(t, "Delivered", res.Events[0].Description)
}

func TestClient_FetchTracking_RepairFailsIsParseError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"output_text":"no json here"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	var pe *carrier.ParseError
	require.ErrorAs(t, err, &pe)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_FetchTracking_UnknownStatusUsesHeuristic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(outputTextBody(t, `{"status":"unknown","notes":"","events":[{"event_time":"2025-05-30 10:00:00","description":"Held at customs"}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusException, res.Status)
}

func TestClient_FetchTracking_CarrierAndLocationCut(t *testing.T) {
	long := strings.Repeat("x", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(outputTextBody(t, `{"status":"in_transit","carrier":"`+long+`","events":[{"event_time":"","location":"`+long+`","description":"Departed"}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	require.NoError(t, err)
	require.Len(t, res.Carrier, maxCarrierLen)
	require.Len(t, *res.Events[0].Location, maxLocationLen)
	require.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), res.Events[0].EventTime)
}

func TestClient_FetchTracking_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	var pe *carrier.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	require.Equal(t, "Rate limit reached", err.Error())
}

func TestClient_FetchTracking_EmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchTracking(context.Background(), "1Z", "")
	require.EqualError(t, err, "OpenAI did not return tracking data.")
}

func TestClient_FetchTracking_NotConfigured(t *testing.T) {
	_, err := New(Options{}).FetchTracking(context.Background(), "1Z", "")
	require.True(t, carrier.IsConfigurationError(err))
}

func TestDecodeResolution(t *testing.T) {
	r, _, ok := decodeResolution("```\n{\"status\":\"delivered\"}\n```")
	require.True(t, ok)
	require.Equal(t, "delivered", r.Status.String())

	_, _, ok = decodeResolution("[1,2,3]")
	require.False(t, ok)

	_, _, ok = decodeResolution("} nope {")
	require.False(t, ok)
}
