package ship24

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
	"github.com/BearBump/ParcelTrack/internal/models"
)

const (
	Provider       = "ship24"
	defaultBaseURL = "https://api.ship24.com/public/v1"
	defaultTimeout = 30 * time.Second
)

var courierCodes = map[string]string{
	"ups":                          "ups",
	"fedex":                        "fedex",
	"federal express":              "fedex",
	"usps":                         "usps",
	"united states postal service": "usps",
	"dhl":                          "dhl",
	"dhl express":                  "dhl",
	"dhl ecommerce":                "dhl-ecommerce",
}

var invalidCode = regexp.MustCompile(`[^a-z0-9-]+`)

var milestones = normalize.StatusTable{
	"info_received":        models.StatusCreated,
	"pending":              models.StatusCreated,
	"in_transit":           models.StatusInTransit,
	"out_for_delivery":     models.StatusOutForDelivery,
	"available_for_pickup": models.StatusDelivered,
	"delivered":            models.StatusDelivered,
	"failed_attempt":       models.StatusException,
	"exception":            models.StatusException,
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	now     func() time.Time
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		httpc: &http.Client{
			Timeout: carrier.ClampTimeout(timeout, defaultTimeout, 8*time.Second, 90*time.Second),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Provider() string { return Provider }

// NormalizeCourierCode maps a free-text carrier hint onto a Ship24 courier code.
func NormalizeCourierCode(hint string) string {
	return normalize.CarrierCode(hint, courierCodes, invalidCode)
}

func (c *Client) FetchTracking(ctx context.Context, trackingNumber, carrierHint string) (carrier.SyncResult, error) {
	if c.apiKey == "" {
		return carrier.SyncResult{}, &carrier.ConfigurationError{Provider: Provider}
	}
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if trackingNumber == "" {
		return carrier.SyncResult{}, carrier.ErrTrackingNumberRequired
	}

	body := trackRequest{TrackingNumber: trackingNumber, CourierCode: NormalizeCourierCode(carrierHint)}
	res, err := carrier.DoJSON(ctx, c.httpc, Provider, http.MethodPost, c.baseURL+"/trackers/track", body, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		slog.Warn("ship24 request failed", "tracking_number", trackingNumber, "error", err.Error())
		return carrier.SyncResult{}, err
	}
	if !res.OK() {
		msg := apiError(res.Body)
		slog.Warn("ship24 track failed", "status", res.StatusCode, "error", msg, "raw", carrier.Snippet(res.Body, 300))
		return carrier.SyncResult{}, &carrier.ProviderError{Provider: Provider, StatusCode: res.StatusCode, Message: msg}
	}

	var env envelope
	if !normalize.Decode(res.Body, &env) {
		return carrier.SyncResult{}, &carrier.ParseError{Provider: Provider, Message: "Ship24 returned an unreadable response."}
	}
	tr, raw, ok := env.trackingObject()
	if !ok {
		return carrier.SyncResult{}, &carrier.ProviderError{
			Provider:   Provider,
			StatusCode: res.StatusCode,
			Message:    "Ship24 response did not include tracking events yet.",
		}
	}

	return carrier.SyncResult{
		Status:  milestones.Map(normalize.FirstNonEmpty(tr.StatusMilestone.String(), tr.Shipment.StatusMilestone.String(), tr.Status.String(), "unknown")),
		Carrier: tr.carrier(),
		Events:  c.normalizeEvents(tr, raw),
	}, nil
}

func (c *Client) normalizeEvents(tr tracking, raw []byte) []*models.TrackingEvent {
	now := c.now()
	out := make([]*models.TrackingEvent, 0, len(tr.Events))
	for _, evRaw := range tr.Events {
		var ev event
		if !normalize.IsObject(evRaw) || !normalize.Decode(evRaw, &ev) {
			continue
		}
		desc := normalize.FirstNonEmpty(ev.Status.String(), ev.StatusCode.String(), ev.StatusMilestone.String())
		if desc == "" {
			continue
		}
		out = append(out, &models.TrackingEvent{
			EventTime:   normalize.ParseTime(normalize.FirstNonEmpty(ev.OccurrenceDatetime.String(), ev.Datetime.String(), ev.CreatedAt.String()), now),
			Location:    ev.Location.text(),
			Description: desc,
			RawPayload:  normalize.Payload(evRaw),
		})
	}
	return normalize.Finalize(out, "Tracking created", normalize.Payload(raw), now)
}
