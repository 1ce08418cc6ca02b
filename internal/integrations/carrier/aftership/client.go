package aftership

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
	"github.com/BearBump/ParcelTrack/internal/models"
)

const (
	Provider       = "aftership"
	defaultBaseURL = "https://api.aftership.com"
	defaultVersion = "2026-01"
	defaultTimeout = 18 * time.Second

	trackingFields = "slug,tag,subtag,checkpoints,last_updated_at,tracking_number"
)

var slugs = map[string]string{
	"ups":                          "ups",
	"fedex":                        "fedex",
	"federal express":              "fedex",
	"usps":                         "usps",
	"united states postal service": "usps",
	"dhl":                          "dhl",
	"dhl express":                  "dhl",
	"dhl ecommerce":                "dhl_ecommerce",
}

var invalidSlug = regexp.MustCompile(`[^a-z0-9]+`)

var tags = normalize.StatusTable{
	"pending":              models.StatusCreated,
	"notfound":             models.StatusCreated,
	"info_received":        models.StatusCreated,
	"inforeceived":         models.StatusCreated,
	"in_transit":           models.StatusInTransit,
	"out_for_delivery":     models.StatusOutForDelivery,
	"delivered":            models.StatusDelivered,
	"available_for_pickup": models.StatusDelivered,
	"exception":            models.StatusException,
	"attemptfail":          models.StatusException,
	"expired":              models.StatusException,
	"failed_attempt":       models.StatusException,
}

var errCarrierUnknown = models.NewValidationError("carrier", "Unable to detect carrier. Set carrier as UPS/FedEx/USPS/DHL and try again.")

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	now     func() time.Time
}

// New: version пустой -> 2026-01.
func New(baseURL, version, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = defaultVersion
	}
	return &Client{
		baseURL: baseURL + "/tracking/" + url.PathEscape(version),
		apiKey:  strings.TrimSpace(apiKey),
		httpc: &http.Client{
			Timeout: carrier.ClampTimeout(timeout, defaultTimeout, 5*time.Second, 60*time.Second),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Provider() string { return Provider }

func NormalizeSlug(hint string) string {
	return normalize.CarrierCode(hint, slugs, invalidSlug)
}

func (c *Client) FetchTracking(ctx context.Context, trackingNumber, carrierHint string) (carrier.SyncResult, error) {
	if c.apiKey == "" {
		return carrier.SyncResult{}, &carrier.ConfigurationError{Provider: Provider}
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return carrier.SyncResult{}, carrier.ErrTrackingNumberRequired
	}
	slug := NormalizeSlug(carrierHint)
	if slug == "" {
		return carrier.SyncResult{}, errCarrierUnknown
	}

	u := c.baseURL + "/trackings/" + url.PathEscape(slug) + "/" + url.PathEscape(trackingNumber) + "?fields=" + trackingFields
	res, err := carrier.DoJSON(ctx, c.httpc, Provider, http.MethodGet, u, nil, map[string]string{
		"aftership-api-key": c.apiKey,
		"as-api-key":        c.apiKey,
	})
	if err != nil {
		slog.Warn("aftership request failed", "tracking_number", trackingNumber, "error", err.Error())
		return carrier.SyncResult{}, err
	}
	if !res.OK() {
		msg := apiError(res.Body)
		slog.Warn("aftership get tracking failed", "status", res.StatusCode, "raw", carrier.Snippet(res.Body, 300))
		return carrier.SyncResult{}, &carrier.ProviderError{Provider: Provider, StatusCode: res.StatusCode, Message: msg}
	}

	var env envelope
	if !normalize.Decode(res.Body, &env) {
		return carrier.SyncResult{}, &carrier.ParseError{Provider: Provider, Message: "AfterShip returned an unreadable response."}
	}
	tr, raw, ok := env.trackingObject()
	if !ok {
		return carrier.SyncResult{}, &carrier.ProviderError{
			Provider:   Provider,
			StatusCode: res.StatusCode,
			Message:    "No tracking data returned from provider.",
		}
	}

	return carrier.SyncResult{
		Status:  tags.Map(normalize.FirstNonEmpty(tr.Tag.String(), tr.Subtag.String(), "unknown")),
		Carrier: normalize.FirstNonEmpty(tr.Slug.String(), slug),
		Events:  c.normalizeCheckpoints(tr, raw),
	}, nil
}

func (c *Client) normalizeCheckpoints(tr tracking, raw []byte) []*models.TrackingEvent {
	now := c.now()
	var out []*models.TrackingEvent
	if normalize.IsArray(tr.Checkpoints) {
		var cps []json.RawMessage
		_ = json.Unmarshal(tr.Checkpoints, &cps)
		out = make([]*models.TrackingEvent, 0, len(cps))
		for _, cpRaw := range cps {
			var cp checkpoint
			if !normalize.IsObject(cpRaw) || !normalize.Decode(cpRaw, &cp) {
				continue
			}
			out = append(out, &models.TrackingEvent{
				EventTime:   normalize.ParseTime(normalize.FirstNonEmpty(cp.CheckpointTime.String(), cp.CreatedAt.String(), cp.UpdatedAt.String()), now),
				Location:    normalize.Location(cp.Location.String(), cp.City.String(), cp.State.String(), cp.CountryName.String()),
				Description: normalize.FirstNonEmpty(cp.Message.String(), cp.CheckpointStatus.String(), cp.Tag.String()),
				RawPayload:  normalize.Payload(cpRaw),
			})
		}
	}
	return normalize.Finalize(out, normalize.FirstNonEmpty(tr.Tag.String(), "Tracking created"), normalize.Payload(raw), now)
}
