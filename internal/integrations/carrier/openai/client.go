package openai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
	"github.com/BearBump/ParcelTrack/internal/models"
)

const (
	Provider       = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4.1-mini"
	defaultTimeout = 32 * time.Second

	maxOutputTokens = 1200
	repairMaxTokens = 900

	maxCarrierLen  = 64
	maxLocationLen = 120
)

var statuses = normalize.StatusTable{
	"created":              models.StatusCreated,
	"pending":              models.StatusCreated,
	"info_received":        models.StatusCreated,
	"in_transit":           models.StatusInTransit,
	"out_for_delivery":     models.StatusOutForDelivery,
	"delivered":            models.StatusDelivered,
	"available_for_pickup": models.StatusDelivered,
	"exception":            models.StatusException,
	"failed_attempt":       models.StatusException,
	"expired":              models.StatusException,
}

type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	WebSearch bool
}

// Client resolves tracking status through the Responses API and asks the model
// to answer with the schema from systemPrompt.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	webSearch bool
	httpc     *http.Client
	now       func() time.Time
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    strings.TrimSpace(opts.APIKey),
		model:     model,
		webSearch: opts.WebSearch,
		httpc: &http.Client{
			Timeout: carrier.ClampTimeout(opts.Timeout, defaultTimeout, 8*time.Second, 90*time.Second),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Provider() string { return Provider }

func (c *Client) FetchTracking(ctx context.Context, trackingNumber, carrierHint string) (carrier.SyncResult, error) {
	if c.apiKey == "" {
		return carrier.SyncResult{}, &carrier.ConfigurationError{Provider: Provider}
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return carrier.SyncResult{}, carrier.ErrTrackingNumberRequired
	}
	carrierHint = strings.TrimSpace(carrierHint)

	req := responsesRequest{
		Model: c.model,
		Input: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(trackingNumber, carrierHint, c.now())},
		},
		Temperature:     0,
		MaxOutputTokens: maxOutputTokens,
	}
	if c.webSearch {
		req.Tools = []tool{{Type: "web_search_preview"}}
		req.ToolChoice = "auto"
	}

	res, err := c.post(ctx, req)
	if err != nil {
		slog.Warn("openai request failed", "tracking_number", trackingNumber, "error", err.Error())
		return carrier.SyncResult{}, err
	}
	if !res.OK() {
		msg := apiError(res.Body)
		slog.Warn("openai tracking failed", "status", res.StatusCode, "error", msg, "raw", carrier.Snippet(res.Body, 400))
		return carrier.SyncResult{}, &carrier.ProviderError{Provider: Provider, StatusCode: res.StatusCode, Message: msg}
	}

	text := outputText(res.Body)
	if text == "" {
		return carrier.SyncResult{}, &carrier.ProviderError{
			Provider:   Provider,
			StatusCode: res.StatusCode,
			Message:    "OpenAI did not return tracking data.",
		}
	}

	parsed, raw, ok := decodeResolution(text)
	if !ok {
		parsed, raw, ok = c.repair(ctx, text, trackingNumber, carrierHint)
		if !ok {
			slog.Warn("openai tracking parse failure", "output", normalize.Truncate(text, 400))
			return carrier.SyncResult{}, &carrier.ParseError{
				Provider: Provider,
				Message:  "OpenAI response could not be parsed as structured tracking JSON.",
			}
		}
	}

	events := c.normalizeEvents(parsed, raw)
	status := statuses.Map(normalize.FirstNonEmpty(parsed.Status.String(), "unknown"))
	if status == models.StatusUnknown {
		texts := make([]string, 0, len(events)+1)
		for _, e := range events {
			texts = append(texts, e.Description)
		}
		texts = append(texts, parsed.Notes.String())
		status = normalize.ClassifyText(texts...)
	}

	return carrier.SyncResult{
		Status:  status,
		Carrier: normalize.Truncate(normalize.FirstNonEmpty(parsed.Carrier.String(), carrierHint), maxCarrierLen),
		Events:  events,
	}, nil
}

// repair делает ровно один дополнительный запрос: просит модель привести
// сырой ответ к схеме.
func (c *Client) repair(ctx context.Context, rawText, trackingNumber, carrierHint string) (resolution, []byte, bool) {
	req := responsesRequest{
		Model:           c.model,
		Input:           repairPrompt(rawText, trackingNumber, carrierHint),
		Temperature:     0,
		MaxOutputTokens: repairMaxTokens,
	}
	res, err := c.post(ctx, req)
	if err != nil || !res.OK() {
		return resolution{}, nil, false
	}
	text := outputText(res.Body)
	if text == "" {
		return resolution{}, nil, false
	}
	return decodeResolution(text)
}

func (c *Client) post(ctx context.Context, req responsesRequest) (carrier.Response, error) {
	return carrier.DoJSON(ctx, c.httpc, Provider, http.MethodPost, c.baseURL+"/responses", req, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
}

func (c *Client) normalizeEvents(r resolution, raw []byte) []*models.TrackingEvent {
	now := c.now()
	out := make([]*models.TrackingEvent, 0, len(r.Events))
	for _, evRaw := range r.Events {
		var ev resolvedEvent
		if !normalize.IsObject(evRaw) || !normalize.Decode(evRaw, &ev) {
			continue
		}
		var loc *string
		if l := normalize.Truncate(ev.Location.String(), maxLocationLen); l != "" {
			loc = &l
		}
		out = append(out, &models.TrackingEvent{
			EventTime:   normalize.ParseTime(ev.EventTime.String(), now),
			Location:    loc,
			Description: ev.Description.String(),
			RawPayload:  normalize.Payload(evRaw),
		})
	}
	return normalize.Finalize(out, normalize.FirstNonEmpty(r.Notes.String(), "Tracking status update"), normalize.Payload(raw), now)
}
