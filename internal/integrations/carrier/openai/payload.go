package openai

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
)

const schema = `{"status":"created|in_transit|out_for_delivery|delivered|exception|unknown",` +
	`"carrier":"string|null","confidence":"high|medium|low",` +
	`"notes":"string",` +
	`"events":[{"event_time":"YYYY-MM-DD HH:MM:SS","location":"string|null","description":"string"}]}`

var systemPrompt = strings.Join([]string{
	"You are a parcel tracking resolver.",
	"Use web search when available and prefer official carrier sources.",
	"Return the most probable current status based on available evidence.",
	"Do not leave status unknown unless there is no usable signal at all.",
	"Return only JSON with this shape:",
	schema,
}, " ")

func userPrompt(trackingNumber, carrierHint string, now time.Time) string {
	lines := []string{
		"Find the latest tracking status for this package.",
		"Tracking number: " + trackingNumber,
		"Current UTC time: " + normalize.FormatTime(now) + " UTC",
	}
	if carrierHint != "" {
		lines = append(lines, "Carrier hint: "+carrierHint)
	}
	lines = append(lines,
		"Prioritize official carrier tracking pages and recent scan details.",
		"Infer a best status even when event detail is partial.",
		"Return strict JSON only, no markdown fences.",
	)
	return strings.Join(lines, "\n")
}

func repairPrompt(rawText, trackingNumber, carrierHint string) string {
	return strings.Join([]string{
		"Convert the following tracking output to strict JSON.",
		"Tracking number: " + trackingNumber,
		"Carrier hint: " + carrierHint,
		"Output schema:",
		schema,
		"Only return JSON.",
		"Raw output:",
		rawText,
	}, "\n")
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Type string `json:"type"`
}

// Input is either []message or a plain prompt string.
type responsesRequest struct {
	Model           string  `json:"model"`
	Input           any     `json:"input"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Tools           []tool  `json:"tools,omitempty"`
	ToolChoice      string  `json:"tool_choice,omitempty"`
}

type responsesBody struct {
	OutputText normalize.Text    `json:"output_text"`
	Output     []json.RawMessage `json:"output"`
}

type outputItem struct {
	Content []json.RawMessage `json:"content"`
}

type contentChunk struct {
	Text       normalize.Text `json:"text"`
	OutputText normalize.Text `json:"output_text"`
}

type resolution struct {
	Status  normalize.Text `json:"status"`
	Carrier normalize.Text `json:"carrier"`
	Notes   normalize.Text `json:"notes"`

	RawEvents json.RawMessage   `json:"events"`
	Events    []json.RawMessage `json:"-"`
}

type resolvedEvent struct {
	EventTime   normalize.Text `json:"event_time"`
	Location    normalize.Text `json:"location"`
	Description normalize.Text `json:"description"`
}

// outputText: output_text, иначе первый непустой text/output_text в output[].content[].
func outputText(body []byte) string {
	var b responsesBody
	if !normalize.Decode(body, &b) {
		return ""
	}
	if s := b.OutputText.String(); s != "" {
		return s
	}
	for _, itemRaw := range b.Output {
		var item outputItem
		if !normalize.IsObject(itemRaw) || !normalize.Decode(itemRaw, &item) {
			continue
		}
		for _, chunkRaw := range item.Content {
			var chunk contentChunk
			if !normalize.IsObject(chunkRaw) || !normalize.Decode(chunkRaw, &chunk) {
				continue
			}
			if s := normalize.FirstNonEmpty(chunk.Text.String(), chunk.OutputText.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

var (
	fenceOpen  = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// decodeResolution снимает markdown-ограждение и пробует весь текст, затем
// срез от первой "{" до последней "}".
func decodeResolution(text string) (resolution, []byte, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return resolution{}, nil, false
	}
	if strings.HasPrefix(text, "```") {
		text = fenceOpen.ReplaceAllString(text, "")
		text = fenceClose.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}

	if r, ok := decodeObject([]byte(text)); ok {
		return r, []byte(text), true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return resolution{}, nil, false
	}
	slice := []byte(text[start : end+1])
	if r, ok := decodeObject(slice); ok {
		return r, slice, true
	}
	return resolution{}, nil, false
}

func decodeObject(raw []byte) (resolution, bool) {
	var r resolution
	if !normalize.IsObject(raw) || !normalize.Decode(raw, &r) {
		return resolution{}, false
	}
	if normalize.IsArray(r.RawEvents) {
		_ = json.Unmarshal(r.RawEvents, &r.Events)
	}
	return r, true
}

// apiError: error.message, затем message, затем error строкой.
func apiError(body []byte) string {
	var e struct {
		Message normalize.Text  `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if !normalize.Decode(body, &e) {
		return ""
	}
	var nested struct {
		Message normalize.Text `json:"message"`
	}
	if normalize.IsObject(e.Error) {
		_ = json.Unmarshal(e.Error, &nested)
	}
	var flat normalize.Text
	if len(e.Error) > 0 {
		_ = flat.UnmarshalJSON(e.Error)
	}
	return normalize.FirstNonEmpty(nested.Message.String(), e.Message.String(), flat.String())
}
