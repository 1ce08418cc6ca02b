package aftership

import (
	"encoding/json"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
)

type envelope struct {
	Meta struct {
		Message normalize.Text `json:"message"`
	} `json:"meta"`
	Message normalize.Text `json:"message"`

	Data     json.RawMessage `json:"data"`
	Tracking json.RawMessage `json:"tracking"`
}

type tracking struct {
	Slug           normalize.Text  `json:"slug"`
	Tag            normalize.Text  `json:"tag"`
	Subtag         normalize.Text  `json:"subtag"`
	TrackingNumber normalize.Text  `json:"tracking_number"`
	Checkpoints    json.RawMessage `json:"checkpoints"`
}

type checkpoint struct {
	Message          normalize.Text `json:"message"`
	CheckpointStatus normalize.Text `json:"checkpoint_status"`
	Tag              normalize.Text `json:"tag"`
	CheckpointTime   normalize.Text `json:"checkpoint_time"`
	CreatedAt        normalize.Text `json:"created_at"`
	UpdatedAt        normalize.Text `json:"updated_at"`
	Location         normalize.Text `json:"location"`
	City             normalize.Text `json:"city"`
	State            normalize.Text `json:"state"`
	CountryName      normalize.Text `json:"country_name"`
}

// trackingObject: data.tracking, затем tracking, затем сам data.
func (e envelope) trackingObject() (tracking, []byte, bool) {
	var candidates [][]byte
	if normalize.IsObject(e.Data) {
		var d struct {
			Tracking json.RawMessage `json:"tracking"`
		}
		if normalize.Decode(e.Data, &d) {
			candidates = append(candidates, d.Tracking)
		}
	}
	candidates = append(candidates, e.Tracking, e.Data)

	for _, raw := range candidates {
		if !normalize.IsObject(raw) {
			continue
		}
		var t tracking
		if !normalize.Decode(raw, &t) {
			continue
		}
		if normalize.IsArray(t.Checkpoints) || t.Tag.String() != "" || t.TrackingNumber.String() != "" {
			return t, raw, true
		}
	}
	return tracking{}, nil, false
}

func apiError(body []byte) string {
	var e envelope
	if !normalize.Decode(body, &e) {
		return ""
	}
	return normalize.FirstNonEmpty(e.Meta.Message.String(), e.Message.String())
}
