package ship24

import (
	"encoding/json"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
)

type trackRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	CourierCode    string `json:"courierCode,omitempty"`
}

type envelope struct {
	Message normalize.Text  `json:"message"`
	Error   normalize.Text  `json:"error"`
	Errors  json.RawMessage `json:"errors"`

	Data     json.RawMessage `json:"data"`
	Tracking json.RawMessage `json:"tracking"`
}

type dataBlock struct {
	Message   normalize.Text    `json:"message"`
	Error     normalize.Text    `json:"error"`
	Trackings []json.RawMessage `json:"trackings"`
	Tracking  json.RawMessage   `json:"tracking"`
}

type tracking struct {
	TrackingNumber  normalize.Text `json:"trackingNumber"`
	StatusMilestone normalize.Text `json:"statusMilestone"`
	Status          normalize.Text `json:"status"`
	CourierCode     normalize.Text `json:"courierCode"`
	CourierName     normalize.Text `json:"courierName"`
	Courier         courier        `json:"courier"`
	Shipment        shipmentBlock  `json:"shipment"`

	// events может прийти не массивом, поэтому разбираем отдельно.
	RawEvents json.RawMessage   `json:"events"`
	Events    []json.RawMessage `json:"-"`
}

type shipmentBlock struct {
	StatusMilestone normalize.Text `json:"statusMilestone"`
}

func (s *shipmentBlock) UnmarshalJSON(b []byte) error {
	type plain shipmentBlock
	var p plain
	if normalize.IsObject(b) && normalize.Decode(b, &p) {
		*s = shipmentBlock(p)
	}
	return nil
}

type courier struct {
	Code normalize.Text `json:"code"`
	Name normalize.Text `json:"name"`
}

func (c *courier) UnmarshalJSON(b []byte) error {
	type plain courier
	var p plain
	if normalize.IsObject(b) && normalize.Decode(b, &p) {
		*c = courier(p)
	}
	return nil
}

type event struct {
	Status             normalize.Text `json:"status"`
	StatusCode         normalize.Text `json:"statusCode"`
	StatusMilestone    normalize.Text `json:"statusMilestone"`
	OccurrenceDatetime normalize.Text `json:"occurrenceDatetime"`
	Datetime           normalize.Text `json:"datetime"`
	CreatedAt          normalize.Text `json:"createdAt"`
	Location           location       `json:"location"`
}

// location бывает строкой или объектом {city,state,countryCode,zipCode}.
type location struct {
	City        string
	State       string
	CountryCode string
	ZipCode     string
	Plain       string
}

func (l *location) UnmarshalJSON(b []byte) error {
	if normalize.IsObject(b) {
		var o struct {
			City        normalize.Text `json:"city"`
			State       normalize.Text `json:"state"`
			CountryCode normalize.Text `json:"countryCode"`
			ZipCode     normalize.Text `json:"zipCode"`
		}
		if normalize.Decode(b, &o) {
			*l = location{City: o.City.String(), State: o.State.String(), CountryCode: o.CountryCode.String(), ZipCode: o.ZipCode.String()}
		}
		return nil
	}
	var t normalize.Text
	if err := t.UnmarshalJSON(b); err != nil {
		return nil
	}
	*l = location{Plain: t.String()}
	return nil
}

func (l location) text() *string {
	return normalize.Location(l.City, l.State, l.CountryCode, l.ZipCode, l.Plain)
}

func (t tracking) carrier() string {
	return normalize.FirstNonEmpty(t.CourierCode.String(), t.Courier.Code.String(), t.Courier.Name.String(), t.CourierName.String())
}

// trackingObject выбирает первый подходящий объект трекинга:
// data.trackings[0], data.tracking, tracking, data.
func (e envelope) trackingObject() (tracking, []byte, bool) {
	var candidates [][]byte
	var d dataBlock
	if normalize.IsObject(e.Data) && normalize.Decode(e.Data, &d) {
		if len(d.Trackings) > 0 {
			candidates = append(candidates, d.Trackings[0])
		}
		candidates = append(candidates, d.Tracking)
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
		hasEvents := normalize.IsArray(t.RawEvents)
		if hasEvents {
			_ = json.Unmarshal(t.RawEvents, &t.Events)
		}
		if hasEvents || t.StatusMilestone.String() != "" || t.TrackingNumber.String() != "" {
			return t, raw, true
		}
	}
	return tracking{}, nil, false
}

// apiError достаёт первое текстовое сообщение об ошибке из тела ответа.
func apiError(body []byte) string {
	var e envelope
	if !normalize.Decode(body, &e) {
		return ""
	}
	var d dataBlock
	if normalize.IsObject(e.Data) {
		_ = json.Unmarshal(e.Data, &d)
	}
	var errs []struct {
		Message normalize.Text `json:"message"`
	}
	first := ""
	if normalize.IsArray(e.Errors) && json.Unmarshal(e.Errors, &errs) == nil && len(errs) > 0 {
		first = errs[0].Message.String()
	}
	return normalize.FirstNonEmpty(e.Message.String(), e.Error.String(), d.Message.String(), d.Error.String(), first)
}
