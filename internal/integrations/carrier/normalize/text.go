package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a permissive JSON scalar: strings are kept, numbers and booleans
// become their literal text, objects, arrays and null become "".
// Provider payloads are not strict about field types, and one odd field
// must not fail the whole decode.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, b[0] == '{', b[0] == '[', string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Decode unmarshals raw into v and reports success. Empty input is a failure.
func Decode(raw []byte, v any) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// IsArray reports whether raw holds a JSON array.
func IsArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// Payload returns compacted raw JSON as a string pointer, nil when raw is not valid JSON.
func Payload(raw []byte) *string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil || buf.Len() == 0 {
		return nil
	}
	s := buf.String()
	return &s
}
