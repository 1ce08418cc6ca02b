package normalize

import (
	"regexp"
	"strings"
	"time"
)

// TimeLayout: фиксированный формат event_time; лексикографическое сравнение
// строк в нём совпадает с хронологическим.
const TimeLayout = "2006-01-02 15:04:05"

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// Без зоны считаем время UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

var (
	reMinutes = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)
	reSeconds = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
)

// ParseTime never fails: ISO 8601 first, then "YYYY-MM-DD HH:MM[:SS]" with
// "T" replaced by a space, otherwise now. The result is UTC, second precision.
func ParseTime(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return secondUTC(now)
	}

	for _, l := range isoLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return secondUTC(t)
		}
	}
	for _, l := range localLayouts {
		if t, err := time.ParseInLocation(l, raw, time.UTC); err == nil {
			return secondUTC(t)
		}
	}

	v := strings.ReplaceAll(raw, "T", " ")
	if reMinutes.MatchString(v) {
		v += ":00"
	}
	if reSeconds.MatchString(v) {
		if t, err := time.ParseInLocation(TimeLayout, v, time.UTC); err == nil {
			return t
		}
	}
	return secondUTC(now)
}

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func secondUTC(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
