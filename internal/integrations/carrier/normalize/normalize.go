// Package normalize maps provider payload fragments into the canonical
// shipment timeline: descriptions, locations, UTC second-precision times,
// canonical statuses and carrier codes.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BearBump/ParcelTrack/internal/models"
)

// FirstNonEmpty возвращает первое непустое (после trim) значение из списка приоритетов.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// Location склеивает части адреса через ", " без повторов. Пусто -> nil.
func Location(parts ...string) *string {
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	s := strings.Join(out, ", ")
	return &s
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Finalize отбрасывает события без описания, сортирует по возрастанию event_time
// и, если ничего не осталось, добавляет одно синтетическое событие на now.
func Finalize(events []*models.TrackingEvent, fallbackDesc string, fallbackPayload *string, now time.Time) []*models.TrackingEvent {
	out := make([]*models.TrackingEvent, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		e.Description = strings.TrimSpace(e.Description)
		if e.Description == "" {
			continue
		}
		e.EventTime = e.EventTime.UTC().Truncate(time.Second)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventTime.Before(out[j].EventTime)
	})

	if len(out) == 0 {
		desc := strings.TrimSpace(fallbackDesc)
		if desc == "" {
			desc = "Tracking update"
		}
		out = append(out, &models.TrackingEvent{
			EventTime:   now.UTC().Truncate(time.Second),
			Description: desc,
			RawPayload:  fallbackPayload,
		})
	}
	return out
}

// StatusTable maps a provider vocabulary (already lower-cased, "_"-separated)
// onto canonical statuses.
type StatusTable map[string]models.ShipmentStatus

func (t StatusTable) Map(raw string) models.ShipmentStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if s, ok := t[key]; ok {
		return s
	}
	return models.StatusUnknown
}

// CarrierCode ищет подсказку перевозчика в таблице провайдера; неизвестные
// названия не отвергаются, а превращаются в slug (invalid -> "-").
func CarrierCode(hint string, table map[string]string, invalid *regexp.Regexp) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return ""
	}
	if code, ok := table[h]; ok {
		return code
	}
	return strings.Trim(invalid.ReplaceAllString(h, "-"), "-")
}
