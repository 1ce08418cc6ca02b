package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/normalize"
	"github.com/BearBump/ParcelTrack/internal/models"
	"github.com/BearBump/ParcelTrack/internal/services/auth"
)

type createShipmentRequest struct {
	TrackingNumber string  `json:"tracking_number"`
	Label          *string `json:"label"`
	Carrier        *string `json:"carrier"`
}

type manualEventRequest struct {
	EventTime   string  `json:"event_time"`
	Location    *string `json:"location"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// eventView отдаёт event_time в формате "YYYY-MM-DD HH:MM:SS".
type eventView struct {
	ID          uint64    `json:"id"`
	EventTime   string    `json:"event_time"`
	Location    *string   `json:"location,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type shipmentDetails struct {
	Shipment *models.Shipment `json:"shipment"`
	Events   []eventView      `json:"events"`
}

func (h *Handler) listShipments(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	includeArchived := truthy(r.URL.Query().Get("include_archived"))

	list, err := h.shipments.ListShipments(r.Context(), sess.UserID, includeArchived)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Shipment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"shipments": list})
}

func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req createShipmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.shipments.CreateShipment(r.Context(), sess.UserID, models.ShipmentCreateInput{
		TrackingNumber: req.TrackingNumber,
		Label:          req.Label,
		Carrier:        req.Carrier,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) getShipment(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	id, ok := shipmentID(r)
	if !ok {
		writeError(w, r, models.ErrShipmentNotFound)
		return
	}

	sh, err := h.shipments.GetShipment(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	evs, err := h.shipments.ListEvents(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := shipmentDetails{Shipment: sh, Events: make([]eventView, 0, len(evs))}
	for _, e := range evs {
		out.Events = append(out.Events, eventView{
			ID:          e.ID,
			EventTime:   e.EventTimeText(),
			Location:    e.Location,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	id, ok := shipmentID(r)
	if !ok {
		writeError(w, r, models.ErrShipmentNotFound)
		return
	}
	var req manualEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ev := models.ManualEvent{
		Location:    req.Location,
		Description: req.Description,
		Status:      req.Status,
	}
	if strings.TrimSpace(req.EventTime) != "" {
		ev.EventTime = normalize.ParseTime(req.EventTime, h.now())
	}

	if err := h.shipments.AddManualEvent(r.Context(), sess.UserID, id, ev); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (h *Handler) syncShipment(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	id, ok := shipmentID(r)
	if !ok {
		writeError(w, r, models.ErrShipmentNotFound)
		return
	}

	out := h.shipments.RequestSync(r.Context(), sess.UserID, id)
	switch {
	case out.OK:
		writeJSON(w, http.StatusOK, out)
	case out.NotFound():
		writeJSON(w, http.StatusNotFound, out)
	case out.RateLimited():
		writeJSON(w, http.StatusTooManyRequests, out)
	default:
		writeJSON(w, http.StatusBadGateway, out)
	}
}

func (h *Handler) setArchived(archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFrom(r.Context())
		id, ok := shipmentID(r)
		if !ok {
			writeError(w, r, models.ErrShipmentNotFound)
			return
		}
		if err := h.shipments.SetArchived(r.Context(), sess.UserID, id, archived); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "archived": archived})
	}
}

func shipmentID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
