package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
	"github.com/BearBump/ParcelTrack/internal/services/auth"
	"github.com/BearBump/ParcelTrack/internal/services/shipments"
)

const maxBodyBytes = 1 << 20

type ShipmentService interface {
	CreateShipment(ctx context.Context, ownerID uint64, in models.ShipmentCreateInput) (uint64, error)
	GetShipment(ctx context.Context, ownerID, shipmentID uint64) (*models.Shipment, error)
	ListShipments(ctx context.Context, ownerID uint64, includeArchived bool) ([]*models.Shipment, error)
	ListEvents(ctx context.Context, ownerID, shipmentID uint64) ([]*models.TrackingEvent, error)
	AddManualEvent(ctx context.Context, ownerID, shipmentID uint64, ev models.ManualEvent) error
	SetArchived(ctx context.Context, ownerID, shipmentID uint64, archived bool) error
	RequestSync(ctx context.Context, ownerID, shipmentID uint64) shipments.SyncOutcome
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (uint64, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Authenticate(ctx context.Context, token string) (auth.Session, error)
}

type Handler struct {
	shipments ShipmentService
	auth      AuthService
	now       func() time.Time
}

func New(sh ShipmentService, au AuthService) *Handler {
	return &Handler{
		shipments: sh,
		auth:      au,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Router собирает JSON API. Снаружи к нему можно домонтировать swagger.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)

			r.Get("/shipments", h.listShipments)
			r.Post("/shipments", h.createShipment)
			r.Get("/shipments/{id}", h.getShipment)
			r.Post("/shipments/{id}/events", h.addEvent)
			r.Post("/shipments/{id}/sync", h.syncShipment)
			r.Post("/shipments/{id}/archive", h.setArchived(true))
			r.Post("/shipments/{id}/unarchive", h.setArchived(false))
		})
	})
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err.Error())
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError переводит доменные ошибки в HTTP-коды; всё неизвестное -> 500 без деталей.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, models.ErrShipmentNotFound):
		writeMessage(w, http.StatusNotFound, "Shipment not found.")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "Authentication required.")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err.Error(),
		)
		writeMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}
