package shipments

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/broker/messages"
	"github.com/BearBump/ParcelTrack/internal/models"
)

const (
	errTextRateLimited = "too many sync requests, try again in a minute"
	errTextNotFound    = "Shipment not found."
	errTextLoad        = "Unable to load shipment."
	errTextBadStatus   = "Provider returned an unsupported status."
	errTextMerge       = "Unable to save tracking update."
)

// SyncOutcome: результат RequestSync. Ошибка всегда в виде текста,
// пригодного для показа пользователю.
type SyncOutcome struct {
	OK       bool   `json:"ok"`
	Inserted int    `json:"inserted"`
	Status   string `json:"status,omitempty"`
	Carrier  string `json:"carrier,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NotFound reports a failure caused by a missing (or foreign) shipment.
func (o SyncOutcome) NotFound() bool {
	return !o.OK && o.Error == errTextNotFound
}

func (o SyncOutcome) RateLimited() bool {
	return !o.OK && o.Error == errTextRateLimited
}

func failed(msg string) SyncOutcome {
	return SyncOutcome{OK: false, Error: msg}
}

// RequestSync тянет данные у провайдера и вливает их в посылку.
// При любой ошибке провайдера посылка не меняется.
func (s *Service) RequestSync(ctx context.Context, ownerID, shipmentID uint64) SyncOutcome {
	if s.limiter != nil {
		ok, _, err := s.limiter.Allow(ctx, strconv.FormatUint(ownerID, 10))
		if err != nil {
			slog.Warn("sync rate limiter unavailable", "owner_id", ownerID, "error", err.Error())
		} else if !ok {
			return failed(errTextRateLimited)
		}
	}

	sh, err := s.repo.GetShipment(ctx, ownerID, shipmentID)
	if errors.Is(err, models.ErrShipmentNotFound) {
		return failed(errTextNotFound)
	}
	if err != nil {
		slog.Error("sync: load shipment", "shipment_id", shipmentID, "error", err.Error())
		return failed(errTextLoad)
	}

	hint := ""
	if sh.Carrier != nil {
		hint = *sh.Carrier
	}

	res, err := s.client.FetchTracking(ctx, sh.TrackingNumber, hint)
	if err != nil {
		slog.Info("sync: provider failed",
			"provider", s.client.Provider(),
			"shipment_id", shipmentID,
			"error", err.Error(),
		)
		return failed(err.Error())
	}
	if !res.Status.Valid() {
		return failed(errTextBadStatus)
	}

	inserted, err := s.repo.MergeSyncedEvents(ctx, models.MergeInput{
		OwnerID:    ownerID,
		ShipmentID: shipmentID,
		Status:     res.Status,
		Carrier:    res.Carrier,
		Events:     res.Events,
	})
	if errors.Is(err, models.ErrShipmentNotFound) {
		return failed(errTextNotFound)
	}
	if err != nil {
		slog.Error("sync: merge", "shipment_id", shipmentID, "error", err.Error())
		return failed(errTextMerge)
	}

	s.invalidateLists(ctx, ownerID)
	s.publishSynced(ctx, messages.ShipmentSynced{
		ShipmentID: shipmentID,
		OwnerID:    ownerID,
		Provider:   s.client.Provider(),
		Status:     string(res.Status),
		Carrier:    res.Carrier,
		Inserted:   inserted,
		SyncedAt:   s.now(),
	})

	return SyncOutcome{
		OK:       true,
		Inserted: inserted,
		Status:   string(res.Status),
		Carrier:  res.Carrier,
	}
}

// publishSynced не влияет на результат синхронизации: ошибка только логируется.
func (s *Service) publishSynced(ctx context.Context, msg messages.ShipmentSynced) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishShipmentSynced(ctx, msg); err != nil {
		slog.Warn("publish shipment.synced failed", "shipment_id", msg.ShipmentID, "error", err.Error())
	}
}
