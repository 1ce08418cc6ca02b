package pgshipments

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

func (s *Storage) ListEvents(ctx context.Context, ownerID, shipmentID uint64) ([]*models.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  e.id, e.shipment_id, e.event_time, e.location, e.description, e.raw_payload, e.created_at
FROM tracking_events e
JOIN shipments s ON s.id = e.shipment_id
WHERE e.shipment_id = $1 AND s.owner_id = $2
ORDER BY e.event_time DESC, e.id DESC
`, shipmentID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	out := make([]*models.TrackingEvent, 0)
	for rows.Next() {
		var e models.TrackingEvent
		var payload []byte
		if err := rows.Scan(
			&e.ID, &e.ShipmentID, &e.EventTime, &e.Location, &e.Description, &payload, &e.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		e.EventTime = e.EventTime.UTC()
		e.CreatedAt = e.CreatedAt.UTC()
		if len(payload) > 0 {
			p := string(payload)
			e.RawPayload = &p
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	// Пустой список не отличает "нет событий" от чужой посылки.
	if len(out) == 0 {
		if _, err := s.GetShipment(ctx, ownerID, shipmentID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddManualEvent вставляет событие пользователя и безусловно переписывает
// status и last_event_at посылки.
func (s *Storage) AddManualEvent(ctx context.Context, ownerID, shipmentID uint64, ev models.ManualEvent) error {
	ev, err := ev.Normalize(time.Now().UTC())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockShipment(ctx, tx, ownerID, shipmentID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, event_time, location, description, raw_payload, created_at)
VALUES ($1,$2,$3,$4,NULL,now())
ON CONFLICT DO NOTHING
`, shipmentID, ev.EventTime, ev.Location, ev.Description); err != nil {
		return errors.Wrap(err, "insert manual event")
	}

	if _, err := tx.Exec(ctx, `
UPDATE shipments
SET last_event_at = $3, status = $4, updated_at = now()
WHERE id = $1 AND owner_id = $2
`, shipmentID, ownerID, ev.EventTime, ev.Status); err != nil {
		return errors.Wrap(err, "update shipment (manual)")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

// MergeSyncedEvents атомарно вливает нормализованный результат синхронизации.
// Дубликаты по ключу идентичности пропускаются, last_event_at не откатывается назад.
func (s *Storage) MergeSyncedEvents(ctx context.Context, in models.MergeInput) (int, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockShipment(ctx, tx, in.OwnerID, in.ShipmentID); err != nil {
		return 0, err
	}

	inserted := 0
	var latest *time.Time
	for _, e := range in.Events {
		if e == nil || strings.TrimSpace(e.Description) == "" {
			continue
		}
		at := e.EventTime.UTC().Truncate(time.Second)
		if latest == nil || at.After(*latest) {
			latest = &at
		}

		var payload any
		if e.RawPayload != nil && *e.RawPayload != "" {
			payload = *e.RawPayload
		}

		tag, err := tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, event_time, location, description, raw_payload, created_at)
VALUES ($1,$2,$3,$4,$5,now())
ON CONFLICT DO NOTHING
`, in.ShipmentID, at, models.NullableTrim(e.Location), strings.TrimSpace(e.Description), payload)
		if err != nil {
			return 0, errors.Wrap(err, "insert synced event")
		}
		inserted += int(tag.RowsAffected())
	}

	if _, err := tx.Exec(ctx, `
UPDATE shipments
SET
  status = $3,
  carrier = COALESCE(NULLIF($4, ''), carrier),
  last_event_at = GREATEST(last_event_at, $5::timestamptz),
  updated_at = now()
WHERE id = $1 AND owner_id = $2
`, in.ShipmentID, in.OwnerID, in.Status, strings.TrimSpace(in.Carrier), latest); err != nil {
		return 0, errors.Wrap(err, "update shipment (sync)")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit tx")
	}
	return inserted, nil
}
