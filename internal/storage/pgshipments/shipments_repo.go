package pgshipments

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

const shipmentColumns = `
  s.id, s.owner_id, s.tracking_number, s.carrier, s.label,
  s.status, s.last_event_at, s.archived, s.created_at, s.updated_at`

func (s *Storage) CreateShipment(ctx context.Context, ownerID uint64, in models.ShipmentCreateInput) (uint64, error) {
	in, err := in.Normalize()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var id uint64
	err = s.db.QueryRow(ctx, `
INSERT INTO shipments (
  owner_id, tracking_number, carrier, label, status, archived, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,FALSE,$6,$6)
RETURNING id
`, ownerID, in.TrackingNumber, in.Carrier, in.Label, models.StatusCreated, now).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert shipment")
	}
	return id, nil
}

func (s *Storage) GetShipment(ctx context.Context, ownerID, shipmentID uint64) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `
SELECT`+shipmentColumns+`
FROM shipments s
WHERE s.id = $1 AND s.owner_id = $2
`, shipmentID, ownerID)

	sh, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrShipmentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select shipment")
	}
	return sh, nil
}

func (s *Storage) ListShipments(ctx context.Context, ownerID uint64, includeArchived bool) ([]*models.Shipment, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+shipmentColumns+`,
  (
    SELECT te.location
    FROM tracking_events te
    WHERE te.shipment_id = s.id
    ORDER BY te.event_time DESC, te.id DESC
    LIMIT 1
  ) AS last_location
FROM shipments s
WHERE s.owner_id = $1
  AND ($2 OR NOT s.archived)
ORDER BY s.updated_at DESC, s.id DESC
`, ownerID, includeArchived)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	out := make([]*models.Shipment, 0)
	for rows.Next() {
		var sh models.Shipment
		if err := rows.Scan(
			&sh.ID, &sh.OwnerID, &sh.TrackingNumber, &sh.Carrier, &sh.Label,
			&sh.Status, &sh.LastEventAt, &sh.Archived, &sh.CreatedAt, &sh.UpdatedAt,
			&sh.LastLocation,
		); err != nil {
			return nil, errors.Wrap(err, "scan shipment")
		}
		out = append(out, normalizeTimes(&sh))
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) SetArchived(ctx context.Context, ownerID, shipmentID uint64, archived bool) error {
	tag, err := s.db.Exec(ctx, `
UPDATE shipments
SET archived = $3, updated_at = now()
WHERE id = $1 AND owner_id = $2
`, shipmentID, ownerID, archived)
	if err != nil {
		return errors.Wrap(err, "update archived")
	}
	if tag.RowsAffected() == 0 {
		return models.ErrShipmentNotFound
	}
	return nil
}

// lockShipment проверяет владельца и блокирует строку до конца транзакции.
func lockShipment(ctx context.Context, tx pgx.Tx, ownerID, shipmentID uint64) error {
	var id uint64
	err := tx.QueryRow(ctx, `SELECT id FROM shipments WHERE id = $1 AND owner_id = $2 FOR UPDATE`, shipmentID, ownerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrShipmentNotFound
	}
	return errors.Wrap(err, "lock shipment")
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var sh models.Shipment
	if err := row.Scan(
		&sh.ID, &sh.OwnerID, &sh.TrackingNumber, &sh.Carrier, &sh.Label,
		&sh.Status, &sh.LastEventAt, &sh.Archived, &sh.CreatedAt, &sh.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return normalizeTimes(&sh), nil
}

func normalizeTimes(sh *models.Shipment) *models.Shipment {
	sh.CreatedAt = sh.CreatedAt.UTC()
	sh.UpdatedAt = sh.UpdatedAt.UTC()
	if sh.LastEventAt != nil {
		t := sh.LastEventAt.UTC()
		sh.LastEventAt = &t
	}
	return sh
}
