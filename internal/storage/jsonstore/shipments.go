package jsonstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

func (s *Storage) CreateShipment(ctx context.Context, ownerID uint64, in models.ShipmentCreateInput) (uint64, error) {
	in, err := in.Normalize()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.snapshot()
	if err != nil {
		return 0, errors.Wrap(err, "snapshot")
	}

	now := s.now()
	s.doc.NextIDs.Shipment++
	sh := &models.Shipment{
		ID:             s.doc.NextIDs.Shipment,
		OwnerID:        ownerID,
		TrackingNumber: in.TrackingNumber,
		Carrier:        in.Carrier,
		Label:          in.Label,
		Status:         models.StatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.doc.Shipments = append(s.doc.Shipments, sh)

	if err := s.commit(before); err != nil {
		return 0, err
	}
	return sh.ID, nil
}

func (s *Storage) GetShipment(ctx context.Context, ownerID, shipmentID uint64) (*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.findShipment(ownerID, shipmentID)
	if sh == nil {
		return nil, models.ErrShipmentNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *Storage) ListShipments(ctx context.Context, ownerID uint64, includeArchived bool) ([]*models.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Shipment, 0)
	for _, sh := range s.doc.Shipments {
		if sh.OwnerID != ownerID || (!includeArchived && sh.Archived) {
			continue
		}
		cp := *sh
		if last := s.latestEvent(sh.ID); last != nil {
			cp.LastLocation = last.Location
		}
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Storage) SetArchived(ctx context.Context, ownerID, shipmentID uint64, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.findShipment(ownerID, shipmentID)
	if sh == nil {
		return models.ErrShipmentNotFound
	}
	before, err := s.snapshot()
	if err != nil {
		return errors.Wrap(err, "snapshot")
	}
	sh.Archived = archived
	sh.UpdatedAt = s.now()
	return s.commit(before)
}

func (s *Storage) ListEvents(ctx context.Context, ownerID, shipmentID uint64) ([]*models.TrackingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findShipment(ownerID, shipmentID) == nil {
		return nil, models.ErrShipmentNotFound
	}
	out := make([]*models.TrackingEvent, 0)
	for _, e := range s.doc.Events {
		if e.ShipmentID == shipmentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EventTime.Equal(out[j].EventTime) {
			return out[i].EventTime.After(out[j].EventTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Storage) AddManualEvent(ctx context.Context, ownerID, shipmentID uint64, ev models.ManualEvent) error {
	ev, err := ev.Normalize(s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.findShipment(ownerID, shipmentID)
	if sh == nil {
		return models.ErrShipmentNotFound
	}
	before, err := s.snapshot()
	if err != nil {
		return errors.Wrap(err, "snapshot")
	}

	s.insertEvent(&models.TrackingEvent{
		ShipmentID:  shipmentID,
		EventTime:   ev.EventTime,
		Location:    ev.Location,
		Description: ev.Description,
	})
	at := ev.EventTime
	sh.LastEventAt = &at
	sh.Status = models.ShipmentStatus(ev.Status)
	sh.UpdatedAt = s.now()

	return s.commit(before)
}

func (s *Storage) MergeSyncedEvents(ctx context.Context, in models.MergeInput) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.findShipment(in.OwnerID, in.ShipmentID)
	if sh == nil {
		return 0, models.ErrShipmentNotFound
	}
	before, err := s.snapshot()
	if err != nil {
		return 0, errors.Wrap(err, "snapshot")
	}

	inserted := 0
	for _, e := range in.Events {
		if e == nil || strings.TrimSpace(e.Description) == "" {
			continue
		}
		cp := *e
		cp.ShipmentID = in.ShipmentID
		cp.Description = strings.TrimSpace(e.Description)
		cp.Location = models.NullableTrim(e.Location)
		cp.EventTime = e.EventTime.UTC().Truncate(time.Second)
		if s.insertEvent(&cp) {
			inserted++
		}
		if sh.LastEventAt == nil || cp.EventTime.After(*sh.LastEventAt) {
			at := cp.EventTime
			sh.LastEventAt = &at
		}
	}
	sh.Status = in.Status
	if c := strings.TrimSpace(in.Carrier); c != "" {
		sh.Carrier = &c
	}
	sh.UpdatedAt = s.now()

	if err := s.commit(before); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Storage) findShipment(ownerID, shipmentID uint64) *models.Shipment {
	for _, sh := range s.doc.Shipments {
		if sh.ID == shipmentID && sh.OwnerID == ownerID {
			return sh
		}
	}
	return nil
}

func (s *Storage) latestEvent(shipmentID uint64) *models.TrackingEvent {
	var last *models.TrackingEvent
	for _, e := range s.doc.Events {
		if e.ShipmentID != shipmentID {
			continue
		}
		if last == nil || e.EventTime.After(last.EventTime) || (e.EventTime.Equal(last.EventTime) && e.ID > last.ID) {
			last = e
		}
	}
	return last
}

// insertEvent добавляет событие, если такого ключа идентичности ещё нет.
func (s *Storage) insertEvent(e *models.TrackingEvent) bool {
	for _, ex := range s.doc.Events {
		if ex.ShipmentID == e.ShipmentID &&
			ex.EventTime.Equal(e.EventTime) &&
			ex.Description == e.Description &&
			ex.LocationKey() == e.LocationKey() {
			return false
		}
	}
	s.doc.NextIDs.Event++
	e.ID = s.doc.NextIDs.Event
	e.CreatedAt = s.now()
	s.doc.Events = append(s.doc.Events, e)
	return true
}
