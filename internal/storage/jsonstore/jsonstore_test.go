package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BearBump/ParcelTrack/internal/models"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	st, err := New(path)
	require.NoError(t, err)
	return st, path
}

func TestStorage_CreateShipmentValidation(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := st.CreateShipment(ctx, 1, models.ShipmentCreateInput{TrackingNumber: ""})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)

	list, err := st.ListShipments(ctx, 1, true)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestStorage_MergeIdempotentAndPersisted(t *testing.T) {
	st, path := newTestStorage(t)
	ctx := context.Background()

	id, err := st.CreateShipment(ctx, 7, models.ShipmentCreateInput{TrackingNumber: "AB1"})
	require.NoError(t, err)

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	loc := "Berlin"
	events := []*models.TrackingEvent{
		{EventTime: t1, Description: "Picked up"},
		{EventTime: t2, Location: &loc, Description: "In transit"},
	}
	in := models.MergeInput{OwnerID: 7, ShipmentID: id, Status: models.StatusInTransit, Carrier: "dhl", Events: events}

	n, err := st.MergeSyncedEvents(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = st.MergeSyncedEvents(ctx, in)
	require.NoError(t, err)
	require.Zero(t, n)

	// один старый + один новый -> вставлен ровно один
	in.Events = []*models.TrackingEvent{events[0], {EventTime: t2.Add(time.Hour), Description: "Out for delivery"}}
	n, err = st.MergeSyncedEvents(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	reopened, err := New(path)
	require.NoError(t, err)
	evs, err := reopened.ListEvents(ctx, 7, id)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	require.Equal(t, "Out for delivery", evs[0].Description)
	require.Equal(t, "2025-03-01 10:00:00", evs[2].EventTimeText())

	sh, err := reopened.GetShipment(ctx, 7, id)
	require.NoError(t, err)
	require.Equal(t, "dhl", *sh.Carrier)
	require.Equal(t, t2.Add(time.Hour), sh.LastEventAt.UTC())

	list, err := reopened.ListShipments(ctx, 7, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].LastLocation)
}

func TestStorage_LastEventAtAsymmetry(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	id, err := st.CreateShipment(ctx, 1, models.ShipmentCreateInput{TrackingNumber: "X"})
	require.NoError(t, err)

	late := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	early := late.Add(-48 * time.Hour)

	_, err = st.MergeSyncedEvents(ctx, models.MergeInput{OwnerID: 1, ShipmentID: id, Status: models.StatusInTransit, Events: []*models.TrackingEvent{{EventTime: late, Description: "a"}}})
	require.NoError(t, err)
	_, err = st.MergeSyncedEvents(ctx, models.MergeInput{OwnerID: 1, ShipmentID: id, Status: models.StatusInTransit, Events: []*models.TrackingEvent{{EventTime: early, Description: "b"}}})
	require.NoError(t, err)

	sh, err := st.GetShipment(ctx, 1, id)
	require.NoError(t, err)
	require.Equal(t, late, *sh.LastEventAt)

	require.NoError(t, st.AddManualEvent(ctx, 1, id, models.ManualEvent{EventTime: early, Description: "manual", Status: "bogus"}))
	sh, err = st.GetShipment(ctx, 1, id)
	require.NoError(t, err)
	require.Equal(t, early, *sh.LastEventAt)
	require.Equal(t, models.StatusUnknown, sh.Status)
}

func TestStorage_OwnerScoping(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	id, err := st.CreateShipment(ctx, 1, models.ShipmentCreateInput{TrackingNumber: "X"})
	require.NoError(t, err)

	_, err = st.GetShipment(ctx, 2, id)
	require.ErrorIs(t, err, models.ErrShipmentNotFound)
	require.ErrorIs(t, st.SetArchived(ctx, 2, id, true), models.ErrShipmentNotFound)
	require.ErrorIs(t, st.AddManualEvent(ctx, 2, id, models.ManualEvent{Description: "x"}), models.ErrShipmentNotFound)
	_, err = st.MergeSyncedEvents(ctx, models.MergeInput{OwnerID: 2, ShipmentID: id, Status: models.StatusDelivered})
	require.ErrorIs(t, err, models.ErrShipmentNotFound)

	require.NoError(t, st.SetArchived(ctx, 1, id, true))
	active, err := st.ListShipments(ctx, 1, false)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestStorage_Users(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	id, err := st.CreateUser(ctx, "Ann", " Ann@Example.com ", "hash")
	require.NoError(t, err)
	_, err = st.CreateUser(ctx, "Ann", "ann@example.com", "hash")
	require.ErrorIs(t, err, models.ErrEmailTaken)

	u, err := st.GetUserByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	_, err = st.GetUserByID(ctx, 42)
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestStorage_PersistFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	st, err := New(path)
	require.NoError(t, err)
	ctx := context.Background()

	// путь занят директорией: rename не пройдёт
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	_, err = st.CreateShipment(ctx, 1, models.ShipmentCreateInput{TrackingNumber: "X"})
	require.Error(t, err)

	list, err := st.ListShipments(ctx, 1, true)
	require.NoError(t, err)
	require.Empty(t, list)
}
