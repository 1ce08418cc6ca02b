package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/ParcelTrack/internal/broker/messages"
	"github.com/BearBump/ParcelTrack/internal/cache"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/models"
)

type Repository interface {
	CreateShipment(ctx context.Context, ownerID uint64, in models.ShipmentCreateInput) (uint64, error)
	GetShipment(ctx context.Context, ownerID, shipmentID uint64) (*models.Shipment, error)
	ListShipments(ctx context.Context, ownerID uint64, includeArchived bool) ([]*models.Shipment, error)
	ListEvents(ctx context.Context, ownerID, shipmentID uint64) ([]*models.TrackingEvent, error)
	AddManualEvent(ctx context.Context, ownerID, shipmentID uint64, ev models.ManualEvent) error
	SetArchived(ctx context.Context, ownerID, shipmentID uint64, archived bool) error
	MergeSyncedEvents(ctx context.Context, in models.MergeInput) (int, error)
}

type Publisher interface {
	PublishShipmentSynced(ctx context.Context, msg messages.ShipmentSynced) error
}

type Service struct {
	repo   Repository
	client carrier.Client

	cache   cache.BytesCache
	listTTL time.Duration

	limiter   cache.Limiter
	publisher Publisher

	now func() time.Time
}

type Option func(*Service)

// WithListCache включает кэш списков посылок; ttl <= 0 выключает его.
func WithListCache(c cache.BytesCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.listTTL = ttl
	}
}

func WithLimiter(l cache.Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(repo Repository, client carrier.Client, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) CreateShipment(ctx context.Context, ownerID uint64, in models.ShipmentCreateInput) (uint64, error) {
	in, err := in.Normalize()
	if err != nil {
		return 0, err
	}
	id, err := s.repo.CreateShipment(ctx, ownerID, in)
	if err != nil {
		return 0, err
	}
	s.invalidateLists(ctx, ownerID)
	return id, nil
}

func (s *Service) GetShipment(ctx context.Context, ownerID, shipmentID uint64) (*models.Shipment, error) {
	return s.repo.GetShipment(ctx, ownerID, shipmentID)
}

func (s *Service) ListEvents(ctx context.Context, ownerID, shipmentID uint64) ([]*models.TrackingEvent, error) {
	return s.repo.ListEvents(ctx, ownerID, shipmentID)
}

func (s *Service) AddManualEvent(ctx context.Context, ownerID, shipmentID uint64, ev models.ManualEvent) error {
	ev, err := ev.Normalize(s.now())
	if err != nil {
		return err
	}
	if err := s.repo.AddManualEvent(ctx, ownerID, shipmentID, ev); err != nil {
		return err
	}
	s.invalidateLists(ctx, ownerID)
	return nil
}

func (s *Service) SetArchived(ctx context.Context, ownerID, shipmentID uint64, archived bool) error {
	if err := s.repo.SetArchived(ctx, ownerID, shipmentID, archived); err != nil {
		return err
	}
	s.invalidateLists(ctx, ownerID)
	return nil
}

// ListShipments читает список через кэш. Кэш работает как "лучшее усилие", любая ошибка
// кэша считается промахом.
func (s *Service) ListShipments(ctx context.Context, ownerID uint64, includeArchived bool) ([]*models.Shipment, error) {
	key := listKey(ownerID, includeArchived)
	if s.cacheEnabled() {
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var out []*models.Shipment
			if json.Unmarshal(b, &out) == nil {
				return out, nil
			}
		}
	}

	out, err := s.repo.ListShipments(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if b, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, key, b, s.listTTL); err != nil {
				slog.Debug("list cache set failed", "owner_id", ownerID, "error", err.Error())
			}
		}
	}
	return out, nil
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.listTTL > 0
}

func (s *Service) invalidateLists(ctx context.Context, ownerID uint64) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Del(ctx, listKey(ownerID, true), listKey(ownerID, false)); err != nil {
		slog.Warn("list cache invalidate failed", "owner_id", ownerID, "error", err.Error())
	}
}

func listKey(ownerID uint64, includeArchived bool) string {
	scope := "active"
	if includeArchived {
		scope = "all"
	}
	return fmt.Sprintf("shipments:%d:list:%s", ownerID, scope)
}
