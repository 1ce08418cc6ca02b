package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BearBump/ParcelTrack/config"
	"github.com/BearBump/ParcelTrack/internal/api/httpapi"
	"github.com/BearBump/ParcelTrack/internal/broker/kafka"
	"github.com/BearBump/ParcelTrack/internal/cache/rediscache"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/aftership"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/fake"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/openai"
	"github.com/BearBump/ParcelTrack/internal/integrations/carrier/ship24"
	"github.com/BearBump/ParcelTrack/internal/services/auth"
	"github.com/BearBump/ParcelTrack/internal/services/shipments"
	"github.com/BearBump/ParcelTrack/internal/storage/jsonstore"
	"github.com/BearBump/ParcelTrack/internal/storage/pgshipments"
)

const defaultJSONPath = "data/parceltrack.json"

// store: общий контракт pg и json хранилищ.
type store interface {
	shipments.Repository
	auth.UserRepository
	Close()
}

type parcelAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     parcelAPIOpts
	handler  *httpapi.Handler
	st       store
	redis    *redis.Client
	producer *kafka.Producer
}

func mustBootstrapParcelAPI() *parcelAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}
	cfg.ApplyEnv(os.Getenv)

	httpAddr := cfg.ParcelTrack.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st, err := openStore(ctx, cfg)
	if err != nil {
		cancel()
		panic(err)
	}

	client, err := newTrackingClient(cfg.Tracking)
	if err != nil {
		cancel()
		st.Close()
		panic(err)
	}
	slog.Info("tracking provider selected", "provider", client.Provider())

	app := &parcelAPIApp{ctx: ctx, cancel: cancel, st: st}

	var svcOpts []shipments.Option
	if cfg.Redis.Host != "" {
		app.redis = rediscache.NewClient(fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port), cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := app.redis.Ping(pingCtx).Err(); err != nil {
			// кэш и лимитер работают как "лучшее усилие", старт не блокируем
			slog.Warn("redis is not reachable", "error", err.Error())
		}
		pingCancel()

		ttl := time.Duration(cfg.ParcelTrack.ListCacheTTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = time.Minute
		}
		svcOpts = append(svcOpts, shipments.WithListCache(rediscache.New(app.redis), ttl))

		perMin := int64(cfg.ParcelTrack.SyncRateLimitPerMinute)
		if perMin <= 0 {
			perMin = 20
		}
		svcOpts = append(svcOpts, shipments.WithLimiter(rediscache.NewRateLimiter(app.redis, "sync", perMin, time.Minute)))
	}

	if cfg.Kafka.Host != "" {
		topic := cfg.Kafka.ShipmentSyncedTopicName
		if topic == "" {
			topic = "shipment.synced"
		}
		brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
		app.producer = kafka.NewProducer(brokers, topic)
		svcOpts = append(svcOpts, shipments.WithPublisher(app.producer))
	}

	authSvc, err := newAuthService(cfg.Auth, st)
	if err != nil {
		app.Close()
		panic(err)
	}

	app.handler = httpapi.New(shipments.New(st, client, svcOpts...), authSvc)
	app.opts = parcelAPIOpts{
		httpAddr:    httpAddr,
		swaggerPath: os.Getenv("swaggerPath"),
	}
	return app
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case "", "postgres":
		return mustOpenPostgresWithRetry(ctx, cfg.Database.ConnString(), 60*time.Second), nil
	case "json":
		path := cfg.Storage.JSONPath
		if path == "" {
			path = defaultJSONPath
		}
		return jsonstore.New(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func mustOpenPostgresWithRetry(ctx context.Context, connString string, wait time.Duration) *pgshipments.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgshipments.New(ctx, connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

// newTrackingClient строит клиента выбранного провайдера. Клиент без ключа
// допустим: он отвечает ConfigurationError без сетевого вызова.
func newTrackingClient(cfg config.TrackingConfig) (carrier.Client, error) {
	switch p := cfg.ResolvedProvider(); p {
	case ship24.Provider:
		return ship24.New(cfg.Ship24.BaseURL, cfg.Ship24.APIKey, seconds(cfg.Ship24.TimeoutSeconds)), nil
	case aftership.Provider:
		return aftership.New(cfg.AfterShip.BaseURL, cfg.AfterShip.APIVersion, cfg.AfterShip.APIKey, seconds(cfg.AfterShip.TimeoutSeconds)), nil
	case openai.Provider:
		return openai.New(openai.Options{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKey:    cfg.OpenAI.APIKey,
			Model:     cfg.OpenAI.Model,
			Timeout:   seconds(cfg.OpenAI.TimeoutSeconds),
			WebSearch: cfg.OpenAIWebSearch(),
		}), nil
	case fake.Provider:
		return fake.New(), nil
	default:
		return nil, fmt.Errorf("unknown tracking provider %q", p)
	}
}

func newAuthService(cfg config.AuthConfig, users auth.UserRepository) (*auth.Service, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("auth.jwt_secret (AUTH_JWT_SECRET) is required")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "parceltrack"
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, issuer, seconds(cfg.TokenTTLSeconds))
	return auth.New(users, auth.NewHasher(cfg.BcryptCost), tokens), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (a *parcelAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.st != nil {
		a.st.Close()
	}
}

func (a *parcelAPIApp) Run() error {
	return runParcelAPI(a.ctx, a.opts, a.handler.Router())
}
