// Package bootstrap builds the process-wide store handle, notification
// pipeline and engine services from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"slotbook/config"
	"slotbook/cron"
	"slotbook/database"
	"slotbook/database/postgres"
	"slotbook/database/repository"
	memoryRepo "slotbook/database/repository/memory"
	mongoRepo "slotbook/database/repository/mongo"
	postgresRepo "slotbook/database/repository/postgres"
	"slotbook/services/booking"
	"slotbook/services/catalog"
	"slotbook/services/ledger"
	"slotbook/services/notification"
	"slotbook/services/provider"
	"slotbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	NotifyDirect = "direct"
	NotifyQueue  = "queue"

	TransportLog      = "log"
	TransportTelegram = "telegram"
	TransportFCM      = "fcm"
)

// OpenStore connects the driver named by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return mongoRepo.NewStore(client, cfg.DatabaseName), nil
	case DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return postgresRepo.NewStore(db), nil
	case DriverMemory:
		utils.GetLogger().Warn("Using the in-memory store; state is lost on exit")
		return memoryRepo.New(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want mongo, postgres or memory)", cfg.StoreDriver)
	}
}

// Migrate brings the configured store's schema up to date and returns what
// it applied.
func Migrate(ctx context.Context, cfg config.Config) ([]string, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer client.Disconnect(context.Background())
		if err := mongoRepo.NewStore(client, cfg.DatabaseName).EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return []string{"mongo indexes"}, nil
	case DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return postgres.Migrate(ctx, db)
	case DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// NewSender picks the transport named by NOTIFY_TRANSPORT.
func NewSender(ctx context.Context, cfg config.Config) (notification.Sender, error) {
	switch cfg.NotifyTransport {
	case TransportLog, "":
		return notification.LogSender{}, nil
	case TransportTelegram:
		if cfg.TelegramBotToken == "" {
			return nil, fmt.Errorf("NOTIFY_TRANSPORT=telegram needs TELEGRAM_BOT_TOKEN")
		}
		return notification.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramAPIURL)
	case TransportFCM:
		client, err := utils.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		return &notification.FCMSender{Client: client}, nil
	default:
		return nil, fmt.Errorf("unknown NOTIFY_TRANSPORT %q", cfg.NotifyTransport)
	}
}

// NewDispatcher builds the dispatcher named by NOTIFY_MODE. The returned
// func releases whatever it opened.
func NewDispatcher(ctx context.Context, cfg config.Config) (notification.Dispatcher, func(), error) {
	switch cfg.NotifyMode {
	case NotifyDirect, "":
		sender, err := NewSender(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return notification.NewDirectDispatcher(sender, cfg.NotifyTimeout), func() {}, nil
	case NotifyQueue:
		client := asynq.NewClient(cron.RedisOpt())
		return notification.NewQueueDispatcher(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_MODE %q", cfg.NotifyMode)
	}
}

// Services is the set of engine services sharing one store.
type Services struct {
	Providers *provider.DefaultProviderService
	Catalog   *catalog.DefaultCatalogService
	Ledger    *ledger.DefaultLedgerService
	Bookings  *booking.DefaultBookingService
}

// NewServices wires the engine. cacheClient may be nil, in which case the
// public catalog is read straight from the store.
func NewServices(store repository.Store, cacheClient *redis.Client, dispatcher notification.Dispatcher, cfg config.Config) Services {
	var cache catalog.PublicCache
	var invalidator provider.CacheInvalidator
	if cacheClient != nil {
		ttl := cfg.CatalogCacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		rc := catalog.NewRedisCache(cacheClient, ttl)
		cache, invalidator = rc, rc
	}
	return Services{
		Providers: provider.NewDefaultProviderService(store, invalidator),
		Catalog:   catalog.NewDefaultCatalogService(store, cache),
		Ledger:    ledger.NewDefaultLedgerService(store, cfg.DefaultSlotLimit),
		Bookings:  booking.NewDefaultBookingService(store, dispatcher, config.Location()),
	}
}
