package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/eventledger/internal/config"
	"github.com/mcoot/eventledger/internal/dependencies/clock"
	"github.com/mcoot/eventledger/internal/dependencies/random"
	"github.com/mcoot/eventledger/internal/services/auth"
	"github.com/mcoot/eventledger/internal/services/ledger"
	"github.com/mcoot/eventledger/internal/services/notify"
	"github.com/mcoot/eventledger/internal/sse"
	"github.com/mcoot/eventledger/internal/storage"
	"github.com/mcoot/eventledger/internal/storage/memory"
	redisstorage "github.com/mcoot/eventledger/internal/storage/redis"
	"github.com/mcoot/eventledger/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock    clock.Clock
	Random   random.Random
	Notifier notify.Notifier

	// Services
	LedgerService *ledger.Service
	AuthService   *auth.Service
	HubManager    *sse.HubManager

	logger *slog.Logger
	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// LedgerConfig holds ledger rules (optional)
	// If zero value, defaults to ledger.DefaultConfig()
	LedgerConfig *ledger.Config
	// Notifier receives registration confirmations (optional)
	// If nil, confirmations are logged
	Notifier notify.Notifier
}

// ConfigFromEnv maps loaded environment configuration onto a factory Config
func ConfigFromEnv(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Storage.RedisURL

	ledgerCfg := ledger.Config{StartingCurrency: cfg.Ledger.StartingCurrency}
	authCfg := auth.DefaultConfig()
	authCfg.SessionDuration = cfg.Admin.SessionTTL

	return Config{
		Logger:       logger,
		StorageType:  cfg.Storage.Backend,
		RedisConfig:  &redisCfg,
		SQLitePath:   cfg.Storage.SQLitePath,
		AuthConfig:   authCfg,
		LedgerConfig: &ledgerCfg,
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store, closer = redisStore, redisStore
	case config.StorageSQLite:
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, closer = sqliteStore, sqliteStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or sqlite", storageType)
	}
	logger.Info("storage ready", slog.String("backend", storageType))

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	ledgerCfg := ledger.DefaultConfig()
	if cfg.LedgerConfig != nil {
		ledgerCfg = *cfg.LedgerConfig
	}

	app := newWithDependencies(store, clock.New(), random.New(), notifier, cfg.AuthConfig, ledgerCfg, logger)
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	notifier notify.Notifier,
	authCfg auth.Config,
	ledgerCfg ledger.Config,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	return &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		Notifier:      notifier,
		LedgerService: ledger.New(store, clk, rnd, notifier, broadcaster, logger, ledgerCfg),
		AuthService:   auth.New(store, clk, logger, authCfg),
		HubManager:    hubManager,
		logger:        logger,
	}
}

// Close waits for background notifications, stops live streams and
// releases the storage connection
func (a *App) Close() error {
	a.LedgerService.Wait()
	a.HubManager.Close()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
