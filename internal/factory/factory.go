package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/idlecoins/internal/api"
	"github.com/mcoot/idlecoins/internal/config"
	"github.com/mcoot/idlecoins/internal/dependencies/clock"
	"github.com/mcoot/idlecoins/internal/dependencies/random"
	"github.com/mcoot/idlecoins/internal/engine"
	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/realtime"
	"github.com/mcoot/idlecoins/internal/services/achievement"
	"github.com/mcoot/idlecoins/internal/services/catalog"
	"github.com/mcoot/idlecoins/internal/services/leaderboard"
	"github.com/mcoot/idlecoins/internal/services/purchase"
	"github.com/mcoot/idlecoins/internal/services/scheduler"
	"github.com/mcoot/idlecoins/internal/services/session"
	"github.com/mcoot/idlecoins/internal/storage"
	"github.com/mcoot/idlecoins/internal/storage/memory"
	redisstorage "github.com/mcoot/idlecoins/internal/storage/redis"
	"github.com/mcoot/idlecoins/internal/storage/sqlite"
	"github.com/mcoot/idlecoins/internal/transport/ws"
)

// Scheduled task names
const (
	TaskTick        = "tick"
	TaskPersist     = "persist"
	TaskLeaderboard = "leaderboard"
	TaskCleanup     = "cleanup"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Runtime
	Loop      *engine.Loop
	Hub       *realtime.Hub
	Scheduler *scheduler.Scheduler

	// Services
	Catalog      *catalog.Catalog
	Purchases    *purchase.Service
	Achievements *achievement.Evaluator
	Sessions     *session.Manager
	Leaderboard  *leaderboard.Builder

	// Transport
	Realtime *ws.Handler

	Settings config.Config
	logger   *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Settings is the loaded configuration. Zero-valued fields take defaults.
	Settings config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	settings := cfg.Settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cat, err := loadCatalog(settings.Game)
	if err != nil {
		return nil, err
	}

	store, err := openStorage(settings.Storage)
	if err != nil {
		return nil, err
	}
	logger.Info("storage opened", slog.String("type", settings.Storage.Type))

	app, err := newWithDependencies(store, clock.New(), random.New(), cat, settings, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func loadCatalog(game config.GameConfig) (*catalog.Catalog, error) {
	if game.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(game.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		return redisstorage.New(redisCfg)
	case config.StorageSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, errors.New("invalid storage type: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Store,
	clk clock.Clock,
	rnd random.Random,
	cat *catalog.Catalog,
	settings config.Config,
	logger *slog.Logger,
) (*App, error) {
	loop := engine.New(logger)
	hub := realtime.NewHub(logger)

	purchases := purchase.New(cat, settings.Game.MaxGoldenClickChance)
	achievements := achievement.NewEvaluator(achievement.Default)
	sessions := session.NewManager(loop, store, purchases, achievements, hub, clk, rnd, session.Config{
		MaxIDLength:     settings.Game.MaxIDLength,
		OfflineCap:      settings.Game.OfflineCap,
		StaleAfter:      settings.Cleanup.Retention,
		StaleMoneyBelow: settings.Cleanup.MoneyBelow,
	}, logger)
	board := leaderboard.NewBuilder(store, sessions, clk, logger)

	wsCfg := ws.DefaultConfig()
	wsCfg.LeaderboardSize = settings.Game.LeaderboardSize
	handler := ws.NewHandler(sessions, board, hub, wsCfg, logger)

	app := &App{
		Storage:      store,
		Clock:        clk,
		Random:       rnd,
		Loop:         loop,
		Hub:          hub,
		Scheduler:    scheduler.New(logger),
		Catalog:      cat,
		Purchases:    purchases,
		Achievements: achievements,
		Sessions:     sessions,
		Leaderboard:  board,
		Realtime:     handler,
		Settings:     settings,
		logger:       logger,
	}
	if err := app.schedule(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) schedule() error {
	s := a.Settings.Schedule
	tasks := []scheduler.Task{
		{Name: TaskTick, Interval: s.Tick, Run: a.Sessions.Tick},
		{Name: TaskPersist, Interval: s.Persist, Run: func(ctx context.Context) error {
			_, err := a.Sessions.PersistAll(ctx)
			return err
		}},
		{Name: TaskLeaderboard, Interval: s.Leaderboard, Run: a.BroadcastLeaderboard},
		{Name: TaskCleanup, Interval: s.Cleanup, Run: func(ctx context.Context) error {
			_, err := a.Sessions.CleanupStale(ctx)
			return err
		}},
	}
	for _, t := range tasks {
		if err := a.Scheduler.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastLeaderboard sends the all-time top list to every connection
func (a *App) BroadcastLeaderboard(ctx context.Context) error {
	entries, err := a.Leaderboard.Top(ctx, a.Settings.Game.LeaderboardSize, model.TimeFilterAll)
	if err != nil {
		return err
	}
	a.Hub.Broadcast(model.EventLeaderboardUpdate, entries)
	return nil
}

// Start runs the engine loop and hub and begins the scheduled cadences
func (a *App) Start(ctx context.Context) error {
	go a.Loop.Run()
	go a.Hub.Run()
	return a.Scheduler.Start(ctx)
}

// Shutdown stops the cadences, closes every connection, flushes all cached
// players to storage and releases the store
func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()

	a.Hub.Close()
	var errs []error
	if err := a.Realtime.Drain(ctx); err != nil {
		errs = append(errs, fmt.Errorf("draining connections: %w", err))
	}

	if err := a.Sessions.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Loop.Close()

	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	a.logger.Info("application stopped")
	return errors.Join(errs...)
}

// Handler returns the HTTP surface: the API routes and the realtime channel
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:          a.logger,
		Leaderboard:     a.Leaderboard,
		Sessions:        a.Sessions,
		Clients:         a.Hub,
		Realtime:        a.Realtime,
		LeaderboardSize: a.Settings.Game.LeaderboardSize,
		MaxIDLength:     a.Settings.Game.MaxIDLength,
	})
}
