package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sunward.gg/internal/api"
	"sunward.gg/internal/config"
	"sunward.gg/internal/dependencies/clock"
	"sunward.gg/internal/dependencies/random"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/lifecycle"
	"sunward.gg/internal/model"
	"sunward.gg/internal/notify"
	"sunward.gg/internal/registry"
	"sunward.gg/internal/services/exposure"
	"sunward.gg/internal/services/health"
	"sunward.gg/internal/services/placement"
	"sunward.gg/internal/services/session"
	"sunward.gg/internal/storage"
	"sunward.gg/internal/storage/memory"
	redisstorage "sunward.gg/internal/storage/redis"
	"sunward.gg/internal/storage/snapshot"
	"sunward.gg/internal/storage/sqlite"
	"sunward.gg/internal/world"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger *slog.Logger

	// Storage
	Storage storage.Storage
	Saver   *storage.Saver

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Simulation
	Materials model.Materials
	Registry  *registry.Registry
	Validator *placement.Validator
	Scanner   *exposure.Scanner
	Ledger    *health.Ledger
	Engine    *engine.Engine
	Loop      *engine.Loop

	// Player-facing services
	Sessions *session.Service
	Hub      *notify.Hub
	Server   *api.Server

	// Runner drives startup and shutdown in dependency order
	Runner *lifecycle.Runner
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Create storage based on type
	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.NewSystem()
	rnd := random.New()

	app := newWithDependencies(store, clk, rnd, cfg, logger)
	app.Runner = lifecycle.NewRunner(logger, app.components()...)
	return app, nil
}

func newStorage(cfg config.Config) (storage.Storage, error) {
	storageType := cfg.Storage.Type
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		if cfg.Storage.Redis.URL != "" {
			redisCfg.URL = cfg.Storage.Redis.URL
		}
		if cfg.Storage.Redis.KeyPrefix != "" {
			redisCfg.KeyPrefix = cfg.Storage.Redis.KeyPrefix
		}
		return redisstorage.New(redisCfg)
	case StorageTypeSQLite:
		return sqlite.Open(cfg.Storage.SQLite.Path)
	default:
		return nil, fmt.Errorf("invalid storage type %q: must be memory, redis or sqlite", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg config.Config, logger *slog.Logger) *App {
	materials := cfg.MaterialTable()

	reg := registry.New()
	saver := storage.NewSaver(store, logger.With(slog.String("component", "saver")), 5*time.Second)
	sessions := session.New(store, clk, rnd, logger.With(slog.String("component", "session")))
	hub := notify.NewHub(logger.With(slog.String("component", "sse")))

	dispatcher := notify.Multi{
		notify.NewLogDispatcher(logger.With(slog.String("component", "notify"))),
		notify.NewHubDispatcher(hub),
	}

	ledger := health.New(reg, materials, dispatcher, saver, sessions, health.Config{
		WarningThreshold:      cfg.Simulation.WarningThreshold,
		CriticalThreshold:     cfg.Simulation.CriticalThreshold,
		HealthCheckInterval:   cfg.HealthCheckInterval(),
		ExposureCheckInterval: cfg.ExposureCheckInterval(),
		NotificationCooldown:  cfg.NotificationCooldown(),
		DamageEnabled:         cfg.Simulation.EnvironmentalDamageEnabled,
	}, logger.With(slog.String("component", "health")))

	index := world.NewIndex(cfg.StaticOccluders())
	scanner := exposure.New(reg, index, cfg.ExposureDir(), ledger,
		logger.With(slog.String("component", "exposure")))

	validator := placement.New(reg, clk, placement.Config{
		MaxStructuresPerOwner: cfg.Placement.MaxStructuresPerOwner,
		MaxDistanceFromOrigin: cfg.Placement.MaxPlacementDistanceFromOrigin,
		RateLimitWindow:       cfg.RateLimitWindow(),
		MaxActionsPerWindow:   cfg.Placement.MaxActionsPerWindow,
	})

	eng := engine.New(engine.Deps{
		Clock:       clk,
		Logger:      logger.With(slog.String("component", "engine")),
		Registry:    reg,
		Validator:   validator,
		Scanner:     scanner,
		Ledger:      ledger,
		Store:       store,
		Sink:        saver,
		Materials:   materials,
		MaterialFor: cfg.MaterialFor,
	}, engine.Config{
		TickRate:              cfg.TickRate(),
		ExposureCheckInterval: cfg.ExposureCheckInterval(),
		HealthCheckInterval:   cfg.HealthCheckInterval(),
	})

	loop := engine.NewLoop(eng, clk, cfg.TickRate(), logger.With(slog.String("component", "loop")))

	router := api.NewRouter(api.RouterConfig{
		Logger:       logger.With(slog.String("component", "http")),
		Sessions:     sessions,
		Engine:       eng,
		Hub:          hub,
		Materials:    materials,
		AdminKeyHash: cfg.Admin.KeyHash,
	})
	server := api.NewServer(router, api.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    0,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	}, logger.With(slog.String("component", "http")))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Storage:   store,
		Saver:     saver,
		Clock:     clk,
		Random:    rnd,
		Materials: materials,
		Registry:  reg,
		Validator: validator,
		Scanner:   scanner,
		Ledger:    ledger,
		Engine:    eng,
		Loop:      loop,
		Sessions:  sessions,
		Hub:       hub,
		Server:    server,
	}
}

// components assembles the lifecycle component list. Start order is the list
// order; shutdown runs in reverse, so the HTTP server stops taking requests
// before the simulation stops, and the saver drains before storage closes.
func (a *App) components() []lifecycle.Component {
	return []lifecycle.Component{
		lifecycle.NewComponent("storage",
			func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return a.Storage.Ping(pingCtx)
			},
			nil,
			func(ctx context.Context) error {
				if closer, ok := a.Storage.(io.Closer); ok {
					return closer.Close()
				}
				return nil
			},
		),
		lifecycle.NewComponent("snapshot",
			a.restoreSnapshot,
			nil,
			a.writeSnapshot,
		),
		lifecycle.NewComponent("saver",
			nil,
			func(ctx context.Context) error {
				a.Saver.Start()
				return nil
			},
			func(ctx context.Context) error {
				a.Saver.Stop()
				return nil
			},
		),
		lifecycle.NewComponent("sse-hub",
			nil,
			func(ctx context.Context) error {
				go a.Hub.Run()
				return nil
			},
			func(ctx context.Context) error {
				a.Hub.Close()
				return nil
			},
		),
		lifecycle.NewComponent("simulation",
			nil,
			func(ctx context.Context) error {
				a.Loop.Start()
				return nil
			},
			func(ctx context.Context) error {
				a.Loop.Stop()
				// Push the final state of every owner at the saver
				// before it drains.
				a.Engine.FlushAll()
				return nil
			},
		),
		lifecycle.NewComponent("http",
			nil,
			func(ctx context.Context) error {
				go func() {
					if err := a.Server.Start(); err != nil {
						a.Logger.Error("http server failed", slog.Any("error", err))
					}
				}()
				return nil
			},
			func(ctx context.Context) error {
				return a.Server.Shutdown(ctx)
			},
		),
	}
}

// restoreSnapshot seeds storage from the shutdown archive. Owners already
// present in storage are left alone; the backend is authoritative and the
// archive only fills gaps, such as a fresh backend after migration.
func (a *App) restoreSnapshot(ctx context.Context) error {
	if a.Config.Snapshot.Path == "" || !a.Config.Snapshot.RestoreOnStart {
		return nil
	}

	arc, err := snapshot.Read(a.Config.Snapshot.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.Logger.Debug("no snapshot to restore", slog.String("path", a.Config.Snapshot.Path))
			return nil
		}
		a.Logger.Warn("snapshot restore failed, continuing with storage state",
			slog.String("path", a.Config.Snapshot.Path),
			slog.Any("error", err))
		return nil
	}

	existing, err := a.Storage.Owners(ctx)
	if err != nil {
		return fmt.Errorf("listing owners for snapshot restore: %w", err)
	}
	known := make(map[model.PlayerID]bool, len(existing))
	for _, owner := range existing {
		known[owner] = true
	}

	restored := 0
	for owner, records := range arc.Structures {
		if known[owner] {
			continue
		}
		if err := a.Storage.SaveStructures(ctx, owner, records); err != nil {
			return fmt.Errorf("restoring snapshot owner %s: %w", owner, err)
		}
		restored++
	}

	if restored > 0 {
		a.Logger.Info("restored snapshot",
			slog.String("path", a.Config.Snapshot.Path),
			slog.Time("taken_at", arc.Header.TakenAt),
			slog.Int("owners", restored))
	}
	return nil
}

// writeSnapshot archives the final state at shutdown: the storage dump
// overlaid with the engine's in-memory records, which win for any owner
// whose last save did not land.
func (a *App) writeSnapshot(ctx context.Context) error {
	if a.Config.Snapshot.Path == "" {
		return nil
	}

	structures, err := storage.DumpAll(ctx, a.Storage)
	if err != nil {
		a.Logger.Warn("storage dump for snapshot failed, archiving live state only",
			slog.Any("error", err))
		structures = make(map[model.PlayerID]map[model.StructureID]model.StructureRecord)
	}
	for owner, records := range a.Engine.DumpRecords() {
		structures[owner] = records
	}

	if err := snapshot.Write(a.Config.Snapshot.Path, a.Clock.Now(), structures); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	a.Logger.Info("wrote snapshot",
		slog.String("path", a.Config.Snapshot.Path),
		slog.Int("owners", len(structures)))
	return nil
}
