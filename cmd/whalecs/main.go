package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/event"
	"github.com/l1jgo/whalecs/internal/codec"
	"github.com/l1jgo/whalecs/internal/config"
	"github.com/l1jgo/whalecs/internal/data"
	"github.com/l1jgo/whalecs/internal/persist"
	"github.com/l1jgo/whalecs/internal/scripting"
	"github.com/l1jgo/whalecs/internal/sim"
	"github.com/l1jgo/whalecs/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/whalecs.toml"
	if p := os.Getenv("WHALECS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && os.Getenv("WHALECS_CONFIG") == "" {
			cfg = config.Defaults()
		} else {
			return fmt.Errorf("load config: %w", err)
		}
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Optional PostgreSQL: snapshots + mutation journal
	var (
		db        *persist.DB
		snapshots *persist.SnapshotRepo
		journalDB *persist.JournalRepo
	)
	reg := codec.NewRegistry()
	sim.RegisterComponents(reg)

	if cfg.Database.DSN != "" {
		db, err = persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		snapshots = persist.NewSnapshotRepo(db, reg)
		journalDB = persist.NewJournalRepo(db)
		log.Info("persistence enabled")
	} else {
		log.Info("persistence disabled (no dsn configured)")
	}

	// 4. World, event bus, tick pipeline
	bus := event.NewBus()
	world := ecs.NewWorld(
		ecs.WithLogger(log),
		ecs.WithTracker(event.NewBusTracker(bus)),
		ecs.WithEntityCapacity(cfg.Engine.EntityCapacity),
	)
	event.Subscribe(bus, func(ev event.EntityCreated) {
		log.Debug("entity created", zap.Int32("entity", int32(ev.Entity)))
	})
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		log.Debug("entity destroyed", zap.Int32("entity", int32(ev.Entity)))
	})

	var expired []ecs.Entity
	journal := &sim.Journal{}
	runner := system.NewRunner()
	runner.Register(sim.NewEventSystem(bus))
	movement, err := sim.NewMovementSystem(world)
	if err != nil {
		return fmt.Errorf("movement system: %w", err)
	}
	runner.Register(movement)
	decay, err := sim.NewDecaySystem(world, &expired)
	if err != nil {
		return fmt.Errorf("decay system: %w", err)
	}
	runner.Register(decay)
	runner.Register(sim.NewCleanupSystem(world, &expired, journal, log))

	// 5. Prefabs and initial spawns
	var spawner *data.Spawner
	table, err := data.LoadPrefabTable(cfg.Data.PrefabFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("prefabs: %w", err)
		}
		log.Warn("no prefab table", zap.String("file", cfg.Data.PrefabFile))
	} else {
		spawner = data.NewSpawner(table, reg)
		spawned, err := spawner.SpawnAll(world)
		if err != nil {
			return fmt.Errorf("initial spawns: %w", err)
		}
		log.Info("prefabs loaded",
			zap.Int("templates", table.Count()),
			zap.Int("spawned", len(spawned)))
	}

	// 6. Optional Lua scenario
	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, world, reg, spawner, log)
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
		log.Info("scripting enabled", zap.String("dir", cfg.Scripting.Dir))
	}

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	log.Info("whalecs running",
		zap.Duration("tick_rate", cfg.Simulation.TickRate),
		zap.Int("entities", world.Size()))

	tick := 0
loop:
	for {
		select {
		case <-ticker.C:
			tick++
			if engine != nil {
				if err := engine.TickScenario(tick); err != nil {
					log.Error("scenario tick failed", zap.Error(err))
				}
			}
			runner.Tick(cfg.Simulation.TickRate)
			flushTick(journal, journalDB, snapshots, world, cfg, tick, log)
			if cfg.Simulation.Ticks > 0 && tick >= cfg.Simulation.Ticks {
				log.Info("tick budget reached", zap.Int("ticks", tick))
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	// 8. Final snapshot
	if snapshots != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		id, err := snapshots.Save(sctx, "shutdown", world)
		if err != nil {
			log.Error("final snapshot failed", zap.Error(err))
		} else {
			log.Info("final snapshot saved", zap.Int64("snapshot_id", id))
		}
	}
	log.Info("stopped", zap.Int("entities", world.Size()), zap.Int("ticks", tick))
	return nil
}

// flushTick drains the tick's journal batch and takes periodic
// snapshots when persistence is on.
func flushTick(journal *sim.Journal, journalDB *persist.JournalRepo,
	snapshots *persist.SnapshotRepo, world *ecs.World, cfg *config.Config, tick int, log *zap.Logger) {
	entries := journal.Drain()
	if journalDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := journalDB.Append(ctx, entries); err != nil {
		log.Error("journal flush failed", zap.Error(err))
	}
	if snapshots != nil && cfg.Simulation.SnapshotEvery > 0 && tick%cfg.Simulation.SnapshotEvery == 0 {
		id, err := snapshots.Save(ctx, "periodic", world)
		if err != nil {
			log.Error("snapshot failed", zap.Error(err))
			return
		}
		if err := journalDB.MarkProcessed(ctx); err != nil {
			log.Error("journal mark failed", zap.Error(err))
		}
		log.Debug("snapshot saved", zap.Int64("snapshot_id", id), zap.Int("tick", tick))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
