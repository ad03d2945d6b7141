package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/handler"
	"github.com/maxviazov/football-manager-sim/internal/logger"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/repository/file"
	"github.com/maxviazov/football-manager-sim/internal/repository/memory"
	"github.com/maxviazov/football-manager-sim/internal/repository/postgres"
	"github.com/maxviazov/football-manager-sim/internal/service"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  service.Store
	pinger handler.Pinger
	svc    *service.WorldService
	close  []func()
}

func (a *app) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config loading failed: %w", err)
	}
	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("logger initialization failed: %w", err)
	}
	return cfg, log, nil
}

// bootstrap opens the configured store and builds the world service. The
// latest snapshot, if any, is restored.
func bootstrap(ctx context.Context, cfgPath string, mutate func(*config.Config)) (*app, error) {
	cfg, log, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	a := &app{cfg: cfg, log: log}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	provider, warnings, err := softstate.NewProvider(ctx, cfg.SoftState)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("soft-state provider: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Str("provider", provider.Name()).Msg(w)
	}
	if c, ok := provider.(interface{ Close() error }); ok {
		a.close = append(a.close, func() { _ = c.Close() })
	}

	a.svc = service.NewWorldService(a.store, provider, cfg.Simulation, cfg.SoftState.MaxDelta, log)
	restored, err := a.svc.Restore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info().
		Str("store", cfg.Store.Driver).
		Str("provider", provider.Name()).
		Bool("restored", restored).
		Msg("simulation ready")
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.DriverMemory:
		s := memory.New(a.log)
		a.store, a.pinger = s, s
	case config.DriverFile:
		s, err := file.Open(a.cfg.Store.Path, a.log)
		if err != nil {
			return err
		}
		a.close = append(a.close, func() { _ = s.Close() })
		a.store, a.pinger = s, s
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, a.cfg.Postgres, &a.log)
		if err != nil {
			return err
		}
		a.close = append(a.close, pool.Close)
		if err := postgres.Migrate(ctx, pool, a.log); err != nil {
			return err
		}
		s := postgres.NewStore(pool, a.log)
		a.store, a.pinger = s, s
	default:
		return errors.New("unknown store driver " + a.cfg.Store.Driver)
	}
	return nil
}
