package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/repository/postgres"
)

func migrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverPostgres {
				return errors.New("migrate requires store.driver=postgres")
			}
			pool, err := repository.NewPool(cmd.Context(), cfg.Postgres, &log)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgres.Migrate(cmd.Context(), pool, log); err != nil {
				return err
			}
			log.Info().Msg("migrations up to date")
			return nil
		},
	}
}
