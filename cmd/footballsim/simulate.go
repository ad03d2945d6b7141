package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/repository/file"
	"github.com/maxviazov/football-manager-sim/internal/seed"
	"github.com/maxviazov/football-manager-sim/internal/service"
	"github.com/maxviazov/football-manager-sim/internal/tui"
)

func simulateCmd(cfgPath *string) *cobra.Command {
	var (
		opts      seed.Options
		matchdays int
		savePath  string
		provider  string
		start     string
		scorers   int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a world and play matchdays, then print the tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			initOpts := service.InitOptions{Options: opts}
			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				initOpts.Start = t.Add(15 * time.Hour)
			}

			a, err := bootstrap(ctx, *cfgPath, func(c *config.Config) {
				if provider != "" {
					c.SoftState.Provider = provider
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			info, err := a.svc.InitWorld(ctx, initOpts)
			if err != nil {
				return err
			}
			w, err := a.svc.World()
			if err != nil {
				return err
			}
			leagues := w.LeagueIDs()
			if matchdays <= 0 {
				matchdays = w.Leagues[leagues[0]].TotalMatchdays
			}

			failures := 0
			for md := 0; md < matchdays; md++ {
				for _, id := range leagues {
					report, err := a.svc.AdvanceMatchday(ctx, id)
					if err != nil {
						return err
					}
					failures += len(report.Failures)
					if report.ProviderError != "" {
						a.log.Warn().Str("league_id", id).Str("error", report.ProviderError).Msg("soft-state analysis skipped")
					}
				}
			}

			w, err = a.svc.World()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (seed %d): %d matchdays played\n\n", info.Name, info.Seed, matchdays)
			for _, id := range w.LeagueIDs() {
				rows, err := a.svc.Standings(ctx, id)
				if err != nil {
					return err
				}
				l := w.Leagues[id]
				fmt.Fprintln(out, tui.Standings(fmt.Sprintf("%s, season %d", l.Name, l.Season), rows))
				fmt.Fprintln(out, tui.TopScorers(w, id, scorers))
				fmt.Fprintln(out)
			}
			seq, err := a.svc.LatestSequence(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d events in the log, %d fixtures failed\n", seq, failures)

			if savePath != "" {
				if err := file.SaveWorld(savePath, w); err != nil {
					return err
				}
				fmt.Fprintf(out, "world saved to %s\n", savePath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.Seed, "seed", 42, "world seed")
	f.StringVar(&opts.Name, "name", seed.DefaultName, "world name")
	f.IntVar(&opts.Leagues, "leagues", 1, "number of leagues")
	f.IntVar(&opts.TeamsPerLeague, "teams", seed.DefaultTeamsPerLeague, "teams per league")
	f.IntVar(&matchdays, "matchdays", 0, "matchdays to play per league (default: the whole season)")
	f.StringVar(&savePath, "save", "", "write the final world as YAML to this path")
	f.StringVar(&provider, "provider", "", "soft-state provider override: mock, gemini or none")
	f.StringVar(&start, "start", "", "first matchday date, YYYY-MM-DD (default: today)")
	f.IntVar(&scorers, "scorers", 5, "top scorers to list per league")
	return cmd
}
