package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/maxviazov/football-manager-sim/internal/tui"
)

func feedCmd(cfgPath *string) *cobra.Command {
	var (
		url      string
		after    int64
		types    string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Tail the event log in the terminal",
		Long:  "Tail the event log of a running server (--url) or of the configured store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter []string
			if types != "" {
				filter = strings.Split(types, ",")
			}

			var src tui.Source
			if url != "" {
				src = tui.NewHTTPSource(strings.TrimRight(url, "/"))
			} else {
				a, err := bootstrap(cmd.Context(), *cfgPath, nil)
				if err != nil {
					return err
				}
				defer a.Close()
				src = a.svc
			}

			p := tea.NewProgram(tui.NewModel(src, after, interval, filter), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&url, "url", "", "base URL of a running server, e.g. http://localhost:8080")
	f.Int64Var(&after, "after", 0, "start after this sequence number")
	f.StringVar(&types, "types", "", "comma separated event types to show")
	f.DurationVar(&interval, "interval", time.Second, "poll interval")
	return cmd
}
