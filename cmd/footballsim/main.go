// Command footballsim runs the football management simulation.
//
// Usage:
//
//	footballsim serve
//	footballsim simulate --seed 42 --matchdays 10 --save world.yaml
//	footballsim migrate
//	footballsim feed --url http://localhost:8080
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:           "footballsim",
		Short:         "Deterministic football management simulation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file (APP_* env vars override)")

	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(simulateCmd(&cfgPath))
	root.AddCommand(migrateCmd(&cfgPath))
	root.AddCommand(feedCmd(&cfgPath))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
