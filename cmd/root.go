package cmd

import (
	"fmt"
	"os"

	"github.com/roddenjw/plotline/internal/config"
	"github.com/roddenjw/plotline/internal/engine"
	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "plotline",
	Short: "Check a manuscript's timeline for travel, presence and ordering contradictions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if !cmd.Flags().Changed("data-dir") {
			dataDir = cfg.Data.Dir
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "Directory for the timeline database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() error {
	return rootCmd.Execute()
}

func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// newEngine wires an Engine over the store with the configured world-physics
// defaults. The store satisfies all five engine dependencies.
func newEngine(s *store.Store) *engine.Engine {
	e := engine.New(s, s, s, s, s)
	e.DefaultSpeed = cfg.Timeline.DefaultSpeedKmh
	e.HoursPerStep = cfg.Timeline.HoursPerStep
	e.DefaultMode = cfg.Timeline.DefaultMode
	return e
}
