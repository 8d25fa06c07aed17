package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Manage a manuscript's travel-speed profile",
}

var speedSetCmd = &cobra.Command{
	Use:   "set <manuscript-id> <mode> <km/h>",
	Short: "Set the speed for a travel mode (mode names are case-sensitive)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kmh, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid speed %q: %w", args[2], err)
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.GetOrCreateSpeedProfile(args[0], cfg.Timeline.DefaultSpeedKmh, cfg.Timeline.HoursPerStep)
		if err != nil {
			return err
		}
		p.Speeds[args[1]] = kmh
		if err := s.UpdateSpeeds(p); err != nil {
			return err
		}
		fmt.Printf("speed[%s] = %g km/h\n", args[1], kmh)
		return nil
	},
}

var speedShowCmd = &cobra.Command{
	Use:   "show <manuscript-id>",
	Short: "Show a manuscript's speed profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := s.GetOrCreateSpeedProfile(args[0], cfg.Timeline.DefaultSpeedKmh, cfg.Timeline.HoursPerStep)
		if err != nil {
			return err
		}

		fmt.Printf("default speed:  %g km/h\n", p.DefaultSpeed)
		fmt.Printf("hours per step: %g\n", p.HoursPerStep)

		var modes []string
		for m := range p.Speeds {
			modes = append(modes, m)
		}
		sort.Strings(modes)
		for _, m := range modes {
			fmt.Printf("  %-16s %8g km/h\n", m, p.Speeds[m])
		}
		return nil
	},
}

func init() {
	speedCmd.AddCommand(speedSetCmd)
	speedCmd.AddCommand(speedShowCmd)
	rootCmd.AddCommand(speedCmd)
}
