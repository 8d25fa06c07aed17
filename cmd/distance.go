package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var distanceMeta []string

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Manage world distances between locations",
}

var distanceSetCmd = &cobra.Command{
	Use:   "set <manuscript-id> <location-a> <location-b> <km>",
	Short: "Record (or overwrite) the distance between two locations",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid distance %q: %w", args[3], err)
		}

		meta := make(map[string]string)
		for _, kv := range distanceMeta {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("metadata %q is not key=value", kv)
			}
			meta[k] = v
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SetDistance(args[0], args[1], args[2], km, meta); err != nil {
			return err
		}
		fmt.Printf("distance(%s, %s) = %g km\n", args[1], args[2], km)
		return nil
	},
}

var distanceListCmd = &cobra.Command{
	Use:   "list <manuscript-id>",
	Short: "List recorded distances for a manuscript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		dists, err := s.ListDistances(args[0])
		if err != nil {
			return err
		}
		if len(dists) == 0 {
			fmt.Println("No distances recorded.")
			return nil
		}
		for _, d := range dists {
			fmt.Printf("  %-20s %-20s %8.1f km", d.LocA, d.LocB, d.Km)
			if len(d.Metadata) > 0 {
				fmt.Printf("  %v", d.Metadata)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	distanceSetCmd.Flags().StringArrayVar(&distanceMeta, "meta", nil, "Metadata as key=value (terrain, difficulty, ...)")
	distanceCmd.AddCommand(distanceSetCmd)
	distanceCmd.AddCommand(distanceListCmd)
	rootCmd.AddCommand(distanceCmd)
}
