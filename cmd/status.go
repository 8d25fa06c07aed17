package cmd

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/engine"
	"github.com/roddenjw/plotline/internal/model"
	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored manuscripts and their issue counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		manuscripts := s.Manuscripts()
		if len(manuscripts) == 0 {
			fmt.Println("No manuscripts imported.")
			return nil
		}

		fmt.Printf("Timeline Status\n")
		fmt.Printf("===============\n")
		for _, ms := range manuscripts {
			counts := s.StatusCounts(ms)
			validated := s.GetMeta(engine.LastValidatedKey(ms))
			if validated == "" {
				validated = "never"
			}
			fmt.Printf("  %-24s events: %4d  distances: %3d  open: %3d  resolved: %3d  dismissed: %3d  validated: %s\n",
				ms, s.EventCount(ms), s.DistanceCount(ms),
				counts[model.StatusOpen], counts[model.StatusResolved], counts[model.StatusDismissed],
				validated)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
