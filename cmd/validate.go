package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roddenjw/plotline/internal/report"
	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manuscript-id>",
	Short: "Run the full validator pipeline for a manuscript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		rep, err := newEngine(s).Validate(ctx, args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Printf("Validated %s: %d events, %d open issues (%d dismissed)\n",
			rep.ManuscriptID, rep.EventCount, rep.OpenCount, rep.DismissedCount)

		report.Sort(rep.Inconsistencies)
		for _, inc := range rep.Inconsistencies {
			marker := " "
			if inc.Status != "open" {
				marker = "-"
			}
			fmt.Printf("  %s [%s/%s] %s  %s\n", marker, inc.Kind, inc.Severity, inc.ID, inc.Description)
			if verbose && inc.Suggestion != "" {
				fmt.Printf("      suggestion: %s\n", inc.Suggestion)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
