package cmd

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/model"
	"github.com/roddenjw/plotline/internal/report"
	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var (
	issuesStatus string
	issueNotes   string
)

var issuesCmd = &cobra.Command{
	Use:   "issues <manuscript-id>",
	Short: "List recorded inconsistencies for a manuscript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		incs, err := s.ListInconsistencies(args[0], model.Status(issuesStatus))
		if err != nil {
			return err
		}

		if len(incs) == 0 {
			fmt.Println("No inconsistencies recorded.")
			return nil
		}

		report.Sort(incs)
		for _, inc := range incs {
			fmt.Printf("%s  [%s/%s] %s  %s\n", inc.ID, inc.Kind, inc.Severity, inc.Status, inc.Description)
			if verbose {
				if inc.Suggestion != "" {
					fmt.Printf("    suggestion: %s\n", inc.Suggestion)
				}
				if inc.TeachingPoint != "" {
					fmt.Printf("    why it matters: %s\n", inc.TeachingPoint)
				}
				if inc.ResolutionNotes != "" {
					fmt.Printf("    notes: %s\n", inc.ResolutionNotes)
				}
			}
		}

		sum := report.Summarize(incs)
		fmt.Printf("\n%d total: %d open, %d resolved, %d dismissed\n",
			sum.Total, sum.Open, sum.Resolved, sum.Dismissed)
		for _, c := range sum.Characters {
			fmt.Printf("  %s: %d open\n", c.Name, c.Open)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <inconsistency-id>",
	Short: "Mark an inconsistency as fixed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		inc, err := newEngine(s).Resolve(args[0], issueNotes)
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", inc.ID, inc.Status)
		return nil
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <inconsistency-id>",
	Short: "Mark an inconsistency as a false positive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		inc, err := newEngine(s).Dismiss(args[0], issueNotes)
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", inc.ID, inc.Status)
		return nil
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issuesStatus, "status", "", "Filter by status (open, resolved, dismissed)")
	resolveCmd.Flags().StringVar(&issueNotes, "notes", "", "Resolution notes")
	dismissCmd.Flags().StringVar(&issueNotes, "notes", "", "Resolution notes")
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(dismissCmd)
}
