package cmd

import (
	"fmt"

	"github.com/roddenjw/plotline/internal/importer"
	"github.com/roddenjw/plotline/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <export-file>",
	Short: "Load a manuscript export (JSON or HTML outline) into the timeline database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		exp, err := importer.ReadFile(args[0])
		if err != nil {
			return err
		}

		logVerbose("parsed %d events for manuscript %s", len(exp.Events), exp.ManuscriptID)

		if err := importer.Apply(s, exp); err != nil {
			return fmt.Errorf("importing %s: %w", exp.ManuscriptID, err)
		}

		fmt.Printf("Imported manuscript %s: %d events, %d distances\n",
			exp.ManuscriptID, len(exp.Events), len(exp.Distances))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
