package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"datarepublican/charitygraph/internal/dataset"
	"datarepublican/charitygraph/internal/db"
	"datarepublican/charitygraph/internal/graph"
)

var importDB string

var importCmd = &cobra.Command{
	Use:   "import <dataset>",
	Short: "Load a JSON or YAML dataset into the database",
	Long: `Replaces the contents of the database with the dataset. Records with
integrity problems are reported and left out; the rest is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.Load(args[0])
		if err != nil {
			return err
		}
		snap, integrity := ds.Snapshot()
		if integrity != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", integrity)
		}

		path := importDB
		if path == "" {
			path = cfg.Dataset.DB
		}
		if path == "" {
			path = ".charitygraph.db"
		}
		d, err := db.OpenDB(path)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := graph.SaveToDB(cmd.Context(), d, snap); err != nil {
			return fmt.Errorf("saving graph: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d charities and %d flows into %s\n", snap.Len(), len(snap.Edges), path)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDB, "into", "", "Database file to create or replace (default --db or ./.charitygraph.db)")
	rootCmd.AddCommand(importCmd)
}
