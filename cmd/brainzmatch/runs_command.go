package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/catalog"
)

func newRunsCommand(app *appContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent match runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := app.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			runs, err := catalog.NewService(db).ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
