package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

type connectionTester interface {
	Name() provider.ProviderName
	TestConnection(ctx context.Context) error
}

func newCheckCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that MusicBrainz and Discogs are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			testers := []connectionTester{app.musicBrainz(), app.discogs()}

			var failed int
			rows := make([][]string, 0, len(testers))
			for _, t := range testers {
				status := "ok"
				if err := t.TestConnection(cmd.Context()); err != nil {
					failed++
					status = err.Error()
					app.logger.Debug("connection check failed",
						slog.String("provider", string(t.Name())),
						slog.String("error", err.Error()))
				}
				rows = append(rows, []string{t.Name().DisplayName(), status})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Service", "Status"}, rows, []columnAlignment{alignLeft, alignLeft}))

			if failed > 0 {
				return fmt.Errorf("%d of %d services unreachable", failed, len(testers))
			}
			return nil
		},
	}
}
