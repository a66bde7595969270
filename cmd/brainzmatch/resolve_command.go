package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/batch"
	"github.com/sydlexius/brainzmatch/internal/match"
)

func newResolveCommand(app *appContext) *cobra.Command {
	var t match.Target
	var detail int
	var allCandidates bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one identity without touching the database",
		Example: `  brainzmatch resolve --release 8633263 --catno NONPLUS034 \
    --artist "Source Direct" --track-name "The Crane" --track AA --ordinal 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("detail") {
				detail = app.cfg.Matching.Detail
			}
			if !cmd.Flags().Changed("all-candidates") {
				allCandidates = app.cfg.Matching.ExamineAllCandidates
			}
			opts := batch.Options{Detail: detail, ExamineAllCandidates: allCandidates}
			if err := opts.Validate(); err != nil {
				return err
			}

			cfg := match.DefaultConfig()
			cfg.Detail = detail
			cfg.CandidateLimit = app.cfg.Matching.CandidateLimit
			cfg.Policy.ExamineAllCandidates = allCandidates

			res := match.NewMatcher(app.musicBrainz(), cfg, app.logger).Match(ctx, t)
			if res.HasRecording() {
				attrs, outcome := app.enricher().Enrich(ctx, res.RecordingMBID)
				res.Key, res.ChordsKey, res.BPM = attrs.Key, attrs.ChordsKey, attrs.BPM
				app.logger.Debug("enrichment finished", slog.String("outcome", outcome.String()))
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderResult(t, res))
			return nil
		},
	}

	cmd.Flags().Int64Var(&t.ReleaseID, "release", 0, "Discogs release id")
	cmd.Flags().StringVar(&t.ReleaseTitle, "title", "", "Release title")
	cmd.Flags().StringVar(&t.CatalogNumber, "catno", "", "Catalog number")
	cmd.Flags().StringVar(&t.Artist, "artist", "", "Release artist")
	cmd.Flags().StringVar(&t.TrackName, "track-name", "", "Track title")
	cmd.Flags().StringVar(&t.TrackLabel, "track", "", "Printed track number, e.g. A1")
	cmd.Flags().IntVar(&t.TrackOrdinal, "ordinal", 0, "1-based track position across the release")
	cmd.Flags().StringVar(&t.RecordingOverride, "recording", "", "Use this recording MBID instead of resolving one")
	cmd.Flags().IntVar(&detail, "detail", 1, "Search detail: 1 is strict, 2-4 relax the release search")
	cmd.Flags().BoolVar(&allCandidates, "all-candidates", false, "Try catalog number variations on every candidate")

	return cmd
}
