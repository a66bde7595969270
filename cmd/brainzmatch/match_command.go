package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sydlexius/brainzmatch/internal/batch"
	"github.com/sydlexius/brainzmatch/internal/catalog"
	"github.com/sydlexius/brainzmatch/internal/database"
)

func newMatchCommand(app *appContext) *cobra.Command {
	var opts batch.Options
	var quiet, snapshot bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve pending tracks against MusicBrainz and fetch their key and tempo",
		Long: `Resolve every pending track of the local catalog cache to a MusicBrainz
release and recording, then fetch key, chords key and BPM from AcousticBrainz.

Tracks whose key, chords key and BPM are all known are skipped unless --force
is given. An interrupted run can be resumed with --offset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("detail") {
				opts.Detail = app.cfg.Matching.Detail
			}
			if !cmd.Flags().Changed("all-candidates") {
				opts.ExamineAllCandidates = app.cfg.Matching.ExamineAllCandidates
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			lock, err := batch.AcquireLock(batch.LockPath(app.cfg.Database.Path))
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					app.logger.Warn("releasing lock failed", slog.String("error", err.Error()))
				}
			}()

			db, err := app.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			if snapshot {
				info, err := app.backups(db).Snapshot(ctx)
				if err != nil {
					return fmt.Errorf("snapshot before run: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Snapshot written to %s\n", info.Path)
			}

			runner := batch.NewRunner(catalog.NewService(db), app.discogs(), app.musicBrainz(), app.enricher(),
				app.cfg.Matching.CandidateLimit, app.logger)
			var progress *progressPrinter
			if !quiet {
				progress = newProgressPrinter(cmd.ErrOrStderr())
				runner.OnProgress = progress.update
			}

			rep, runErr := runner.Run(ctx, opts)
			if progress != nil {
				progress.done()
			}
			if rep != nil {
				fmt.Fprint(cmd.OutOrStdout(), renderReport(rep))
			}
			if runErr == nil {
				if err := database.Optimize(ctx, db); err != nil {
					app.logger.Warn("optimizing database failed", slog.String("error", err.Error()))
				}
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Resume at this 1-based position of the pending list")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Reprocess tracks whose attributes are already complete")
	cmd.Flags().BoolVar(&opts.SkipUnmatched, "skip-unmatched", false, "Only process tracks that already have a recording match")
	cmd.Flags().Int64Var(&opts.ReleaseID, "release", 0, "Only process this Discogs release")
	cmd.Flags().IntVar(&opts.Detail, "detail", 1, "Search detail: 1 is strict, 2-4 relax the release search")
	cmd.Flags().BoolVar(&opts.ExamineAllCandidates, "all-candidates", false, "Try catalog number variations on every candidate, not just the first")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	cmd.Flags().BoolVar(&snapshot, "backup", false, "Snapshot the database before writing to it")

	return cmd
}
