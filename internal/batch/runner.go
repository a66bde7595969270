// Package batch drives many identities through release and recording
// resolution and audio-attribute enrichment, one at a time.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sydlexius/brainzmatch/internal/catalog"
	"github.com/sydlexius/brainzmatch/internal/enrich"
	"github.com/sydlexius/brainzmatch/internal/match"
	"github.com/sydlexius/brainzmatch/internal/provider"
)

// Store is the local catalog cache the runner reads targets from and
// writes matches to.
type Store interface {
	PendingTargets(ctx context.Context, p catalog.PendingParams) ([]match.Target, error)
	UpsertReleaseMatch(ctx context.Context, releaseID int64, mbid, method string) error
	UpsertTrackMatch(ctx context.Context, m catalog.TrackMatch) error
	SaveBackfill(ctx context.Context, rel *provider.SourceRelease) error
	RecordRun(ctx context.Context, r *catalog.Run) error
}

// SourceCatalog is the authoritative source of release data, used to
// back-fill incomplete cache entries.
type SourceCatalog interface {
	GetRelease(ctx context.Context, id int64) (*provider.SourceRelease, error)
}

// AttributeEnricher fetches audio attributes of a recording.
type AttributeEnricher interface {
	Enrich(ctx context.Context, recordingMBID string) (enrich.Attributes, enrich.Outcome)
}

// Progress describes one finished identity.
type Progress struct {
	// Index is the 1-based position within the run.
	Index   int
	Total   int
	Target  match.Target
	Result  match.Result
	Skipped bool
}

// Runner executes batch runs. It holds no per-run state.
type Runner struct {
	store          Store
	source         SourceCatalog
	catalog        match.Catalog
	enricher       AttributeEnricher
	candidateLimit int
	logger         *slog.Logger
	now            func() time.Time

	// OnProgress, when set, is called after every identity.
	OnProgress func(Progress)
}

// NewRunner creates a Runner.
func NewRunner(store Store, source SourceCatalog, cat match.Catalog, enricher AttributeEnricher, candidateLimit int, logger *slog.Logger) *Runner {
	return &Runner{
		store:          store,
		source:         source,
		catalog:        cat,
		enricher:       enricher,
		candidateLimit: candidateLimit,
		logger:         logger.With(slog.String("component", "batch")),
		now:            time.Now,
	}
}

// Run processes every pending identity selected by opts and returns the
// report. Only a *ConfigError or a failure to select targets aborts the run.
// Cancellation is checked between identities; a canceled run still returns
// its partial report along with the context error. Match and attribute
// counters only count what was stored.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:     uuid.New().String(),
		StartedAt: r.now(),
		Options:   opts,
	}
	log := r.logger.With(slog.String("run_id", rep.RunID))

	targets, err := r.store.PendingTargets(ctx, opts.pendingParams())
	if err != nil {
		return nil, fmt.Errorf("selecting pending targets: %w", err)
	}
	rep.Total = len(targets)
	log.Info("batch started", slog.Int("targets", rep.Total), slog.String("options", opts.String()))

	matcher := match.NewMatcher(r.catalog, opts.matchConfig(r.candidateLimit), r.logger)

	// An identity always runs to completion; cancellation stops the run
	// before the next one.
	identityCtx := context.WithoutCancel(ctx)

	var runErr error
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			rep.Canceled = true
			runErr = err
			break
		}

		res, skipped := r.process(identityCtx, matcher, t, rep)
		if r.OnProgress != nil {
			r.OnProgress(Progress{Index: i + 1, Total: rep.Total, Target: t, Result: res, Skipped: skipped})
		}
	}

	rep.FinishedAt = r.now()
	if err := r.store.RecordRun(context.WithoutCancel(ctx), rep.run()); err != nil {
		rep.DBErrors++
		log.Error("recording run failed", slog.String("error", err.Error()))
	}

	log.Info("batch finished",
		slog.Int("processed", rep.Processed),
		slog.Int("releases_matched", rep.ReleasesMatched),
		slog.Int("recordings_matched", rep.RecordingsMatched),
		slog.Bool("canceled", rep.Canceled),
		slog.Duration("duration", rep.Duration()))

	return rep, runErr
}

// process resolves, enriches and persists one identity.
func (r *Runner) process(ctx context.Context, matcher *match.Matcher, t match.Target, rep *Report) (match.Result, bool) {
	rep.Processed++
	log := r.logger.With(slog.Int64("release_id", t.ReleaseID), slog.String("track", t.TrackLabel))

	if needsBackfill(t) {
		var ok bool
		if t, ok = r.backfill(ctx, t, rep, log); !ok {
			rep.Skipped++
			return match.Result{}, true
		}
	}

	if t.TrackLabel == "" {
		log.Warn("no track number on record, skipping")
		rep.Skipped++
		return match.Result{}, true
	}

	res := matcher.Match(ctx, t)

	if res.HasRelease() {
		if err := r.store.UpsertReleaseMatch(ctx, t.ReleaseID, res.ReleaseMBID, string(res.ReleaseMethod)); err != nil {
			rep.DBErrors++
			log.Error("saving release match failed", slog.String("error", err.Error()))
		} else {
			rep.ReleasesMatched++
		}
	}

	if !res.HasRecording() {
		log.Debug("no recording resolved", slog.String("release_mbid", res.ReleaseMBID))
		return res, false
	}

	attrs, outcome := r.enricher.Enrich(ctx, res.RecordingMBID)
	switch outcome {
	case enrich.OutcomeNoAnalysis:
		rep.NoAnalysis++
	case enrich.OutcomeUnavailable:
		rep.Unavailable++
	}
	res.Key, res.ChordsKey, res.BPM = attrs.Key, attrs.ChordsKey, attrs.BPM

	err := r.store.UpsertTrackMatch(ctx, catalog.TrackMatch{
		ReleaseID:     t.ReleaseID,
		TrackLabel:    t.TrackLabel,
		RecordingMBID: res.RecordingMBID,
		Method:        string(res.RecordingMethod),
		Key:           res.Key,
		ChordsKey:     res.ChordsKey,
		BPM:           res.BPM,
	})
	if err != nil {
		rep.DBErrors++
		log.Error("saving track match failed", slog.String("error", err.Error()))
	} else {
		rep.RecordingsMatched++
		if res.Key != nil {
			rep.KeysAdded++
		}
		if res.ChordsKey != nil {
			rep.ChordsKeysAdded++
		}
		if res.BPM != nil {
			rep.BPMAdded++
		}
	}

	log.Debug("identity resolved",
		slog.String("release_method", string(res.ReleaseMethod)),
		slog.String("recording_method", string(res.RecordingMethod)),
		slog.String("outcome", outcome.String()))
	return res, false
}

func needsBackfill(t match.Target) bool {
	return t.TrackName == "" || t.CatalogNumber == "" || t.Artist == "" || t.TrackOrdinal == 0
}

// backfill fills the missing fields of t from the source catalog and
// refreshes the cache. It reports false when the release cannot be fetched.
func (r *Runner) backfill(ctx context.Context, t match.Target, rep *Report, log *slog.Logger) (match.Target, bool) {
	src, err := r.source.GetRelease(ctx, t.ReleaseID)
	if err != nil {
		if provider.IsNotFound(err) {
			rep.NotFoundErrors++
			log.Warn("release not found in source catalog, skipping")
		} else {
			rep.Unavailable++
			log.Warn("fetching source release failed, skipping", slog.String("error", err.Error()))
		}
		return t, false
	}

	rep.BackfillWarnings++
	log.Warn("local cache incomplete, back-filled from source catalog")

	if err := r.store.SaveBackfill(ctx, src); err != nil {
		rep.DBErrors++
		log.Error("saving back-fill failed", slog.String("error", err.Error()))
	}

	if t.ReleaseTitle == "" {
		t.ReleaseTitle = src.Title
	}
	if t.CatalogNumber == "" {
		t.CatalogNumber = src.CatalogNumber
	}
	if t.Artist == "" {
		t.Artist = src.Artist
	}
	if tr, ok := src.Track(t.TrackLabel); ok {
		if t.TrackName == "" {
			t.TrackName = tr.Title
		}
		if t.TrackOrdinal == 0 {
			t.TrackOrdinal = tr.Ordinal
		}
	}
	return t, true
}
