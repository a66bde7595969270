package batch

import (
	"fmt"
	"time"

	"github.com/sydlexius/brainzmatch/internal/catalog"
)

// Report accumulates the counters of one batch run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Options    Options
	// Canceled is set when the context ended the run early.
	Canceled bool

	// Total is the number of identities selected for the run.
	Total int
	// Processed counts identities visited, including skipped ones.
	Processed         int
	Skipped           int
	ReleasesMatched   int
	RecordingsMatched int
	KeysAdded         int
	ChordsKeysAdded   int
	BPMAdded          int
	DBErrors          int
	NotFoundErrors    int
	NoAnalysis        int
	BackfillWarnings  int
	Unavailable       int
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Guidance returns qualitative hints derived from the counters.
func (r *Report) Guidance() []string {
	var hints []string
	attempted := r.Processed - r.Skipped

	if r.BackfillWarnings > 0 && r.BackfillWarnings*4 >= max(r.Processed, 1) {
		hints = append(hints, fmt.Sprintf(
			"%d identities needed a back-fill from Discogs: import track details before matching to save requests", r.BackfillWarnings))
	}
	if r.DBErrors > 0 {
		hints = append(hints, fmt.Sprintf(
			"%d database writes failed: check the database file and rerun with the same options", r.DBErrors))
	}
	if r.Unavailable > 0 {
		hints = append(hints, fmt.Sprintf(
			"%d requests hit an unavailable service: rerun later to pick up the missed identities", r.Unavailable))
	}
	if r.NoAnalysis > 0 {
		hints = append(hints, fmt.Sprintf(
			"%d recordings have no AcousticBrainz analysis yet", r.NoAnalysis))
	}
	if attempted > 0 && r.ReleasesMatched*2 < attempted && r.Options.Detail < MaxDetail {
		hints = append(hints, fmt.Sprintf(
			"fewer than half of the identities matched a release: try a higher detail level (--detail %d)", r.Options.Detail+1))
	}
	if attempted > 0 && r.ReleasesMatched*2 < attempted && !r.Options.ExamineAllCandidates {
		hints = append(hints, "catalog number variations were only tried on the first candidate: try --all-candidates")
	}
	if r.Canceled {
		hints = append(hints, fmt.Sprintf(
			"run interrupted after %d of %d identities: rerun to continue", r.Processed, r.Total))
	}
	return hints
}

// run converts the report into a stored run record.
func (r *Report) run() *catalog.Run {
	return &catalog.Run{
		ID:                r.RunID,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
		Options:           r.Options.String(),
		Processed:         r.Processed,
		Skipped:           r.Skipped,
		ReleasesMatched:   r.ReleasesMatched,
		RecordingsMatched: r.RecordingsMatched,
		KeysAdded:         r.KeysAdded,
		ChordsKeysAdded:   r.ChordsKeysAdded,
		BPMAdded:          r.BPMAdded,
		DBErrors:          r.DBErrors,
		NotFoundErrors:    r.NotFoundErrors,
		NoAnalysis:        r.NoAnalysis,
		BackfillWarnings:  r.BackfillWarnings,
		Unavailable:       r.Unavailable,
	}
}
