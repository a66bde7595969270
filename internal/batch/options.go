package batch

import (
	"fmt"
	"strings"

	"github.com/sydlexius/brainzmatch/internal/catalog"
	"github.com/sydlexius/brainzmatch/internal/match"
)

// MaxDetail is the highest accepted search detail level.
const MaxDetail = 4

// Options select and tune one batch run.
type Options struct {
	// Offset is the 1-based position to resume at; 0 and 1 both start at
	// the first pending identity.
	Offset int
	// Force reprocesses identities whose attributes are already complete.
	Force bool
	// SkipUnmatched processes only identities with a prior recording match.
	SkipUnmatched bool
	// ReleaseID restricts the run to one source release when non-zero.
	ReleaseID int64
	// Detail selects strict (1) or progressively looser (2-4) searches.
	Detail int
	// ExamineAllCandidates widens the catalog-number variation stage
	// beyond the first candidate.
	ExamineAllCandidates bool
}

// ConfigError reports contradictory or out-of-range batch options. It is
// the only error that aborts a run before any identity is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid batch options: %s: %s", e.Field, e.Reason)
}

// Validate checks the options for contradictions.
func (o Options) Validate() error {
	if o.Offset < 0 {
		return &ConfigError{Field: "offset", Reason: fmt.Sprintf("must not be negative, got %d", o.Offset)}
	}
	if o.Detail < 1 || o.Detail > MaxDetail {
		return &ConfigError{Field: "detail", Reason: fmt.Sprintf("must be between 1 and %d, got %d", MaxDetail, o.Detail)}
	}
	if o.ReleaseID < 0 {
		return &ConfigError{Field: "release", Reason: fmt.Sprintf("invalid release id %d", o.ReleaseID)}
	}
	if o.ReleaseID != 0 && o.Offset > 1 {
		return &ConfigError{Field: "offset", Reason: "cannot resume at an offset when matching a single release"}
	}
	return nil
}

// pendingParams translates the options into a store selection. The offset
// is decremented so that resuming at 1 is a no-op.
func (o Options) pendingParams() catalog.PendingParams {
	return catalog.PendingParams{
		Offset:        max(o.Offset-1, 0),
		Force:         o.Force,
		SkipUnmatched: o.SkipUnmatched,
		ReleaseID:     o.ReleaseID,
	}
}

func (o Options) matchConfig(candidateLimit int) match.Config {
	cfg := match.DefaultConfig()
	cfg.Detail = o.Detail
	if candidateLimit > 0 {
		cfg.CandidateLimit = candidateLimit
	}
	cfg.Policy.ExamineAllCandidates = o.ExamineAllCandidates
	return cfg
}

// String renders the options compactly for run records.
func (o Options) String() string {
	parts := []string{fmt.Sprintf("detail=%d", o.Detail)}
	if o.Offset > 1 {
		parts = append(parts, fmt.Sprintf("offset=%d", o.Offset))
	}
	if o.ReleaseID != 0 {
		parts = append(parts, fmt.Sprintf("release=%d", o.ReleaseID))
	}
	if o.Force {
		parts = append(parts, "force")
	}
	if o.SkipUnmatched {
		parts = append(parts, "skip-unmatched")
	}
	if o.ExamineAllCandidates {
		parts = append(parts, "all-candidates")
	}
	return strings.Join(parts, " ")
}
