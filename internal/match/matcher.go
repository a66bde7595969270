package match

import (
	"context"
	"log/slog"
)

// Config holds the matcher settings.
type Config struct {
	// Detail selects strict (below LooseDetail) or loose searches.
	Detail         int
	CandidateLimit int
	Policy         ReleasePolicy
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() Config {
	return Config{
		Detail:         1,
		CandidateLimit: DefaultCandidateLimit,
	}
}

// Catalog is the catalog-search service: release search plus release lookup.
type Catalog interface {
	ReleaseSearcher
	ReleaseDetailer
}

// Matcher resolves a Target to a release and recording.
type Matcher struct {
	fetcher    *Fetcher
	releases   *ReleaseResolver
	recordings *RecordingResolver
	config     Config
}

// NewMatcher wires the fetcher and both resolvers over one catalog service.
func NewMatcher(catalog Catalog, config Config, logger *slog.Logger) *Matcher {
	return &Matcher{
		fetcher:    NewFetcher(catalog, logger),
		releases:   NewReleaseResolver(catalog, config.Policy, logger),
		recordings: NewRecordingResolver(catalog, logger),
		config:     config,
	}
}

// Match resolves t. The returned Result carries no audio attributes.
func (m *Matcher) Match(ctx context.Context, t Target) Result {
	var res Result

	q := SearchQuery(t, m.config.Detail, m.config.CandidateLimit)
	candidates := m.fetcher.Search(ctx, q)
	if rel, ok := m.releases.Resolve(ctx, t, candidates); ok {
		res.ReleaseMBID = rel.MBID
		res.ReleaseMethod = rel.Method
	}

	if res.HasRelease() || t.RecordingOverride != "" {
		if rec, ok := m.recordings.Resolve(ctx, t, res.ReleaseMBID); ok {
			res.RecordingMBID = rec.MBID
			res.RecordingMethod = rec.Method
		}
	}
	return res
}
