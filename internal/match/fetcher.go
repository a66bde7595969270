package match

import (
	"context"
	"log/slog"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// ReleaseSearcher searches the catalog-search service for releases.
type ReleaseSearcher interface {
	SearchReleases(ctx context.Context, q provider.ReleaseQuery) ([]provider.CandidateRelease, error)
}

// Fetcher returns release candidates for a query. It never fails: upstream
// errors are logged and yield no candidates.
type Fetcher struct {
	searcher ReleaseSearcher
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher over searcher.
func NewFetcher(searcher ReleaseSearcher, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		searcher: searcher,
		logger:   logger.With(slog.String("component", "candidate-fetcher")),
	}
}

// Search returns at most q.Limit candidate stubs in service order.
func (f *Fetcher) Search(ctx context.Context, q provider.ReleaseQuery) []provider.CandidateRelease {
	if q.Limit <= 0 {
		q.Limit = DefaultCandidateLimit
	}
	candidates, err := f.searcher.SearchReleases(ctx, q)
	if err != nil {
		f.logger.Warn("release search failed",
			slog.String("artist", q.Artist),
			slog.String("title", q.Title),
			slog.String("catno", q.CatalogNumber),
			slog.Bool("strict", q.Strict),
			slog.String("error", err.Error()))
		return nil
	}
	if len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	return candidates
}
