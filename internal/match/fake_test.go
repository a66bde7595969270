package match

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeCatalog is an in-memory catalog-search service.
type fakeCatalog struct {
	candidates []provider.CandidateRelease
	searchErr  error
	details    map[string]*provider.ReleaseDetail
	failing    map[string]bool

	queries []provider.ReleaseQuery
	lookups map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		details: make(map[string]*provider.ReleaseDetail),
		failing: make(map[string]bool),
		lookups: make(map[string]int),
	}
}

func (f *fakeCatalog) add(d *provider.ReleaseDetail) {
	f.details[d.MBID] = d
	f.candidates = append(f.candidates, provider.CandidateRelease{MBID: d.MBID, Title: d.Title})
}

func (f *fakeCatalog) SearchReleases(_ context.Context, q provider.ReleaseQuery) ([]provider.CandidateRelease, error) {
	f.queries = append(f.queries, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeCatalog) GetRelease(_ context.Context, mbid string) (*provider.ReleaseDetail, error) {
	f.lookups[mbid]++
	if f.failing[mbid] {
		return nil, &provider.ErrProviderUnavailable{Provider: provider.NameMusicBrainz, Cause: errors.New("timeout")}
	}
	d, ok := f.details[mbid]
	if !ok {
		return nil, &provider.ErrNotFound{Provider: provider.NameMusicBrainz, ID: mbid}
	}
	return d, nil
}

func (f *fakeCatalog) totalLookups() int {
	n := 0
	for _, c := range f.lookups {
		n += c
	}
	return n
}

func release(mbid string, catnos ...string) *provider.ReleaseDetail {
	return &provider.ReleaseDetail{MBID: mbid, Title: mbid, CatalogNumbers: catnos}
}

func withTracks(d *provider.ReleaseDetail, tracks ...provider.TrackEntry) *provider.ReleaseDetail {
	d.Media = append(d.Media, provider.Medium{Position: len(d.Media) + 1, Tracks: tracks})
	return d
}
