package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sydlexius/brainzmatch/internal/catalog"
	"github.com/sydlexius/brainzmatch/internal/enrich"
	"github.com/sydlexius/brainzmatch/internal/match"
	"github.com/sydlexius/brainzmatch/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var errWrite = errors.New("database is locked")

// memStore keeps pending targets and writes in memory.
type memStore struct {
	targets []match.Target

	pendingErr   error
	releaseErr   error
	trackErr     error
	backfillErr  error
	runErr       error
	params       []catalog.PendingParams
	releaseMatch map[int64]string
	trackMatch   map[string]catalog.TrackMatch
	backfills    []int64
	runs         []*catalog.Run
}

func newMemStore(targets ...match.Target) *memStore {
	return &memStore{
		targets:      targets,
		releaseMatch: make(map[int64]string),
		trackMatch:   make(map[string]catalog.TrackMatch),
	}
}

func (s *memStore) PendingTargets(_ context.Context, p catalog.PendingParams) ([]match.Target, error) {
	s.params = append(s.params, p)
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}
	if p.Offset >= len(s.targets) {
		return nil, nil
	}
	return s.targets[p.Offset:], nil
}

func (s *memStore) UpsertReleaseMatch(_ context.Context, id int64, mbid, method string) error {
	if s.releaseErr != nil {
		return s.releaseErr
	}
	s.releaseMatch[id] = mbid + "|" + method
	return nil
}

func (s *memStore) UpsertTrackMatch(_ context.Context, m catalog.TrackMatch) error {
	if s.trackErr != nil {
		return s.trackErr
	}
	s.trackMatch[fmt.Sprintf("%d/%s", m.ReleaseID, m.TrackLabel)] = m
	return nil
}

func (s *memStore) SaveBackfill(_ context.Context, rel *provider.SourceRelease) error {
	if s.backfillErr != nil {
		return s.backfillErr
	}
	s.backfills = append(s.backfills, rel.ID)
	return nil
}

func (s *memStore) RecordRun(_ context.Context, r *catalog.Run) error {
	if s.runErr != nil {
		return s.runErr
	}
	s.runs = append(s.runs, r)
	return nil
}

// fakeSource is an in-memory source catalog.
type fakeSource struct {
	releases map[int64]*provider.SourceRelease
	err      error
	calls    int
}

func (f *fakeSource) GetRelease(_ context.Context, id int64) (*provider.SourceRelease, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rel, ok := f.releases[id]
	if !ok {
		return nil, &provider.ErrNotFound{Provider: provider.NameDiscogs, ID: fmt.Sprint(id)}
	}
	return rel, nil
}

// fakeMB answers every search with all known releases.
type fakeMB struct {
	details []*provider.ReleaseDetail
}

func (f *fakeMB) SearchReleases(_ context.Context, _ provider.ReleaseQuery) ([]provider.CandidateRelease, error) {
	var out []provider.CandidateRelease
	for _, d := range f.details {
		out = append(out, provider.CandidateRelease{MBID: d.MBID, Title: d.Title})
	}
	return out, nil
}

func (f *fakeMB) GetRelease(_ context.Context, mbid string) (*provider.ReleaseDetail, error) {
	for _, d := range f.details {
		if d.MBID == mbid {
			return d, nil
		}
	}
	return nil, &provider.ErrNotFound{Provider: provider.NameMusicBrainz, ID: mbid}
}

type enrichment struct {
	attrs   enrich.Attributes
	outcome enrich.Outcome
}

// fakeEnricher returns canned attributes per recording; unknown recordings
// have no analysis.
type fakeEnricher struct {
	results map[string]enrichment
	calls   int
}

func (f *fakeEnricher) Enrich(_ context.Context, mbid string) (enrich.Attributes, enrich.Outcome) {
	f.calls++
	if r, ok := f.results[mbid]; ok {
		return r.attrs, r.outcome
	}
	return enrich.Attributes{}, enrich.OutcomeNoAnalysis
}

func ptr[T any](v T) *T { return &v }

// nonplus is the MusicBrainz side of Discogs release 8633263.
func nonplus() *provider.ReleaseDetail {
	return &provider.ReleaseDetail{
		MBID:           "mb-nonplus",
		Title:          "Call & Response",
		CatalogNumbers: []string{"NONPLUS034"},
		URLRelations:   []provider.URLRelation{{Type: "discogs", Target: "https://www.discogs.com/release/8633263"}},
		Media: []provider.Medium{{Position: 1, Tracks: []provider.TrackEntry{
			{Number: "A", Title: "Call & Response", Position: 1, RecordingID: "rec-call"},
			{Number: "AA", Title: "The Crane", Position: 2, RecordingID: "rec-crane"},
		}}},
	}
}

func crane() match.Target {
	return match.Target{
		ReleaseID:     8633263,
		ReleaseTitle:  "Call & Response",
		CatalogNumber: "NONPLUS034",
		Artist:        "Source Direct",
		TrackName:     "The Crane",
		TrackLabel:    "AA",
		TrackOrdinal:  2,
	}
}

func craneAnalysis() map[string]enrichment {
	return map[string]enrichment{
		"rec-crane": {attrs: enrich.Attributes{BPM: ptr(171.8), Key: ptr("Fm"), ChordsKey: ptr("C#")}},
	}
}

func newTestRunner(store Store, src SourceCatalog, mb match.Catalog, en *fakeEnricher) *Runner {
	return NewRunner(store, src, mb, en, 5, testLogger())
}
