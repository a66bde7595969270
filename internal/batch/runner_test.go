package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/sydlexius/brainzmatch/internal/enrich"
	"github.com/sydlexius/brainzmatch/internal/match"
	"github.com/sydlexius/brainzmatch/internal/provider"
)

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"negative offset", Options{Offset: -1, Detail: 1}, "offset"},
		{"detail zero", Options{Detail: 0}, "detail"},
		{"detail too high", Options{Detail: 5}, "detail"},
		{"negative release", Options{Detail: 1, ReleaseID: -3}, "release"},
		{"offset with release", Options{Detail: 1, ReleaseID: 8633263, Offset: 4}, "offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(crane())
			en := &fakeEnricher{}
			rep, err := newTestRunner(store, &fakeSource{}, &fakeMB{}, en).Run(context.Background(), tt.opts)

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
			if rep != nil {
				t.Errorf("expected no report, got %+v", rep)
			}
			if len(store.params) != 0 || len(store.runs) != 0 || en.calls != 0 {
				t.Error("no identity may be touched on a configuration error")
			}
		})
	}
}

func TestRun_OffsetOneWithRelease(t *testing.T) {
	store := newMemStore(crane())
	_, err := newTestRunner(store, &fakeSource{}, &fakeMB{}, &fakeEnricher{}).
		Run(context.Background(), Options{Detail: 1, ReleaseID: 8633263, Offset: 1})
	if err != nil {
		t.Fatalf("offset 1 is a no-op and must be accepted: %v", err)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	store := newMemStore(crane())
	en := &fakeEnricher{results: craneAnalysis()}
	var progress []Progress
	r := newTestRunner(store, &fakeSource{}, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, en)
	r.OnProgress = func(p Progress) { progress = append(progress, p) }

	rep, err := r.Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Processed != 1 || rep.ReleasesMatched != 1 || rep.RecordingsMatched != 1 {
		t.Errorf("unexpected counters %+v", rep)
	}
	if rep.KeysAdded != 1 || rep.ChordsKeysAdded != 1 || rep.BPMAdded != 1 {
		t.Errorf("attribute counters %+v", rep)
	}
	if rep.DBErrors+rep.NotFoundErrors+rep.NoAnalysis+rep.BackfillWarnings+rep.Skipped != 0 {
		t.Errorf("unexpected failure counters %+v", rep)
	}
	if got := store.releaseMatch[8633263]; got != "mb-nonplus|Discogs URL" {
		t.Errorf("release match = %q", got)
	}
	tm := store.trackMatch["8633263/AA"]
	if tm.RecordingMBID != "rec-crane" || tm.Method != string(match.MethodTrackName) {
		t.Errorf("track match = %+v", tm)
	}
	if tm.Key == nil || *tm.Key != "Fm" || tm.BPM == nil || *tm.BPM != 171.8 {
		t.Errorf("attributes not persisted: %+v", tm)
	}
	if len(progress) != 1 || progress[0].Index != 1 || progress[0].Total != 1 || progress[0].Result.RecordingMBID != "rec-crane" {
		t.Errorf("progress = %+v", progress)
	}
	if len(store.runs) != 1 || store.runs[0].ID != rep.RunID || store.runs[0].KeysAdded != 1 {
		t.Errorf("run not recorded: %+v", store.runs)
	}
}

func TestRun_Resume(t *testing.T) {
	var targets []match.Target
	for i := 1; i <= 5; i++ {
		tg := crane()
		tg.ReleaseID = int64(i)
		targets = append(targets, tg)
	}

	tests := []struct {
		offset        int
		wantOffset    int
		wantProcessed int
	}{
		{0, 0, 5},
		{1, 0, 5},
		{3, 2, 3},
		{9, 8, 0},
	}
	for _, tt := range tests {
		store := newMemStore(targets...)
		var seen []int64
		r := newTestRunner(store, &fakeSource{}, &fakeMB{}, &fakeEnricher{})
		r.OnProgress = func(p Progress) { seen = append(seen, p.Target.ReleaseID) }

		rep, err := r.Run(context.Background(), Options{Detail: 1, Offset: tt.offset})
		if err != nil {
			t.Fatalf("offset %d: %v", tt.offset, err)
		}
		if store.params[0].Offset != tt.wantOffset {
			t.Errorf("offset %d: store offset = %d, want %d", tt.offset, store.params[0].Offset, tt.wantOffset)
		}
		if rep.Processed != tt.wantProcessed {
			t.Errorf("offset %d: processed = %d, want %d", tt.offset, rep.Processed, tt.wantProcessed)
		}
		// Same sub-list as a full run with the first offset-1 results dropped.
		for i, id := range seen {
			if want := targets[tt.wantOffset+i].ReleaseID; id != want {
				t.Errorf("offset %d: identity %d is release %d, want %d", tt.offset, i, id, want)
			}
		}
	}
}

func TestRun_SelectionFlagsReachStore(t *testing.T) {
	store := newMemStore()
	_, err := newTestRunner(store, &fakeSource{}, &fakeMB{}, &fakeEnricher{}).
		Run(context.Background(), Options{Detail: 2, Force: true, SkipUnmatched: true, ReleaseID: 7})
	if err != nil {
		t.Fatal(err)
	}
	p := store.params[0]
	if !p.Force || !p.SkipUnmatched || p.ReleaseID != 7 || p.Offset != 0 {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestRun_Backfill(t *testing.T) {
	incomplete := match.Target{ReleaseID: 8633263, TrackLabel: "aa"}
	src := &fakeSource{releases: map[int64]*provider.SourceRelease{
		8633263: {
			ID:            8633263,
			Title:         "Call & Response",
			Artist:        "Source Direct",
			CatalogNumber: "NONPLUS 034",
			Tracks: []provider.SourceTrack{
				{Position: "A", Title: "Call & Response", Ordinal: 1},
				{Position: "AA", Title: "The Crane", Ordinal: 2},
			},
		},
	}}
	store := newMemStore(incomplete)
	en := &fakeEnricher{results: craneAnalysis()}

	rep, err := newTestRunner(store, src, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, en).
		Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rep.BackfillWarnings != 1 || rep.Skipped != 0 {
		t.Errorf("counters %+v", rep)
	}
	if len(store.backfills) != 1 || store.backfills[0] != 8633263 {
		t.Errorf("back-fill not saved: %v", store.backfills)
	}
	// The back-filled track name drives the recording match.
	if tm := store.trackMatch["8633263/aa"]; tm.RecordingMBID != "rec-crane" || tm.Method != string(match.MethodTrackName) {
		t.Errorf("track match = %+v", tm)
	}
}

func TestRun_BackfillFailures(t *testing.T) {
	tests := []struct {
		name         string
		src          *fakeSource
		wantNotFound int
		wantUnavail  int
	}{
		{"not found", &fakeSource{}, 1, 0},
		{"unavailable", &fakeSource{err: &provider.ErrProviderUnavailable{Provider: provider.NameDiscogs, Cause: errors.New("HTTP 503")}}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := crane()
			store := newMemStore(match.Target{ReleaseID: 1, TrackLabel: "A1"}, next)
			en := &fakeEnricher{results: craneAnalysis()}

			rep, err := newTestRunner(store, tt.src, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, en).
				Run(context.Background(), Options{Detail: 1})
			if err != nil {
				t.Fatal(err)
			}
			if rep.NotFoundErrors != tt.wantNotFound || rep.Unavailable != tt.wantUnavail {
				t.Errorf("counters %+v", rep)
			}
			if rep.Skipped != 1 || rep.Processed != 2 || rep.BackfillWarnings != 0 {
				t.Errorf("counters %+v", rep)
			}
			// The batch carries on with the next identity.
			if rep.RecordingsMatched != 1 {
				t.Errorf("next identity not processed: %+v", rep)
			}
		})
	}
}

func TestRun_SkipsWithoutTrackLabel(t *testing.T) {
	noLabel := crane()
	noLabel.TrackLabel = ""
	store := newMemStore(noLabel)
	mb := &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}

	rep, err := newTestRunner(store, &fakeSource{}, mb, &fakeEnricher{}).Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Skipped != 1 || rep.ReleasesMatched != 0 {
		t.Errorf("counters %+v", rep)
	}
}

func TestRun_PersistenceErrorsAreCounted(t *testing.T) {
	second := crane()
	second.TrackLabel = "A"
	second.TrackName = "Call & Response"
	store := newMemStore(crane(), second)
	store.releaseErr = errWrite
	store.trackErr = errWrite
	store.runErr = errWrite

	rep, err := newTestRunner(store, &fakeSource{}, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, &fakeEnricher{results: craneAnalysis()}).
		Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatalf("persistence errors must not abort the run: %v", err)
	}
	// Two writes per identity plus the run record.
	if rep.DBErrors != 5 {
		t.Errorf("db errors = %d, want 5", rep.DBErrors)
	}
	if rep.Processed != 2 {
		t.Errorf("processed = %d, want 2", rep.Processed)
	}
	if rep.ReleasesMatched != 0 || rep.RecordingsMatched != 0 || rep.KeysAdded != 0 || rep.BPMAdded != 0 {
		t.Errorf("unsaved matches must not be counted: %+v", rep)
	}
}

func TestRun_NoAnalysis(t *testing.T) {
	store := newMemStore(crane())
	en := &fakeEnricher{results: map[string]enrichment{
		"rec-crane": {outcome: enrich.OutcomeNoAnalysis},
	}}

	rep, err := newTestRunner(store, &fakeSource{}, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, en).
		Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rep.NoAnalysis != 1 || rep.KeysAdded+rep.ChordsKeysAdded+rep.BPMAdded != 0 {
		t.Errorf("counters %+v", rep)
	}
	if rep.DBErrors != 0 || rep.Unavailable != 0 {
		t.Errorf("no analysis is not an error: %+v", rep)
	}
	tm := store.trackMatch["8633263/AA"]
	if tm.RecordingMBID != "rec-crane" || tm.Key != nil {
		t.Errorf("recording should still be stored without attributes: %+v", tm)
	}
}

func TestRun_NoReleaseNoWrites(t *testing.T) {
	store := newMemStore(crane())
	en := &fakeEnricher{}
	rep, err := newTestRunner(store, &fakeSource{}, &fakeMB{}, en).Run(context.Background(), Options{Detail: 1})
	if err != nil {
		t.Fatal(err)
	}
	if rep.ReleasesMatched != 0 || len(store.releaseMatch) != 0 || len(store.trackMatch) != 0 || en.calls != 0 {
		t.Errorf("nothing should be written: %+v", rep)
	}
}

func TestRun_Canceled(t *testing.T) {
	second := crane()
	second.ReleaseID = 2
	store := newMemStore(crane(), second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newTestRunner(store, &fakeSource{}, &fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, &fakeEnricher{})
	r.OnProgress = func(Progress) { cancel() }

	rep, err := r.Run(ctx, Options{Detail: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if rep == nil || !rep.Canceled || rep.Processed != 1 || rep.Total != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if len(store.runs) != 1 {
		t.Error("a canceled run is still recorded")
	}
}

// cancelingMB cancels the run while the first candidate detail is fetched.
// Later calls fail the way an HTTP client would on a canceled context.
type cancelingMB struct {
	fakeMB
	cancel context.CancelFunc
	calls  int
}

func (c *cancelingMB) GetRelease(ctx context.Context, mbid string) (*provider.ReleaseDetail, error) {
	c.calls++
	if c.calls == 1 {
		c.cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, &provider.ErrProviderUnavailable{Provider: provider.NameMusicBrainz, Cause: err}
	}
	return c.fakeMB.GetRelease(ctx, mbid)
}

func TestRun_CanceledMidIdentityCompletesIt(t *testing.T) {
	second := crane()
	second.ReleaseID = 2
	store := newMemStore(crane(), second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mb := &cancelingMB{fakeMB: fakeMB{details: []*provider.ReleaseDetail{nonplus()}}, cancel: cancel}

	rep, err := newTestRunner(store, &fakeSource{}, mb, &fakeEnricher{results: craneAnalysis()}).
		Run(ctx, Options{Detail: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !rep.Canceled || rep.Processed != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.ReleasesMatched != 1 || rep.RecordingsMatched != 1 || rep.DBErrors != 0 || rep.Unavailable != 0 {
		t.Errorf("the interrupted identity must finish: %+v", rep)
	}
	if got := store.releaseMatch[8633263]; got != "mb-nonplus|Discogs URL" {
		t.Errorf("stored release match = %q", got)
	}
	if tm := store.trackMatch["8633263/AA"]; tm.RecordingMBID != "rec-crane" {
		t.Errorf("stored track match = %+v", tm)
	}
}

func TestRun_PendingFailure(t *testing.T) {
	store := newMemStore()
	store.pendingErr = errWrite
	_, err := newTestRunner(store, &fakeSource{}, &fakeMB{}, &fakeEnricher{}).Run(context.Background(), Options{Detail: 1})
	if !errors.Is(err, errWrite) {
		t.Fatalf("err = %v, want %v", err, errWrite)
	}
}
