package match

import (
	"context"
	"errors"
	"testing"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

func TestFetcherSearch_Truncates(t *testing.T) {
	cat := newFakeCatalog()
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		cat.add(release(id))
	}
	f := NewFetcher(cat, testLogger())

	got := f.Search(context.Background(), provider.ReleaseQuery{Artist: "x", Limit: 5})
	if len(got) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(got))
	}
	if got[0].MBID != "a" || got[4].MBID != "e" {
		t.Errorf("candidates must keep service order, got %v", got)
	}
}

func TestFetcherSearch_DefaultLimit(t *testing.T) {
	cat := newFakeCatalog()
	f := NewFetcher(cat, testLogger())
	f.Search(context.Background(), provider.ReleaseQuery{Artist: "x"})
	if len(cat.queries) != 1 || cat.queries[0].Limit != DefaultCandidateLimit {
		t.Errorf("expected default limit to be sent, got %+v", cat.queries)
	}
}

func TestFetcherSearch_ErrorYieldsEmpty(t *testing.T) {
	cat := newFakeCatalog()
	cat.add(release("a"))
	cat.searchErr = &provider.ErrProviderUnavailable{Provider: provider.NameMusicBrainz, Cause: errors.New("503")}
	f := NewFetcher(cat, testLogger())

	if got := f.Search(context.Background(), provider.ReleaseQuery{Artist: "x"}); len(got) != 0 {
		t.Errorf("expected no candidates on upstream failure, got %v", got)
	}
}
