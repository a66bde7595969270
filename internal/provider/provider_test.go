package provider

import (
	"errors"
	"fmt"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := map[ProviderName]string{
		NameMusicBrainz:        "MusicBrainz",
		NameAcousticBrainz:     "AcousticBrainz",
		NameDiscogs:            "Discogs",
		ProviderName("custom"): "custom",
	}
	for name, want := range tests {
		if got := name.DisplayName(); got != want {
			t.Errorf("%s.DisplayName() = %q, want %q", name, got, want)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", &ErrNotFound{Provider: NameAcousticBrainz, ID: "x"})
	if !IsNotFound(nf) {
		t.Error("expected wrapped ErrNotFound to be classified as not found")
	}
	if IsUnavailable(nf) {
		t.Error("not-found must not classify as unavailable")
	}

	cause := errors.New("connection refused")
	un := &ErrProviderUnavailable{Provider: NameMusicBrainz, Cause: cause}
	if !IsUnavailable(un) {
		t.Error("expected ErrProviderUnavailable to be classified as unavailable")
	}
	if !errors.Is(un, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestSourceReleaseTrack(t *testing.T) {
	r := &SourceRelease{Tracks: []SourceTrack{
		{Position: "A", Title: "Call & Response", Ordinal: 1},
		{Position: "AA", Title: "The Crane", Ordinal: 2},
	}}
	got, ok := r.Track("aa")
	if !ok {
		t.Fatal("expected track AA")
	}
	if got.Title != "The Crane" || got.Ordinal != 2 {
		t.Errorf("got %+v", got)
	}
	if _, ok := r.Track("B1"); ok {
		t.Error("expected no track B1")
	}
}
