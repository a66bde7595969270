package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderName uniquely identifies an upstream metadata service.
type ProviderName string

// Known provider names.
const (
	NameMusicBrainz    ProviderName = "musicbrainz"
	NameAcousticBrainz ProviderName = "acousticbrainz"
	NameDiscogs        ProviderName = "discogs"
)

// AllProviderNames returns all known provider names in display order.
func AllProviderNames() []ProviderName {
	return []ProviderName{
		NameMusicBrainz,
		NameAcousticBrainz,
		NameDiscogs,
	}
}

// DisplayName returns a human-readable name for the provider.
func (n ProviderName) DisplayName() string {
	switch n {
	case NameMusicBrainz:
		return "MusicBrainz"
	case NameAcousticBrainz:
		return "AcousticBrainz"
	case NameDiscogs:
		return "Discogs"
	default:
		return string(n)
	}
}

// ReleaseQuery describes a release search against the catalog-search service.
type ReleaseQuery struct {
	Artist        string
	Title         string
	CatalogNumber string
	Limit         int
	// Strict quotes every field and requires all of them to match.
	Strict bool
}

// CandidateRelease is a release stub returned by a search.
type CandidateRelease struct {
	MBID  string `json:"mbid"`
	Title string `json:"title"`
	Score int    `json:"score,omitempty"`
}

// URLRelation is a link from a release to an external resource.
type URLRelation struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// TrackEntry is one track of a release medium.
type TrackEntry struct {
	// Number is the printed track designator, e.g. "A1".
	Number      string `json:"number"`
	Title       string `json:"title"`
	Position    int    `json:"position"`
	RecordingID string `json:"recording_id"`
}

// Medium is one disc or side group of a release.
type Medium struct {
	Position int          `json:"position"`
	Format   string       `json:"format,omitempty"`
	Tracks   []TrackEntry `json:"tracks"`
}

// ReleaseDetail is the full record of a catalog release.
type ReleaseDetail struct {
	MBID           string        `json:"mbid"`
	Title          string        `json:"title"`
	CatalogNumbers []string      `json:"catalog_numbers,omitempty"`
	URLRelations   []URLRelation `json:"url_relations,omitempty"`
	Media          []Medium      `json:"media,omitempty"`
}

// LowLevel holds the audio-analysis fields of a recording. Each field stays
// undecoded so one malformed value cannot spoil the others.
type LowLevel struct {
	BPM         json.RawMessage
	Key         json.RawMessage
	KeyScale    json.RawMessage
	ChordsKey   json.RawMessage
	ChordsScale json.RawMessage
}

// SourceTrack is one tracklist entry in the source catalog.
type SourceTrack struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	// Ordinal is the 1-based index among playable tracks.
	Ordinal int `json:"ordinal"`
}

// SourceRelease is a release as held by the source catalog (Discogs).
type SourceRelease struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Artist        string        `json:"artist"`
	CatalogNumber string        `json:"catalog_number"`
	Tracks        []SourceTrack `json:"tracks"`
}

// Track returns the tracklist entry with the given position, compared
// case-insensitively.
func (r *SourceRelease) Track(position string) (SourceTrack, bool) {
	for _, t := range r.Tracks {
		if strings.EqualFold(t.Position, position) {
			return t, true
		}
	}
	return SourceTrack{}, false
}

// ErrProviderUnavailable indicates a transient failure (rate-limited, timeout, server error).
type ErrProviderUnavailable struct {
	Provider   ProviderName
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested ID.
type ErrNotFound struct {
	Provider ProviderName
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: %s not found", e.Provider, e.ID)
}

// ErrAuthRequired indicates the provider rejected or lacks credentials.
type ErrAuthRequired struct {
	Provider ProviderName
}

func (e *ErrAuthRequired) Error() string {
	return fmt.Sprintf("provider %s: credentials missing or rejected", e.Provider)
}

// IsNotFound reports whether err is (or wraps) an ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err is (or wraps) an ErrProviderUnavailable.
func IsUnavailable(err error) bool {
	var u *ErrProviderUnavailable
	return errors.As(err, &u)
}
