// Package enrich attaches audio-analysis attributes to resolved recordings.
package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// LowLevelFetcher returns the low-level analysis of a recording.
type LowLevelFetcher interface {
	GetLowLevel(ctx context.Context, recordingMBID string) (*provider.LowLevel, error)
}

// Outcome classifies an enrichment attempt.
type Outcome int

// Enrichment outcomes.
const (
	OutcomeOK Outcome = iota
	// OutcomeNoAnalysis means the service has not analyzed the recording yet.
	OutcomeNoAnalysis
	// OutcomeUnavailable means the service could not be reached or failed.
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoAnalysis:
		return "no analysis"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Attributes are the extracted audio attributes. Nil means absent.
type Attributes struct {
	BPM       *float64
	Key       *string
	ChordsKey *string
}

// Enricher extracts tempo and key attributes for recordings.
type Enricher struct {
	fetcher LowLevelFetcher
	logger  *slog.Logger
}

// New creates an Enricher.
func New(fetcher LowLevelFetcher, logger *slog.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "enricher")),
	}
}

// Enrich fetches one analysis record for recordingMBID and extracts each
// attribute independently.
func (e *Enricher) Enrich(ctx context.Context, recordingMBID string) (Attributes, Outcome) {
	log := e.logger.With(slog.String("recording", recordingMBID))

	ll, err := e.fetcher.GetLowLevel(ctx, recordingMBID)
	if err != nil {
		if provider.IsNotFound(err) {
			log.Debug("no analysis yet")
			return Attributes{}, OutcomeNoAnalysis
		}
		log.Warn("fetching low-level analysis failed", slog.String("error", err.Error()))
		return Attributes{}, OutcomeUnavailable
	}
	if ll == nil {
		return Attributes{}, OutcomeNoAnalysis
	}

	var attrs Attributes
	if bpm, ok := decodeFloat(ll.BPM); ok {
		attrs.BPM = &bpm
	} else if len(ll.BPM) > 0 {
		log.Warn("malformed bpm", slog.String("raw", string(ll.BPM)))
	}

	if key, ok := keyName(ll.Key, ll.KeyScale); ok {
		attrs.Key = &key
	} else if len(ll.Key) > 0 {
		log.Warn("malformed key", slog.String("raw", string(ll.Key)))
	}

	if key, ok := keyName(ll.ChordsKey, ll.ChordsScale); ok {
		attrs.ChordsKey = &key
	} else if len(ll.ChordsKey) > 0 {
		log.Warn("malformed chords key", slog.String("raw", string(ll.ChordsKey)))
	}

	return attrs, OutcomeOK
}

// keyName renders a tonal key as its letter plus "m" when the scale is minor.
// A malformed scale is treated as major.
func keyName(rawKey, rawScale json.RawMessage) (string, bool) {
	key, ok := decodeString(rawKey)
	if !ok || key == "" {
		return "", false
	}
	if scale, _ := decodeString(rawScale); strings.EqualFold(scale, "minor") {
		key += "m"
	}
	return key, true
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
