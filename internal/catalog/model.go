package catalog

import "time"

// Release is a cached source-catalog release and its MusicBrainz match.
type Release struct {
	DiscogsID     int64
	Title         string
	CatalogNumber string
	Artist        string
	MBReleaseID   string
	MBMatchMethod string
	MBMatchedAt   *time.Time
}

// Track is a cached tracklist entry with its match and audio attributes.
type Track struct {
	ReleaseID           int64
	Label               string
	Name                string
	Ordinal             int
	MBRecordingID       string
	MBRecordingOverride string
	MBMatchMethod       string
	Key                 *string
	ChordsKey           *string
	BPM                 *float64
	MBMatchedAt         *time.Time
}

// PendingParams selects the tracks a batch run works on.
type PendingParams struct {
	// Offset is the number of leading tracks to skip.
	Offset int
	// Force includes tracks whose key, chords key and bpm are all set.
	Force bool
	// SkipUnmatched keeps only tracks with a prior recording match or override.
	SkipUnmatched bool
	// ReleaseID restricts selection to one release when non-zero.
	ReleaseID int64
}

// TrackMatch is a track-level write. Empty strings and nil pointers leave
// the stored value untouched.
type TrackMatch struct {
	ReleaseID     int64
	TrackLabel    string
	RecordingMBID string
	Method        string
	Key           *string
	ChordsKey     *string
	BPM           *float64
}

// Run is the summary of one batch run.
type Run struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Options           string
	Processed         int
	Skipped           int
	ReleasesMatched   int
	RecordingsMatched int
	KeysAdded         int
	ChordsKeysAdded   int
	BPMAdded          int
	DBErrors          int
	NotFoundErrors    int
	NoAnalysis        int
	BackfillWarnings  int
	Unavailable       int
}
