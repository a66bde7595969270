package match

// Target is a locally known release/track identity to be resolved.
type Target struct {
	// ReleaseID is the source catalog (Discogs) release ID.
	ReleaseID     int64
	ReleaseTitle  string
	CatalogNumber string
	Artist        string
	TrackName     string
	// TrackLabel is the printed track designator, e.g. "A1" or "AA".
	TrackLabel string
	// TrackOrdinal is the 1-based position across the whole release, 0 if unknown.
	TrackOrdinal int
	// RecordingOverride is a user-chosen recording MBID that bypasses
	// recording resolution.
	RecordingOverride string

	// Previously stored match state, informational only.
	PriorRecordingMBID string
}

// ReleaseMethod records which stage resolved a release.
type ReleaseMethod string

// Release match methods, in the order the stages run.
const (
	MethodDiscogsURL ReleaseMethod = "Discogs URL"
	MethodCatNoExact ReleaseMethod = "CatNo (exact)"
	MethodCatNoVar1  ReleaseMethod = "CatNo (var 1)"
	MethodCatNoVar2  ReleaseMethod = "CatNo (var 2)"
	MethodCatNoVar3  ReleaseMethod = "CatNo (var 3)"
)

// RecordingMethod records which stage resolved a recording.
type RecordingMethod string

// Recording match methods.
const (
	MethodUserOverride RecordingMethod = "user override"
	MethodTrackName    RecordingMethod = "Track Name"
	MethodTrackNo      RecordingMethod = "Track No"
	MethodTrackNoNum   RecordingMethod = "Track No (num)"
)

// ReleaseMatch is a resolved release.
type ReleaseMatch struct {
	MBID   string
	Method ReleaseMethod
}

// RecordingMatch is a resolved recording.
type RecordingMatch struct {
	MBID   string
	Method RecordingMethod
}

// Result is the outcome of resolving and enriching one Target. Empty strings
// and nil pointers mean absent.
type Result struct {
	ReleaseMBID     string
	ReleaseMethod   ReleaseMethod
	RecordingMBID   string
	RecordingMethod RecordingMethod

	Key       *string
	ChordsKey *string
	BPM       *float64
}

// HasRelease reports whether a release was resolved.
func (r *Result) HasRelease() bool { return r.ReleaseMBID != "" }

// HasRecording reports whether a recording was resolved.
func (r *Result) HasRecording() bool { return r.RecordingMBID != "" }

// Empty reports whether nothing at all was learned.
func (r *Result) Empty() bool {
	return !r.HasRelease() && !r.HasRecording() && r.Key == nil && r.ChordsKey == nil && r.BPM == nil
}
