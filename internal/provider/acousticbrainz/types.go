package acousticbrainz

import "encoding/json"

// LowLevelDocument is the top-level low-level analysis response. Sections are
// kept raw and decoded one at a time.
type LowLevelDocument map[string]json.RawMessage

// Section names and fields of interest in a low-level document.
const (
	sectionRhythm = "rhythm"
	sectionTonal  = "tonal"

	fieldBPM         = "bpm"
	fieldKey         = "key_key"
	fieldKeyScale    = "key_scale"
	fieldChordsKey   = "chords_key"
	fieldChordsScale = "chords_scale"
)
