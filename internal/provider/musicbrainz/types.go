package musicbrainz

// MusicBrainz API response types.

// ReleaseSearchResponse is the top-level response from the release search endpoint.
type ReleaseSearchResponse struct {
	Created  string      `json:"created"`
	Count    int         `json:"count"`
	Offset   int         `json:"offset"`
	Releases []MBRelease `json:"releases"`
}

// MBRelease represents a MusicBrainz release entity. Search results carry
// only the stub fields; lookups with inc=labels+url-rels+recordings fill
// the rest.
type MBRelease struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Score     int           `json:"score"`
	Status    string        `json:"status"`
	LabelInfo []MBLabelInfo `json:"label-info"`
	Relations []MBRelation  `json:"relations"`
	Media     []MBMedium    `json:"media"`
}

// MBLabelInfo pairs a label with the catalog number it used.
type MBLabelInfo struct {
	CatalogNumber string   `json:"catalog-number"`
	Label         *MBLabel `json:"label,omitempty"`
}

// MBLabel is a record label.
type MBLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MBRelation represents a relationship between entities.
type MBRelation struct {
	Type       string         `json:"type"`
	TargetType string         `json:"target-type"`
	URL        *MBRelationURL `json:"url,omitempty"`
}

// MBRelationURL holds URL data within a relation.
type MBRelationURL struct {
	ID       string `json:"id"`
	Resource string `json:"resource"`
}

// MBMedium is one medium (disc, vinyl side group) of a release.
type MBMedium struct {
	Position int       `json:"position"`
	Format   string    `json:"format"`
	Tracks   []MBTrack `json:"tracks"`
}

// MBTrack is a track on a medium.
type MBTrack struct {
	ID        string       `json:"id"`
	Number    string       `json:"number"`
	Title     string       `json:"title"`
	Position  int          `json:"position"`
	Recording *MBRecording `json:"recording,omitempty"`
}

// MBRecording is the recording a track points to.
type MBRecording struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
