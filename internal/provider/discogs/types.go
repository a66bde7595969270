package discogs

// Discogs API response types.

// ReleaseDetail is the full release response from Discogs.
type ReleaseDetail struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Artists     []ArtistCredit `json:"artists"`
	Labels      []LabelCredit  `json:"labels"`
	Tracklist   []Track        `json:"tracklist"`
	Year        int            `json:"year"`
	DataQuality string         `json:"data_quality"`
}

// ArtistCredit is an artist credited on a release.
type ArtistCredit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// ANV is the artist name variation printed on the release.
	ANV  string `json:"anv"`
	Join string `json:"join"`
}

// LabelCredit is a label and the catalog number it assigned.
type LabelCredit struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Catno string `json:"catno"`
}

// Track is a tracklist entry. Headings and index tracks share the list and
// are told apart by Type.
type Track struct {
	Position string `json:"position"`
	Type     string `json:"type_"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}
