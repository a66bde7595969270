package match

import (
	"strings"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// LooseDetail is the lowest detail level that switches searches to loose mode.
const LooseDetail = 2

// DefaultCandidateLimit is the number of release candidates requested per search.
const DefaultCandidateLimit = 5

// NormalizeCatNo uppercases a catalog number and strips its spaces.
func NormalizeCatNo(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// normalizeTitle is the comparison form of a track title.
func normalizeTitle(s string) string { return strings.ToLower(s) }

// normalizeLabel is the comparison form of a track label.
func normalizeLabel(s string) string { return strings.ToUpper(s) }

// SearchQuery derives the release search for t. Below LooseDetail the source
// strings are sent untouched in strict mode; from LooseDetail on, artist and
// title are lowercased, the catalog number is normalized and the search is
// relaxed.
func SearchQuery(t Target, detail, limit int) provider.ReleaseQuery {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	if detail < LooseDetail {
		return provider.ReleaseQuery{
			Artist:        t.Artist,
			Title:         t.ReleaseTitle,
			CatalogNumber: t.CatalogNumber,
			Limit:         limit,
			Strict:        true,
		}
	}
	return provider.ReleaseQuery{
		Artist:        strings.ToLower(t.Artist),
		Title:         strings.ToLower(t.ReleaseTitle),
		CatalogNumber: NormalizeCatNo(t.CatalogNumber),
		Limit:         limit,
		Strict:        false,
	}
}
