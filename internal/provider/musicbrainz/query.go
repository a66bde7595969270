package musicbrainz

import (
	"strings"

	"github.com/sydlexius/brainzmatch/internal/provider"
)

// luceneSpecial lists characters that must be escaped in unquoted terms.
const luceneSpecial = `+-&|!(){}[]^"~*?:\/`

// BuildQuery renders a release search as a Lucene query string. Strict
// queries quote each field and join them with AND; loose queries leave the
// terms unquoted so the search service can rank partial matches.
func BuildQuery(q provider.ReleaseQuery) string {
	fields := []struct {
		name  string
		value string
	}{
		{"artist", q.Artist},
		{"release", q.Title},
		{"catno", q.CatalogNumber},
	}

	var parts []string
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if q.Strict {
			parts = append(parts, f.name+`:"`+quote(v)+`"`)
		} else {
			parts = append(parts, f.name+":("+escape(v)+")")
		}
	}

	if q.Strict {
		return strings.Join(parts, " AND ")
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(luceneSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
