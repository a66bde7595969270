package match

import "strings"

// CutResult is a string split around a term.
type CutResult struct {
	Before string
	Term   string
	After  string
}

// Cut splits s at the last occurrence of term.
func Cut(s, term string) (CutResult, bool) {
	if term == "" {
		return CutResult{}, false
	}
	i := strings.LastIndex(s, term)
	if i < 0 {
		return CutResult{}, false
	}
	return CutResult{
		Before: s[:i],
		Term:   term,
		After:  s[i+len(term):],
	}, true
}

// variationDelimiters are tried in order against the non-numeric prefix of
// a catalog number. "D" precedes "CD", so a prefix containing "CD" is cut at
// its "D".
var variationDelimiters = []string{"-", "#", "D", "CD", "BLACK"}

// splitNumericTail separates the trailing run of ASCII digits.
func splitNumericTail(s string) (prefix, tail string) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[:i], s[i:]
}

// CatNoVariation applies the first catalog-number rewrite rule that fires on
// a normalized catalog number:
//
//	"...CD"  -> strip "CD"  (var 3)
//	"...D"   -> strip "D"   (var 1)
//	"XX<d>NN" -> "XXNN" for the first delimiter d found in the prefix (var 2)
func CatNoVariation(catno string) (string, ReleaseMethod, bool) {
	switch {
	case strings.HasSuffix(catno, "CD"):
		return strings.TrimSuffix(catno, "CD"), MethodCatNoVar3, true
	case strings.HasSuffix(catno, "D"):
		return strings.TrimSuffix(catno, "D"), MethodCatNoVar1, true
	}

	prefix, tail := splitNumericTail(catno)
	if tail == "" || prefix == "" {
		return "", "", false
	}
	for _, d := range variationDelimiters {
		if c, ok := Cut(prefix, d); ok {
			return c.Before + tail, MethodCatNoVar2, true
		}
	}
	return "", "", false
}
