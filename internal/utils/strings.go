package utils

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a CamelCase name (e.g. a SchedulingMode) to snake_case.
// Runs of upper case letters are kept together: "UBTiling" becomes "ub_tiling".
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var res strings.Builder
	res.Grow(len(s) + 5)
	for ii, r := range runes {
		if !unicode.IsUpper(r) {
			res.WriteRune(r)
			continue
		}
		if ii > 0 && runes[ii-1] != '_' {
			prevUpper := unicode.IsUpper(runes[ii-1])
			nextLower := ii+1 < len(runes) && unicode.IsLower(runes[ii+1])
			if !prevUpper || nextLower {
				res.WriteByte('_')
			}
		}
		res.WriteRune(unicode.ToLower(r))
	}
	return res.String()
}

// NormalizeIdentifier converts a graph node name to a valid IR operator name: ASCII letters, digits and
// underscores only.
//
// Other characters are replaced with underscores, and a leading digit gets an underscore prefix.
func NormalizeIdentifier(name string) string {
	normalized := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return '_'
	}, name)
	if normalized != "" && normalized[0] >= '0' && normalized[0] <= '9' {
		normalized = "_" + normalized
	}
	return normalized
}
