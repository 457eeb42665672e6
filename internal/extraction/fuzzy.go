package extraction

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FuzzyThreshold is the default minimum token-sort-ratio score span
// hydration accepts (spec §4.3, §9).
const FuzzyThreshold = 75

// tokenSortRatio implements the FuzzyWuzzy-style "token sort ratio":
// tokenize both strings, sort tokens alphabetically, rejoin, and score
// the normalized Levenshtein distance between the two canonical forms.
func tokenSortRatio(a, b string) int {
	return ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

func ratio(a, b string) int {
	maxLen := len([]rune(a))
	if bl := len([]rune(b)); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := (1 - float64(dist)/float64(maxLen)) * 100
	if score < 0 {
		score = 0
	}
	return int(math.Round(score))
}
