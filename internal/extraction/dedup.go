package extraction

import "strings"

// Dedup collapses candidates that share a canonical name (case- and
// whitespace-insensitive) within the same extraction call, keeping the
// first occurrence and merging subsequent occurrences' source spans
// into it (spec §4.3 step 3, testable property 3 / scenario S4: dedup
// is scoped to a single type, never across types).
func Dedup(candidates []Candidate) []Candidate {
	order := make([]string, 0, len(candidates))
	byName := make(map[string]*Candidate, len(candidates))

	for _, c := range candidates {
		key := canonicalName(c.Name)
		if key == "" {
			continue
		}
		if existing, ok := byName[key]; ok {
			existing.SourceSpans = append(existing.SourceSpans, c.SourceSpans...)
			continue
		}
		cp := c
		byName[key] = &cp
		order = append(order, key)
	}

	out := make([]Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, *byName[key])
	}
	return out
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
