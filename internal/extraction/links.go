package extraction

import "regexp"

// wikiLink matches vault-style [[Target]] or [[Target|Alias]] links.
var wikiLink = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)

// LinkRef is a single [[Target|Alias]] reference found in journal text.
type LinkRef struct {
	Target string
	Alias  string
}

// DisplayName returns the alias if present, else the target.
func (l LinkRef) DisplayName() string {
	if l.Alias != "" {
		return l.Alias
	}
	return l.Target
}

// ParseLinks extracts every [[...]] link from text in order of
// appearance.
func ParseLinks(text string) []LinkRef {
	matches := wikiLink.FindAllStringSubmatch(text, -1)
	refs := make([]LinkRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, LinkRef{Target: m[1], Alias: m[2]})
	}
	return refs
}
