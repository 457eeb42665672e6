package extraction

import (
	"strings"

	"github.com/alexelgier/minerva/internal/model"
)

// HydrateSpan locates target inside docText and returns the Span
// covering it (spec §4.3, §9 "Span hydration is a parser not an LLM
// task"). It tries an exact case-insensitive substring match first;
// failing that it falls back to a fuzzy windowed search and accepts the
// best window scoring at or above FuzzyThreshold, expanded to whole
// word boundaries. ok is false when neither strategy clears the bar.
func HydrateSpan(docText, target string) (span model.Span, ok bool) {
	if docText == "" || target == "" {
		return model.Span{}, false
	}

	if idx := strings.Index(strings.ToLower(docText), strings.ToLower(target)); idx >= 0 {
		end := idx + len(target)
		return model.Span{Start: idx, End: end, Text: docText[idx:end]}, true
	}

	return fuzzyHydrate(docText, target)
}

// fuzzyHydrate slides a window the length of target across docText and
// scores each window with tokenSortRatio, keeping the best. The winning
// window is expanded outward to the nearest word boundaries before
// being returned, since a raw length-matched window usually splits a
// word at one edge.
func fuzzyHydrate(docText, target string) (model.Span, bool) {
	runes := []rune(docText)
	targetLen := len([]rune(target))
	if targetLen == 0 || targetLen > len(runes) {
		return model.Span{}, false
	}

	bestScore := -1
	bestStart, bestEnd := 0, 0

	step := targetLen / 4
	if step < 1 {
		step = 1
	}

	for start := 0; start+targetLen <= len(runes); start += step {
		end := start + targetLen
		window := string(runes[start:end])
		score := tokenSortRatio(window, target)
		if score > bestScore {
			bestScore = score
			bestStart, bestEnd = start, end
		}
	}

	if bestScore < FuzzyThreshold {
		return model.Span{}, false
	}

	startByte, endByte := expandToWords(docText, runesToByteOffset(runes, bestStart), runesToByteOffset(runes, bestEnd))
	return model.Span{Start: startByte, End: endByte, Text: docText[startByte:endByte]}, true
}

func runesToByteOffset(runes []rune, runeIdx int) int {
	return len(string(runes[:runeIdx]))
}

// expandToWords pushes start left and end right until they land on
// whitespace or a document boundary, so a fuzzy match never returns a
// span that bisects a word.
func expandToWords(doc string, start, end int) (int, int) {
	for start > 0 && !isBoundary(rune(doc[start-1])) {
		start--
	}
	for end < len(doc) && !isBoundary(rune(doc[end])) {
		end++
	}
	for start < end && isBoundary(rune(doc[start])) {
		start++
	}
	for end > start && isBoundary(rune(doc[end-1])) {
		end--
	}
	return start, end
}

func isBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}
