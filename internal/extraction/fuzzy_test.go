package extraction

import "testing"

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	score := tokenSortRatio("free will and consciousness", "consciousness and free will")
	if score != 100 {
		t.Fatalf("expected reordered identical tokens to score 100, got %d", score)
	}
}

func TestTokenSortRatioPenalizesDivergence(t *testing.T) {
	high := tokenSortRatio("the nature of consciousness", "the nature of conciousness")
	low := tokenSortRatio("the nature of consciousness", "a completely unrelated sentence")
	if high <= low {
		t.Fatalf("expected a near-identical string to score higher than an unrelated one: high=%d low=%d", high, low)
	}
	if high < FuzzyThreshold {
		t.Fatalf("expected a one-typo difference to clear FuzzyThreshold, got %d", high)
	}
}

func TestRatioEmptyStringsScorePerfect(t *testing.T) {
	if got := ratio("", ""); got != 100 {
		t.Fatalf("expected empty/empty to score 100, got %d", got)
	}
}
