package alignment

import (
	"strings"
	"unicode"
)

// containmentWeight discounts the containment ratio so partial token overlaps
// between strings of very different lengths are not over-rewarded.
const containmentWeight = 0.8

// NormalizeText lowercases, strips punctuation, and collapses whitespace.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		default:
			// Punctuation separates tokens rather than vanishing inside them.
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity scores how well two free-form strings refer to the same text.
// Pure function, no I/O.
//
//	exact equality            -> 1.0
//	containment either way    -> 0.9
//	otherwise                 -> max(token-set Jaccard, 0.8 x containment ratio)
//
// where the containment ratio is the fraction of the shorter token set present
// in the longer one.
func Similarity(a, b string) float64 {
	na := NormalizeText(a)
	nb := NormalizeText(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	setA := tokenSet(na)
	setB := tokenSet(nb)

	shorter, longer := setA, setB
	if len(setB) < len(setA) {
		shorter, longer = setB, setA
	}

	common := 0
	for tok := range shorter {
		if longer[tok] {
			common++
		}
	}

	union := len(setA) + len(setB) - common
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(common) / float64(union)
	}

	containment := 0.0
	if len(shorter) > 0 {
		containment = float64(common) / float64(len(shorter))
	}

	score := jaccard
	if weighted := containmentWeight * containment; weighted > score {
		score = weighted
	}
	return score
}

// IsExactMatch reports textual equality or containment after normalization.
// Exact containment is far less likely to be coincidental than a high fuzzy
// score, so matchers rank it above similarity.
func IsExactMatch(a, b string) bool {
	na := NormalizeText(a)
	nb := NormalizeText(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// HasKeywordOverlap reports whether the two strings share at least one
// meaningful token (longer than three characters).
func HasKeywordOverlap(a, b string) bool {
	setA := tokenSet(NormalizeText(a))
	setB := tokenSet(NormalizeText(b))
	for tok := range setA {
		if len(tok) > 3 && setB[tok] {
			return true
		}
	}
	return false
}

func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		set[tok] = true
	}
	return set
}
