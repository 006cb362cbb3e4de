package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/farsightlab/arv-backend/internal/types"
)

// maxRGBDistance is the diagonal of the RGB cube, used to normalize color
// distance into [0, 1].
var maxRGBDistance = math.Sqrt(3 * 255 * 255)

// ColorDistance returns the normalized Euclidean distance between two
// #rrggbb colors. ok is false when either color is missing or unparseable;
// the caller must treat that as a pass-through, not as similar or dissimilar.
func ColorDistance(a, b string) (dist float64, ok bool) {
	ra, ga, ba, okA := parseHexColor(a)
	rb, gb, bb, okB := parseHexColor(b)
	if !okA || !okB {
		return 0, false
	}
	dr := float64(ra - rb)
	dg := float64(ga - gb)
	db := float64(ba - bb)
	return math.Sqrt(dr*dr+dg*dg+db*db) / maxRGBDistance, true
}

func parseHexColor(s string) (r, g, b int, ok bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

// LexicalSimilarity returns the Jaccard similarity of the two descriptions'
// lower-cased whitespace-tokenized word sets. ok is false when either
// description is empty.
func LexicalSimilarity(a, b string) (sim float64, ok bool) {
	wordsA := tokenize(a)
	wordsB := tokenize(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0, false
	}
	intersection := 0
	for w := range wordsA {
		if _, found := wordsB[w]; found {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0, false
	}
	return float64(intersection) / float64(union), true
}

func tokenize(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

// SelectorPolicy parameterizes pair selection so the retry behavior is a
// pure function of fixture sequences in tests.
type SelectorPolicy struct {
	MaxPairAttempts      int
	MaxSlotAttempts      int
	MinColorDistance     float64
	MaxLexicalSimilarity float64
}

func DefaultSelectorPolicy() SelectorPolicy {
	return SelectorPolicy{
		MaxPairAttempts:      10,
		MaxSlotAttempts:      5,
		MinColorDistance:     0.30,
		MaxLexicalSimilarity: 0.50,
	}
}

// Accepts reports whether the pair is dissimilar enough for a meaningful
// blind comparison. A criterion whose metadata is absent on either picture
// passes through as satisfied.
func (p SelectorPolicy) Accepts(a, b *types.Picture) bool {
	if dist, ok := ColorDistance(a.AvgColor, b.AvgColor); ok && dist < p.MinColorDistance {
		return false
	}
	if sim, ok := LexicalSimilarity(a.Description, b.Description); ok && sim > p.MaxLexicalSimilarity {
		return false
	}
	return true
}
