package service

import "strings"

// SimilarityStrategy is one string-closeness heuristic. Score reports whether
// the strategy applies to the pair and, if so, the similarity in [0,1].
// Strategies are tried in registration order; the first applicable one wins.
type SimilarityStrategy interface {
	Name() string
	Score(a, b string) (float64, bool)
}

// equalityStrategy matches case-insensitive equal strings
type equalityStrategy struct{}

func (equalityStrategy) Name() string { return "equality" }

func (equalityStrategy) Score(a, b string) (float64, bool) {
	if strings.EqualFold(a, b) {
		return 1.0, true
	}
	return 0, false
}

// containmentStrategy matches when one string contains the other
type containmentStrategy struct{}

func (containmentStrategy) Name() string { return "containment" }

func (containmentStrategy) Score(a, b string) (float64, bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 0.8, true
	}
	return 0, false
}

// tokenOverlapStrategy scores the fraction of shared whitespace-delimited
// tokens, capped below the containment score so the tiers stay ordered.
type tokenOverlapStrategy struct{}

func (tokenOverlapStrategy) Name() string { return "token-overlap" }

func (tokenOverlapStrategy) Score(a, b string) (float64, bool) {
	tokensA := strings.Fields(strings.ToLower(a))
	tokensB := strings.Fields(strings.ToLower(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0, false
	}

	setA := make(map[string]bool, len(tokensA))
	for _, tok := range tokensA {
		setA[tok] = true
	}

	shared := 0
	seen := make(map[string]bool, len(tokensB))
	for _, tok := range tokensB {
		if setA[tok] && !seen[tok] {
			shared++
			seen[tok] = true
		}
	}
	if shared == 0 {
		return 0, false
	}

	total := len(tokensA)
	if len(tokensB) > total {
		total = len(tokensB)
	}
	score := float64(shared) / float64(total)
	if score > 0.7 {
		score = 0.7
	}
	return score, true
}

// charOverlapStrategy is the final fallback: matching characters at the same
// position, over the shorter string's length.
type charOverlapStrategy struct{}

func (charOverlapStrategy) Name() string { return "character-overlap" }

func (charOverlapStrategy) Score(a, b string) (float64, bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	short := len(la)
	if len(lb) < short {
		short = len(lb)
	}
	if short == 0 {
		return 0, true
	}

	matches := 0
	for i := 0; i < short; i++ {
		if la[i] == lb[i] {
			matches++
		}
	}
	return float64(matches) / float64(short), true
}

// defaultStrategies lists the tiers from strongest to weakest signal: exact
// equality beats containment beats token overlap beats character overlap.
var defaultStrategies = []SimilarityStrategy{
	equalityStrategy{},
	containmentStrategy{},
	tokenOverlapStrategy{},
	charOverlapStrategy{},
}

// stringSimilarity runs the strategy chain on a pair of strings. A pair where
// exactly one side is empty scores zero: an absent request field carries no
// evidence of closeness.
func stringSimilarity(strategies []SimilarityStrategy, a, b string) float64 {
	if (a == "") != (b == "") {
		return 0
	}
	for _, strategy := range strategies {
		if score, ok := strategy.Score(a, b); ok {
			return score
		}
	}
	return 0
}
