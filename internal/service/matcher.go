package service

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// Weighting of the combined candidate score within a topic
const (
	procedureWeight = 0.7
	variantWeight   = 0.3
)

// Confidence thresholds of the tiered match policy
const (
	similarDirectThreshold  = 0.8
	similarClosestThreshold = 0.5
	generalFallbackFloor    = 0.3
)

// SimilarityMatcher resolves a requested (topic, variant, procedure) against
// the criteria table using the tiered match policy: exact topic+procedure,
// scored ranking within topic candidates, then a whole-table procedure scan.
type SimilarityMatcher struct {
	logger     *logrus.Logger
	criteria   domain.CriteriaSource
	strategies []SimilarityStrategy
}

// NewSimilarityMatcher creates a matcher over the given criteria source
func NewSimilarityMatcher(logger *logrus.Logger, criteria domain.CriteriaSource) *SimilarityMatcher {
	return &SimilarityMatcher{
		logger:     logger,
		criteria:   criteria,
		strategies: defaultStrategies,
	}
}

// Match finds the best-fitting fact for the request. The result always carries
// a quality tier; Fact is set only for EXACT and high-confidence SIMILAR.
func (m *SimilarityMatcher) Match(topic, variant, procedure string) domain.MatchResult {
	// Step 1: exact topic equality plus procedure containment
	if fact := m.exactMatch(topic, procedure); fact != nil {
		m.logger.WithFields(logrus.Fields{
			"fact_id": fact.ID,
			"topic":   topic,
		}).Debug("Exact criteria match")
		return domain.MatchResult{Fact: fact, Quality: domain.MATCH_EXACT, SimilarityScore: 1.0}
	}

	// Step 2: candidates sharing the topic
	candidates := m.criteria.FindByTopic(topic)
	if len(candidates) == 0 {
		return m.wholeTableFallback(procedure)
	}

	// Step 3: scored ranking within the topic
	return m.rankCandidates(candidates, variant, procedure)
}

func (m *SimilarityMatcher) exactMatch(topic, procedure string) *domain.CriteriaFact {
	for _, fact := range m.criteria.All() {
		if strings.EqualFold(fact.Topic, topic) &&
			strings.Contains(strings.ToLower(fact.Procedure), strings.ToLower(procedure)) {
			matched := fact
			return &matched
		}
	}
	return nil
}

type scoredFact struct {
	fact  domain.CriteriaFact
	score float64
}

func (m *SimilarityMatcher) rankCandidates(candidates []domain.CriteriaFact, variant, procedure string) domain.MatchResult {
	scored := make([]scoredFact, 0, len(candidates))
	for _, fact := range candidates {
		procedureSim := stringSimilarity(m.strategies, procedure, fact.Procedure)
		variantSim := stringSimilarity(m.strategies, variant, fact.Variant)
		scored = append(scored, scoredFact{
			fact:  fact,
			score: procedureWeight*procedureSim + variantWeight*variantSim,
		})
	}

	// Equal scores prefer the most recently reviewed fact; full ties keep
	// table order via the stable sort.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].fact.LastReviewed.After(scored[j].fact.LastReviewed)
	})

	top := scored[0]
	m.logger.WithFields(logrus.Fields{
		"fact_id":    top.fact.ID,
		"score":      top.score,
		"candidates": len(scored),
	}).Debug("Ranked topic candidates")

	switch {
	case top.score >= similarDirectThreshold:
		fact := top.fact
		return domain.MatchResult{Fact: &fact, Quality: domain.MATCH_SIMILAR, SimilarityScore: top.score}
	case top.score >= similarClosestThreshold:
		fact := top.fact
		return domain.MatchResult{Quality: domain.MATCH_SIMILAR, SimilarityScore: top.score, ClosestFact: &fact}
	default:
		fact := top.fact
		return domain.MatchResult{Quality: domain.MATCH_GENERAL, SimilarityScore: top.score, ClosestFact: &fact}
	}
}

// wholeTableFallback scores every fact by procedure similarity alone when the
// topic has no candidates at all.
func (m *SimilarityMatcher) wholeTableFallback(procedure string) domain.MatchResult {
	var best *domain.CriteriaFact
	bestScore := 0.0

	for _, fact := range m.criteria.All() {
		score := stringSimilarity(m.strategies, procedure, fact.Procedure)
		if best == nil || score > bestScore {
			matched := fact
			best = &matched
			bestScore = score
		}
	}

	if best != nil && bestScore > generalFallbackFloor {
		return domain.MatchResult{Quality: domain.MATCH_GENERAL, SimilarityScore: bestScore, ClosestFact: best}
	}
	return domain.MatchResult{Quality: domain.MATCH_NONE, SimilarityScore: bestScore}
}
