package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// RatingRanker lists competing procedures for a topic, ordered by rating
// descending, with relative cost and radiation comparisons against the
// requested procedure.
type RatingRanker struct {
	logger   *logrus.Logger
	criteria domain.CriteriaSource
}

// NewRatingRanker creates a ranker over the given criteria source
func NewRatingRanker(logger *logrus.Logger, criteria domain.CriteriaSource) *RatingRanker {
	return &RatingRanker{logger: logger, criteria: criteria}
}

// Rank returns the topic's alternatives. The requested procedure is excluded
// from its own alternative list. Equal ratings prefer the most recently
// reviewed fact, then table order.
func (r *RatingRanker) Rank(topic, requestedProcedure string) []domain.Alternative {
	facts := r.criteria.FindByTopic(topic)
	if len(facts) == 0 {
		return []domain.Alternative{}
	}

	baseline := r.requestedRadiation(facts, requestedProcedure)

	candidates := make([]domain.CriteriaFact, 0, len(facts))
	for _, fact := range facts {
		if proceduresEquivalent(fact.Procedure, requestedProcedure) {
			continue
		}
		candidates = append(candidates, fact)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rating != candidates[j].Rating {
			return candidates[i].Rating > candidates[j].Rating
		}
		return candidates[i].LastReviewed.After(candidates[j].LastReviewed)
	})

	alternatives := make([]domain.Alternative, 0, len(candidates))
	for _, fact := range candidates {
		alternatives = append(alternatives, domain.Alternative{
			Procedure:           fact.Procedure,
			Rating:              fact.Rating,
			Rationale:           alternativeRationale(&fact),
			CostComparison:      compareCost(fact.Procedure, requestedProcedure),
			RadiationComparison: compareRadiation(fact.RadiationLevel, baseline),
		})
	}

	r.logger.WithFields(logrus.Fields{
		"topic":        topic,
		"alternatives": len(alternatives),
	}).Debug("Ranked alternatives")

	return alternatives
}

// requestedRadiation finds the radiation baseline of the requested procedure
// from its own fact within the topic, if the table covers it.
func (r *RatingRanker) requestedRadiation(facts []domain.CriteriaFact, requestedProcedure string) *domain.RadiationLevel {
	for _, fact := range facts {
		if proceduresEquivalent(fact.Procedure, requestedProcedure) {
			level := fact.RadiationLevel
			return &level
		}
	}
	return nil
}

func proceduresEquivalent(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func alternativeRationale(fact *domain.CriteriaFact) string {
	if fact.Variant != "" {
		return fmt.Sprintf("Rated %d/9 for %s", fact.Rating, strings.ToLower(fact.Variant))
	}
	return fmt.Sprintf("Rated %d/9 for %s", fact.Rating, fact.Topic)
}

// compareRadiation compares an alternative's radiation ordinal against the
// requested procedure's. A radiation-free alternative reports NONE rather
// than LOWER.
func compareRadiation(alternative domain.RadiationLevel, baseline *domain.RadiationLevel) domain.Comparison {
	if baseline == nil {
		if alternative == domain.RADIATION_NONE {
			return domain.COMPARE_NONE
		}
		return domain.COMPARE_SIMILAR
	}
	switch {
	case alternative < *baseline:
		if alternative == domain.RADIATION_NONE {
			return domain.COMPARE_NONE
		}
		return domain.COMPARE_LOWER
	case alternative > *baseline:
		return domain.COMPARE_HIGHER
	default:
		return domain.COMPARE_SIMILAR
	}
}

// Modality cost tiers: advanced cross-sectional imaging costs more than
// basic studies. Used only for the relative comparison, never for scoring.
var costTiers = []struct {
	keyword string
	tier    int
}{
	{"mri", 4},
	{"cta", 3},
	{"ct", 3},
	{"ventilation-perfusion", 3},
	{"nuclear", 3},
	{"pet", 4},
	{"ultrasound", 2},
	{"radiograph", 1},
	{"x-ray", 1},
}

func costTier(procedure string) int {
	lp := strings.ToLower(procedure)
	for _, entry := range costTiers {
		if strings.Contains(lp, entry.keyword) {
			return entry.tier
		}
	}
	return 2
}

func compareCost(alternative, requested string) domain.Comparison {
	a, b := costTier(alternative), costTier(requested)
	switch {
	case a < b:
		return domain.COMPARE_LOWER
	case a > b:
		return domain.COMPARE_HIGHER
	default:
		return domain.COMPARE_SIMILAR
	}
}
