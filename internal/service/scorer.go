package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
)

// Score baseline and bounds. 5.0 represents "unknown/neutral"; a final score
// of 0 is the insufficient-data sentinel, never a computed value.
const (
	scoreBaseline = 5.0
	scoreMin      = 1.0
	scoreMax      = 9.0
)

// predicateFunc inspects the scenario and reports whether the rule fires,
// plus a human-readable observed value for the factor record.
type predicateFunc func(s *domain.ScenarioAttributes, params map[string]float64) (bool, string)

// factorRule is one compiled {predicate, effect} entry. All rules are
// independent and additive: every applicable rule fires, nothing
// short-circuits, and zero-contribution factors are kept for the audit trail.
type factorRule struct {
	spec      knowledge.FactorRuleSpec
	predicate predicateFunc
}

// WeightedScorer computes the appropriateness score as baseline plus the sum
// of all triggered factor contributions, clamped into [1,9].
type WeightedScorer struct {
	logger *logrus.Logger
	rules  []factorRule
}

// NewWeightedScorer compiles the dataset's factor rules against the named
// predicate registry. An unknown predicate key is a dataset error.
func NewWeightedScorer(logger *logrus.Logger, specs []knowledge.FactorRuleSpec) (*WeightedScorer, error) {
	rules := make([]factorRule, 0, len(specs))
	for _, spec := range specs {
		predicate, ok := predicateRegistry[spec.Predicate]
		if !ok {
			return nil, fmt.Errorf("factor rule %s references unknown predicate %q", spec.ID, spec.Predicate)
		}
		rules = append(rules, factorRule{spec: spec, predicate: predicate})
	}

	logger.WithField("rule_count", len(rules)).Info("Compiled factor rules")
	return &WeightedScorer{logger: logger, rules: rules}, nil
}

// Score evaluates every in-scope rule against the scenario. Factors appear in
// dataset order. When no criteria context exists at all (match quality NONE
// and no rule fired) the sentinel 0 is returned.
func (w *WeightedScorer) Score(req *domain.ClinicalRequest, match *domain.MatchResult) (float64, []domain.Factor) {
	topic := resolvedTopic(req, match)

	factors := make([]domain.Factor, 0)
	sum := 0.0

	for _, rule := range w.rules {
		if !rule.inScope(topic) {
			continue
		}
		fired, observed := rule.predicate(&req.Scenario, rule.spec.Params)
		if !fired {
			continue
		}

		factors = append(factors, domain.Factor{
			Name:          rule.spec.Name,
			ObservedValue: observed,
			Contribution:  rule.spec.Contribution,
			Direction:     rule.spec.Direction,
			Rationale:     rule.spec.Rationale,
			Citation:      rule.spec.Citation,
		})
		sum += rule.spec.Contribution
	}

	if match.Quality == domain.MATCH_NONE && len(factors) == 0 {
		w.logger.WithField("topic", req.Topic).Debug("No criteria context; returning sentinel score")
		return 0, factors
	}

	raw := scoreBaseline + sum
	score := clampScore(raw)

	w.logger.WithFields(logrus.Fields{
		"topic":         topic,
		"raw_score":     raw,
		"final_score":   score,
		"factors_fired": len(factors),
	}).Debug("Computed weighted factor score")

	return score, factors
}

func (r *factorRule) inScope(topic string) bool {
	if len(r.spec.Topics) == 0 {
		return true
	}
	lt := strings.ToLower(topic)
	for _, scope := range r.spec.Topics {
		ls := strings.ToLower(scope)
		if strings.Contains(lt, ls) || strings.Contains(ls, lt) {
			return true
		}
	}
	return false
}

// resolvedTopic prefers the matched fact's topic over the request's wording
func resolvedTopic(req *domain.ClinicalRequest, match *domain.MatchResult) string {
	if match.Fact != nil {
		return match.Fact.Topic
	}
	if match.ClosestFact != nil {
		return match.ClosestFact.Topic
	}
	return req.Topic
}

func clampScore(raw float64) float64 {
	score := math.Round(raw*10) / 10
	if score < scoreMin {
		return scoreMin
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}

// hasRedFlags reports whether any red-flag feature is present. Opposing rules
// guard on this so they never fire alongside a red-flag presentation.
func hasRedFlags(s *domain.ScenarioAttributes) bool {
	return s.RedFlags || s.CancerHistory || s.NeuroDeficit || s.ThunderclapOnset || s.NeckStiffness
}

// predicateRegistry maps dataset predicate keys to their evaluators. Rule
// weights and scoping live in the dataset; only the inspection logic is code.
var predicateRegistry = map[string]predicateFunc{
	"duration_under_days": func(s *domain.ScenarioAttributes, params map[string]float64) (bool, string) {
		if s.DurationDays == nil || hasRedFlags(s) {
			return false, ""
		}
		limit := int(params["days"])
		if *s.DurationDays >= limit {
			return false, ""
		}
		return true, fmt.Sprintf("%d days", *s.DurationDays)
	},
	"no_conservative_management": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		if s.ConservativeManagementTried || hasRedFlags(s) {
			return false, ""
		}
		return true, "not attempted"
	},
	"no_red_flags": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		if hasRedFlags(s) {
			return false, ""
		}
		return true, "absent"
	},
	"age_between": func(s *domain.ScenarioAttributes, params map[string]float64) (bool, string) {
		min, max := int(params["min"]), int(params["max"])
		if s.Age < min || s.Age > max {
			return false, ""
		}
		return true, fmt.Sprintf("%d years", s.Age)
	},
	"age_over": func(s *domain.ScenarioAttributes, params map[string]float64) (bool, string) {
		years := int(params["years"])
		if s.Age <= years {
			return false, ""
		}
		return true, fmt.Sprintf("%d years", s.Age)
	},
	"cancer_history": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		return s.CancerHistory, "present"
	},
	"neuro_deficit": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		return s.NeuroDeficit, "present"
	},
	"progressive_symptoms": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		return s.ProgressiveSymptoms, "worsening"
	},
	"chronic_stable_pattern": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		if !s.ChronicStablePattern || hasRedFlags(s) {
			return false, ""
		}
		return true, "long-standing, unchanged"
	},
	"prior_normal_imaging": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		if !s.PriorNormalImaging || hasRedFlags(s) {
			return false, ""
		}
		return true, "previously normal"
	},
	"typical_primary_features": func(s *domain.ScenarioAttributes, params map[string]float64) (bool, string) {
		maxAge := int(params["max_age"])
		if !s.ChronicStablePattern || hasRedFlags(s) || s.Age > maxAge {
			return false, ""
		}
		return true, fmt.Sprintf("typical pattern at %d years", s.Age)
	},
	"thunderclap_onset": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		return s.ThunderclapOnset, "sudden severe onset"
	},
	"neck_stiffness": func(s *domain.ScenarioAttributes, _ map[string]float64) (bool, string) {
		return s.NeckStiffness, "present"
	},
}
