// Package service implements the appropriateness evaluation engine: similarity
// matching against the criteria table, weighted factor scoring, classification,
// alternative ranking, safety warning derivation and evidence linking.
package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
)

// EvaluatorService composes the engine components into the single Evaluate
// entry point. It holds no per-request state: identical input always
// reproduces identical output, and concurrent callers need no coordination.
type EvaluatorService struct {
	logger     *logrus.Logger
	criteria   domain.CriteriaSource
	matcher    domain.Matcher
	scorer     domain.FactorScorer
	classifier domain.Classifier
	ranker     domain.AlternativeRanker
	deriver    domain.WarningDeriver
	linker     domain.EvidenceLinker
}

// NewEvaluatorService wires the engine over a knowledge base and its dataset's
// factor rules.
func NewEvaluatorService(logger *logrus.Logger, base *knowledge.Base, rules []knowledge.FactorRuleSpec) (*EvaluatorService, error) {
	scorer, err := NewWeightedScorer(logger, rules)
	if err != nil {
		return nil, err
	}

	return &EvaluatorService{
		logger:     logger,
		criteria:   base,
		matcher:    NewSimilarityMatcher(logger, base),
		scorer:     scorer,
		classifier: NewScoreClassifier(),
		ranker:     NewRatingRanker(logger, base),
		deriver:    NewSafetyDeriver(logger),
		linker:     NewCitationLinker(),
	}, nil
}

// Evaluate runs one complete appropriateness evaluation. It is total for
// well-formed input: degraded coverage lowers confidence, it never fails.
func (e *EvaluatorService) Evaluate(req *domain.ClinicalRequest) *domain.EvaluationResult {
	start := time.Now()

	match := e.matcher.Match(req.Topic, req.Variant, req.Procedure)
	score, factors := e.scorer.Score(req, &match)
	category, color, confidence := e.classifier.Classify(score, &match)
	alternatives := e.ranker.Rank(resolvedTopic(req, &match), req.Procedure)
	warnings := e.deriver.Derive(req)
	links := e.linker.Link(&match, factors)

	result := &domain.EvaluationResult{
		Score:         score,
		Category:      category,
		StatusColor:   color,
		MatchResult:   match,
		Factors:       factors,
		Alternatives:  alternatives,
		Warnings:      warnings,
		EvidenceLinks: links,
		Confidence:    confidence,
		EvaluatedAt:   time.Now().UTC(),
	}

	e.logger.WithFields(logrus.Fields{
		"topic":         req.Topic,
		"procedure":     req.Procedure,
		"score":         result.Score,
		"category":      result.Category.String(),
		"match_quality": match.Quality.String(),
		"confidence":    result.Confidence.String(),
		"warnings":      len(warnings),
		"duration":      time.Since(start),
	}).Info("Evaluation completed")

	return result
}
