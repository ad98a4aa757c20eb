// Package adapter translates between host-environment payloads and the
// engine's request/result types. It maps a host clinical context into a
// ClinicalRequest and renders an EvaluationResult as a display card.
package adapter

import (
	"fmt"
	"strings"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// HostContext is the structured clinical context a host environment supplies.
// Field names follow common EHR integration conventions rather than the
// engine's internal naming.
type HostContext struct {
	Condition        string                    `json:"condition"`
	ConditionVariant string                    `json:"condition_variant,omitempty"`
	OrderedProcedure string                    `json:"ordered_procedure"`
	Patient          domain.ScenarioAttributes `json:"patient"`
}

// SuggestionLink is one actionable suggestion on the card
type SuggestionLink struct {
	Label     string `json:"label"`
	Procedure string `json:"procedure"`
	Rating    int    `json:"rating"`
}

// DisplayCard is the host-facing summary of an evaluation
type DisplayCard struct {
	Summary        string             `json:"summary"`
	Detail         string             `json:"detail"`
	Indicator      domain.StatusColor `json:"indicator"`
	Score          float64            `json:"score"`
	Confidence     string             `json:"confidence"`
	WarningLines   []string           `json:"warning_lines,omitempty"`
	Suggestions    []SuggestionLink   `json:"suggestions,omitempty"`
	EvidenceLabels []string           `json:"evidence_labels,omitempty"`
}

// ToClinicalRequest maps a host context into the engine's request shape
func ToClinicalRequest(hc *HostContext) *domain.ClinicalRequest {
	return &domain.ClinicalRequest{
		Topic:     hc.Condition,
		Variant:   hc.ConditionVariant,
		Procedure: hc.OrderedProcedure,
		Scenario:  hc.Patient,
	}
}

// maxSuggestions bounds how many alternatives appear on a card
const maxSuggestions = 3

// ToDisplayCard renders an evaluation result for the host environment.
// Only alternatives rated above the evaluated score become suggestions.
func ToDisplayCard(req *domain.ClinicalRequest, result *domain.EvaluationResult) *DisplayCard {
	card := &DisplayCard{
		Summary:    cardSummary(req, result),
		Detail:     cardDetail(result),
		Indicator:  result.StatusColor,
		Score:      result.Score,
		Confidence: strings.ToLower(result.Confidence.String()),
	}

	for _, w := range result.Warnings {
		prefix := strings.ToUpper(w.Severity.String())
		card.WarningLines = append(card.WarningLines, fmt.Sprintf("[%s] %s", prefix, w.Message))
	}

	for _, alt := range result.Alternatives {
		if len(card.Suggestions) >= maxSuggestions {
			break
		}
		if float64(alt.Rating) <= result.Score {
			continue
		}
		card.Suggestions = append(card.Suggestions, SuggestionLink{
			Label:     fmt.Sprintf("Consider %s (%d/9)", alt.Procedure, alt.Rating),
			Procedure: alt.Procedure,
			Rating:    alt.Rating,
		})
	}

	for _, link := range result.EvidenceLinks {
		card.EvidenceLabels = append(card.EvidenceLabels, link.Label)
	}

	return card
}

func cardSummary(req *domain.ClinicalRequest, result *domain.EvaluationResult) string {
	if result.InsufficientData() {
		return fmt.Sprintf("Insufficient reference data to rate %s for %s", req.Procedure, req.Topic)
	}
	return fmt.Sprintf("%s for %s: %s (%.1f/9)",
		req.Procedure, req.Topic, categoryPhrase(result.Category), result.Score)
}

func cardDetail(result *domain.EvaluationResult) string {
	if len(result.Factors) == 0 {
		return "No clinical factors adjusted the baseline score."
	}

	parts := make([]string, 0, len(result.Factors))
	for _, f := range result.Factors {
		parts = append(parts, fmt.Sprintf("%s (%+.1f)", f.Name, f.Contribution))
	}
	return "Factors: " + strings.Join(parts, "; ")
}

func categoryPhrase(c domain.Category) string {
	switch c {
	case domain.USUALLY_APPROPRIATE:
		return "usually appropriate"
	case domain.MAY_BE_APPROPRIATE:
		return "may be appropriate"
	case domain.USUALLY_NOT_APPROPRIATE:
		return "usually not appropriate"
	default:
		return "insufficient data"
	}
}
