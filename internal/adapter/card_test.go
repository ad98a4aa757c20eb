package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

func TestToClinicalRequest(t *testing.T) {
	hc := &HostContext{
		Condition:        "Low Back Pain",
		ConditionVariant: "Acute, uncomplicated",
		OrderedProcedure: "MRI lumbar spine without contrast",
		Patient: domain.ScenarioAttributes{
			Age: 45,
			Sex: domain.SEX_MALE,
		},
	}

	req := ToClinicalRequest(hc)

	assert.Equal(t, "Low Back Pain", req.Topic)
	assert.Equal(t, "Acute, uncomplicated", req.Variant)
	assert.Equal(t, "MRI lumbar spine without contrast", req.Procedure)
	assert.Equal(t, 45, req.Scenario.Age)
}

func sampleRequest() *domain.ClinicalRequest {
	return &domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: "MRI lumbar spine without contrast",
	}
}

func TestToDisplayCard_Summary(t *testing.T) {
	result := &domain.EvaluationResult{
		Score:       2.0,
		Category:    domain.USUALLY_NOT_APPROPRIATE,
		StatusColor: domain.RED,
		Confidence:  domain.HIGH,
	}

	card := ToDisplayCard(sampleRequest(), result)

	assert.Contains(t, card.Summary, "MRI lumbar spine without contrast")
	assert.Contains(t, card.Summary, "usually not appropriate")
	assert.Equal(t, domain.RED, card.Indicator)
	assert.Equal(t, 2.0, card.Score)
	assert.Equal(t, "high", card.Confidence)
}

func TestToDisplayCard_InsufficientData(t *testing.T) {
	result := &domain.EvaluationResult{
		Score:       0,
		Category:    domain.INSUFFICIENT_DATA,
		StatusColor: domain.GRAY,
		Confidence:  domain.LOW,
	}

	card := ToDisplayCard(sampleRequest(), result)

	assert.Contains(t, card.Summary, "Insufficient reference data")
	assert.Equal(t, domain.GRAY, card.Indicator)
}

func TestToDisplayCard_SuggestionsOnlyAboveScore(t *testing.T) {
	result := &domain.EvaluationResult{
		Score:       2.0,
		Category:    domain.USUALLY_NOT_APPROPRIATE,
		StatusColor: domain.RED,
		Alternatives: []domain.Alternative{
			{Procedure: "Radiograph lumbar spine", Rating: 3},
			{Procedure: "CT lumbar spine without contrast", Rating: 2},
			{Procedure: "Watchful waiting protocol", Rating: 1},
		},
	}

	card := ToDisplayCard(sampleRequest(), result)

	require.Len(t, card.Suggestions, 1)
	assert.Equal(t, "Radiograph lumbar spine", card.Suggestions[0].Procedure)
	assert.Contains(t, card.Suggestions[0].Label, "3/9")
}

func TestToDisplayCard_SuggestionsCapped(t *testing.T) {
	result := &domain.EvaluationResult{
		Score: 1.0,
		Alternatives: []domain.Alternative{
			{Procedure: "A", Rating: 9},
			{Procedure: "B", Rating: 8},
			{Procedure: "C", Rating: 7},
			{Procedure: "D", Rating: 6},
		},
	}

	card := ToDisplayCard(sampleRequest(), result)
	assert.Len(t, card.Suggestions, maxSuggestions)
}

func TestToDisplayCard_WarningLinesCarrySeverity(t *testing.T) {
	result := &domain.EvaluationResult{
		Score: 5.0,
		Warnings: []domain.Warning{
			{Kind: domain.WARN_PREGNANCY_RADIATION, Severity: domain.SEVERITY_CRITICAL, Message: "Patient is pregnant"},
			{Kind: domain.WARN_METFORMIN, Severity: domain.SEVERITY_INFO, Message: "Metformin noted"},
		},
	}

	card := ToDisplayCard(sampleRequest(), result)

	require.Len(t, card.WarningLines, 2)
	assert.Contains(t, card.WarningLines[0], "[CRITICAL]")
	assert.Contains(t, card.WarningLines[1], "[INFO]")
}

func TestToDisplayCard_FactorDetail(t *testing.T) {
	result := &domain.EvaluationResult{
		Score: 1.0,
		Factors: []domain.Factor{
			{Name: "Symptom duration", Contribution: -2.0},
			{Name: "Age", Contribution: 0.0},
		},
	}

	card := ToDisplayCard(sampleRequest(), result)

	assert.Contains(t, card.Detail, "Symptom duration (-2.0)")
	assert.Contains(t, card.Detail, "Age (+0.0)")
}

func TestToDisplayCard_NoFactors(t *testing.T) {
	card := ToDisplayCard(sampleRequest(), &domain.EvaluationResult{Score: 5.0})
	assert.Contains(t, card.Detail, "No clinical factors")
}
