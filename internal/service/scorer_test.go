package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
)

func testScorer(t *testing.T) *WeightedScorer {
	t.Helper()
	ds, err := knowledge.LoadDataset("")
	require.NoError(t, err)
	scorer, err := NewWeightedScorer(testLogger(), ds.FactorRules)
	require.NoError(t, err)
	return scorer
}

func intPtr(v int) *int { return &v }

func matchedOn(topic string) *domain.MatchResult {
	return &domain.MatchResult{
		Fact:    &domain.CriteriaFact{Topic: topic},
		Quality: domain.MATCH_EXACT,
	}
}

func TestNewWeightedScorer_UnknownPredicate(t *testing.T) {
	_, err := NewWeightedScorer(testLogger(), []knowledge.FactorRuleSpec{
		{ID: "bad-rule", Predicate: "reads_tea_leaves"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reads_tea_leaves")
}

func TestScore_AcuteUncomplicatedLowBackPain(t *testing.T) {
	scorer := testScorer(t)

	// 45-year-old, 3 days of pain, nothing tried, no red flags
	req := &domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: "MRI lumbar spine without contrast",
		Scenario: domain.ScenarioAttributes{
			Age:          45,
			DurationDays: intPtr(3),
		},
	}

	score, factors := scorer.Score(req, matchedOn("Low Back Pain"))

	// 5.0 - 2.0 - 1.5 - 1.0 + 0.0, clamped to the scale floor
	assert.Equal(t, 1.0, score)
	require.Len(t, factors, 4)

	byName := factorsByName(factors)
	assert.Equal(t, -2.0, byName["Symptom duration"].Contribution)
	assert.Equal(t, -1.5, byName["Conservative management not attempted"].Contribution)
	assert.Equal(t, -1.0, byName["No red-flag features"].Contribution)
	assert.Equal(t, 0.0, byName["Age"].Contribution)
}

func TestScore_LowBackPainWithRedFlags(t *testing.T) {
	scorer := testScorer(t)

	// 62-year-old, two weeks of pain, leg weakness, history of malignancy
	req := &domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: "MRI lumbar spine without and with contrast",
		Scenario: domain.ScenarioAttributes{
			Age:                 62,
			DurationDays:        intPtr(14),
			CancerHistory:       true,
			NeuroDeficit:        true,
			ProgressiveSymptoms: true,
		},
	}

	score, factors := scorer.Score(req, matchedOn("Low Back Pain"))

	// 5.0 + 3.0 + 2.5 + 1.0 + 0.5 = 12.0, clamped to 9
	assert.Equal(t, 9.0, score)
	require.Len(t, factors, 4)

	byName := factorsByName(factors)
	assert.Equal(t, 3.0, byName["History of malignancy"].Contribution)
	assert.Equal(t, 2.5, byName["Neurologic deficit"].Contribution)
	assert.Equal(t, 1.0, byName["Age over 50"].Contribution)
	assert.Equal(t, 0.5, byName["Progressive symptoms"].Contribution)

	// The short-duration and no-conservative-management discounts must not
	// co-fire with a red-flag presentation.
	assert.NotContains(t, byName, "Symptom duration")
	assert.NotContains(t, byName, "Conservative management not attempted")
	assert.NotContains(t, byName, "No red-flag features")
}

func TestScore_ChronicStableHeadache(t *testing.T) {
	scorer := testScorer(t)

	// 35-year-old, ten-year stable migraine pattern, prior normal imaging
	req := &domain.ClinicalRequest{
		Topic:     "Headache",
		Procedure: "CT head without contrast",
		Scenario: domain.ScenarioAttributes{
			Age:                  35,
			ChronicStablePattern: true,
			PriorNormalImaging:   true,
		},
	}

	score, factors := scorer.Score(req, matchedOn("Headache"))

	// 5.0 - 2.5 - 1.0 - 0.5 = 1.0
	assert.Equal(t, 1.0, score)
	require.Len(t, factors, 3)
}

func TestScore_ThunderclapHeadache(t *testing.T) {
	scorer := testScorer(t)

	// 52-year-old, sudden worst-ever headache with neck stiffness
	req := &domain.ClinicalRequest{
		Topic:     "Headache",
		Procedure: "CT head without contrast",
		Scenario: domain.ScenarioAttributes{
			Age:              52,
			ThunderclapOnset: true,
			NeckStiffness:    true,
		},
	}

	score, factors := scorer.Score(req, matchedOn("Headache"))

	// 5.0 + 4.0 + 1.5 + 1.0 = 11.5, clamped to 9
	assert.Equal(t, 9.0, score)
	require.Len(t, factors, 3)
}

func TestScore_SentinelWhenNoContextAtAll(t *testing.T) {
	scorer := testScorer(t)

	req := &domain.ClinicalRequest{
		Topic:     "Elbow Pain",
		Procedure: "Thermography",
		Scenario:  domain.ScenarioAttributes{Age: 30},
	}
	match := &domain.MatchResult{Quality: domain.MATCH_NONE}

	score, factors := scorer.Score(req, match)

	assert.Equal(t, 0.0, score)
	assert.Empty(t, factors)
}

func TestScore_NoMatchButRulesStillFire(t *testing.T) {
	scorer := testScorer(t)

	// Match quality NONE, yet the topic wording still scopes factor rules:
	// attributes alone keep the evaluation out of sentinel territory.
	req := &domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: "Thermography",
		Scenario: domain.ScenarioAttributes{
			Age:           60,
			CancerHistory: true,
		},
	}
	match := &domain.MatchResult{Quality: domain.MATCH_NONE}

	score, factors := scorer.Score(req, match)

	assert.NotZero(t, score)
	assert.NotEmpty(t, factors)
}

func TestScore_BaselineWhenNoRulesFire(t *testing.T) {
	scorer := testScorer(t)

	// Knee trauma has criteria facts but no factor rules in the dataset
	req := &domain.ClinicalRequest{
		Topic:     "Acute Knee Trauma",
		Procedure: "Radiograph knee",
		Scenario:  domain.ScenarioAttributes{Age: 30, ConservativeManagementTried: true},
	}

	score, factors := scorer.Score(req, matchedOn("Acute Knee Trauma"))

	assert.Equal(t, scoreBaseline, score)
	assert.Empty(t, factors)
}

func TestScore_EveryFactorCarriesCitation(t *testing.T) {
	scorer := testScorer(t)

	req := &domain.ClinicalRequest{
		Topic:     "Low Back Pain",
		Procedure: "MRI lumbar spine without contrast",
		Scenario: domain.ScenarioAttributes{
			Age:          45,
			DurationDays: intPtr(3),
		},
	}

	_, factors := scorer.Score(req, matchedOn("Low Back Pain"))

	require.NotEmpty(t, factors)
	for _, factor := range factors {
		assert.NotEmpty(t, factor.Citation.Source, "factor %s", factor.Name)
		assert.NotEmpty(t, factor.Rationale, "factor %s", factor.Name)
	}
}

func TestScore_ResolvedTopicPrefersMatchedFact(t *testing.T) {
	scorer := testScorer(t)

	// The request says "Back Pain" but the matched fact resolves it to the
	// dataset topic, bringing the low-back-pain rules into scope.
	req := &domain.ClinicalRequest{
		Topic:     "Back Pain",
		Procedure: "MRI lumbar spine without contrast",
		Scenario: domain.ScenarioAttributes{
			Age:          45,
			DurationDays: intPtr(3),
		},
	}

	score, factors := scorer.Score(req, matchedOn("Low Back Pain"))

	assert.Equal(t, 1.0, score)
	assert.NotEmpty(t, factors)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, clampScore(-3.2))
	assert.Equal(t, 1.0, clampScore(0.5))
	assert.Equal(t, 5.0, clampScore(5.0))
	assert.Equal(t, 5.5, clampScore(5.53))
	assert.Equal(t, 9.0, clampScore(12.0))
}

func factorsByName(factors []domain.Factor) map[string]domain.Factor {
	byName := make(map[string]domain.Factor, len(factors))
	for _, f := range factors {
		byName[f.Name] = f
	}
	return byName
}
