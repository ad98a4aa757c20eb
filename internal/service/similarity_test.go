package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStringSimilarity_ExactEquality(t *testing.T) {
	score := stringSimilarity(defaultStrategies, "MRI lumbar spine", "mri lumbar spine")
	assert.Equal(t, 1.0, score)
}

func TestStringSimilarity_Containment(t *testing.T) {
	score := stringSimilarity(defaultStrategies, "MRI lumbar spine", "MRI lumbar spine without contrast")
	assert.Equal(t, 0.8, score)
}

func TestStringSimilarity_TokenOverlap(t *testing.T) {
	// Shares "lumbar" and "spine" out of 4 tokens on the longer side
	score := stringSimilarity(defaultStrategies, "CT lumbar spine", "Radiograph of lumbar spine")
	assert.InDelta(t, 0.5, score, 0.001)
}

func TestStringSimilarity_TokenOverlapCapped(t *testing.T) {
	// 5 of 6 shared tokens would score 0.833; the cap keeps it below containment
	score := stringSimilarity(defaultStrategies, "mri head and neck with contrast x", "mri head and neck with contrast y")
	assert.Equal(t, 0.7, score)
}

func TestStringSimilarity_CharacterOverlapFallback(t *testing.T) {
	// No shared tokens, so the positional character fallback applies
	score := stringSimilarity(defaultStrategies, "CTA", "CTX")
	assert.InDelta(t, 2.0/3.0, score, 0.001)
}

func TestStringSimilarity_OneSideEmpty(t *testing.T) {
	assert.Equal(t, 0.0, stringSimilarity(defaultStrategies, "", "MRI head"))
	assert.Equal(t, 0.0, stringSimilarity(defaultStrategies, "MRI head", ""))
}

func TestStringSimilarity_BothEmpty(t *testing.T) {
	// Two empty strings are equal
	assert.Equal(t, 1.0, stringSimilarity(defaultStrategies, "", ""))
}

func TestStringSimilarity_TierOrdering(t *testing.T) {
	target := "MRI lumbar spine without contrast"

	exact := stringSimilarity(defaultStrategies, target, target)
	contained := stringSimilarity(defaultStrategies, "MRI lumbar spine", target)
	tokens := stringSimilarity(defaultStrategies, "CT lumbar spine imaging study", target)
	chars := stringSimilarity(defaultStrategies, "zzz", target)

	assert.Greater(t, exact, contained)
	assert.Greater(t, contained, tokens)
	assert.GreaterOrEqual(t, tokens, chars)
}
