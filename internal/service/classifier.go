package service

import (
	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// Category boundaries of the 1-9 appropriateness scale
const (
	usuallyAppropriateFloor = 7.0
	mayBeAppropriateFloor   = 4.0
)

// ScoreClassifier maps a score to its category and color, and derives
// confidence from the match quality tier. All three mappings are pure.
type ScoreClassifier struct{}

// NewScoreClassifier creates a classifier
func NewScoreClassifier() *ScoreClassifier {
	return &ScoreClassifier{}
}

// Classify maps score and match quality to (category, color, confidence).
// Score 0 is the insufficient-data sentinel and classifies as such.
func (c *ScoreClassifier) Classify(score float64, match *domain.MatchResult) (domain.Category, domain.StatusColor, domain.ConfidenceLevel) {
	category := CategoryForScore(score)
	return category, ColorForCategory(category), ConfidenceForMatch(match)
}

// CategoryForScore is the fixed-boundary category mapping: 7-9 usually
// appropriate, 4-6 may be appropriate, 1-3 usually not appropriate.
func CategoryForScore(score float64) domain.Category {
	switch {
	case score == 0:
		return domain.INSUFFICIENT_DATA
	case score >= usuallyAppropriateFloor:
		return domain.USUALLY_APPROPRIATE
	case score >= mayBeAppropriateFloor:
		return domain.MAY_BE_APPROPRIATE
	default:
		return domain.USUALLY_NOT_APPROPRIATE
	}
}

// ColorForCategory is a pure function of the category
func ColorForCategory(category domain.Category) domain.StatusColor {
	switch category {
	case domain.USUALLY_APPROPRIATE:
		return domain.GREEN
	case domain.MAY_BE_APPROPRIATE:
		return domain.YELLOW
	case domain.USUALLY_NOT_APPROPRIATE:
		return domain.RED
	default:
		return domain.GRAY
	}
}

// ConfidenceForMatch derives confidence from how directly the criteria table
// covers the request, not from the score itself.
func ConfidenceForMatch(match *domain.MatchResult) domain.ConfidenceLevel {
	switch match.Quality {
	case domain.MATCH_EXACT:
		return domain.HIGH
	case domain.MATCH_SIMILAR:
		if match.Fact != nil {
			return domain.HIGH
		}
		return domain.MEDIUM
	case domain.MATCH_GENERAL:
		return domain.MEDIUM
	default:
		return domain.LOW
	}
}
