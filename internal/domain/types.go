package domain

// Core Enums and Types

// Category represents the three-way appropriateness classification
type Category string

const (
	USUALLY_APPROPRIATE     Category = "USUALLY_APPROPRIATE"
	MAY_BE_APPROPRIATE      Category = "MAY_BE_APPROPRIATE"
	USUALLY_NOT_APPROPRIATE Category = "USUALLY_NOT_APPROPRIATE"
	INSUFFICIENT_DATA       Category = "INSUFFICIENT_DATA"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// StatusColor is the three-color signal derived from a category
type StatusColor string

const (
	GREEN  StatusColor = "GREEN"
	YELLOW StatusColor = "YELLOW"
	RED    StatusColor = "RED"
	GRAY   StatusColor = "GRAY"
)

// String returns the string representation of the status color
func (s StatusColor) String() string {
	return string(s)
}

// MatchQuality represents how directly the knowledge base covers a request
type MatchQuality string

const (
	MATCH_EXACT   MatchQuality = "EXACT"
	MATCH_SIMILAR MatchQuality = "SIMILAR"
	MATCH_GENERAL MatchQuality = "GENERAL"
	MATCH_NONE    MatchQuality = "NONE"
)

// String returns the string representation of the match quality
func (m MatchQuality) String() string {
	return string(m)
}

// ConfidenceLevel represents the confidence in the evaluation
type ConfidenceLevel string

const (
	HIGH   ConfidenceLevel = "HIGH"
	MEDIUM ConfidenceLevel = "MEDIUM"
	LOW    ConfidenceLevel = "LOW"
)

// String returns the string representation of the confidence level
func (c ConfidenceLevel) String() string {
	return string(c)
}

// FactorDirection indicates whether a factor supports or opposes the procedure
type FactorDirection string

const (
	SUPPORTS FactorDirection = "SUPPORTS"
	OPPOSES  FactorDirection = "OPPOSES"
	NEUTRAL  FactorDirection = "NEUTRAL"
)

// Severity represents the severity of a safety warning
type Severity string

const (
	SEVERITY_INFO     Severity = "INFO"
	SEVERITY_WARNING  Severity = "WARNING"
	SEVERITY_CRITICAL Severity = "CRITICAL"
)

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// WarningKind identifies which safety rule produced a warning
type WarningKind string

const (
	WARN_PREGNANCY_RADIATION WarningKind = "PREGNANCY_RADIATION"
	WARN_PREGNANCY_UNKNOWN   WarningKind = "PREGNANCY_UNKNOWN"
	WARN_CONTRAST_ALLERGY    WarningKind = "CONTRAST_ALLERGY"
	WARN_RENAL_SEVERE        WarningKind = "RENAL_IMPAIRMENT_SEVERE"
	WARN_RENAL_MODERATE      WarningKind = "RENAL_IMPAIRMENT_MODERATE"
	WARN_METFORMIN           WarningKind = "METFORMIN"
	WARN_ANTICOAGULATION     WarningKind = "ANTICOAGULATION"
	WARN_RECENT_IMAGING      WarningKind = "RECENT_IMAGING"
)

// Comparison expresses a relative cost or radiation comparison between procedures
type Comparison string

const (
	COMPARE_NONE    Comparison = "NONE"
	COMPARE_LOWER   Comparison = "LOWER"
	COMPARE_SIMILAR Comparison = "SIMILAR"
	COMPARE_HIGHER  Comparison = "HIGHER"
)

// Sex represents patient sex as recorded in the request
type Sex string

const (
	SEX_FEMALE  Sex = "FEMALE"
	SEX_MALE    Sex = "MALE"
	SEX_OTHER   Sex = "OTHER"
	SEX_UNKNOWN Sex = "UNKNOWN"
)

// PregnancyStatus is a tri-state flag. The safety rules treat an unrecorded
// status the same as an explicit UNKNOWN.
type PregnancyStatus string

const (
	PREGNANCY_YES     PregnancyStatus = "YES"
	PREGNANCY_NO      PregnancyStatus = "NO"
	PREGNANCY_UNKNOWN PregnancyStatus = "UNKNOWN"
)

// RadiationLevel is the ordinal exposure category of a procedure.
// Ordering matters: it drives the relative radiation comparison of alternatives.
type RadiationLevel int

const (
	RADIATION_NONE RadiationLevel = iota
	RADIATION_MINIMAL
	RADIATION_LOW
	RADIATION_MEDIUM
	RADIATION_HIGH
	RADIATION_VERY_HIGH
)

var radiationLevelNames = map[RadiationLevel]string{
	RADIATION_NONE:      "none",
	RADIATION_MINIMAL:   "minimal",
	RADIATION_LOW:       "low",
	RADIATION_MEDIUM:    "medium",
	RADIATION_HIGH:      "high",
	RADIATION_VERY_HIGH: "very-high",
}

// String returns the dataset spelling of the radiation level
func (r RadiationLevel) String() string {
	if name, ok := radiationLevelNames[r]; ok {
		return name
	}
	return "none"
}

// ParseRadiationLevel converts a dataset string into its ordinal level
func ParseRadiationLevel(s string) (RadiationLevel, bool) {
	for level, name := range radiationLevelNames {
		if name == s {
			return level, true
		}
	}
	return RADIATION_NONE, false
}

// MarshalJSON encodes the level as its dataset string
func (r RadiationLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes the level from its dataset string
func (r *RadiationLevel) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	level, ok := ParseRadiationLevel(s)
	if !ok {
		return &ValidationError{Field: "radiation_level", Message: "unknown radiation level", Value: s}
	}
	*r = level
	return nil
}
