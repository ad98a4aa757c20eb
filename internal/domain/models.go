package domain

import (
	"time"
)

// Core Data Models

// CriteriaFact is one appropriateness fact from the reference table:
// (topic, variant, procedure) -> rating, radiation level, citation.
// Facts are immutable for the process lifetime; the whole table is replaced
// atomically on reload.
type CriteriaFact struct {
	ID             string         `json:"id" yaml:"id"`
	Topic          string         `json:"topic" yaml:"topic"`
	Variant        string         `json:"variant" yaml:"variant"`
	Procedure      string         `json:"procedure" yaml:"procedure"`
	Rating         int            `json:"rating" yaml:"rating"`
	RadiationLevel RadiationLevel `json:"radiation_level" yaml:"-"`
	Source         string         `json:"source" yaml:"source"`
	LastReviewed   time.Time      `json:"last_reviewed" yaml:"-"`
}

// PriorImagingRecord describes one prior study of a body region
type PriorImagingRecord struct {
	Region  string `json:"region" yaml:"region"`
	DaysAgo int    `json:"days_ago" yaml:"days_ago"`
}

// ScenarioAttributes carries the clinical context of a single request.
// All fields are read-only to the engine; optional values use pointers so
// "not supplied" is distinguishable from a zero value.
type ScenarioAttributes struct {
	Age                         int                  `json:"age"`
	Sex                         Sex                  `json:"sex"`
	DurationDays                *int                 `json:"duration_days,omitempty"`
	RedFlags                    bool                 `json:"red_flags"`
	ConservativeManagementTried bool                 `json:"conservative_management_tried"`
	CancerHistory               bool                 `json:"cancer_history"`
	NeuroDeficit                bool                 `json:"neuro_deficit"`
	ProgressiveSymptoms         bool                 `json:"progressive_symptoms"`
	ChronicStablePattern        bool                 `json:"chronic_stable_pattern"`
	PriorNormalImaging          bool                 `json:"prior_normal_imaging"`
	ThunderclapOnset            bool                 `json:"thunderclap_onset"`
	NeckStiffness               bool                 `json:"neck_stiffness"`
	PregnancyStatus             PregnancyStatus      `json:"pregnancy_status,omitempty"`
	ContrastAllergy             bool                 `json:"contrast_allergy"`
	EGFR                        *float64             `json:"egfr,omitempty"`
	RenalImpairment             bool                 `json:"renal_impairment"`
	OnMetformin                 bool                 `json:"on_metformin"`
	OnAnticoagulation           bool                 `json:"on_anticoagulation"`
	PriorImaging                []PriorImagingRecord `json:"prior_imaging,omitempty"`
}

// ClinicalRequest is one evaluation request. It is owned by the caller and
// never mutated by the engine.
type ClinicalRequest struct {
	Topic     string             `json:"topic"`
	Variant   string             `json:"variant,omitempty"`
	Procedure string             `json:"procedure"`
	Scenario  ScenarioAttributes `json:"scenario"`
}

// BodyRegion derives the anatomic region of the requested procedure from the
// topic, used to compare against prior imaging history.
func (r *ClinicalRequest) BodyRegion() string {
	return r.Topic
}

// MatchResult is the outcome of similarity matching against the criteria table.
// Fact is non-nil only for EXACT and high-confidence SIMILAR matches.
type MatchResult struct {
	Fact            *CriteriaFact `json:"fact,omitempty"`
	Quality         MatchQuality  `json:"quality"`
	SimilarityScore float64       `json:"similarity_score"`
	ClosestFact     *CriteriaFact `json:"closest_fact,omitempty"`
}

// Matched reports whether a fact was confidently matched
func (m *MatchResult) Matched() bool {
	return m.Fact != nil
}

// Citation is a structured reference backing a factor or fact
type Citation struct {
	Source    string `json:"source" yaml:"source"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Factor is one scoring rule's contribution to the final score. Every factor
// carries a rationale and a non-empty citation, including zero-contribution
// informational factors.
type Factor struct {
	Name          string          `json:"name"`
	ObservedValue string          `json:"observed_value"`
	Contribution  float64         `json:"contribution"`
	Direction     FactorDirection `json:"direction"`
	Rationale     string          `json:"rationale"`
	Citation      Citation        `json:"citation"`
}

// Alternative is a competing procedure for the same topic, with relative
// cost and radiation comparisons against the requested procedure.
type Alternative struct {
	Procedure           string     `json:"procedure"`
	Rating              int        `json:"rating"`
	Rationale           string     `json:"rationale"`
	CostComparison      Comparison `json:"cost_comparison"`
	RadiationComparison Comparison `json:"radiation_comparison"`
}

// Warning is one triggered safety rule
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

// EvidenceLink ties a result element back to its source citation
type EvidenceLink struct {
	Label    string   `json:"label"`
	Citation Citation `json:"citation"`
}

// EvaluationResult is the complete, immutable answer for one request.
// Score 0 is the "insufficient data" sentinel, distinct from a real rating of 1.
type EvaluationResult struct {
	Score         float64         `json:"score"`
	Category      Category        `json:"category"`
	StatusColor   StatusColor     `json:"status_color"`
	MatchResult   MatchResult     `json:"match_result"`
	Factors       []Factor        `json:"factors"`
	Alternatives  []Alternative   `json:"alternatives"`
	Warnings      []Warning       `json:"warnings"`
	EvidenceLinks []EvidenceLink  `json:"evidence_links"`
	Confidence    ConfidenceLevel `json:"confidence"`
	EvaluatedAt   time.Time       `json:"evaluated_at"`
}

// InsufficientData reports whether the result carries the sentinel score
func (r *EvaluationResult) InsufficientData() bool {
	return r.Score == 0
}
