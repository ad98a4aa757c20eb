package domain

// CriteriaSource is the read-only view of the appropriateness reference table
type CriteriaSource interface {
	All() []CriteriaFact
	FindByTopic(topic string) []CriteriaFact
	FindByProcedure(procedure string) []CriteriaFact
	Get(id string) (*CriteriaFact, bool)
	Version() string
}

// Matcher resolves a request to the best-fitting criteria fact
type Matcher interface {
	Match(topic, variant, procedure string) MatchResult
}

// FactorScorer computes the weighted appropriateness score for a scenario
type FactorScorer interface {
	Score(req *ClinicalRequest, match *MatchResult) (float64, []Factor)
}

// Classifier maps a score and match quality to category, color and confidence
type Classifier interface {
	Classify(score float64, match *MatchResult) (Category, StatusColor, ConfidenceLevel)
}

// AlternativeRanker returns competing procedures for a topic ordered by rating
type AlternativeRanker interface {
	Rank(topic, requestedProcedure string) []Alternative
}

// WarningDeriver cross-checks scenario attributes against the proposed procedure
type WarningDeriver interface {
	Derive(req *ClinicalRequest) []Warning
}

// EvidenceLinker attaches structured citations to an evaluation result
type EvidenceLinker interface {
	Link(match *MatchResult, factors []Factor) []EvidenceLink
}

// Evaluator is the sole entry point of the engine: one request, one result.
// It is total for well-formed input and safe for concurrent use.
type Evaluator interface {
	Evaluate(req *ClinicalRequest) *EvaluationResult
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetKnowledgeConfig() *KnowledgeConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
