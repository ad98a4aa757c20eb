// Package knowledge holds the appropriateness reference table: a versioned,
// data-driven dataset of criteria facts and factor-rule weights, and the
// immutable in-memory base the engine queries.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

//go:embed criteria.yaml
var embeddedDataset []byte

// FactorRuleSpec is one scoring rule entry from the dataset. The predicate key
// selects a named evaluator implemented in the scorer; weights, scoping,
// rationale and citation are data.
type FactorRuleSpec struct {
	ID           string                 `yaml:"id"`
	Name         string                 `yaml:"name"`
	Topics       []string               `yaml:"topics"`
	Predicate    string                 `yaml:"predicate"`
	Params       map[string]float64     `yaml:"params"`
	Contribution float64                `yaml:"contribution"`
	Direction    domain.FactorDirection `yaml:"direction"`
	Rationale    string                 `yaml:"rationale"`
	Citation     domain.Citation        `yaml:"citation"`
}

// Dataset is the parsed reference dataset
type Dataset struct {
	Version     string
	Facts       []domain.CriteriaFact
	FactorRules []FactorRuleSpec
}

// rawFact mirrors the YAML fact entry; radiation level and review date are
// strings on the wire and validated during conversion.
type rawFact struct {
	ID             string `yaml:"id"`
	Topic          string `yaml:"topic"`
	Variant        string `yaml:"variant"`
	Procedure      string `yaml:"procedure"`
	Rating         int    `yaml:"rating"`
	RadiationLevel string `yaml:"radiation_level"`
	Source         string `yaml:"source"`
	LastReviewed   string `yaml:"last_reviewed"`
}

type rawDataset struct {
	Version     string           `yaml:"version"`
	Facts       []rawFact        `yaml:"facts"`
	FactorRules []FactorRuleSpec `yaml:"factor_rules"`
}

// LoadDataset parses the dataset at path, or the embedded reference dataset
// when path is empty.
func LoadDataset(path string) (*Dataset, error) {
	data := embeddedDataset
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
		}
	}
	return parseDataset(data)
}

func parseDataset(data []byte) (*Dataset, error) {
	var raw rawDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if raw.Version == "" {
		return nil, fmt.Errorf("dataset is missing a version")
	}
	if len(raw.Facts) == 0 {
		return nil, fmt.Errorf("dataset %s contains no facts", raw.Version)
	}

	ds := &Dataset{
		Version:     raw.Version,
		Facts:       make([]domain.CriteriaFact, 0, len(raw.Facts)),
		FactorRules: raw.FactorRules,
	}

	seen := make(map[string]bool, len(raw.Facts))
	for i, rf := range raw.Facts {
		fact, err := convertFact(rf)
		if err != nil {
			return nil, fmt.Errorf("invalid fact at index %d: %w", i, err)
		}
		if seen[fact.ID] {
			return nil, fmt.Errorf("duplicate fact id %s", fact.ID)
		}
		seen[fact.ID] = true
		ds.Facts = append(ds.Facts, fact)
	}

	for i, rule := range ds.FactorRules {
		if rule.ID == "" || rule.Predicate == "" {
			return nil, fmt.Errorf("factor rule at index %d is missing id or predicate", i)
		}
		if rule.Citation.Source == "" {
			return nil, fmt.Errorf("factor rule %s has no citation source", rule.ID)
		}
	}

	return ds, nil
}

func convertFact(rf rawFact) (domain.CriteriaFact, error) {
	var fact domain.CriteriaFact

	if rf.ID == "" {
		return fact, fmt.Errorf("missing id")
	}
	if rf.Topic == "" || rf.Procedure == "" {
		return fact, fmt.Errorf("fact %s is missing topic or procedure", rf.ID)
	}
	if rf.Rating < 1 || rf.Rating > 9 {
		return fact, fmt.Errorf("fact %s has rating %d outside [1,9]", rf.ID, rf.Rating)
	}
	if rf.Source == "" {
		return fact, fmt.Errorf("fact %s has no source citation", rf.ID)
	}

	level, ok := domain.ParseRadiationLevel(rf.RadiationLevel)
	if !ok {
		return fact, fmt.Errorf("fact %s has unknown radiation level %q", rf.ID, rf.RadiationLevel)
	}

	reviewed, err := time.Parse("2006-01-02", rf.LastReviewed)
	if err != nil {
		return fact, fmt.Errorf("fact %s has invalid last_reviewed date: %w", rf.ID, err)
	}

	return domain.CriteriaFact{
		ID:             rf.ID,
		Topic:          rf.Topic,
		Variant:        rf.Variant,
		Procedure:      rf.Procedure,
		Rating:         rf.Rating,
		RadiationLevel: level,
		Source:         rf.Source,
		LastReviewed:   reviewed,
	}, nil
}
