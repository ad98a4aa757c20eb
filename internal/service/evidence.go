package service

import (
	"fmt"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// CitationLinker attaches structured citation records to a result: one link
// for the matched (or closest) fact, one per distinct factor citation.
type CitationLinker struct{}

// NewCitationLinker creates a linker
func NewCitationLinker() *CitationLinker {
	return &CitationLinker{}
}

// Link builds the evidence links for a result. Duplicate citations are
// collapsed; factor order is preserved.
func (l *CitationLinker) Link(match *domain.MatchResult, factors []domain.Factor) []domain.EvidenceLink {
	links := make([]domain.EvidenceLink, 0, len(factors)+1)
	seen := make(map[string]bool)

	if fact := matchedOrClosest(match); fact != nil {
		label := fmt.Sprintf("Criteria: %s - %s", fact.Topic, fact.Procedure)
		citation := domain.Citation{Source: fact.Source, Reference: fact.ID}
		links = append(links, domain.EvidenceLink{Label: label, Citation: citation})
		seen[citationKey(citation)] = true
	}

	for _, factor := range factors {
		key := citationKey(factor.Citation)
		if seen[key] {
			continue
		}
		seen[key] = true
		links = append(links, domain.EvidenceLink{Label: factor.Name, Citation: factor.Citation})
	}

	return links
}

func matchedOrClosest(match *domain.MatchResult) *domain.CriteriaFact {
	if match.Fact != nil {
		return match.Fact
	}
	return match.ClosestFact
}

func citationKey(c domain.Citation) string {
	return c.Source + "|" + c.Reference
}
