package knowledge

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
)

// Base is the in-memory appropriateness reference table. Lookups never mutate
// it; Reload swaps the whole table atomically so in-flight evaluations always
// see a single consistent snapshot. Partial updates are not supported.
type Base struct {
	logger   *logrus.Logger
	snapshot atomic.Pointer[tableSnapshot]
}

type tableSnapshot struct {
	version string
	facts   []domain.CriteriaFact
	byID    map[string]int
}

// NewBase builds a knowledge base from a parsed dataset
func NewBase(logger *logrus.Logger, ds *Dataset) *Base {
	b := &Base{logger: logger}
	b.install(ds)

	logger.WithFields(logrus.Fields{
		"dataset_version": ds.Version,
		"fact_count":      len(ds.Facts),
	}).Info("Knowledge base loaded")

	return b
}

// Reload replaces the whole table with a new dataset in one atomic swap
func (b *Base) Reload(ds *Dataset) error {
	if ds == nil || len(ds.Facts) == 0 {
		return fmt.Errorf("refusing to reload an empty dataset")
	}
	old := b.snapshot.Load()
	b.install(ds)

	b.logger.WithFields(logrus.Fields{
		"old_version": old.version,
		"new_version": ds.Version,
		"fact_count":  len(ds.Facts),
	}).Info("Knowledge base reloaded")

	return nil
}

func (b *Base) install(ds *Dataset) {
	facts := make([]domain.CriteriaFact, len(ds.Facts))
	copy(facts, ds.Facts)

	byID := make(map[string]int, len(facts))
	for i, fact := range facts {
		byID[fact.ID] = i
	}

	b.snapshot.Store(&tableSnapshot{
		version: ds.Version,
		facts:   facts,
		byID:    byID,
	})
}

// Version returns the dataset version of the current snapshot
func (b *Base) Version() string {
	return b.snapshot.Load().version
}

// All returns every fact in table order
func (b *Base) All() []domain.CriteriaFact {
	snap := b.snapshot.Load()
	out := make([]domain.CriteriaFact, len(snap.facts))
	copy(out, snap.facts)
	return out
}

// Get returns the fact with the given id
func (b *Base) Get(id string) (*domain.CriteriaFact, bool) {
	snap := b.snapshot.Load()
	i, ok := snap.byID[id]
	if !ok {
		return nil, false
	}
	fact := snap.facts[i]
	return &fact, true
}

// FindByTopic returns facts whose topic contains, or is contained by, the
// query (case-insensitive). Table order is preserved.
func (b *Base) FindByTopic(topic string) []domain.CriteriaFact {
	return b.filter(func(fact *domain.CriteriaFact) bool {
		return containsEitherWay(fact.Topic, topic)
	})
}

// FindByProcedure returns facts whose procedure contains, or is contained by,
// the query (case-insensitive). Table order is preserved.
func (b *Base) FindByProcedure(procedure string) []domain.CriteriaFact {
	return b.filter(func(fact *domain.CriteriaFact) bool {
		return containsEitherWay(fact.Procedure, procedure)
	})
}

// Topics returns the distinct topics of the current snapshot in table order
func (b *Base) Topics() []string {
	snap := b.snapshot.Load()
	seen := make(map[string]bool)
	topics := make([]string, 0)
	for _, fact := range snap.facts {
		if !seen[fact.Topic] {
			seen[fact.Topic] = true
			topics = append(topics, fact.Topic)
		}
	}
	return topics
}

func (b *Base) filter(keep func(*domain.CriteriaFact) bool) []domain.CriteriaFact {
	snap := b.snapshot.Load()
	out := make([]domain.CriteriaFact, 0)
	for i := range snap.facts {
		if keep(&snap.facts[i]) {
			out = append(out, snap.facts[i])
		}
	}
	return out
}

func containsEitherWay(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
