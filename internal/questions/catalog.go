package questions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

//go:embed catalog.json
var embeddedCatalog []byte

// BossSize is the number of questions in the boss encounter.
const BossSize = 3

// Catalog is the loaded question bank. It is read-only after Parse and can be
// shared across concurrent runs; per-run state lives in Session.
type Catalog struct {
	questions []Question
	boss      []Question
	byDomain  map[Domain][]Question
	byID      map[string]Question
}

type catalogFile struct {
	Questions []Question `json:"questions"`
	Boss      []Question `json:"boss"`
}

// Stats summarises the catalog contents.
type Stats struct {
	Total         int            `json:"total"`
	ByDomain      map[Domain]int `json:"by_domain"`
	BossQuestions int            `json:"boss_questions"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("questions: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads a catalog from a JSON file with the same layout as the
// embedded one.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questions: read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("questions: decode catalog: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, fmt.Errorf("questions: catalog has no questions")
	}

	c := &Catalog{
		questions: f.Questions,
		boss:      f.Boss,
		byDomain:  make(map[Domain][]Question),
		byID:      make(map[string]Question),
	}
	for _, q := range append(append([]Question(nil), f.Questions...), f.Boss...) {
		if err := q.validate(); err != nil {
			return nil, fmt.Errorf("questions: invalid entry: %w", err)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("questions: duplicate id %q", q.ID)
		}
		c.byID[q.ID] = q
	}
	for _, q := range f.Questions {
		c.byDomain[q.Domain] = append(c.byDomain[q.Domain], q)
	}
	if len(c.Boss()) < BossSize {
		return nil, fmt.Errorf("questions: boss pool needs %d questions from distinct domains", BossSize)
	}
	return c, nil
}

// Questions returns the regular (non-boss) questions in catalog order
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// ByDomain returns the regular questions of one domain
func (c *Catalog) ByDomain(d Domain) []Question {
	return append([]Question(nil), c.byDomain[d]...)
}

// Lookup finds a regular or boss question by id.
func (c *Catalog) Lookup(id string) (Question, error) {
	q, ok := c.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	return q, nil
}

// Boss returns the boss encounter: the first boss question of each of the
// first three distinct domains, in catalog order.
func (c *Catalog) Boss() []Question {
	picked := make([]Question, 0, BossSize)
	seen := make(map[Domain]bool)
	for _, q := range c.boss {
		if seen[q.Domain] {
			continue
		}
		seen[q.Domain] = true
		picked = append(picked, q)
		if len(picked) == BossSize {
			break
		}
	}
	return picked
}

// Stats counts questions per domain
func (c *Catalog) Stats() Stats {
	s := Stats{
		Total:         len(c.questions),
		ByDomain:      make(map[Domain]int, len(Domains)),
		BossQuestions: len(c.boss),
	}
	for _, d := range Domains {
		s.ByDomain[d] = len(c.byDomain[d])
	}
	return s
}
