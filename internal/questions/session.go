package questions

import (
	"github.com/MJE43/cognitive-gauntlet/internal/engine"
)

// Session tracks which questions one run has already been asked. Each run
// owns its own session, so concurrent runs never share the no-repeat set.
type Session struct {
	catalog *Catalog
	used    map[string]struct{}
	rng     *engine.Mulberry32
}

// NewSession starts a no-repeat session over c. Draws come from a Mulberry32
// stream seeded with seed so a run is reproducible end to end.
func NewSession(c *Catalog, seed uint32) *Session {
	return &Session{
		catalog: c,
		used:    make(map[string]struct{}),
		rng:     engine.NewMulberry32(seed),
	}
}

// Pick draws a question for domain d. Unused questions are preferred; once
// the domain is exhausted it repeats uniformly over the whole domain pool, and
// a domain with no questions at all falls back to the full catalog.
func (s *Session) Pick(d Domain) Question {
	pool := s.catalog.byDomain[d]
	if len(pool) == 0 {
		all := s.catalog.questions
		return all[s.rng.Intn(len(all))]
	}

	available := make([]Question, 0, len(pool))
	for _, q := range pool {
		if _, seen := s.used[q.ID]; !seen {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		return pool[s.rng.Intn(len(pool))]
	}

	q := available[s.rng.Intn(len(available))]
	s.used[q.ID] = struct{}{}
	return q
}

// Used returns how many distinct questions have been handed out
func (s *Session) Used() int { return len(s.used) }

// Boss returns the boss encounter questions
func (s *Session) Boss() []Question { return s.catalog.Boss() }

// Catalog returns the catalog the session draws from
func (s *Session) Catalog() *Catalog { return s.catalog }
