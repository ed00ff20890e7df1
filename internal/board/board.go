package board

import (
	"sync"

	"github.com/MJE43/cognitive-gauntlet/internal/engine"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// domainSeedOffset separates the category stream from the void stream on
// stage boards.
const domainSeedOffset = 1000

// Square is one cell of a generated board. Start, goal and void squares have
// zero tier and difficulty.
type Square struct {
	Coord      Coordinate `json:"coordinate"`
	Category   Category   `json:"category"`
	Tier       int        `json:"tier"`
	Difficulty int        `json:"difficulty"`
}

// Board is a generated 8x8 layout. Everything except the question side-table
// is fixed at construction.
type Board struct {
	seed    uint32
	pattern Pattern
	squares [Size][Size]Square
	voids   VoidSet
	optimal int

	mu       sync.Mutex
	assigned map[Coordinate]questions.Question
}

// QuestionPicker hands out questions for a domain. *questions.Session
// implements it.
type QuestionPicker interface {
	Pick(d questions.Domain) questions.Question
}

// Generate builds a single-stage board: scattered voids, with voids and
// categories drawn from one stream.
func Generate(seed uint32) *Board {
	rng := engine.NewMulberry32(seed)
	voids := generateVoids(Scattered, rng)
	return assemble(seed, Scattered, voids, rng)
}

// GenerateStage builds a gauntlet stage board. Voids come from a stream seeded
// with seed and categories from a second stream seeded with seed+1000.
func GenerateStage(seed uint32, p Pattern) *Board {
	voids := generateVoids(p, engine.NewMulberry32(seed))
	return assemble(seed, p, voids, engine.NewMulberry32(seed+domainSeedOffset))
}

func assemble(seed uint32, p Pattern, voids VoidSet, rng *engine.Mulberry32) *Board {
	b := &Board{
		seed:     seed,
		pattern:  p,
		voids:    voids,
		assigned: make(map[Coordinate]questions.Question),
	}
	for _, c := range All() {
		sq := Square{Coord: c}
		switch {
		case c == Start:
			sq.Category = StartCategory
		case c == Goal:
			sq.Category = GoalCategory
		case voids.Has(c):
			sq.Category = VoidCategory
		default:
			d := questions.Domains[rng.Intn(len(questions.Domains))]
			sq.Category = DomainCategory(d)
			sq.Tier = questions.MaxTier
			sq.Difficulty = 8 + rng.Intn(3)
		}
		b.squares[c.Col][c.Row-1] = sq
	}
	b.optimal = ShortestPath(Start, Goal, voids)
	return b
}

// Seed returns the seed the board was generated from
func (b *Board) Seed() uint32 { return b.seed }

// Pattern returns the void layout strategy used
func (b *Board) Pattern() Pattern { return b.pattern }

// Square returns the cell at c. Off-board coordinates yield the zero Square.
func (b *Board) Square(c Coordinate) Square {
	if !c.Valid() {
		return Square{}
	}
	return b.squares[c.Col][c.Row-1]
}

// Squares returns every cell in column-major order
func (b *Board) Squares() []Square {
	out := make([]Square, 0, Size*Size)
	for _, c := range All() {
		out = append(out, b.Square(c))
	}
	return out
}

// IsVoid reports whether c is impassable
func (b *Board) IsVoid(c Coordinate) bool { return b.voids.Has(c) }

// Voids returns a copy of the void set
func (b *Board) Voids() VoidSet { return b.voids.clone() }

// VoidList returns the voids in column-major order
func (b *Board) VoidList() []Coordinate {
	var out []Coordinate
	for _, c := range All() {
		if b.voids.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// OptimalDistance is the shortest-path length from Start to Goal.
func (b *Board) OptimalDistance() int { return b.optimal }

// DistanceToGoal is the shortest-path length from c to Goal.
func (b *Board) DistanceToGoal(c Coordinate) int {
	return ShortestPath(c, Goal, b.voids)
}

// QuestionFor returns the question assigned to the playable square at c,
// drawing it from pick the first time the square is visited. Later calls
// return the same question. ok is false for start, goal and void squares.
func (b *Board) QuestionFor(c Coordinate, pick QuestionPicker) (q questions.Question, ok bool) {
	d, isDomain := b.Square(c).Category.Domain()
	if !isDomain {
		return questions.Question{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.assigned[c]; ok {
		return q, true
	}
	q = pick.Pick(d)
	b.assigned[c] = q
	return q, true
}

// AssignedQuestions returns how many squares have a cached question
func (b *Board) AssignedQuestions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.assigned)
}
