package board

import (
	"fmt"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/engine"
)

// Pattern names a void layout strategy.
type Pattern string

const (
	Scattered Pattern = "scattered"
	Corridor  Pattern = "corridor"
	Maze      Pattern = "maze"
	Fortress  Pattern = "fortress"
)

// Patterns lists every layout strategy.
var Patterns = []Pattern{Scattered, Corridor, Maze, Fortress}

// ParsePattern reads a pattern name, case-insensitively
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Patterns {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("board: unknown void pattern %q", s)
}

const scatteredVoids = 8

var (
	corridorColumns = []int{2, 4, 6} // C, E, G
	corridorRows    = []int{2, 3, 4, 5, 6, 7}

	mazeShapes = [][]string{
		{"B6", "B7", "C7"},
		{"D4", "E4", "E5"},
		{"F6", "G6", "G7"},
		{"C2", "D2", "D3"},
	}

	fortressInner = []string{"F7", "F8", "G6", "H6"}
	fortressOuter = []string{"E6", "E7", "E8", "D7", "D8"}
)

// voidBuilder places voids one at a time and rolls back any placement that
// would cut Start off from Goal.
type voidBuilder struct {
	voids VoidSet
}

func newVoidBuilder() *voidBuilder {
	return &voidBuilder{voids: make(VoidSet)}
}

func (b *voidBuilder) try(c Coordinate) {
	if c == Start || c == Goal {
		return
	}
	if b.voids.Has(c) {
		return
	}
	b.voids[c] = struct{}{}
	if !connected(b.voids) {
		delete(b.voids, c)
	}
}

func shuffle[T any](rng *engine.Mulberry32, items []T) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

func mustParseAll(names []string) []Coordinate {
	out := make([]Coordinate, len(names))
	for i, n := range names {
		out[i] = MustParse(n)
	}
	return out
}

// candidates lists non-start, non-goal cells in the given columns that are not
// already void, in column-major order.
func (b *voidBuilder) candidates(cols int) []Coordinate {
	var out []Coordinate
	for _, c := range All() {
		if c.Col >= cols || c == Start || c == Goal || b.voids.Has(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func generateVoids(p Pattern, rng *engine.Mulberry32) VoidSet {
	b := newVoidBuilder()
	switch p {
	case Corridor:
		b.corridor(rng)
	case Maze:
		b.maze(rng)
	case Fortress:
		b.fortress(rng)
	default:
		b.scattered(rng)
	}
	return b.voids
}

// scattered voids up to eight random cells anywhere on the board.
func (b *voidBuilder) scattered(rng *engine.Mulberry32) {
	available := b.candidates(Size)
	shuffle(rng, available)
	for _, c := range available {
		if len(b.voids) >= scatteredVoids {
			break
		}
		b.try(c)
	}
}

// corridor blocks four of the six middle rows in columns C, E and G.
func (b *voidBuilder) corridor(rng *engine.Mulberry32) {
	for _, col := range corridorColumns {
		rows := append([]int(nil), corridorRows...)
		shuffle(rng, rows)
		for _, row := range rows[:4] {
			b.try(Coordinate{Col: col, Row: row})
		}
	}
}

// maze places two or three L-shaped clusters plus two to four loose voids.
func (b *voidBuilder) maze(rng *engine.Mulberry32) {
	shapes := make([][]Coordinate, len(mazeShapes))
	for i, s := range mazeShapes {
		shapes[i] = mustParseAll(s)
	}
	shuffle(rng, shapes)

	n := 2 + rng.Intn(2)
	for _, shape := range shapes[:n] {
		for _, c := range shape {
			b.try(c)
		}
	}

	available := b.candidates(Size)
	shuffle(rng, available)
	extra := 2 + rng.Intn(3)
	for i := 0; i < extra && i < len(available); i++ {
		b.try(available[i])
	}
}

// fortress walls in the goal, adds part of an outer ring, then scatters three
// or four voids over columns A to E.
func (b *voidBuilder) fortress(rng *engine.Mulberry32) {
	for _, c := range mustParseAll(fortressInner) {
		b.try(c)
	}

	outer := mustParseAll(fortressOuter)
	shuffle(rng, outer)
	n := 2 + rng.Intn(2)
	for _, c := range outer[:n] {
		b.try(c)
	}

	available := b.candidates(5)
	shuffle(rng, available)
	extra := 3 + rng.Intn(2)
	for i := 0; i < extra && i < len(available); i++ {
		b.try(available[i])
	}
}
