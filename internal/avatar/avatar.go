package avatar

import (
	"fmt"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
)

// Avatar is a movement capability. The set is closed; dispatch goes through
// the specs table.
type Avatar uint8

const (
	None Avatar = iota
	Vector
	Bias
	Tensor
	Scalar
	Epoch
)

// All lists the playable avatars in prompt order.
var All = []Avatar{Vector, Bias, Tensor, Scalar, Epoch}

type spec struct {
	name        string
	kind        string
	description string
	offsets     [][2]int
}

var specs = map[Avatar]spec{
	Vector: {
		name:        "Vector",
		kind:        "orthogonal-double",
		description: "Move exactly 2 squares orthogonally (up, down, left, right)",
		offsets:     [][2]int{{0, 2}, {0, -2}, {2, 0}, {-2, 0}},
	},
	Bias: {
		name:        "Bias",
		kind:        "diagonal-single",
		description: "Move exactly 1 square diagonally",
		offsets:     [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}},
	},
	Tensor: {
		name:        "Tensor",
		kind:        "knight-leap",
		description: "Move in L-shape (2 squares one direction, 1 square perpendicular)",
		offsets: [][2]int{
			{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
			{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
		},
	},
	Scalar: {
		name:        "Scalar",
		kind:        "omni-single",
		description: "Move exactly 1 square in any direction (including diagonal)",
		offsets: [][2]int{
			{0, 1}, {0, -1}, {1, 0}, {-1, 0},
			{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
		},
	},
	Epoch: {
		name:        "Epoch",
		kind:        "forward-triple",
		description: "Move exactly 3 squares forward (toward row 8 only)",
		offsets:     [][2]int{{0, 3}},
	},
}

// Parse resolves an avatar name, ignoring case and surrounding whitespace.
func Parse(name string) (Avatar, error) {
	n := strings.TrimSpace(name)
	for _, a := range All {
		if strings.EqualFold(specs[a].name, n) {
			return a, nil
		}
	}
	return None, fmt.Errorf("avatar: unknown avatar %q", name)
}

// String returns the display name, e.g. "Tensor"
func (a Avatar) String() string {
	if s, ok := specs[a]; ok {
		return s.name
	}
	return "None"
}

// Kind returns the movement family, e.g. "knight-leap"
func (a Avatar) Kind() string { return specs[a].kind }

// Description is the one-line rule shown to the model.
func (a Avatar) Description() string { return specs[a].description }

// Offsets returns a copy of the (dcol, drow) pairs the avatar may move by
func (a Avatar) Offsets() [][2]int {
	return append([][2]int(nil), specs[a].offsets...)
}

// MarshalText implements encoding.TextMarshaler
func (a Avatar) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Avatar) UnmarshalText(text []byte) error {
	if string(text) == "None" || len(text) == 0 {
		*a = None
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Terrain is the board view avatars need: which cells are impassable.
type Terrain interface {
	IsVoid(c board.Coordinate) bool
}

// Moves returns every legal destination for a from the given cell: its
// offsets, clipped to the board, minus voids.
func (a Avatar) Moves(from board.Coordinate, t Terrain) []board.Coordinate {
	var out []board.Coordinate
	for _, o := range specs[a].offsets {
		to, ok := from.Offset(o[0], o[1])
		if !ok || t.IsVoid(to) {
			continue
		}
		out = append(out, to)
	}
	return out
}

// Available returns every avatar except the one used last turn.
func Available(last Avatar) []Avatar {
	out := make([]Avatar, 0, len(All))
	for _, a := range All {
		if a != last {
			out = append(out, a)
		}
	}
	return out
}

// Names renders a list of avatars as display names.
func Names(list []Avatar) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.String()
	}
	return out
}
