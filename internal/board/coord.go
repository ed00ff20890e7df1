package board

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// Columns are the column letters, left to right.
const Columns = "ABCDEFGH"

// Coordinate is one board cell. Col is 0-based (A=0); Row is 1-based as
// printed. The zero value is not a valid cell.
type Coordinate struct {
	Col int
	Row int
}

var (
	// Start is where every stage begins.
	Start = Coordinate{Col: 0, Row: 1}
	// Goal is the cell every stage tries to reach.
	Goal = Coordinate{Col: Size - 1, Row: Size}
)

// ErrBadCoordinate is returned for anything that is not a cell from A1 to H8.
var ErrBadCoordinate = errors.New("board: malformed coordinate")

// ParseCoordinate reads "C4"-style coordinates, ignoring case and surrounding
// whitespace.
func ParseCoordinate(s string) (Coordinate, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if len(t) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	col := strings.IndexByte(Columns, t[0])
	row := int(t[1] - '0')
	if col < 0 || row < 1 || row > Size {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrBadCoordinate, s)
	}
	return Coordinate{Col: col, Row: row}, nil
}

// MustParse is ParseCoordinate for literals known to be valid.
func MustParse(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether c lies on the board
func (c Coordinate) Valid() bool {
	return c.Col >= 0 && c.Col < Size && c.Row >= 1 && c.Row <= Size
}

// String returns the canonical form, e.g. "C4"
func (c Coordinate) String() string {
	if !c.Valid() {
		return "??"
	}
	return fmt.Sprintf("%c%d", Columns[c.Col], c.Row)
}

// Offset moves c by (dc, dr) and reports whether the result is on the board.
func (c Coordinate) Offset(dc, dr int) (Coordinate, bool) {
	n := Coordinate{Col: c.Col + dc, Row: c.Row + dr}
	return n, n.Valid()
}

// MarshalText implements encoding.TextMarshaler
func (c Coordinate) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Coordinate) UnmarshalText(text []byte) error {
	parsed, err := ParseCoordinate(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// All returns the 64 cells in column-major order (A1..A8, B1..B8, ...). Board
// generation walks cells in this order, so it is part of the seed contract.
func All() []Coordinate {
	out := make([]Coordinate, 0, Size*Size)
	for col := 0; col < Size; col++ {
		for row := 1; row <= Size; row++ {
			out = append(out, Coordinate{Col: col, Row: row})
		}
	}
	return out
}

// directions are the eight king-move offsets, orthogonal first.
var directions = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Neighbors returns the up-to-eight cells adjacent to c.
func Neighbors(c Coordinate) []Coordinate {
	out := make([]Coordinate, 0, len(directions))
	for _, d := range directions {
		if n, ok := c.Offset(d[0], d[1]); ok {
			out = append(out, n)
		}
	}
	return out
}
