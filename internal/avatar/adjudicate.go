package avatar

import (
	"fmt"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
)

// ViolationKind classifies why a move was rejected.
type ViolationKind string

const (
	CooldownViolation ViolationKind = "cooldown-violation"
	VoidTarget        ViolationKind = "void-target"
	IllegalGeometry   ViolationKind = "illegal-geometry"
)

// Violation describes a rejected move. It implements error so callers can
// log or wrap it directly.
type Violation struct {
	Kind    ViolationKind
	Avatar  Avatar
	From    board.Coordinate
	To      board.Coordinate
	Message string
}

func (v *Violation) Error() string { return v.Message }

// Adjudicate checks a proposed move. Checks run in order: cooldown, void
// target, geometry. It returns nil when the move is legal.
func Adjudicate(a Avatar, from, to board.Coordinate, t Terrain, last Avatar) *Violation {
	if a == last && a != None {
		return &Violation{
			Kind: CooldownViolation, Avatar: a, From: from, To: to,
			Message: fmt.Sprintf("%s is on cooldown (used last turn)", a),
		}
	}
	if to.Valid() && t.IsVoid(to) {
		return &Violation{
			Kind: VoidTarget, Avatar: a, From: from, To: to,
			Message: fmt.Sprintf("Cannot move to void square %s", to),
		}
	}

	moves := a.Moves(from, t)
	for _, m := range moves {
		if m == to {
			return nil
		}
	}

	valid := "none"
	if len(moves) > 0 {
		names := make([]string, len(moves))
		for i, m := range moves {
			names[i] = m.String()
		}
		valid = strings.Join(names, ", ")
	}
	return &Violation{
		Kind: IllegalGeometry, Avatar: a, From: from, To: to,
		Message: fmt.Sprintf("%s cannot move from %s to %s. Valid moves: %s", a, from, to, valid),
	}
}
