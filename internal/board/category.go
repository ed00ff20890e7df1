package board

import (
	"fmt"

	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// Kind discriminates the Category variants.
type Kind uint8

const (
	KindDomain Kind = iota
	KindVoid
	KindStart
	KindGoal
)

// Category is what a square is: a knowledge domain, a void, the start or the
// goal. Only KindDomain carries a payload.
type Category struct {
	kind   Kind
	domain questions.Domain
}

var (
	VoidCategory  = Category{kind: KindVoid}
	StartCategory = Category{kind: KindStart}
	GoalCategory  = Category{kind: KindGoal}
)

// DomainCategory returns the playable category for d.
func DomainCategory(d questions.Domain) Category {
	return Category{kind: KindDomain, domain: d}
}

// Kind returns the variant
func (c Category) Kind() Kind { return c.kind }

// Domain returns the payload of a domain square.
func (c Category) Domain() (questions.Domain, bool) {
	if c.kind != KindDomain || c.domain == "" {
		return "", false
	}
	return c.domain, true
}

// String renders the category the way prompts and logs show it
func (c Category) String() string {
	switch c.kind {
	case KindVoid:
		return "void"
	case KindStart:
		return "start"
	case KindGoal:
		return "goal"
	default:
		return string(c.domain)
	}
}

// Symbol is the one-letter map glyph.
func (c Category) Symbol() byte {
	switch c.kind {
	case KindVoid:
		return 'X'
	case KindStart:
		return 'S'
	case KindGoal:
		return 'G'
	}
	switch c.domain {
	case questions.Math:
		return 'M'
	case questions.Physics:
		return 'P'
	case questions.Code:
		return 'C'
	case questions.Logic:
		return 'L'
	case questions.Medicine:
		return 'D'
	}
	return '?'
}

// MarshalText implements encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Category) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "void":
		*c = VoidCategory
	case "start":
		*c = StartCategory
	case "goal":
		*c = GoalCategory
	default:
		d := questions.Domain(s)
		if !d.Valid() {
			return fmt.Errorf("board: unknown category %q", s)
		}
		*c = DomainCategory(d)
	}
	return nil
}
