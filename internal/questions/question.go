package questions

import (
	"errors"
	"fmt"
)

// Domain is one of the five knowledge categories a square can belong to.
type Domain string

const (
	Math     Domain = "math"
	Physics  Domain = "physics"
	Code     Domain = "code"
	Logic    Domain = "logic"
	Medicine Domain = "medicine"
)

// Domains lists every domain in draw order. Board generation indexes into this
// slice, so the order is part of the seed contract.
var Domains = []Domain{Math, Physics, Code, Logic, Medicine}

// Valid reports whether d is a known domain
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// Format is the declared answer format of a question.
type Format string

const (
	FormatInteger        Format = "integer"
	FormatDecimal        Format = "decimal"
	FormatString         Format = "string"
	FormatMultipleChoice Format = "multiple_choice"
)

// Valid reports whether f is a known format
func (f Format) Valid() bool {
	switch f {
	case FormatInteger, FormatDecimal, FormatString, FormatMultipleChoice:
		return true
	}
	return false
}

// MaxTier is the hardest difficulty bucket. Every gauntlet square uses it.
const MaxTier = 3

// Question is one immutable catalog entry. The JSON shape is shared with
// existing question banks and must not change.
type Question struct {
	ID          string  `json:"id"`
	Domain      Domain  `json:"domain"`
	Tier        int     `json:"tier"`
	Difficulty  int     `json:"difficulty"`
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	Format      Format  `json:"format"`
	Tolerance   float64 `json:"tolerance,omitempty"`
	Explanation string  `json:"explanation"`
}

// ErrUnknownQuestion is returned when a question id is not in the catalog.
var ErrUnknownQuestion = errors.New("questions: unknown question")

func (q Question) validate() error {
	if q.ID == "" {
		return errors.New("missing id")
	}
	if !q.Domain.Valid() {
		return fmt.Errorf("%s: unknown domain %q", q.ID, q.Domain)
	}
	if !q.Format.Valid() {
		return fmt.Errorf("%s: unknown format %q", q.ID, q.Format)
	}
	if q.Answer == "" {
		return fmt.Errorf("%s: empty answer", q.ID)
	}
	if q.Tolerance < 0 {
		return fmt.Errorf("%s: negative tolerance", q.ID)
	}
	return nil
}
