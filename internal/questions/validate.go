package questions

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Policy holds the thresholds used when judging free-text answers. The
// defaults are heuristics; callers that want a stricter grader can tighten
// them.
type Policy struct {
	// KeywordOverlap is the fraction of the canonical answer's significant
	// words that must appear in the model's answer.
	KeywordOverlap float64
	// MaxEditDistance bounds near-miss spelling for a single word. A negative
	// value disables near-miss matching.
	MaxEditDistance int
	// MinEditWordLen is the shortest word eligible for near-miss matching.
	MinEditWordLen int
	// MaxEditLenDiff is the largest length gap between two near-miss words.
	MaxEditLenDiff int
	// DefaultTolerance applies to decimal questions without their own.
	DefaultTolerance float64
	// Abbreviations maps an acronym to its expansion. Lookups go both ways.
	Abbreviations map[string]string
}

// DefaultPolicy is the grading policy the harness uses.
var DefaultPolicy = Policy{
	KeywordOverlap:   0.7,
	MaxEditDistance:  2,
	MinEditWordLen:   4,
	MaxEditLenDiff:   2,
	DefaultTolerance: 0.001,
	Abbreviations:    defaultAbbreviations,
}

// Validate judges answer against q using DefaultPolicy.
func Validate(q Question, answer string) bool {
	return DefaultPolicy.Validate(q, answer)
}

// Validate judges answer against q according to q's declared format. Zero
// fields of p take their DefaultPolicy value.
func (p Policy) Validate(q Question, answer string) bool {
	p = p.withDefaults()
	switch q.Format {
	case FormatInteger:
		return matchInteger(q.Answer, answer)
	case FormatDecimal:
		tol := q.Tolerance
		if tol == 0 {
			tol = p.DefaultTolerance
		}
		return matchDecimal(q.Answer, answer, tol)
	case FormatString:
		return p.matchFuzzy(q.Answer, answer)
	case FormatMultipleChoice:
		return normalize(answer) == normalize(q.Answer)
	default:
		return normalize(answer) == normalize(q.Answer)
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy
	if p.KeywordOverlap <= 0 {
		p.KeywordOverlap = d.KeywordOverlap
	}
	if p.MaxEditDistance == 0 {
		p.MaxEditDistance = d.MaxEditDistance
	}
	if p.MinEditWordLen == 0 {
		p.MinEditWordLen = d.MinEditWordLen
	}
	if p.MaxEditLenDiff == 0 {
		p.MaxEditLenDiff = d.MaxEditLenDiff
	}
	if p.DefaultTolerance == 0 {
		p.DefaultTolerance = d.DefaultTolerance
	}
	if p.Abbreviations == nil {
		p.Abbreviations = d.Abbreviations
	}
	return p
}

var (
	nonIntegerChars = regexp.MustCompile(`[^0-9-]`)
	cleanInteger    = regexp.MustCompile(`^-?\d+(\.0+)?$`)
	leadingFloat    = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
	anyFloat        = regexp.MustCompile(`[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)
)

func matchInteger(canonical, answer string) bool {
	want, ok := parseInteger(canonical)
	if !ok {
		return false
	}
	got, ok := parseInteger(answer)
	return ok && got == want
}

// parseInteger strips everything but digits and minus signs, then reads the
// leading integer. "1,234" reads as 1234; "12.0" is accepted as 12.
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if cleanInteger.MatchString(s) {
		s = strings.SplitN(s, ".", 2)[0]
	}
	s = nonIntegerChars.ReplaceAllString(s, "")

	end := 0
	if end < len(s) && s[end] == '-' {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchDecimal(canonical, answer string, tolerance float64) bool {
	want, ok := parseDecimal(canonical)
	if !ok {
		return false
	}
	got, ok := parseDecimal(answer)
	if !ok {
		return false
	}
	return math.Abs(got-want) <= tolerance
}

// parseDecimal reads the leading number of s, falling back to the first
// number anywhere in it.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	m := leadingFloat.FindString(s)
	if m == "" {
		m = anyFloat.FindString(s)
	}
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
