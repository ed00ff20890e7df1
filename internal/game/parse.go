package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
)

// Move parse failures. ParsedMove.Err wraps one of these.
var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrMissingFields  = errors.New("missing required fields: avatar and/or target")
	ErrUnknownAvatar  = errors.New("invalid avatar name")
	ErrBadCoordinate  = errors.New("invalid coordinate")
	fencedBlock       = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	objectLiteral     = regexp.MustCompile(`(?s)\{.*\}`)
	answerFallback    = regexp.MustCompile(`(?i)answer[:\s]+([^\n,}]+)`)
	bossFieldFallback = map[int]*regexp.Regexp{
		1: regexp.MustCompile(`(?i)"?answer\s*1"?\s*[:=]\s*"?([^\n,}"]+)`),
		2: regexp.MustCompile(`(?i)"?answer\s*2"?\s*[:=]\s*"?([^\n,}"]+)`),
		3: regexp.MustCompile(`(?i)"?answer\s*3"?\s*[:=]\s*"?([^\n,}"]+)`),
	}
)

// ParsedMove is the structured reading of a move response.
type ParsedMove struct {
	Valid     bool
	Avatar    avatar.Avatar
	Target    *board.Coordinate
	Reasoning string
	Err       error
}

// extractObject strips an optional fenced block and decodes the first
// object-shaped substring.
func extractObject(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	if m := objectLiteral.FindString(s); m != "" {
		s = m
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not an object")
	}
	return obj, nil
}

// field renders a decoded JSON value as text. Numbers keep their literal
// form; objects and arrays read as empty.
func field(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return ""
}

// ParseMove reads a {reasoning, avatar, target} response. Missing fields, an
// unknown avatar or a malformed coordinate make the move invalid, which is a
// different failure from an illegal move.
func ParseMove(text string) ParsedMove {
	obj, err := extractObject(text)
	if err != nil {
		return ParsedMove{Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}

	pm := ParsedMove{Reasoning: field(obj, "reasoning")}
	name, _ := obj["avatar"].(string)
	target, _ := obj["target"].(string)
	if strings.TrimSpace(name) == "" || strings.TrimSpace(target) == "" {
		pm.Err = ErrMissingFields
		return pm
	}

	a, err := avatar.Parse(name)
	if err != nil {
		pm.Err = fmt.Errorf("%w: %s", ErrUnknownAvatar, strings.TrimSpace(name))
		return pm
	}
	pm.Avatar = a

	to, err := board.ParseCoordinate(target)
	if err != nil {
		pm.Err = fmt.Errorf("%w: %s", ErrBadCoordinate, strings.ToUpper(strings.TrimSpace(target)))
		return pm
	}
	pm.Target = &to
	pm.Valid = true
	return pm
}

// ParseAnswer reads a {reasoning, answer} response. If no JSON object can be
// decoded it looks for an "answer: ..." token, and failing that takes the
// whole reply as the answer.
func ParseAnswer(text string) (answer, reasoning string) {
	obj, err := extractObject(text)
	if err == nil {
		return strings.TrimSpace(field(obj, "answer")), strings.TrimSpace(field(obj, "reasoning"))
	}
	if m := answerFallback.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), text
	}
	return strings.TrimSpace(text), text
}

// ParseBoss reads a {reasoning, answer1, answer2, answer3} response, falling
// back to "answer1: ..." style tokens for fields it cannot decode.
func ParseBoss(text string) (answers [3]string, reasoning string) {
	obj, err := extractObject(text)
	if err == nil {
		for i := range answers {
			answers[i] = strings.TrimSpace(field(obj, fmt.Sprintf("answer%d", i+1)))
		}
		return answers, strings.TrimSpace(field(obj, "reasoning"))
	}
	for i := range answers {
		if m := bossFieldFallback[i+1].FindStringSubmatch(text); m != nil {
			answers[i] = strings.TrimSpace(m[1])
		}
	}
	return answers, text
}
