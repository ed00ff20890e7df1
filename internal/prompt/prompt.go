// Package prompt renders the text the harness sends to a model. Wording lives
// in embedded templates so that changing a prompt never touches game logic.
package prompt

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"upper": func(d questions.Domain) string { return strings.ToUpper(string(d)) },
	"inc":   func(i int) int { return i + 1 },
	"avatars": func(list []avatar.Avatar) string {
		return strings.Join(avatar.Names(list), ", ")
	},
	"formatHint": formatHint,
}

func formatHint(f questions.Format) string {
	switch f {
	case questions.FormatDecimal:
		return "(Provide answer to 3 significant figures)"
	case questions.FormatInteger:
		return "(Provide integer only, no decimals)"
	case questions.FormatString:
		return "(Provide a single word or short phrase)"
	}
	return ""
}

var templates = template.Must(template.New("prompt").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))

// Set renders every prompt. The zero value is not usable; use New.
type Set struct {
	t     *template.Template
	lives int
}

// New returns a prompt set that states lives as the starting pool.
func New(lives int) *Set {
	if lives <= 0 {
		lives = game.DefaultLives
	}
	return &Set{t: templates, lives: lives}
}

// Default renders prompts for the standard five-life game.
var Default = New(game.DefaultLives)

var _ game.Prompter = (*Set)(nil)

func (s *Set) render(name string, data any) string {
	var buf bytes.Buffer
	if err := s.t.ExecuteTemplate(&buf, name, data); err != nil {
		// templates are embedded and covered by tests
		panic(err)
	}
	return buf.String()
}

// System is the single-stage system prompt.
func (s *Set) System() string {
	return s.render("system", struct{ Lives int }{s.lives})
}

// GauntletSystem briefs the model on stage st of the gauntlet.
func (s *Set) GauntletSystem(st game.Stage) string {
	return s.render("gauntlet", struct {
		Stage       game.Stage
		TotalStages int
		Lives       int
	}{st, len(game.Stages), s.lives})
}

func (s *Set) Turn(v game.VisibleState) string {
	return s.render("turn", v)
}

func (s *Set) StageTurn(v game.VisibleState) string {
	if v.TotalStages == 0 {
		v.TotalStages = len(game.Stages)
	}
	return s.render("stage_turn", v)
}

func (s *Set) Question(q questions.Question) string {
	return s.render("question", q)
}

func (s *Set) Boss(qs []questions.Question) string {
	return s.render("boss", qs)
}
