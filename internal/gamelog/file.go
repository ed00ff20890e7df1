// Package gamelog turns engine events into logs: a human-readable transcript
// file per game, and structured logrus entries for operators.
package gamelog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/openrouter"
)

const (
	reasoningPreview = 200
	isoMillis        = "2006-01-02T15:04:05.000Z"
)

var unsafeFileChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// FileName builds "<model>_<seed>_<timestamp>.log" with characters that are
// unsafe in file names replaced by '-'.
func FileName(model string, seed uint32, at time.Time) string {
	stamp := at.UTC().Format(isoMillis)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("%s_%d_%s.log", unsafeFileChars.ReplaceAllString(model, "-"), seed, stamp)
}

// FileLogger buffers a game transcript and writes it to disk on Save. It is
// an EventSink for exactly one run.
type FileLogger struct {
	dir   string
	path  string
	model string
	buf   bytes.Buffer
	now   func() time.Time

	maxLives int
	started  time.Time
}

var _ game.EventSink = (*FileLogger)(nil)

// NewFileLogger prepares a log for model and seed under dir.
func NewFileLogger(dir, model string, seed uint32) *FileLogger {
	return newFileLogger(dir, model, seed, time.Now)
}

func newFileLogger(dir, model string, seed uint32, now func() time.Time) *FileLogger {
	return &FileLogger{
		dir:      dir,
		path:     filepath.Join(dir, FileName(model, seed, now())),
		model:    model,
		now:      now,
		maxLives: game.DefaultLives,
	}
}

// Path returns where Save writes
func (l *FileLogger) Path() string { return l.path }

// String returns the transcript so far.
func (l *FileLogger) String() string { return l.buf.String() }

// Save writes the transcript, creating the directory if needed.
func (l *FileLogger) Save() (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("gamelog: create %s: %w", l.dir, err)
	}
	if err := os.WriteFile(l.path, l.buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("gamelog: write %s: %w", l.path, err)
	}
	return l.path, nil
}

func (l *FileLogger) line(format string, args ...any) {
	fmt.Fprintf(&l.buf, format, args...)
	l.buf.WriteByte('\n')
}

func (l *FileLogger) blank() { l.buf.WriteByte('\n') }

func (l *FileLogger) divider(ch string) { l.line("%s", strings.Repeat(ch, 80)) }

func (l *FileLogger) lives(n int) string { return fmt.Sprintf("%d/%d", n, l.maxLives) }

func (l *FileLogger) stamp() string { return l.now().UTC().Format(isoMillis) }

// Emit implements game.EventSink
func (l *FileLogger) Emit(e game.Event) {
	switch e.Kind {
	case game.EventGameStart:
		l.header(e)
	case game.EventStageStart:
		l.divider("#")
		l.line("STAGE %d: %s", e.Stage, e.StageName)
		l.line("Lives carried in: %s", l.lives(e.Lives))
		l.divider("#")
		l.blank()
	case game.EventTurnStart:
		l.turnStart(e)
	case game.EventResponse:
		l.response(e)
	case game.EventInvalidResponse:
		l.penalty("INVALID JSON", e)
	case game.EventIllegalMove:
		l.penalty("ILLEGAL MOVE", e)
	case game.EventQuestion:
		l.question(e)
	case game.EventAnswer:
		l.answer(e)
	case game.EventGoal:
		l.line("*** GOAL REACHED - H8 ***")
		l.line("The model has successfully navigated to the goal!")
		l.blank()
	case game.EventTurnLimit:
		l.line("*** %s ***", strings.ToUpper(e.Reason))
		l.blank()
	case game.EventStageEnd:
		if e.State != nil {
			result := "CLEARED"
			if !e.State.Won {
				result = "FAILED"
			}
			l.line("STAGE %d %s after %d turns, lives %s", e.Stage, result, e.State.Turn, l.lives(e.Lives))
			l.blank()
		}
	case game.EventBossStart:
		l.divider("#")
		l.line("BOSS FIGHT - THE FINAL STAND")
		l.divider("#")
		if e.Boss != nil {
			for i, q := range e.Boss.Questions {
				l.line("Question %d (%s, %s): %s", i+1, strings.ToUpper(string(q.Domain)), q.Format, q.Question)
			}
		}
		l.blank()
	case game.EventBossResult:
		l.bossResult(e)
	case game.EventAbort:
		l.line("!!! ERROR !!!")
		if e.Err != nil {
			l.line("%s", e.Err)
		}
		l.line("Benchmark stopped.")
		l.blank()
	case game.EventGameEnd:
		l.gameOver(e)
	}
}

func (l *FileLogger) header(e game.Event) {
	if e.MaxLives > 0 {
		l.maxLives = e.MaxLives
	}
	l.started = l.now()
	l.divider("=")
	l.line("COGNITIVE GAUNTLET - GAME LOG")
	l.divider("=")
	l.line("Model: %s", openrouter.DisplayName(l.model))
	l.line("Model ID: %s", l.model)
	l.line("Seed: %d", e.Seed)
	if e.Gauntlet != nil {
		l.line("Mode: gauntlet (%d stages)", len(game.Stages))
	}
	l.line("Started: %s", l.started.UTC().Format(isoMillis))
	l.divider("=")
	l.blank()
}

func (l *FileLogger) turnStart(e game.Event) {
	v := e.Visible
	if v == nil {
		return
	}
	last := "None"
	if v.LastAvatar != avatar.None {
		last = v.LastAvatar.String()
	}
	if e.Stage > 0 {
		l.line("--- STAGE %d TURN %d ---", e.Stage, e.Turn)
	} else {
		l.line("--- TURN %d ---", e.Turn)
	}
	l.line("Position: %s", v.Position)
	l.line("Lives: %s", l.lives(v.Lives))
	l.line("Distance to Goal: %d squares", v.DistanceToGoal)
	l.line("Available Avatars: %s", strings.Join(avatar.Names(v.Available), ", "))
	l.line("Last Used: %s", last)
	l.blank()
	l.line("Visible Neighbors:")
	for _, n := range v.Neighbors {
		l.line("  %s: [%s]", n.Coord, n.Category)
	}
	l.blank()
}

func (l *FileLogger) response(e game.Event) {
	l.line("Model Response (raw):")
	l.line("```")
	l.line("%s", e.Raw)
	l.line("```")
	l.blank()

	m := e.Move
	if m == nil {
		return
	}
	l.line("Parsed Move:")
	l.line("  Valid: %t", m.Valid)
	if m.Avatar != avatar.None {
		l.line("  Avatar: %s", m.Avatar)
	}
	if m.Target != nil {
		l.line("  Target: %s", m.Target)
	}
	if m.Reasoning != "" {
		l.line("  Reasoning: %s", preview(m.Reasoning))
	}
	if m.Err != nil {
		l.line("  Error: %s", m.Err)
	}
	l.blank()
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= reasoningPreview {
		return s
	}
	return string(r[:reasoningPreview]) + "..."
}

func (l *FileLogger) penalty(result string, e game.Event) {
	l.line("RESULT: %s", result)
	l.line("Error: %s", e.Reason)
	l.line("Penalty: -1 life")
	l.line("Lives Remaining: %s", l.lives(e.Lives))
	l.blank()
	l.divider("-")
	l.blank()
}

func (l *FileLogger) question(e game.Event) {
	q := e.Question
	if q == nil {
		return
	}
	l.line("Question Received:")
	l.line("  Domain: %s", strings.ToUpper(string(q.Domain)))
	l.line("  Tier: %d", q.Tier)
	l.line("  Difficulty: %d/10", q.Difficulty)
	l.line("  Format: %s", q.Format)
	l.blank()
	l.line("Question Text:")
	for _, ln := range strings.Split(q.Question, "\n") {
		l.line("  %s", ln)
	}
	l.blank()
}

func (l *FileLogger) answer(e game.Event) {
	l.line("Model Answer: %s", e.Answer)
	if e.Question != nil {
		l.line("Correct Answer: %s", e.Question.Answer)
	}
	l.blank()
	if e.Correct {
		l.line("RESULT: CORRECT ✓")
		l.line("Move successful - position updated")
	} else {
		l.line("RESULT: INCORRECT ✗")
		l.line("Penalty: -1 life, position unchanged")
	}
	l.line("Lives Remaining: %s", l.lives(e.Lives))
	l.blank()
	l.divider("-")
	l.blank()
}

func (l *FileLogger) bossResult(e game.Event) {
	b := e.Boss
	if b == nil {
		return
	}
	l.line("Model Response (raw):")
	l.line("```")
	l.line("%s", e.Raw)
	l.line("```")
	l.blank()
	for i, q := range b.Questions {
		if i >= len(b.Answers) {
			break
		}
		mark := "✗"
		if b.Correct[i] {
			mark = "✓"
		}
		l.line("Answer %d: %s (expected %s) %s", i+1, b.Answers[i], q.Answer, mark)
	}
	l.blank()
	if b.Defeated {
		l.line("RESULT: BOSS DEFEATED ✓")
	} else {
		l.line("RESULT: BOSS WINS ✗ (%d/%d correct)", b.CorrectCount(), len(b.Questions))
	}
	l.blank()
}

func (l *FileLogger) gameOver(e game.Event) {
	res := e.Result
	if res == nil {
		return
	}
	var (
		position          string
		won               bool
		turns, lives      int
		answered, correct int
		illegal, invalid  int
	)
	switch {
	case res.Gauntlet != nil:
		m := res.Gauntlet
		won, turns, lives = m.Won(), m.TotalTurns, m.Lives
		answered, correct = m.QuestionsAnswered, m.QuestionsCorrect
		for _, sr := range m.Stages {
			illegal += sr.State.IllegalMoves
			invalid += sr.State.InvalidResponses
			position = sr.State.Position.String()
		}
	case res.Single != nil:
		s := res.Single
		position = s.Position.String()
		won, turns, lives = s.Won, s.Turn, s.Lives
		answered, correct = s.QuestionsAnswered, s.QuestionsCorrect
		illegal, invalid = s.IllegalMoves, s.InvalidResponses
	}

	accuracy := 0
	if answered > 0 {
		accuracy = int(float64(correct)/float64(answered)*100 + 0.5)
	}
	result := "DEFEAT"
	if won {
		result = "VICTORY"
	}

	l.blank()
	l.divider("=")
	l.line("GAME OVER")
	l.divider("=")
	l.blank()
	l.line("Final Position: %s", position)
	if res.Gauntlet != nil {
		l.line("Stage Reached: %d/%d", res.Gauntlet.StageReached(), len(game.Stages))
	}
	l.line("Result: %s", result)
	l.line("Turns Taken: %d", turns)
	l.line("Lives Remaining: %s", l.lives(lives))
	l.blank()
	l.line("Statistics:")
	l.line("  Questions Answered: %d", answered)
	l.line("  Questions Correct: %d", correct)
	l.line("  Accuracy: %d%%", accuracy)
	l.line("  Illegal Moves: %d", illegal)
	l.line("  Invalid JSON: %d", invalid)
	l.blank()
	l.line("Total Time: %.1f seconds", l.now().Sub(l.started).Seconds())
	l.line("Ended: %s", l.stamp())
	l.divider("=")
}
