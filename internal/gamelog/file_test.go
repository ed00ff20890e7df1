package gamelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

var t0 = time.Date(2026, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

func TestFileName(t *testing.T) {
	assert.Equal(t, "anthropic-claude-3.5-sonnet_42_2026-03-01T12-30-45-123Z.log",
		FileName("anthropic/claude-3.5-sonnet", 42, t0))
	assert.Equal(t, "a-b-c-d-e-f-g-h-i_7_2026-03-01T12-30-45-123Z.log",
		FileName(`a/b\c:d*e?f"g<h>i`, 7, t0))
}

func TestFileLoggerSingleGame(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := newFileLogger(dir, "openai/gpt-4o", 42, fixedClock(t0, time.Second))

	b2 := board.MustParse("B2")
	a4 := board.MustParse("A4")
	q := questions.Question{
		ID: "m1", Domain: questions.Math, Tier: 1, Difficulty: 2,
		Question: "What is 2+2?\nAnswer with a number.", Answer: "4", Format: questions.FormatInteger,
	}

	l.Emit(game.Event{Kind: game.EventGameStart, Seed: 42, Lives: 5, MaxLives: 5})
	l.Emit(game.Event{Kind: game.EventTurnStart, Seed: 42, Turn: 1, Visible: &game.VisibleState{
		Position: board.Start, Lives: 5, MaxLives: 5, Turn: 1, DistanceToGoal: 7,
		Available: avatar.All,
		Neighbors: []game.Neighbor{{Coord: b2, Category: "logic"}, {Coord: a4, Category: "physics"}},
	}})
	l.Emit(game.Event{Kind: game.EventResponse, Turn: 1, Raw: `{"avatar":"Scalar","target":"B2"}`,
		Move: &game.ParsedMove{Valid: true, Avatar: avatar.Scalar, Target: &b2, Reasoning: strings.Repeat("x", 250)}})
	l.Emit(game.Event{Kind: game.EventQuestion, Turn: 1, Question: &q})
	l.Emit(game.Event{Kind: game.EventAnswer, Turn: 1, Lives: 4, Answer: "5", Question: &q})
	l.Emit(game.Event{Kind: game.EventTurnStart, Turn: 2, Visible: &game.VisibleState{
		Position: board.Start, Lives: 4, MaxLives: 5, Turn: 2, LastAvatar: avatar.Vector,
		Available: avatar.Available(avatar.Vector),
	}})
	l.Emit(game.Event{Kind: game.EventResponse, Turn: 2, Raw: "nope",
		Move: &game.ParsedMove{Err: game.ErrInvalidJSON}})
	l.Emit(game.Event{Kind: game.EventInvalidResponse, Turn: 2, Lives: 3, Reason: "invalid JSON"})

	s := &game.GameState{Position: board.Start, Lives: 3, Turn: 2, QuestionsAnswered: 1, InvalidResponses: 1, Complete: true}
	l.Emit(game.Event{Kind: game.EventGameEnd, Result: &game.Result{Single: s}})

	out := l.String()
	for _, want := range []string{
		strings.Repeat("=", 80) + "\nCOGNITIVE GAUNTLET - GAME LOG\n",
		"Model ID: openai/gpt-4o\n",
		"Seed: 42\n",
		"Started: 2026-03-01T12:30:46.123Z\n",
		"--- TURN 1 ---\nPosition: A1\nLives: 5/5\nDistance to Goal: 7 squares\n",
		"Available Avatars: Vector, Bias, Tensor, Scalar, Epoch\nLast Used: None\n",
		"Visible Neighbors:\n  B2: [logic]\n  A4: [physics]\n",
		"Model Response (raw):\n```\n{\"avatar\":\"Scalar\",\"target\":\"B2\"}\n```\n",
		"  Valid: true\n  Avatar: Scalar\n  Target: B2\n  Reasoning: " + strings.Repeat("x", 200) + "...\n",
		"  Domain: MATH\n  Tier: 1\n  Difficulty: 2/10\n  Format: integer\n",
		"Question Text:\n  What is 2+2?\n  Answer with a number.\n",
		"Model Answer: 5\nCorrect Answer: 4\n\nRESULT: INCORRECT ✗\nPenalty: -1 life, position unchanged\nLives Remaining: 4/5\n",
		"Last Used: Vector\n",
		"  Valid: false\n  Error: invalid JSON\n",
		"RESULT: INVALID JSON\nError: invalid JSON\nPenalty: -1 life\nLives Remaining: 3/5\n",
		"GAME OVER",
		"Result: DEFEAT\nTurns Taken: 2\nLives Remaining: 3/5\n",
		"  Questions Answered: 1\n  Questions Correct: 0\n  Accuracy: 0%\n  Illegal Moves: 0\n  Invalid JSON: 1\n",
	} {
		assert.Contains(t, out, want)
	}

	path, err := l.Save()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "openai-gpt-4o_42_2026-03-01T12-30-45-123Z.log"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestFileLoggerGoalAndVictory(t *testing.T) {
	l := newFileLogger(t.TempDir(), "m", 1, fixedClock(t0, 500*time.Millisecond))
	l.Emit(game.Event{Kind: game.EventGameStart, Seed: 1, MaxLives: 5})
	l.Emit(game.Event{Kind: game.EventGoal})
	l.Emit(game.Event{Kind: game.EventGameEnd, Result: &game.Result{Single: &game.GameState{
		Position: board.Goal, Won: true, Complete: true, Lives: 5, Turn: 6, QuestionsAnswered: 5, QuestionsCorrect: 4,
	}}})

	out := l.String()
	assert.Contains(t, out, "*** GOAL REACHED - H8 ***\nThe model has successfully navigated to the goal!\n")
	assert.Contains(t, out, "Final Position: H8\nResult: VICTORY\n")
	assert.Contains(t, out, "Accuracy: 80%")
	assert.Contains(t, out, "Total Time: 0.5 seconds")
}

func TestFileLoggerAbort(t *testing.T) {
	l := newFileLogger(t.TempDir(), "m", 1, fixedClock(t0, time.Second))
	l.Emit(game.Event{Kind: game.EventAbort, Err: errors.New("boom")})
	assert.Equal(t, "!!! ERROR !!!\nboom\nBenchmark stopped.\n\n", l.String())
}

func TestFileLoggerTurnLimit(t *testing.T) {
	l := newFileLogger(t.TempDir(), "m", 1, fixedClock(t0, time.Second))
	l.Emit(game.Event{Kind: game.EventTurnLimit, Turn: 3, Reason: "turn limit of 3 reached"})
	assert.Equal(t, "*** TURN LIMIT OF 3 REACHED ***\n\n", l.String())
}

func TestFileLoggerGauntletSections(t *testing.T) {
	l := newFileLogger(t.TempDir(), "m", 100, fixedClock(t0, time.Second))
	m := &game.MultiStageState{BaseSeed: 100, Lives: 5, MaxLives: 5}
	qs := []questions.Question{
		{Domain: questions.Math, Format: questions.FormatInteger, Question: "q1", Answer: "1"},
		{Domain: questions.Logic, Format: questions.FormatInteger, Question: "q2", Answer: "2"},
		{Domain: questions.Physics, Format: questions.FormatInteger, Question: "q3", Answer: "3"},
	}
	fight := &game.BossFight{Questions: qs, Answers: [3]string{"1", "x", "3"}, Correct: [3]bool{true, false, true}}

	l.Emit(game.Event{Kind: game.EventGameStart, Seed: 100, Gauntlet: m, MaxLives: 5})
	l.Emit(game.Event{Kind: game.EventStageStart, Stage: 2, StageName: "The Labyrinth", Lives: 4})
	l.Emit(game.Event{Kind: game.EventTurnStart, Stage: 2, Turn: 3, Visible: &game.VisibleState{Position: board.Start}})
	l.Emit(game.Event{Kind: game.EventStageEnd, Stage: 2, Lives: 4, State: &game.GameState{Won: true, Turn: 6}})
	l.Emit(game.Event{Kind: game.EventBossStart, Boss: fight})
	l.Emit(game.Event{Kind: game.EventBossResult, Raw: "{}", Boss: fight})

	out := l.String()
	assert.Contains(t, out, "Mode: gauntlet (4 stages)")
	assert.Contains(t, out, "STAGE 2: The Labyrinth\nLives carried in: 4/5\n")
	assert.Contains(t, out, "--- STAGE 2 TURN 3 ---")
	assert.Contains(t, out, "STAGE 2 CLEARED after 6 turns, lives 4/5")
	assert.Contains(t, out, "Question 2 (LOGIC, integer): q2")
	assert.Contains(t, out, "Answer 2: x (expected 2) ✗")
	assert.Contains(t, out, "RESULT: BOSS WINS ✗ (2/3 correct)")
}
