package game_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

func TestStageSeed(t *testing.T) {
	assert.Equal(t, uint32(42), game.StageSeed(42, 1))
	assert.Equal(t, uint32(45), game.StageSeed(42, 4))
}

func TestStagesTable(t *testing.T) {
	require.Len(t, game.Stages, 4)
	patterns := []board.Pattern{board.Scattered, board.Corridor, board.Maze, board.Fortress}
	for i, st := range game.Stages {
		assert.Equal(t, i+1, st.Number)
		assert.Equal(t, patterns[i], st.Pattern)
		assert.Equal(t, 100*(i+1), st.Bonus)
		assert.Equal(t, i == 3, st.Boss)
	}
}

func TestGauntletFullClear(t *testing.T) {
	o := &oracle{}
	res := newEngine(t, o).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	require.NotNil(t, m)
	assert.Equal(t, game.ModeGauntlet, res.Mode)
	assert.True(t, m.Complete)
	assert.True(t, m.Cleared)
	assert.True(t, m.BossDefeated())
	assert.True(t, m.Won())
	assert.False(t, m.Aborted)
	assert.Equal(t, 4, m.StageReached())
	assert.Equal(t, 5, m.Lives)
	assert.Equal(t, 24, m.TotalTurns)
	assert.Equal(t, 4*5+questions.BossSize, m.QuestionsAnswered)
	assert.Equal(t, m.QuestionsAnswered, m.QuestionsCorrect)

	for i, sr := range m.Stages {
		assert.True(t, sr.Cleared)
		assert.Equal(t, game.StageSeed(42, i+1), sr.Seed)
		assert.Equal(t, sr.Stage.Bonus, sr.Bonus)
		assert.Equal(t, sr.Stage.Pattern, sr.State.Board.Pattern())
		assert.Equal(t, i+1, sr.State.Stage)
		for _, mv := range sr.State.Moves {
			assert.Equal(t, i+1, mv.Stage)
		}
	}

	require.NotNil(t, m.Boss)
	assert.Equal(t, 3, m.Boss.CorrectCount())

	// one transcript, with stage briefings inline after the first
	briefings := 0
	for _, msg := range res.Transcript[1:] {
		if strings.HasPrefix(msg.Content, "You are playing Cognitive Gauntlet, a multi-stage") {
			briefings++
			assert.Equal(t, game.RoleUser, msg.Role)
		}
	}
	assert.Equal(t, 3, briefings)
	assert.Contains(t, res.Transcript[0].Content, `CURRENT STAGE: 1/4 - "The Awakening"`)

	kinds := o.kinds()
	assert.Contains(t, kinds, game.EventBossStart)
	assert.Contains(t, kinds, game.EventBossResult)
	assert.Equal(t, game.EventGameEnd, kinds[len(kinds)-1])
}

func TestGauntletLivesCarryOver(t *testing.T) {
	o := &oracle{move: func(n int, _ game.VisibleState) string {
		if n <= 2 {
			return "no json here"
		}
		return ""
	}}
	res := newEngine(t, o).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	require.GreaterOrEqual(t, len(m.Stages), 2)
	first := m.Stages[0].State
	assert.True(t, first.Won)
	assert.Equal(t, 3, first.Lives)
	assert.Equal(t, 3, m.Stages[1].State.StartingLives, "stage 2 starts with the lives stage 1 ended on")
	assert.Equal(t, 3, m.Lives)
	assert.Equal(t, 5, m.StartingLives)
}

func TestGauntletBossAllOrNothing(t *testing.T) {
	o := &oracle{bossAnswers: func(qs []questions.Question) [3]string {
		return [3]string{qs[0].Answer, qs[1].Answer, "zzzz"}
	}}
	res := newEngine(t, o).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	require.NotNil(t, m.Boss)
	assert.Equal(t, [3]bool{true, true, false}, m.Boss.Correct)
	assert.Equal(t, 2, m.Boss.CorrectCount())
	assert.False(t, m.Boss.Defeated)
	assert.True(t, m.Cleared)
	assert.False(t, m.Won())
	assert.Equal(t, 5, m.Lives, "the boss never costs lives")
}

func TestGauntletStageLossEndsRun(t *testing.T) {
	o := &oracle{answer: wrong}
	res := newEngine(t, o, func(c *game.Config) { c.Lives = 2 }).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	require.Len(t, m.Stages, 1)
	assert.False(t, m.Stages[0].Cleared)
	assert.Zero(t, m.Stages[0].Bonus)
	assert.Equal(t, 0, m.Lives)
	assert.False(t, m.Cleared)
	assert.Nil(t, m.Boss)
	assert.NotContains(t, o.kinds(), game.EventBossStart)
	assert.True(t, m.Complete)
}

func TestGauntletStageCeiling(t *testing.T) {
	o := &oracle{move: func(int, game.VisibleState) string {
		return `{"avatar":"Vector","target":"Z9","reasoning":"?"}`
	}}
	res := newEngine(t, o, func(c *game.Config) { c.MaxTurns = 3 }).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	require.Len(t, m.Stages, 1)
	s := m.Stages[0].State
	assert.True(t, s.CeilingHit)
	assert.Equal(t, 2, s.Lives)
	assert.Equal(t, 3, s.InvalidResponses)
}

func TestGauntletAbortMidStage(t *testing.T) {
	o := &oracle{fail: func(n int) error {
		if n == 14 {
			return context.DeadlineExceeded
		}
		return nil
	}}
	res := newEngine(t, o).PlayGauntlet(context.Background(), 42)

	m := res.Gauntlet
	assert.True(t, m.Aborted)
	assert.ErrorIs(t, m.AbortErr, context.DeadlineExceeded)
	assert.True(t, res.Aborted())
	// stage 1 takes eleven calls, so the failure lands inside stage 2
	require.Len(t, m.Stages, 2)
	assert.True(t, m.Stages[0].Cleared)
	assert.False(t, m.Stages[1].Cleared)
	assert.True(t, m.Stages[1].State.Aborted)
}
