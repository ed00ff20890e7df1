package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

func ptr(b bool) *bool { return &b }

func answered(difficulty int, correct bool) game.MoveRecord {
	to := board.MustParse("C3")
	return game.MoveRecord{
		Avatar:   avatar.Scalar,
		To:       &to,
		Question: &questions.Question{ID: "q", Difficulty: difficulty},
		Correct:  ptr(correct),
	}
}

func goalMove() game.MoveRecord {
	to := board.Goal
	return game.MoveRecord{Avatar: avatar.Scalar, To: &to, Correct: ptr(true)}
}

func illegal() game.MoveRecord {
	return game.MoveRecord{Illegal: true, Avatar: avatar.Epoch}
}

func invalid() game.MoveRecord {
	return game.MoveRecord{Invalid: true}
}

// played builds a terminal state on the seed 42 board, whose optimal path is 7.
func played(won bool, pos string, lives int, moves ...game.MoveRecord) *game.GameState {
	s := game.NewGameState(board.Generate(42), lives, game.DefaultLives)
	s.Position = board.MustParse(pos)
	s.Won = won
	s.Complete = true
	s.Moves = moves
	for _, m := range moves {
		s.Turn++
		switch {
		case m.Illegal:
			s.IllegalMoves++
		case m.Invalid:
			s.InvalidResponses++
		case m.Question != nil:
			s.QuestionsAnswered++
			if *m.Correct {
				s.QuestionsCorrect++
			}
		}
	}
	return s
}

func TestScorePerfectWin(t *testing.T) {
	s := played(true, "H8", 5,
		answered(9, true), answered(9, true), answered(9, true),
		answered(9, true), answered(9, true), goalMove())
	require.Equal(t, 7, s.Board.OptimalDistance())

	sc := Score(s)
	assert.Equal(t, 7, sc.Progress)
	assert.Equal(t, 9.0, sc.Complexity)
	assert.Equal(t, 0, sc.Errors)
	assert.Equal(t, 70+100+45, sc.Total)
	assert.Equal(t, SubScores{Planning: 100, RuleAdherence: 100, DomainAccuracy: 100}, sc.Sub)
}

func TestScoreLossNeverNegative(t *testing.T) {
	s := played(false, "B2", 0,
		answered(9, false), answered(9, false), answered(9, false),
		answered(9, false), answered(9, false))

	sc := Score(s)
	assert.Equal(t, 1, sc.Progress)
	assert.Equal(t, 5, sc.Errors)
	assert.Equal(t, 0.0, sc.Complexity)
	assert.Equal(t, 0, sc.Total)
	assert.Equal(t, 10, sc.Sub.Planning)
	assert.Equal(t, 100, sc.Sub.RuleAdherence)
	assert.Equal(t, 0, sc.Sub.DomainAccuracy)
}

func TestPlanningCountsOnlySuccessfulMoves(t *testing.T) {
	moves := []game.MoveRecord{illegal(), invalid(), answered(8, false)}
	for i := 0; i < 9; i++ {
		moves = append(moves, answered(8, true))
	}
	moves = append(moves, goalMove())
	s := played(true, "H8", 2, moves...)

	// ten counted moves against an optimal seven
	assert.Equal(t, 70, Planning(s))

	sc := Score(s)
	assert.Equal(t, 3, sc.Errors)
	assert.Equal(t, 85, sc.Sub.RuleAdherence)
	assert.Equal(t, 90, sc.Sub.DomainAccuracy)
	assert.Equal(t, round(70+40+8*5-30), sc.Total)
}

func TestComplexityRounding(t *testing.T) {
	s := played(false, "A1", 5, answered(8, true), answered(9, true), answered(9, true), answered(10, false))
	sc := Score(s)
	assert.Equal(t, 8.7, sc.Complexity)
	// 0 progress, 5 lives, 26/3 complexity, one wrong answer
	assert.Equal(t, round(100+26.0/3*5-10), sc.Total)
}

func TestEmptyGame(t *testing.T) {
	s := played(false, "A1", 5)
	sc := Score(s)
	assert.Equal(t, SubScores{}, sc.Sub)
	assert.Equal(t, 100, sc.Total)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, round(2.5))
	assert.Equal(t, -2, round(-2.5))
	assert.Equal(t, 0, round(0.49))
}

func stage(n int, st *game.GameState) game.StageResult {
	sr := game.StageResult{Stage: game.Stages[n-1], Seed: uint32(41 + n), Cleared: st.Won, State: st}
	if st.Won {
		sr.Bonus = sr.Stage.Bonus
	}
	return sr
}

func TestScoreGauntlet(t *testing.T) {
	s1 := played(true, "H8", 5, answered(9, true), answered(9, true), goalMove())
	s2 := played(false, "B2", 0, illegal(), answered(9, true), answered(9, false), invalid())

	m := &game.MultiStageState{
		Stages:            []game.StageResult{stage(1, s1), stage(2, s2)},
		Lives:             0,
		MaxLives:          5,
		QuestionsAnswered: 4,
		QuestionsCorrect:  3,
		TotalTurns:        7,
	}

	gs := ScoreGauntlet(m)
	assert.Equal(t, 2*20+100+1*20+0, gs.Total)
	assert.Equal(t, 0, gs.BossBonus)
	assert.Equal(t, 75, gs.Accuracy)
	assert.Equal(t, 2, gs.StageReached)
	require.Len(t, gs.Stages, 2)
	assert.Equal(t, 100, gs.Stages[0].Planning)
	assert.Equal(t, 10, gs.Stages[1].Planning)
	assert.Equal(t, 55, gs.Planning)
	// seven turns, two of them illegal or unparseable
	assert.Equal(t, 71, gs.RuleScore)
}

func TestScoreGauntletBoss(t *testing.T) {
	var stages []game.StageResult
	for n := 1; n <= 4; n++ {
		stages = append(stages, stage(n, played(true, "H8", 5, answered(10, true), goalMove())))
	}
	boss := &game.BossFight{Defeated: true, Correct: [3]bool{true, true, true}}
	m := &game.MultiStageState{Stages: stages, Lives: 5, MaxLives: 5, Boss: boss, Cleared: true,
		QuestionsAnswered: 7, QuestionsCorrect: 7, TotalTurns: 8}

	gs := ScoreGauntlet(m)
	assert.True(t, gs.BossDefeated)
	assert.Equal(t, game.BossBonus, gs.BossBonus)
	assert.Equal(t, 4*20+100+200+300+400+500, gs.Total)
	assert.Equal(t, 100, gs.Accuracy)
	assert.Equal(t, 100, gs.Planning)
	assert.Equal(t, 100, gs.RuleScore)

	card := Summarize(&game.Result{Model: "m", Mode: game.ModeGauntlet, Gauntlet: m})
	assert.Equal(t, "won", card.Outcome)
	assert.Equal(t, gs.Total, card.Total)
	assert.Equal(t, 4, card.StageReached)
	assert.Equal(t, 4, card.StagesCleared)
	assert.True(t, card.BossAttempted)
}

func TestSummarizeSingle(t *testing.T) {
	s := played(false, "B2", 0, answered(9, false))
	s.Aborted = true
	card := Summarize(&game.Result{Model: "m", Mode: game.ModeSingle, Single: s})
	assert.Equal(t, "aborted", card.Outcome)
	assert.Equal(t, 1, card.StageReached)
	assert.Zero(t, card.StagesCleared)
	assert.NotNil(t, card.Single)
	assert.Nil(t, card.Gauntlet)

	assert.Equal(t, Card{}, Summarize(nil))
}

func TestSummary(t *testing.T) {
	out := Summary(GameScore{Total: 215, Progress: 7, Lives: 5, Complexity: 9,
		Sub: SubScores{Planning: 100, RuleAdherence: 100, DomainAccuracy: 100}}, 5)
	assert.Contains(t, out, "Total Score: 215\n")
	assert.Contains(t, out, "Lives Remaining: 5/5")
	assert.Contains(t, out, "Avg Complexity: 9\n")
	assert.Contains(t, out, "Domain Accuracy: 100%")
}
