package game

import (
	"context"
	"fmt"
	"time"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// Stage describes one gauntlet board.
type Stage struct {
	Number  int           `json:"number"`
	Name    string        `json:"name"`
	Pattern board.Pattern `json:"pattern"`
	Boss    bool          `json:"boss"`
	Bonus   int           `json:"bonus"`
}

// Stages is the fixed gauntlet sequence.
var Stages = []Stage{
	{Number: 1, Name: "The Awakening", Pattern: board.Scattered, Bonus: 100},
	{Number: 2, Name: "The Labyrinth", Pattern: board.Corridor, Bonus: 200},
	{Number: 3, Name: "The Maze", Pattern: board.Maze, Bonus: 300},
	{Number: 4, Name: "The Final Stand", Pattern: board.Fortress, Boss: true, Bonus: 400},
}

// BossBonus is awarded for answering all three boss questions correctly.
const BossBonus = 500

// StageSeed derives the board seed for stage n (1-based).
func StageSeed(base uint32, n int) uint32 {
	return base + uint32(n-1)
}

// StageResult is the outcome of one stage. Bonus is zero unless the stage
// was cleared.
type StageResult struct {
	Stage   Stage      `json:"stage"`
	Seed    uint32     `json:"seed"`
	Cleared bool       `json:"cleared"`
	Bonus   int        `json:"bonus"`
	State   *GameState `json:"state"`
}

// BossFight records the single combined boss exchange.
type BossFight struct {
	Questions    []questions.Question       `json:"questions"`
	Answers      [questions.BossSize]string `json:"answers"`
	Correct      [questions.BossSize]bool   `json:"correct"`
	Reasoning    string                     `json:"reasoning"`
	Defeated     bool                       `json:"defeated"`
	ResponseTime time.Duration              `json:"response_time_ns"`
}

// CorrectCount returns how many boss answers were right
func (b *BossFight) CorrectCount() int {
	n := 0
	for _, ok := range b.Correct {
		if ok {
			n++
		}
	}
	return n
}

// MultiStageState aggregates a gauntlet run. Lives carry across stages and
// are never replenished.
type MultiStageState struct {
	BaseSeed      uint32        `json:"base_seed"`
	Stages        []StageResult `json:"stages"`
	CurrentStage  int           `json:"current_stage"`
	Lives         int           `json:"lives"`
	StartingLives int           `json:"starting_lives"`
	MaxLives      int           `json:"max_lives"`

	QuestionsAnswered int `json:"questions_answered"`
	QuestionsCorrect  int `json:"questions_correct"`
	TotalTurns        int `json:"total_turns"`

	Boss *BossFight `json:"boss,omitempty"`

	Complete bool  `json:"complete"`
	Cleared  bool  `json:"cleared"`
	Aborted  bool  `json:"aborted"`
	AbortErr error `json:"-"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// StageReached is the highest stage the run entered.
func (m *MultiStageState) StageReached() int {
	return len(m.Stages)
}

// BossDefeated reports whether the boss encounter was won
func (m *MultiStageState) BossDefeated() bool {
	return m.Boss != nil && m.Boss.Defeated
}

// Won is true only when every stage is cleared and the boss defeated.
func (m *MultiStageState) Won() bool {
	return m.Cleared && m.BossDefeated()
}

func (m *MultiStageState) absorb(sr StageResult) {
	s := sr.State
	m.Stages = append(m.Stages, sr)
	m.Lives = s.Lives
	m.QuestionsAnswered += s.QuestionsAnswered
	m.QuestionsCorrect += s.QuestionsCorrect
	m.TotalTurns += s.Turn
}

func (m *MultiStageState) finish() {
	m.Complete = true
	m.EndedAt = time.Now()
}

// PlayGauntlet runs the four stages in order on one transcript and one life
// pool, then the boss fight if stage 4 is cleared. Losing any stage ends the
// run.
func (e *Engine) PlayGauntlet(ctx context.Context, baseSeed uint32) *Result {
	r := e.newRun(baseSeed, e.cfg.Prompts.GauntletSystem(Stages[0]))
	m := &MultiStageState{
		BaseSeed:      baseSeed,
		Lives:         e.cfg.Lives,
		StartingLives: e.cfg.Lives,
		MaxLives:      e.cfg.Lives,
		StartedAt:     time.Now(),
	}
	r.emit(Event{Kind: EventGameStart, Gauntlet: m, Lives: m.Lives, MaxLives: m.MaxLives})

	for i, stage := range Stages {
		if i > 0 {
			// later stages get their briefing inline so the transcript stays whole
			r.messages = append(r.messages, Message{Role: RoleUser, Content: e.cfg.Prompts.GauntletSystem(stage)})
		}
		m.CurrentStage = stage.Number
		seed := StageSeed(baseSeed, stage.Number)
		s := NewGameState(board.GenerateStage(seed, stage.Pattern), m.Lives, m.MaxLives)
		s.Stage = stage.Number
		s.StageName = stage.Name
		r.emit(Event{Kind: EventStageStart, Stage: stage.Number, StageName: stage.Name,
			Lives: s.Lives, MaxLives: s.MaxLives, State: s, Gauntlet: m})

		r.playStage(ctx, s, e.cfg.Prompts.StageTurn)

		sr := StageResult{Stage: stage, Seed: seed, Cleared: s.Won, State: s}
		if s.Won {
			sr.Bonus = stage.Bonus
		}
		m.absorb(sr)
		r.emit(Event{Kind: EventStageEnd, Stage: stage.Number, StageName: stage.Name,
			Lives: m.Lives, MaxLives: m.MaxLives, State: s, Gauntlet: m})

		if s.Aborted {
			m.Aborted = true
			m.AbortErr = s.AbortErr
			break
		}
		if !s.Won {
			break
		}
		if stage.Boss {
			m.Cleared = true
			r.boss(ctx, m)
		}
	}

	m.finish()
	res := r.result(ModeGauntlet)
	res.Gauntlet = m
	r.emit(Event{Kind: EventGameEnd, Gauntlet: m, Lives: m.Lives, Turn: m.TotalTurns, Result: res})
	return res
}

// boss plays the all-or-nothing encounter: three questions in one prompt,
// one response, defeated only if every answer validates.
func (r *run) boss(ctx context.Context, m *MultiStageState) {
	qs := r.session.Boss()
	fight := &BossFight{Questions: qs}
	r.emit(Event{Kind: EventBossStart, Stage: m.CurrentStage, Lives: m.Lives, Boss: fight, Gauntlet: m})

	if err := ctx.Err(); err != nil {
		r.abortGauntlet(m, err)
		return
	}
	reply, err := r.send(ctx, r.e.cfg.Prompts.Boss(qs))
	if err != nil {
		r.abortGauntlet(m, fmt.Errorf("boss request: %w", err))
		return
	}
	m.Boss = fight
	fight.ResponseTime = reply.Latency

	answers, reasoning := ParseBoss(reply.Text)
	fight.Answers = answers
	fight.Reasoning = reasoning
	fight.Defeated = len(qs) == questions.BossSize
	for i, q := range qs {
		if i >= questions.BossSize {
			break
		}
		fight.Correct[i] = r.e.cfg.Policy.Validate(q, answers[i])
		fight.Defeated = fight.Defeated && fight.Correct[i]
	}
	m.QuestionsAnswered += len(qs)
	m.QuestionsCorrect += fight.CorrectCount()

	r.emit(Event{Kind: EventBossResult, Stage: m.CurrentStage, Lives: m.Lives, Raw: reply.Text,
		Boss: fight, Correct: fight.Defeated, Gauntlet: m})
}

func (r *run) abortGauntlet(m *MultiStageState, err error) {
	m.Aborted = true
	m.AbortErr = err
	r.emit(Event{Kind: EventAbort, Stage: m.CurrentStage, Lives: m.Lives, Gauntlet: m, Err: err})
}
