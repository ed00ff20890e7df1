package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

var (
	ErrNoTransport = errors.New("game: transport is required")
	ErrNoPrompter  = errors.New("game: prompter is required")
)

// Config wires an Engine. Transport and Prompts are required; everything else
// has a default.
type Config struct {
	Transport Transport
	Prompts   Prompter
	Catalog   *questions.Catalog
	Sink      EventSink
	Policy    *questions.Policy

	// Model is carried into events and results only.
	Model string

	// MaxTurns caps each stage. Reaching it ends the game as a loss.
	MaxTurns int
	Lives    int
}

// Engine plays games against one model. It holds no per-run state, so one
// Engine may drive several runs concurrently as long as its Transport allows
// concurrent Sends.
type Engine struct {
	cfg Config
}

// New validates cfg and fills defaults.
func New(cfg Config) (*Engine, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	if cfg.Prompts == nil {
		return nil, ErrNoPrompter
	}
	if cfg.Catalog == nil {
		cfg.Catalog = questions.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = discard{}
	}
	if cfg.Policy == nil {
		p := questions.DefaultPolicy
		cfg.Policy = &p
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if cfg.Lives <= 0 {
		cfg.Lives = DefaultLives
	}
	return &Engine{cfg: cfg}, nil
}

// Result is everything one run produced.
type Result struct {
	Model      string           `json:"model"`
	Seed       uint32           `json:"seed"`
	Mode       Mode             `json:"mode"`
	Single     *GameState       `json:"single,omitempty"`
	Gauntlet   *MultiStageState `json:"gauntlet,omitempty"`
	Usage      Usage            `json:"usage"`
	Transcript []Message        `json:"transcript"`
}

// Mode distinguishes the two game variants.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeGauntlet Mode = "gauntlet"
)

// Aborted reports whether the run was cut short by a transport failure or
// cancellation.
func (r *Result) Aborted() bool {
	if r.Gauntlet != nil {
		return r.Gauntlet.Aborted
	}
	return r.Single != nil && r.Single.Aborted
}

// Err returns the failure that aborted the run, if any.
func (r *Result) Err() error {
	if r.Gauntlet != nil {
		return r.Gauntlet.AbortErr
	}
	if r.Single != nil {
		return r.Single.AbortErr
	}
	return nil
}

// run carries the per-run transcript, question session and usage totals.
type run struct {
	e        *Engine
	seed     uint32
	session  *questions.Session
	messages []Message
	usage    Usage
}

func (e *Engine) newRun(seed uint32, system string) *run {
	return &run{
		e:        e,
		seed:     seed,
		session:  questions.NewSession(e.cfg.Catalog, seed),
		messages: []Message{{Role: RoleSystem, Content: system}},
	}
}

func (r *run) emit(ev Event) {
	ev.Seed = r.seed
	r.e.cfg.Sink.Emit(ev)
}

// send appends prompt as a user turn, calls the transport and appends the
// reply. Latency is measured here when the transport does not report it.
func (r *run) send(ctx context.Context, prompt string) (Reply, error) {
	r.messages = append(r.messages, Message{Role: RoleUser, Content: prompt})
	start := time.Now()
	reply, err := r.e.cfg.Transport.Send(ctx, r.messages)
	if err != nil {
		return Reply{}, err
	}
	if reply.Latency <= 0 {
		reply.Latency = time.Since(start)
	}
	r.usage.Add(reply)
	r.messages = append(r.messages, Message{Role: RoleAssistant, Content: reply.Text})
	return reply, nil
}

func (r *run) result(mode Mode) *Result {
	return &Result{
		Model:      r.e.cfg.Model,
		Seed:       r.seed,
		Mode:       mode,
		Usage:      r.usage,
		Transcript: r.messages,
	}
}

// PlaySingle plays one single-stage game on b. The returned result is always
// complete; a transport error or cancelled ctx shows up as an aborted state.
func (e *Engine) PlaySingle(ctx context.Context, b *board.Board) *Result {
	r := e.newRun(b.Seed(), e.cfg.Prompts.System())
	s := NewGameState(b, e.cfg.Lives, e.cfg.Lives)
	r.emit(Event{Kind: EventGameStart, State: s, Lives: s.Lives, MaxLives: s.MaxLives})

	r.playStage(ctx, s, e.cfg.Prompts.Turn)

	res := r.result(ModeSingle)
	res.Single = s
	r.emit(Event{Kind: EventGameEnd, State: s, Lives: s.Lives, Turn: s.Turn, Result: res})
	return res
}

// playStage drives the turn loop until s is complete.
func (r *run) playStage(ctx context.Context, s *GameState, turnPrompt func(VisibleState) string) {
	for !s.Complete {
		if err := ctx.Err(); err != nil {
			r.abort(s, err)
			return
		}
		if s.Turn >= r.e.cfg.MaxTurns {
			s.CeilingHit = true
			s.finish(false)
			r.emit(Event{Kind: EventTurnLimit, Stage: s.Stage, StageName: s.StageName, Turn: s.Turn,
				Lives: s.Lives, MaxLives: s.MaxLives, State: s,
				Reason: fmt.Sprintf("turn limit of %d reached", r.e.cfg.MaxTurns)})
			return
		}
		r.turn(ctx, s, turnPrompt)
	}
}

func (r *run) abort(s *GameState, err error) {
	s.abort(err)
	r.emit(Event{Kind: EventAbort, Stage: s.Stage, Turn: s.Turn, Lives: s.Lives, State: s, Err: err})
}

func (r *run) turn(ctx context.Context, s *GameState, turnPrompt func(VisibleState) string) {
	s.Turn++
	s.phase = AwaitingMove
	v := Visible(s)
	r.emit(Event{Kind: EventTurnStart, Stage: s.Stage, StageName: s.StageName, Turn: s.Turn,
		Lives: s.Lives, MaxLives: s.MaxLives, Visible: &v, State: s})

	reply, err := r.send(ctx, turnPrompt(v))
	if err != nil {
		r.abort(s, fmt.Errorf("move request: %w", err))
		return
	}

	move := ParseMove(reply.Text)
	r.emit(Event{Kind: EventResponse, Stage: s.Stage, Turn: s.Turn, Raw: reply.Text, Move: &move})

	rec := MoveRecord{
		Turn:         s.Turn,
		Stage:        s.Stage,
		From:         s.Position,
		Reasoning:    move.Reasoning,
		ResponseTime: reply.Latency,
	}

	if !move.Valid {
		rec.Invalid = true
		rec.Violation = move.Err.Error()
		s.InvalidResponses++
		s.loseLife()
		s.Moves = append(s.Moves, rec)
		r.emit(Event{Kind: EventInvalidResponse, Stage: s.Stage, Turn: s.Turn, Lives: s.Lives,
			MaxLives: s.MaxLives, Reason: rec.Violation, Err: move.Err})
		return
	}

	to := *move.Target
	rec.Avatar = move.Avatar
	rec.To = &to

	if viol := avatar.Adjudicate(move.Avatar, s.Position, to, s.Board, s.LastAvatar); viol != nil {
		rec.Illegal = true
		rec.Violation = viol.Message
		s.IllegalMoves++
		s.loseLife()
		s.Moves = append(s.Moves, rec)
		r.emit(Event{Kind: EventIllegalMove, Stage: s.Stage, Turn: s.Turn, Lives: s.Lives,
			MaxLives: s.MaxLives, Reason: viol.Message, Err: viol})
		return
	}

	if to == board.Goal {
		s.Position = to
		s.LastAvatar = move.Avatar
		rec.Correct = boolPtr(true)
		s.Moves = append(s.Moves, rec)
		s.finish(true)
		r.emit(Event{Kind: EventGoal, Stage: s.Stage, Turn: s.Turn, Lives: s.Lives, State: s})
		return
	}

	q, ok := s.Board.QuestionFor(to, r.session)
	if !ok {
		// only the start square gets here; stepping back costs nothing
		s.Position = to
		s.LastAvatar = move.Avatar
		rec.Correct = boolPtr(true)
		s.Moves = append(s.Moves, rec)
		return
	}

	rec.Question = &q
	s.phase = AwaitingAnswer
	r.emit(Event{Kind: EventQuestion, Stage: s.Stage, Turn: s.Turn, Question: &q})

	reply, err = r.send(ctx, r.e.cfg.Prompts.Question(q))
	if err != nil {
		// the question was shown; keep the move unanswered
		s.Moves = append(s.Moves, rec)
		r.abort(s, fmt.Errorf("answer request: %w", err))
		return
	}
	rec.ResponseTime += reply.Latency

	answer, reasoning := ParseAnswer(reply.Text)
	rec.Answer = answer
	if reasoning != "" {
		rec.Reasoning = strings.TrimSpace(rec.Reasoning + "\n\nAnswer reasoning: " + reasoning)
	}
	s.QuestionsAnswered++

	correct := r.e.cfg.Policy.Validate(q, answer)
	rec.Correct = boolPtr(correct)
	if correct {
		s.QuestionsCorrect++
		s.Position = to
		s.LastAvatar = move.Avatar
		s.phase = AwaitingMove
	} else {
		s.loseLife()
		if !s.Complete {
			s.phase = AwaitingMove
		}
	}
	s.Moves = append(s.Moves, rec)
	r.emit(Event{Kind: EventAnswer, Stage: s.Stage, Turn: s.Turn, Lives: s.Lives, MaxLives: s.MaxLives,
		Raw: reply.Text, Question: &q, Answer: answer, Correct: correct})
}
