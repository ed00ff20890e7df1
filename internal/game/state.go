package game

import (
	"time"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// DefaultLives is the life pool a run starts with.
const DefaultLives = 5

// DefaultMaxTurns is the turn ceiling applied to each stage.
const DefaultMaxTurns = 100

// Phase is where a game sits in its turn loop.
type Phase string

const (
	AwaitingMove   Phase = "awaiting-move"
	AwaitingAnswer Phase = "awaiting-answer"
	Complete       Phase = "complete"
)

// MoveRecord is the append-only log entry for one turn. Nullable fields are
// nil (or avatar.None) when the turn never got that far.
type MoveRecord struct {
	Turn         int                 `json:"turn"`
	Stage        int                 `json:"stage,omitempty"`
	From         board.Coordinate    `json:"from"`
	To           *board.Coordinate   `json:"to"`
	Avatar       avatar.Avatar       `json:"avatar,omitempty"`
	Question     *questions.Question `json:"question"`
	Answer       string              `json:"answer,omitempty"`
	Correct      *bool               `json:"correct"`
	Illegal      bool                `json:"illegal"`
	Invalid      bool                `json:"invalid"`
	Violation    string              `json:"violation,omitempty"`
	Reasoning    string              `json:"reasoning,omitempty"`
	ResponseTime time.Duration       `json:"response_time_ns"`
}

// GameState is one stage of play. The engine's turn loop is its only writer;
// once Complete is set it is never touched again.
type GameState struct {
	Board     *board.Board `json:"-"`
	Stage     int          `json:"stage,omitempty"`
	StageName string       `json:"stage_name,omitempty"`

	Position      board.Coordinate `json:"position"`
	Lives         int              `json:"lives"`
	StartingLives int              `json:"starting_lives"`
	MaxLives      int              `json:"max_lives"`
	Turn          int              `json:"turn"`
	LastAvatar    avatar.Avatar    `json:"last_avatar,omitempty"`

	QuestionsAnswered int `json:"questions_answered"`
	QuestionsCorrect  int `json:"questions_correct"`
	IllegalMoves      int `json:"illegal_moves"`
	InvalidResponses  int `json:"invalid_responses"`

	Moves []MoveRecord `json:"moves"`

	Complete   bool  `json:"complete"`
	Won        bool  `json:"won"`
	CeilingHit bool  `json:"ceiling_hit"`
	Aborted    bool  `json:"aborted"`
	AbortErr   error `json:"-"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	phase Phase
}

// NewGameState places a fresh game on b at Start with the given lives.
func NewGameState(b *board.Board, lives, maxLives int) *GameState {
	return &GameState{
		Board:         b,
		Position:      board.Start,
		Lives:         lives,
		StartingLives: lives,
		MaxLives:      maxLives,
		StartedAt:     time.Now(),
		phase:         AwaitingMove,
	}
}

// Phase reports the state machine position
func (s *GameState) Phase() Phase {
	if s.Complete {
		return Complete
	}
	if s.phase == "" {
		return AwaitingMove
	}
	return s.phase
}

// Errors counts wrong answers, illegal moves and invalid responses.
func (s *GameState) Errors() int {
	return (s.QuestionsAnswered - s.QuestionsCorrect) + s.IllegalMoves + s.InvalidResponses
}

// Outcome is a one-word result tag for logs and tables.
func (s *GameState) Outcome() string {
	switch {
	case s.Aborted:
		return "aborted"
	case s.Won:
		return "won"
	case s.Complete:
		return "lost"
	}
	return "in-progress"
}

func (s *GameState) loseLife() {
	s.Lives--
	if s.Lives <= 0 {
		s.Lives = 0
		s.finish(false)
	}
}

func (s *GameState) finish(won bool) {
	s.Complete = true
	s.Won = won
	s.phase = Complete
	s.EndedAt = time.Now()
}

func (s *GameState) abort(err error) {
	s.Aborted = true
	s.AbortErr = err
	s.finish(false)
}

func boolPtr(b bool) *bool { return &b }
