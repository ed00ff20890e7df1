package game

import (
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// EventKind names a point in the run the engine reports on.
type EventKind string

const (
	EventGameStart       EventKind = "game_start"
	EventStageStart      EventKind = "stage_start"
	EventTurnStart       EventKind = "turn_start"
	EventResponse        EventKind = "response"
	EventInvalidResponse EventKind = "invalid_response"
	EventIllegalMove     EventKind = "illegal_move"
	EventQuestion        EventKind = "question"
	EventAnswer          EventKind = "answer"
	EventGoal            EventKind = "goal"
	EventTurnLimit       EventKind = "turn_limit"
	EventStageEnd        EventKind = "stage_end"
	EventBossStart       EventKind = "boss_start"
	EventBossResult      EventKind = "boss_result"
	EventAbort           EventKind = "abort"
	EventGameEnd         EventKind = "game_end"
)

// Event is a data record describing something that happened. Which fields
// are set depends on Kind.
type Event struct {
	Kind      EventKind
	Seed      uint32
	Stage     int
	StageName string
	Turn      int
	Lives     int
	MaxLives  int

	Visible  *VisibleState
	Raw      string
	Move     *ParsedMove
	Question *questions.Question
	Answer   string
	Correct  bool
	Reason   string

	State    *GameState
	Gauntlet *MultiStageState
	Boss     *BossFight
	Result   *Result
	Err      error
}

// EventSink receives engine events. Emit must not block for long; the turn
// loop waits on it.
type EventSink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(e Event)

// Emit implements EventSink
func (f SinkFunc) Emit(e Event) { f(e) }

// MultiSink fans every event out to each sink in order.
type MultiSink []EventSink

// Emit implements EventSink
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

type discard struct{}

func (discard) Emit(Event) {}
