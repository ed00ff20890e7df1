package gamelog

import (
	"github.com/sirupsen/logrus"

	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

// LogrusSink writes engine events as structured log entries. Turn-level
// chatter goes to Debug; penalties, stage and game outcomes go to Info or
// Warn.
type LogrusSink struct {
	log   logrus.FieldLogger
	model string
}

var _ game.EventSink = (*LogrusSink)(nil)

// NewLogrusSink tags every entry with model.
func NewLogrusSink(log logrus.FieldLogger, model string) *LogrusSink {
	return &LogrusSink{log: log, model: model}
}

// Emit implements game.EventSink
func (s *LogrusSink) Emit(e game.Event) {
	entry := s.log.WithFields(logrus.Fields{
		"model": s.model,
		"seed":  e.Seed,
		"event": string(e.Kind),
	})
	if e.Stage > 0 {
		entry = entry.WithField("stage", e.Stage)
	}
	if e.Turn > 0 {
		entry = entry.WithField("turn", e.Turn)
	}

	switch e.Kind {
	case game.EventGameStart:
		entry.WithField("lives", e.Lives).Info("game started")
	case game.EventStageStart:
		entry.WithFields(logrus.Fields{"name": e.StageName, "lives": e.Lives}).Info("stage started")
	case game.EventTurnStart:
		if e.Visible != nil {
			entry = entry.WithFields(logrus.Fields{"position": e.Visible.Position.String(), "lives": e.Lives})
		}
		entry.Debug("turn started")
	case game.EventResponse:
		entry.WithField("chars", len(e.Raw)).Debug("move received")
	case game.EventInvalidResponse:
		entry.WithFields(logrus.Fields{"reason": e.Reason, "lives": e.Lives}).Warn("invalid response")
	case game.EventIllegalMove:
		entry.WithFields(logrus.Fields{"reason": e.Reason, "lives": e.Lives}).Warn("illegal move")
	case game.EventQuestion:
		if e.Question != nil {
			entry = entry.WithFields(logrus.Fields{"question": e.Question.ID, "domain": string(e.Question.Domain)})
		}
		entry.Debug("question asked")
	case game.EventAnswer:
		entry.WithFields(logrus.Fields{"correct": e.Correct, "lives": e.Lives}).Debug("answer graded")
	case game.EventGoal:
		entry.Info("goal reached")
	case game.EventTurnLimit:
		entry.WithFields(logrus.Fields{"reason": e.Reason, "lives": e.Lives}).Warn("turn limit reached")
	case game.EventStageEnd:
		cleared := e.State != nil && e.State.Won
		entry.WithFields(logrus.Fields{"cleared": cleared, "lives": e.Lives}).Info("stage finished")
	case game.EventBossStart:
		entry.Info("boss fight started")
	case game.EventBossResult:
		f := logrus.Fields{"defeated": e.Correct}
		if e.Boss != nil {
			f["correct"] = e.Boss.CorrectCount()
		}
		entry.WithFields(f).Info("boss fight finished")
	case game.EventAbort:
		entry.WithError(e.Err).Error("run aborted")
	case game.EventGameEnd:
		f := logrus.Fields{"lives": e.Lives}
		if r := e.Result; r != nil {
			f["calls"] = r.Usage.Calls
			f["tokens"] = r.Usage.TotalTokens
			f["cost"] = r.Usage.Cost.String()
			f["aborted"] = r.Aborted()
		}
		entry.WithFields(f).Info("game finished")
	}
}
