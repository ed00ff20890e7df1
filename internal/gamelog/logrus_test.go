package gamelog

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

func TestLogrusSinkFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	sink := NewLogrusSink(logger, "openai/gpt-4o")

	sink.Emit(game.Event{Kind: game.EventIllegalMove, Seed: 42, Stage: 3, Turn: 7, Lives: 2, Reason: "Epoch cannot move"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "illegal move", entry.Message)
	assert.Equal(t, "openai/gpt-4o", entry.Data["model"])
	assert.Equal(t, uint32(42), entry.Data["seed"])
	assert.Equal(t, 3, entry.Data["stage"])
	assert.Equal(t, 7, entry.Data["turn"])
	assert.Equal(t, "illegal_move", entry.Data["event"])
	assert.Equal(t, "Epoch cannot move", entry.Data["reason"])
}

func TestLogrusSinkOmitsZeroStageAndTurn(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewLogrusSink(logger, "m")

	sink.Emit(game.Event{Kind: game.EventGameStart, Seed: 1, Lives: 5})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	_, hasStage := entry.Data["stage"]
	_, hasTurn := entry.Data["turn"]
	assert.False(t, hasStage)
	assert.False(t, hasTurn)

	sink.Emit(game.Event{Kind: game.EventAbort, Err: errors.New("network down")})
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "network down")
}

func TestLogrusSinkTurnLimit(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := NewLogrusSink(logger, "m")

	sink.Emit(game.Event{Kind: game.EventTurnLimit, Stage: 2, Turn: 100, Lives: 3, Reason: "turn limit of 100 reached"})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "turn limit reached", entry.Message)
	assert.Equal(t, "turn_limit", entry.Data["event"])
	assert.Equal(t, "turn limit of 100 reached", entry.Data["reason"])
	assert.Equal(t, 3, entry.Data["lives"])
}

func TestLogrusSinkDebugHiddenAtInfo(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	sink := NewLogrusSink(logger, "m")

	sink.Emit(game.Event{Kind: game.EventResponse, Raw: "{}"})
	assert.Empty(t, hook.AllEntries())
}
