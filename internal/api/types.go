package api

import (
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (e APIError) Error() string {
	return e.Message
}

// Error types
const (
	ErrTypeValidation      = "validation_error"
	ErrTypeInvalidSeed     = "invalid_seed"
	ErrTypeUnknownQuestion = "unknown_question"
	ErrTypeNotFound        = "not_found"
	ErrTypeInternal        = "internal_error"
	ErrTypeUnavailable     = "service_unavailable"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// AvatarInfo describes one movement piece.
type AvatarInfo struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Offsets     [][2]int `json:"offsets"`
}

// BoardResponse is a generated board.
type BoardResponse struct {
	Seed            uint32             `json:"seed"`
	Pattern         board.Pattern      `json:"pattern"`
	Stage           int                `json:"stage,omitempty"`
	StageName       string             `json:"stage_name,omitempty"`
	OptimalDistance int                `json:"optimal_distance"`
	Start           board.Coordinate   `json:"start"`
	Goal            board.Coordinate   `json:"goal"`
	Voids           []board.Coordinate `json:"voids"`
	Squares         []board.Square     `json:"squares"`
}

// ValidateAnswerRequest asks whether answer is correct for a catalog question.
type ValidateAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// ValidateAnswerResponse reports the verdict.
type ValidateAnswerResponse struct {
	QuestionID string           `json:"question_id"`
	Correct    bool             `json:"correct"`
	Format     questions.Format `json:"format"`
}

// QuestionStatsResponse wraps the catalog summary.
type QuestionStatsResponse struct {
	questions.Stats
	Domains []questions.Domain `json:"domains"`
}

// LeaderboardResponse lists standings for one mode.
type LeaderboardResponse struct {
	Mode      string           `json:"mode"`
	Standings []store.Standing `json:"standings"`
}
