// Package store keeps one summary row per benchmarked game in SQLite. Move
// logs stay in flat files; only the scored outcome is persisted here.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("store: run not found")

// DB is the run store interface.
type DB interface {
	Close() error
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, query RunsQuery) (*RunsList, error)
	Leaderboard(ctx context.Context, mode string) ([]Standing, error)
}

// Run is the persisted summary of one model's game.
type Run struct {
	ID                string          `json:"id"`
	BenchmarkID       string          `json:"benchmark_id"`
	Model             string          `json:"model"`
	ModelName         string          `json:"model_name"`
	Mode              string          `json:"mode"`
	Seed              uint32          `json:"seed"`
	Outcome           string          `json:"outcome"`
	TotalScore        int             `json:"total_score"`
	Planning          int             `json:"planning"`
	RuleAdherence     int             `json:"rule_adherence"`
	Accuracy          int             `json:"accuracy"`
	Lives             int             `json:"lives"`
	MaxLives          int             `json:"max_lives"`
	StageReached      int             `json:"stage_reached"`
	StagesCleared     int             `json:"stages_cleared"`
	BossAttempted     bool            `json:"boss_attempted"`
	BossDefeated      bool            `json:"boss_defeated"`
	Won               bool            `json:"won"`
	Aborted           bool            `json:"aborted"`
	Turns             int             `json:"turns"`
	QuestionsAnswered int             `json:"questions_answered"`
	QuestionsCorrect  int             `json:"questions_correct"`
	Calls             int             `json:"calls"`
	TotalTokens       int             `json:"total_tokens"`
	Cost              decimal.Decimal `json:"cost"`
	Elapsed           time.Duration   `json:"elapsed_ns"`
	LogPath           string          `json:"log_path,omitempty"`
	Error             string          `json:"error,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// RunsQuery filters and pages ListRuns.
type RunsQuery struct {
	Model   string `json:"model,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RunsList is one page of runs, newest first.
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// Standing is a model's leaderboard line: the columns of its best run plus
// aggregates over every run.
type Standing struct {
	Model         string    `json:"model"`
	ModelName     string    `json:"model_name"`
	BestScore     int       `json:"best_score"`
	StagesCleared int       `json:"stages_cleared"`
	Lives         int       `json:"lives"`
	MaxLives      int       `json:"max_lives"`
	Accuracy      int       `json:"accuracy"`
	BossDefeated  bool      `json:"boss_defeated"`
	BossAttempted bool      `json:"boss_attempted"`
	Runs          int       `json:"runs"`
	Wins          int       `json:"wins"`
	LastRunAt     time.Time `json:"last_run_at"`
}
