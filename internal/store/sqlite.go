package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteDB implements DB on a single SQLite connection.
type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

var _ DB = (*SQLiteDB)(nil)

// NewSQLiteDB opens (or creates) the database at path. ":memory:" gives a
// private in-memory database. Call Migrate before use.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// writes are serialised; one connection also keeps :memory: alive
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: enable WAL: %w", err)
		}
	}
	return &SQLiteDB{db: db, now: time.Now}, nil
}

// Open is NewSQLiteDB followed by Migrate.
func Open(ctx context.Context, path string) (*SQLiteDB, error) {
	s, err := NewSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded goose migrations.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("store: migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const runColumns = `id, benchmark_id, model, model_name, mode, seed, outcome,
	total_score, planning, rule_adherence, accuracy, lives, max_lives,
	stage_reached, stages_cleared, boss_attempted, boss_defeated, won, aborted,
	turns, questions_answered, questions_correct, calls, total_tokens, cost,
	elapsed_ms, log_path, error, created_at`

// SaveRun inserts run, assigning an id and timestamp when they are unset.
func (s *SQLiteDB) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.BenchmarkID, run.Model, run.ModelName, run.Mode, int64(run.Seed), run.Outcome,
		run.TotalScore, run.Planning, run.RuleAdherence, run.Accuracy, run.Lives, run.MaxLives,
		run.StageReached, run.StagesCleared, run.BossAttempted, run.BossDefeated, run.Won, run.Aborted,
		run.Turns, run.QuestionsAnswered, run.QuestionsCorrect, run.Calls, run.TotalTokens, run.Cost.String(),
		run.Elapsed.Milliseconds(), run.LogPath, run.Error, run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", run.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                                  Run
		seed, elapsedMS, createdMS           int64
		bossAttempted, bossDefeated, won, ab int
	)
	err := row.Scan(
		&run.ID, &run.BenchmarkID, &run.Model, &run.ModelName, &run.Mode, &seed, &run.Outcome,
		&run.TotalScore, &run.Planning, &run.RuleAdherence, &run.Accuracy, &run.Lives, &run.MaxLives,
		&run.StageReached, &run.StagesCleared, &bossAttempted, &bossDefeated, &won, &ab,
		&run.Turns, &run.QuestionsAnswered, &run.QuestionsCorrect, &run.Calls, &run.TotalTokens, &run.Cost,
		&elapsedMS, &run.LogPath, &run.Error, &createdMS,
	)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint32(seed)
	run.BossAttempted = bossAttempted != 0
	run.BossDefeated = bossDefeated != 0
	run.Won = won != 0
	run.Aborted = ab != 0
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.CreatedAt = time.UnixMilli(createdMS).UTC()
	return run, nil
}

// GetRun returns the run with id, or ErrNotFound.
func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("store: get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns a page of runs, newest first.
func (s *SQLiteDB) ListRuns(ctx context.Context, query RunsQuery) (*RunsList, error) {
	var (
		where []string
		args  []any
	)
	if query.Model != "" {
		where = append(where, "model = ?")
		args = append(args, query.Model)
	}
	if query.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, query.Mode)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("store: count runs: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs `+whereClause+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, query.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// Leaderboard ranks models by their best non-aborted run, optionally
// restricted to one mode. Ties go to the model that set its score first.
func (s *SQLiteDB) Leaderboard(ctx context.Context, mode string) ([]Standing, error) {
	filter := "WHERE aborted = 0"
	var args []any
	if mode != "" {
		filter += " AND mode = ?"
		args = append(args, mode)
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH ranked AS (
			SELECT *,
				ROW_NUMBER() OVER (PARTITION BY model ORDER BY total_score DESC, created_at ASC) AS rn,
				COUNT(*) OVER (PARTITION BY model) AS n_runs,
				SUM(won) OVER (PARTITION BY model) AS n_wins,
				MAX(boss_defeated) OVER (PARTITION BY model) AS any_boss_win,
				MAX(boss_attempted) OVER (PARTITION BY model) AS any_boss_try,
				MAX(created_at) OVER (PARTITION BY model) AS last_run
			FROM runs `+filter+`
		)
		SELECT model, model_name, total_score, stages_cleared, lives, max_lives, accuracy,
			any_boss_win, any_boss_try, n_runs, n_wins, last_run
		FROM ranked WHERE rn = 1
		ORDER BY total_score DESC, created_at ASC, model ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	defer rows.Close()

	out := []Standing{}
	for rows.Next() {
		var (
			st               Standing
			bossWin, bossTry int
			lastMS           int64
		)
		if err := rows.Scan(&st.Model, &st.ModelName, &st.BestScore, &st.StagesCleared, &st.Lives,
			&st.MaxLives, &st.Accuracy, &bossWin, &bossTry, &st.Runs, &st.Wins, &lastMS); err != nil {
			return nil, fmt.Errorf("store: scan standing: %w", err)
		}
		st.BossDefeated = bossWin != 0
		st.BossAttempted = bossTry != 0
		st.LastRunAt = time.UnixMilli(lastMS).UTC()
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: leaderboard: %w", err)
	}
	return out, nil
}
