// Package bench runs the gauntlet against a list of models and files the
// outcome: game logs, the run store and the README leaderboard.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/gamelog"
	"github.com/MJE43/cognitive-gauntlet/internal/leaderboard"
	"github.com/MJE43/cognitive-gauntlet/internal/openrouter"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
	"github.com/MJE43/cognitive-gauntlet/internal/scoring"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

// ErrNoModels is returned by Run when the model list is empty.
var ErrNoModels = errors.New("bench: no models configured")

// TransportFactory builds the transport a model is played through.
type TransportFactory func(ctx context.Context, model string) (game.Transport, error)

// Observer is told when each model starts and finishes. Calls may come from
// several goroutines when Parallel > 1.
type Observer interface {
	ModelStarted(model string, index, total int)
	ModelFinished(r ModelResult, index, total int)
}

// Config drives a Runner. Store, README and Observer are optional.
type Config struct {
	Mode     game.Mode
	Seed     *uint32
	MaxTurns int
	Lives    int
	Parallel int
	LogsDir  string

	Transports TransportFactory
	Prompts    game.Prompter
	Catalog    *questions.Catalog
	Policy     *questions.Policy

	Store    store.DB
	README   *leaderboard.README
	Observer Observer
	Logger   logrus.FieldLogger
}

// ModelResult is one model's scored game. Err collects failures to build
// the transport or to file the result; the game itself may still be usable.
type ModelResult struct {
	RunID     string        `json:"run_id"`
	Model     string        `json:"model"`
	ModelName string        `json:"model_name"`
	Result    *game.Result  `json:"result,omitempty"`
	Card      scoring.Card  `json:"card"`
	LogPath   string        `json:"log_path,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Err       error         `json:"-"`
}

// Failed reports whether the model produced no playable result
func (r ModelResult) Failed() bool { return r.Result == nil || r.Result.Aborted() }

// BenchmarkResult is the outcome of one Run.
type BenchmarkResult struct {
	ID        string        `json:"id"`
	Seed      uint32        `json:"seed"`
	Mode      game.Mode     `json:"mode"`
	Timestamp time.Time     `json:"timestamp"`
	Results   []ModelResult `json:"results"`
}

// Runner plays models one benchmark at a time.
type Runner struct {
	cfg Config
	log logrus.FieldLogger
	now func() time.Time
}

// NewRunner validates cfg and fills defaults.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Transports == nil {
		return nil, errors.New("bench: no transport factory")
	}
	if cfg.Prompts == nil {
		return nil, game.ErrNoPrompter
	}
	if cfg.Mode == "" {
		cfg.Mode = game.ModeGauntlet
	}
	if cfg.Mode != game.ModeSingle && cfg.Mode != game.ModeGauntlet {
		return nil, fmt.Errorf("bench: unknown mode %q", cfg.Mode)
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = "logs"
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Runner{cfg: cfg, log: log, now: time.Now}, nil
}

// Seed returns the configured seed or draws a fresh one.
func (r *Runner) Seed() uint32 {
	if r.cfg.Seed != nil {
		return *r.cfg.Seed
	}
	return RandomSeed()
}

// RandomSeed draws a board seed in [0, 1e6).
func RandomSeed() uint32 {
	return uint32(rand.IntN(1_000_000))
}

// Run plays every model on the same seed. Per-model failures are recorded
// in that model's result and the queue carries on; only cancellation of ctx
// stops models that have not started yet. Results keep the order of models.
func (r *Runner) Run(ctx context.Context, models []string) (*BenchmarkResult, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	out := &BenchmarkResult{
		ID:        uuid.New().String(),
		Seed:      r.Seed(),
		Mode:      r.cfg.Mode,
		Timestamp: r.now().UTC(),
		Results:   make([]ModelResult, len(models)),
	}
	log := r.log.WithFields(logrus.Fields{"benchmark": out.ID, "seed": out.Seed, "mode": string(out.Mode)})
	log.WithField("models", len(models)).Info("benchmark started")

	var (
		g       errgroup.Group
		started = make([]bool, len(models))
		mu      sync.Mutex
	)
	g.SetLimit(r.cfg.Parallel)
	for i, model := range models {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			mu.Lock()
			started[i] = true
			mu.Unlock()

			if r.cfg.Observer != nil {
				r.cfg.Observer.ModelStarted(model, i+1, len(models))
			}
			res := r.playModel(ctx, out, model)
			out.Results[i] = res
			if r.cfg.Observer != nil {
				r.cfg.Observer.ModelFinished(res, i+1, len(models))
			}
			return nil
		})
	}
	_ = g.Wait()

	kept := out.Results[:0]
	for i, res := range out.Results {
		if started[i] {
			kept = append(kept, res)
		}
	}
	out.Results = kept

	log.WithField("completed", len(out.Results)).Info("benchmark finished")
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("bench: %w", err)
	}
	return out, nil
}

func (r *Runner) playModel(ctx context.Context, bench *BenchmarkResult, model string) ModelResult {
	start := r.now()
	mr := ModelResult{Model: model, ModelName: openrouter.DisplayName(model)}
	log := r.log.WithFields(logrus.Fields{"benchmark": bench.ID, "model": model})

	transport, err := r.cfg.Transports(ctx, model)
	if err != nil {
		mr.Err = fmt.Errorf("bench: transport for %s: %w", model, err)
		log.WithError(err).Error("could not build transport")
		return mr
	}

	fileLog := gamelog.NewFileLogger(r.cfg.LogsDir, model, bench.Seed)
	eng, err := game.New(game.Config{
		Transport: transport,
		Prompts:   r.cfg.Prompts,
		Catalog:   r.cfg.Catalog,
		Policy:    r.cfg.Policy,
		Sink:      game.MultiSink{fileLog, gamelog.NewLogrusSink(r.log, model)},
		Model:     model,
		MaxTurns:  r.cfg.MaxTurns,
		Lives:     r.cfg.Lives,
	})
	if err != nil {
		mr.Err = fmt.Errorf("bench: engine for %s: %w", model, err)
		return mr
	}

	var res *game.Result
	switch bench.Mode {
	case game.ModeSingle:
		res = eng.PlaySingle(ctx, board.Generate(bench.Seed))
	default:
		res = eng.PlayGauntlet(ctx, bench.Seed)
	}
	mr.Result = res
	mr.Card = scoring.Summarize(res)
	mr.Elapsed = r.now().Sub(start)

	var errs error
	if res.Aborted() {
		errs = multierr.Append(errs, fmt.Errorf("bench: %s aborted: %w", model, res.Err()))
	}
	path, err := fileLog.Save()
	errs = multierr.Append(errs, err)
	mr.LogPath = path

	errs = multierr.Append(errs, r.file(ctx, bench, &mr))
	mr.Err = errs

	entry := log.WithFields(logrus.Fields{"score": mr.Card.Total, "outcome": mr.Card.Outcome})
	if errs != nil {
		entry.WithError(errs).Warn("model finished with errors")
	} else {
		entry.Info("model finished")
	}
	return mr
}

// file saves the summary row and updates the README. Both are attempted even
// if one fails. Aborted games stay out of the leaderboard.
func (r *Runner) file(ctx context.Context, bench *BenchmarkResult, mr *ModelResult) error {
	var errs error
	if r.cfg.Store != nil {
		row := toRun(bench, mr)
		if err := r.cfg.Store.SaveRun(context.WithoutCancel(ctx), row); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			mr.RunID = row.ID
		}
	}
	if r.cfg.README != nil && !mr.Card.Aborted && bench.Mode == game.ModeGauntlet {
		errs = multierr.Append(errs, r.cfg.README.Record(toOutcome(bench, mr)))
	}
	return errs
}

func toRun(bench *BenchmarkResult, mr *ModelResult) *store.Run {
	c := mr.Card
	run := &store.Run{
		BenchmarkID:   bench.ID,
		Model:         mr.Model,
		ModelName:     mr.ModelName,
		Mode:          string(bench.Mode),
		Seed:          bench.Seed,
		Outcome:       c.Outcome,
		TotalScore:    c.Total,
		Planning:      c.Planning,
		RuleAdherence: c.RuleAdherence,
		Accuracy:      c.Accuracy,
		Lives:         c.Lives,
		MaxLives:      c.MaxLives,
		StageReached:  c.StageReached,
		StagesCleared: c.StagesCleared,
		BossAttempted: c.BossAttempted,
		BossDefeated:  c.BossDefeated,
		Won:           c.Won,
		Aborted:       c.Aborted,
		Turns:         c.Turns,
		Elapsed:       mr.Elapsed,
		LogPath:       mr.LogPath,
	}
	if res := mr.Result; res != nil {
		run.Calls = res.Usage.Calls
		run.TotalTokens = res.Usage.TotalTokens
		run.Cost = res.Usage.Cost
		run.QuestionsAnswered, run.QuestionsCorrect = answered(res)
		if err := res.Err(); err != nil {
			run.Error = err.Error()
		}
	}
	return run
}

func answered(res *game.Result) (int, int) {
	switch {
	case res.Gauntlet != nil:
		return res.Gauntlet.QuestionsAnswered, res.Gauntlet.QuestionsCorrect
	case res.Single != nil:
		return res.Single.QuestionsAnswered, res.Single.QuestionsCorrect
	}
	return 0, 0
}

func toOutcome(bench *BenchmarkResult, mr *ModelResult) leaderboard.Outcome {
	c := mr.Card
	return leaderboard.Outcome{
		ModelName:     mr.ModelName,
		Score:         c.Total,
		StagesCleared: c.StagesCleared,
		TotalStages:   len(game.Stages),
		Lives:         c.Lives,
		MaxLives:      c.MaxLives,
		Accuracy:      c.Accuracy,
		BossAttempted: c.BossAttempted,
		BossDefeated:  c.BossDefeated,
		Date:          bench.Timestamp,
	}
}
