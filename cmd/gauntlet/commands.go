package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MJE43/cognitive-gauntlet/internal/api"
	"github.com/MJE43/cognitive-gauntlet/internal/bench"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/config"
	"github.com/MJE43/cognitive-gauntlet/internal/credentials"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/leaderboard"
	"github.com/MJE43/cognitive-gauntlet/internal/openrouter"
	"github.com/MJE43/cognitive-gauntlet/internal/prompt"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
	"github.com/MJE43/cognitive-gauntlet/internal/report"
	"github.com/MJE43/cognitive-gauntlet/internal/scripting"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

func keyStore() *credentials.Store {
	return credentials.New(credentials.DefaultService, credentials.DefaultFallbackPath())
}

func runBenchmark(ctx context.Context, cfg config.Config, log *logrus.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	mode := fs.String("mode", string(cfg.Mode), "single or gauntlet")
	seed := fs.String("seed", "", "board seed (random when empty)")
	models := fs.String("models", strings.Join(cfg.Models, ","), "comma-separated OpenRouter model ids")
	script := fs.String("script", cfg.Script, "JS agent file or builtin name; replaces OpenRouter")
	parallel := fs.Int("parallel", cfg.Parallel, "models played at once")
	maxTurns := fs.Int("max-turns", cfg.MaxTurns, "turn ceiling per board")
	logsDir := fs.String("logs", cfg.LogsDir, "directory for per-game logs")
	readme := fs.String("readme", cfg.README, "README whose leaderboard section is updated (empty to skip)")
	dbPath := fs.String("db", cfg.DBPath, "SQLite run store (empty to skip)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Mode = game.Mode(strings.ToLower(*mode))
	cfg.Parallel, cfg.MaxTurns = *parallel, *maxTurns
	cfg.Script, cfg.LogsDir = *script, *logsDir
	cfg.Models = config.SplitModels(*models)
	if *seed != "" {
		s, err := config.ParseSeed(*seed)
		if err != nil {
			return err
		}
		cfg.Seed = &s
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	transports, defaultModels, err := transportFactory(cfg)
	if err != nil {
		return err
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaultModels
	}
	if len(cfg.Models) == 0 {
		return fmt.Errorf("no models configured: pass -models or set %s", config.EnvModels)
	}

	catalog := questions.Default()
	if cfg.QuestionsPath != "" {
		if catalog, err = questions.LoadFile(cfg.QuestionsPath); err != nil {
			return err
		}
	}

	var db store.DB
	if *dbPath != "" {
		sq, err := store.Open(ctx, *dbPath)
		if err != nil {
			return err
		}
		defer sq.Close()
		db = sq
	}

	var lb *leaderboard.README
	if *readme != "" {
		if _, err := os.Stat(*readme); err != nil {
			log.WithField("readme", *readme).Warn("README not found, leaderboard will not be updated")
		} else {
			lb = leaderboard.NewREADME(*readme)
		}
	}

	if cfg.Seed == nil {
		s := bench.RandomSeed()
		cfg.Seed = &s
	}

	printer := report.New(stdout)
	runner, err := bench.NewRunner(bench.Config{
		Mode:       cfg.Mode,
		Seed:       cfg.Seed,
		MaxTurns:   cfg.MaxTurns,
		Parallel:   cfg.Parallel,
		LogsDir:    cfg.LogsDir,
		Transports: transports,
		Prompts:    prompt.Default,
		Catalog:    catalog,
		Store:      db,
		README:     lb,
		Observer:   printer,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	printer.Configuration(*cfg.Seed, cfg.Mode, cfg.Models, openrouter.DisplayName)
	result, err := runner.Run(ctx, cfg.Models)
	if result != nil {
		printer.Full(result, cfg.LogsDir)
	}
	return err
}

// transportFactory picks the scripted agent when a script is configured and
// OpenRouter otherwise. It also returns the model list to use when none is
// configured.
func transportFactory(cfg config.Config) (bench.TransportFactory, []string, error) {
	if cfg.Script != "" {
		name, src, err := loadScript(cfg.Script)
		if err != nil {
			return nil, nil, err
		}
		factory := func(ctx context.Context, model string) (game.Transport, error) {
			return scripting.NewAgent(ctx, model, src)
		}
		return factory, []string{"script/" + name}, nil
	}

	key, err := cfg.ResolveAPIKey(keyStore())
	if err != nil {
		return nil, nil, err
	}
	client := openrouter.NewClient(openrouter.Config{
		APIKey:      key,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	factory := func(_ context.Context, model string) (game.Transport, error) {
		return openrouter.NewTransport(client, model), nil
	}
	return factory, nil, nil
}

// loadScript reads a builtin agent by name or a JS file by path.
func loadScript(ref string) (name, src string, err error) {
	if slices.Contains(scripting.Builtins(), ref) {
		src, err = scripting.Builtin(ref)
		return ref, src, err
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)), string(data), nil
}

func printBoard(cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	seed := fs.String("seed", "", "board seed (random when empty)")
	pattern := fs.String("pattern", "", "void pattern: scattered, corridor, maze or fortress")
	stage := fs.Int("stage", 0, "gauntlet stage 1-4; derives the stage seed and pattern")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := bench.RandomSeed()
	if *seed != "" {
		var err error
		if s, err = config.ParseSeed(*seed); err != nil {
			return err
		}
	} else if cfg.Seed != nil {
		s = *cfg.Seed
	}

	var b *board.Board
	switch {
	case *stage != 0 && *pattern != "":
		return errors.New("-pattern and -stage are mutually exclusive")
	case *stage != 0:
		if *stage < 1 || *stage > len(game.Stages) {
			return fmt.Errorf("-stage must be between 1 and %d", len(game.Stages))
		}
		st := game.Stages[*stage-1]
		fmt.Fprintf(stdout, "Stage %d: %s\n", st.Number, st.Name)
		b = board.GenerateStage(game.StageSeed(s, st.Number), st.Pattern)
	case *pattern != "":
		p, err := board.ParsePattern(*pattern)
		if err != nil {
			return err
		}
		b = board.GenerateStage(s, p)
	default:
		b = board.Generate(s)
	}

	report.New(stdout).Board(b)
	return nil
}

func printLeaderboard(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("leaderboard", flag.ContinueOnError)
	mode := fs.String("mode", string(game.ModeGauntlet), "single, gauntlet or all")
	dbPath := fs.String("db", cfg.DBPath, "SQLite run store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m := *mode
	if m == "all" {
		m = ""
	}

	db, err := store.Open(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	standings, err := db.Leaderboard(ctx, m)
	if err != nil {
		return err
	}
	report.New(stdout).Standings(standings)
	return nil
}

func manageKey(cfg config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("key", flag.ContinueOnError)
	profile := fs.String("profile", cfg.Profile, "credentials profile")
	reveal := fs.Bool("reveal", false, "print the full key on get")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: gauntlet key set|get|delete [key]")
	}

	keys := keyStore()
	switch fs.Arg(0) {
	case "set":
		key := fs.Arg(1)
		if key == "" {
			fmt.Fprint(stdout, "OpenRouter API key: ")
			line, err := bufio.NewReader(stdin).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			key = strings.TrimSpace(line)
		}
		if err := keys.SetAPIKey(*profile, key); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Stored key %s for profile %q\n", credentials.Mask(key), *profile)
	case "get":
		key, err := keys.APIKey(*profile)
		if errors.Is(err, credentials.ErrNotFound) {
			return fmt.Errorf("no key stored for profile %q", *profile)
		}
		if err != nil {
			return err
		}
		if !*reveal {
			key = credentials.Mask(key)
		}
		fmt.Fprintln(stdout, key)
	case "delete":
		if err := keys.DeleteAPIKey(*profile); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted key for profile %q\n", *profile)
	default:
		return fmt.Errorf("unknown key action %q", fs.Arg(0))
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Listen, "listen address")
	dbPath := fs.String("db", cfg.DBPath, "SQLite run store (empty to disable run endpoints)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := api.Options{Logger: log}
	if cfg.QuestionsPath != "" {
		c, err := questions.LoadFile(cfg.QuestionsPath)
		if err != nil {
			return err
		}
		opts.Catalog = c
	}
	if *dbPath != "" {
		db, err := store.Open(ctx, *dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.DB = db
	}

	srv := api.NewServer(opts)
	if err := srv.Start(*addr); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
