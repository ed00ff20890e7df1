// Command gauntlet runs the Cognitive Gauntlet benchmark against OpenRouter
// models or a local script, and serves stored results over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/MJE43/cognitive-gauntlet/internal/config"
)

const usage = `Usage: gauntlet <command> [flags]

Commands:
  run          benchmark models on one seed
  board        print a board
  leaderboard  print standings from the run store
  key          set, get or delete the stored OpenRouter API key
  serve        start the read-only HTTP API

Run "gauntlet <command> -h" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "gauntlet: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ApplyDisplayNames()
	log := newLogger(cfg.LogLevel, stderr)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		return runBenchmark(ctx, cfg, log, rest, stdout)
	case "board":
		return printBoard(cfg, rest, stdout)
	case "leaderboard":
		return printLeaderboard(ctx, cfg, rest, stdout)
	case "key":
		return manageKey(cfg, rest, stdin, stdout)
	case "serve":
		return serve(ctx, cfg, log, rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func newLogger(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
