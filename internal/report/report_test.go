package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/cognitive-gauntlet/internal/bench"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/scoring"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

func TestCost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"0.00042", "$0.0004"},
		{"0.01", "$0.010"},
		{"1.23456", "$1.235"},
	}
	for _, tt := range tests {
		if got := Cost(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Cost(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(450 * time.Millisecond); got != "450ms" {
		t.Errorf("got %s", got)
	}
	if got := Duration(12340 * time.Millisecond); got != "12.3s" {
		t.Errorf("got %s", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("m", 30)
	if got := truncate(long); len(got) != nameWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("got %q", got)
	}
	if got := truncate("short"); got != "short" {
		t.Errorf("got %q", got)
	}
}

func sampleBenchmark() *bench.BenchmarkResult {
	won := &game.GameState{Position: board.Goal, Won: true, Complete: true, Lives: 4, MaxLives: 5, Turn: 6,
		QuestionsAnswered: 5, QuestionsCorrect: 5}
	lost := &game.GameState{Position: board.MustParse("C3"), Complete: true, MaxLives: 5, Turn: 9,
		QuestionsAnswered: 4, QuestionsCorrect: 1, IllegalMoves: 1, InvalidResponses: 1}

	return &bench.BenchmarkResult{
		Seed: 42, Mode: game.ModeSingle, Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Results: []bench.ModelResult{
			{
				Model: "b/loser", ModelName: "Loser",
				Result: &game.Result{Single: lost, Usage: game.Usage{Calls: 13, InputTokens: 12000, OutputTokens: 345, TotalTokens: 12345}},
				Card:   scoring.Card{Total: 40, Lives: 0, MaxLives: 5, Accuracy: 25},
			},
			{
				Model: "a/winner", ModelName: "Winner",
				Result:  &game.Result{Single: won, Usage: game.Usage{Cost: decimal.RequireFromString("0.0123")}},
				Card:    scoring.Card{Total: 1215, Lives: 4, MaxLives: 5, Won: true, Accuracy: 100, Planning: 100, RuleAdherence: 100},
				Elapsed: 3 * time.Second,
			},
			{
				Model: "c/gone", ModelName: "Gone",
				Err:   errors.New("bench: transport for c/gone: missing key"),
			},
		},
	}
}

func TestResultsTable(t *testing.T) {
	var buf bytes.Buffer
	Plain(&buf).Results(sampleBenchmark())
	out := buf.String()

	if strings.Contains(out, "\x1b[") {
		t.Fatal("plain printer must not emit escape codes")
	}
	for _, want := range []string{"BENCHMARK RESULTS", "Seed: 42 | Mode: single", "1st", "1,215", "H8 ✓", "$0.012", "3.0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
	if strings.Index(out, "Winner") > strings.Index(out, "Loser") {
		t.Error("rows should be sorted by score")
	}

	// columns line up: every data row starts the Model column at the same offset
	var offsets []int
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "Winner"); i >= 0 {
			offsets = append(offsets, i)
		}
		if i := strings.Index(line, "Loser"); i >= 0 {
			offsets = append(offsets, i)
		}
	}
	if len(offsets) != 2 || offsets[0] != offsets[1] {
		t.Errorf("misaligned rows: %v", offsets)
	}
}

func TestTokensAndDetails(t *testing.T) {
	var buf bytes.Buffer
	p := Plain(&buf)
	p.Tokens(sampleBenchmark())
	p.Details(sampleBenchmark())
	out := buf.String()

	for _, want := range []string{"TOKEN USAGE", "12,000", "12,345", "DETAILED STATISTICS", "missing key"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestStagesOnlyForGauntlet(t *testing.T) {
	var buf bytes.Buffer
	p := Plain(&buf)
	p.Stages(sampleBenchmark())
	if buf.Len() != 0 {
		t.Fatalf("single-board benchmark should print no stage table, got %q", buf.String())
	}

	b := &bench.BenchmarkResult{Mode: game.ModeGauntlet, Results: []bench.ModelResult{{
		ModelName: "G",
		Card: scoring.Card{BossAttempted: true, Gauntlet: &scoring.GauntletScore{
			Stages:       []scoring.StageScore{{Stage: 1, Name: "The Awakening", Cleared: true, Base: 100, Bonus: 100, Planning: 100}},
			BossDefeated: true, BossBonus: game.BossBonus,
		}},
	}}}
	p.Stages(b)
	out := buf.String()
	for _, want := range []string{"1 The Awakening", "cleared", "boss", "defeated", "500"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestFullWithoutResults(t *testing.T) {
	var buf bytes.Buffer
	Plain(&buf).Full(&bench.BenchmarkResult{}, "logs")
	if !strings.Contains(buf.String(), "No results to display.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestStandings(t *testing.T) {
	var buf bytes.Buffer
	Plain(&buf).Standings([]store.Standing{
		{ModelName: "Top", BestScore: 2100, StagesCleared: 4, BossAttempted: true, BossDefeated: true, Runs: 3, Wins: 2,
			LastRunAt: time.Now().Add(-2 * time.Hour)},
		{ModelName: "Next", BestScore: 300, StagesCleared: 1, Runs: 1, LastRunAt: time.Now().Add(-48 * time.Hour)},
	})
	out := buf.String()
	for _, want := range []string{"1st", "2nd", "2,100", "4/4", "✓ WIN", "3 (2 won)", "2 hours ago", "2 days ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestObserverLines(t *testing.T) {
	var buf bytes.Buffer
	p := Plain(&buf)
	b := sampleBenchmark()
	p.ModelStarted("a/winner", 1, 3)
	p.ModelFinished(b.Results[1], 1, 3)
	p.ModelFinished(b.Results[2], 3, 3)
	out := buf.String()
	for _, want := range []string{"[1/3] Starting benchmark for: a/winner", "Winner - WON - Score: 1,215", "Gone - FAILED", "missing key"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestConfigurationPreview(t *testing.T) {
	var buf bytes.Buffer
	Plain(&buf).Configuration(42, game.ModeSingle, []string{"a/x"}, func(string) string { return "X" })
	out := buf.String()
	if !strings.Contains(out, "Board Preview (Seed: 42)") || !strings.Contains(out, "    1. X") {
		t.Errorf("unexpected preview\n%s", out)
	}
	if !strings.Contains(out, strings.Split(strings.TrimSpace(board.Render(board.Generate(42))), "\n")[0]) {
		t.Error("board diagram missing")
	}
}
