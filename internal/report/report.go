// Package report prints benchmark results to a terminal.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"

	"github.com/MJE43/cognitive-gauntlet/internal/bench"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	dim    = "\x1b[2m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	cyan   = "\x1b[36m"

	nameWidth = 26
)

// Printer writes reports to w, with ANSI colour when w is a terminal.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// New returns a Printer for w. Colour is on only for terminals and is
// turned off by NO_COLOR.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: colorEnabled(w)}
}

// Plain returns a Printer that never colours.
func Plain(w io.Writer) *Printer { return &Printer{w: w} }

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(code, s string) string {
	if !p.color || code == "" {
		return s
	}
	return code + s + reset
}

func (p *Printer) println(s string) { fmt.Fprintln(p.w, s) }

// table lays rows out with tabwriter and colours whole lines afterwards so
// escape codes never disturb the column widths.
func (p *Printer) table(header []string, rows [][]string, colors []string) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  "+strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, "  "+strings.Join(r, "\t"))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		switch {
		case i == 0:
			p.println(p.paint(bold, line))
		case i-1 < len(colors):
			p.println(p.paint(colors[i-1], line))
		default:
			p.println(line)
		}
	}
}

func truncate(name string) string {
	r := []rune(name)
	if len(r) > nameWidth {
		return string(r[:nameWidth-3]) + "..."
	}
	return name
}

// Cost renders a dollar amount: four decimals under a cent, else three.
func Cost(c decimal.Decimal) string {
	switch {
	case c.IsZero():
		return "$0.00"
	case c.LessThan(decimal.NewFromFloat(0.01)):
		return "$" + c.StringFixed(4)
	}
	return "$" + c.StringFixed(3)
}

// Duration renders milliseconds under a second, else seconds to one decimal.
func Duration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func sorted(b *bench.BenchmarkResult) []bench.ModelResult {
	out := append([]bench.ModelResult(nil), b.Results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Card.Total > out[j].Card.Total })
	return out
}

func (p *Printer) rule(ch string, n int, code string) {
	p.println(p.paint(code, strings.Repeat(ch, n)))
}

// Results prints the headline table, best score first.
func (p *Printer) Results(b *bench.BenchmarkResult) {
	p.println("")
	p.rule("═", 100, bold+cyan)
	p.println(p.paint(bold+cyan, "  COGNITIVE GAUNTLET - BENCHMARK RESULTS"))
	p.println(p.paint(bold+cyan, fmt.Sprintf("  Seed: %d | Mode: %s | %s", b.Seed, b.Mode, b.Timestamp.Format(time.RFC3339))))
	p.rule("═", 100, bold+cyan)
	p.println("")

	var (
		rows   [][]string
		colors []string
	)
	for i, r := range sorted(b) {
		c := r.Card
		progress := "-"
		var cost decimal.Decimal
		if res := r.Result; res != nil {
			cost = res.Usage.Cost
			switch {
			case res.Single != nil:
				progress = res.Single.Position.String()
			case res.Gauntlet != nil:
				progress = fmt.Sprintf("stage %d/%d", c.StageReached, len(game.Stages))
			}
			if c.Won {
				progress += " ✓"
			}
		}
		rows = append(rows, []string{
			humanize.Ordinal(i + 1),
			truncate(r.ModelName),
			humanize.Comma(int64(c.Total)),
			fmt.Sprintf("%d/%d", c.Lives, c.MaxLives),
			progress,
			fmt.Sprintf("%d%%", c.Accuracy),
			fmt.Sprintf("%d%%", c.Planning),
			fmt.Sprintf("%d%%", c.RuleAdherence),
			Duration(r.Elapsed),
			Cost(cost),
		})
		colors = append(colors, outcomeColor(r))
	}
	p.table([]string{"#", "Model", "Score", "Lives", "Progress", "Accuracy", "Planning", "Rules", "Time", "Cost"}, rows, colors)
	p.println("")
}

func outcomeColor(r bench.ModelResult) string {
	switch {
	case r.Failed():
		return red
	case r.Card.Won:
		return green
	case r.Card.Lives <= 2:
		return yellow
	}
	return ""
}

// Tokens prints token usage per model.
func (p *Printer) Tokens(b *bench.BenchmarkResult) {
	p.println(p.paint(bold+cyan, "  TOKEN USAGE"))
	p.rule("─", 70, cyan)
	p.println("")
	var rows [][]string
	for _, r := range sorted(b) {
		var u game.Usage
		if r.Result != nil {
			u = r.Result.Usage
		}
		rows = append(rows, []string{
			truncate(r.ModelName),
			humanize.Comma(int64(u.InputTokens)),
			humanize.Comma(int64(u.OutputTokens)),
			humanize.Comma(int64(u.TotalTokens)),
			humanize.Comma(int64(u.Calls)),
		})
	}
	p.table([]string{"Model", "Input", "Output", "Total", "Calls"}, rows, nil)
	p.println("")
}

// Details prints per-model counters. Failed models show their error.
func (p *Printer) Details(b *bench.BenchmarkResult) {
	p.println(p.paint(bold+cyan, "  DETAILED STATISTICS"))
	p.rule("─", 90, cyan)
	p.println("")
	var (
		rows   [][]string
		colors []string
	)
	for _, r := range sorted(b) {
		turns, asked, correct, illegal, invalid := counters(r.Result)
		errs := (asked - correct) + illegal + invalid
		row := []string{
			truncate(r.ModelName),
			humanize.Comma(int64(turns)),
			humanize.Comma(int64(asked)),
			humanize.Comma(int64(correct)),
			humanize.Comma(int64(illegal)),
			humanize.Comma(int64(invalid)),
			humanize.Comma(int64(errs)),
		}
		color := ""
		if illegal+invalid > 0 {
			color = yellow
		}
		if r.Err != nil {
			row = append(row, r.Err.Error())
			color = red
		}
		rows = append(rows, row)
		colors = append(colors, color)
	}
	p.table([]string{"Model", "Turns", "Q. Asked", "Q. Correct", "Illegal", "Bad JSON", "Errors", "Notes"}, rows, colors)
	p.println("")
}

func counters(res *game.Result) (turns, asked, correct, illegal, invalid int) {
	switch {
	case res == nil:
	case res.Gauntlet != nil:
		m := res.Gauntlet
		turns, asked, correct = m.TotalTurns, m.QuestionsAnswered, m.QuestionsCorrect
		for _, sr := range m.Stages {
			illegal += sr.State.IllegalMoves
			invalid += sr.State.InvalidResponses
		}
	case res.Single != nil:
		s := res.Single
		turns, asked, correct = s.Turn, s.QuestionsAnswered, s.QuestionsCorrect
		illegal, invalid = s.IllegalMoves, s.InvalidResponses
	}
	return
}

// Stages prints one row per model and stage for gauntlet runs. It prints
// nothing for single-board benchmarks.
func (p *Printer) Stages(b *bench.BenchmarkResult) {
	if b.Mode != game.ModeGauntlet {
		return
	}
	p.println(p.paint(bold+cyan, "  STAGES"))
	p.rule("─", 90, cyan)
	p.println("")
	var (
		rows   [][]string
		colors []string
	)
	for _, r := range sorted(b) {
		gs := r.Card.Gauntlet
		if gs == nil {
			continue
		}
		for _, st := range gs.Stages {
			result, color := "lost", yellow
			if st.Cleared {
				result, color = "cleared", green
			}
			rows = append(rows, []string{
				truncate(r.ModelName),
				fmt.Sprintf("%d %s", st.Stage, st.Name),
				result,
				humanize.Comma(int64(st.Base)),
				humanize.Comma(int64(st.Bonus)),
				fmt.Sprintf("%d%%", st.Planning),
			})
			colors = append(colors, color)
		}
		if r.Card.BossAttempted {
			result, color := "boss wins", yellow
			if gs.BossDefeated {
				result, color = "defeated", green
			}
			rows = append(rows, []string{truncate(r.ModelName), "boss", result, "-", humanize.Comma(int64(gs.BossBonus)), "-"})
			colors = append(colors, color)
		}
	}
	p.table([]string{"Model", "Stage", "Result", "Base", "Bonus", "Planning"}, rows, colors)
	p.println("")
}

// Full prints every table followed by the log location.
func (p *Printer) Full(b *bench.BenchmarkResult, logsDir string) {
	if len(b.Results) == 0 {
		p.println(p.paint(red, "\n  No results to display.\n"))
		return
	}
	p.Results(b)
	p.Stages(b)
	p.Tokens(b)
	p.Details(b)
	p.rule("─", 100, dim)
	p.println(p.paint(dim, "  Log files saved to: "+logsDir))
	p.rule("─", 100, dim)
}

// Standings prints the store's leaderboard.
func (p *Printer) Standings(standings []store.Standing) {
	var rows [][]string
	for i, s := range standings {
		boss := "-"
		switch {
		case s.BossDefeated:
			boss = "✓ WIN"
		case s.BossAttempted:
			boss = "✗ LOSS"
		}
		rows = append(rows, []string{
			humanize.Ordinal(i + 1),
			truncate(s.ModelName),
			humanize.Comma(int64(s.BestScore)),
			fmt.Sprintf("%d/%d", s.StagesCleared, len(game.Stages)),
			boss,
			fmt.Sprintf("%d (%d won)", s.Runs, s.Wins),
			humanize.Time(s.LastRunAt),
		})
	}
	p.table([]string{"#", "Model", "Best", "Stages", "Boss", "Runs", "Last Run"}, rows, nil)
}

// Configuration prints the pre-run summary and board preview.
func (p *Printer) Configuration(seed uint32, mode game.Mode, models []string, names func(string) string) {
	p.println(p.paint(cyan, "\n  Benchmark Configuration:"))
	p.println(p.paint(dim, "  "+strings.Repeat("─", 41)))
	p.println(fmt.Sprintf("  Seed: %s", p.paint(bold, fmt.Sprint(seed))))
	p.println(fmt.Sprintf("  Models: %s", p.paint(bold, fmt.Sprint(len(models)))))
	p.println(fmt.Sprintf("  Mode: %s", mode))
	p.println(p.paint(dim, "  "+strings.Repeat("─", 41)))
	p.println("")

	b := board.Generate(seed)
	if mode == game.ModeGauntlet {
		b = board.GenerateStage(seed, game.Stages[0].Pattern)
	}
	p.println(p.paint(cyan, fmt.Sprintf("  Board Preview (Seed: %d):", seed)))
	p.println("")
	p.Board(b)
	p.println("")

	p.println(p.paint(cyan, "  Models to benchmark:"))
	for i, m := range models {
		p.println(fmt.Sprintf("    %d. %s", i+1, names(m)))
	}
	p.println("")
}

// Board prints an indented board diagram.
func (p *Printer) Board(b *board.Board) {
	for _, line := range strings.Split(strings.TrimRight(board.Render(b), "\n"), "\n") {
		p.println("  " + line)
	}
}

// ModelStarted implements bench.Observer
func (p *Printer) ModelStarted(model string, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.paint(cyan, fmt.Sprintf("\n  [%d/%d] Starting benchmark for: %s", index, total, model)))
}

// ModelFinished implements bench.Observer
func (p *Printer) ModelFinished(r bench.ModelResult, index, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := p.paint(yellow, "LOST")
	switch {
	case r.Failed():
		status = p.paint(red, "FAILED")
	case r.Card.Won:
		status = p.paint(green, "WON")
	}
	line := fmt.Sprintf("  [%d/%d] Completed: %s - %s - Score: %s", index, total, r.ModelName, status,
		p.paint(bold, humanize.Comma(int64(r.Card.Total))))
	p.println(line)
	if r.Err != nil {
		p.println(p.paint(red, "    "+r.Err.Error()))
	}
}

var _ bench.Observer = (*Printer)(nil)
