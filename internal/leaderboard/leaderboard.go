// Package leaderboard maintains the "Current Leaderboard" table in the
// project README: one row per model holding its best score.
package leaderboard

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	SectionHeader = "## Current Leaderboard"
	tableHeader   = "| Model | Score | Stage | Lives | Accuracy | Boss | Runs | Last Updated |"
	tableDivider  = "|-------|-------|-------|-------|----------|------|------|--------------|"
	emptyNotice   = "No benchmark results yet. Run the benchmark to populate this table."

	BossWin  = "✓ WIN"
	BossLoss = "✗ LOSS"
	BossNone = "-"
)

// Entry is one table row. Stage, lives and accuracy are kept as rendered
// text so rows written by hand survive a rewrite unchanged.
type Entry struct {
	Model       string
	Score       int
	Stage       string
	Lives       string
	Accuracy    string
	Boss        string
	Runs        int
	LastUpdated string
}

// Outcome is what one finished run contributes.
type Outcome struct {
	ModelName     string
	Score         int
	StagesCleared int
	TotalStages   int
	Lives         int
	MaxLives      int
	Accuracy      int
	BossAttempted bool
	BossDefeated  bool
	Date          time.Time
}

// NewEntry renders o as a first-run row.
func NewEntry(o Outcome) Entry {
	boss := BossNone
	if o.BossAttempted {
		boss = BossLoss
		if o.BossDefeated {
			boss = BossWin
		}
	}
	return Entry{
		Model:       o.ModelName,
		Score:       o.Score,
		Stage:       fmt.Sprintf("%d/%d", o.StagesCleared, o.TotalStages),
		Lives:       fmt.Sprintf("%d/%d", o.Lives, o.MaxLives),
		Accuracy:    fmt.Sprintf("%d%%", o.Accuracy),
		Boss:        boss,
		Runs:        1,
		LastUpdated: o.Date.UTC().Format("2006-01-02"),
	}
}

// Parse reads the rows of the leaderboard table in readme. Rows with fewer
// than eight cells are skipped.
func Parse(readme string) []Entry {
	var (
		entries     []Entry
		inSection   bool
		headerFound bool
	)
	for _, line := range strings.Split(readme, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), SectionHeader) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.Contains(line, "| Model |") {
			headerFound = true
			continue
		}
		if strings.Contains(line, "|---") {
			continue
		}
		if headerFound && !strings.HasPrefix(line, "|") {
			break
		}
		if !headerFound {
			continue
		}

		var cells []string
		for _, c := range strings.Split(line, "|") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) < 8 {
			continue
		}
		score, _ := strconv.Atoi(cells[1])
		runs, err := strconv.Atoi(cells[6])
		if err != nil || runs == 0 {
			runs = 1
		}
		entries = append(entries, Entry{
			Model:       cells[0],
			Score:       score,
			Stage:       cells[2],
			Lives:       cells[3],
			Accuracy:    cells[4],
			Boss:        cells[5],
			Runs:        runs,
			LastUpdated: cells[7],
		})
	}
	return entries
}

// Merge folds o into entries and re-sorts by score. An existing row keeps
// its best score and the columns of that run, counts the run, and keeps a
// boss win once one has been recorded.
func Merge(entries []Entry, o Outcome) []Entry {
	fresh := NewEntry(o)
	out := append([]Entry(nil), entries...)

	idx := -1
	for i, e := range out {
		if e.Model == o.ModelName {
			idx = i
			break
		}
	}
	if idx < 0 {
		out = append(out, fresh)
	} else {
		old := out[idx]
		merged := old
		if o.Score > old.Score {
			merged.Score = o.Score
			merged.Stage = fresh.Stage
			merged.Lives = fresh.Lives
			merged.Accuracy = fresh.Accuracy
		}
		switch {
		case o.BossDefeated, old.Boss == BossWin:
			merged.Boss = BossWin
		default:
			merged.Boss = fresh.Boss
		}
		merged.Runs = old.Runs + 1
		merged.LastUpdated = fresh.LastUpdated
		out[idx] = merged
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Render produces the section markdown, header included.
func Render(entries []Entry) string {
	var b strings.Builder
	b.WriteString(SectionHeader + "\n\n")
	if len(entries) == 0 {
		b.WriteString(emptyNotice + "\n")
		return b.String()
	}
	b.WriteString(tableHeader + "\n")
	b.WriteString(tableDivider + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %d | %s |\n",
			e.Model, e.Score, e.Stage, e.Lives, e.Accuracy, e.Boss, e.Runs, e.LastUpdated)
	}
	return b.String()
}

// Replace swaps the leaderboard section of readme for section. The old
// section runs until the next heading. Without one, the section is inserted
// before "# License", or appended.
func Replace(readme, section string) string {
	section = strings.TrimSpace(section)
	var (
		out      []string
		found    bool
		skipping bool
	)
	for _, line := range strings.Split(readme, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), SectionHeader) {
			found, skipping = true, true
			out = append(out, section)
			continue
		}
		if skipping {
			if strings.HasPrefix(line, "#") {
				skipping = false
				out = append(out, "", line)
			}
			continue
		}
		out = append(out, line)
	}
	if found {
		return strings.Join(out, "\n")
	}

	for i, line := range out {
		if strings.HasPrefix(strings.TrimSpace(line), "# License") {
			rest := append([]string{"", section, ""}, out[i:]...)
			return strings.Join(append(out[:i:i], rest...), "\n")
		}
	}
	return strings.Join(append(out, "", section), "\n")
}

// README rewrites a leaderboard file in place. Record is safe for
// concurrent use.
type README struct {
	path string
	mu   sync.Mutex
}

// NewREADME targets the file at path.
func NewREADME(path string) *README { return &README{path: path} }

// Path returns the file being maintained
func (r *README) Path() string { return r.path }

// Entries parses the current table.
func (r *README) Entries() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read %s: %w", r.path, err)
	}
	return Parse(string(data)), nil
}

// Record merges o into the README table and writes the file back.
func (r *README) Record(o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("leaderboard: read %s: %w", r.path, err)
	}
	readme := string(data)
	updated := Replace(readme, Render(Merge(Parse(readme), o)))
	if err := os.WriteFile(r.path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("leaderboard: write %s: %w", r.path, err)
	}
	return nil
}
