// Package scoring turns a finished game into a total score and three 0-100
// sub-scores. Every function here is a pure function of terminal state.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

// Weights of the single-stage total.
const (
	ProgressWeight   = 10
	LivesWeight      = 20
	ComplexityWeight = 5
	ErrorPenalty     = 10

	// StageCorrectWeight is the per-correct-answer credit inside a gauntlet stage.
	StageCorrectWeight = 20

	// unwonPlanningCap bounds the planning score of a game that never reached the goal.
	unwonPlanningCap = 70
)

// SubScores are the normalized 0-100 components.
type SubScores struct {
	Planning       int `json:"planning"`
	RuleAdherence  int `json:"rule_adherence"`
	DomainAccuracy int `json:"domain_accuracy"`
}

// GameScore is the score of one single-stage game.
type GameScore struct {
	Total      int       `json:"total"`
	Progress   int       `json:"progress"`
	Lives      int       `json:"lives"`
	Complexity float64   `json:"complexity"`
	Errors     int       `json:"errors"`
	Sub        SubScores `json:"sub_scores"`
}

// round matches the half-up rounding the published scores were computed with.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return clamp(round(float64(num) / float64(den) * 100))
}

// progress is how many squares closer to the goal the game ended, or the full
// optimal distance on a win.
func progress(s *game.GameState) (made, optimal int) {
	optimal = s.Board.OptimalDistance()
	if s.Won {
		return optimal, optimal
	}
	remaining := s.Board.DistanceToGoal(s.Position)
	if remaining == board.Unreachable {
		return 0, optimal
	}
	return max(0, optimal-remaining), optimal
}

// complexity is the mean difficulty of correctly answered questions.
func complexity(s *game.GameState) float64 {
	var total, n int
	for _, m := range s.Moves {
		if m.Question != nil && m.Correct != nil && *m.Correct {
			total += m.Question.Difficulty
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

// Score computes the single-stage score of a finished game.
func Score(s *game.GameState) GameScore {
	made, _ := progress(s)
	cx := complexity(s)
	errs := s.Errors()

	total := round(float64(made*ProgressWeight) + float64(s.Lives*LivesWeight) +
		cx*ComplexityWeight - float64(errs*ErrorPenalty))

	return GameScore{
		Total:      max(0, total),
		Progress:   made,
		Lives:      s.Lives,
		Complexity: math.Round(cx*10) / 10,
		Errors:     errs,
		Sub:        Sub(s),
	}
}

// Sub computes the three sub-scores of one game or stage.
func Sub(s *game.GameState) SubScores {
	return SubScores{
		Planning:       Planning(s),
		RuleAdherence:  percent(len(s.Moves)-s.IllegalMoves-s.InvalidResponses, len(s.Moves)),
		DomainAccuracy: percent(s.QuestionsCorrect, s.QuestionsAnswered),
	}
}

// Planning rates path efficiency. A win scores optimal/actual (100 when no
// extra moves were taken); otherwise progress earns at most 70.
func Planning(s *game.GameState) int {
	made, optimal := progress(s)
	if optimal <= 0 {
		return 0
	}
	if !s.Won {
		if made <= 0 {
			return 0
		}
		return clamp(round(float64(made) / float64(optimal) * unwonPlanningCap))
	}

	moves := 0
	for _, m := range s.Moves {
		if m.Illegal || m.Invalid || (m.Correct != nil && !*m.Correct) {
			continue
		}
		moves++
	}
	if moves <= optimal {
		return 100
	}
	return clamp(round(float64(optimal) / float64(moves) * 100))
}

// StageScore is one gauntlet stage's contribution.
type StageScore struct {
	Stage    int    `json:"stage"`
	Name     string `json:"name"`
	Cleared  bool   `json:"cleared"`
	Base     int    `json:"base"`
	Bonus    int    `json:"bonus"`
	Planning int    `json:"planning"`
}

// GauntletScore is the score of a multi-stage run.
type GauntletScore struct {
	Total        int          `json:"total"`
	Stages       []StageScore `json:"stages"`
	BossBonus    int          `json:"boss_bonus"`
	Accuracy     int          `json:"accuracy"`
	Planning     int          `json:"planning"`
	RuleScore    int          `json:"rule_score"`
	StageReached int          `json:"stage_reached"`
	Lives        int          `json:"lives"`
	BossDefeated bool         `json:"boss_defeated"`
}

// ScoreGauntlet totals stage credit, stage bonuses and the boss bonus. Boss
// questions count toward accuracy.
func ScoreGauntlet(m *game.MultiStageState) GauntletScore {
	gs := GauntletScore{
		StageReached: m.StageReached(),
		Lives:        m.Lives,
		BossDefeated: m.BossDefeated(),
		Accuracy:     percent(m.QuestionsCorrect, m.QuestionsAnswered),
	}

	var planning, turns, clean int
	for _, sr := range m.Stages {
		s := sr.State
		st := StageScore{
			Stage:    sr.Stage.Number,
			Name:     sr.Stage.Name,
			Cleared:  sr.Cleared,
			Base:     s.QuestionsCorrect * StageCorrectWeight,
			Bonus:    sr.Bonus,
			Planning: Planning(s),
		}
		gs.Stages = append(gs.Stages, st)
		gs.Total += st.Base + st.Bonus
		planning += st.Planning
		turns += len(s.Moves)
		clean += len(s.Moves) - s.IllegalMoves - s.InvalidResponses
	}
	if gs.BossDefeated {
		gs.BossBonus = game.BossBonus
		gs.Total += gs.BossBonus
	}
	if n := len(m.Stages); n > 0 {
		gs.Planning = clamp(round(float64(planning) / float64(n)))
	}
	gs.RuleScore = percent(clean, turns)
	return gs
}

// Summary renders a game score as a short multi-line block.
func Summary(sc GameScore, maxLives int) string {
	lines := []string{
		fmt.Sprintf("Total Score: %d", sc.Total),
		fmt.Sprintf("Progress: %d squares", sc.Progress),
		fmt.Sprintf("Lives Remaining: %d/%d", sc.Lives, maxLives),
		fmt.Sprintf("Avg Complexity: %g", sc.Complexity),
		fmt.Sprintf("Errors: %d", sc.Errors),
		"---",
		fmt.Sprintf("Planning: %d%%", sc.Sub.Planning),
		fmt.Sprintf("Rule Adherence: %d%%", sc.Sub.RuleAdherence),
		fmt.Sprintf("Domain Accuracy: %d%%", sc.Sub.DomainAccuracy),
	}
	return strings.Join(lines, "\n")
}
