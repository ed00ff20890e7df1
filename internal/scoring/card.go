package scoring

import (
	"github.com/MJE43/cognitive-gauntlet/internal/game"
)

// Card flattens either kind of run into the columns reports, the run store
// and the leaderboard share.
type Card struct {
	Model         string    `json:"model"`
	Mode          game.Mode `json:"mode"`
	Seed          uint32    `json:"seed"`
	Outcome       string    `json:"outcome"`
	Total         int       `json:"total"`
	Planning      int       `json:"planning"`
	RuleAdherence int       `json:"rule_adherence"`
	Accuracy      int       `json:"accuracy"`
	Lives         int       `json:"lives"`
	MaxLives      int       `json:"max_lives"`
	StageReached  int       `json:"stage_reached"`
	StagesCleared int       `json:"stages_cleared"`
	BossDefeated  bool      `json:"boss_defeated"`
	BossAttempted bool      `json:"boss_attempted"`
	Won           bool      `json:"won"`
	Aborted       bool      `json:"aborted"`
	Turns         int       `json:"turns"`

	Single   *GameScore     `json:"single,omitempty"`
	Gauntlet *GauntletScore `json:"gauntlet,omitempty"`
}

// Summarize scores res. A nil result yields a zero card.
func Summarize(res *game.Result) Card {
	if res == nil {
		return Card{}
	}
	c := Card{Model: res.Model, Mode: res.Mode, Seed: res.Seed, Aborted: res.Aborted()}

	switch {
	case res.Gauntlet != nil:
		m := res.Gauntlet
		gs := ScoreGauntlet(m)
		c.Gauntlet = &gs
		c.Total = gs.Total
		c.Planning = gs.Planning
		c.RuleAdherence = gs.RuleScore
		c.Accuracy = gs.Accuracy
		c.Lives = m.Lives
		c.MaxLives = m.MaxLives
		c.StageReached = gs.StageReached
		for _, sr := range m.Stages {
			if sr.Cleared {
				c.StagesCleared++
			}
		}
		c.BossDefeated = gs.BossDefeated
		c.BossAttempted = m.Boss != nil
		c.Won = m.Won()
		c.Turns = m.TotalTurns
	case res.Single != nil:
		s := res.Single
		sc := Score(s)
		c.Single = &sc
		c.Total = sc.Total
		c.Planning = sc.Sub.Planning
		c.RuleAdherence = sc.Sub.RuleAdherence
		c.Accuracy = sc.Sub.DomainAccuracy
		c.Lives = s.Lives
		c.MaxLives = s.MaxLives
		c.StageReached = 1
		if s.Won {
			c.StagesCleared = 1
		}
		c.Won = s.Won
		c.Turns = s.Turn
	}

	switch {
	case c.Aborted:
		c.Outcome = "aborted"
	case c.Won:
		c.Outcome = "won"
	default:
		c.Outcome = "lost"
	}
	return c
}
