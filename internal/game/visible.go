package game

import (
	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

// maskedStart is what the start cell shows as when it is adjacent. Stepping
// back onto it never triggers a question.
const maskedStart = string(questions.Math)

// Neighbor is one adjacent cell as the model sees it: coordinate and category,
// never the question.
type Neighbor struct {
	Coord    board.Coordinate `json:"coordinate"`
	Category string           `json:"category"`
}

// VisibleState is the fog-of-war snapshot sent to the model each turn.
type VisibleState struct {
	Position       board.Coordinate `json:"position"`
	Lives          int              `json:"lives"`
	MaxLives       int              `json:"max_lives"`
	Turn           int              `json:"turn"`
	Available      []avatar.Avatar  `json:"available_avatars"`
	LastAvatar     avatar.Avatar    `json:"last_avatar,omitempty"`
	Neighbors      []Neighbor       `json:"neighbors"`
	DistanceToGoal int              `json:"distance_to_goal"`
	Stage          int              `json:"stage,omitempty"`
	StageName      string           `json:"stage_name,omitempty"`
	TotalStages    int              `json:"total_stages,omitempty"`
}

// Visible computes what the model may see of s.
func Visible(s *GameState) VisibleState {
	v := VisibleState{
		Position:       s.Position,
		Lives:          s.Lives,
		MaxLives:       s.MaxLives,
		Turn:           s.Turn,
		Available:      avatar.Available(s.LastAvatar),
		LastAvatar:     s.LastAvatar,
		DistanceToGoal: s.Board.DistanceToGoal(s.Position),
		Stage:          s.Stage,
		StageName:      s.StageName,
	}
	if s.Stage > 0 {
		v.TotalStages = len(Stages)
	}
	for _, c := range board.Neighbors(s.Position) {
		cat := s.Board.Square(c).Category
		label := cat.String()
		if cat.Kind() == board.KindStart {
			label = maskedStart
		}
		v.Neighbors = append(v.Neighbors, Neighbor{Coord: c, Category: label})
	}
	return v
}
