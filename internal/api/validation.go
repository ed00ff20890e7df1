package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

const (
	maxPerPage    = 200
	maxAnswerSize = 4096
)

// boardRequest says which board to generate. Stage zero means the
// single-board layout unless a pattern is given.
type boardRequest struct {
	seed    uint32
	pattern board.Pattern
	stage   *game.Stage
}

// build generates the requested board. Stage boards use the derived stage
// seed, so seed N stage 3 is the board the gauntlet plays third.
func (br boardRequest) build() *board.Board {
	switch {
	case br.stage != nil:
		return board.GenerateStage(game.StageSeed(br.seed, br.stage.Number), br.stage.Pattern)
	case br.pattern != "":
		return board.GenerateStage(br.seed, br.pattern)
	}
	return board.Generate(br.seed)
}

func parseSeed(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("seed %q must be an unsigned 32-bit integer", s)
	}
	return uint32(n), nil
}

// parseBoardRequest reads the seed path value plus ?pattern= or ?stage=.
func parseBoardRequest(rawSeed string, q url.Values) (boardRequest, string, error) {
	seed, err := parseSeed(rawSeed)
	if err != nil {
		return boardRequest{}, "seed", err
	}
	br := boardRequest{seed: seed}

	pattern, stage := q.Get("pattern"), q.Get("stage")
	if pattern != "" && stage != "" {
		return boardRequest{}, "pattern", errors.New("pattern and stage are mutually exclusive")
	}
	if pattern != "" {
		p, err := board.ParsePattern(pattern)
		if err != nil {
			return boardRequest{}, "pattern", err
		}
		br.pattern = p
	}
	if stage != "" {
		n, err := strconv.Atoi(stage)
		if err != nil || n < 1 || n > len(game.Stages) {
			return boardRequest{}, "stage", fmt.Errorf("stage must be between 1 and %d", len(game.Stages))
		}
		st := game.Stages[n-1]
		br.stage = &st
	}
	return br, "", nil
}

// parseRunsQuery reads ?model=&mode=&page=&perPage=.
func parseRunsQuery(q url.Values) (store.RunsQuery, string, error) {
	out := store.RunsQuery{
		Model: strings.TrimSpace(q.Get("model")),
		Mode:  strings.TrimSpace(q.Get("mode")),
		Page:  1,
	}
	if out.Mode != "" && out.Mode != string(game.ModeSingle) && out.Mode != string(game.ModeGauntlet) {
		return out, "mode", fmt.Errorf("mode must be %q or %q", game.ModeSingle, game.ModeGauntlet)
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return out, "page", errors.New("page must be a positive integer")
		}
		out.Page = n
	}
	if v := q.Get("perPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPerPage {
			return out, "perPage", fmt.Errorf("perPage must be between 1 and %d", maxPerPage)
		}
		out.PerPage = n
	}
	return out, "", nil
}

// ValidateAnswerRequestBody checks required fields and sizes.
func ValidateAnswerRequestBody(req *ValidateAnswerRequest) (string, error) {
	req.QuestionID = strings.TrimSpace(req.QuestionID)
	if req.QuestionID == "" {
		return "question_id", errors.New("question_id is required")
	}
	if len(req.Answer) > maxAnswerSize {
		return "answer", fmt.Errorf("answer too long (max %d bytes)", maxAnswerSize)
	}
	return "", nil
}
