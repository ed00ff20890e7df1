package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/cognitive-gauntlet/internal/avatar"
	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/game"
	"github.com/MJE43/cognitive-gauntlet/internal/questions"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"questions": fmt.Sprintf("ok (%d loaded)", s.catalog.Stats().Total),
	}
	status := "healthy"

	switch {
	case s.db == nil:
		checks["store"] = "disabled"
	default:
		if _, err := s.db.ListRuns(r.Context(), store.RunsQuery{PerPage: 1}); err != nil {
			checks["store"] = "error: " + err.Error()
			status = "degraded"
		} else {
			checks["store"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Checks:    checks,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

func (s *Server) handleAvatars(w http.ResponseWriter, r *http.Request) {
	out := make([]AvatarInfo, 0, len(avatar.All))
	for _, a := range avatar.All {
		out = append(out, AvatarInfo{
			Name:        a.String(),
			Kind:        a.Kind(),
			Description: a.Description(),
			Offsets:     a.Offsets(),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"avatars": out})
}

func (s *Server) boardFromRequest(w http.ResponseWriter, r *http.Request) (boardRequest, *board.Board, bool) {
	br, field, err := parseBoardRequest(chi.URLParam(r, "seed"), r.URL.Query())
	if err != nil {
		if field == "seed" {
			s.writeError(w, r, http.StatusBadRequest,
				NewError(ErrTypeInvalidSeed, err.Error()).WithContext("field", field).Build(r))
		} else {
			s.validationError(w, r, field, err)
		}
		return br, nil, false
	}
	return br, br.build(), true
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	br, b, ok := s.boardFromRequest(w, r)
	if !ok {
		return
	}
	resp := BoardResponse{
		Seed:            b.Seed(),
		Pattern:         b.Pattern(),
		OptimalDistance: b.OptimalDistance(),
		Start:           board.Start,
		Goal:            board.Goal,
		Voids:           b.VoidList(),
		Squares:         b.Squares(),
	}
	if br.stage != nil {
		resp.Stage = br.stage.Number
		resp.StageName = br.stage.Name
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoardRender(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.boardFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, board.Render(b))
}

func (s *Server) handleQuestionStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, QuestionStatsResponse{
		Stats:   s.catalog.Stats(),
		Domains: questions.Domains,
	})
}

func (s *Server) handleValidateAnswer(w http.ResponseWriter, r *http.Request) {
	var req ValidateAnswerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest,
			NewError(ErrTypeValidation, "invalid JSON format").WithCause(err).Build(r))
		return
	}
	if field, err := ValidateAnswerRequestBody(&req); err != nil {
		s.validationError(w, r, field, err)
		return
	}

	q, err := s.catalog.Lookup(req.QuestionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, questions.ErrUnknownQuestion) {
			status = http.StatusNotFound
		}
		s.writeError(w, r, status,
			NewError(ErrTypeUnknownQuestion, err.Error()).WithContext("question_id", req.QuestionID).Build(r))
		return
	}

	s.writeJSON(w, http.StatusOK, ValidateAnswerResponse{
		QuestionID: q.ID,
		Correct:    s.policy.Validate(q, req.Answer),
		Format:     q.Format,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query, field, err := parseRunsQuery(r.URL.Query())
	if err != nil {
		s.validationError(w, r, field, err)
		return
	}
	list, err := s.db.ListRuns(r.Context(), query)
	if err != nil {
		s.internalError(w, r, "list_runs", err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound,
			NewError(ErrTypeNotFound, "run not found").WithContext("id", id).Build(r))
		return
	case err != nil:
		s.internalError(w, r, "get_run", err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	switch mode {
	case "":
		mode = string(game.ModeGauntlet)
	case "all":
		mode = ""
	case string(game.ModeSingle), string(game.ModeGauntlet):
	default:
		s.validationError(w, r, "mode", fmt.Errorf("mode must be %q, %q or \"all\"", game.ModeSingle, game.ModeGauntlet))
		return
	}

	standings, err := s.db.Leaderboard(r.Context(), mode)
	if err != nil {
		s.internalError(w, r, "leaderboard", err)
		return
	}
	if standings == nil {
		standings = []store.Standing{}
	}
	if mode == "" {
		mode = "all"
	}
	s.writeJSON(w, http.StatusOK, LeaderboardResponse{Mode: mode, Standings: standings})
}
