package match

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/minglehq/matchsvc/internal/db"
	svcErr "github.com/minglehq/matchsvc/internal/errors"
	"github.com/minglehq/matchsvc/internal/repository"
	"github.com/minglehq/matchsvc/internal/utils/httpx"
	"github.com/minglehq/matchsvc/internal/utils/pagination"
)

type actionRequest struct {
	CardID       string `json:"cardId"`
	Action       string `json:"action"`
	SceneType    string `json:"sceneType"`
	SceneContext string `json:"sceneContext"`
	Source       string `json:"source"`
}

type collectionRequest struct {
	CardID    string `json:"cardId"`
	SceneType string `json:"sceneType"`
}

// HandleSubmitAction handles POST /api/match/actions.
func (s *Service) HandleSubmitAction(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, svcErr.Validation("invalid request payload"))
		return
	}

	s.appCtx.Logger.Debug("SubmitAction called",
		"actor", actorID, "card", req.CardID, "action", req.Action, "scene", req.SceneType)

	result, err := s.SubmitAction(r.Context(), SubmitInput{
		ActorID:      actorID,
		CardID:       req.CardID,
		ActionType:   db.ActionType(req.Action),
		SceneType:    db.SceneType(req.SceneType),
		SceneContext: req.SceneContext,
		Source:       db.ActionSource(req.Source),
	})
	if err != nil {
		s.appCtx.Logger.Error("SubmitAction failed", "actor", actorID, "err", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleCollect handles POST /api/match/collections.
func (s *Service) HandleCollect(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, svcErr.Validation("invalid request payload"))
		return
	}

	result, err := s.Collect(r.Context(), actorID, req.CardID, db.SceneType(req.SceneType))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleCancelCollection handles DELETE /api/match/collections.
func (s *Service) HandleCancelCollection(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, svcErr.Validation("invalid request payload"))
		return
	}

	result, err := s.CancelCollection(r.Context(), actorID, req.CardID, db.SceneType(req.SceneType))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleListCollections handles GET /api/match/collections.
func (s *Service) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	q := r.URL.Query()
	cards, meta, err := s.CollectedCards(r.Context(), actorID,
		db.SceneType(q.Get("sceneType")), queryInt(q.Get("page"), 1), queryInt(q.Get("pageSize"), 10))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse[CollectedCard]{Cards: cards, Pagination: meta})
}

// HandleListMatches handles GET /api/match.
func (s *Service) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	q := r.URL.Query()
	filter := repository.ActionStatusFilter(q.Get("status"))
	if filter == "" {
		filter = repository.FilterAll
	}

	rows, meta, err := s.UserMatches(r.Context(), actorID, filter,
		queryInt(q.Get("page"), 1), queryInt(q.Get("pageSize"), 10))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Matches    []ActionSummary `json:"matches"`
		Pagination pagination.Meta `json:"pagination"`
	}{Matches: rows, Pagination: meta})
}

// HandleDetail handles GET /api/match/detail/{id}.
func (s *Service) HandleDetail(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	detail, err := s.Detail(r.Context(), actorID, mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}

// HandleStatistics handles GET /api/match/statistics.
func (s *Service) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	actorID := httpx.UserID(r)
	if actorID == "" {
		httpx.WriteError(w, svcErr.Validation("X-User-ID header is required"))
		return
	}

	q := r.URL.Query()
	stats, err := s.UserStatistics(r.Context(), actorID,
		db.SceneType(q.Get("sceneType")), queryInt(q.Get("days"), 30))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

type listResponse[T any] struct {
	Cards      []T             `json:"cards"`
	Pagination pagination.Meta `json:"pagination"`
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
