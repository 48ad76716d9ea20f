package recommend

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/minglehq/matchsvc/internal/app"
	"github.com/minglehq/matchsvc/internal/db"
	svcErr "github.com/minglehq/matchsvc/internal/errors"
	"github.com/minglehq/matchsvc/internal/repository"
	"github.com/minglehq/matchsvc/internal/utils/pagination"
)

// CandidateProvider supplies candidate profile pools for a scene/role.
// The storage-backed CardRepository is the default implementation; the
// contract stays narrow so the pool can come from a separate profile
// service later.
type CandidateProvider interface {
	ListCandidates(ctx context.Context, scene db.SceneType, roleType, excludeUserID string, limit int) ([]repository.Candidate, error)
}

// ScoredCandidate is one recommendation card. Ephemeral, never persisted.
type ScoredCandidate struct {
	UserID    string   `json:"userId"`
	CardID    string   `json:"cardId"`
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar"`
	Bio       string   `json:"bio"`
	Age       int      `json:"age"`
	Location  string   `json:"location"`
	Interests []string `json:"interests"`
	Score     int      `json:"score"`
	Reason    string   `json:"reason"`
	Source    string   `json:"source"`
}

// Result is a page of recommendations.
type Result struct {
	Cards      []ScoredCandidate `json:"cards"`
	Pagination pagination.Meta   `json:"pagination"`
}

// aiDefaultScore is used when an AI recommendation carries no explicit
// score in its scene context.
const aiDefaultScore = 90

// Service assembles recommendation pages: pre-computed AI rows when
// they exist, otherwise the heuristic scoring pipeline over the
// candidate pool. Strictly read-only; nothing is marked processed here.
type Service struct {
	appCtx   *app.AppContext
	actions  *repository.ActionRepository
	cards    *repository.CardRepository
	provider CandidateProvider
}

// NewService creates the recommendation service with dependencies from
// AppContext.
func NewService(appCtx *app.AppContext) *Service {
	cards := repository.NewCardRepository(appCtx.DB)
	return &Service{
		appCtx:   appCtx,
		actions:  repository.NewActionRepository(appCtx.DB),
		cards:    cards,
		provider: cards,
	}
}

// Recommendations returns one page of candidates for the user.
//
// Unprocessed AI-sourced rows bypass heuristic scoring entirely: they
// are projected straight into cards, most recent first. Otherwise the
// candidate pool is scored, sorted by (score desc, userId asc) for a
// deterministic tie-break, and paginated.
func (s *Service) Recommendations(
	ctx context.Context,
	userID string,
	scene db.SceneType,
	roleType string,
	page, pageSize int,
) (*Result, error) {
	if userID == "" {
		return nil, svcErr.Validation("userId is required")
	}
	if !scene.Valid() {
		return nil, svcErr.Validation("invalid scene type %q", scene)
	}
	p := pagination.Normalize(page, pageSize)

	aiRows, err := s.actions.ListAIRecommendations(ctx, userID, scene)
	if err != nil {
		return nil, svcErr.Persistence("ai recommendation list", err)
	}
	if len(aiRows) > 0 {
		return s.assembleAIPage(ctx, aiRows, p)
	}
	return s.assembleHeuristicPage(ctx, userID, scene, roleType, p)
}

func (s *Service) assembleAIPage(ctx context.Context, rows []db.MatchAction, p pagination.Params) (*Result, error) {
	pageRows := pagination.Slice(rows, p)

	userIDs := make([]string, 0, len(pageRows))
	for _, a := range pageRows {
		userIDs = append(userIDs, a.TargetUserID)
	}
	users, err := s.cards.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, svcErr.Persistence("ai recommendation user fetch", err)
	}

	cards := make([]ScoredCandidate, 0, len(pageRows))
	for _, a := range pageRows {
		target, ok := users[a.TargetUserID]
		if !ok {
			continue
		}
		score, reason := aiScoreAndReason(a.SceneContext)
		cards = append(cards, ScoredCandidate{
			UserID:    a.TargetUserID,
			CardID:    a.TargetCardID,
			Name:      target.Username,
			Avatar:    target.AvatarURL,
			Bio:       target.Bio,
			Age:       target.Age,
			Location:  target.Location,
			Interests: target.Interests,
			Score:     score,
			Reason:    reason,
			Source:    "ai",
		})
	}

	return &Result{
		Cards:      cards,
		Pagination: pagination.NewMeta(p, int64(len(rows))),
	}, nil
}

// aiScoreAndReason pulls an explicit score/reason out of the opaque
// scene context when the upstream recommender supplied one.
func aiScoreAndReason(sceneContext string) (int, string) {
	score, reason := aiDefaultScore, "AI recommendation"
	if sceneContext == "" {
		return score, reason
	}
	var meta struct {
		MatchScore *int   `json:"matchScore"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(sceneContext), &meta); err != nil {
		return score, reason
	}
	if meta.MatchScore != nil && *meta.MatchScore >= 0 && *meta.MatchScore <= 100 {
		score = *meta.MatchScore
	}
	if meta.Reason != "" {
		reason = meta.Reason
	}
	return score, reason
}

func (s *Service) assembleHeuristicPage(
	ctx context.Context,
	userID string,
	scene db.SceneType,
	roleType string,
	p pagination.Params,
) (*Result, error) {
	requester, err := s.cards.FindUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Persistence("requester fetch", err)
	}
	if requester == nil {
		return nil, svcErr.NotFound("user %q not found", userID)
	}

	acted, err := s.actions.ActedUserIDs(ctx, userID, scene)
	if err != nil {
		return nil, svcErr.Persistence("acted lookup", err)
	}

	pool, err := s.provider.ListCandidates(ctx, scene, roleType, userID, s.appCtx.Cfg.Match.CandidatePoolLimit)
	if err != nil {
		return nil, svcErr.Persistence("candidate list", err)
	}

	requesterProfile := Profile{
		Age:       requester.Age,
		Location:  requester.Location,
		Interests: requester.Interests,
	}

	scored := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		if _, seen := acted[c.UserID]; seen {
			continue
		}
		score, reason := Score(requesterProfile, Profile{
			Age:       c.Age,
			Location:  c.Location,
			Interests: c.Interests,
		})
		scored = append(scored, ScoredCandidate{
			UserID:    c.UserID,
			CardID:    c.CardID,
			Name:      c.DisplayName,
			Avatar:    c.AvatarURL,
			Bio:       c.Bio,
			Age:       c.Age,
			Location:  c.Location,
			Interests: c.Interests,
			Score:     score,
			Reason:    reason,
			Source:    "heuristic",
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].UserID < scored[j].UserID
	})

	return &Result{
		Cards:      pagination.Slice(scored, p),
		Pagination: pagination.NewMeta(p, int64(len(scored))),
	}, nil
}
