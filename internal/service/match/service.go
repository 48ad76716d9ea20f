package match

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minglehq/matchsvc/internal/app"
	"github.com/minglehq/matchsvc/internal/db"
	svcErr "github.com/minglehq/matchsvc/internal/errors"
	"github.com/minglehq/matchsvc/internal/events"
	"github.com/minglehq/matchsvc/internal/repository"
	"github.com/minglehq/matchsvc/internal/utils/pagination"
)

// CardLookup resolves a card id to its owner and scene. The default
// implementation is storage-backed; the contract stays narrow so card
// management can move out of process without touching the match core.
type CardLookup interface {
	Resolve(ctx context.Context, cardID string) (*repository.CardRef, error)
}

// Service implements the match action and mutual-match engine: it
// records one-directional actions idempotently, runs reciprocity
// detection, and carries the collection bookmarks on top of the same
// action storage.
type Service struct {
	appCtx   *app.AppContext
	actions  *repository.ActionRepository
	matches  *repository.MatchRepository
	cards    *repository.CardRepository
	lookup   CardLookup
	detector *Detector
	now      func() time.Time
}

// NewService creates the match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	actions := repository.NewActionRepository(appCtx.DB)
	matches := repository.NewMatchRepository(appCtx.DB)
	cards := repository.NewCardRepository(appCtx.DB)
	return &Service{
		appCtx:   appCtx,
		actions:  actions,
		matches:  matches,
		cards:    cards,
		lookup:   cards,
		detector: NewDetector(actions, matches),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInput carries one action submission.
type SubmitInput struct {
	ActorID      string
	CardID       string
	ActionType   db.ActionType
	SceneType    db.SceneType
	SceneContext string
	Source       db.ActionSource
}

// SubmitResult is the outcome of one submission.
type SubmitResult struct {
	ActionID           string        `json:"actionId"`
	IsNew              bool          `json:"isNew"`
	ExistingActionType db.ActionType `json:"existingActionType,omitempty"`
	IsMatch            bool          `json:"isMatch"`
	MatchID            string        `json:"matchId,omitempty"`
	Message            string        `json:"message"`
}

// SubmitAction validates, resolves the target card, persists the action
// idempotently and runs the mutual-match check for positive actions.
//
// A repeat submission for the same (actor, target, card, scene) key is
// not an error: the prior row is reported back with isNew=false and no
// reciprocity lookup happens.
func (s *Service) SubmitAction(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.ActorID == "" {
		return nil, svcErr.Validation("actorId is required")
	}
	if in.CardID == "" {
		return nil, svcErr.Validation("cardId is required")
	}
	if !in.ActionType.Valid() {
		return nil, svcErr.Validation("invalid action type %q", in.ActionType)
	}
	if !in.SceneType.Valid() {
		return nil, svcErr.Validation("invalid scene type %q", in.SceneType)
	}
	if in.Source == "" {
		in.Source = db.SourceUser
	}
	if !in.Source.Valid() {
		return nil, svcErr.Validation("invalid source %q", in.Source)
	}

	ref, err := s.lookup.Resolve(ctx, in.CardID)
	if err != nil {
		return nil, svcErr.Persistence("card lookup", err)
	}
	if ref == nil {
		return nil, svcErr.InvalidCardReference(in.CardID)
	}
	if ref.OwnerUserID == in.ActorID {
		return nil, svcErr.Validation("cannot act on your own card")
	}

	existing, err := s.actions.FindByNaturalKey(ctx, in.ActorID, ref.OwnerUserID, in.CardID, in.SceneType)
	if err != nil {
		return nil, svcErr.Persistence("action lookup", err)
	}
	if existing != nil {
		return duplicateResult(existing), nil
	}

	action := &db.MatchAction{
		ID:           uuid.NewString(),
		ActorID:      in.ActorID,
		TargetUserID: ref.OwnerUserID,
		TargetCardID: in.CardID,
		ActionType:   in.ActionType,
		SceneType:    in.SceneType,
		SceneContext: in.SceneContext,
		Source:       in.Source,
	}
	inserted, row, err := s.actions.Insert(ctx, action)
	if err != nil {
		return nil, svcErr.Persistence("action insert", err)
	}
	if !inserted {
		// Lost a concurrent submission for the same key; report the winner.
		return duplicateResult(row), nil
	}

	s.appCtx.Events.ActionRecorded(events.ActionRecorded{
		ActionID:     action.ID,
		ActorID:      action.ActorID,
		TargetUserID: action.TargetUserID,
		TargetCardID: action.TargetCardID,
		ActionType:   action.ActionType,
		SceneType:    action.SceneType,
		Source:       action.Source,
		OccurredAt:   s.now(),
	})

	result := &SubmitResult{
		ActionID: action.ID,
		IsNew:    true,
		Message:  "action recorded",
	}

	isMatch, matchID, err := s.detector.TryCreateMatch(ctx, action)
	if err != nil {
		return nil, svcErr.Persistence("match detection", err)
	}
	if isMatch {
		result.IsMatch = true
		result.MatchID = matchID
		result.Message = "it's a match"

		userA, userB := repository.CanonicalPair(action.ActorID, action.TargetUserID)
		s.appCtx.Events.MatchCreated(events.MatchCreated{
			MatchID:    matchID,
			UserAID:    userA,
			UserBID:    userB,
			SceneType:  action.SceneType,
			OccurredAt: s.now(),
		})
	}

	return result, nil
}

func duplicateResult(existing *db.MatchAction) *SubmitResult {
	return &SubmitResult{
		ActionID:           existing.ID,
		IsNew:              false,
		ExistingActionType: existing.ActionType,
		Message:            "action already recorded",
	}
}

// Collect bookmarks a card. Routed through SubmitAction so the same
// natural-key idempotency applies; collections never trigger matching.
func (s *Service) Collect(ctx context.Context, actorID, cardID string, scene db.SceneType) (*SubmitResult, error) {
	return s.SubmitAction(ctx, SubmitInput{
		ActorID:    actorID,
		CardID:     cardID,
		ActionType: db.ActionCollection,
		SceneType:  scene,
	})
}

// CancelResult reports a collection cancellation.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CancelCollection removes a bookmark. Unlike swipe history, the row is
// hard-deleted so the card can be collected again later.
func (s *Service) CancelCollection(ctx context.Context, actorID, cardID string, scene db.SceneType) (*CancelResult, error) {
	if actorID == "" || cardID == "" {
		return nil, svcErr.Validation("actorId and cardId are required")
	}
	if !scene.Valid() {
		return nil, svcErr.Validation("invalid scene type %q", scene)
	}

	existing, err := s.actions.FindCollection(ctx, actorID, cardID, scene)
	if err != nil {
		return nil, svcErr.Persistence("collection lookup", err)
	}
	if existing == nil {
		return &CancelResult{Success: false, Message: "collection not found"}, nil
	}
	if err := s.actions.DeleteCollection(ctx, existing.ID); err != nil {
		return nil, svcErr.Persistence("collection delete", err)
	}
	return &CancelResult{Success: true, Message: "collection cancelled"}, nil
}

// CollectedCard is one bookmarked card with its owner's public profile.
type CollectedCard struct {
	CardID      string    `json:"cardId"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Avatar      string    `json:"avatar"`
	Bio         string    `json:"bio"`
	SceneType   string    `json:"sceneType"`
	CollectedAt time.Time `json:"collectedAt"`
}

// CollectedCards lists the actor's bookmarks, newest first. Scene is
// optional; empty lists across all scenes.
func (s *Service) CollectedCards(ctx context.Context, actorID string, scene db.SceneType, page, pageSize int) ([]CollectedCard, pagination.Meta, error) {
	if actorID == "" {
		return nil, pagination.Meta{}, svcErr.Validation("actorId is required")
	}
	if scene != "" && !scene.Valid() {
		return nil, pagination.Meta{}, svcErr.Validation("invalid scene type %q", scene)
	}
	p := pagination.Normalize(page, pageSize)

	rows, total, err := s.actions.ListCollections(ctx, actorID, scene, p)
	if err != nil {
		return nil, pagination.Meta{}, svcErr.Persistence("collection list", err)
	}

	userIDs := make([]string, 0, len(rows))
	for _, a := range rows {
		userIDs = append(userIDs, a.TargetUserID)
	}
	users, err := s.cards.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, pagination.Meta{}, svcErr.Persistence("collection user fetch", err)
	}

	cards := make([]CollectedCard, 0, len(rows))
	for _, a := range rows {
		owner := users[a.TargetUserID]
		cards = append(cards, CollectedCard{
			CardID:      a.TargetCardID,
			UserID:      a.TargetUserID,
			Name:        owner.Username,
			Avatar:      owner.AvatarURL,
			Bio:         owner.Bio,
			SceneType:   string(a.SceneType),
			CollectedAt: a.CreatedAt,
		})
	}
	return cards, pagination.NewMeta(p, total), nil
}

// ActionSummary is one row in the caller's action history listing.
type ActionSummary struct {
	ID           string    `json:"id"`
	TargetUserID string    `json:"targetUserId"`
	TargetCardID string    `json:"targetCardId"`
	ActionType   string    `json:"actionType"`
	SceneType    string    `json:"sceneType"`
	IsProcessed  bool      `json:"isProcessed"`
	CreatedAt    time.Time `json:"createdAt"`
	TargetName   string    `json:"targetName"`
	TargetAvatar string    `json:"targetAvatar"`
}

// UserMatches lists the caller's actions filtered by match status.
func (s *Service) UserMatches(ctx context.Context, actorID string, filter repository.ActionStatusFilter, page, pageSize int) ([]ActionSummary, pagination.Meta, error) {
	if actorID == "" {
		return nil, pagination.Meta{}, svcErr.Validation("actorId is required")
	}
	switch filter {
	case repository.FilterAll, repository.FilterPending, repository.FilterMatched,
		repository.FilterRejected, repository.FilterExpired:
	default:
		return nil, pagination.Meta{}, svcErr.Validation("invalid status filter %q", filter)
	}
	p := pagination.Normalize(page, pageSize)

	rows, total, err := s.actions.ListByActor(ctx, actorID, filter, p, s.now())
	if err != nil {
		return nil, pagination.Meta{}, svcErr.Persistence("action list", err)
	}

	userIDs := make([]string, 0, len(rows))
	for _, a := range rows {
		userIDs = append(userIDs, a.TargetUserID)
	}
	users, err := s.cards.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, pagination.Meta{}, svcErr.Persistence("action user fetch", err)
	}

	out := make([]ActionSummary, 0, len(rows))
	for _, a := range rows {
		target := users[a.TargetUserID]
		out = append(out, ActionSummary{
			ID:           a.ID,
			TargetUserID: a.TargetUserID,
			TargetCardID: a.TargetCardID,
			ActionType:   string(a.ActionType),
			SceneType:    string(a.SceneType),
			IsProcessed:  a.IsProcessed,
			CreatedAt:    a.CreatedAt,
			TargetName:   target.Username,
			TargetAvatar: target.AvatarURL,
		})
	}
	return out, pagination.NewMeta(p, total), nil
}

// MatchDetail is the expanded view of one of the caller's actions.
type MatchDetail struct {
	ID           string     `json:"id"`
	TargetUserID string     `json:"targetUserId"`
	TargetCardID string     `json:"targetCardId"`
	ActionType   string     `json:"actionType"`
	SceneType    string     `json:"sceneType"`
	CreatedAt    time.Time  `json:"createdAt"`
	TargetName   string     `json:"targetName"`
	TargetAvatar string     `json:"targetAvatar"`
	TargetBio    string     `json:"targetBio"`
	TargetAge    int        `json:"targetAge"`
	IsCollected  bool       `json:"isCollected"`
	CollectedAt  *time.Time `json:"collectedAt,omitempty"`
	MatchID      string     `json:"matchId,omitempty"`
	MatchStatus  string     `json:"matchStatus,omitempty"`
	MatchedAt    *time.Time `json:"matchedAt,omitempty"`
}

// Detail returns one action of the caller with the target's profile and
// whether the caller has the target's card bookmarked.
func (s *Service) Detail(ctx context.Context, actorID, actionID string) (*MatchDetail, error) {
	if actorID == "" || actionID == "" {
		return nil, svcErr.Validation("actorId and id are required")
	}

	action, err := s.actions.FindByID(ctx, actionID)
	if err != nil {
		return nil, svcErr.Persistence("action fetch", err)
	}
	if action == nil || action.ActorID != actorID {
		return nil, svcErr.NotFound("action %q not found", actionID)
	}

	target, err := s.cards.FindUser(ctx, action.TargetUserID)
	if err != nil {
		return nil, svcErr.Persistence("user fetch", err)
	}
	if target == nil {
		return nil, svcErr.NotFound("target user for action %q not found", actionID)
	}

	detail := &MatchDetail{
		ID:           action.ID,
		TargetUserID: action.TargetUserID,
		TargetCardID: action.TargetCardID,
		ActionType:   string(action.ActionType),
		SceneType:    string(action.SceneType),
		CreatedAt:    action.CreatedAt,
		TargetName:   target.Username,
		TargetAvatar: target.AvatarURL,
		TargetBio:    target.Bio,
		TargetAge:    target.Age,
	}

	collection, err := s.actions.FindCollection(ctx, actorID, action.TargetCardID, action.SceneType)
	if err != nil {
		return nil, svcErr.Persistence("collection lookup", err)
	}
	if collection != nil {
		detail.IsCollected = true
		collectedAt := collection.CreatedAt
		detail.CollectedAt = &collectedAt
	}

	// A processed positive action belongs to a match; attach it.
	if action.ActionType.Positive() && action.IsProcessed {
		userA, userB := repository.CanonicalPair(actorID, action.TargetUserID)
		rec, err := s.matches.FindByPair(ctx, userA, userB, action.SceneType)
		if err != nil {
			return nil, svcErr.Persistence("match fetch", err)
		}
		if rec != nil {
			detail.MatchID = rec.ID
			detail.MatchStatus = string(rec.Status)
			matchedAt := rec.MatchedAt
			detail.MatchedAt = &matchedAt
		}
	}
	return detail, nil
}

// Statistics summarizes the caller's recent activity.
type Statistics struct {
	TotalActions      int64            `json:"totalActions"`
	ActionBreakdown   map[string]int64 `json:"actionBreakdown"`
	AIRecommendations int64            `json:"aiRecommendations"`
	Period            string           `json:"period"`
}

// UserStatistics computes the caller's action breakdown over a trailing
// window. Cache-first: Redis holds the serialized result with a TTL that
// refreshes on access, DB is the fallback.
func (s *Service) UserStatistics(ctx context.Context, actorID string, scene db.SceneType, days int) (*Statistics, error) {
	if actorID == "" {
		return nil, svcErr.Validation("actorId is required")
	}
	if scene != "" && !scene.Valid() {
		return nil, svcErr.Validation("invalid scene type %q", scene)
	}
	if days <= 0 {
		days = 30
	}

	ttl := time.Duration(s.appCtx.Cfg.Match.StatsCacheTTLSeconds) * time.Second
	key := s.appCtx.RedisCache.KeyForStatistics(actorID, string(scene), days)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		var stats Statistics
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			_ = s.appCtx.RedisCache.Expire(ctx, key, ttl)
			return &stats, nil
		}
	}

	since := s.now().AddDate(0, 0, -days)
	breakdown, total, err := s.actions.StatisticsBreakdown(ctx, actorID, scene, since)
	if err != nil {
		return nil, svcErr.Persistence("statistics", err)
	}

	stats := &Statistics{
		TotalActions:    total,
		ActionBreakdown: make(map[string]int64, len(breakdown)),
		Period:          fmt.Sprintf("%d days", days),
	}
	for t, n := range breakdown {
		stats.ActionBreakdown[string(t)] = n
		if t.AIRecommendation() {
			stats.AIRecommendations += n
		}
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, string(payload), ttl)
	}
	return stats, nil
}
