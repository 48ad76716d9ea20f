package repository

import (
	"context"
	"errors"
	"time"

	"github.com/minglehq/matchsvc/internal/db"
	"github.com/minglehq/matchsvc/internal/utils/pagination"

	"gorm.io/gorm"
)

// ActionRepository provides data access for MatchAction rows. It owns
// the natural-key idempotency guarantee: the unique index on
// (actor, target user, target card, scene) means Insert either creates
// exactly one row or reports the existing one.
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new repository bound to the given DB connection.
func NewActionRepository(database *gorm.DB) *ActionRepository {
	return &ActionRepository{db: database}
}

// FindByNaturalKey returns the action for the natural key, or nil when
// no row exists.
func (r *ActionRepository) FindByNaturalKey(
	ctx context.Context,
	actorID, targetUserID, targetCardID string,
	scene db.SceneType,
) (*db.MatchAction, error) {
	var action db.MatchAction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_user_id = ? AND target_card_id = ? AND scene_type = ?",
			actorID, targetUserID, targetCardID, scene).
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// FindByID returns a single action row.
func (r *ActionRepository) FindByID(ctx context.Context, id string) (*db.MatchAction, error) {
	var action db.MatchAction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// Insert persists a new action row.
//
// Returns (inserted=false, existing row) when the natural key already
// holds a row — either found up front or discovered via the unique
// index when two submissions race. The losing writer observes the
// winner's row instead of erroring.
func (r *ActionRepository) Insert(ctx context.Context, action *db.MatchAction) (bool, *db.MatchAction, error) {
	err := r.db.WithContext(ctx).Create(action).Error
	if err == nil {
		return true, action, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, ferr := r.FindByNaturalKey(ctx, action.ActorID, action.TargetUserID, action.TargetCardID, action.SceneType)
		if ferr != nil {
			return false, nil, ferr
		}
		if existing == nil {
			// Row vanished between conflict and refetch; surface the original error.
			return false, nil, err
		}
		return false, existing, nil
	}
	return false, nil, err
}

// FindReversePositive returns the positive (like/super_like) action the
// target holds toward the actor in the same scene, or nil. This is the
// reciprocity lookup; it deliberately ignores the card dimension, since
// interest in any of a user's cards counts.
func (r *ActionRepository) FindReversePositive(
	ctx context.Context,
	actorID, targetUserID string,
	scene db.SceneType,
) (*db.MatchAction, error) {
	var action db.MatchAction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_user_id = ? AND scene_type = ?", actorID, targetUserID, scene).
		Where("action_type IN ?", []db.ActionType{db.ActionLike, db.ActionSuperLike}).
		Order("created_at DESC").
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// ActedUserIDs returns the set of user ids the actor has already acted
// upon in the scene. The recommender uses it to exclude seen profiles.
func (r *ActionRepository) ActedUserIDs(ctx context.Context, actorID string, scene db.SceneType) (map[string]struct{}, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Where("actor_id = ? AND scene_type = ?", actorID, scene).
		Distinct().
		Pluck("target_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListAIRecommendations returns unprocessed AI-sourced rows created for
// the user in a scene, most recent first.
func (r *ActionRepository) ListAIRecommendations(
	ctx context.Context,
	userID string,
	scene db.SceneType,
) ([]db.MatchAction, error) {
	var actions []db.MatchAction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND scene_type = ? AND is_processed = ?", userID, scene, false).
		Where("source = ?", db.SourceAI).
		Order("created_at DESC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

// MarkRecommendationProcessed flips one AI recommendation to processed.
// Called by the external delivery scheduler, not by the read path.
func (r *ActionRepository) MarkRecommendationProcessed(ctx context.Context, actionID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Where("id = ?", actionID).
		Updates(map[string]any{"is_processed": true, "processed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ActionStatusFilter selects which of the actor's rows a listing returns.
type ActionStatusFilter string

const (
	FilterAll      ActionStatusFilter = "all"
	FilterPending  ActionStatusFilter = "pending"
	FilterMatched  ActionStatusFilter = "matched"
	FilterRejected ActionStatusFilter = "rejected"
	FilterExpired  ActionStatusFilter = "expired"
)

// expiryWindow is how long an unanswered positive action counts as
// pending before the "expired" listing picks it up.
const expiryWindow = 7 * 24 * time.Hour

// ListByActor returns the actor's actions filtered by match status,
// newest first, with the total row count for pagination.
func (r *ActionRepository) ListByActor(
	ctx context.Context,
	actorID string,
	filter ActionStatusFilter,
	p pagination.Params,
	now time.Time,
) ([]db.MatchAction, int64, error) {
	query := r.db.WithContext(ctx).Model(&db.MatchAction{}).Where("actor_id = ?", actorID)

	positive := []db.ActionType{db.ActionLike, db.ActionSuperLike}
	switch filter {
	case FilterPending:
		query = query.Where("action_type IN ? AND is_processed = ?", positive, false)
	case FilterMatched:
		matched := r.db.Model(&db.MatchRecord{}).
			Select("user_b_id").
			Where("user_a_id = ? AND status = ?", actorID, db.MatchStatusMatched)
		matchedRev := r.db.Model(&db.MatchRecord{}).
			Select("user_a_id").
			Where("user_b_id = ? AND status = ?", actorID, db.MatchStatusMatched)
		query = query.Where("target_user_id IN (?) OR target_user_id IN (?)", matched, matchedRev)
	case FilterRejected:
		query = query.Where("action_type = ?", db.ActionDislike)
	case FilterExpired:
		query = query.Where("action_type IN ? AND is_processed = ? AND created_at < ?",
			positive, false, now.Add(-expiryWindow))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var actions []db.MatchAction
	err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&actions).Error
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

// FindCollection returns the actor's collection row for a card, or nil.
func (r *ActionRepository) FindCollection(
	ctx context.Context,
	actorID, cardID string,
	scene db.SceneType,
) (*db.MatchAction, error) {
	var action db.MatchAction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_card_id = ? AND scene_type = ? AND action_type = ?",
			actorID, cardID, scene, db.ActionCollection).
		First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// DeleteCollection hard-deletes a collection row. Collections are
// toggleable bookmarks, not permanent swipe history, so cancellation
// removes the row entirely.
func (r *ActionRepository) DeleteCollection(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND action_type = ?", id, db.ActionCollection).
		Delete(&db.MatchAction{}).Error
}

// ListCollections returns the actor's collection rows, newest first.
// An empty scene lists across all scenes.
func (r *ActionRepository) ListCollections(
	ctx context.Context,
	actorID string,
	scene db.SceneType,
	p pagination.Params,
) ([]db.MatchAction, int64, error) {
	query := r.db.WithContext(ctx).Model(&db.MatchAction{}).
		Where("actor_id = ? AND action_type = ?", actorID, db.ActionCollection)
	if scene != "" {
		query = query.Where("scene_type = ?", scene)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var actions []db.MatchAction
	err := query.
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&actions).Error
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

// StatisticsBreakdown counts the actor's rows per action type since the
// cutoff. Backs the cached statistics endpoint.
func (r *ActionRepository) StatisticsBreakdown(
	ctx context.Context,
	actorID string,
	scene db.SceneType,
	since time.Time,
) (map[db.ActionType]int64, int64, error) {
	type row struct {
		ActionType db.ActionType
		Count      int64
	}
	var rows []row
	query := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Select("action_type, COUNT(id) AS count").
		Where("actor_id = ? AND created_at >= ?", actorID, since)
	if scene != "" {
		query = query.Where("scene_type = ?", scene)
	}
	if err := query.Group("action_type").Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	breakdown := make(map[db.ActionType]int64, len(rows))
	var total int64
	for _, rw := range rows {
		breakdown[rw.ActionType] = rw.Count
		total += rw.Count
	}
	return breakdown, total, nil
}
