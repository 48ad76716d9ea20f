package repository

import (
	"context"
	"errors"
	"time"

	"github.com/minglehq/matchsvc/internal/db"

	"gorm.io/gorm"
)

// MatchRepository provides data access for MatchRecord rows. The unique
// index on (user_a_id, user_b_id, scene_type) is the arbiter when both
// sides of a reciprocal pair race to create the record.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CanonicalPair orders two user ids so the smaller is always userA.
// MatchRecord rows are keyed on this ordering, independent of who
// acted first.
func CanonicalPair(u1, u2 string) (string, string) {
	if u1 < u2 {
		return u1, u2
	}
	return u2, u1
}

// FindByPair returns the match record for the canonical pair key, or nil.
func (r *MatchRepository) FindByPair(
	ctx context.Context,
	userAID, userBID string,
	scene db.SceneType,
) (*db.MatchRecord, error) {
	var rec db.MatchRecord
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ? AND scene_type = ?", userAID, userBID, scene).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts the match record and marks both underlying actions
// processed, all in one transaction.
//
// When the unique pair index rejects the insert — the other side's
// request committed first — the losing transaction is rolled back and
// the winner's record is returned instead. Callers never see the
// conflict.
func (r *MatchRepository) Create(
	ctx context.Context,
	rec *db.MatchRecord,
	now time.Time,
) (*db.MatchRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return tx.Model(&db.MatchAction{}).
			Where("id IN ?", []string{rec.UserAActionID, rec.UserBActionID}).
			Updates(map[string]any{"is_processed": true, "processed_at": now}).Error
	})
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		winner, ferr := r.FindByPair(ctx, rec.UserAID, rec.UserBID, rec.SceneType)
		if ferr != nil {
			return nil, ferr
		}
		if winner == nil {
			return nil, err
		}
		return winner, nil
	}
	return nil, err
}
