package match

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/minglehq/matchsvc/internal/db"
	"github.com/minglehq/matchsvc/internal/repository"
)

// Detector runs the reciprocity check after a positive action lands and
// owns the absent→matched transition of MatchRecord. Every other state
// transition (unmatch, block, expiry) is driven externally.
type Detector struct {
	actions *repository.ActionRepository
	matches *repository.MatchRepository
	now     func() time.Time
}

// NewDetector wires the detector to its repositories.
func NewDetector(actions *repository.ActionRepository, matches *repository.MatchRepository) *Detector {
	return &Detector{
		actions: actions,
		matches: matches,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// TryCreateMatch checks whether the freshly persisted action completes
// a reciprocal pair and, if so, creates the match record exactly once.
//
// Non-positive actions return immediately without any lookup. When both
// sides' requests race past the reciprocity check, the unique pair
// index lets exactly one insert win; the loser is handed the winner's
// record by the repository, so both callers observe the same match.
func (d *Detector) TryCreateMatch(ctx context.Context, action *db.MatchAction) (bool, string, error) {
	if !action.ActionType.Positive() {
		return false, "", nil
	}

	reverse, err := d.actions.FindReversePositive(ctx, action.TargetUserID, action.ActorID, action.SceneType)
	if err != nil {
		return false, "", err
	}
	if reverse == nil {
		return false, "", nil
	}

	userA, userB := repository.CanonicalPair(action.ActorID, action.TargetUserID)

	existing, err := d.matches.FindByPair(ctx, userA, userB, action.SceneType)
	if err != nil {
		return false, "", err
	}
	if existing != nil {
		return true, existing.ID, nil
	}

	// Each action targets the other side's card, so the actor's own
	// card is whatever the reverse action was aimed at.
	actorCardID := reverse.TargetCardID
	targetCardID := action.TargetCardID

	now := d.now()
	rec := &db.MatchRecord{
		ID:             uuid.NewString(),
		UserAID:        userA,
		UserBID:        userB,
		SceneType:      action.SceneType,
		Status:         db.MatchStatusMatched,
		MatchedAt:      now,
		LastActivityAt: now,
		IsActive:       true,
	}
	if userA == action.ActorID {
		rec.UserACardID = actorCardID
		rec.UserBCardID = targetCardID
		rec.UserAActionID = action.ID
		rec.UserBActionID = reverse.ID
	} else {
		rec.UserACardID = targetCardID
		rec.UserBCardID = actorCardID
		rec.UserAActionID = reverse.ID
		rec.UserBActionID = action.ID
	}

	created, err := d.matches.Create(ctx, rec, now)
	if err != nil {
		return false, "", err
	}
	return true, created.ID, nil
}
