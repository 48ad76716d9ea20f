package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglehq/matchsvc/internal/db"
	"github.com/minglehq/matchsvc/internal/repository"
)

func TestCanonicalPair(t *testing.T) {
	a, b := repository.CanonicalPair("u2", "u1")
	assert.Equal(t, "u1", a)
	assert.Equal(t, "u2", b)

	a, b = repository.CanonicalPair("u1", "u2")
	assert.Equal(t, "u1", a)
	assert.Equal(t, "u2", b)
}

func newMatchRecord(actionA, actionB *db.MatchAction) *db.MatchRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &db.MatchRecord{
		ID:             uuid.NewString(),
		UserAID:        actionA.ActorID,
		UserBID:        actionB.ActorID,
		UserACardID:    actionB.TargetCardID,
		UserBCardID:    actionA.TargetCardID,
		SceneType:      actionA.SceneType,
		Status:         db.MatchStatusMatched,
		UserAActionID:  actionA.ID,
		UserBActionID:  actionB.ID,
		MatchedAt:      now,
		LastActivityAt: now,
		IsActive:       true,
	}
}

func TestCreateMarksActionsProcessed(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	actions := repository.NewActionRepository(database)
	matches := repository.NewMatchRepository(database)

	actionA := newAction("u1", "u2", "card-b", db.ActionLike, db.SceneDating)
	actionB := newAction("u2", "u1", "card-a", db.ActionLike, db.SceneDating)
	_, _, err := actions.Insert(ctx, actionA)
	require.NoError(t, err)
	_, _, err = actions.Insert(ctx, actionB)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	created, err := matches.Create(ctx, newMatchRecord(actionA, actionB), now)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, db.MatchStatusMatched, created.Status)

	for _, id := range []string{actionA.ID, actionB.ID} {
		row, err := actions.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.True(t, row.IsProcessed)
		require.NotNil(t, row.ProcessedAt)
	}
}

func TestCreateDuplicatePairReturnsWinner(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	actions := repository.NewActionRepository(database)
	matches := repository.NewMatchRepository(database)

	actionA := newAction("u1", "u2", "card-b", db.ActionLike, db.SceneDating)
	actionB := newAction("u2", "u1", "card-a", db.ActionLike, db.SceneDating)
	_, _, err := actions.Insert(ctx, actionA)
	require.NoError(t, err)
	_, _, err = actions.Insert(ctx, actionB)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	winner, err := matches.Create(ctx, newMatchRecord(actionA, actionB), now)
	require.NoError(t, err)

	// Second insert for the same canonical key must not error and must
	// hand back the winner's record.
	loser, err := matches.Create(ctx, newMatchRecord(actionA, actionB), now)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, loser.ID)

	var count int64
	require.NoError(t, database.Model(&db.MatchRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// TestConcurrentCreateExactlyOne races two writers on the same canonical
// pair key behind a start barrier; the unique index must let exactly one
// insert through, with the loser observing the winner's record.
func TestConcurrentCreateExactlyOne(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	actions := repository.NewActionRepository(database)
	matches := repository.NewMatchRepository(database)

	actionA := newAction("u1", "u2", "card-b", db.ActionLike, db.SceneDating)
	actionB := newAction("u2", "u1", "card-a", db.ActionLike, db.SceneDating)
	_, _, err := actions.Insert(ctx, actionA)
	require.NoError(t, err)
	_, _, err = actions.Insert(ctx, actionB)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)

	start := make(chan struct{})
	results := make([]*db.MatchRecord, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = matches.Create(ctx, newMatchRecord(actionA, actionB), now)
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, results[0].ID, results[1].ID)

	var count int64
	require.NoError(t, database.Model(&db.MatchRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindByPair(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	actions := repository.NewActionRepository(database)
	matches := repository.NewMatchRepository(database)

	missing, err := matches.FindByPair(ctx, "u1", "u2", db.SceneDating)
	require.NoError(t, err)
	assert.Nil(t, missing)

	actionA := newAction("u1", "u2", "card-b", db.ActionLike, db.SceneDating)
	actionB := newAction("u2", "u1", "card-a", db.ActionLike, db.SceneDating)
	_, _, err = actions.Insert(ctx, actionA)
	require.NoError(t, err)
	_, _, err = actions.Insert(ctx, actionB)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	created, err := matches.Create(ctx, newMatchRecord(actionA, actionB), now)
	require.NoError(t, err)

	found, err := matches.FindByPair(ctx, "u1", "u2", db.SceneDating)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	// Scene scopes the pair key.
	other, err := matches.FindByPair(ctx, "u1", "u2", db.SceneActivity)
	require.NoError(t, err)
	assert.Nil(t, other)
}
