package recommend_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minglehq/matchsvc/internal/app"
	"github.com/minglehq/matchsvc/internal/cache"
	"github.com/minglehq/matchsvc/internal/config"
	"github.com/minglehq/matchsvc/internal/db"
	svcErr "github.com/minglehq/matchsvc/internal/errors"
	"github.com/minglehq/matchsvc/internal/events"
	"github.com/minglehq/matchsvc/internal/service/recommend"
)

// seedPool inserts the requester plus n candidate users, each with one
// public dating card. Candidates get staggered ages and alternating
// locations so the heuristic produces a spread of scores.
func seedPool(t *testing.T, gdb *gorm.DB, n int) {
	t.Helper()

	requester := db.User{
		ID: "seeker", Username: "seeker", Email: "seeker@test.com", PasswordHash: "x",
		Gender: "male", Age: 30, Location: "Shanghai",
		Interests: db.StringList{"hiking", "jazz", "cooking"},
	}
	require.NoError(t, gdb.Create(&requester).Error)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		loc := "Shanghai"
		if i%2 == 1 {
			loc = "Beijing"
		}
		interests := db.StringList{"reading"}
		if i%3 == 0 {
			interests = db.StringList{"hiking", "jazz"}
		}
		u := db.User{
			ID:       fmt.Sprintf("cand%02d", i),
			Username: fmt.Sprintf("cand%02d", i), Email: fmt.Sprintf("cand%02d@test.com", i),
			PasswordHash: "x", Gender: "female",
			Age: 22 + i, Location: loc, Interests: interests,
		}
		require.NoError(t, gdb.Create(&u).Error)

		card := db.UserCard{
			ID: fmt.Sprintf("cand%02d_card", i), UserID: u.ID,
			SceneType: db.SceneDating, RoleType: "seeker",
			DisplayName: u.Username, Visibility: "public", IsActive: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(&card).Error)
	}
}

func setupService(t *testing.T, poolSize int) (*recommend.Service, *gorm.DB) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.User{}, &db.UserCard{}, &db.MatchAction{}, &db.MatchRecord{}))
	seedPool(t, gdb, poolSize)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg), events.NopPublisher{}, logger)
	return recommend.NewService(appCtx), gdb
}

// TestRecommendationsDeterministic: the same request served twice yields
// byte-for-byte identical pages.
func TestRecommendationsDeterministic(t *testing.T) {
	svc, _ := setupService(t, 12)
	ctx := context.Background()

	first, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, first.Cards)

	for i := 0; i < 3; i++ {
		again, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, first.Cards, again.Cards)
		assert.Equal(t, first.Pagination, again.Pagination)
	}
}

func TestRecommendationsOrdering(t *testing.T) {
	svc, _ := setupService(t, 15)

	res, err := svc.Recommendations(context.Background(), "seeker", db.SceneDating, "", 1, 15)
	require.NoError(t, err)
	require.NotEmpty(t, res.Cards)

	for i := 1; i < len(res.Cards); i++ {
		prev, cur := res.Cards[i-1], res.Cards[i]
		if prev.Score == cur.Score {
			assert.Less(t, prev.UserID, cur.UserID)
		} else {
			assert.Greater(t, prev.Score, cur.Score)
		}
		assert.Equal(t, "heuristic", cur.Source)
	}
}

// TestRecommendationsPaginationStable: consecutive pages are disjoint
// and together equal one double-sized page.
func TestRecommendationsPaginationStable(t *testing.T) {
	svc, _ := setupService(t, 25)
	ctx := context.Background()

	page1, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
	require.NoError(t, err)
	page2, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 2, 10)
	require.NoError(t, err)
	require.Len(t, page1.Cards, 10)
	require.Len(t, page2.Cards, 10)

	combined, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, combined.Cards, 20)

	assert.Equal(t, combined.Cards[:10], page1.Cards)
	assert.Equal(t, combined.Cards[10:], page2.Cards)
	assert.EqualValues(t, 25, page1.Pagination.Total)
}

func TestRecommendationsExcludeActedUsers(t *testing.T) {
	svc, gdb := setupService(t, 6)
	ctx := context.Background()

	action := db.MatchAction{
		ID: "a1", ActorID: "seeker", TargetUserID: "cand02", TargetCardID: "cand02_card",
		ActionType: db.ActionDislike, SceneType: db.SceneDating, Source: db.SourceUser,
	}
	require.NoError(t, gdb.Create(&action).Error)

	res, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 5)
	for _, c := range res.Cards {
		assert.NotEqual(t, "cand02", c.UserID)
	}
}

// TestAIRecommendationsBypassScoring: unprocessed AI-sourced rows are
// served as-is, newest first, and the heuristic pool is never consulted.
func TestAIRecommendationsBypassScoring(t *testing.T) {
	svc, gdb := setupService(t, 6)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []db.MatchAction{
		{
			ID: "ai1", ActorID: "seeker", TargetUserID: "cand00", TargetCardID: "cand00_card",
			ActionType: db.ActionAIRecommendSystem, SceneType: db.SceneDating, Source: db.SourceAI,
			SceneContext: `{"matchScore": 97, "reason": "shares your love of jazz"}`,
			CreatedAt:    base,
		},
		{
			ID: "ai2", ActorID: "seeker", TargetUserID: "cand01", TargetCardID: "cand01_card",
			ActionType: db.ActionAIRecommendSystem, SceneType: db.SceneDating, Source: db.SourceAI,
			CreatedAt: base.Add(time.Minute),
		},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	res, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Cards, 2)

	// Newest AI row first.
	assert.Equal(t, "cand01", res.Cards[0].UserID)
	assert.Equal(t, 90, res.Cards[0].Score)
	assert.Equal(t, "AI recommendation", res.Cards[0].Reason)
	assert.Equal(t, "ai", res.Cards[0].Source)

	assert.Equal(t, "cand00", res.Cards[1].UserID)
	assert.Equal(t, 97, res.Cards[1].Score)
	assert.Equal(t, "shares your love of jazz", res.Cards[1].Reason)
}

func TestAIRecommendationsIgnoreProcessedRows(t *testing.T) {
	svc, gdb := setupService(t, 4)
	ctx := context.Background()

	processedAt := time.Now().UTC()
	row := db.MatchAction{
		ID: "ai1", ActorID: "seeker", TargetUserID: "cand00", TargetCardID: "cand00_card",
		ActionType: db.ActionAIRecommendSystem, SceneType: db.SceneDating, Source: db.SourceAI,
		IsProcessed: true, ProcessedAt: &processedAt,
	}
	require.NoError(t, gdb.Create(&row).Error)

	res, err := svc.Recommendations(ctx, "seeker", db.SceneDating, "", 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, res.Cards)
	// Falls through to the heuristic path.
	assert.Equal(t, "heuristic", res.Cards[0].Source)
}

func TestRecommendationsValidation(t *testing.T) {
	svc, _ := setupService(t, 2)
	ctx := context.Background()

	_, err := svc.Recommendations(ctx, "", db.SceneDating, "", 1, 10)
	var ve *svcErr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Recommendations(ctx, "seeker", "karaoke", "", 1, 10)
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Recommendations(ctx, "ghost", db.SceneDating, "", 1, 10)
	var nfe *svcErr.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}
