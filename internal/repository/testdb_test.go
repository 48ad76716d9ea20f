package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minglehq/matchsvc/internal/db"
)

// setupTestDB opens an isolated in-memory SQLite DB with the schema
// migrated. TranslateError is on so duplicate-key conflicts surface as
// gorm.ErrDuplicatedKey, same as production; the busy timeout keeps
// concurrent writers from tripping over SQLITE_BUSY.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(&db.User{}, &db.UserCard{}, &db.MatchAction{}, &db.MatchRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

// newAction builds a MatchAction row with a fresh id.
func newAction(actor, target, card string, actionType db.ActionType, scene db.SceneType) *db.MatchAction {
	return &db.MatchAction{
		ID:           uuid.NewString(),
		ActorID:      actor,
		TargetUserID: target,
		TargetCardID: card,
		ActionType:   actionType,
		SceneType:    scene,
		Source:       db.SourceUser,
	}
}
