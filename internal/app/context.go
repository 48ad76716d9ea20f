package app

import (
	"log/slog"

	"github.com/minglehq/matchsvc/internal/cache"
	"github.com/minglehq/matchsvc/internal/config"
	"github.com/minglehq/matchsvc/internal/events"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Logger, event publisher).
type AppContext struct {
	Cfg        *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Events     events.Publisher
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, pub events.Publisher, logger *slog.Logger) *AppContext {
	return &AppContext{
		Cfg:        cfg,
		DB:         db,
		RedisCache: rdb,
		Events:     pub,
		Logger:     logger,
	}
}
