package main

import (
	"context"

	"github.com/minglehq/matchsvc/internal/app"
	"github.com/minglehq/matchsvc/internal/cache"
	"github.com/minglehq/matchsvc/internal/config"
	"github.com/minglehq/matchsvc/internal/db"
	"github.com/minglehq/matchsvc/internal/events"
	"github.com/minglehq/matchsvc/internal/logger"
	"github.com/minglehq/matchsvc/internal/server"
	"github.com/minglehq/matchsvc/internal/service/match"
	"github.com/minglehq/matchsvc/internal/service/recommend"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	publisher := events.NewRedisPublisher(redisCache, log)
	appCtx := app.New(cfg, database, redisCache, publisher, log)

	registrars := []server.Registrar{
		match.NewRegistrar(appCtx),
		recommend.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
