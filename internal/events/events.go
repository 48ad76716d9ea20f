// Package events publishes domain notifications for downstream
// consumers (push delivery, chat bootstrap, analytics). The match core
// never blocks on or retries delivery.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/minglehq/matchsvc/internal/cache"
	"github.com/minglehq/matchsvc/internal/db"
)

const (
	ChannelActionRecorded = "match:events:action_recorded"
	ChannelMatchCreated   = "match:events:match_created"
)

// ActionRecorded is emitted after a new action row is persisted.
type ActionRecorded struct {
	ActionID     string          `json:"actionId"`
	ActorID      string          `json:"actorId"`
	TargetUserID string          `json:"targetUserId"`
	TargetCardID string          `json:"targetCardId"`
	ActionType   db.ActionType   `json:"actionType"`
	SceneType    db.SceneType    `json:"sceneType"`
	Source       db.ActionSource `json:"source"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// MatchCreated is emitted after a new match record is committed.
type MatchCreated struct {
	MatchID    string       `json:"matchId"`
	UserAID    string       `json:"userAId"`
	UserBID    string       `json:"userBId"`
	SceneType  db.SceneType `json:"sceneType"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// Publisher is the outward-facing emitter contract.
type Publisher interface {
	ActionRecorded(ev ActionRecorded)
	MatchCreated(ev MatchCreated)
}

// publishTimeout bounds the detached publish goroutine; a stuck broker
// must not leak goroutines.
const publishTimeout = 5 * time.Second

// RedisPublisher emits events on Redis pub/sub channels. Each publish
// runs in its own goroutine; failures are logged and dropped.
type RedisPublisher struct {
	cache *cache.RedisCache
	log   *slog.Logger
}

func NewRedisPublisher(c *cache.RedisCache, log *slog.Logger) *RedisPublisher {
	return &RedisPublisher{cache: c, log: log}
}

func (p *RedisPublisher) ActionRecorded(ev ActionRecorded) {
	p.emit(ChannelActionRecorded, ev)
}

func (p *RedisPublisher) MatchCreated(ev MatchCreated) {
	p.emit(ChannelMatchCreated, ev)
}

func (p *RedisPublisher) emit(channel string, ev any) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("failed to marshal event", "channel", channel, "err", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.cache.Publish(ctx, channel, payload); err != nil {
			p.log.Warn("event publish failed", "channel", channel, "err", err)
		}
	}()
}

// NopPublisher discards all events. Used in tests and tooling.
type NopPublisher struct{}

func (NopPublisher) ActionRecorded(ActionRecorded) {}
func (NopPublisher) MatchCreated(MatchCreated)     {}
