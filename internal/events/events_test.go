package events_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglehq/matchsvc/internal/cache"
	"github.com/minglehq/matchsvc/internal/config"
	"github.com/minglehq/matchsvc/internal/db"
	"github.com/minglehq/matchsvc/internal/events"
)

func setupPublisher(t *testing.T) (*events.RedisPublisher, *cache.RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	c := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return events.NewRedisPublisher(c, logger), c
}

func TestRedisPublisherActionRecorded(t *testing.T) {
	pub, c := setupPublisher(t)
	ctx := context.Background()

	sub := c.Client.Subscribe(ctx, events.ChannelActionRecorded)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx) // wait for the subscription to be live
	require.NoError(t, err)

	pub.ActionRecorded(events.ActionRecorded{
		ActionID:   "a1",
		ActorID:    "u1",
		ActionType: db.ActionLike,
		SceneType:  db.SceneDating,
	})

	select {
	case msg := <-sub.Channel():
		var ev events.ActionRecorded
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "a1", ev.ActionID)
		assert.Equal(t, "u1", ev.ActorID)
		assert.Equal(t, db.ActionLike, ev.ActionType)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisPublisherMatchCreated(t *testing.T) {
	pub, c := setupPublisher(t)
	ctx := context.Background()

	sub := c.Client.Subscribe(ctx, events.ChannelMatchCreated)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub.MatchCreated(events.MatchCreated{
		MatchID: "m1",
		UserAID: "u1",
		UserBID: "u2",
	})

	select {
	case msg := <-sub.Channel():
		var ev events.MatchCreated
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "m1", ev.MatchID)
		assert.Equal(t, "u1", ev.UserAID)
		assert.Equal(t, "u2", ev.UserBID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
