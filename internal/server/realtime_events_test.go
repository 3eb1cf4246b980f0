package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quilog/internal/models"
	"quilog/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, c *notifications.Client) Event {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFeedEvents_LocalHub_OneCopyPerSocket(t *testing.T) {
	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Shutdown(context.Background()) })
	events := newFeedEvents(hub, notifications.NewNotifier(nil))

	owner, err := hub.Register("owner", nil)
	require.NoError(t, err)
	reader, err := hub.Register("reader", nil)
	require.NoError(t, err)

	events.LikesChanged(context.Background(), "p1", []string{"reader"})

	for _, c := range []*notifications.Client{reader, owner} {
		ev := nextEvent(t, c)
		assert.Equal(t, EventPostLikesUpdated, ev.Type)
		payload := ev.Payload.(map[string]any)
		assert.Equal(t, "p1", payload["post_id"])
		assert.EqualValues(t, 1, payload["like_count"])
		assert.Empty(t, c.Send)
	}

	events.CommentAppended(context.Background(), "p1", &models.Comment{ID: "c1", Text: "hi"})
	assert.Equal(t, EventCommentAppended, nextEvent(t, reader).Type)
	assert.Equal(t, EventCommentAppended, nextEvent(t, owner).Type)
	assert.Empty(t, owner.Send)
	assert.Empty(t, reader.Send)
}

func TestFeedEvents_ProfileUpdatedGoesToOwnerOnly(t *testing.T) {
	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Shutdown(context.Background()) })
	events := newFeedEvents(hub, notifications.NewNotifier(nil))

	owner, err := hub.Register("u1", nil)
	require.NoError(t, err)
	other, err := hub.Register("u2", nil)
	require.NoError(t, err)

	events.ProfileUpdated(context.Background(), &models.Profile{ID: "u1", Name: "Ada"})

	ev := nextEvent(t, owner)
	assert.Equal(t, EventProfileUpdated, ev.Type)
	assert.Equal(t, "Ada", ev.Payload.(map[string]any)["name"])
	assert.Empty(t, owner.Send)
	assert.Empty(t, other.Send)
}

func TestFeedEvents_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	sub := rdb.PSubscribe(ctx, "notifications:*")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Shutdown(ctx) })
	local, err := hub.Register("owner", nil)
	require.NoError(t, err)

	events := newFeedEvents(hub, notifications.NewNotifier(rdb))
	events.PostCreated(ctx, &models.Post{ID: "p1", UserID: "owner", Title: "Hello", CreatedAt: time.Now()})
	events.ProfileUpdated(ctx, &models.Profile{ID: "owner", Name: "Ada"})

	var got []*redis.Message
	for i := 0; i < 2; i++ {
		select {
		case msg := <-sub.Channel():
			got = append(got, msg)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for redis message")
		}
	}

	// the post event goes out once, on the broadcast channel only
	assert.Equal(t, notifications.BroadcastChannel, got[0].Channel)
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(got[0].Payload), &ev))
	assert.Equal(t, EventPostCreated, ev.Type)

	assert.Equal(t, notifications.UserChannel("owner"), got[1].Channel)
	require.NoError(t, json.Unmarshal([]byte(got[1].Payload), &ev))
	assert.Equal(t, EventProfileUpdated, ev.Type)

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected extra message on %s", msg.Channel)
	case <-time.After(100 * time.Millisecond):
	}

	// with Redis the hub only hears events through its subscription
	assert.Empty(t, local.Send)
}

func TestFeedEvents_HubDeliversRedisEventOnce(t *testing.T) {
	hub := notifications.NewHub()
	t.Cleanup(func() { _ = hub.Shutdown(context.Background()) })
	owner, err := hub.Register("owner", nil)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	notifier := notifications.NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.StartWiring(ctx, notifier) }()
	require.Eventually(t, func() bool {
		return mr.PubSubNumPat() == 2
	}, time.Second, 10*time.Millisecond)

	newFeedEvents(hub, notifier).LikesChanged(ctx, "p1", []string{"owner"})

	assert.Equal(t, EventPostLikesUpdated, nextEvent(t, owner).Type)
	select {
	case raw := <-owner.Send:
		t.Fatalf("duplicate event: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}
