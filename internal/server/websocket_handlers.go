package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"quilog/internal/middleware"
	"quilog/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	wsLog := observability.NewWSLogger(s.hub.Name())

	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()
		uid, _ := conn.Locals(middleware.LocalUserID).(string)
		if uid == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			observability.GlobalLogger.Warn("feed websocket rejected",
				slog.String("user_id", uid), slog.String("error", err.Error()))
			msg, _ := json.Marshal(Event{Type: "error", Payload: fiber.Map{"message": err.Error()}})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}
		wsLog.LogConnect(ctx, uid)

		if hello, err := json.Marshal(Event{Type: EventConnected, Payload: s.helloPayload(uid)}); err == nil {
			client.TrySend(hello)
		}

		go client.WritePump()
		client.ReadPump()

		wsLog.LogDisconnect(ctx, uid, "closed")
	})
}

// feedEntry is one post's counts in the hello frame.
type feedEntry struct {
	PostID       string `json:"post_id"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

// helloPayload greets a new socket with the counts of the held feed, so a
// client can render engagement before its first feed request. The feed is
// omitted until one has been loaded.
func (s *Server) helloPayload(uid string) fiber.Map {
	payload := fiber.Map{"user_id": uid}
	if !s.feed.Loaded() {
		return payload
	}
	posts := s.feed.Posts()
	entries := make([]feedEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, feedEntry{PostID: p.ID, LikeCount: len(p.Likes), CommentCount: len(p.Comments)})
	}
	payload["feed"] = entries
	return payload
}
