package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/api/validators"
	"github.com/skumawat/bidkart-backend/internal/chat"
	"github.com/skumawat/bidkart-backend/internal/realtime"
	"github.com/skumawat/bidkart-backend/pkg/config"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

// Presence tracks which users currently hold a live connection. Implemented
// by the redis client; nil disables tracking.
type Presence interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	PresenceKey(userID string) string
}

// StreamEvents is the SSE transport. Browsers authenticate with the token
// query parameter since EventSource cannot set headers.
func StreamEvents(hub *realtime.Hub, presence Presence, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		sub := hub.Subscribe(caller.UserID)
		defer hub.Unsubscribe(sub)

		if presence != nil {
			key := presence.PresenceKey(caller.UserID.String())
			if err := presence.Set(r.Context(), key, sub.ID.String(), 2*cfg.HeartbeatInterval); err != nil {
				logg.Warn(r.Context(), "presence registration failed")
			}
			defer func() {
				if err := presence.Del(context.Background(), key); err != nil {
					logg.Warn(context.Background(), "presence cleanup failed")
				}
			}()
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(cfg.HeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case event := <-sub.C:
				if err := writeSSE(w, event); err != nil {
					return
				}
				flusher.Flush()
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
				if presence != nil {
					key := presence.PresenceKey(caller.UserID.String())
					if err := presence.Set(r.Context(), key, sub.ID.String(), 2*cfg.HeartbeatInterval); err != nil {
						logg.Warn(r.Context(), "presence refresh failed")
					}
				}
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, event realtime.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, payload)
	return err
}

// JoinChatRoom subscribes the caller's connections to a chat room after
// verifying they participate in the chat.
func JoinChatRoom(hub *realtime.Hub, chats chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := validators.ParsePathUUID(chi.URLParam(r, "chatId"), "chatId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		room, err := chats.Room(r.Context(), caller.UserID, chatID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hub.JoinRoom(room, caller.UserID)
		responses.WriteSuccess(w, map[string]string{"room": room})
	}
}

// LeaveChatRoom drops the caller's connections from a chat room.
func LeaveChatRoom(hub *realtime.Hub, chats chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		chatID, err := validators.ParsePathUUID(chi.URLParam(r, "chatId"), "chatId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		room, err := chats.Room(r.Context(), caller.UserID, chatID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hub.LeaveRoom(room, caller.UserID)
		responses.WriteSuccess(w, map[string]string{"room": room})
	}
}
