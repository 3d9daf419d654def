package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skumawat/bidkart-backend/api/responses"
	"github.com/skumawat/bidkart-backend/api/validators"
	"github.com/skumawat/bidkart-backend/internal/chat"
	"github.com/skumawat/bidkart-backend/pkg/logger"
)

// OpenChat opens (or returns) the single chat attached to an order.
func OpenChat(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		room, err := svc.OpenForOrder(r.Context(), caller.UserID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, room)
	}
}

// ListChats returns the caller's chats with unread counts and the latest
// message preview.
func ListChats(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := identity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListForUser(r.Context(), caller.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// ListChatMessages pages a chat's history newest first and marks the
// returned page read for the caller.
func ListChatMessages(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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
		params, err := cursorParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Messages(r.Context(), caller.UserID, chat.MessagesInput{
			ChatID:     chatID,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// SendChatMessage appends a message and fans it out to the room.
func SendChatMessage(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
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
		var req sendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message, err := svc.Send(r.Context(), caller.UserID, chat.SendInput{
			ChatID:  chatID,
			Content: req.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}
