package chat

import (
	"github.com/google/uuid"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// ChatView is a chat thread with its unread count for the requesting user.
type ChatView struct {
	models.Chat
	UnreadCount   int64           `json:"unread_count"`
	LatestMessage *models.Message `json:"latest_message,omitempty"`
}

// MessagesInput paginates a chat's message history.
type MessagesInput struct {
	ChatID     uuid.UUID
	Pagination pagination.Params
}

// MessagesResult wraps one page of messages, newest first.
type MessagesResult struct {
	Items  []models.Message `json:"items"`
	Cursor string           `json:"cursor"`
}

// SendInput is a message from the authenticated sender into a chat.
type SendInput struct {
	ChatID  uuid.UUID
	Content string
}

// RoomName is the realtime room key for a chat thread.
func RoomName(chatID uuid.UUID) string {
	return "chat:" + chatID.String()
}
