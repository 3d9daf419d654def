package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message.
type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ChatID    uuid.UUID  `gorm:"column:chat_id;type:uuid;not null;index:ix_messages_chat_created"`
	SenderID  uuid.UUID  `gorm:"column:sender_id;type:uuid;not null"`
	Content   string     `gorm:"type:text;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index:ix_messages_chat_created"`
}
