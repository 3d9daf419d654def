package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

// Repository exposes persistence helpers for chats and messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateChat(ctx context.Context, chat *models.Chat) error
	FindByID(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ChatView, error)
	ListMessages(ctx context.Context, params listMessagesParams) ([]models.Message, *pagination.Cursor, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	BumpLatestMessage(ctx context.Context, chatID, messageID uuid.UUID, at time.Time) error
	MarkMessagesRead(ctx context.Context, chatID, readerID uuid.UUID, now time.Time) (int64, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a chat repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listMessagesParams struct {
	ChatID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateChat(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repositoryImpl) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).First(&chat, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *repositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]ChatView, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR vendor_user_id = ?", userID, userID).
		Order("latest_message_at DESC NULLS LAST, created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	views := make([]ChatView, 0, len(chats))
	for _, c := range chats {
		view := ChatView{Chat: c}
		err := r.db.WithContext(ctx).Model(&models.Message{}).
			Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", c.ID, userID).
			Count(&view.UnreadCount).Error
		if err != nil {
			return nil, err
		}
		if c.LatestMessageID != nil {
			var latest models.Message
			if err := r.db.WithContext(ctx).First(&latest, "id = ?", *c.LatestMessageID).Error; err == nil {
				view.LatestMessage = &latest
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *repositoryImpl) ListMessages(ctx context.Context, params listMessagesParams) ([]models.Message, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where("chat_id = ?", params.ChatID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	if len(messages) > normalized {
		next := messages[normalized]
		messages = messages[:normalized]
		return messages, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return messages, nil, nil
}

func (r *repositoryImpl) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) BumpLatestMessage(ctx context.Context, chatID, messageID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		UpdateColumns(map[string]interface{}{
			"latest_message_id": messageID,
			"latest_message_at": at,
			"updated_at":        at,
		}).Error
}

func (r *repositoryImpl) MarkMessagesRead(ctx context.Context, chatID, readerID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindVendorOwner(ctx context.Context, vendorID uuid.UUID) (uuid.UUID, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Select("owner_user_id").First(&vendor, "id = ?", vendorID).Error; err != nil {
		return uuid.Nil, err
	}
	return vendor.OwnerUserID, nil
}
