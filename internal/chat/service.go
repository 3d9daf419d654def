package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/internal/notifications"
	"github.com/skumawat/bidkart-backend/internal/realtime"
	"github.com/skumawat/bidkart-backend/pkg/db"
	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/outbox"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

const (
	maxMessageLength = 4000
	previewLength    = 120
)

// Broadcaster fans a room event out to connected participants. The realtime
// bridge implements it; delivery is best effort.
type Broadcaster interface {
	BroadcastRoom(ctx context.Context, room string, event realtime.Event) error
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// Service defines chat thread and message operations.
type Service interface {
	OpenForOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ChatView, error)
	Messages(ctx context.Context, userID uuid.UUID, input MessagesInput) (*MessagesResult, error)
	Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*models.Message, error)
	Room(ctx context.Context, userID, chatID uuid.UUID) (string, error)
}

type service struct {
	repo        Repository
	dbClient    *db.Client
	outbox      *outbox.Service
	broadcaster Broadcaster
	notifier    notifier
	logg        *logger.Logger
}

// NewService wires chat dependencies. Broadcaster and notifier are optional so
// background tooling can operate on threads without a live hub.
func NewService(repo Repository, dbClient *db.Client, outboxSvc *outbox.Service, broadcaster Broadcaster, notif notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat repository required")
	}
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat db client required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat outbox service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "chat logger required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		outbox:      outboxSvc,
		broadcaster: broadcaster,
		notifier:    notif,
		logg:        logg,
	}, nil
}

// OpenForOrder returns the single chat thread for an order, creating it on
// first use. Only the buyer opens the thread, and only once the payment is
// captured; the vendor side joins through ListForUser.
func (s *service) OpenForOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Chat, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id required")
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.BuyerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can open the order chat")
	}
	if order.PaymentStatus != enums.PaymentStatusCaptured && order.PaymentStatus != enums.PaymentStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "chat opens after payment capture")
	}

	if existing, err := s.repo.FindByOrderID(ctx, orderID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat")
	} else if existing != nil {
		return existing, nil
	}

	vendorUserID, err := s.repo.FindVendorOwner(ctx, order.VendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendor owner")
	}

	chat := &models.Chat{
		ID:           uuid.New(),
		OrderID:      orderID,
		BuyerID:      order.BuyerID,
		VendorUserID: vendorUserID,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		// Concurrent open: the unique order_id constraint makes one creator
		// win, everyone else reads the surviving row.
		if db.IsUniqueViolation(err, "chats_order_id_key") {
			existing, findErr := s.repo.FindByOrderID(ctx, orderID)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create chat")
	}
	return chat, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ChatView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	views, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list chats")
	}
	return views, nil
}

// Messages returns one page of history and marks the other participant's
// unread messages as read, so opening the thread clears its badge.
func (s *service) Messages(ctx context.Context, userID uuid.UUID, input MessagesInput) (*MessagesResult, error) {
	chat, err := s.authorizedChat(ctx, userID, input.ChatID)
	if err != nil {
		return nil, err
	}

	params := listMessagesParams{ChatID: chat.ID, Limit: input.Pagination.Limit}
	if input.Pagination.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, next, err := s.repo.ListMessages(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	if _, err := s.repo.MarkMessagesRead(ctx, chat.ID, userID, time.Now().UTC()); err != nil {
		logCtx := s.logg.WithUserID(ctx, userID.String())
		s.logg.Warn(logCtx, "marking chat messages read failed")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &MessagesResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content too long")
	}

	chat, err := s.authorizedChat(ctx, senderID, input.ChatID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateMessage(ctx, message); err != nil {
			return err
		}
		if err := txRepo.BumpLatestMessage(ctx, chat.ID, message.ID, time.Now().UTC()); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventChatMessageSent,
			AggregateType: enums.AggregateChat,
			AggregateID:   chat.ID,
			Actor:         &outbox.ActorRef{UserID: senderID},
			Data: map[string]interface{}{
				"chatId":    chat.ID,
				"messageId": message.ID,
				"orderId":   chat.OrderID,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist message")
	}

	if s.broadcaster != nil {
		// Every room member gets the event, the sender included, so the
		// sender's own clients render the message they just sent.
		event := realtime.Event{Name: realtime.EventMessage, Data: message}
		if err := s.broadcaster.BroadcastRoom(ctx, RoomName(chat.ID), event); err != nil {
			s.logg.Warn(ctx, "chat room broadcast failed")
		}
	}
	s.notifyRecipient(ctx, chat, senderID, content)

	return message, nil
}

// notifyRecipient tells the other participant about the new message. Failures
// are logged and swallowed, the message itself is already durable.
func (s *service) notifyRecipient(ctx context.Context, chat *models.Chat, senderID uuid.UUID, content string) {
	if s.notifier == nil {
		return
	}
	recipient := chat.BuyerID
	if senderID == chat.BuyerID {
		recipient = chat.VendorUserID
	}
	preview := content
	if len(preview) > previewLength {
		// Cut back to a rune boundary so the preview stays valid UTF-8.
		cut := previewLength
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	_, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  recipient,
		Type:    enums.NotificationTypeChatMessage,
		Title:   "New message",
		Message: preview,
	})
	if err != nil {
		logCtx := s.logg.WithUserID(ctx, recipient.String())
		s.logg.Warn(logCtx, "chat message notification failed")
	}
}

// Room resolves the realtime room name for a chat the user participates in.
// The stream controller calls it before letting a connection join the room.
func (s *service) Room(ctx context.Context, userID, chatID uuid.UUID) (string, error) {
	chat, err := s.authorizedChat(ctx, userID, chatID)
	if err != nil {
		return "", err
	}
	return RoomName(chat.ID), nil
}

func (s *service) authorizedChat(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	if userID == uuid.Nil || chatID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and chat id required")
	}
	chat, err := s.repo.FindByID(ctx, chatID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load chat")
	}
	if chat == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "chat not found")
	}
	if chat.BuyerID != userID && chat.VendorUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this chat")
	}
	return chat, nil
}
