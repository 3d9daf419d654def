package chat

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

type fakeNotifier struct {
	inputs []notifications.NotifyInput
}

func (f *fakeNotifier) Notify(_ context.Context, input notifications.NotifyInput) (*models.Notification, error) {
	f.inputs = append(f.inputs, input)
	return &models.Notification{ID: uuid.New(), UserID: input.UserID}, nil
}

type broadcastCall struct {
	Room  string
	Event realtime.Event
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (f *fakeBroadcaster) BroadcastRoom(_ context.Context, room string, event realtime.Event) error {
	f.calls = append(f.calls, broadcastCall{Room: room, Event: event})
	return nil
}

// hubBroadcaster adapts a real hub so tests can observe actual delivery.
type hubBroadcaster struct {
	hub *realtime.Hub
}

func (h hubBroadcaster) BroadcastRoom(ctx context.Context, room string, event realtime.Event) error {
	h.hub.BroadcastRoom(ctx, room, event)
	return nil
}

type testEnv struct {
	svc         Service
	conn        *gorm.DB
	notifier    *fakeNotifier
	broadcaster *fakeBroadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := openTestDB(t)
	notifier := &fakeNotifier{}
	broadcaster := &fakeBroadcaster{}
	logg := logger.New(logger.Options{ServiceName: "chat-test"})

	svc, err := NewService(
		NewRepository(conn),
		db.NewFromGorm(conn),
		outbox.NewService(outbox.NewRepository(conn), logg),
		broadcaster,
		notifier,
		logg,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{svc: svc, conn: conn, notifier: notifier, broadcaster: broadcaster}
}

type seed struct {
	buyer      uuid.UUID
	vendorUser uuid.UUID
	order      *models.Order
}

func seedCapturedOrder(t *testing.T, conn *gorm.DB) *seed {
	t.Helper()
	buyer := uuid.New()

	vendor := &models.Vendor{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Name:        "Acme Traders",
		IsActive:    true,
	}
	if err := conn.Create(vendor).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}

	gatewayOrderID := "order_" + uuid.NewString()[:8]
	order := &models.Order{
		ID:                 uuid.New(),
		BuyerID:            buyer,
		VendorID:           vendor.ID,
		ItemType:           enums.OfferItemTypeAd,
		ItemID:             uuid.New(),
		OfferID:            uuid.New(),
		Quantity:           1,
		PricePerProduct:    decimal.NewFromInt(500),
		TotalProductsPrice: decimal.NewFromInt(500),
		DeliveryType:       enums.DeliveryTypeStandard,
		DeliveryCharges:    decimal.NewFromInt(50),
		TotalAmount:        decimal.NewFromInt(550),
		Currency:           "INR",
		PaymentStatus:      enums.PaymentStatusCaptured,
		FulfillmentStatus:  enums.FulfillmentStatusNotProcessed,
		GatewayOrderID:     &gatewayOrderID,
		Receipt:            "rcpt_" + uuid.NewString()[:8],
		AmountDueMinor:     55000,
		AmountPaidMinor:    55000,
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return &seed{buyer: buyer, vendorUser: vendor.OwnerUserID, order: order}
}

func openChat(t *testing.T, env *testEnv, s *seed) *models.Chat {
	t.Helper()
	chat, err := env.svc.OpenForOrder(context.Background(), s.buyer, s.order.ID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	return chat
}

func TestOpenForOrderIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)

	chat := openChat(t, env, s)
	if chat.BuyerID != s.buyer || chat.VendorUserID != s.vendorUser {
		t.Fatalf("chat participants wrong: %+v", chat)
	}

	again := openChat(t, env, s)
	if again.ID != chat.ID {
		t.Fatal("second open must return the existing thread")
	}

	var count int64
	env.conn.Model(&models.Chat{}).Where("order_id = ?", s.order.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 chat row per order, got %d", count)
	}
}

func TestOpenForOrderRequiresCapturedPayment(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	env.conn.Model(&models.Order{}).Where("id = ?", s.order.ID).
		UpdateColumn("payment_status", enums.PaymentStatusPending)

	_, err := env.svc.OpenForOrder(context.Background(), s.buyer, s.order.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict before capture, got %v", err)
	}
}

func TestOpenForOrderOnlyBuyer(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)

	_, err := env.svc.OpenForOrder(context.Background(), s.vendorUser, s.order.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-buyer, got %v", err)
	}

	_, err = env.svc.OpenForOrder(context.Background(), s.buyer, uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}

func TestRoomAuthorizesParticipants(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	thread := openChat(t, env, s)

	room, err := env.svc.Room(context.Background(), s.buyer, thread.ID)
	if err != nil {
		t.Fatalf("buyer room lookup: %v", err)
	}
	if room != RoomName(thread.ID) {
		t.Fatalf("unexpected room name %s", room)
	}

	if _, err := env.svc.Room(context.Background(), s.vendorUser, thread.ID); err != nil {
		t.Fatalf("vendor room lookup: %v", err)
	}

	_, err = env.svc.Room(context.Background(), uuid.New(), thread.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestSendPersistsAndFansOut(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	message, err := env.svc.Send(context.Background(), s.buyer, SendInput{
		ChatID:  chat.ID,
		Content: "  when does it ship?  ",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.Content != "when does it ship?" {
		t.Fatalf("content should be trimmed, got %q", message.Content)
	}

	var reloaded models.Chat
	env.conn.First(&reloaded, "id = ?", chat.ID)
	if reloaded.LatestMessageID == nil || *reloaded.LatestMessageID != message.ID {
		t.Fatalf("latest message should be bumped: %+v", reloaded)
	}

	if len(env.broadcaster.calls) != 1 {
		t.Fatalf("expected 1 room broadcast, got %d", len(env.broadcaster.calls))
	}
	call := env.broadcaster.calls[0]
	if call.Room != RoomName(chat.ID) || call.Event.Name != realtime.EventMessage {
		t.Fatalf("broadcast call wrong: %+v", call)
	}

	if len(env.notifier.inputs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(env.notifier.inputs))
	}
	note := env.notifier.inputs[0]
	if note.UserID != s.vendorUser || note.Type != enums.NotificationTypeChatMessage {
		t.Fatalf("the other participant should be notified: %+v", note)
	}

	var events int64
	env.conn.Model(&models.OutboxEvent{}).
		Where("event_type = ?", enums.EventChatMessageSent).Count(&events)
	if events != 1 {
		t.Fatalf("expected 1 chat_message_sent event, got %d", events)
	}
}

func TestSendEchoesToSenderConnections(t *testing.T) {
	conn := openTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "chat-test"})
	hub, err := realtime.NewHub(4, logg)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}

	svc, err := NewService(
		NewRepository(conn),
		db.NewFromGorm(conn),
		outbox.NewService(outbox.NewRepository(conn), logg),
		hubBroadcaster{hub: hub},
		&fakeNotifier{},
		logg,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	s := seedCapturedOrder(t, conn)
	thread, err := svc.OpenForOrder(context.Background(), s.buyer, s.order.ID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}

	senderSub := hub.Subscribe(s.buyer)
	peerSub := hub.Subscribe(s.vendorUser)
	room := RoomName(thread.ID)
	hub.JoinRoom(room, s.buyer)
	hub.JoinRoom(room, s.vendorUser)

	if _, err := svc.Send(context.Background(), s.buyer, SendInput{ChatID: thread.ID, Content: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	for name, sub := range map[string]*realtime.Subscriber{"sender": senderSub, "peer": peerSub} {
		select {
		case got := <-sub.C:
			if got.Name != realtime.EventMessage {
				t.Fatalf("%s received wrong event %+v", name, got)
			}
		default:
			t.Fatalf("%s should receive the message event", name)
		}
	}
}

func TestSendNotifiesBuyerWhenVendorWrites(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	if _, err := env.svc.Send(context.Background(), s.vendorUser, SendInput{ChatID: chat.ID, Content: "ships tomorrow"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(env.notifier.inputs) != 1 || env.notifier.inputs[0].UserID != s.buyer {
		t.Fatalf("buyer should be notified: %+v", env.notifier.inputs)
	}
}

func TestNotificationPreviewKeepsValidUTF8(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	// 1 ascii byte then three-byte runes, so the 120-byte mark lands inside
	// a rune.
	content := "a" + strings.Repeat("₹", 60)
	if _, err := env.svc.Send(context.Background(), s.buyer, SendInput{ChatID: chat.ID, Content: content}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(env.notifier.inputs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(env.notifier.inputs))
	}
	preview := env.notifier.inputs[0].Message
	if !utf8.ValidString(preview) {
		t.Fatalf("preview must stay valid UTF-8, got %q", preview)
	}
	if len(preview) > previewLength {
		t.Fatalf("preview should be at most %d bytes, got %d", previewLength, len(preview))
	}
	if !strings.HasPrefix(content, preview) {
		t.Fatalf("preview should be a prefix of the message, got %q", preview)
	}
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	_, err := env.svc.Send(context.Background(), s.buyer, SendInput{ChatID: chat.ID, Content: "   "})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}

	_, err = env.svc.Send(context.Background(), s.buyer, SendInput{
		ChatID:  chat.ID,
		Content: strings.Repeat("x", maxMessageLength+1),
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized content, got %v", err)
	}

	_, err = env.svc.Send(context.Background(), uuid.New(), SendInput{ChatID: chat.ID, Content: "hi"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
}

func TestMessagesPaginatesAndMarksRead(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		msg := &models.Message{
			ID:        uuid.New(),
			ChatID:    chat.ID,
			SenderID:  s.vendorUser,
			Content:   "update",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := env.conn.Create(msg).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	page, err := env.svc.Messages(context.Background(), s.buyer, MessagesInput{
		ChatID:     chat.ID,
		Pagination: pagination.Params{Limit: 2},
	})
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page.Items))
	}
	if page.Cursor == "" {
		t.Fatal("expected a next-page cursor")
	}
	if page.Items[0].CreatedAt.Before(page.Items[1].CreatedAt) {
		t.Fatal("messages should come newest first")
	}

	next, err := env.svc.Messages(context.Background(), s.buyer, MessagesInput{
		ChatID:     chat.ID,
		Pagination: pagination.Params{Limit: 2, Cursor: page.Cursor},
	})
	if err != nil {
		t.Fatalf("messages page 2: %v", err)
	}
	if len(next.Items) != 1 || next.Cursor != "" {
		t.Fatalf("expected final page of 1, got %d cursor %q", len(next.Items), next.Cursor)
	}

	// Opening the thread cleared the buyer's unread badge.
	var unread int64
	env.conn.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chat.ID, s.buyer).
		Count(&unread)
	if unread != 0 {
		t.Fatalf("viewing messages should mark them read, %d left unread", unread)
	}
}

func TestListForUserShowsUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	s := seedCapturedOrder(t, env.conn)
	chat := openChat(t, env, s)

	if _, err := env.svc.Send(context.Background(), s.vendorUser, SendInput{ChatID: chat.ID, Content: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	buyerChats, err := env.svc.ListForUser(context.Background(), s.buyer)
	if err != nil {
		t.Fatalf("list for buyer: %v", err)
	}
	if len(buyerChats) != 1 || buyerChats[0].UnreadCount != 1 {
		t.Fatalf("buyer should see 1 chat with 1 unread, got %+v", buyerChats)
	}
	if buyerChats[0].LatestMessage == nil || buyerChats[0].LatestMessage.Content != "hello" {
		t.Fatalf("latest message should be resolved, got %+v", buyerChats[0].LatestMessage)
	}

	vendorChats, err := env.svc.ListForUser(context.Background(), s.vendorUser)
	if err != nil {
		t.Fatalf("list for vendor user: %v", err)
	}
	if len(vendorChats) != 1 || vendorChats[0].UnreadCount != 0 {
		t.Fatalf("sender has nothing unread, got %+v", vendorChats)
	}

	stranger, err := env.svc.ListForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list for stranger: %v", err)
	}
	if len(stranger) != 0 {
		t.Fatalf("strangers see no chats, got %d", len(stranger))
	}
}
