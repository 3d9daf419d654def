package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skumawat/bidkart-backend/internal/realtime"
	"github.com/skumawat/bidkart-backend/pkg/db/models"
	"github.com/skumawat/bidkart-backend/pkg/enums"
	pkgerrors "github.com/skumawat/bidkart-backend/pkg/errors"
	"github.com/skumawat/bidkart-backend/pkg/logger"
	"github.com/skumawat/bidkart-backend/pkg/pagination"
)

type fakeRepo struct {
	created   []*models.Notification
	createErr error

	markedRead  [][2]uuid.UUID
	markUpdated bool

	allReadFor  []uuid.UUID
	allReadRows int64
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) List(_ context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var out []models.Notification
	for _, n := range f.created {
		if n.UserID != params.UserID {
			continue
		}
		if params.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, userID, notificationID uuid.UUID, _ time.Time) (bool, error) {
	f.markedRead = append(f.markedRead, [2]uuid.UUID{userID, notificationID})
	return f.markUpdated, nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context, userID uuid.UUID, _ time.Time) (int64, error) {
	f.allReadFor = append(f.allReadFor, userID)
	return f.allReadRows, nil
}

func (f *fakeRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.created {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

type fakePusher struct {
	pushed []uuid.UUID
	err    error
}

func (f *fakePusher) PushToUser(_ context.Context, userID uuid.UUID, _ realtime.Event) error {
	f.pushed = append(f.pushed, userID)
	return f.err
}

func newTestService(t *testing.T, repo Repository, pusher Pusher) Service {
	t.Helper()
	svc, err := NewService(repo, pusher, logger.New(logger.Options{ServiceName: "notifications-test"}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNotifyPersistsThenPushes(t *testing.T) {
	repo := &fakeRepo{}
	pusher := &fakePusher{}
	svc := newTestService(t, repo, pusher)

	userID := uuid.New()
	got, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  userID,
		Type:    enums.NotificationTypeOrderPlaced,
		Title:   "New order",
		Message: "You received a new order",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got.ID == uuid.Nil {
		t.Fatal("expected persisted notification id")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(repo.created))
	}
	if len(pusher.pushed) != 1 || pusher.pushed[0] != userID {
		t.Fatalf("expected live push for %s, got %v", userID, pusher.pushed)
	}
}

func TestNotifyPushFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{}
	pusher := &fakePusher{err: errors.New("redis down")}
	svc := newTestService(t, repo, pusher)

	if _, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  uuid.New(),
		Type:    enums.NotificationTypePaymentCaptured,
		Title:   "Payment received",
		Message: "Order payment captured",
	}); err != nil {
		t.Fatalf("push failure must not surface: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatal("notification must persist even when push fails")
	}
}

func TestNotifyCreateFailureSkipsPush(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	pusher := &fakePusher{}
	svc := newTestService(t, repo, pusher)

	_, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  uuid.New(),
		Type:    enums.NotificationTypeChatMessage,
		Title:   "New message",
		Message: "hello",
	})
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if len(pusher.pushed) != 0 {
		t.Fatal("must not push a notification that was not persisted")
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil)

	cases := []NotifyInput{
		{Type: enums.NotificationTypeOrderPlaced, Title: "t", Message: "m"},
		{UserID: uuid.New(), Type: "bogus", Title: "t", Message: "m"},
		{UserID: uuid.New(), Type: enums.NotificationTypeOrderPlaced, Message: "m"},
		{UserID: uuid.New(), Type: enums.NotificationTypeOrderPlaced, Title: "t"},
	}
	for i, input := range cases {
		_, err := svc.Notify(context.Background(), input)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := &fakeRepo{markUpdated: false}
	svc := newTestService(t, repo, nil)

	userID := uuid.New()
	// Unknown id: still success, retries are free.
	if err := svc.MarkRead(context.Background(), userID, uuid.New()); err != nil {
		t.Fatalf("mark read of absent id must succeed: %v", err)
	}
	if len(repo.markedRead) != 1 {
		t.Fatalf("expected one repo call, got %d", len(repo.markedRead))
	}
}

func TestMarkReadRequiresIDs(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil)

	if err := svc.MarkRead(context.Background(), uuid.Nil, uuid.New()); err == nil {
		t.Fatal("expected validation error for missing user id")
	}
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.Nil); err == nil {
		t.Fatal("expected validation error for missing notification id")
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &fakeRepo{allReadRows: 3}
	svc := newTestService(t, repo, nil)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows updated, got %d", count)
	}
}

func TestListScopedToUser(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, nil)

	userID := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := svc.Notify(context.Background(), NotifyInput{
			UserID:  userID,
			Type:    enums.NotificationTypeOfferAccepted,
			Title:   "Offer accepted",
			Message: "Your offer was accepted",
		}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if _, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  uuid.New(),
		Type:    enums.NotificationTypeOfferRejected,
		Title:   "Offer rejected",
		Message: "Your offer was rejected",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{UserID: userID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 notifications for user, got %d", len(result.Items))
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, nil)

	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-base64!!"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
