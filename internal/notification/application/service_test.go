package application

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/vunguard/ledger/internal/notification/domain"
)

type fakeNotificationRepo struct {
	notifications map[string]*domain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*domain.Notification)}
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *domain.Notification) error {
	copy := *n
	r.notifications[n.NotificationID] = &copy
	return nil
}

func (r *fakeNotificationRepo) Get(_ context.Context, notificationID string) (*domain.Notification, error) {
	n, ok := r.notifications[notificationID]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	copy := *n
	return &copy, nil
}

func (r *fakeNotificationRepo) ListByAccount(_ context.Context, accountID uint, limit, offset int) ([]*domain.Notification, int64, error) {
	var out []*domain.Notification
	for _, n := range r.notifications {
		if n.AccountID == accountID {
			copy := *n
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationID < out[j].NotificationID })
	total := int64(len(out))
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, accountID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.AccountID == accountID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(_ context.Context, n *domain.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n.NotificationID)
	return nil
}

func TestSendNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	sender := &fakeSender{}
	svc := NewNotificationService(repo, sender, nil)

	id, err := svc.SendNotification(context.Background(), SendNotificationCommand{
		AccountID: 1,
		Type:      domain.NotificationTypeTransaction,
		Title:     "Purchase confirmed",
		Content:   "Bought 10 units.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != id {
		t.Fatalf("sent = %v", sender.sent)
	}

	stored, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.NotificationStatusSent || stored.SentAt == nil {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSendNotificationPushFailureKeepsRecord(t *testing.T) {
	repo := newFakeNotificationRepo()
	sender := &fakeSender{err: errors.New("broker down")}
	svc := NewNotificationService(repo, sender, nil)

	id, err := svc.SendNotification(context.Background(), SendNotificationCommand{
		AccountID: 1,
		Type:      domain.NotificationTypeTransaction,
		Title:     "Deposit received",
	})
	if err != nil {
		t.Fatalf("send must not fail on push error: %v", err)
	}

	stored, _ := repo.Get(context.Background(), id)
	if stored.Status != domain.NotificationStatusFailed || stored.ErrorMessage == "" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSendNotificationValidation(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), &fakeSender{}, nil)

	if _, err := svc.SendNotification(context.Background(), SendNotificationCommand{Title: "x"}); err == nil {
		t.Fatal("missing account id accepted")
	}
	if _, err := svc.SendNotification(context.Background(), SendNotificationCommand{AccountID: 1}); err == nil {
		t.Fatal("missing title accepted")
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakeSender{}, nil)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := svc.SendNotification(context.Background(), SendNotificationCommand{
			AccountID: 5,
			Type:      domain.NotificationTypeSystem,
			Title:     "notice",
		})
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		ids = append(ids, id)
	}

	count, err := svc.UnreadCount(context.Background(), 5)
	if err != nil || count != 3 {
		t.Fatalf("unread = %d, err %v, want 3", count, err)
	}

	if err := svc.MarkRead(context.Background(), ids[0]); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Marking twice is a no-op.
	if err := svc.MarkRead(context.Background(), ids[0]); err != nil {
		t.Fatalf("mark read again: %v", err)
	}

	count, _ = svc.UnreadCount(context.Background(), 5)
	if count != 2 {
		t.Fatalf("unread after mark = %d, want 2", count)
	}

	if err := svc.MarkRead(context.Background(), "nope"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("error = %v, want ErrNotificationNotFound", err)
	}
}

func TestListNotifications(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakeSender{}, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.SendNotification(context.Background(), SendNotificationCommand{
			AccountID: 9, Type: domain.NotificationTypeSystem, Title: "notice",
		}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	dtos, total, err := svc.ListNotifications(context.Background(), 9, 10, 0)
	if err != nil || total != 2 || len(dtos) != 2 {
		t.Fatalf("list = %d/%d, err %v", len(dtos), total, err)
	}
	if dtos[0].AccountID != 9 || dtos[0].Status != string(domain.NotificationStatusSent) {
		t.Fatalf("dto = %+v", dtos[0])
	}
}
