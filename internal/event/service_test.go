package event

import (
	"context"
	"errors"
	"testing"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// --- モック定義 ---

type mockEventRepo struct {
	createFn       func(ctx context.Context, event *model.Event) error
	findByIDFn     func(ctx context.Context, id string) (*model.Event, error)
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.Event, error)
	updateFn       func(ctx context.Context, event *model.Event) error
	deleteFn       func(ctx context.Context, id string) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.Event) error {
	if m.createFn != nil {
		return m.createFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockEventRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Event, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *model.Event) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEventRepo) ListWithPendingReminders(_ context.Context) ([]*model.EventWithOwner, error) {
	return nil, nil
}

func (m *mockEventRepo) UpdateReminders(_ context.Context, _ string, _ []model.Reminder) error {
	return nil
}

func validInput() *EventInput {
	return &EventInput{
		Title:     "チーム定例",
		Date:      "2026-09-01",
		StartTime: "09:00",
		EndTime:   "10:00",
		Reminders: []ReminderInput{{MinutesBefore: 30}},
	}
}

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != wantCode {
		t.Errorf("expected %s, got %v", wantCode, err)
	}
}

// --- Create ---

func TestCreate(t *testing.T) {
	var created *model.Event
	repo := &mockEventRepo{
		createFn: func(_ context.Context, event *model.Event) error {
			created = event
			return nil
		},
	}
	svc := NewService(repo)

	event, err := svc.Create(context.Background(), "u1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("event was not persisted")
	}
	if event.UserID != "u1" {
		t.Errorf("userID = %q", event.UserID)
	}
	if event.ID == "" {
		t.Error("event ID should be generated")
	}
	if event.Color != model.DefaultEventColor {
		t.Errorf("color = %q, want default", event.Color)
	}
	if len(event.Reminders) != 1 || event.Reminders[0].Notified {
		t.Errorf("reminders should be stored unnotified: %+v", event.Reminders)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*EventInput)
		wantCode string
	}{
		{
			name:     "タイトル必須",
			mutate:   func(in *EventInput) { in.Title = "" },
			wantCode: model.ErrCodeInvalidEvent,
		},
		{
			name:     "日付形式不正",
			mutate:   func(in *EventInput) { in.Date = "2026/09/01" },
			wantCode: model.ErrCodeInvalidEvent,
		},
		{
			name:     "開始時刻形式不正",
			mutate:   func(in *EventInput) { in.StartTime = "9am" },
			wantCode: model.ErrCodeInvalidEvent,
		},
		{
			name:     "終了時刻形式不正",
			mutate:   func(in *EventInput) { in.EndTime = "25:99" },
			wantCode: model.ErrCodeInvalidEvent,
		},
		{
			name:     "負のminutesBefore",
			mutate:   func(in *EventInput) { in.Reminders = []ReminderInput{{MinutesBefore: -5}} },
			wantCode: model.ErrCodeInvalidReminder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockEventRepo{
				createFn: func(_ context.Context, _ *model.Event) error {
					t.Error("Create should not be called for invalid input")
					return nil
				},
			}
			svc := NewService(repo)

			input := validInput()
			tt.mutate(input)

			_, err := svc.Create(context.Background(), "u1", input)
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestCreate_EndTimeOptional(t *testing.T) {
	svc := NewService(&mockEventRepo{})

	input := validInput()
	input.EndTime = ""

	if _, err := svc.Create(context.Background(), "u1", input); err != nil {
		t.Errorf("empty end time should be allowed: %v", err)
	}
}

// --- Get / List ---

func TestGet_OwnershipEnforced(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, UserID: "owner"}, nil
		},
	}
	svc := NewService(repo)

	event, err := svc.Get(context.Background(), "owner", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != "e1" {
		t.Errorf("event ID = %q", event.ID)
	}

	// 他ユーザーからは存在しないように見える
	_, err = svc.Get(context.Background(), "intruder", "e1")
	assertAPIErrorCode(t, err, model.ErrCodeEventNotFound)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockEventRepo{})

	_, err := svc.Get(context.Background(), "u1", "missing")
	assertAPIErrorCode(t, err, model.ErrCodeEventNotFound)
}

func TestList(t *testing.T) {
	repo := &mockEventRepo{
		listByUserIDFn: func(_ context.Context, userID string) ([]*model.Event, error) {
			return []*model.Event{{ID: "e1", UserID: userID}, {ID: "e2", UserID: userID}}, nil
		},
	}
	svc := NewService(repo)

	events, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}

// --- Update ---

func TestUpdate_ReplacesFieldsAndReminders(t *testing.T) {
	stored := &model.Event{
		ID:     "e1",
		UserID: "u1",
		Title:  "旧タイトル",
		Reminders: []model.Reminder{
			{MinutesBefore: 60, Notified: true},
			{MinutesBefore: 10, Notified: false},
		},
	}
	var updated *model.Event
	repo := &mockEventRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Event, error) {
			return stored, nil
		},
		updateFn: func(_ context.Context, event *model.Event) error {
			updated = event
			return nil
		},
	}
	svc := NewService(repo)

	input := validInput()
	input.Title = "新タイトル"
	input.Reminders = []ReminderInput{{MinutesBefore: 60}, {MinutesBefore: 5}}

	event, err := svc.Update(context.Background(), "u1", "e1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("event should be persisted")
	}
	if event.Title != "新タイトル" {
		t.Errorf("title = %q", event.Title)
	}

	// 通知済みの60分前リマインダーは状態を引き継ぎ、新規の5分前は未通知
	if len(event.Reminders) != 2 {
		t.Fatalf("got %d reminders, want 2", len(event.Reminders))
	}
	if !event.Reminders[0].Notified {
		t.Error("existing notified reminder should stay notified")
	}
	if event.Reminders[1].Notified {
		t.Error("new reminder should be unnotified")
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, UserID: "owner"}, nil
		},
		updateFn: func(_ context.Context, _ *model.Event) error {
			t.Error("Update should not be called for another user's event")
			return nil
		},
	}
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "intruder", "e1", validInput())
	assertAPIErrorCode(t, err, model.ErrCodeEventNotFound)
}

// --- Delete ---

func TestDelete(t *testing.T) {
	var deletedID string
	repo := &mockEventRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, UserID: "u1"}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "u1", "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != "e1" {
		t.Errorf("deleted = %q, want e1", deletedID)
	}
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	repo := &mockEventRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, UserID: "owner"}, nil
		},
		deleteFn: func(_ context.Context, _ string) error {
			t.Error("Delete should not be called for another user's event")
			return nil
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "intruder", "e1")
	assertAPIErrorCode(t, err, model.ErrCodeEventNotFound)
}

// --- buildReminders ---

func TestBuildReminders(t *testing.T) {
	existing := []model.Reminder{
		{MinutesBefore: 30, Notified: true},
		{MinutesBefore: 30, Notified: false},
	}
	inputs := []ReminderInput{
		{MinutesBefore: 30},
		{MinutesBefore: 30},
		{MinutesBefore: 10},
	}

	got := buildReminders(inputs, existing)

	if len(got) != 3 {
		t.Fatalf("got %d reminders, want 3", len(got))
	}
	// 通知済みは1件だけなので、引き継がれるのも1件だけ
	notified := 0
	for _, r := range got {
		if r.Notified {
			notified++
		}
	}
	if notified != 1 {
		t.Errorf("notified count = %d, want 1", notified)
	}
	if got[2].Notified {
		t.Error("new 10-minute reminder should be unnotified")
	}
}
