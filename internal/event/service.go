// Package event はカレンダーイベントのCRUDに関するビジネスロジックを提供する。
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
	"github.com/SudhanshuYadav174/Calender-Management/internal/repository"
)

// ReminderInput はクライアントから受け取るリマインダー定義。
type ReminderInput struct {
	MinutesBefore int `json:"minutesBefore"`
}

// EventInput はイベントの作成・更新リクエスト。
type EventInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Location    string          `json:"location"`
	Color       string          `json:"color"`
	Reminders   []ReminderInput `json:"reminders"`
}

// Service はイベントに関するビジネスロジックを提供する。
// 所有者でないイベントへのアクセスは存在しないものとして扱う。
type Service struct {
	eventRepo repository.EventRepository
}

// NewService はServiceを生成する。
func NewService(eventRepo repository.EventRepository) *Service {
	return &Service{eventRepo: eventRepo}
}

// Create は新しいイベントを作成する。
// クライアントから受け取ったリマインダーは未通知状態で保存される。
func (s *Service) Create(ctx context.Context, userID string, input *EventInput) (*model.Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	event := &model.Event{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		Color:       colorOrDefault(input.Color),
		Reminders:   buildReminders(input.Reminders, nil),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}

	slog.Info("event created",
		slog.String("event_id", event.ID),
		slog.String("user_id", userID),
	)
	return event, nil
}

// Get は指定IDのイベントを取得する。所有者でない場合はNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID, eventID string) (*model.Event, error) {
	event, err := s.findOwned(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// List は現在のユーザーのイベント一覧を日付・開始時刻順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Event, error) {
	events, err := s.eventRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	return events, nil
}

// Update はイベントを更新する。
// リマインダーリストはリクエストの内容で置き換えられるが、
// 既存の通知済みリマインダーと同じminutesBeforeを持つものは
// 通知済み状態を引き継ぐ（再送防止）。
func (s *Service) Update(ctx context.Context, userID, eventID string, input *EventInput) (*model.Event, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	event, err := s.findOwned(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.Date = input.Date
	event.StartTime = input.StartTime
	event.EndTime = input.EndTime
	event.Location = input.Location
	event.Color = colorOrDefault(input.Color)
	event.Reminders = buildReminders(input.Reminders, event.Reminders)
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("イベントの更新に失敗しました: %w", err)
	}

	slog.Info("event updated",
		slog.String("event_id", event.ID),
		slog.String("user_id", userID),
	)
	return event, nil
}

// Delete は指定IDのイベントを削除する。所有者でない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, userID, eventID string) error {
	event, err := s.findOwned(ctx, userID, eventID)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return fmt.Errorf("イベントの削除に失敗しました: %w", err)
	}

	slog.Info("event deleted",
		slog.String("event_id", event.ID),
		slog.String("user_id", userID),
	)
	return nil
}

// findOwned はイベントを取得し所有者を検証する。
// 存在しない場合と他ユーザーのイベントの場合は同じNotFoundを返す。
func (s *Service) findOwned(ctx context.Context, userID, eventID string) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	if event == nil || event.UserID != userID {
		return nil, model.NewEventNotFoundError(eventID)
	}
	return event, nil
}

func validateInput(input *EventInput) error {
	if input.Title == "" {
		return model.NewInvalidEventError("タイトルは必須です")
	}
	if _, err := time.Parse(model.DateLayout, input.Date); err != nil {
		return model.NewInvalidEventError("日付はYYYY-MM-DD形式で指定してください")
	}
	if _, err := time.Parse(model.TimeLayout, input.StartTime); err != nil {
		return model.NewInvalidEventError("開始時刻はHH:mm形式で指定してください")
	}
	if input.EndTime != "" {
		if _, err := time.Parse(model.TimeLayout, input.EndTime); err != nil {
			return model.NewInvalidEventError("終了時刻はHH:mm形式で指定してください")
		}
	}
	for _, r := range input.Reminders {
		if r.MinutesBefore < 0 {
			return model.NewInvalidReminderError(r.MinutesBefore)
		}
	}
	return nil
}

func colorOrDefault(color string) string {
	if color == "" {
		return model.DefaultEventColor
	}
	return color
}

// buildReminders はリクエストのリマインダー定義からリストを構築する。
// 通知済みフラグのtrue化はスケジューラーのみが行うため、新規リマインダーは
// 常に未通知とする。既存リストに同じminutesBeforeの通知済みリマインダーが
// ある場合はその状態を引き継ぐ。
func buildReminders(inputs []ReminderInput, existing []model.Reminder) []model.Reminder {
	notifiedCount := make(map[int]int)
	for _, r := range existing {
		if r.Notified {
			notifiedCount[r.MinutesBefore]++
		}
	}

	reminders := make([]model.Reminder, 0, len(inputs))
	for _, in := range inputs {
		notified := false
		if notifiedCount[in.MinutesBefore] > 0 {
			notifiedCount[in.MinutesBefore]--
			notified = true
		}
		reminders = append(reminders, model.Reminder{
			MinutesBefore: in.MinutesBefore,
			Notified:      notified,
		})
	}
	return reminders
}
