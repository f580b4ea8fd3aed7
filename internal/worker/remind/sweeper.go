package remind

import (
	"context"
	"log/slog"
	"time"

	"github.com/SudhanshuYadav174/Calender-Management/internal/metrics"
	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// EventStore はスイープが必要とするイベント永続化の操作。
type EventStore interface {
	// ListWithPendingReminders は未通知リマインダーを持つイベントを
	// 所有者情報付きの安定した順序で返す。
	ListWithPendingReminders(ctx context.Context) ([]*model.EventWithOwner, error)
	// UpdateReminders はイベントのリマインダーリスト全体を1回の書き込みで永続化する。
	UpdateReminders(ctx context.Context, eventID string, reminders []model.Reminder) error
}

// Notifier はリマインダー通知の送信インターフェース。
type Notifier interface {
	SendReminder(ctx context.Context, toEmail, toName string, event *model.Event, minutesBefore int) error
}

// Sweeper は候補イベントを走査し、期日を迎えたリマインダーを送信して
// 通知済みフラグを永続化する。
//
// 失敗の局所性:
//   - 候補の読み取り失敗はスイープ全体を中断する。
//   - 送信失敗はそのリマインダーに限る。フラグは立てず、次回スイープで
//     再送される（at-least-once）。
//   - 永続化失敗はそのイベントに限り、後続イベントの処理は継続する。
type Sweeper struct {
	store       EventStore
	notifier    Notifier
	collector   metrics.MetricsCollector
	logger      *slog.Logger
	sendTimeout time.Duration
	location    *time.Location

	// nowはテストから差し替える。nilの場合はtime.Nowを使用する。
	now func() time.Time
}

// NewSweeper はSweeperを生成する。
// locationがnilの場合はローカルタイムゾーンで期日を計算する。
func NewSweeper(
	store EventStore,
	notifier Notifier,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	sendTimeout time.Duration,
	location *time.Location,
) *Sweeper {
	if location == nil {
		location = time.Local
	}
	return &Sweeper{
		store:       store,
		notifier:    notifier,
		collector:   collector,
		logger:      logger,
		sendTimeout: sendTimeout,
		location:    location,
		now:         time.Now,
	}
}

// RunOnce はスイープを1回実行する。
// 現在時刻はスイープ開始時に1回だけサンプリングし、バッチ全体で
// 同じ「今」を使う。リマインダーはイベント内の格納順に評価され、
// 変更のあったイベントのみ1回ずつ書き戻される。
func (s *Sweeper) RunOnce(ctx context.Context) error {
	start := time.Now()
	now := s.now()

	events, err := s.store.ListWithPendingReminders(ctx)
	if err != nil {
		s.collector.RecordSweepFailure()
		s.logger.Error("候補イベントの取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return err
	}

	s.collector.RecordCandidateEvents(len(events))

	for _, event := range events {
		s.processEvent(ctx, event, now)
	}

	duration := time.Since(start)
	s.collector.RecordSweepDuration(duration)
	s.logger.Info("リマインダースイープが完了しました",
		slog.Int("candidate_events", len(events)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// processEvent は1イベントの全リマインダーを評価し、変更があれば書き戻す。
func (s *Sweeper) processEvent(ctx context.Context, event *model.EventWithOwner, now time.Time) {
	startAt, err := event.StartAt(s.location)
	if err != nil {
		// 日時が壊れたイベントは期日を計算できない。未通知のまま残すと
		// 毎回の候補に居座るため、警告を出して通知済みにする。
		s.logger.Warn("イベントの日時を解釈できないためリマインダーを破棄します",
			slog.String("event_id", event.ID),
			slog.String("date", event.Date),
			slog.String("start_time", event.StartTime),
			slog.String("error", err.Error()),
		)
		changed := false
		for i := range event.Reminders {
			if !event.Reminders[i].Notified {
				event.Reminders[i].Notified = true
				changed = true
			}
		}
		if changed {
			s.persist(ctx, event)
		}
		return
	}

	changed := false
	for i := range event.Reminders {
		reminder := &event.Reminders[i]
		if reminder.Notified {
			continue
		}

		due := DueAt(startAt, reminder.MinutesBefore)
		if due.After(now) {
			continue
		}

		if s.deliver(ctx, event, reminder.MinutesBefore) {
			reminder.Notified = true
			changed = true
		}
	}

	if changed {
		s.persist(ctx, event)
	}
}

// deliver は1件のリマインダーを送信する。通知済みにしてよい場合にtrueを返す。
// 宛先を解決できないリマインダーは送信せずに通知済みとする。
// 送信失敗はフラグを立てず、次回スイープでの再送に委ねる。
func (s *Sweeper) deliver(ctx context.Context, event *model.EventWithOwner, minutesBefore int) bool {
	if event.OwnerEmail == "" {
		s.logger.Warn("所有者の宛先を解決できないため送信せずに通知済みにします",
			slog.String("event_id", event.ID),
			slog.String("user_id", event.UserID),
			slog.Int("minutes_before", minutesBefore),
		)
		return true
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.SendReminder(sendCtx, event.OwnerEmail, event.OwnerName, &event.Event, minutesBefore); err != nil {
		s.collector.RecordSendFailure()
		s.logger.Error("リマインダーの送信に失敗しました",
			slog.String("event_id", event.ID),
			slog.Int("minutes_before", minutesBefore),
			slog.String("error", err.Error()),
		)
		return false
	}

	s.collector.RecordReminderSent()
	s.logger.Info("リマインダーを送信しました",
		slog.String("event_id", event.ID),
		slog.Int("minutes_before", minutesBefore),
	)
	return true
}

// persist は変更されたリマインダーリストを書き戻す。
// 失敗してもスイープは継続し、イベントは次回の候補に残る。
func (s *Sweeper) persist(ctx context.Context, event *model.EventWithOwner) {
	if err := s.store.UpdateReminders(ctx, event.ID, event.Reminders); err != nil {
		s.collector.RecordPersistFailure()
		s.logger.Error("リマインダー状態の永続化に失敗しました",
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
	}
}
