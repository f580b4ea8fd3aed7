package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
// リマインダーはremindersカラム（JSONB配列）に格納順のまま保持される。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.Event) error {
	reminders, err := marshalReminders(event.Reminders)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, title, description, date, start_time, end_time, location, color, reminders, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		event.ID, event.UserID, event.Title, event.Description,
		event.Date, event.StartTime, event.EndTime, event.Location, event.Color,
		reminders, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("イベントの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
func (r *PostgresEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, date, start_time, end_time, location, color, reminders, created_at, updated_at
		 FROM events WHERE id = $1`,
		id,
	)
	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗しました: %w", err)
	}
	return event, nil
}

// ListByUserID はユーザーのイベント一覧を日付・開始時刻順で返す。
func (r *PostgresEventRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, date, start_time, end_time, location, color, reminders, created_at, updated_at
		 FROM events WHERE user_id = $1
		 ORDER BY date, start_time, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("イベントの読み取りに失敗しました: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("イベント一覧の読み取りに失敗しました: %w", err)
	}

	return events, nil
}

// Update はイベントを全カラム上書き更新する。
func (r *PostgresEventRepo) Update(ctx context.Context, event *model.Event) error {
	reminders, err := marshalReminders(event.Reminders)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET
		    title = $2, description = $3, date = $4, start_time = $5, end_time = $6,
		    location = $7, color = $8, reminders = $9, updated_at = $10
		 WHERE id = $1`,
		event.ID, event.Title, event.Description,
		event.Date, event.StartTime, event.EndTime, event.Location, event.Color,
		reminders, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("イベントの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのイベントを削除する。
func (r *PostgresEventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("イベントの削除に失敗しました: %w", err)
	}
	return nil
}

// ListWithPendingReminders は未通知リマインダーを持つイベントを所有者情報付きで取得する。
// JSONB包含演算子で候補を絞り込み、FOR UPDATE SKIP LOCKEDにより
// 他のワーカーが処理中の行をスキップする。順序はcreated_at, id昇順で安定。
func (r *PostgresEventRepo) ListWithPendingReminders(ctx context.Context) ([]*model.EventWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.user_id, e.title, e.description, e.date, e.start_time, e.end_time,
		        e.location, e.color, e.reminders, e.created_at, e.updated_at,
		        u.name, u.email
		 FROM events e
		 JOIN users u ON e.user_id = u.id
		 WHERE e.reminders @> '[{"notified": false}]'::jsonb
		 ORDER BY e.created_at, e.id
		 FOR UPDATE OF e SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("リマインダー対象イベントの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var events []*model.EventWithOwner
	for rows.Next() {
		item := &model.EventWithOwner{}
		var reminders []byte
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Title, &item.Description,
			&item.Date, &item.StartTime, &item.EndTime,
			&item.Location, &item.Color, &reminders,
			&item.CreatedAt, &item.UpdatedAt,
			&item.OwnerName, &item.OwnerEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("リマインダー対象イベントの読み取りに失敗しました: %w", err)
		}
		item.Reminders, err = unmarshalReminders(reminders)
		if err != nil {
			return nil, err
		}
		events = append(events, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("リマインダー対象イベントの読み取りに失敗しました: %w", err)
	}

	return events, nil
}

// UpdateReminders はリマインダーリスト全体を1回の書き込みで永続化する。
// remindersカラムのみを更新する。
func (r *PostgresEventRepo) UpdateReminders(ctx context.Context, eventID string, reminders []model.Reminder) error {
	data, err := marshalReminders(reminders)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET reminders = $2, updated_at = now() WHERE id = $1`,
		eventID, data,
	)
	if err != nil {
		return fmt.Errorf("リマインダーの更新に失敗しました: %w", err)
	}
	return nil
}

// scanner はsql.Rowとsql.Rowsで共通のScanを抽象化する。
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*model.Event, error) {
	event := &model.Event{}
	var reminders []byte
	err := s.Scan(
		&event.ID, &event.UserID, &event.Title, &event.Description,
		&event.Date, &event.StartTime, &event.EndTime,
		&event.Location, &event.Color, &reminders,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Reminders, err = unmarshalReminders(reminders)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// marshalReminders はリマインダーリストをJSONB格納用バイト列に変換する。
// nilは空配列として格納する。
func marshalReminders(reminders []model.Reminder) ([]byte, error) {
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return nil, fmt.Errorf("リマインダーのシリアライズに失敗しました: %w", err)
	}
	return data, nil
}

// unmarshalReminders はJSONBカラムの値をリマインダーリストに復元する。
func unmarshalReminders(data []byte) ([]model.Reminder, error) {
	if len(data) == 0 {
		return []model.Reminder{}, nil
	}
	var reminders []model.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		return nil, fmt.Errorf("リマインダーのデシリアライズに失敗しました: %w", err)
	}
	return reminders, nil
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
