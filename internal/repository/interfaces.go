// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update はユーザー情報を更新する（OTP・確認状態を含む全カラム）。
	Update(ctx context.Context, user *model.User) error

	// ClearExpiredOTPs は期限切れOTPをクリアし、対象件数を返す。
	ClearExpiredOTPs(ctx context.Context) (int64, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// EventRepository はイベントデータの永続化インターフェース。
// リマインダーはイベント行のJSONBカラムに格納順のまま埋め込まれる。
type EventRepository interface {
	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.Event) error

	// FindByID は指定IDのイベントを取得する。見つからない場合はnilを返す。
	// 所有者の検証はサービス層で行う。
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// ListByUserID はユーザーのイベント一覧を日付・開始時刻順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Event, error)

	// Update はイベントを全カラム上書き更新する。
	Update(ctx context.Context, event *model.Event) error

	// Delete は指定IDのイベントを削除する。
	Delete(ctx context.Context, id string) error

	// ListWithPendingReminders は未通知リマインダーを1件以上持つイベントを、
	// 所有者の連絡先を解決した状態で取得する。順序は安定（created_at, id昇順）で、
	// FOR UPDATE SKIP LOCKEDにより複数ワーカー間で排他的に取得する。
	ListWithPendingReminders(ctx context.Context) ([]*model.EventWithOwner, error)

	// UpdateReminders はイベントのリマインダーリスト全体を1回の書き込みで永続化する。
	// remindersカラムのみを更新し、他のカラムには触れない。
	UpdateReminders(ctx context.Context, eventID string, reminders []model.Reminder) error
}
