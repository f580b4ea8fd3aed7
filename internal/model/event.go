// Package model はドメインモデルを定義する。
package model

import "time"

// 日付・時刻文字列のレイアウト。
// 日付はタイムゾーンを持たない "YYYY-MM-DD"、時刻は壁時計の "HH:mm" で保持し、
// 絶対時刻が必要になった時点でサーバーのローカルタイムゾーンで解釈する。
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DefaultEventColor はイベント作成時のデフォルト表示色。
const DefaultEventColor = "#3b82f6"

// Reminder はイベントに埋め込まれるリマインダーを表す。
// イベント開始時刻のMinutesBefore分前が発火時刻となる。
// Notifiedはfalse→trueへ一方向にのみ遷移し、falseへ戻ることはない。
type Reminder struct {
	MinutesBefore int  `json:"minutesBefore"`
	Notified      bool `json:"notified"`
}

// Event はカレンダーのイベントを表す。
// Remindersは格納順を保持した埋め込みリストで、スケジューラは
// Notifiedフラグの更新以外にリストを変更しない。
type Event struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Date        string // "YYYY-MM-DD"
	StartTime   string // "HH:mm"
	EndTime     string // "HH:mm"
	Location    string
	Color       string
	Reminders   []Reminder
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPendingReminder は未通知のリマインダーが1件以上あるかを返す。
func (e *Event) HasPendingReminder() bool {
	for _, r := range e.Reminders {
		if !r.Notified {
			return true
		}
	}
	return false
}

// EventWithOwner はリマインダー配信に必要な所有者の連絡先を
// 解決済みのイベントを表す。スイープの候補取得で使用する。
type EventWithOwner struct {
	Event
	OwnerName  string
	OwnerEmail string
}

// StartAt はイベントの開始日時をサーバーのローカルタイムゾーンの
// 絶対時刻として返す。日付または時刻の形式が不正な場合はエラーを返す。
func (e *Event) StartAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.StartTime, loc)
}
