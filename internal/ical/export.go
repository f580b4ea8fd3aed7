// Package ical はユーザーのイベント一覧をiCalendar形式に変換する。
// 出力は一般的なカレンダーアプリへのインポートに使用される。
package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// デフォルトのイベント所要時間。終了時刻のないイベントに適用される。
const defaultDuration = time.Hour

// Export はイベント一覧をiCalendarテキストにシリアライズする。
// 日時はローカルタイムゾーンで解釈される。日時を解釈できない
// イベントはスキップされる（エクスポートを壊す不正データより
// 欠落を選ぶ）。
func Export(events []*model.Event, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//One Calendar//Calendar Export//JA")

	for _, event := range events {
		startAt, err := event.StartAt(loc)
		if err != nil {
			continue
		}

		endAt := startAt.Add(defaultDuration)
		if event.EndTime != "" {
			parsed, err := time.ParseInLocation(
				model.DateLayout+" "+model.TimeLayout,
				event.Date+" "+event.EndTime,
				loc,
			)
			if err == nil && parsed.After(startAt) {
				endAt = parsed
			}
		}

		v := cal.AddEvent(fmt.Sprintf("%s@onecalendar", event.ID))
		v.SetDtStampTime(event.UpdatedAt)
		v.SetStartAt(startAt)
		v.SetEndAt(endAt)
		v.SetSummary(event.Title)
		if event.Description != "" {
			v.SetDescription(event.Description)
		}
		if event.Location != "" {
			v.SetLocation(event.Location)
		}
	}

	return cal.Serialize(), nil
}
