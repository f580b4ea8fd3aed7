// Package remind はイベントリマインダーの定期スイープ処理を提供する。
// スケジューラ、スイーパー、期日計算を含む。
package remind

import "time"

// DueAt はリマインダーの発火時刻を計算する。
// イベントの開始時刻startAtからminutesBefore分を引いた時刻を返す。
// 減算は日・月・年の境界を正しく越える。
// 発火時刻は保存されず、スイープごとに再計算される。
func DueAt(startAt time.Time, minutesBefore int) time.Time {
	return startAt.Add(-time.Duration(minutesBefore) * time.Minute)
}
