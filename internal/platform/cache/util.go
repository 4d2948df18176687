package cache

import (
	"time"
)

// TimeUntilNextRefresh は now から次の hour 時（loc のタイムゾーン）までの期間を返します。
// 週次データは引け後に確定するため、キャッシュの有効期限を次の更新時刻に揃えます。
func TimeUntilNextRefresh(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// 今日の更新時刻を既に過ぎている場合は翌日の同時刻を使用
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.Sub(now)
}
