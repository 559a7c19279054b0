package study

import (
	"fmt"
	"time"
)

// FormatClock renders seconds as HH:MM:SS. Hours are not capped at 24.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatChinese renders seconds as "X小時Y分"; leftover seconds are dropped.
func FormatChinese(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d小時%d分", seconds/3600, (seconds%3600)/60)
}

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// FormatDateChinese renders t like "2024年1月1日 星期一".
func FormatDateChinese(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), int(t.Month()), t.Day(), weekdays[t.Weekday()])
}
