package study

import (
	"fmt"
	"strings"
)

// Period 是每天固定的两个学习时段之一
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
)

// Periods 按一天内的先后顺序列出所有时段
var Periods = []Period{Morning, Afternoon}

// ParsePeriod 解析 "morning" / "afternoon"（忽略大小写和首尾空白）
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case Morning:
		return Morning, nil
	case Afternoon:
		return Afternoon, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", ErrInvalidInput, s)
}

// Label 返回时段的中文名称
func (p Period) Label() string {
	if p == Morning {
		return "上午"
	}
	return "下午"
}

// Window is a half-open range of wall-clock hours [StartHour, EndHour).
type Window struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

func (w Window) String() string {
	return fmt.Sprintf("%d:00-%d:00", w.StartHour, w.EndHour)
}

// Windows maps each period to its allowed start window.
type Windows map[Period]Window

// DefaultWindows: morning 8:00-12:00, afternoon 13:00-19:00.
func DefaultWindows() Windows {
	return Windows{
		Morning:   {StartHour: 8, EndHour: 12},
		Afternoon: {StartHour: 13, EndHour: 19},
	}
}
