package util

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidatePeriod 验证时段（morning / afternoon）
func ValidatePeriod(period string) error {
	switch period {
	case "morning", "afternoon":
		return nil
	case "":
		return fmt.Errorf("period is empty")
	}
	return fmt.Errorf("unknown period %q", period)
}

// ValidateReason 验证请假原因（可为空，最多 255 个字符）
func ValidateReason(reason string) error {
	if utf8.RuneCountInString(reason) > 255 {
		return fmt.Errorf("reason too long, max 255 characters")
	}
	return nil
}

// ValidateTimeRange 验证手动补录的起止时间
func ValidateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	if end.Sub(start) > 24*time.Hour {
		return fmt.Errorf("session longer than a day")
	}
	return nil
}
