package models

import "time"

// LeaveDay marks a date on which timers may not be started.
type LeaveDay struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"uniqueIndex:idx_leave_user_date;not null"`
	Date      string  `gorm:"size:10;uniqueIndex:idx_leave_user_date;not null"`
	Reason    *string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
