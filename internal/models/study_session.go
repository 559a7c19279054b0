package models

import "time"

// StudySession is one completed timer run. Rows are only ever inserted or
// bulk-deleted per (user, date); they are never updated.
type StudySession struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index:idx_study_user_date;not null"`
	Date      string    `gorm:"size:10;index:idx_study_user_date;not null"` // YYYY-MM-DD
	Period    string    `gorm:"size:16;not null"`                          // morning / afternoon
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	Duration  int64     `gorm:"not null"` // 秒
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
