package models

import "time"

// ShareSnapshot is a frozen copy of a user's sessions published under Code.
// Active only ever goes from true to false.
type ShareSnapshot struct {
	ID        string    `gorm:"primaryKey;size:36"` // UUID
	Code      string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	Payload   string    `gorm:"type:text;not null"` // SessionsMap JSON
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"index"`
}
