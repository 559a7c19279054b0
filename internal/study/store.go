package study

import (
	"context"
	"time"
)

// SessionStore is the durable, append-only home of study sessions.
type SessionStore interface {
	// AppendSession writes one session; it never rewrites the day.
	AppendSession(ctx context.Context, userID uint, date string, period Period, s StudySession) error
	// ListSessions returns empty lists when nothing is stored, never nil.
	ListSessions(ctx context.Context, userID uint, date string) (DayRecord, error)
	// ClearSessions removes both periods of date in one all-or-nothing call.
	ClearSessions(ctx context.Context, userID uint, date string) error
	SessionHistory(ctx context.Context, userID uint) (SessionsMap, error)
}

// LeaveStore keeps at most one LeaveDay per (user, date).
type LeaveStore interface {
	// GetLeave returns nil, nil when no leave is recorded.
	GetLeave(ctx context.Context, userID uint, date string) (*LeaveDay, error)
	PutLeave(ctx context.Context, userID uint, date string, reason *string) (LeaveDay, error)
	DeleteLeave(ctx context.Context, userID uint, date string) error
}

// Snapshot is a persisted share record.
type Snapshot struct {
	Code      string      `json:"code"`
	UserID    uint        `json:"-"`
	Payload   SessionsMap `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
	Active    bool        `json:"active"`
}

// ShareRepository persists snapshots. Operations on one code must be linearizable.
type ShareRepository interface {
	CreateSnapshot(ctx context.Context, snap Snapshot) error
	// GetSnapshot returns ErrNotFound for unknown codes, whatever their state.
	GetSnapshot(ctx context.Context, code string) (Snapshot, error)
	// DeactivateSnapshot reports whether a record with code exists.
	DeactivateSnapshot(ctx context.Context, code string) (bool, error)
	ListSnapshots(ctx context.Context, userID uint) ([]Snapshot, error)
}
