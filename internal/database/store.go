package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"study-tracker/internal/models"
	"study-tracker/internal/study"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed implementation of the session, leave and share
// stores. Every operation is a single statement, so appends from concurrent
// clients never overwrite each other and a clear is all-or-nothing.
type Store struct {
	DB *gorm.DB
}

var (
	_ study.SessionStore    = (*Store)(nil)
	_ study.LeaveStore      = (*Store)(nil)
	_ study.ShareRepository = (*Store)(nil)
)

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// ---------- 学习记录 ----------

func (s *Store) AppendSession(ctx context.Context, userID uint, date string, p study.Period, sess study.StudySession) error {
	row := models.StudySession{
		UserID:    userID,
		Date:      date,
		Period:    string(p),
		StartTime: sess.Start,
		EndTime:   sess.End,
		Duration:  sess.Duration,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert study session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, userID uint, date string) (study.DayRecord, error) {
	var rows []models.StudySession
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return study.DayRecord{}, fmt.Errorf("query study sessions: %w", err)
	}
	rec := study.NewDayRecord()
	for i := range rows {
		rec = appendRow(rec, &rows[i])
	}
	return rec, nil
}

func (s *Store) ClearSessions(ctx context.Context, userID uint, date string) error {
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&models.StudySession{}).Error; err != nil {
		return fmt.Errorf("delete study sessions: %w", err)
	}
	return nil
}

func (s *Store) SessionHistory(ctx context.Context, userID uint) (study.SessionsMap, error) {
	var rows []models.StudySession
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query study history: %w", err)
	}
	out := study.SessionsMap{}
	for i := range rows {
		rec, ok := out[rows[i].Date]
		if !ok {
			rec = study.NewDayRecord()
		}
		out[rows[i].Date] = appendRow(rec, &rows[i])
	}
	return out, nil
}

func appendRow(rec study.DayRecord, row *models.StudySession) study.DayRecord {
	sess := study.StudySession{Start: row.StartTime, End: row.EndTime, Duration: row.Duration}
	if study.Period(row.Period) == study.Morning {
		rec.Morning = append(rec.Morning, sess)
	} else {
		rec.Afternoon = append(rec.Afternoon, sess)
	}
	return rec
}

// ---------- 请假 ----------

func (s *Store) GetLeave(ctx context.Context, userID uint, date string) (*study.LeaveDay, error) {
	var row models.LeaveDay
	err := s.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query leave day: %w", err)
	}
	l := toLeave(&row)
	return &l, nil
}

func (s *Store) PutLeave(ctx context.Context, userID uint, date string, reason *string) (study.LeaveDay, error) {
	row := models.LeaveDay{UserID: userID, Date: date, Reason: reason}
	db := s.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return study.LeaveDay{}, fmt.Errorf("upsert leave day: %w", err)
	}
	var saved models.LeaveDay
	if err := db.Where("user_id = ? AND date = ?", userID, date).First(&saved).Error; err != nil {
		return study.LeaveDay{}, fmt.Errorf("reload leave day: %w", err)
	}
	return toLeave(&saved), nil
}

func (s *Store) DeleteLeave(ctx context.Context, userID uint, date string) error {
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&models.LeaveDay{}).Error; err != nil {
		return fmt.Errorf("delete leave day: %w", err)
	}
	return nil
}

func toLeave(row *models.LeaveDay) study.LeaveDay {
	return study.LeaveDay{Date: row.Date, Reason: row.Reason, CreatedAt: row.CreatedAt}
}

// ---------- 分享快照 ----------

func (s *Store) CreateSnapshot(ctx context.Context, snap study.Snapshot) error {
	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := models.ShareSnapshot{
		ID:        uuid.NewString(),
		Code:      snap.Code,
		UserID:    snap.UserID,
		Payload:   string(payload),
		Active:    true,
		CreatedAt: snap.CreatedAt,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if !snap.Active {
		_, err := s.DeactivateSnapshot(ctx, snap.Code)
		return err
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, code string) (study.Snapshot, error) {
	var row models.ShareSnapshot
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return study.Snapshot{}, study.ErrNotFound
		}
		return study.Snapshot{}, fmt.Errorf("query snapshot: %w", err)
	}
	payload := study.SessionsMap{}
	if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
		return study.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return study.Snapshot{
		Code:      row.Code,
		UserID:    row.UserID,
		Payload:   payload,
		CreatedAt: row.CreatedAt,
		Active:    row.Active,
	}, nil
}

func (s *Store) DeactivateSnapshot(ctx context.Context, code string) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.ShareSnapshot{}).
		Where("code = ?", code).
		Update("active", false)
	if res.Error != nil {
		return false, fmt.Errorf("deactivate snapshot: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListSnapshots(ctx context.Context, userID uint) ([]study.Snapshot, error) {
	var rows []models.ShareSnapshot
	if err := s.DB.WithContext(ctx).
		Select("code", "user_id", "active", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	out := make([]study.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, study.Snapshot{Code: row.Code, UserID: row.UserID, CreatedAt: row.CreatedAt, Active: row.Active})
	}
	return out, nil
}
