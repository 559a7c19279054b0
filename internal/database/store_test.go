package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"study-tracker/internal/config"
	"study-tracker/internal/models"
	"study-tracker/internal/study"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) (*gorm.DB, uint) {
	t.Helper()
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	user := models.User{Username: "alice", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return db, user.ID
}

func TestStore_SessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, uid := openTestDB(t)
	s := NewStore(db)

	empty, err := s.ListSessions(ctx, uid, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Morning == nil || empty.Afternoon == nil {
		t.Error("空日期应返回空列表而不是 nil")
	}

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	first := study.NewSession(start, start.Add(1530*time.Second))
	second := study.NewSession(start.Add(time.Hour), start.Add(time.Hour+60*time.Second))
	third := study.NewSession(start.Add(5*time.Hour), start.Add(5*time.Hour+600*time.Second))
	for _, in := range []struct {
		p study.Period
		s study.StudySession
	}{{study.Morning, first}, {study.Morning, second}, {study.Afternoon, third}} {
		if err := s.AppendSession(ctx, uid, "2024-01-01", in.p, in.s); err != nil {
			t.Fatal(err)
		}
	}

	rec, err := s.ListSessions(ctx, uid, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Morning) != 2 || rec.Morning[0].Duration != 1530 || rec.Morning[1].Duration != 60 {
		t.Errorf("morning = %+v", rec.Morning)
	}
	if !rec.Morning[0].Start.Equal(start) {
		t.Errorf("start = %v", rec.Morning[0].Start)
	}
	if totals := rec.Totals(); totals.Day != 2190 {
		t.Errorf("totals = %+v", totals)
	}

	_ = s.AppendSession(ctx, uid, "2024-01-02", study.Morning, first)
	history, err := s.SessionHistory(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history.TotalSeconds() != 2190+1530 {
		t.Errorf("history = %+v", history)
	}

	if err := s.ClearSessions(ctx, uid, "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	rec, _ = s.ListSessions(ctx, uid, "2024-01-01")
	if !rec.Empty() {
		t.Errorf("清空后仍有记录: %+v", rec)
	}
	other, _ := s.ListSessions(ctx, uid, "2024-01-02")
	if other.Totals().Day != 1530 {
		t.Error("清空某天不应影响其他日期")
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	db, uid := openTestDB(t)
	s := NewStore(db)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := study.Morning
			if i%2 == 0 {
				p = study.Afternoon
			}
			if err := s.AppendSession(ctx, uid, "2024-01-01", p, study.NewSession(start, start.Add(10*time.Second))); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	rec, _ := s.ListSessions(ctx, uid, "2024-01-01")
	if got := len(rec.Morning) + len(rec.Afternoon); got != 20 {
		t.Errorf("sessions = %d, want 20", got)
	}
}

func TestStore_LeaveUpsert(t *testing.T) {
	ctx := context.Background()
	db, uid := openTestDB(t)
	s := NewStore(db)

	if l, err := s.GetLeave(ctx, uid, "2024-01-01"); err != nil || l != nil {
		t.Fatalf("GetLeave = %+v, %v", l, err)
	}
	first, second := "事假", "病假"
	if _, err := s.PutLeave(ctx, uid, "2024-01-01", &first); err != nil {
		t.Fatal(err)
	}
	saved, err := s.PutLeave(ctx, uid, "2024-01-01", &second)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Reason == nil || *saved.Reason != "病假" {
		t.Errorf("reason = %v", saved.Reason)
	}
	var count int64
	db.Model(&models.LeaveDay{}).Where("user_id = ?", uid).Count(&count)
	if count != 1 {
		t.Errorf("同一天应只有一条请假记录, got %d", count)
	}

	if _, err := s.PutLeave(ctx, uid, "2024-01-01", nil); err != nil {
		t.Fatal(err)
	}
	l, _ := s.GetLeave(ctx, uid, "2024-01-01")
	if l == nil || l.Reason != nil {
		t.Errorf("清空原因后 = %+v", l)
	}

	if err := s.DeleteLeave(ctx, uid, "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	if l, _ := s.GetLeave(ctx, uid, "2024-01-01"); l != nil {
		t.Error("删除后仍存在")
	}
}

func TestStore_Snapshots(t *testing.T) {
	ctx := context.Background()
	db, uid := openTestDB(t)
	s := NewStore(db)
	svc := study.NewShareService(s, study.SystemClock{}, nil)

	live := study.SessionsMap{"2024-01-01": study.NewDayRecord().Append(study.Morning, study.StudySession{Duration: 600})}
	snap, err := svc.Create(ctx, uid, live)
	if err != nil {
		t.Fatal(err)
	}

	live["2024-01-01"] = live["2024-01-01"].Append(study.Afternoon, study.StudySession{Duration: 5})
	got, err := svc.Read(ctx, snap.Code)
	if err != nil {
		t.Fatal(err)
	}
	if got["2024-01-01"].Totals().Day != 600 || len(got["2024-01-01"].Afternoon) != 0 {
		t.Errorf("snapshot = %+v", got)
	}

	list, err := svc.List(ctx, uid)
	if err != nil || len(list) != 1 || !list[0].Active {
		t.Fatalf("list = %+v, %v", list, err)
	}

	for i := 0; i < 2; i++ {
		ok, err := svc.Deactivate(ctx, snap.Code)
		if err != nil || !ok {
			t.Fatalf("deactivate #%d = %v, %v", i+1, ok, err)
		}
	}
	if _, err := svc.Read(ctx, snap.Code); !errors.Is(err, study.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if ok, _ := svc.Deactivate(ctx, "unknown"); ok {
		t.Error("unknown code should return false")
	}
}
