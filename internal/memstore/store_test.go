package memstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"study-tracker/internal/study"
)

func TestListSessions_EmptyDay(t *testing.T) {
	s := New()
	rec, err := s.ListSessions(context.Background(), 1, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Morning == nil || rec.Afternoon == nil || !rec.Empty() {
		t.Errorf("empty day = %+v, want empty non-nil lists", rec)
	}
}

func TestAppendSession_ConcurrentNoLoss(t *testing.T) {
	ctx := context.Background()
	s := New()
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := study.Morning
			if i%2 == 1 {
				p = study.Afternoon
			}
			sess := study.NewSession(start, start.Add(time.Second))
			if err := s.AppendSession(ctx, 1, "2024-01-01", p, sess); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	rec, _ := s.ListSessions(ctx, 1, "2024-01-01")
	if len(rec.Morning) != 50 || len(rec.Afternoon) != 50 {
		t.Errorf("morning=%d afternoon=%d, want 50/50", len(rec.Morning), len(rec.Afternoon))
	}
	if rec.Totals().Day != 100 {
		t.Errorf("day total = %d", rec.Totals().Day)
	}
}

func TestSessionsAreScopedByUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.AppendSession(ctx, 1, "2024-01-01", study.Morning, study.StudySession{Duration: 10})
	_ = s.AppendSession(ctx, 2, "2024-01-01", study.Morning, study.StudySession{Duration: 20})

	if err := s.ClearSessions(ctx, 1, "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	h1, _ := s.SessionHistory(ctx, 1)
	h2, _ := s.SessionHistory(ctx, 2)
	if len(h1) != 0 || h2.TotalSeconds() != 20 {
		t.Errorf("history user1=%v user2=%v", h1, h2)
	}
}

func TestLeave_UpsertByDate(t *testing.T) {
	ctx := context.Background()
	s := New()
	if l, _ := s.GetLeave(ctx, 1, "2024-01-01"); l != nil {
		t.Fatalf("unexpected leave %+v", l)
	}
	first, second := "事假", "病假"
	_, _ = s.PutLeave(ctx, 1, "2024-01-01", &first)
	_, _ = s.PutLeave(ctx, 1, "2024-01-01", &second)

	l, _ := s.GetLeave(ctx, 1, "2024-01-01")
	if l == nil || l.Reason == nil || *l.Reason != "病假" {
		t.Fatalf("leave = %+v", l)
	}
	second = "changed"
	if l, _ := s.GetLeave(ctx, 1, "2024-01-01"); *l.Reason != "病假" {
		t.Error("stored reason aliases the caller's string")
	}

	_ = s.DeleteLeave(ctx, 1, "2024-01-01")
	if l, _ := s.GetLeave(ctx, 1, "2024-01-01"); l != nil {
		t.Error("leave not deleted")
	}
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()
	payload := study.SessionsMap{"2024-01-01": study.NewDayRecord().Append(study.Morning, study.StudySession{Duration: 600})}
	snap := study.Snapshot{Code: "abc", UserID: 1, Payload: payload, CreatedAt: time.Now(), Active: true}
	if err := s.CreateSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSnapshot(ctx, snap); err == nil {
		t.Error("duplicate code accepted")
	}

	payload["2024-01-01"].Morning[0].Duration = 1
	got, err := s.GetSnapshot(ctx, "abc")
	if err != nil || got.Payload["2024-01-01"].Morning[0].Duration != 600 {
		t.Errorf("snapshot = %+v, %v", got, err)
	}

	if _, err := s.GetSnapshot(ctx, "missing"); !errors.Is(err, study.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if ok, _ := s.DeactivateSnapshot(ctx, "missing"); ok {
		t.Error("deactivated a missing code")
	}
	for i := 0; i < 2; i++ {
		if ok, _ := s.DeactivateSnapshot(ctx, "abc"); !ok {
			t.Error("deactivate existing code returned false")
		}
	}
	got, _ = s.GetSnapshot(ctx, "abc")
	if got.Active {
		t.Error("snapshot still active")
	}

	list, _ := s.ListSnapshots(ctx, 1)
	if len(list) != 1 {
		t.Errorf("list = %d", len(list))
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.AppendSession(ctx, 1, "2024-01-01", study.Afternoon, study.StudySession{Duration: 90})
	reason := "考试"
	_, _ = s.PutLeave(ctx, 1, "2024-01-02", &reason)
	_ = s.CreateSnapshot(ctx, study.Snapshot{Code: "xyz", UserID: 1, Payload: study.SessionsMap{}, Active: true})
	_, _ = s.DeactivateSnapshot(ctx, "xyz")

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := reopened.ListSessions(ctx, 1, "2024-01-01")
	if rec.Totals().Afternoon != 90 {
		t.Errorf("afternoon = %d", rec.Totals().Afternoon)
	}
	if l, _ := reopened.GetLeave(ctx, 1, "2024-01-02"); l == nil || *l.Reason != "考试" {
		t.Errorf("leave = %+v", l)
	}
	snap, err := reopened.GetSnapshot(ctx, "xyz")
	if err != nil || snap.Active || snap.UserID != 1 {
		t.Errorf("snapshot = %+v, %v", snap, err)
	}
}

func TestShareServiceOverMemstore(t *testing.T) {
	ctx := context.Background()
	svc := study.NewShareService(New(), study.SystemClock{}, nil)
	snap, err := svc.Create(ctx, 1, study.SessionsMap{"2024-01-01": study.NewDayRecord()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Read(ctx, snap.Code); err != nil {
		t.Fatal(err)
	}
	_, _ = svc.Deactivate(ctx, snap.Code)
	if _, err := svc.Read(ctx, snap.Code); !errors.Is(err, study.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
