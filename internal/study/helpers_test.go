package study

import (
	"context"
	"errors"
	"sync"
	"time"
)

var tz = time.FixedZone("CST", 8*3600)

// manualClock 手动推进的时钟
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(hour, min, sec int) *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, hour, min, sec, 0, tz)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = errors.New("boom")

// fakeStore 同时实现 SessionStore / LeaveStore / ShareRepository
type fakeStore struct {
	mu        sync.Mutex
	sessions  map[string]DayRecord
	leaves    map[string]LeaveDay
	snapshots map[string]Snapshot
	appends   int
	failWrite bool
	failRead  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:  map[string]DayRecord{},
		leaves:    map[string]LeaveDay{},
		snapshots: map[string]Snapshot{},
	}
}

func (f *fakeStore) AppendSession(_ context.Context, _ uint, date string, p Period, s StudySession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errBoom
	}
	f.appends++
	rec, ok := f.sessions[date]
	if !ok {
		rec = NewDayRecord()
	}
	f.sessions[date] = rec.Append(p, s)
	return nil
}

func (f *fakeStore) ListSessions(_ context.Context, _ uint, date string) (DayRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return DayRecord{}, errBoom
	}
	rec, ok := f.sessions[date]
	if !ok {
		return NewDayRecord(), nil
	}
	return rec.Clone(), nil
}

func (f *fakeStore) ClearSessions(_ context.Context, _ uint, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errBoom
	}
	delete(f.sessions, date)
	return nil
}

func (f *fakeStore) SessionHistory(_ context.Context, _ uint) (SessionsMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SessionsMap(f.sessions).Clone(), nil
}

func (f *fakeStore) GetLeave(_ context.Context, _ uint, date string) (*LeaveDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errBoom
	}
	l, ok := f.leaves[date]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeStore) PutLeave(_ context.Context, _ uint, date string, reason *string) (LeaveDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := LeaveDay{Date: date, Reason: reason}
	f.leaves[date] = l
	return l, nil
}

func (f *fakeStore) DeleteLeave(_ context.Context, _ uint, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.leaves, date)
	return nil
}

func (f *fakeStore) CreateSnapshot(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errBoom
	}
	snap.Payload = snap.Payload.Clone()
	f.snapshots[snap.Code] = snap
	return nil
}

func (f *fakeStore) GetSnapshot(_ context.Context, code string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[code]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap.Payload = snap.Payload.Clone()
	return snap, nil
}

func (f *fakeStore) DeactivateSnapshot(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[code]
	if !ok {
		return false, nil
	}
	snap.Active = false
	f.snapshots[code] = snap
	return true, nil
}

func (f *fakeStore) ListSnapshots(_ context.Context, userID uint) ([]Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Snapshot
	for _, s := range f.snapshots {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
