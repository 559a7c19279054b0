// Package memstore is an in-process implementation of the session, leave and
// share stores. With a file path it also persists its state as JSON, which is
// handy for local development without a database.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"study-tracker/internal/study"
)

type userKey struct {
	UserID uint
	Date   string
}

// Store implements study.SessionStore, study.LeaveStore and study.ShareRepository.
type Store struct {
	mu        sync.RWMutex
	path      string
	sessions  map[userKey]study.DayRecord
	leaves    map[userKey]study.LeaveDay
	snapshots map[string]study.Snapshot
}

var (
	_ study.SessionStore    = (*Store)(nil)
	_ study.LeaveStore      = (*Store)(nil)
	_ study.ShareRepository = (*Store)(nil)
)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		sessions:  make(map[userKey]study.DayRecord),
		leaves:    make(map[userKey]study.LeaveDay),
		snapshots: make(map[string]study.Snapshot),
	}
}

// Open returns a store backed by the JSON file at path, loading it if present.
func Open(path string) (*Store, error) {
	s := New()
	s.path = path
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	var f fileState
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	f.restore(s)
	return s, nil
}

func (s *Store) AppendSession(_ context.Context, userID uint, date string, p study.Period, sess study.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey{userID, date}
	rec, ok := s.sessions[k]
	if !ok {
		rec = study.NewDayRecord()
	}
	s.sessions[k] = rec.Append(p, sess)
	if err := s.flushLocked(); err != nil {
		s.restoreSession(k, rec, ok)
		return err
	}
	return nil
}

func (s *Store) ListSessions(_ context.Context, userID uint, date string) (study.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[userKey{userID, date}]
	if !ok {
		return study.NewDayRecord(), nil
	}
	return rec.Clone(), nil
}

func (s *Store) ClearSessions(_ context.Context, userID uint, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey{userID, date}
	prev, ok := s.sessions[k]
	delete(s.sessions, k)
	if err := s.flushLocked(); err != nil {
		s.restoreSession(k, prev, ok)
		return err
	}
	return nil
}

func (s *Store) SessionHistory(_ context.Context, userID uint) (study.SessionsMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := study.SessionsMap{}
	for k, rec := range s.sessions {
		if k.UserID == userID {
			out[k.Date] = rec.Clone()
		}
	}
	return out, nil
}

func (s *Store) GetLeave(_ context.Context, userID uint, date string) (*study.LeaveDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leaves[userKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) PutLeave(_ context.Context, userID uint, date string, reason *string) (study.LeaveDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey{userID, date}
	prev, ok := s.leaves[k]
	l := prev
	if !ok {
		l = study.LeaveDay{Date: date, CreatedAt: nowFunc()}
	}
	l.Reason = copyString(reason)
	s.leaves[k] = l
	if err := s.flushLocked(); err != nil {
		s.restoreLeave(k, prev, ok)
		return study.LeaveDay{}, err
	}
	return l, nil
}

func (s *Store) DeleteLeave(_ context.Context, userID uint, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := userKey{userID, date}
	prev, ok := s.leaves[k]
	delete(s.leaves, k)
	if err := s.flushLocked(); err != nil {
		s.restoreLeave(k, prev, ok)
		return err
	}
	return nil
}

func (s *Store) CreateSnapshot(_ context.Context, snap study.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[snap.Code]; exists {
		return fmt.Errorf("share code %q already exists", snap.Code)
	}
	snap.Payload = snap.Payload.Clone()
	s.snapshots[snap.Code] = snap
	if err := s.flushLocked(); err != nil {
		delete(s.snapshots, snap.Code)
		return err
	}
	return nil
}

func (s *Store) GetSnapshot(_ context.Context, code string) (study.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[code]
	if !ok {
		return study.Snapshot{}, study.ErrNotFound
	}
	snap.Payload = snap.Payload.Clone()
	return snap, nil
}

func (s *Store) DeactivateSnapshot(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[code]
	if !ok {
		return false, nil
	}
	prev := snap
	snap.Active = false
	s.snapshots[code] = snap
	if err := s.flushLocked(); err != nil {
		s.snapshots[code] = prev
		return false, err
	}
	return true, nil
}

func (s *Store) ListSnapshots(_ context.Context, userID uint) ([]study.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []study.Snapshot{}
	for _, snap := range s.snapshots {
		if snap.UserID == userID {
			snap.Payload = snap.Payload.Clone()
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// flushLocked rewrites the backing file; callers hold s.mu.
func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(snapshotState(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *Store) restoreSession(k userKey, rec study.DayRecord, existed bool) {
	if existed {
		s.sessions[k] = rec
	} else {
		delete(s.sessions, k)
	}
}

func (s *Store) restoreLeave(k userKey, l study.LeaveDay, existed bool) {
	if existed {
		s.leaves[k] = l
	} else {
		delete(s.leaves, k)
	}
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
