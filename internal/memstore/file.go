package memstore

import (
	"time"

	"study-tracker/internal/study"
)

var nowFunc = time.Now

// fileState is the on-disk layout of a file-backed store.
type fileState struct {
	Sessions  []sessionRow     `json:"sessions"`
	Leaves    []leaveRow       `json:"leaves"`
	Snapshots []study.Snapshot `json:"snapshots"`
	Owners    map[string]uint  `json:"owners"`
}

type sessionRow struct {
	UserID uint            `json:"user_id"`
	Date   string          `json:"date"`
	Record study.DayRecord `json:"record"`
}

type leaveRow struct {
	UserID uint           `json:"user_id"`
	Leave  study.LeaveDay `json:"leave"`
}

func snapshotState(s *Store) fileState {
	f := fileState{Owners: make(map[string]uint, len(s.snapshots))}
	for k, rec := range s.sessions {
		f.Sessions = append(f.Sessions, sessionRow{UserID: k.UserID, Date: k.Date, Record: rec})
	}
	for k, l := range s.leaves {
		f.Leaves = append(f.Leaves, leaveRow{UserID: k.UserID, Leave: l})
	}
	for code, snap := range s.snapshots {
		f.Snapshots = append(f.Snapshots, snap)
		// Snapshot.UserID is hidden from JSON, keep ownership alongside
		f.Owners[code] = snap.UserID
	}
	return f
}

func (f fileState) restore(s *Store) {
	for _, row := range f.Sessions {
		s.sessions[userKey{row.UserID, row.Date}] = row.Record.Clone()
	}
	for _, row := range f.Leaves {
		s.leaves[userKey{row.UserID, row.Leave.Date}] = row.Leave
	}
	for _, snap := range f.Snapshots {
		snap.UserID = f.Owners[snap.Code]
		s.snapshots[snap.Code] = snap
	}
}
