package study

import (
	"encoding/json"
	"fmt"
	"time"
)

// StudySession is one completed start/stop interval.
type StudySession struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int64     `json:"duration"` // 秒，>= 0
}

// NewSession builds a session from its timestamps. Skewed clocks (end before
// start) yield a zero-duration session that still keeps both timestamps.
func NewSession(start, end time.Time) StudySession {
	d := int64(end.Sub(start) / time.Second)
	if d < 0 {
		d = 0
	}
	return StudySession{Start: start, End: end, Duration: d}
}

// Consistent reports whether Duration is what NewSession would compute from
// the timestamps.
func (s StudySession) Consistent() bool {
	return s.Duration >= 0 && s.Duration == NewSession(s.Start, s.End).Duration
}

// DayRecord holds the sessions of one date, split by period.
type DayRecord struct {
	Morning   []StudySession `json:"morning"`
	Afternoon []StudySession `json:"afternoon"`
}

// NewDayRecord returns a record with empty (non-nil) period lists.
func NewDayRecord() DayRecord {
	return DayRecord{Morning: []StudySession{}, Afternoon: []StudySession{}}
}

// Sessions returns the list for p.
func (d DayRecord) Sessions(p Period) []StudySession {
	if p == Morning {
		return d.Morning
	}
	return d.Afternoon
}

// Append returns a copy of d with s added to period p. d itself is not modified.
func (d DayRecord) Append(p Period, s StudySession) DayRecord {
	out := d.Clone()
	if p == Morning {
		out.Morning = append(out.Morning, s)
	} else {
		out.Afternoon = append(out.Afternoon, s)
	}
	return out
}

// Clone deep-copies the record.
func (d DayRecord) Clone() DayRecord {
	out := DayRecord{
		Morning:   make([]StudySession, len(d.Morning)),
		Afternoon: make([]StudySession, len(d.Afternoon)),
	}
	copy(out.Morning, d.Morning)
	copy(out.Afternoon, d.Afternoon)
	return out
}

// Empty reports whether neither period has sessions.
func (d DayRecord) Empty() bool {
	return len(d.Morning) == 0 && len(d.Afternoon) == 0
}

// Totals holds derived durations in seconds.
type Totals struct {
	Morning   int64 `json:"morning"`
	Afternoon int64 `json:"afternoon"`
	Day       int64 `json:"day"`
}

// Period returns the total for p.
func (t Totals) Period(p Period) int64 {
	if p == Morning {
		return t.Morning
	}
	return t.Afternoon
}

// Totals sums the record. Totals are never stored.
func (d DayRecord) Totals() Totals {
	t := Totals{Morning: sum(d.Morning), Afternoon: sum(d.Afternoon)}
	t.Day = t.Morning + t.Afternoon
	return t
}

func sum(sessions []StudySession) int64 {
	var total int64
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// MarshalJSON always emits arrays for both periods.
func (d DayRecord) MarshalJSON() ([]byte, error) {
	type plain DayRecord
	return json.Marshal(plain(d.Clone()))
}

// SessionsMap is a user's full history keyed by date (YYYY-MM-DD).
type SessionsMap map[string]DayRecord

// Clone deep-copies the map.
func (m SessionsMap) Clone() SessionsMap {
	out := make(SessionsMap, len(m))
	for date, rec := range m {
		out[date] = rec.Clone()
	}
	return out
}

// Validate checks the date keys and that no session has a negative duration.
func (m SessionsMap) Validate() error {
	for date, rec := range m {
		if _, err := ParseDateKey(date); err != nil {
			return fmt.Errorf("%w: date %q", ErrInvalidInput, date)
		}
		for _, p := range Periods {
			for i, s := range rec.Sessions(p) {
				if s.Duration < 0 {
					return fmt.Errorf("%w: %s %s[%d] duration %d", ErrInvalidInput, date, p, i, s.Duration)
				}
			}
		}
	}
	return nil
}

// Consistent reports whether every session of m is consistent.
func (m SessionsMap) Consistent() bool {
	for _, rec := range m {
		for _, p := range Periods {
			for _, s := range rec.Sessions(p) {
				if !s.Consistent() {
					return false
				}
			}
		}
	}
	return true
}

// TotalSeconds sums every session in the map.
func (m SessionsMap) TotalSeconds() int64 {
	var total int64
	for _, rec := range m {
		total += rec.Totals().Day
	}
	return total
}

// LeaveDay suppresses timer starts for its date.
type LeaveDay struct {
	Date      string    `json:"date"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
