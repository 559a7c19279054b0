package study

import (
	"context"
	"time"
)

// TimerStatus is a read-only view of one period's timer.
type TimerStatus struct {
	Period    Period     `json:"period"`
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Elapsed   int64      `json:"elapsed"`
	Window    Window     `json:"window"`
}

// StopResult describes the outcome of Tracker.Stop.
type StopResult struct {
	Stopped bool          `json:"stopped"`
	Session *StudySession `json:"session,omitempty"`
	Date    string        `json:"date,omitempty"`
	Totals  Totals        `json:"totals"`
}

type leaveChecker struct {
	userID uint
	store  LeaveStore
}

func (l leaveChecker) LeaveActive(ctx context.Context, date string) (bool, error) {
	leave, err := l.store.GetLeave(ctx, l.userID, date)
	if err != nil {
		return false, err
	}
	return leave != nil, nil
}

// Tracker owns one user's aggregator and the two independent period timers.
type Tracker struct {
	userID uint
	clock  Clock
	agg    *Aggregator
	timers map[Period]*Timer
}

func NewTracker(userID uint, sessions SessionStore, leaves LeaveStore, clock Clock, windows Windows) *Tracker {
	if windows == nil {
		windows = DefaultWindows()
	}
	agg := NewAggregator(userID, sessions)
	var leave LeaveChecker
	if leaves != nil {
		leave = leaveChecker{userID: userID, store: leaves}
	}
	t := &Tracker{userID: userID, clock: clock, agg: agg, timers: make(map[Period]*Timer, len(Periods))}
	for _, p := range Periods {
		t.timers[p] = NewTimer(p, windows[p], clock, leave, agg)
	}
	return t
}

func (t *Tracker) UserID() uint            { return t.userID }
func (t *Tracker) Aggregator() *Aggregator { return t.agg }
func (t *Tracker) Timer(p Period) *Timer   { return t.timers[p] }
func (t *Tracker) Today() string           { return DateKey(t.clock.Now()) }

// Idle reports whether no timer of the tracker is running.
func (t *Tracker) Idle() bool {
	for _, timer := range t.timers {
		if timer.Running() {
			return false
		}
	}
	return true
}

// Start starts the timer of p.
func (t *Tracker) Start(ctx context.Context, p Period) (TimerStatus, error) {
	timer, ok := t.timers[p]
	if !ok {
		return TimerStatus{}, ErrInvalidInput
	}
	if err := timer.Start(ctx); err != nil {
		return TimerStatus{}, err
	}
	return t.status(timer, Totals{}), nil
}

// Stop stops the timer of p. Stopping an idle timer reports Stopped=false.
func (t *Tracker) Stop(ctx context.Context, p Period) (StopResult, error) {
	timer, ok := t.timers[p]
	if !ok {
		return StopResult{}, ErrInvalidInput
	}
	session, stopped, err := timer.Stop(ctx)
	if err != nil {
		return StopResult{}, err
	}
	if !stopped {
		rec, err := t.agg.Day(ctx, t.Today())
		if err != nil {
			return StopResult{}, err
		}
		return StopResult{Totals: rec.Totals()}, nil
	}
	date := DateKey(session.Start)
	rec, _ := t.agg.Cached(date)
	return StopResult{Stopped: true, Session: &session, Date: date, Totals: rec.Totals()}, nil
}

// Status reloads today's record and reports both timers.
func (t *Tracker) Status(ctx context.Context) ([]TimerStatus, Totals, error) {
	rec, err := t.agg.Day(ctx, t.Today())
	if err != nil {
		return nil, Totals{}, err
	}
	totals := rec.Totals()
	out := make([]TimerStatus, 0, len(Periods))
	for _, p := range Periods {
		out = append(out, t.status(t.timers[p], totals))
	}
	return out, totals, nil
}

// Watch streams the live elapsed value of p; see Timer.Watch.
func (t *Tracker) Watch(ctx context.Context, p Period, interval time.Duration) (<-chan int64, error) {
	timer, ok := t.timers[p]
	if !ok {
		return nil, ErrInvalidInput
	}
	return timer.Watch(ctx, interval), nil
}

func (t *Tracker) status(timer *Timer, totals Totals) TimerStatus {
	st := TimerStatus{Period: timer.Period(), Window: timer.Window(), Elapsed: totals.Period(timer.Period())}
	if started, ok := timer.StartedAt(); ok {
		st.Running = true
		st.StartedAt = &started
		st.Elapsed, _ = timer.Elapsed()
	}
	return st
}
