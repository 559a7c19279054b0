package study

import (
	"context"
	"time"
)

// LeaveChecker reports whether a leave day blocks timers on date.
type LeaveChecker interface {
	LeaveActive(ctx context.Context, date string) (bool, error)
}

// SessionSink receives sessions completed by a Timer and supplies the
// already-recorded total a new run starts from.
type SessionSink interface {
	Record(ctx context.Context, date string, p Period, s StudySession) (DayRecord, error)
	PeriodTotal(ctx context.Context, date string, p Period) (int64, error)
}

type timerState interface{ isTimerState() }

type idleState struct{}

type runningState struct {
	startedAt   time.Time
	baseElapsed int64
	done        chan struct{}
}

func (idleState) isTimerState()    {}
func (runningState) isTimerState() {}

func (r runningState) elapsed(now time.Time) int64 {
	d := int64(now.Sub(r.startedAt) / time.Second)
	if d < 0 {
		d = 0
	}
	return r.baseElapsed + d
}

// Timer is the Idle -> Running -> Idle machine of a single period. It is not
// safe for concurrent use; callers serialize access (see Registry).
type Timer struct {
	period Period
	window Window
	clock  Clock
	leave  LeaveChecker
	sink   SessionSink
	state  timerState
}

func NewTimer(p Period, w Window, clock Clock, leave LeaveChecker, sink SessionSink) *Timer {
	return &Timer{period: p, window: w, clock: clock, leave: leave, sink: sink, state: idleState{}}
}

func (t *Timer) Period() Period { return t.period }
func (t *Timer) Window() Window { return t.window }

// Running reports whether the timer is in the Running state.
func (t *Timer) Running() bool {
	_, ok := t.state.(runningState)
	return ok
}

// StartedAt returns the start timestamp while running.
func (t *Timer) StartedAt() (time.Time, bool) {
	r, ok := t.state.(runningState)
	return r.startedAt, ok
}

// Elapsed returns baseElapsed plus the running time, or false when idle.
func (t *Timer) Elapsed() (int64, bool) {
	r, ok := t.state.(runningState)
	if !ok {
		return 0, false
	}
	return r.elapsed(t.clock.Now()), true
}

// Start moves Idle -> Running. The window is checked before the leave day;
// on any failure the timer stays idle.
func (t *Timer) Start(ctx context.Context) error {
	if t.Running() {
		return ErrTimerRunning
	}
	now := t.clock.Now()
	if !t.window.Contains(now.Hour()) {
		return &WindowError{Period: t.period, Window: t.window, Hour: now.Hour()}
	}
	if t.leave != nil {
		blocked, err := t.leave.LeaveActive(ctx, DateKey(now))
		if err != nil {
			return storeFailure("check leave day", err)
		}
		if blocked {
			return ErrLeaveDayActive
		}
	}
	var base int64
	if t.sink != nil {
		total, err := t.sink.PeriodTotal(ctx, DateKey(now), t.period)
		if err != nil {
			return err
		}
		base = total
	}
	t.state = runningState{startedAt: now, baseElapsed: base, done: make(chan struct{})}
	return nil
}

// Stop moves Running -> Idle and hands the completed session to the sink.
// Calling Stop while idle is a no-op and returns false. If the sink fails
// the timer keeps running so the stop can be retried.
func (t *Timer) Stop(ctx context.Context) (StudySession, bool, error) {
	r, ok := t.state.(runningState)
	if !ok {
		return StudySession{}, false, nil
	}
	s := NewSession(r.startedAt, t.clock.Now())
	if t.sink != nil {
		if _, err := t.sink.Record(ctx, DateKey(r.startedAt), t.period, s); err != nil {
			return StudySession{}, false, err
		}
	}
	close(r.done)
	t.state = idleState{}
	return s, true, nil
}

// Watch emits the live elapsed value roughly every interval until the timer
// stops or ctx ends. Slow receivers miss ticks; nothing persisted depends on them.
// The returned channel is closed immediately when the timer is idle.
func (t *Timer) Watch(ctx context.Context, interval time.Duration) <-chan int64 {
	ch := make(chan int64, 1)
	r, ok := t.state.(runningState)
	if !ok {
		close(ch)
		return ch
	}
	if interval <= 0 {
		interval = time.Second
	}
	clock := t.clock
	ch <- r.elapsed(clock.Now())
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				select {
				case ch <- r.elapsed(clock.Now()):
				default:
				}
			}
		}
	}()
	return ch
}
