package study

import (
	"errors"
	"fmt"
)

var (
	ErrTimeWindowViolation = errors.New("outside study time window")
	ErrLeaveDayActive      = errors.New("leave day active")
	ErrTimerRunning        = errors.New("timer already running")
	ErrNotFound            = errors.New("not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidInput        = errors.New("invalid input")
)

// WindowError carries the details of a rejected start.
type WindowError struct {
	Period Period
	Window Window
	Hour   int
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s timer can only start between %s (hour %d)", e.Period, e.Window, e.Hour)
}

func (e *WindowError) Is(target error) bool {
	return target == ErrTimeWindowViolation
}

// storeFailure wraps a collaborator error as ErrStoreUnavailable.
// ErrNotFound passes through untouched.
func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
