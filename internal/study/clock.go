package study

import (
	"fmt"
	"time"
)

// Clock abstracts time to keep the timer deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the given location (Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

const dateLayout = "2006-01-02"

// DateKey returns the SessionsMap key for t, e.g. "2024-01-01".
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey validates a YYYY-MM-DD key.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}
