package shared

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now directly so that date-sensitive logic (due dates, lateness) can be
// tested with a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now returns the time produced by the wrapped function
func (f ClockFunc) Now() time.Time {
	return f()
}
