package clock

import "time"

// Clock supplies the current time to aggregation and live readings
type Clock interface {
	Now() time.Time
}

// System is the wall clock in UTC
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant. The dashboard pins "today" to a
// reference date so that generated data lines up with trend windows.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Today truncates c.Now() to midnight UTC
func Today(c Clock) time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
