package financial

import "time"

// Clock interface for time operations (supports testing)
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using actual system time
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock implements Clock for testing
type FixedClock struct {
	CurrentTime time.Time
}

func (m *FixedClock) Now() time.Time {
	return m.CurrentTime
}

func (m *FixedClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}
