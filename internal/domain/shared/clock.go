package shared

import "time"

// Clock abstracts time for code that needs deterministic retries in tests
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the production Clock backed by the time package
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the current goroutine for the given duration
func (SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
