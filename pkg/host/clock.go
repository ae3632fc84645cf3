package host

import "time"

// SystemClock pauses with time.Sleep.
type SystemClock struct{}

// Pause blocks for the given number of seconds.
func (SystemClock) Pause(seconds float64) {
	if seconds <= 0 {
		return
	}
	time.Sleep(time.Duration(seconds * float64(time.Second)))
}
