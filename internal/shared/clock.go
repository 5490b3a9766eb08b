package shared

import "time"

// Clock abstracts wall-clock reads so expiry logic can be tested without
// real sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a [Clock] backed by [time.Now].
func SystemClock() Clock { return systemClock{} }
