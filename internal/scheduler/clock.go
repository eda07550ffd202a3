package scheduler

import "time"

type Clock interface {
	Now() time.Time
}

// wall clock
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// returns the next occurrence of hour:00 in now's location: today if it
// has not passed yet, tomorrow otherwise
func NextAnchor(now time.Time, hour int) time.Time {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())

	if !now.Before(anchor) {
		anchor = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}

	return anchor
}
