package suggestion

import "time"

// Timer is a single-shot pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already fired or was stopped.
	Stop() bool
}

// Clock schedules debounce callbacks.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// RealClock returns the wall clock backed by time.AfterFunc.
func RealClock() Clock {
	return realClock{}
}
