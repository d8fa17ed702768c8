package model

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads the process-local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
