// Package clock abstracts the current time so that time-dependent
// booking decisions can be tested with a fixed clock.
package clock

import "time"

// Clock supplies the current instant in canonical UTC.
type Clock interface {
	Now() time.Time
}

// Real is the production clock backed by the system time.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed is a deterministic clock for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T.UTC() }

// IsFuture reports whether t is strictly after the clock's current
// instant. Both sides are normalized to UTC before comparing, so an
// instant carrying a zone offset and the same instant expressed in
// UTC behave identically.
func IsFuture(c Clock, t time.Time) bool {
	return t.UTC().After(c.Now())
}
