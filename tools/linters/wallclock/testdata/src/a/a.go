package a

import (
	"time"
	clock "time"
)

func cycleDay(start, asOf time.Time) int {
	return int(asOf.Sub(start).Hours()/24) + 1
}

func fromClock(start time.Time) int {
	return cycleDay(start, time.Now()) // want `time.Now reads the wall clock; take the as-of date as a parameter`
}

func utcStillReadsClock() time.Time {
	return time.Now().UTC() // want `time.Now reads the wall clock`
}

func aliased() time.Time {
	return clock.Now() // want `time.Now reads the wall clock`
}

func elapsed(start time.Time) time.Duration {
	return time.Since(start) // want `time.Since reads the wall clock`
}

// today evaluates against the current date.
//
//wallclock:allow
func today(start time.Time) int {
	return cycleDay(start, time.Now())
}

func silenced() time.Time {
	return time.Now() //nolint:wallclock
}

func silencedGeneral() time.Time {
	return time.Now() //nolint
}

func otherLinter() time.Time {
	return time.Now() //nolint:errcheck // want `time.Now reads the wall clock`
}

func notTheClock(d time.Duration) time.Time {
	return time.Unix(0, 0).Add(d)
}
