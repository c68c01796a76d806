package daterange

import (
	"strconv"
	"time"
)

// MaxProviderDays is the longest window the analytics export accepts.
const MaxProviderDays = 90

// Range is a [From, To] window with its epoch-millisecond encodings.
type Range struct {
	Start string
	End   string
	From  time.Time
	To    time.Time
}

// Compute returns the window ending at now (UTC, whole seconds) and starting
// days*24h earlier. days is not clamped.
func Compute(now time.Time, days int) Range {
	to := now.UTC().Truncate(time.Second)
	from := to.Add(-time.Duration(days) * 24 * time.Hour)
	return Range{Start: millis(from), End: millis(to), From: from, To: to}
}

// Days is the window length in whole days.
func (r Range) Days() int { return int(r.To.Sub(r.From) / (24 * time.Hour)) }

func millis(t time.Time) string { return strconv.FormatInt(t.Unix()*1000, 10) }
