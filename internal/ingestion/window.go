package ingestion

import (
	"time"

	"github.com/rotisserie/eris"

	"signal-io/internal/normalization"
)

// ErrInvalidWindow is returned for unparseable --date, --since or --until values.
var ErrInvalidWindow = eris.New("invalid time window")

const dayLayout = "2006-01-02"

// lastMicro is the final representable instant of a day at microsecond precision.
const lastMicro = 24*time.Hour - time.Microsecond

// Window is an inclusive UTC time range. Nil bounds are open.
type Window struct {
	Since *time.Time
	Until *time.Time
}

// ResolveWindow builds the window for one run.
// A day spans 00:00:00 through 23:59:59.999999 UTC; explicit since and until
// replace the day bound on their side.
func ResolveWindow(day, since, until string) (Window, error) {
	var w Window

	if day != "" {
		start, err := time.ParseInLocation(dayLayout, day, time.UTC)
		if err != nil {
			return Window{}, eris.Wrapf(ErrInvalidWindow, "date %q: expected YYYY-MM-DD", day)
		}
		end := start.Add(lastMicro)
		w.Since, w.Until = &start, &end
	}

	if since != "" {
		ts, err := normalization.ParseTimestamp(since)
		if err != nil {
			return Window{}, eris.Wrapf(ErrInvalidWindow, "since %q", since)
		}
		w.Since = &ts.UTC
	}

	if until != "" {
		ts, err := normalization.ParseTimestamp(until)
		if err != nil {
			return Window{}, eris.Wrapf(ErrInvalidWindow, "until %q", until)
		}
		w.Until = &ts.UTC
	}

	return w, nil
}
