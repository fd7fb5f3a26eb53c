package normalization

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidTimestamp is returned when a value cannot be read as an ISO-8601 instant.
var ErrInvalidTimestamp = eris.New("invalid timestamp")

// LabelUTC is the original-timezone label for a zero offset.
const LabelUTC = "UTC"

// Timestamp is a normalized instant plus the label of the offset it was written in.
type Timestamp struct {
	UTC time.Time
	// OriginalTimezone is nil when the input carried no offset.
	OriginalTimezone *string
}

var (
	zonedLayouts []string
	naiveLayouts []string
)

func init() {
	forms := []struct {
		date, clock string
	}{
		{"2006-01-02", "15:04:05"},
		{"2006-01-02", "15:04"},
		{"2006-01-02", "15"},
		{"20060102", "150405"},
		{"20060102", "1504"},
		{"20060102", "15"},
	}
	for _, sep := range []string{"T", " "} {
		for _, f := range forms {
			base := f.date + sep + f.clock
			zonedLayouts = append(zonedLayouts, base+"Z07:00", base+"-0700", base+"-07")
			naiveLayouts = append(naiveLayouts, base)
		}
	}
	naiveLayouts = append(naiveLayouts, "2006-01-02", "20060102")
}

// Normalize converts a string or time.Time into a Timestamp.
// Any other input type yields ErrInvalidTimestamp.
func Normalize(value any) (Timestamp, error) {
	switch v := value.(type) {
	case string:
		return ParseTimestamp(v)
	case time.Time:
		return FromTime(v), nil
	case *time.Time:
		if v == nil {
			return Timestamp{}, eris.Wrap(ErrInvalidTimestamp, "nil time")
		}
		return FromTime(*v), nil
	default:
		return Timestamp{}, eris.Wrapf(ErrInvalidTimestamp, "unsupported timestamp type %T", value)
	}
}

// ParseTimestamp parses an ISO-8601 string.
// A trailing Z or explicit offset is converted to UTC and labelled;
// strings without an offset are read as UTC with no label.
func ParseTimestamp(raw string) (Timestamp, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Timestamp{}, eris.Wrap(ErrInvalidTimestamp, "empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{UTC: t.Truncate(time.Microsecond)}, nil
		}
	}
	return Timestamp{}, eris.Wrapf(ErrInvalidTimestamp, "parse %q", raw)
}

// FromTime treats the offset of t as explicit.
func FromTime(t time.Time) Timestamp {
	_, offset := t.Zone()
	label := OffsetLabel(offset)
	return Timestamp{
		UTC:              t.UTC().Truncate(time.Microsecond),
		OriginalTimezone: &label,
	}
}

// OffsetLabel renders an offset in seconds as "UTC" or "UTC±HH:MM[:SS]".
func OffsetLabel(offset int) string {
	if offset == 0 {
		return LabelUTC
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h, m, s := offset/3600, offset%3600/60, offset%60
	if s != 0 {
		return fmt.Sprintf("UTC%c%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, h, m)
}

// ISO renders t in UTC as 2006-01-02T15:04:05+00:00, appending
// microseconds only when they are non-zero. This is the form hashed into signal IDs.
func ISO(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	if us := t.Nanosecond() / 1000; us != 0 {
		base += fmt.Sprintf(".%06d", us)
	}
	return base + "+00:00"
}

// UTCSeconds renders t as 2006-01-02T15:04:05Z.
func UTCSeconds(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// InRange reports whether ts lies within [since, until]. Nil bounds are open.
func InRange(ts time.Time, since, until *time.Time) bool {
	if since != nil && ts.Before(*since) {
		return false
	}
	if until != nil && ts.After(*until) {
		return false
	}
	return true
}
