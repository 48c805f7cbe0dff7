package dialog

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderLayout formats a dialog header's conversationDateTime.
	HeaderLayout = "January 02 2006 15:04:05"
	// VolleyLayout formats a volley datetime.
	VolleyLayout = "2006-01-02T15:04:05.000Z"
)

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006/01/02-15:04:05.000(-0700)",
	"2006/01/02-15:04:05(-0700)",
	"2006/01/02-15:04(-0700)",
	"2006/01/02-15(-0700)",
	"2006/01/02(-0700)",
	"2006/01/02-15:04:05.000",
	"2006/01/02-15:04:05",
	"2006/01/02-15:04",
	"2006/01/02-15",
	"2006/01/02 15:04:05.000000",
	"2006/01/02",
	"Mon, 02 Jan 2006 15:04:05",
	HeaderLayout,
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats found in dialog files, or a
// count of milliseconds since the epoch. Times without a zone are UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 8 {
		return time.UnixMilli(ms).UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Elapsed returns end minus start. It is 0 when end is unset, the time since
// the epoch when start is unset, and negative when start is after end.
func Elapsed(start, end time.Time) time.Duration {
	if end.IsZero() {
		return 0
	}
	if start.IsZero() {
		return end.Sub(time.Unix(0, 0))
	}
	if start.After(end) {
		return -Elapsed(end, start)
	}
	return end.Sub(start)
}

// AnchorFromFileName returns noon UTC on the date carried by the ten
// characters before ".<ext>" in name, e.g. "chats-2020-01-15.json". Names
// without a date anchor to noon UTC on the day of now.
func AnchorFromFileName(name, ext string, now time.Time) time.Time {
	base := strings.TrimSuffix(filepath.Base(name), "."+ext)
	if len(base) >= 10 {
		if d, err := time.Parse("2006-01-02", base[len(base)-10:]); err == nil {
			return noon(d)
		}
	}
	return noon(now.UTC())
}

func noon(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

// Timeline moves the volleys of one dialog onto an anchor date. The spacing
// between consecutive volleys is kept exactly; absolute dates are replaced.
type Timeline struct {
	anchor time.Time
	offset time.Duration
	last   time.Time
}

// NewTimeline returns a Timeline anchored at anchor.
func NewTimeline(anchor time.Time) *Timeline {
	return &Timeline{anchor: anchor}
}

// Start begins a new dialog whose original start time is conversationStart.
// A zero conversationStart makes the first volley the starting point.
func (t *Timeline) Start(conversationStart time.Time) time.Time {
	t.offset = 0
	t.last = conversationStart
	return t.anchor
}

// Next returns the re-anchored time of the volley originally sent at at.
func (t *Timeline) Next(at time.Time) time.Time {
	if t.last.IsZero() {
		t.last = at
	}
	t.offset += Elapsed(t.last, at)
	t.last = at
	return t.anchor.Add(t.offset)
}
