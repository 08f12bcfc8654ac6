package layout

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"schedview/internal/model"
)

// DateLayout is the layout of date keys ("2026-01-14").
const DateLayout = "2006-01-02"

// DayHeader is the column header of a calendar day.
type DayHeader struct {
	Name string // "Mon"
	Day  int    // day of month
}

// DayHeaderFor formats the header of a UTC calendar date.
func DayHeaderFor(date time.Time) DayHeader {
	d := date.UTC()
	return DayHeader{Name: d.Format("Mon"), Day: d.Day()}
}

// FormatClock formats the UTC clock time of t as "9:05AM".
func FormatClock(t time.Time) string {
	u := t.UTC()
	return clock12(u.Hour()) + fmt.Sprintf(":%02d", u.Minute()) + meridiem(u.Hour())
}

// HourLabel formats an hour of the day (0..24) as "8AM", "12PM", "12AM".
func HourLabel(hour int) string {
	return clock12(hour) + meridiem(hour)
}

func clock12(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return strconv.Itoa(h)
}

func meridiem(hour int) string {
	h := hour % 24
	if h >= 12 {
		return "PM"
	}
	return "AM"
}

// FormatSpan formats a start/end pair as "09:00-10:00" in UTC.
func FormatSpan(start, end time.Time) string {
	return start.UTC().Format("15:04") + "-" + end.UTC().Format("15:04")
}

// FormatHourOffset formats a decimal hour offset from base as a clock label,
// e.g. base 5 and offset 4.5 -> "9:30". Hour 24 stays "24:00".
func FormatHourOffset(base int, offset float64) string {
	mins := int(math.Round((float64(base) + offset) * 60))
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}

// TickLabels returns axis labels every step hours across the window,
// including both ends.
func TickLabels(base int, window float64, step float64) []string {
	if step <= 0 {
		return nil
	}
	var out []string
	for v := 0.0; v <= window+1e-9; v += step {
		out = append(out, FormatHourOffset(base, v))
	}
	return out
}

// FormatHours renders a duration in hours without trailing zeros:
// "1 hour", "0.5 hours", "2.25 hours".
func FormatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if h == 1 {
		return s + " hour"
	}
	return s + " hours"
}

// Tooltip returns the hover lines for a task segment.
func Tooltip(seg model.Segment, owner string, base int) []string {
	return []string{
		seg.Name,
		"Person: " + owner,
		"Time: " + FormatHourOffset(base, seg.Start) + " - " + FormatHourOffset(base, seg.Start+seg.Duration),
		"Duration: " + FormatHours(roundHours(seg.Duration)),
	}
}

// roundHours trims floating noise from hour arithmetic (e.g. 0.49999999).
func roundHours(h float64) float64 {
	return math.Round(h*1e6) / 1e6
}
