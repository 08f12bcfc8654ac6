package model

import "time"

// EarliestInstant stands in for any start/end value that could not be
// parsed. It is the zero time.Time, which sorts before every real instant.
var EarliestInstant = time.Time{}

// Task is a single scheduled activity as supplied by a task source
// (task file, ICS feed). Layout passes treat it as read-only.
type Task struct {
	Name string

	// Start / End are absolute instants. Layout arithmetic is done in UTC.
	Start time.Time
	End   time.Time

	// Owner is the person or resource the task belongs to (the lane key).
	Owner string

	Location string

	// Color is an explicit CSS color override. Empty means "derive from
	// the task name".
	Color string

	// Invalid records that a loader replaced an unparseable time value
	// with EarliestInstant.
	Invalid bool
}

// Duration returns End-Start, clamped so it is never negative.
func (t Task) Duration() time.Duration {
	d := t.End.Sub(t.Start)
	if d < 0 {
		return 0
	}
	return d
}

// OwnerOr returns the task owner, or def when the owner is blank.
func (t Task) OwnerOr(def string) string {
	if t.Owner == "" {
		return def
	}
	return t.Owner
}

// Segment is one contiguous interval of a timeline row: either a gap with
// no visual content, or the occupied interval of a single task.
type Segment struct {
	// Length is the horizontal extent in hours.
	Length float64
	IsGap  bool

	// The remaining fields are only set on task segments.
	Name string
	// Label is the fitted label text; empty when the segment is too narrow.
	Label    string
	Start    float64 // hours from the row's reference hour
	Duration float64 // hours
	Color    string
	Location string

	TaskStart time.Time
	TaskEnd   time.Time
}
