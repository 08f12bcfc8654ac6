package layout

import (
	"time"

	"schedview/internal/model"
)

const (
	DefaultDayStartHour = 8
	DefaultUnitHeight   = 60.0
	DefaultHourRows     = 17
	DefaultCeiling      = 1000.0
)

// Positioner maps task instants to vertical offsets within a day column.
// The column starts at DayStartHour and is UnitHeight units tall per hour.
type Positioner struct {
	DayStartHour int
	UnitHeight   float64
	// Ceiling is the largest offset still rendered.
	Ceiling float64
	// HourRows is the number of hour rows in the grid.
	HourRows int
}

// DefaultPositioner returns the 08:00, 60 units/hour, 17 row layout.
func DefaultPositioner() Positioner {
	return Positioner{
		DayStartHour: DefaultDayStartHour,
		UnitHeight:   DefaultUnitHeight,
		Ceiling:      DefaultCeiling,
		HourRows:     DefaultHourRows,
	}
}

// Placement is a task positioned inside a day column.
type Placement struct {
	Task      model.Task
	Top       float64
	Height    float64
	Color     string
	TimeLabel string
	// Pinned is set for tasks with unparseable times, drawn at the top of
	// the column instead of at their clock offset.
	Pinned bool
}

// Offset returns the vertical offset of start: minutes since the day-start
// hour (UTC clock) / 60 * UnitHeight. Negative before the day start.
func (p Positioner) Offset(start time.Time) float64 {
	u := start.UTC()
	minutes := u.Hour()*60 + u.Minute() - p.DayStartHour*60
	return float64(minutes) / 60 * p.UnitHeight
}

// Height returns (end-start in minutes)/60 * UnitHeight, never negative.
func (p Positioner) Height(start, end time.Time) float64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d.Minutes() / 60 * p.UnitHeight
}

// Place positions t. It reports false when the offset falls before the day
// start or beyond Ceiling; such tasks are not drawn in the column.
func (p Positioner) Place(t model.Task, color string) (Placement, bool) {
	top := p.Offset(t.Start)
	if top < 0 || top > p.Ceiling {
		return Placement{}, false
	}
	return Placement{
		Task:      t,
		Top:       top,
		Height:    p.Height(t.Start, t.End),
		Color:     color,
		TimeLabel: FormatClock(t.Start),
	}, true
}

// Pin positions t at the top of the column, capped at the grid height.
func (p Positioner) Pin(t model.Task, color string) Placement {
	h := p.Height(t.Start, t.End)
	if g := p.GridHeight(); h > g {
		h = g
	}
	return Placement{
		Task:      t,
		Height:    h,
		Color:     color,
		TimeLabel: FormatClock(t.Start),
		Pinned:    true,
	}
}

// GridHeight is the full height of a day column.
func (p Positioner) GridHeight() float64 {
	return float64(p.HourRows) * p.UnitHeight
}

// HourLabels returns one label per grid row starting at DayStartHour.
func (p Positioner) HourLabels() []string {
	out := make([]string, 0, p.HourRows)
	for i := 0; i < p.HourRows; i++ {
		out = append(out, HourLabel(p.DayStartHour+i))
	}
	return out
}
