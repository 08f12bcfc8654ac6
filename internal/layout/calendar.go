package layout

import (
	"time"

	"schedview/internal/model"
)

// DaysPerWeek is the width of the week window.
const DaysPerWeek = 7

// CalendarOptions are the view parameters of a calendar pass.
type CalendarOptions struct {
	// Today anchors the week window and marks the current day. It is passed
	// in rather than read from the clock so passes are reproducible.
	Today time.Time
	// Offset is the signed number of weeks from the current week.
	Offset int
	// FirstDay is the weekday treated as day index 0 of the week.
	FirstDay time.Weekday

	Positioner Positioner
	Palette    Palette
}

// DefaultCalendarOptions returns Sunday-first options with the default
// positioner and calendar palette.
func DefaultCalendarOptions(today time.Time) CalendarOptions {
	return CalendarOptions{
		Today:      today,
		FirstDay:   time.Sunday,
		Positioner: DefaultPositioner(),
		Palette:    CalendarPalette(),
	}
}

// DayColumn is one day of the rendered week.
type DayColumn struct {
	Date    time.Time
	Key     string
	Header  DayHeader
	IsToday bool
	// Placed holds the tasks of this day that fall inside the visible
	// window, in bucket order, followed by any pinned invalid tasks.
	Placed []Placement
}

// CalendarView is the output of a calendar pass.
type CalendarView struct {
	// Empty is set when there were no tasks at all; the grid fields are
	// left zero.
	Empty      bool
	Offset     int
	WeekDates  [DaysPerWeek]time.Time
	ByDate     map[string][]model.Task
	Days       [DaysPerWeek]DayColumn
	HourLabels []string
	GridHeight float64
}

// DateKey is the bucket key of an instant: its UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// GroupByDate buckets tasks by the UTC date of their start. Within a bucket
// tasks keep their input order.
func GroupByDate(tasks []model.Task) map[string][]model.Task {
	out := make(map[string][]model.Task)
	for _, t := range tasks {
		k := DateKey(t.Start)
		out[k] = append(out[k], t)
	}
	return out
}

// TasksOn returns the tasks whose UTC start date equals date's UTC date.
// Invalid tasks are always included so the timeline pins them to its start.
func TasksOn(tasks []model.Task, date time.Time) []model.Task {
	key := DateKey(date)
	var out []model.Task
	for _, t := range tasks {
		if t.Invalid || DateKey(t.Start) == key {
			out = append(out, t)
		}
	}
	return out
}

// WeekStart returns midnight UTC of the first day of the week that contains
// today shifted by offset weeks.
func WeekStart(today time.Time, offset int, first time.Weekday) time.Time {
	u := today.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset*DaysPerWeek)
	back := (int(d.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	return d.AddDate(0, 0, -back)
}

// WeekDates returns the seven consecutive dates starting at WeekStart.
func WeekDates(today time.Time, offset int, first time.Weekday) [DaysPerWeek]time.Time {
	var out [DaysPerWeek]time.Time
	start := WeekStart(today, offset, first)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Next and Prev move the week offset by one week.
func Next(offset int) int { return offset + 1 }
func Prev(offset int) int { return offset - 1 }

// Calendar lays out tasks as a week grid.
func Calendar(tasks []model.Task, opts CalendarOptions) CalendarView {
	if len(tasks) == 0 {
		return CalendarView{Empty: true, Offset: opts.Offset}
	}

	pos := opts.Positioner
	byDate := GroupByDate(tasks)
	todayKey := DateKey(opts.Today)

	view := CalendarView{
		Offset:     opts.Offset,
		WeekDates:  WeekDates(opts.Today, opts.Offset, opts.FirstDay),
		ByDate:     byDate,
		HourLabels: pos.HourLabels(),
		GridHeight: pos.GridHeight(),
	}

	for i, date := range view.WeekDates {
		key := DateKey(date)
		col := DayColumn{
			Date:    date,
			Key:     key,
			Header:  DayHeaderFor(date),
			IsToday: key == todayKey,
		}
		for _, t := range byDate[key] {
			if t.Invalid {
				continue
			}
			if p, ok := pos.Place(t, opts.Palette.ColorFor(t)); ok {
				col.Placed = append(col.Placed, p)
			}
		}
		view.Days[i] = col
	}

	pin := pinColumn(view.Days)
	for _, t := range tasks {
		if t.Invalid {
			view.Days[pin].Placed = append(view.Days[pin].Placed, pos.Pin(t, opts.Palette.ColorFor(t)))
		}
	}

	return view
}

// pinColumn is the column invalid tasks are drawn in: today when the week
// shows it, the first day otherwise.
func pinColumn(days [DaysPerWeek]DayColumn) int {
	for i, d := range days {
		if d.IsToday {
			return i
		}
	}
	return 0
}
