package layout

import (
	"sort"

	"schedview/internal/model"
)

const (
	DefaultTimelineStartHour = 5
	DefaultWindowHours       = 19.0
	DefaultPlotWidth         = 640.0
	DefaultMinLabelWidth     = 50.0
	DefaultCharWidth         = 7.0
	DefaultGapEpsilon        = 0.01
	DefaultOwner             = "Me"

	ellipsis = "…"
)

// TimelineOptions are the view parameters of a Gantt pass.
type TimelineOptions struct {
	// StartHour is the clock hour (UTC) at which the window begins.
	StartHour int
	// WindowHours is the window length; 19 reaches midnight from 05:00.
	WindowHours float64
	// PlotWidth is the rendered pixel width of the full window.
	PlotWidth float64
	// MinLabelWidth is the narrowest segment, in pixels, that shows a label.
	MinLabelWidth float64
	// CharWidth is the average rendered character width in pixels.
	CharWidth float64
	// GapEpsilon is the smallest unused interval, in hours, emitted as a gap.
	GapEpsilon float64
	// DefaultOwner labels tasks without an owner.
	DefaultOwner string
	Palette      Palette
}

func DefaultTimelineOptions() TimelineOptions {
	return TimelineOptions{
		StartHour:     DefaultTimelineStartHour,
		WindowHours:   DefaultWindowHours,
		PlotWidth:     DefaultPlotWidth,
		MinLabelWidth: DefaultMinLabelWidth,
		CharWidth:     DefaultCharWidth,
		GapEpsilon:    DefaultGapEpsilon,
		DefaultOwner:  DefaultOwner,
		Palette:       TimelinePalette(),
	}
}

// withDefaults replaces unusable zero values so a partially filled options
// struct never divides by zero.
func (o TimelineOptions) withDefaults() TimelineOptions {
	d := DefaultTimelineOptions()
	if o.WindowHours <= 0 {
		o.WindowHours = d.WindowHours
	}
	if o.PlotWidth <= 0 {
		o.PlotWidth = d.PlotWidth
	}
	if o.CharWidth <= 0 {
		o.CharWidth = d.CharWidth
	}
	if o.GapEpsilon < 0 {
		o.GapEpsilon = 0
	}
	if o.DefaultOwner == "" {
		o.DefaultOwner = d.DefaultOwner
	}
	if o.Palette == (Palette{}) {
		o.Palette = d.Palette
	}
	return o
}

// Row is the segment sequence of one owner.
type Row struct {
	Owner    string
	Segments []model.Segment
	// Remainder is the unused time after the last task. It is not emitted
	// as a segment; Length includes it.
	Remainder float64
}

// Length is the total of all segment lengths plus the trailing remainder.
// It always equals the window length.
func (r Row) Length() float64 {
	sum := r.Remainder
	for _, s := range r.Segments {
		sum += s.Length
	}
	return sum
}

// Tasks returns the task segments of the row in order.
func (r Row) Tasks() []model.Segment {
	var out []model.Segment
	for _, s := range r.Segments {
		if !s.IsGap {
			out = append(out, s)
		}
	}
	return out
}

// TimelineView is the output of a Gantt pass.
type TimelineView struct {
	Empty  bool
	Owners []string
	Rows   map[string]Row
	// Columns is the common segment count of every row after padding.
	Columns     int
	StartHour   int
	WindowHours float64
}

type span struct {
	task     model.Task
	start    float64
	duration float64
}

// Timeline builds one row of alternating gap and task segments per owner.
// Owners appear in order of first occurrence in tasks.
func Timeline(tasks []model.Task, opts TimelineOptions) TimelineView {
	opts = opts.withDefaults()
	view := TimelineView{StartHour: opts.StartHour, WindowHours: opts.WindowHours}
	if len(tasks) == 0 {
		view.Empty = true
		return view
	}

	byOwner := make(map[string][]span)
	for _, t := range tasks {
		owner := t.OwnerOr(opts.DefaultOwner)
		if _, seen := byOwner[owner]; !seen {
			view.Owners = append(view.Owners, owner)
		}
		start, dur := normalizeSpan(t, opts)
		byOwner[owner] = append(byOwner[owner], span{task: t, start: start, duration: dur})
	}

	view.Rows = make(map[string]Row, len(view.Owners))
	for _, owner := range view.Owners {
		row := buildRow(owner, byOwner[owner], opts)
		if len(row.Segments) > view.Columns {
			view.Columns = len(row.Segments)
		}
		view.Rows[owner] = row
	}

	for owner, row := range view.Rows {
		for len(row.Segments) < view.Columns {
			row.Segments = append(row.Segments, model.Segment{IsGap: true})
		}
		view.Rows[owner] = row
	}

	return view
}

// normalizeSpan converts a task to decimal hours relative to the window
// start. Both ends are clamped into [0, window], so start+duration never
// exceeds the window and duration is never negative.
func normalizeSpan(t model.Task, opts TimelineOptions) (start, duration float64) {
	u := t.Start.UTC()
	clock := float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
	raw := clock - float64(opts.StartHour)
	end := raw + t.Duration().Hours()

	start = clampf(raw, 0, opts.WindowHours)
	end = clampf(end, start, opts.WindowHours)
	return start, end - start
}

func buildRow(owner string, spans []span, opts TimelineOptions) Row {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	row := Row{Owner: owner}
	cursor := 0.0
	for _, sp := range spans {
		start := sp.start
		end := start + sp.duration
		if start < cursor {
			// Overlaps the previous task: shift to the cursor and trim.
			start = cursor
			if end < start {
				end = start
			}
		}
		if gap := start - cursor; gap > opts.GapEpsilon {
			row.Segments = append(row.Segments, model.Segment{Length: gap, IsGap: true})
		} else {
			// Too small to draw; the task absorbs it so the row stays exact.
			start = cursor
		}

		dur := end - start
		color := opts.Palette.ColorFor(sp.task)
		row.Segments = append(row.Segments, model.Segment{
			Length:    dur,
			Name:      sp.task.Name,
			Label:     fitLabel(sp.task.Name, dur, opts),
			Start:     start,
			Duration:  dur,
			Color:     color,
			Location:  sp.task.Location,
			TaskStart: sp.task.Start,
			TaskEnd:   sp.task.End,
		})
		cursor = end
	}
	row.Remainder = opts.WindowHours - cursor
	return row
}

// SegmentWidth is the rendered pixel width of a segment of the given length.
func (o TimelineOptions) SegmentWidth(hours float64) float64 {
	o = o.withDefaults()
	return hours / o.WindowHours * o.PlotWidth
}

// fitLabel returns the label for a task segment, or "" when the segment is
// narrower than MinLabelWidth. Names longer than the segment fits are cut and
// end in an ellipsis, which counts toward the fit.
func fitLabel(name string, hours float64, opts TimelineOptions) string {
	width := opts.SegmentWidth(hours)
	if width < opts.MinLabelWidth {
		return ""
	}
	fit := int(width / opts.CharWidth)
	runes := []rune(name)
	if len(runes) <= fit {
		return name
	}
	if fit < 1 {
		return ""
	}
	return string(runes[:fit-1]) + ellipsis
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
