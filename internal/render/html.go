package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"schedview/internal/layout"
	"schedview/internal/model"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// PageOptions size the HTML pages. Width should match the capture viewport.
type PageOptions struct {
	Title string
	Width int
	// TickStep is the axis label spacing of the timeline, in hours.
	TickStep float64
}

// DefaultPageOptions matches the default capture viewport.
func DefaultPageOptions() PageOptions {
	return PageOptions{Title: "Schedule", Width: 1304, TickStep: 2}
}

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"px":   func(v float64) string { return fmt.Sprintf("%.2fpx", v) },
	"span": func(t model.Task) string { return layout.FormatSpan(t.Start, t.End) },
	"pct": func(length, window float64) string {
		if window <= 0 {
			return "0%"
		}
		return fmt.Sprintf("%.4f%%", length/window*100)
	},
	"tooltip": func(seg model.Segment, owner string, base int) string {
		return strings.Join(layout.Tooltip(seg, owner, base), "\n")
	},
}).ParseFS(templateFS, "templates/*.html.tmpl"))

type calendarPage struct {
	Title      string
	Width      int
	UnitHeight float64
	GridHeight float64
	View       layout.CalendarView
}

type timelinePage struct {
	Title     string
	Width     int
	PlotWidth float64
	View      layout.TimelineView
	Rows      []layout.Row
	Ticks     []string
}

// CalendarHTML writes the week grid page. unitHeight is the pixel height of
// one hour row and must match the positioner the view was built with.
func CalendarHTML(w io.Writer, v layout.CalendarView, unitHeight float64, opts PageOptions) error {
	page := calendarPage{
		Title:      opts.Title,
		Width:      opts.Width,
		UnitHeight: unitHeight,
		GridHeight: v.GridHeight,
		View:       v,
	}
	if err := pages.ExecuteTemplate(w, "calendar.html.tmpl", page); err != nil {
		return fmt.Errorf("render: calendar html: %w", err)
	}
	return nil
}

// TimelineHTML writes the Gantt page. Segment widths are percentages of the
// window so the bar scales with plotWidth.
func TimelineHTML(w io.Writer, v layout.TimelineView, plotWidth float64, opts PageOptions) error {
	page := timelinePage{
		Title:     opts.Title,
		Width:     opts.Width,
		PlotWidth: plotWidth,
		View:      v,
	}
	for _, owner := range v.Owners {
		page.Rows = append(page.Rows, v.Rows[owner])
	}
	if !v.Empty {
		page.Ticks = layout.TickLabels(v.StartHour, v.WindowHours, opts.TickStep)
	}

	if err := pages.ExecuteTemplate(w, "timeline.html.tmpl", page); err != nil {
		return fmt.Errorf("render: timeline html: %w", err)
	}
	return nil
}
