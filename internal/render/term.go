package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"schedview/internal/layout"
)

// TermOptions size the terminal views.
type TermOptions struct {
	// BarWidth is the number of cells the Gantt window spans.
	BarWidth int
	// OwnerWidth is the width of the owner column.
	OwnerWidth int
	TickStep   float64
}

func DefaultTermOptions() TermOptions {
	return TermOptions{BarWidth: 76, OwnerWidth: 10, TickStep: 2}
}

type termStyles struct {
	header lipgloss.Style
	today  lipgloss.Style
	dim    lipgloss.Style
	owner  lipgloss.Style
	r      *lipgloss.Renderer
}

// newTermStyles binds styles to w so color is only emitted when w is a
// terminal.
func newTermStyles(w io.Writer) termStyles {
	r := lipgloss.NewRenderer(w)
	return termStyles{
		header: r.NewStyle().Bold(true),
		today:  r.NewStyle().Bold(true).Reverse(true),
		dim:    r.NewStyle().Faint(true),
		owner:  r.NewStyle().Bold(true),
		r:      r,
	}
}

func (s termStyles) block(color string) lipgloss.Style {
	return s.r.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(lipgloss.Color("#ffffff"))
}

// CalendarText writes the week as a per-day agenda.
func CalendarText(w io.Writer, v layout.CalendarView) error {
	st := newTermStyles(w)
	if v.Empty {
		_, err := fmt.Fprintln(w, st.dim.Render("No tasks scheduled"))
		return err
	}

	var b strings.Builder
	for _, day := range v.Days {
		head := fmt.Sprintf("%s %d  %s", day.Header.Name, day.Header.Day, day.Key)
		if day.IsToday {
			head = st.today.Render(head)
		} else {
			head = st.header.Render(head)
		}
		b.WriteString(head)
		b.WriteByte('\n')

		hidden := len(v.ByDate[day.Key])
		for _, p := range day.Placed {
			if !p.Pinned {
				hidden--
			}
		}
		if len(day.Placed) == 0 && hidden == 0 {
			b.WriteString(st.dim.Render("  -"))
			b.WriteByte('\n')
			continue
		}
		for _, p := range day.Placed {
			swatch := st.block(p.Color).Render(" ")
			line := fmt.Sprintf("  %s %s %s", swatch,
				runewidth.FillLeft(p.TimeLabel, 7),
				layout.FormatSpan(p.Task.Start, p.Task.End))
			b.WriteString(line)
			b.WriteString("  " + p.Task.Name)
			if p.Task.Owner != "" {
				b.WriteString(st.dim.Render(" (" + p.Task.Owner + ")"))
			}
			if p.Task.Location != "" {
				b.WriteString(st.dim.Render(" @ " + p.Task.Location))
			}
			b.WriteByte('\n')
		}
		if hidden > 0 {
			b.WriteString(st.dim.Render(fmt.Sprintf("  +%d outside visible hours", hidden)))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TimelineText writes one stacked bar per owner followed by a tick axis.
// Cell boundaries are rounded from cumulative hours so every bar is exactly
// BarWidth cells wide.
func TimelineText(w io.Writer, v layout.TimelineView, opts TermOptions) error {
	st := newTermStyles(w)
	if v.Empty {
		_, err := fmt.Fprintln(w, st.dim.Render("No tasks to display"))
		return err
	}
	if opts.BarWidth <= 0 || opts.OwnerWidth <= 0 {
		opts = DefaultTermOptions()
	}

	lines := make([]string, 0, len(v.Owners)+1)
	for _, owner := range v.Owners {
		row := v.Rows[owner]
		name := runewidth.FillRight(runewidth.Truncate(owner, opts.OwnerWidth-1, "…"), opts.OwnerWidth)

		var bar strings.Builder
		cum, col := 0.0, 0
		for _, seg := range row.Segments {
			cum += seg.Length
			next := cellAt(cum, v.WindowHours, opts.BarWidth)
			n := next - col
			col = next
			if n <= 0 {
				continue
			}
			if seg.IsGap {
				bar.WriteString(strings.Repeat(" ", n))
				continue
			}
			text := runewidth.FillRight(runewidth.Truncate(seg.Name, n, "…"), n)
			bar.WriteString(st.block(seg.Color).Render(text))
		}
		if rest := opts.BarWidth - col; rest > 0 {
			bar.WriteString(strings.Repeat(" ", rest))
		}
		lines = append(lines, st.owner.Render(name)+"│"+bar.String()+"│")
	}
	lines = append(lines, strings.Repeat(" ", opts.OwnerWidth+1)+axis(v, opts))

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, lines...)+"\n")
	return err
}

func cellAt(hours, window float64, width int) int {
	if window <= 0 {
		return 0
	}
	c := int(math.Round(hours / window * float64(width)))
	if c > width {
		return width
	}
	return c
}

// axis places tick labels at their cell positions; a label that would
// collide with the previous one is dropped.
func axis(v layout.TimelineView, opts TermOptions) string {
	cells := []rune(strings.Repeat(" ", opts.BarWidth+2))
	next := 0
	step := opts.TickStep
	if step <= 0 {
		step = 1
	}
	for i, label := range layout.TickLabels(v.StartHour, v.WindowHours, step) {
		at := cellAt(float64(i)*step, v.WindowHours, opts.BarWidth)
		if at+len(label) > len(cells) {
			at = len(cells) - len(label)
		}
		if at < next {
			continue
		}
		copy(cells[at:], []rune(label))
		next = at + len(label) + 1
	}
	return strings.TrimRight(string(cells), " ")
}
