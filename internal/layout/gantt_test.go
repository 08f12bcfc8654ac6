package layout

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schedview/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 1, 14, hour, minute, 0, 0, time.UTC)
}

func task(name, owner string, start, end time.Time) model.Task {
	return model.Task{Name: name, Owner: owner, Start: start, End: end}
}

func TestTimelineScenarioTwoTasks(t *testing.T) {
	tasks := []model.Task{
		task("09:00-10:00", "A", at(9, 0), at(10, 0)),
		task("11:00-11:30", "A", at(11, 0), at(11, 30)),
	}

	view := Timeline(tasks, DefaultTimelineOptions())
	require.False(t, view.Empty)
	require.Equal(t, []string{"A"}, view.Owners)

	row := view.Rows["A"]
	require.Len(t, row.Segments, 4)

	require.True(t, row.Segments[0].IsGap)
	require.InDelta(t, 4.0, row.Segments[0].Length, 1e-9)

	require.False(t, row.Segments[1].IsGap)
	require.Equal(t, "09:00-10:00", row.Segments[1].Name)
	require.InDelta(t, 4.0, row.Segments[1].Start, 1e-9)
	require.InDelta(t, 1.0, row.Segments[1].Length, 1e-9)

	require.True(t, row.Segments[2].IsGap)
	require.InDelta(t, 1.0, row.Segments[2].Length, 1e-9)

	require.Equal(t, "11:00-11:30", row.Segments[3].Name)
	require.InDelta(t, 0.5, row.Segments[3].Length, 1e-9)

	require.InDelta(t, 12.5, row.Remainder, 1e-9)
	require.InDelta(t, 19.0, row.Length(), 1e-9)
}

func TestTimelineEmpty(t *testing.T) {
	view := Timeline(nil, DefaultTimelineOptions())
	require.True(t, view.Empty)
	require.Empty(t, view.Owners)
	require.Empty(t, view.Rows)
}

func TestTimelinePadsRowsToCommonColumnCount(t *testing.T) {
	tasks := []model.Task{
		task("Standup", "Alex", at(8, 0), at(8, 30)),
		task("Review", "Alex", at(10, 0), at(11, 0)),
		task("Research", "Casey", at(5, 0), at(7, 0)),
	}

	view := Timeline(tasks, DefaultTimelineOptions())
	require.Equal(t, []string{"Alex", "Casey"}, view.Owners)
	require.Equal(t, 4, view.Columns)

	casey := view.Rows["Casey"]
	require.Len(t, casey.Segments, 4)
	require.False(t, casey.Segments[0].IsGap, "task at window start needs no leading gap")
	for _, s := range casey.Segments[1:] {
		require.True(t, s.IsGap)
		require.Zero(t, s.Length)
	}
	require.InDelta(t, 19.0, casey.Length(), 1e-9)
}

func TestTimelineStableOrderForEqualStarts(t *testing.T) {
	tasks := []model.Task{
		task("first", "A", at(9, 0), at(9, 0)),
		task("second", "A", at(9, 0), at(10, 0)),
	}
	row := Timeline(tasks, DefaultTimelineOptions()).Rows["A"]
	names := []string{}
	for _, s := range row.Tasks() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"first", "second"}, names)
}

func TestTimelineSortsByStart(t *testing.T) {
	tasks := []model.Task{
		task("late", "A", at(15, 0), at(16, 0)),
		task("early", "A", at(6, 0), at(7, 0)),
	}
	row := Timeline(tasks, DefaultTimelineOptions()).Rows["A"]
	segs := row.Tasks()
	require.Equal(t, "early", segs[0].Name)
	require.Equal(t, "late", segs[1].Name)
	require.InDelta(t, 19.0, row.Length(), 1e-9)
}

func TestTimelineClampsOutOfWindowTasks(t *testing.T) {
	tasks := []model.Task{
		task("before", "A", at(2, 0), at(6, 0)),
		task("reversed", "A", at(12, 0), at(11, 0)),
		task("past midnight", "A", at(22, 0), at(22, 0).Add(5*time.Hour)),
	}
	row := Timeline(tasks, DefaultTimelineOptions()).Rows["A"]
	segs := row.Tasks()
	require.Len(t, segs, 3)

	require.InDelta(t, 0.0, segs[0].Start, 1e-9)
	require.InDelta(t, 1.0, segs[0].Duration, 1e-9)

	require.InDelta(t, 7.0, segs[1].Start, 1e-9)
	require.Zero(t, segs[1].Duration)

	require.InDelta(t, 17.0, segs[2].Start, 1e-9)
	require.InDelta(t, 2.0, segs[2].Duration, 1e-9)
	require.InDelta(t, 0.0, row.Remainder, 1e-9)
	require.InDelta(t, 19.0, row.Length(), 1e-9)
}

func TestTimelineInvalidTimePinnedToWindowStart(t *testing.T) {
	bad := model.Task{Name: "unparseable", Owner: "A", Start: model.EarliestInstant, End: model.EarliestInstant, Invalid: true}
	row := Timeline([]model.Task{bad}, DefaultTimelineOptions()).Rows["A"]
	segs := row.Tasks()
	require.Len(t, segs, 1)
	require.Zero(t, segs[0].Start)
	require.Zero(t, segs[0].Duration)
	require.False(t, row.Segments[0].IsGap)
}

func TestTimelineOverlapIsShiftedAndTrimmed(t *testing.T) {
	tasks := []model.Task{
		task("long", "A", at(9, 0), at(12, 0)),
		task("inside", "A", at(10, 0), at(11, 0)),
		task("tail", "A", at(11, 0), at(13, 0)),
	}
	row := Timeline(tasks, DefaultTimelineOptions()).Rows["A"]
	segs := row.Tasks()
	require.Len(t, segs, 3)
	require.InDelta(t, 7.0, segs[1].Start, 1e-9)
	require.Zero(t, segs[1].Duration)
	require.InDelta(t, 7.0, segs[2].Start, 1e-9)
	require.InDelta(t, 1.0, segs[2].Duration, 1e-9)
	require.InDelta(t, 19.0, row.Length(), 1e-9)
}

func TestTimelineTinyGapAbsorbed(t *testing.T) {
	tasks := []model.Task{
		task("a", "A", at(9, 0), at(10, 0)),
		// 18 seconds later: 0.005h, under the default epsilon.
		task("b", "A", at(10, 0).Add(18*time.Second), at(11, 0)),
	}
	row := Timeline(tasks, DefaultTimelineOptions()).Rows["A"]
	require.Len(t, row.Segments, 3)
	require.True(t, row.Segments[0].IsGap)
	require.False(t, row.Segments[2].IsGap)
	require.InDelta(t, 5.0, row.Segments[2].Start, 1e-9)
	require.InDelta(t, 19.0, row.Length(), 1e-9)
}

func TestTimelineDefaultOwner(t *testing.T) {
	opts := DefaultTimelineOptions()
	opts.DefaultOwner = "Unassigned"
	view := Timeline([]model.Task{task("solo", "", at(9, 0), at(10, 0))}, opts)
	require.Equal(t, []string{"Unassigned"}, view.Owners)
}

func TestTimelineColors(t *testing.T) {
	tasks := []model.Task{
		task("Travel home", "A", at(6, 0), at(7, 0)),
		task("Dropoff kids", "A", at(7, 0), at(8, 0)),
		task("Deep work", "A", at(8, 0), at(9, 0)),
		{Name: "Travel (override)", Owner: "A", Start: at(9, 0), End: at(10, 0), Color: "#10b981"},
	}
	segs := Timeline(tasks, DefaultTimelineOptions()).Rows["A"].Tasks()
	require.Equal(t, "#94a3b8", segs[0].Color)
	require.Equal(t, "#f59e0b", segs[1].Color)
	require.Equal(t, "#8884d8", segs[2].Color)
	require.Equal(t, "#10b981", segs[3].Color)
}

func TestFitLabel(t *testing.T) {
	opts := DefaultTimelineOptions()
	opts.PlotWidth = 190 // 10 px per hour

	cases := []struct {
		name  string
		hours float64
		want  string
	}{
		{"Team meeting", 4, ""},              // 40 px, under 50
		{"Team meeting", 5, "Team m…"},       // 50 px fits 7 chars
		{"Team meeting", 9, "Team meeting"},  // 90 px fits 12 chars
		{"Планирование", 6, "Планиро…"},      // runes, not bytes
		{"Code Review", 19, "Code Review"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%v", tc.name, tc.hours), func(t *testing.T) {
			require.Equal(t, tc.want, fitLabel(tc.name, tc.hours, opts.withDefaults()))
		})
	}
}

func TestTimelineProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	owners := []string{"Alex", "Jordan", "Sam", ""}
	opts := DefaultTimelineOptions()

	for iter := 0; iter < 200; iter++ {
		var tasks []model.Task
		n := rnd.Intn(12)
		for i := 0; i < n; i++ {
			start := at(0, 0).Add(time.Duration(rnd.Intn(26*60)) * time.Minute)
			end := start.Add(time.Duration(rnd.Intn(8*60)-60) * time.Minute)
			tasks = append(tasks, task(fmt.Sprintf("t%d", i), owners[rnd.Intn(len(owners))], start, end))
		}

		view := Timeline(tasks, opts)
		if n == 0 {
			require.True(t, view.Empty)
			continue
		}
		for _, owner := range view.Owners {
			row := view.Rows[owner]
			require.Len(t, row.Segments, view.Columns)
			require.InDelta(t, opts.WindowHours, row.Length(), 1e-6)
			require.GreaterOrEqual(t, row.Remainder, -1e-9)

			prevEnd, prevStart, prevDur := 0.0, 0.0, 0.0
			for i, s := range row.Tasks() {
				require.GreaterOrEqual(t, s.Duration, 0.0)
				require.LessOrEqual(t, s.Duration, opts.WindowHours)
				require.GreaterOrEqual(t, s.Start, prevEnd-1e-9, "task segments overlap")
				if i > 0 && prevDur > 0 {
					require.Greater(t, s.Start, prevStart)
				}
				prevStart, prevDur = s.Start, s.Duration
				prevEnd = s.Start + s.Duration
			}
		}

		again := Timeline(tasks, opts)
		require.Equal(t, view, again)
	}
}
