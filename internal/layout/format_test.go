package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"schedview/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want Band
	}{
		{"Travel to airport", BandTravel},
		{"Pickup child", BandPickup},
		{"school DROPOFF", BandPickup},
		{"Team meeting", BandDefault},
		{"travel then pickup", BandTravel},
		{"", BandDefault},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.name))
		})
	}
}

func TestPaletteColors(t *testing.T) {
	cal := CalendarPalette()
	require.Equal(t, "#94a3b8", cal.ColorFor(model.Task{Name: "Travel to airport"}))
	require.Equal(t, "#f59e0b", cal.ColorFor(model.Task{Name: "Pickup child"}))
	require.Equal(t, "#3b82f6", cal.ColorFor(model.Task{Name: "Team meeting"}))
	require.Equal(t, "#8884d8", TimelinePalette().ColorFor(model.Task{Name: "Team meeting"}))
	require.Equal(t, "#123456", cal.ColorFor(model.Task{Name: "Travel", Color: "#123456"}))
	require.Equal(t, "travel", BandTravel.String())
	require.Equal(t, "#10b981", cal.ColorFor(model.Task{Name: "Gym", Color: "rgb(16, 185, 129)"}))
	require.Equal(t, "#94a3b8", cal.ColorFor(model.Task{Name: "Travel", Color: "url(x)"}), "rejected override falls back")
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#123456", "#123456", true},
		{" #ABCDEF ", "#abcdef", true},
		{"#fa0", "#ffaa00", true},
		{"rgb(16,185,129)", "#10b981", true},
		{"RGB( 0, 0, 255 )", "#0000ff", true},
		{"Crimson", "crimson", true},
		{"", "", false},
		{"#zzz", "", false},
		{"rgb(300,0,0)", "", false},
		{"rgba(0,0,0,0.5)", "", false},
		{"red;background:url(x)", "", false},
		{"expression(alert(1))", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := NormalizeColor(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[string]time.Time{
		"12:00AM": time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		"9:05AM":  time.Date(2026, 1, 14, 9, 5, 0, 0, time.UTC),
		"12:30PM": time.Date(2026, 1, 14, 12, 30, 0, 0, time.UTC),
		"11:59PM": time.Date(2026, 1, 14, 23, 59, 0, 0, time.UTC),
	}
	for want, in := range cases {
		require.Equal(t, want, FormatClock(in))
	}
}

func TestHourLabel(t *testing.T) {
	require.Equal(t, "8AM", HourLabel(8))
	require.Equal(t, "12PM", HourLabel(12))
	require.Equal(t, "11PM", HourLabel(23))
	require.Equal(t, "12AM", HourLabel(24))
}

func TestDayHeaderAndSpan(t *testing.T) {
	d := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	require.Equal(t, DayHeader{Name: "Wed", Day: 14}, DayHeaderFor(d))
	require.Equal(t, "09:00-10:00", FormatSpan(d.Add(9*time.Hour), d.Add(10*time.Hour)))
}

func TestTickLabels(t *testing.T) {
	require.Equal(t,
		[]string{"8:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00", "22:00", "24:00"},
		TickLabels(8, 16, 2))
	require.Len(t, TickLabels(5, 19, 1), 20)
	require.Nil(t, TickLabels(5, 19, 0))
}

func TestTooltip(t *testing.T) {
	seg := model.Segment{Name: "Code Review", Start: 4.5, Duration: 1.5}
	require.Equal(t, []string{
		"Code Review",
		"Person: Taylor",
		"Time: 9:30 - 11:00",
		"Duration: 1.5 hours",
	}, Tooltip(seg, "Taylor", 5))
	require.Equal(t, "1 hour", FormatHours(1))
}
