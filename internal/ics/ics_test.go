package ics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// family calendar: a weekday school run Mon-Fri with one cancelled day and
// one moved instance, plus a one-off flight and an all-day holiday.
var familyICS = strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//schedview//test//EN
X-WR-CALNAME:Family
BEGIN:VEVENT
UID:school-run
DTSTAMP:20260101T000000Z
DTSTART:20260112T073000Z
DTEND:20260112T080000Z
SUMMARY:School dropoff
ORGANIZER;CN=Jordan:mailto:jordan@example.com
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20260114T073000Z
END:VEVENT
BEGIN:VEVENT
UID:school-run
DTSTAMP:20260101T000000Z
RECURRENCE-ID:20260115T073000Z
DTSTART:20260115T080000Z
DTEND:20260115T083000Z
SUMMARY:School dropoff (late start)
ORGANIZER;CN=Jordan:mailto:jordan@example.com
END:VEVENT
BEGIN:VEVENT
UID:flight-1
DTSTAMP:20260101T000000Z
DTSTART:20260113T060000Z
DTEND:20260113T090000Z
SUMMARY:Travel to Osaka
LOCATION:HND
COLOR:crimson
X-SCHEDVIEW-OWNER:Alex
END:VEVENT
BEGIN:VEVENT
UID:holiday
DTSTAMP:20260101T000000Z
DTSTART;VALUE=DATE:20260112
DTEND;VALUE=DATE:20260113
SUMMARY:Coming of Age Day
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

func weekRange() ExpandConfig {
	return ExpandConfig{
		RangeStart: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "family"}, []byte(familyICS))
	require.NoError(t, err)
	require.Len(t, events, 4)

	byUID := map[string][]ParsedEvent{}
	for _, ev := range events {
		byUID[ev.UID] = append(byUID[ev.UID], ev)
	}

	run := byUID["school-run"]
	require.Len(t, run, 2)
	require.Equal(t, "Jordan", run[0].Owner)
	require.Equal(t, "FREQ=DAILY;COUNT=5", run[0].RawRRule)
	require.Len(t, run[0].ExDates, 1)
	require.True(t, run[1].IsOverride)

	flight := byUID["flight-1"][0]
	require.Equal(t, "Alex", flight.Owner)
	require.Equal(t, "crimson", flight.Color)
	require.Equal(t, "HND", flight.Location)

	holiday := byUID["holiday"][0]
	require.True(t, holiday.AllDay)
	require.Equal(t, "Family", holiday.Owner, "calendar name is the owner fallback")
}

func TestParseICSRejectsEmpty(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	require.Error(t, err)
}

func TestExpandOccurrences(t *testing.T) {
	events, err := ParseICS(Source{ID: "family"}, []byte(familyICS))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, weekRange())
	require.NoError(t, err)
	require.Empty(t, res.Truncated)

	var runs []Occurrence
	for _, o := range res.Occurrences {
		if o.UID == "school-run" {
			runs = append(runs, o)
		}
	}
	// 5 instances, one excluded.
	require.Len(t, runs, 4)
	require.Equal(t, time.Date(2026, 1, 12, 7, 30, 0, 0, time.UTC), runs[0].Start)
	require.Equal(t, time.Date(2026, 1, 13, 7, 30, 0, 0, time.UTC), runs[1].Start)
	require.Equal(t, "School dropoff (late start)", runs[2].Summary)
	require.Equal(t, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), runs[2].Start)
	require.Equal(t, time.Date(2026, 1, 16, 7, 30, 0, 0, time.UTC), runs[3].Start)

	for i := 1; i < len(res.Occurrences); i++ {
		require.False(t, res.Occurrences[i].Start.Before(res.Occurrences[i-1].Start))
	}
}

func TestExpandOccurrencesRange(t *testing.T) {
	events, err := ParseICS(Source{ID: "family"}, []byte(familyICS))
	require.NoError(t, err)

	cfg := ExpandConfig{
		RangeStart: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
	}
	res, err := ExpandOccurrences(events, cfg)
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	require.Equal(t, "School dropoff", res.Occurrences[0].Summary)

	_, err = ExpandOccurrences(events, ExpandConfig{RangeStart: cfg.RangeEnd, RangeEnd: cfg.RangeStart})
	require.Error(t, err)
}

func TestExpandOccurrencesCap(t *testing.T) {
	events, err := ParseICS(Source{ID: "family"}, []byte(familyICS))
	require.NoError(t, err)

	cfg := weekRange()
	cfg.MaxOccurrences = 2
	res, err := ExpandOccurrences(events, cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"school-run"}, res.Truncated)
}

func TestTasks(t *testing.T) {
	events, err := ParseICS(Source{ID: "family"}, []byte(familyICS))
	require.NoError(t, err)
	res, err := ExpandOccurrences(events, weekRange())
	require.NoError(t, err)

	tasks := Tasks(res.Occurrences, "Me")
	require.Len(t, tasks, 5, "all-day holiday is dropped")
	for _, task := range tasks {
		require.NotEqual(t, "Coming of Age Day", task.Name)
		require.Equal(t, time.UTC, task.Start.Location())
	}

	flight := tasks[1]
	require.Equal(t, "Travel to Osaka", flight.Name)
	require.Equal(t, "Alex", flight.Owner)
	require.Equal(t, "crimson", flight.Color)
	require.Equal(t, 3*time.Hour, flight.Duration())
}

func TestTasksOwnerFallback(t *testing.T) {
	occs := []Occurrence{
		{SourceID: "work", Summary: "a"},
		{Summary: "b"},
	}
	tasks := Tasks(occs, "Me")
	require.Equal(t, "work", tasks[0].Owner)
	require.Equal(t, "Me", tasks[1].Owner)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.ics")
	require.NoError(t, os.WriteFile(path, []byte(familyICS), 0o600))

	tasks, err := LoadFile(path, weekRange(), "Me")
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	_, err = LoadFile(filepath.Join(dir, "missing.ics"), weekRange(), "Me")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Equal(t, Source{ID: "family", Path: path}, SourceFor(path))
}
