package ics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "schedview/internal/log"
	"schedview/internal/model"
)

const defaultMaxOccurrences = 5000

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// RangeStart / RangeEnd is the inclusive window occurrences must touch.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps the instances produced per UID. Zero means
	// defaultMaxOccurrences.
	MaxOccurrences int
}

// Occurrence is one concrete instance of a calendar event, in UTC.
type Occurrence struct {
	SourceID    string
	UID         string
	InstanceKey string

	Summary  string
	Location string
	Owner    string
	Color    string

	Start   time.Time
	End     time.Time
	AllDay  bool
	BadTime bool
}

// ExpandResult holds the expanded occurrences plus the UIDs that hit the cap.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   []string
}

// ExpandOccurrences turns parsed events into concrete occurrences inside
// cfg's range. Recurring events are expanded with their RRULE, EXDATEs are
// removed, and instances with a matching RECURRENCE-ID override are replaced
// by the override. Output is sorted by start, then UID.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var res ExpandResult
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return res, errors.New("expand: range end is before range start")
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}
	cfg.RangeStart = cfg.RangeStart.UTC()
	cfg.RangeEnd = cfg.RangeEnd.UTC()

	bases := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	uids := make([]string, 0)
	for _, ev := range events {
		if ev.IsOverride {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := bases[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		bases[ev.UID] = append(bases[ev.UID], ev)
	}

	for _, uid := range uids {
		capped := false
		for _, ev := range bases[uid] {
			var occs []Occurrence
			if ev.RawRRule == "" {
				occs = expandSingle(ev, overrides[uid], cfg)
			} else {
				var hit bool
				occs, hit = expandRecurring(ev, overrides[uid], cfg)
				capped = capped || hit
			}
			res.Occurrences = append(res.Occurrences, occs...)
		}
		if capped {
			res.Truncated = append(res.Truncated, uid)
			appLog.Error("expand: occurrences truncated", errors.New("max occurrences reached"),
				"uid", uid, "cap", cfg.MaxOccurrences)
		}
	}

	sort.SliceStable(res.Occurrences, func(i, j int) bool {
		a, b := res.Occurrences[i], res.Occurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.UID < b.UID
	})
	return res, nil
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	if o, ok := overrideAt(overrides, ev.Start); ok {
		ev = o
	}
	// Events with unreadable times are kept so they surface in the layout
	// rather than vanishing.
	if !ev.BadTime && !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []Occurrence{occurrenceOf(ev, ev.Start, ev.End)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	loc := ev.Start.Location()
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(loc))
	}

	// Widen the lower bound by the event length so instances that started
	// before the range but are still running are included.
	dur := ev.End.Sub(ev.Start)
	if dur < 0 {
		dur = 0
	}
	starts := set.Between(cfg.RangeStart.Add(-dur).In(loc), cfg.RangeEnd.In(loc), true)

	hit := false
	if len(starts) > cfg.MaxOccurrences {
		starts = starts[:cfg.MaxOccurrences]
		hit = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		e := s.Add(dur)
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
			e = s.AddDate(0, 0, 1)
		}
		inst := ev
		if o, ok := overrideAt(overrides, s); ok {
			inst, s, e = o, o.Start, o.End
		}
		out = append(out, occurrenceOf(inst, s, e))
	}
	return out, hit
}

func overrideAt(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return ParsedEvent{}, false
}

func occurrenceOf(ev ParsedEvent, start, end time.Time) Occurrence {
	start, end = start.UTC(), end.UTC()
	if ev.BadTime {
		start, end = model.EarliestInstant, model.EarliestInstant
	}
	return Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		InstanceKey: ev.UID + "@" + start.Format(time.RFC3339),
		Summary:     ev.Summary,
		Location:    ev.Location,
		Owner:       ev.Owner,
		Color:       ev.Color,
		Start:       start,
		End:         end,
		AllDay:      ev.AllDay,
		BadTime:     ev.BadTime,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// Tasks converts timed occurrences to layout tasks. All-day occurrences
// have no place on an hour grid and are dropped. Owner falls back to the
// source ID, then to defaultOwner.
func Tasks(occs []Occurrence, defaultOwner string) []model.Task {
	out := make([]model.Task, 0, len(occs))
	for _, o := range occs {
		if o.AllDay {
			appLog.Debug("skipping all-day occurrence", "uid", o.UID, "summary", o.Summary)
			continue
		}
		owner := o.Owner
		if owner == "" {
			owner = o.SourceID
		}
		if owner == "" {
			owner = defaultOwner
		}
		out = append(out, model.Task{
			Name:     o.Summary,
			Start:    o.Start,
			End:      o.End,
			Owner:    owner,
			Location: o.Location,
			Color:    o.Color,
			Invalid:  o.BadTime,
		})
	}
	return out
}

// SourceFor derives a Source from a file path; the ID is the base name
// without extension.
func SourceFor(path string) Source {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Source{ID: id, Path: path}
}

// LoadFile reads, parses and expands one local .ics file into tasks.
func LoadFile(path string, cfg ExpandConfig, defaultOwner string) ([]model.Task, error) {
	src := SourceFor(path)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ics: read %s: %w", path, err)
	}
	events, err := ParseICS(src, body)
	if err != nil {
		return nil, fmt.Errorf("ics: parse %s: %w", path, err)
	}
	res, err := ExpandOccurrences(events, cfg)
	if err != nil {
		return nil, err
	}
	tasks := Tasks(res.Occurrences, defaultOwner)
	appLog.Info("ics file loaded", "path", path, "task_count", len(tasks))
	return tasks, nil
}
