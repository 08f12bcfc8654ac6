package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedview/internal/layout"
	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// Non-standard properties read from VEVENTs and VCALENDARs.
const (
	propOwner   = "X-SCHEDVIEW-OWNER"
	propColor   = "COLOR"
	propCalName = "X-WR-CALNAME"
	propRecurID = "RECURRENCE-ID"
)

// Source identifies one local calendar file.
type Source struct {
	// ID is used in logs and as a fallback owner.
	ID   string
	Path string
}

// ParsedEvent is the normalized form of a VEVENT. Recurrences are kept as
// raw rules and expanded separately.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary  string
	Location string
	Owner    string
	Color    string

	Start  time.Time
	End    time.Time
	AllDay bool
	// BadTime is set when DTSTART or DTEND could not be read.
	BadTime bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, if this VEVENT overrides one instance
	IsOverride bool
}

// ParseICS parses one ICS payload. A VEVENT that cannot be read is logged
// and skipped; the rest are returned.
//
// Owner resolution, first match wins: X-SCHEDVIEW-OWNER, the ORGANIZER's
// CN parameter, the calendar's X-WR-CALNAME. Events with none of these are
// left ownerless for the layout default.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "path", src.Path)
		return nil, err
	}

	calName := ""
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == propCalName {
			calName = strings.TrimSpace(p.Value)
		}
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID)
			continue
		}
		if ev.Owner == "" {
			ev.Owner = calName
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	out.Summary = propValue(ve, ical.ComponentPropertySummary)
	out.Location = propValue(ve, ical.ComponentPropertyLocation)
	if c := propValue(ve, propColor); c != "" {
		var ok bool
		if out.Color, ok = layout.NormalizeColor(c); !ok {
			appLog.Debug("ics color ignored", "uid", out.UID, "color", c)
		}
	}
	out.Owner = propValue(ve, propOwner)
	if out.Owner == "" {
		if org := ve.GetProperty(ical.ComponentPropertyOrganizer); org != nil {
			if cn, ok := org.ICalParameters["CN"]; ok && len(cn) > 0 {
				out.Owner = strings.Trim(cn[0], `"`)
			}
		}
	}

	start, serr := ve.GetStartAt()
	end, eerr := ve.GetEndAt()
	if serr != nil {
		start = model.EarliestInstant
		out.BadTime = true
	}
	if eerr != nil {
		// No DTEND: a zero-length marker at DTSTART.
		end = start
		if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
			out.BadTime = true
		}
	}
	out.Start = start
	out.End = end

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(dtStart.Value, "T") {
			out.AllDay = true
		}
	}

	if rr := ve.GetProperty(ical.ComponentPropertyRrule); rr != nil {
		out.RawRRule = rr.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(propRecurID); rid != nil {
		if t, err := parseICSTime(rid.Value); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// parseICSTime parses a bare DATE or DATE-TIME value as used by EXDATE and
// RECURRENCE-ID. Floating values are read as UTC, matching how layout
// treats all instants.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.UTC)
	default:
		return time.ParseInLocation("20060102", v, time.UTC)
	}
}
