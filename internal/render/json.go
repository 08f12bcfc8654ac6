// Package render turns layout views into JSON documents, HTML pages and
// terminal text.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"schedview/internal/layout"
	"schedview/internal/model"
)

// taskDTO mirrors the backend task record so JSON output can be fed back in
// as a task file.
type taskDTO struct {
	TaskName string `json:"task_name"`
	StartLB  string `json:"start_lb"`
	EndLB    string `json:"end_lb"`
	Person   string `json:"person,omitempty"`
	Location string `json:"location,omitempty"`
	Color    string `json:"color,omitempty"`
	Invalid  bool   `json:"invalid,omitempty"`
}

type placedDTO struct {
	Name     string  `json:"name"`
	Time     string  `json:"time"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Color    string  `json:"color"`
	Location string  `json:"location,omitempty"`
	Pinned   bool    `json:"pinned,omitempty"`
}

type dayDTO struct {
	Date    string      `json:"date"`
	Name    string      `json:"name"`
	Day     int         `json:"day"`
	IsToday bool        `json:"isToday"`
	Tasks   []placedDTO `json:"tasks"`
}

// CalendarDoc is the JSON shape of a calendar pass.
type CalendarDoc struct {
	Empty      bool                 `json:"empty"`
	Offset     int                  `json:"offset"`
	WeekDates  []string             `json:"weekDates"`
	ByDate     map[string][]taskDTO `json:"byDate"`
	Days       []dayDTO             `json:"days,omitempty"`
	HourLabels []string             `json:"hourLabels,omitempty"`
	GridHeight float64              `json:"gridHeight,omitempty"`
}

type segmentDTO struct {
	Length   float64 `json:"length"`
	IsGap    bool    `json:"isGap"`
	Name     string  `json:"name,omitempty"`
	Label    string  `json:"label,omitempty"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Color    string  `json:"color,omitempty"`
	Location string  `json:"location,omitempty"`
}

// TimelineDoc is the JSON shape of a Gantt pass.
type TimelineDoc struct {
	Empty       bool                    `json:"empty"`
	StartHour   int                     `json:"startHour"`
	WindowHours float64                 `json:"windowHours"`
	Columns     int                     `json:"columns"`
	Owners      []string                `json:"owners"`
	Rows        map[string][]segmentDTO `json:"rows"`
	Remainders  map[string]float64      `json:"remainders"`
}

func taskToDTO(t model.Task) taskDTO {
	return taskDTO{
		TaskName: t.Name,
		StartLB:  t.Start.UTC().Format(time.RFC3339),
		EndLB:    t.End.UTC().Format(time.RFC3339),
		Person:   t.Owner,
		Location: t.Location,
		Color:    t.Color,
		Invalid:  t.Invalid,
	}
}

// CalendarJSON converts a calendar view into its JSON document.
func CalendarJSON(v layout.CalendarView) CalendarDoc {
	doc := CalendarDoc{
		Empty:  v.Empty,
		Offset: v.Offset,
		ByDate: make(map[string][]taskDTO, len(v.ByDate)),
	}
	for k, tasks := range v.ByDate {
		list := make([]taskDTO, 0, len(tasks))
		for _, t := range tasks {
			list = append(list, taskToDTO(t))
		}
		doc.ByDate[k] = list
	}
	if v.Empty {
		doc.WeekDates = []string{}
		return doc
	}

	doc.WeekDates = make([]string, 0, layout.DaysPerWeek)
	for _, d := range v.WeekDates {
		doc.WeekDates = append(doc.WeekDates, layout.DateKey(d))
	}
	for _, day := range v.Days {
		dd := dayDTO{
			Date:    day.Key,
			Name:    day.Header.Name,
			Day:     day.Header.Day,
			IsToday: day.IsToday,
			Tasks:   make([]placedDTO, 0, len(day.Placed)),
		}
		for _, p := range day.Placed {
			dd.Tasks = append(dd.Tasks, placedDTO{
				Name:     p.Task.Name,
				Time:     p.TimeLabel,
				Top:      p.Top,
				Height:   p.Height,
				Color:    p.Color,
				Location: p.Task.Location,
				Pinned:   p.Pinned,
			})
		}
		doc.Days = append(doc.Days, dd)
	}
	doc.HourLabels = v.HourLabels
	doc.GridHeight = v.GridHeight
	return doc
}

// TimelineJSON converts a Gantt view into its JSON document. Padding
// segments are kept so every row has Columns entries.
func TimelineJSON(v layout.TimelineView) TimelineDoc {
	doc := TimelineDoc{
		Empty:       v.Empty,
		StartHour:   v.StartHour,
		WindowHours: v.WindowHours,
		Columns:     v.Columns,
		Owners:      append([]string{}, v.Owners...),
		Rows:        make(map[string][]segmentDTO, len(v.Rows)),
		Remainders:  make(map[string]float64, len(v.Rows)),
	}
	for owner, row := range v.Rows {
		segs := make([]segmentDTO, 0, len(row.Segments))
		for _, s := range row.Segments {
			segs = append(segs, segmentDTO{
				Length:   s.Length,
				IsGap:    s.IsGap,
				Name:     s.Name,
				Label:    s.Label,
				Start:    s.Start,
				Duration: s.Duration,
				Color:    s.Color,
				Location: s.Location,
			})
		}
		doc.Rows[owner] = segs
		doc.Remainders[owner] = row.Remainder
	}
	return doc
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render: encode json: %w", err)
	}
	return nil
}
