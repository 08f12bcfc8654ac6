// Package taskfile loads task lists exported by the scheduling backend.
//
// A file holds either a bare list of task records or an object with a
// "tasks" list (a saved schedule). Field names follow the backend:
// task_name/taskName/name, start_lb/start, end_lb/end,
// person/owner/resource_name, location, color.
package taskfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"schedview/internal/layout"
	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// Format is the encoding of a task file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension; anything but .yaml/.yml
// is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// rawTime keeps the textual form of a time field. Non-string JSON values
// (numbers, null) are kept as their literal text and later fail to parse.
type rawTime string

func (r *rawTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = rawTime(s)
		return nil
	}
	*r = rawTime(bytes.TrimSpace(b))
	return nil
}

func (r *rawTime) UnmarshalYAML(n *yaml.Node) error {
	*r = rawTime(n.Value)
	return nil
}

type record struct {
	TaskName    string `json:"task_name" yaml:"task_name"`
	TaskNameAlt string `json:"taskName" yaml:"taskName"`
	Name        string `json:"name" yaml:"name"`

	StartLB rawTime `json:"start_lb" yaml:"start_lb"`
	Start   rawTime `json:"start" yaml:"start"`
	EndLB   rawTime `json:"end_lb" yaml:"end_lb"`
	End     rawTime `json:"end" yaml:"end"`

	Person       string `json:"person" yaml:"person"`
	Owner        string `json:"owner" yaml:"owner"`
	ResourceName string `json:"resource_name" yaml:"resource_name"`

	Location string `json:"location" yaml:"location"`
	Color    string `json:"color" yaml:"color"`
}

type schedule struct {
	Name  string   `json:"name" yaml:"name"`
	Tasks []record `json:"tasks" yaml:"tasks"`
}

// LoadFile reads and decodes a task file.
func LoadFile(path, defaultOwner string) ([]model.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taskfile: read %s: %w", path, err)
	}
	tasks, err := Decode(data, FormatFor(path), defaultOwner)
	if err != nil {
		return nil, fmt.Errorf("taskfile: %s: %w", path, err)
	}
	appLog.Info("task file loaded", "path", path, "task_count", len(tasks))
	return tasks, nil
}

// Decode parses task records. Records with unparseable times are kept,
// with the bad instant replaced by model.EarliestInstant.
func Decode(data []byte, format Format, defaultOwner string) ([]model.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty task file")
	}

	var recs []record
	var err error
	switch format {
	case FormatYAML:
		recs, err = decodeYAML(data)
	default:
		recs, err = decodeJSON(data)
	}
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(recs))
	for i, r := range recs {
		t := r.toTask(defaultOwner)
		if t.Invalid {
			appLog.Debug("task has unparseable time", "index", i, "name", t.Name)
		}
		if t.Color != "" {
			c, ok := layout.NormalizeColor(t.Color)
			if !ok {
				appLog.Debug("task color ignored", "index", i, "name", t.Name, "color", t.Color)
			}
			t.Color = c
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func decodeJSON(data []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '[' {
		var recs []record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var s schedule
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	return s.Tasks, nil
}

func decodeYAML(data []byte) ([]record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var recs []record
		if err := doc.Decode(&recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var s schedule
	if err := doc.Decode(&s); err != nil {
		return nil, err
	}
	return s.Tasks, nil
}

func (r record) toTask(defaultOwner string) model.Task {
	start, okStart := ParseTime(string(firstNonEmpty(r.StartLB, r.Start)))
	end, okEnd := ParseTime(string(firstNonEmpty(r.EndLB, r.End)))

	owner := firstNonEmpty(r.Person, r.Owner, r.ResourceName)
	if owner == "" {
		owner = defaultOwner
	}

	return model.Task{
		Name:     firstNonEmpty(r.TaskName, r.TaskNameAlt, r.Name),
		Start:    start,
		End:      end,
		Owner:    owner,
		Location: r.Location,
		Color:    r.Color,
		Invalid:  !okStart || !okEnd,
	}
}

func firstNonEmpty[T ~string](vals ...T) T {
	for _, v := range vals {
		if strings.TrimSpace(string(v)) != "" {
			return v
		}
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp forms the backend emits (ISO 8601 with or
// without offset, HTTP/GMT dates). Values without a zone are UTC. On failure
// it returns model.EarliestInstant and false.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.EarliestInstant, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return model.EarliestInstant, false
}
