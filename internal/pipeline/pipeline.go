// Package pipeline runs one schedule pass: load task sources, lay out the
// week grid and the day timeline, and write render artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"schedview/internal/capture"
	"schedview/internal/config"
	"schedview/internal/convert"
	"schedview/internal/ics"
	"schedview/internal/layout"
	appLog "schedview/internal/log"
	"schedview/internal/model"
	"schedview/internal/render"
	"schedview/internal/taskfile"
)

// Inputs lists the local task sources of a pass.
type Inputs struct {
	Tasks []string
	ICS   []string
}

// InputsFrom returns the sources configured in cfg.
func InputsFrom(cfg *config.Config) Inputs {
	return Inputs{Tasks: cfg.Tasks, ICS: cfg.ICS}
}

// Empty reports whether no source is configured.
func (in Inputs) Empty() bool {
	return len(in.Tasks) == 0 && len(in.ICS) == 0
}

// Range is the instant window a pass needs tasks for. Recurring ICS events
// are expanded only inside it.
type Range struct {
	Start time.Time
	End   time.Time
}

// RangeFor covers the week at offset and the day of today, which differ when
// offset is non-zero.
func RangeFor(today time.Time, offset int, first time.Weekday) Range {
	week := layout.WeekStart(today, offset, first)
	weekEnd := week.AddDate(0, 0, layout.DaysPerWeek)
	u := today.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := day.AddDate(0, 0, 1)

	r := Range{Start: week, End: weekEnd}
	if day.Before(r.Start) {
		r.Start = day
	}
	if dayEnd.After(r.End) {
		r.End = dayEnd
	}
	return r
}

// LoadTasks reads every source. A failing source is logged and skipped; the
// tasks of the others are returned together with the joined error.
func LoadTasks(in Inputs, r Range, defaultOwner string) ([]model.Task, error) {
	var (
		tasks []model.Task
		errs  []error
	)
	for _, path := range in.Tasks {
		ts, err := taskfile.LoadFile(path, defaultOwner)
		if err != nil {
			appLog.Error("task source failed", err, "path", path)
			errs = append(errs, err)
			continue
		}
		tasks = append(tasks, ts...)
	}
	for _, path := range in.ICS {
		ts, err := ics.LoadFile(path, ics.ExpandConfig{RangeStart: r.Start, RangeEnd: r.End}, defaultOwner)
		if err != nil {
			appLog.Error("ics source failed", err, "path", path)
			errs = append(errs, err)
			continue
		}
		tasks = append(tasks, ts...)
	}
	return tasks, errors.Join(errs...)
}

// Options control which artifacts a pass writes.
type Options struct {
	Today  time.Time
	Offset int
	OutDir string
	// PNG captures both HTML pages with headless Chromium.
	PNG bool
	// Planes packs the captured PNGs into e-paper planes. Implies PNG.
	Planes bool
}

// Views holds the two layouts of a pass.
type Views struct {
	Calendar layout.CalendarView
	Timeline layout.TimelineView
}

// Layout builds both views. The timeline shows only the tasks of Today.
func Layout(cfg *config.Config, tasks []model.Task, today time.Time, offset int) Views {
	return Views{
		Calendar: layout.Calendar(tasks, cfg.CalendarOptions(today, offset)),
		Timeline: layout.Timeline(layout.TasksOn(tasks, today), cfg.TimelineOptions()),
	}
}

// Result lists the files a pass wrote.
type Result struct {
	Files []string
}

// Run loads all configured sources and writes the artifacts of one pass.
// A source failure does not stop the pass; it is returned after rendering.
func Run(ctx context.Context, cfg *config.Config, in Inputs, opts Options) (Result, error) {
	r := RangeFor(opts.Today, opts.Offset, cfg.FirstWeekday())
	tasks, loadErr := LoadTasks(in, r, cfg.DefaultOwner)

	res, err := Write(ctx, cfg, Layout(cfg, tasks, opts.Today, opts.Offset), opts)
	if err != nil {
		return res, err
	}
	appLog.Info("render pass completed",
		"task_count", len(tasks),
		"files", len(res.Files),
		"out_dir", opts.OutDir,
	)
	return res, loadErr
}

// Write renders views into opts.OutDir.
func Write(ctx context.Context, cfg *config.Config, v Views, opts Options) (Result, error) {
	var res Result
	if opts.OutDir == "" {
		return res, errors.New("pipeline: output directory is empty")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return res, fmt.Errorf("pipeline: %w", err)
	}

	page := render.DefaultPageOptions()
	page.Width = cfg.Capture.Width

	steps := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"calendar.json", func(f *os.File) error { return render.WriteJSON(f, render.CalendarJSON(v.Calendar)) }},
		{"timeline.json", func(f *os.File) error { return render.WriteJSON(f, render.TimelineJSON(v.Timeline)) }},
		{"calendar.html", func(f *os.File) error {
			return render.CalendarHTML(f, v.Calendar, cfg.Calendar.UnitHeight, page)
		}},
		{"timeline.html", func(f *os.File) error {
			return render.TimelineHTML(f, v.Timeline, cfg.Timeline.PlotWidth, page)
		}},
	}
	for _, s := range steps {
		path := filepath.Join(opts.OutDir, s.name)
		if err := writeFile(path, s.write); err != nil {
			return res, err
		}
		res.Files = append(res.Files, path)
	}

	if !opts.PNG && !opts.Planes {
		return res, nil
	}

	panel := convert.Panel{Width: cfg.Panel.Width, Height: cfg.Panel.Height}
	for _, name := range []string{"calendar", "timeline"} {
		pngPath := filepath.Join(opts.OutDir, name+".png")
		err := capture.CapturePNG(ctx, capture.CaptureOptions{
			HTMLPath:   filepath.Join(opts.OutDir, name+".html"),
			OutputPath: pngPath,
			Width:      cfg.Capture.Width,
			Height:     cfg.Capture.Height,
			Timeout:    time.Duration(cfg.Capture.TimeoutSec) * time.Second,
		})
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, pngPath)

		if !opts.Planes {
			continue
		}
		img, err := convert.DecodePNG(pngPath)
		if err != nil {
			return res, err
		}
		black, red, err := convert.PackNRGBA(img, panel)
		if err != nil {
			return res, fmt.Errorf("pipeline: %s: %w", name, err)
		}
		if err := convert.WritePlanes(opts.OutDir, name, black, red); err != nil {
			return res, err
		}
		res.Files = append(res.Files,
			filepath.Join(opts.OutDir, name+".black.bin"),
			filepath.Join(opts.OutDir, name+".red.bin"))
	}
	return res, nil
}

// writeFile writes through a temp file so readers never see a partial
// artifact.
func writeFile(path string, fill func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".schedview-*.tmp")
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := fill(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("pipeline: write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
