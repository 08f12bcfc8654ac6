package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"schedview/internal/layout"
)

// CalendarConfig controls the week grid.
type CalendarConfig struct {
	// DayStartHour is the clock hour (UTC) of the first grid row.
	DayStartHour int `yaml:"day_start_hour" json:"day_start_hour"`
	// UnitHeight is the pixel height of one hour.
	UnitHeight float64 `yaml:"unit_height" json:"unit_height"`
	// HourRows is the number of hour rows drawn per day.
	HourRows int `yaml:"hour_rows" json:"hour_rows"`
	// MaxOffset is the largest task offset still drawn.
	MaxOffset float64 `yaml:"max_offset" json:"max_offset"`
}

// TimelineConfig controls the per-person Gantt chart.
type TimelineConfig struct {
	StartHour     int     `yaml:"start_hour" json:"start_hour"`
	WindowHours   float64 `yaml:"window_hours" json:"window_hours"`
	PlotWidth     float64 `yaml:"plot_width" json:"plot_width"`
	MinLabelWidth float64 `yaml:"min_label_width" json:"min_label_width"`
	CharWidth     float64 `yaml:"char_width" json:"char_width"`
	GapEpsilon    float64 `yaml:"gap_epsilon" json:"gap_epsilon"`
}

// ColorConfig holds the band colors. CalendarDefault and TimelineDefault are
// the accent of unclassified tasks in each view.
type ColorConfig struct {
	Travel          string `yaml:"travel" json:"travel"`
	Pickup          string `yaml:"pickup" json:"pickup"`
	CalendarDefault string `yaml:"calendar_default" json:"calendar_default"`
	TimelineDefault string `yaml:"timeline_default" json:"timeline_default"`
}

// CaptureConfig describes the headless browser snapshot.
type CaptureConfig struct {
	Width      int `yaml:"width" json:"width"`
	Height     int `yaml:"height" json:"height"`
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`
}

// PanelConfig is the geometry of a tri-color e-paper panel that packed
// planes are produced for.
type PanelConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// WeekStart controls which weekday is treated as the first day of the
	// week in calendar views. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// DefaultOwner labels tasks that carry no person/owner.
	DefaultOwner string `yaml:"default_owner" json:"default_owner"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used by the watch command.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Tasks and ICS list local input files.
	Tasks []string `yaml:"tasks" json:"tasks"`
	ICS   []string `yaml:"ics" json:"ics"`

	// OutputDir is where render artifacts are written.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Timeline TimelineConfig `yaml:"timeline" json:"timeline"`
	Colors   ColorConfig    `yaml:"colors" json:"colors"`
	Capture  CaptureConfig  `yaml:"capture" json:"capture"`
	Panel    PanelConfig    `yaml:"panel" json:"panel"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cal := layout.CalendarPalette()
	tl := layout.TimelinePalette()
	return &Config{
		WeekStart:    "sunday",
		DefaultOwner: layout.DefaultOwner,
		RefreshCron:  "*/15 * * * *",
		Tasks:        []string{},
		ICS:          []string{},
		OutputDir:    "./out",
		LogLevel:     "info",
		Calendar: CalendarConfig{
			DayStartHour: layout.DefaultDayStartHour,
			UnitHeight:   layout.DefaultUnitHeight,
			HourRows:     layout.DefaultHourRows,
			MaxOffset:    layout.DefaultCeiling,
		},
		Timeline: TimelineConfig{
			StartHour:     layout.DefaultTimelineStartHour,
			WindowHours:   layout.DefaultWindowHours,
			PlotWidth:     layout.DefaultPlotWidth,
			MinLabelWidth: layout.DefaultMinLabelWidth,
			CharWidth:     layout.DefaultCharWidth,
			GapEpsilon:    layout.DefaultGapEpsilon,
		},
		Colors: ColorConfig{
			Travel:          cal.Travel,
			Pickup:          cal.Pickup,
			CalendarDefault: cal.Default,
			TimelineDefault: tl.Default,
		},
		Capture: CaptureConfig{Width: 1304, Height: 984, TimeoutSec: 30},
		Panel:   PanelConfig{Width: 1304, Height: 984},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()

	switch c.WeekStart {
	case "sunday", "monday":
		// ok
	default:
		// Unknown or empty; fall back to sunday.
		c.WeekStart = d.WeekStart
	}
	if c.DefaultOwner == "" {
		c.DefaultOwner = d.DefaultOwner
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.Tasks == nil {
		c.Tasks = []string{}
	}
	if c.ICS == nil {
		c.ICS = []string{}
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}

	if c.Calendar.DayStartHour < 0 || c.Calendar.DayStartHour > 23 {
		c.Calendar.DayStartHour = d.Calendar.DayStartHour
	}
	if c.Calendar.UnitHeight <= 0 {
		c.Calendar.UnitHeight = d.Calendar.UnitHeight
	}
	if c.Calendar.HourRows <= 0 {
		c.Calendar.HourRows = d.Calendar.HourRows
	}
	if c.Calendar.MaxOffset <= 0 {
		c.Calendar.MaxOffset = d.Calendar.MaxOffset
	}

	// A zero start hour is a valid midnight window, so only range-check it.
	if c.Timeline.StartHour < 0 || c.Timeline.StartHour > 23 {
		c.Timeline.StartHour = d.Timeline.StartHour
	}
	if c.Timeline.WindowHours <= 0 {
		c.Timeline.WindowHours = d.Timeline.WindowHours
	}
	if c.Timeline.PlotWidth <= 0 {
		c.Timeline.PlotWidth = d.Timeline.PlotWidth
	}
	if c.Timeline.MinLabelWidth <= 0 {
		c.Timeline.MinLabelWidth = d.Timeline.MinLabelWidth
	}
	if c.Timeline.CharWidth <= 0 {
		c.Timeline.CharWidth = d.Timeline.CharWidth
	}
	if c.Timeline.GapEpsilon <= 0 {
		c.Timeline.GapEpsilon = d.Timeline.GapEpsilon
	}

	if c.Colors.Travel == "" {
		c.Colors.Travel = d.Colors.Travel
	}
	if c.Colors.Pickup == "" {
		c.Colors.Pickup = d.Colors.Pickup
	}
	if c.Colors.CalendarDefault == "" {
		c.Colors.CalendarDefault = d.Colors.CalendarDefault
	}
	if c.Colors.TimelineDefault == "" {
		c.Colors.TimelineDefault = d.Colors.TimelineDefault
	}

	if c.Capture.Width <= 0 {
		c.Capture.Width = d.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = d.Capture.Height
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = d.Capture.TimeoutSec
	}
	if c.Panel.Width <= 0 || c.Panel.Width%8 != 0 {
		c.Panel.Width = d.Panel.Width
	}
	if c.Panel.Height <= 0 {
		c.Panel.Height = d.Panel.Height
	}
}

// FirstWeekday maps WeekStart to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// CalendarOptions builds layout options for a calendar pass.
func (c *Config) CalendarOptions(today time.Time, offset int) layout.CalendarOptions {
	return layout.CalendarOptions{
		Today:    today,
		Offset:   offset,
		FirstDay: c.FirstWeekday(),
		Positioner: layout.Positioner{
			DayStartHour: c.Calendar.DayStartHour,
			UnitHeight:   c.Calendar.UnitHeight,
			Ceiling:      c.Calendar.MaxOffset,
			HourRows:     c.Calendar.HourRows,
		},
		Palette: layout.Palette{
			Travel:  c.Colors.Travel,
			Pickup:  c.Colors.Pickup,
			Default: c.Colors.CalendarDefault,
		},
	}
}

// TimelineOptions builds layout options for a Gantt pass.
func (c *Config) TimelineOptions() layout.TimelineOptions {
	return layout.TimelineOptions{
		StartHour:     c.Timeline.StartHour,
		WindowHours:   c.Timeline.WindowHours,
		PlotWidth:     c.Timeline.PlotWidth,
		MinLabelWidth: c.Timeline.MinLabelWidth,
		CharWidth:     c.Timeline.CharWidth,
		GapEpsilon:    c.Timeline.GapEpsilon,
		DefaultOwner:  c.DefaultOwner,
		Palette: layout.Palette{
			Travel:  c.Colors.Travel,
			Pickup:  c.Colors.Pickup,
			Default: c.Colors.TimelineDefault,
		},
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedview-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
