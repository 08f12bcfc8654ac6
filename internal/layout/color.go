package layout

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"schedview/internal/model"
)

// Band is the display color class a task falls into.
type Band int

const (
	BandDefault Band = iota
	BandTravel
	BandPickup
)

func (b Band) String() string {
	switch b {
	case BandTravel:
		return "travel"
	case BandPickup:
		return "pickup"
	default:
		return "default"
	}
}

// Classify assigns a band from case-insensitive keyword matches in the task
// name. "travel" takes precedence over "pickup"/"dropoff".
func Classify(name string) Band {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "travel"):
		return BandTravel
	case strings.Contains(n, "pickup"), strings.Contains(n, "dropoff"):
		return BandPickup
	default:
		return BandDefault
	}
}

// Palette maps bands to CSS colors.
type Palette struct {
	Travel  string `yaml:"travel" json:"travel"`
	Pickup  string `yaml:"pickup" json:"pickup"`
	Default string `yaml:"default" json:"default"`
}

// CalendarPalette is the palette used by the week calendar.
func CalendarPalette() Palette {
	return Palette{Travel: "#94a3b8", Pickup: "#f59e0b", Default: "#3b82f6"}
}

// TimelinePalette is the palette used by the Gantt chart. Only the default
// accent differs from the calendar.
func TimelinePalette() Palette {
	p := CalendarPalette()
	p.Default = "#8884d8"
	return p
}

func (p Palette) Band(b Band) string {
	switch b {
	case BandTravel:
		return p.Travel
	case BandPickup:
		return p.Pickup
	default:
		return p.Default
	}
}

// ColorFor returns the task's explicit color if it normalizes, else the
// palette color for its classified band.
func (p Palette) ColorFor(t model.Task) string {
	if c, ok := NormalizeColor(t.Color); ok {
		return c
	}
	return p.Band(Classify(t.Name))
}

// NormalizeColor reduces a color override to a form that is safe in a CSS
// value: lowercase #rrggbb, or a bare color name such as "crimson".
// #rgb and rgb(r,g,b) are converted to #rrggbb. Anything else is rejected.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", false
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	case strings.HasPrefix(s, "rgb("):
		var r, g, b int
		compact := strings.ReplaceAll(s, " ", "")
		if n, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err != nil || n != 3 {
			return "", false
		}
		if !byteRange(r) || !byteRange(g) || !byteRange(b) {
			return "", false
		}
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex(), true
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return "", false
		}
	}
	return s, true
}

func byteRange(v int) bool { return v >= 0 && v <= 255 }
