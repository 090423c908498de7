// Package svg draws the small dependency-free charts embedded in the dashboard.
package svg

// Series is one named sequence of values.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// Slice is one wedge of a pie chart.
type Slice struct {
	Label string
	Value float64
	Color string
}

// ChartOpts customises every renderer.
type ChartOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	ShowDots    bool
	// RotateLabels tilts x-axis labels, for long order numbers.
	RotateLabels bool
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 40.0
	DefaultTicks   = 5
)

var palette = []string{"#16a34a", "#2563eb", "#eab308", "#dc2626", "#7c3aed", "#0891b2"}

func (o ChartOpts) normalised() ChartOpts {
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.TickCount <= 0 {
		o.TickCount = DefaultTicks
	}
	o.AxisColor = fallback(o.AxisColor, "#475569")
	o.GridColor = fallback(o.GridColor, "#cbd5e1")
	return o
}

func colorAt(i int, preferred string) string {
	return fallback(preferred, palette[i%len(palette)])
}
