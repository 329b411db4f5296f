// Package chart projects a scalar time series into plot coordinates: value range with
// degenerate-range correction, axis ticks, a smoothed SVG path and nearest-point lookup.
//
// Everything here is a pure function of its inputs; the same series and layout always
// produce the same geometry.
package chart

import (
	"math"
	"time"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

const (
	flatEpsilon   = 1e-9
	flatOffsetPct = 0.015 // synthetic half-band for a flat series, relative to |max|
	flatOffsetMin = 0.5
	padPct        = 0.15 // vertical padding beyond the range
	padMin        = 0.35
	yTickCount    = 5
	maxXTicks     = 5
)

// Point is one input sample. Time is timestamp-like; it may be empty or invalid.
type Point struct {
	Time  string
	Value float64
}

// ChartPoint is a Point projected into plot space.
type ChartPoint struct {
	Index int
	Time  string
	Value float64
	X     float64
	Y     float64
}

// Margins insets the plot rectangle inside the chart.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Layout is the chart size in pixels.
type Layout struct {
	Width   float64
	Height  float64
	Margins Margins
}

// DefaultLayout devuelve el tamaño usado por el dashboard web.
func DefaultLayout() Layout {
	return Layout{
		Width:   720,
		Height:  260,
		Margins: Margins{Top: 16, Right: 16, Bottom: 28, Left: 56},
	}
}

// Rect is the margin-inset plot area.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Tick is one axis tick: Value in data space, Pos in pixel space.
type Tick struct {
	Value float64
	Pos   float64
	Label string
}

// Labels formats tick labels. Nil fields use FormatValue / FormatTime.
type Labels struct {
	Value func(float64) string
	Time  func(time.Time) string
}

// Geometry is everything needed to draw one series.
type Geometry struct {
	Coords      []ChartPoint
	YTicks      []Tick
	XTicks      []Tick
	HasTimeAxis bool
	Path        string // smoothed line, SVG path data
	Area        string // Path closed down to the plot bottom
	Plot        Rect
	YMin, YMax  float64 // padded value range
	XMin, XMax  float64 // x data range (unix millis or index)
}

// Project maps points into the layout. An empty series yields a Geometry with only the
// plot rectangle set.
func Project(points []Point, layout Layout, labels Labels) Geometry {
	labels = labels.withDefaults()
	plot := plotRect(layout)
	g := Geometry{Plot: plot}
	if len(points) == 0 {
		return g
	}

	g.YMin, g.YMax = valueRange(points)

	xs, hasTime := xBasis(points)
	g.HasTimeAxis = hasTime
	g.XMin, g.XMax = xs[0], xs[0]
	for _, x := range xs[1:] {
		g.XMin = math.Min(g.XMin, x)
		g.XMax = math.Max(g.XMax, x)
	}
	if g.XMax-g.XMin < flatEpsilon {
		g.XMax = g.XMin + 1
	}

	g.Coords = make([]ChartPoint, len(points))
	for i, p := range points {
		g.Coords[i] = ChartPoint{
			Index: i,
			Time:  p.Time,
			Value: p.Value,
			X:     g.scaleX(xs[i]),
			Y:     g.scaleY(p.Value),
		}
	}

	g.YTicks = g.yTicks(labels)
	g.XTicks = g.xTicks(len(points), labels)
	g.Path = SmoothPath(g.Coords)
	g.Area = AreaPath(g.Coords, plot.Bottom)
	return g
}

// Nearest returns the coordinate closest to x horizontally.
func (g Geometry) Nearest(x float64) (ChartPoint, bool) {
	i := NearestIndex(g.Coords, x)
	if i < 0 {
		return ChartPoint{}, false
	}
	return g.Coords[i], true
}

// NearestIndex returns the index of the coordinate with the minimum |X - x|.
// Ties go to the lower index; -1 for no coordinates.
func NearestIndex(coords []ChartPoint, x float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range coords {
		if d := math.Abs(c.X - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// FromEquity adapts an equity curve to chart points.
func FromEquity(curve []domain.EquityPoint) []Point {
	out := make([]Point, len(curve))
	for i, p := range curve {
		out[i] = Point{Time: p.Time, Value: p.Equity}
	}
	return out
}

// valueRange returns the padded [min, max]. A collapsed range is first widened by a
// symmetric synthetic offset so a flat series still gets a visible band.
func valueRange(points []Point) (float64, float64) {
	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if math.Abs(hi-lo) < flatEpsilon {
		off := math.Max(math.Abs(hi)*flatOffsetPct, flatOffsetMin)
		lo -= off
		hi += off
	}
	pad := math.Max((hi-lo)*padPct, padMin)
	return lo - pad, hi + pad
}

// xBasis uses unix millis when every point has a valid positive timestamp, else the index.
func xBasis(points []Point) ([]float64, bool) {
	xs := make([]float64, len(points))
	for i, p := range points {
		ms := domain.TimestampMillis(p.Time)
		if ms <= 0 {
			for j := range xs {
				xs[j] = float64(j)
			}
			return xs, false
		}
		xs[i] = float64(ms)
	}
	return xs, true
}

func plotRect(l Layout) Rect {
	r := Rect{
		Left:   l.Margins.Left,
		Top:    l.Margins.Top,
		Right:  l.Width - l.Margins.Right,
		Bottom: l.Height - l.Margins.Bottom,
	}
	if r.Right < r.Left {
		r.Right = r.Left
	}
	if r.Bottom < r.Top {
		r.Bottom = r.Top
	}
	return r
}

func (g Geometry) scaleX(x float64) float64 {
	return g.Plot.Left + (x-g.XMin)/(g.XMax-g.XMin)*(g.Plot.Right-g.Plot.Left)
}

// scaleY is inverted: YMax maps to Plot.Top.
func (g Geometry) scaleY(v float64) float64 {
	return g.Plot.Bottom - (v-g.YMin)/(g.YMax-g.YMin)*(g.Plot.Bottom-g.Plot.Top)
}
