package chart

import (
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatValue renders a value with thousands separators and two decimals.
func FormatValue(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatTime renders a tick time in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format("Jan 02 15:04")
}

func (l Labels) withDefaults() Labels {
	if l.Value == nil {
		l.Value = FormatValue
	}
	if l.Time == nil {
		l.Time = FormatTime
	}
	return l
}

// yTicks spreads yTickCount ticks evenly over the padded value range, bottom to top.
func (g Geometry) yTicks(labels Labels) []Tick {
	ticks := make([]Tick, yTickCount)
	for i := range ticks {
		v := g.YMin + (g.YMax-g.YMin)*float64(i)/float64(yTickCount-1)
		ticks[i] = Tick{Value: v, Pos: g.scaleY(v), Label: labels.Value(v)}
	}
	return ticks
}

// xTicks spreads min(5, max(2, n)) ticks over the x data range. Labels are times on a
// time axis, otherwise the 1-based ordinal of the point under the tick.
func (g Geometry) xTicks(n int, labels Labels) []Tick {
	count := min(maxXTicks, max(2, n))
	ticks := make([]Tick, count)
	for i := range ticks {
		x := g.XMin + (g.XMax-g.XMin)*float64(i)/float64(count-1)
		var label string
		if g.HasTimeAxis {
			label = labels.Time(time.UnixMilli(int64(math.Round(x))))
		} else {
			ordinal := min(max(int(math.Round(x))+1, 1), n)
			label = strconv.Itoa(ordinal)
		}
		ticks[i] = Tick{Value: x, Pos: g.scaleX(x), Label: label}
	}
	return ticks
}
