package chart

import (
	"strconv"
	"strings"
)

// SmoothPath builds SVG path data through coords.
//
// Up to two points give a straight segment. From three points on, every interior point
// is a quadratic control point whose target is the midpoint to the next point, and the
// last segment runs straight to the last point. Each curve stays inside the hull of its
// control points, so the line never overshoots the data envelope.
func SmoothPath(coords []ChartPoint) string {
	if len(coords) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("M ")
	writeXY(&sb, coords[0].X, coords[0].Y)

	if len(coords) <= 2 {
		if len(coords) == 2 {
			sb.WriteString(" L ")
			writeXY(&sb, coords[1].X, coords[1].Y)
		}
		return sb.String()
	}

	for i := 1; i < len(coords)-1; i++ {
		cur, next := coords[i], coords[i+1]
		sb.WriteString(" Q ")
		writeXY(&sb, cur.X, cur.Y)
		sb.WriteByte(' ')
		writeXY(&sb, (cur.X+next.X)/2, (cur.Y+next.Y)/2)
	}
	last := coords[len(coords)-1]
	sb.WriteString(" L ")
	writeXY(&sb, last.X, last.Y)
	return sb.String()
}

// AreaPath closes SmoothPath down to baseline for a filled area.
func AreaPath(coords []ChartPoint, baseline float64) string {
	if len(coords) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(SmoothPath(coords))
	sb.WriteString(" L ")
	writeXY(&sb, coords[len(coords)-1].X, baseline)
	sb.WriteString(" L ")
	writeXY(&sb, coords[0].X, baseline)
	sb.WriteString(" Z")
	return sb.String()
}

func writeXY(sb *strings.Builder, x, y float64) {
	sb.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
}
