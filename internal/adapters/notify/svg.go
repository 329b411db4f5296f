package notify

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/alejandrodnm/agentdash/internal/chart"
)

// WriteEquitySVG renders g as a standalone SVG document: gridlines at the y ticks,
// axis labels, the filled area and the smoothed line. An empty geometry renders the
// frame with a "no data" label.
func WriteEquitySVG(w io.Writer, g chart.Geometry, layout chart.Layout, title string) error {
	bw := bufio.NewWriter(w)
	p := g.Plot

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="sans-serif" font-size="11">`+"\n",
		layout.Width, layout.Height, layout.Width, layout.Height)
	if title != "" {
		fmt.Fprintf(bw, "  <title>%s</title>\n", html.EscapeString(title))
	}
	fmt.Fprintf(bw, `  <rect x="0" y="0" width="%.0f" height="%.0f" fill="#0f172a"/>`+"\n", layout.Width, layout.Height)

	if len(g.Coords) == 0 {
		fmt.Fprintf(bw, `  <text x="%.2f" y="%.2f" fill="#94a3b8" text-anchor="middle">no data</text>`+"\n",
			(p.Left+p.Right)/2, (p.Top+p.Bottom)/2)
		fmt.Fprintln(bw, "</svg>")
		return bw.Flush()
	}

	for _, t := range g.YTicks {
		fmt.Fprintf(bw, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#1e293b"/>`+"\n", p.Left, t.Pos, p.Right, t.Pos)
		fmt.Fprintf(bw, `  <text x="%.2f" y="%.2f" fill="#94a3b8" text-anchor="end">%s</text>`+"\n",
			p.Left-6, t.Pos+4, html.EscapeString(t.Label))
	}
	for _, t := range g.XTicks {
		fmt.Fprintf(bw, `  <text x="%.2f" y="%.2f" fill="#94a3b8" text-anchor="middle">%s</text>`+"\n",
			t.Pos, p.Bottom+18, html.EscapeString(t.Label))
	}

	fmt.Fprintf(bw, `  <path d="%s" fill="#22c55e" fill-opacity="0.15" stroke="none"/>`+"\n", g.Area)
	fmt.Fprintf(bw, `  <path d="%s" fill="none" stroke="#22c55e" stroke-width="2"/>`+"\n", g.Path)

	last := g.Coords[len(g.Coords)-1]
	fmt.Fprintf(bw, `  <circle cx="%.2f" cy="%.2f" r="3" fill="#22c55e"/>`+"\n", last.X, last.Y)
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}
