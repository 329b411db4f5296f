package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/agentdash/internal/adapters/notify"
	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/domain"
	"github.com/alejandrodnm/agentdash/internal/view"
)

func makePage() view.Page {
	snap := domain.Snapshot{
		GeneratedAt: "2025-03-02T00:00:00Z",
		Agents: []domain.Agent{
			{ID: "alpha", Name: "Alpha Trend", RiskProfile: "aggressive", InitialBalance: 100, CashBalance: 49.9,
				Equity: 109.9, HasEquity: true, PnLAbs: 9.9, PnLPct: 0.099,
				Positions: []domain.Position{{Asset: "BTC", Quantity: 1, AvgPrice: 50, MarketPrice: 60, MarketValueEUR: 60}}},
			{ID: "beta", InitialBalance: 100, CashBalance: 100, Equity: 100, HasEquity: true},
		},
		Market: []domain.MarketQuote{{Asset: "BTC", LastPrice: 60, PriceChangePct24h: 1.25}},
		RecentTrades: []domain.Trade{
			{ID: 1, AgentID: "alpha", Asset: "BTC", Side: domain.SideBuy, Quantity: 1, Price: 50, NotionalEUR: 50, FeeEUR: 0.1, CreatedAt: "2025-03-01T10:00:00Z"},
			{ID: 2, AgentID: "alpha", Asset: "BTC", Side: domain.SideSell, Quantity: 1, Price: 60, NotionalEUR: 60, FeeEUR: 0.1, CreatedAt: "2025-03-01T12:00:00Z"},
		},
	}
	ranked := domain.RankAgents(snap.Agents)
	alpha := ranked[0]
	equity := domain.ReconstructEquity(alpha, snap)
	return view.Page{
		GeneratedAt: snap.GeneratedAt,
		Selection:   domain.Selection{AgentID: "alpha", Filter: domain.Filter{Agent: domain.FilterAll, Asset: "BTC"}},
		Summary:     domain.BuildSummary(snap.Agents),
		Market:      snap.Market,
		Ranked:      ranked,
		Top:         alpha,
		HasTop:      true,
		Overview:    []domain.AgentAnalysis{domain.AnalyzeAgent(snap, "alpha"), domain.AnalyzeAgent(snap, "beta")},
		Selected:    alpha,
		HasSelected: true,
		Analysis:    domain.AnalyzeAgent(snap, "alpha"),
		Allocations: domain.Allocations(alpha),
		Feed:        []domain.Trade{snap.RecentTrades[1], snap.RecentTrades[0]},
		Equity:      equity,
		Chart:       chart.Project(chart.FromEquity(equity), chart.DefaultLayout(), chart.Labels{}),
	}
}

func TestConsole_Report_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, 0)

	require.NoError(t, c.Report(context.Background(), makePage()))

	out := buf.String()
	assert.Contains(t, out, "AGENT DASHBOARD")
	assert.Contains(t, out, "Alpha Trend")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "+9.90%")
	assert.Contains(t, out, "€109.90")
	assert.Contains(t, out, "+€9.80", "realized pnl of the closed lot")
	assert.Contains(t, out, "recent trades (agent ALL, asset BTC)")
	assert.Contains(t, out, "equity curve: 4 points")
}

func TestConsole_Report_Compact(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, 0)

	require.NoError(t, c.Report(context.Background(), makePage()))

	out := buf.String()
	assert.Contains(t, out, "2 agents")
	assert.Contains(t, out, "#1 Alpha Trend +9.90%")
	assert.Contains(t, out, "1W/0L")
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestConsole_Report_NoAgents(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, 0)

	require.NoError(t, c.Report(context.Background(), view.Page{}))
	assert.Contains(t, buf.String(), "no agents in snapshot")
}

func TestConsole_Report_ClosedLimit(t *testing.T) {
	page := makePage()
	page.Analysis.ClosedTrades = []domain.ClosedTrade{
		{Asset: "BTC", Quantity: 1, PnLEUR: 1},
		{Asset: "BTC", Quantity: 1, PnLEUR: 2},
		{Asset: "BTC", Quantity: 1, PnLEUR: 3},
	}
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, 2)

	require.NoError(t, c.Report(context.Background(), page))
	assert.Contains(t, buf.String(), "... 1 more")
}

// --- SVG ---

func TestWriteEquitySVG(t *testing.T) {
	page := makePage()
	var buf bytes.Buffer
	require.NoError(t, notify.WriteEquitySVG(&buf, page.Chart, chart.DefaultLayout(), "alpha <equity>"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, `width="720" height="260"`)
	assert.Contains(t, out, "alpha &lt;equity&gt;")
	assert.Contains(t, out, page.Chart.Path)
	assert.Equal(t, len(page.Chart.YTicks), strings.Count(out, "<line "))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestWriteEquitySVG_Empty(t *testing.T) {
	var buf bytes.Buffer
	g := chart.Project(nil, chart.DefaultLayout(), chart.Labels{})
	require.NoError(t, notify.WriteEquitySVG(&buf, g, chart.DefaultLayout(), ""))
	assert.Contains(t, buf.String(), "no data")
	assert.NotContains(t, buf.String(), "<path")
}
