package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/dashboard"
	"github.com/alejandrodnm/agentdash/internal/domain"
)

func scenario() domain.Snapshot {
	return domain.Snapshot{
		GeneratedAt: "2025-03-01T12:00:00Z",
		Agents: []domain.Agent{
			{ID: "slow", InitialBalance: 100, CashBalance: 101, Equity: 101, HasEquity: true, PnLAbs: 1, PnLPct: 0.01},
			{ID: "solo", InitialBalance: 100, CashBalance: 109.8, Equity: 109.8, HasEquity: true, PnLAbs: 9.8, PnLPct: 0.098},
			{ID: "idle", InitialBalance: 100, CashBalance: 100, Equity: 100, HasEquity: true},
		},
		Market: []domain.MarketQuote{{Asset: "BTC", LastPrice: 60}},
		RecentTrades: []domain.Trade{
			{ID: 2, AgentID: "solo", Asset: "BTC", Side: domain.SideSell, Quantity: 1, Price: 60, NotionalEUR: 60, FeeEUR: 0.1, CreatedAt: "2025-03-01T11:00:00Z"},
			{ID: 1, AgentID: "solo", Asset: "BTC", Side: domain.SideBuy, Quantity: 1, Price: 50, NotionalEUR: 50, FeeEUR: 0.1, CreatedAt: "2025-03-01T10:00:00Z"},
			{ID: 3, AgentID: "slow", Asset: "ETH", Side: domain.SideBuy, Quantity: 1, Price: 10, NotionalEUR: 10, CreatedAt: "2025-03-01T10:30:00Z"},
		},
	}
}

func TestDashboard_EndToEndScenario(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})

	res, err := d.Analyze("solo")
	require.NoError(t, err)
	require.Len(t, res.ClosedTrades, 1)
	assert.InDelta(t, 9.8, res.ClosedTrades[0].PnLEUR, 1e-9)
	assert.InDelta(t, 1.0, res.Stats.WinRate, 1e-12)

	curve, err := d.Reconstruct("solo")
	require.NoError(t, err)
	require.Len(t, curve, 4)
	assert.InDelta(t, 100, curve[0].Equity, 1e-9)
	assert.InDelta(t, 109.8, curve[2].Equity, 1e-9)
	assert.InDelta(t, 109.8, curve[3].Equity, 1e-9)
	assert.Equal(t, "2025-03-01T12:00:00Z", curve[3].Time)

	g, err := d.EquityChart("solo")
	require.NoError(t, err)
	assert.Len(t, g.Coords, 4)
	assert.True(t, g.HasTimeAxis)
}

func TestDashboard_UnknownAgent(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})

	_, err := d.Analyze("ghost")
	assert.True(t, errors.Is(err, dashboard.ErrUnknownAgent))
	_, err = d.Reconstruct("ghost")
	assert.ErrorIs(t, err, dashboard.ErrUnknownAgent)
	_, err = d.EquityChart("ghost")
	assert.ErrorIs(t, err, dashboard.ErrUnknownAgent)
}

func TestDashboard_ViewDefaultsToTopPerformer(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})

	for _, id := range []string{"", "ghost"} {
		page := d.View(domain.Selection{AgentID: id})
		require.True(t, page.HasTop)
		require.True(t, page.HasSelected)
		assert.Equal(t, "solo", page.Top.ID)
		assert.Equal(t, "solo", page.Selected.ID)
		assert.Equal(t, "solo", page.Selection.AgentID)
		assert.Equal(t, []string{"solo", "slow", "idle"}, agentIDs(page.Ranked))
		assert.Len(t, page.Equity, 4)
		assert.Len(t, page.Chart.Coords, 4)
	}
}

func TestDashboard_ViewExplicitSelection(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})

	page := d.View(domain.Selection{AgentID: "idle"})
	assert.Equal(t, "idle", page.Selected.ID)
	assert.Empty(t, page.Analysis.ClosedTrades)
	assert.Equal(t, domain.AgentStats{}, page.Analysis.Stats)
	require.Len(t, page.Equity, 1, "no trades: a single point")
	assert.InDelta(t, 100, page.Equity[0].Equity, 1e-12)
	require.Len(t, page.Chart.Coords, 1)
	assert.NotEmpty(t, page.Chart.Path)
}

func TestDashboard_ViewEmptySnapshot(t *testing.T) {
	page := dashboard.New(domain.Snapshot{}, chart.Layout{}).View(domain.Selection{})
	assert.False(t, page.HasTop)
	assert.False(t, page.HasSelected)
	assert.Empty(t, page.Ranked)
	assert.Empty(t, page.Feed)
	assert.Empty(t, page.Chart.Coords)
}

func TestDashboard_FeedFilteredLatestFirst(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})

	all := d.Feed(domain.Filter{Agent: domain.FilterAll, Asset: domain.FilterAll})
	assert.Equal(t, []int64{2, 3, 1}, tradeIDs(all))

	btc := d.Feed(domain.Filter{Agent: domain.FilterAll, Asset: "btc"})
	assert.Equal(t, []int64{2, 1}, tradeIDs(btc))

	slow := d.View(domain.Selection{Filter: domain.Filter{Agent: "slow"}}).Feed
	assert.Equal(t, []int64{3}, tradeIDs(slow))
}

func TestMatches(t *testing.T) {
	tr := domain.Trade{AgentID: "a", Asset: "BTC"}
	assert.True(t, dashboard.Matches(tr, "ALL", "ALL"))
	assert.True(t, dashboard.Matches(tr, "a", "btc"))
	assert.False(t, dashboard.Matches(tr, "b", "ALL"))
	assert.False(t, dashboard.Matches(tr, "ALL", "ETH"))
}

func TestDashboard_ViewIsIdempotent(t *testing.T) {
	d := dashboard.New(scenario(), chart.Layout{})
	sel := domain.Selection{AgentID: "solo", Filter: domain.Filter{Asset: "BTC"}}
	assert.Equal(t, d.View(sel), d.View(sel))
}

// --- overview ---

func TestDashboard_AnalyzeAllRankingOrder(t *testing.T) {
	snap := scenario()
	d := dashboard.New(snap, chart.Layout{})

	for _, workers := range []int{0, 1, 2, 16} {
		got, err := d.AnalyzeAll(context.Background(), workers)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "solo", got[0].AgentID)
		assert.Equal(t, "slow", got[1].AgentID)
		assert.Equal(t, "idle", got[2].AgentID)
		assert.Equal(t, domain.AnalyzeAgent(snap, "solo"), got[0])
	}
}

func TestDashboard_AnalyzeAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dashboard.New(scenario(), chart.Layout{}).AnalyzeAll(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDashboard_AnalyzeAllEmpty(t *testing.T) {
	got, err := dashboard.New(domain.Snapshot{}, chart.Layout{}).AnalyzeAll(context.Background(), 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func agentIDs(agents []domain.Agent) []string {
	out := make([]string, len(agents))
	for i, a := range agents {
		out[i] = a.ID
	}
	return out
}

func tradeIDs(trades []domain.Trade) []int64 {
	out := make([]int64, len(trades))
	for i, t := range trades {
		out[i] = t.ID
	}
	return out
}

func TestDashboard_ViewEmptySelectionIgnoresAgentWithoutID(t *testing.T) {
	snap := domain.Snapshot{Agents: []domain.Agent{
		{Name: "ghost", PnLPct: -0.5},
		{ID: "best", PnLPct: 0.2},
	}}
	page := dashboard.New(snap, chart.Layout{}).View(domain.Selection{})

	require.True(t, page.HasSelected)
	assert.Equal(t, "best", page.Selected.ID)
	assert.Equal(t, "best", page.Selection.AgentID)
}

func TestDashboard_FeedSameInstantNewestIDFirst(t *testing.T) {
	at := "2025-03-01T10:00:00Z"
	snap := domain.Snapshot{RecentTrades: []domain.Trade{
		{ID: 7, AgentID: "a", Asset: "BTC", CreatedAt: at},
		{ID: 9, AgentID: "a", Asset: "BTC", CreatedAt: at},
		{ID: 8, AgentID: "a", Asset: "BTC", CreatedAt: at},
	}}
	feed := dashboard.New(snap, chart.Layout{}).Feed(domain.Filter{})
	require.Len(t, feed, 3)
	assert.Equal(t, []int64{9, 8, 7}, []int64{feed[0].ID, feed[1].ID, feed[2].ID})
}
