package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equities(points []EquityPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Equity
	}
	return out
}

func endToEndSnapshot() Snapshot {
	return Snapshot{
		GeneratedAt: "2025-01-01T12:00:00Z",
		Market:      []MarketQuote{{Asset: "BTC", LastPrice: 60}},
		Agents: []Agent{{
			ID: "solo", InitialBalance: 100, CashBalance: 109.8,
			Equity: 109.8, HasEquity: true, PnLAbs: 9.8, PnLPct: 0.098,
		}},
		RecentTrades: []Trade{
			mkTrade("solo", SideSell, "BTC", 1, 60, 0.1, "2025-01-01T11:00:00Z"),
			mkTrade("solo", SideBuy, "BTC", 1, 50, 0.1, "2025-01-01T10:00:00Z"),
		},
	}
}

func TestEndToEnd_SingleRoundTrip(t *testing.T) {
	snap := endToEndSnapshot()
	agent := snap.Agents[0]

	a := AnalyzeAgent(snap, "solo")
	require.Len(t, a.ClosedTrades, 1)
	assert.InDelta(t, 9.8, a.ClosedTrades[0].PnLEUR, 1e-9)
	assert.InDelta(t, 1.0, a.Stats.WinRate, 1e-12)

	curve := ReconstructEquity(agent, snap)
	require.Len(t, curve, 4)
	assert.Equal(t, "2025-01-01T10:00:00Z", curve[0].Time)
	assert.InDelta(t, 100, curve[0].Equity, 1e-9)
	// after the BUY: cash 49.9 plus 1 BTC marked at the traded 50
	assert.InDelta(t, 99.9, curve[1].Equity, 1e-9)
	assert.InDelta(t, 109.8, curve[2].Equity, 1e-9)
	assert.Equal(t, "2025-01-01T12:00:00Z", curve[3].Time)
	assert.InDelta(t, agent.Equity, curve[3].Equity, 1e-12)
}

func TestReconstructEquity_NoTrades(t *testing.T) {
	snap := Snapshot{GeneratedAt: "2025-01-01T00:00:00Z"}

	curve := ReconstructEquity(Agent{ID: "idle", InitialBalance: 100}, snap)
	require.Len(t, curve, 1)
	assert.Equal(t, EquityPoint{Time: "2025-01-01T00:00:00Z", Equity: 100}, curve[0])

	reported := ReconstructEquity(Agent{ID: "idle", InitialBalance: 100, Equity: 101, HasEquity: true}, snap)
	require.Len(t, reported, 1)
	assert.InDelta(t, 101, reported[0].Equity, 1e-12)
}

func TestReconstructEquity_OnlyInertTradesStillHasTwoPoints(t *testing.T) {
	snap := Snapshot{
		GeneratedAt:  "2025-01-02T00:00:00Z",
		RecentTrades: []Trade{mkTrade("a", SideBuy, "BTC", 0, 50, 0, "2025-01-01T00:00:00Z")},
	}
	curve := ReconstructEquity(Agent{ID: "a", InitialBalance: 100}, snap)
	require.Len(t, curve, 2)
	assert.Equal(t, []float64{100, 100}, equities(curve))
	assert.Equal(t, "2025-01-02T00:00:00Z", curve[1].Time)
}

func TestReconstructEquity_MarksOpenHoldingsAtLatestKnownPrice(t *testing.T) {
	snap := Snapshot{
		GeneratedAt: "2025-01-03T00:00:00Z",
		Market:      []MarketQuote{{Asset: "eth", LastPrice: 30}},
		RecentTrades: []Trade{
			mkTrade("a", SideBuy, "BTC", 1, 50, 0, "2025-01-01T00:00:00Z"),
			mkTrade("a", SideBuy, "ETH", 1, 20, 0, "2025-01-02T00:00:00Z"),
			mkTrade("a", SideBuy, "BTC", 1, 70, 0, "2025-01-02T12:00:00Z"),
		},
	}
	curve := ReconstructEquity(Agent{ID: "a", InitialBalance: 200}, snap)

	// ETH is marked at its trade price (20), overriding the market snapshot (30);
	// the second BTC buy re-marks both BTC units at 70.
	assert.InDeltaSlice(t, []float64{200, 200, 200, 220, 60}, equities(curve), 1e-9)
}

func TestReconstructEquity_SellWithoutHoldingGoesNegative(t *testing.T) {
	snap := Snapshot{
		GeneratedAt:  "2025-01-02T00:00:00Z",
		RecentTrades: []Trade{mkTrade("a", SideSell, "BTC", 1, 50, 0, "2025-01-01T00:00:00Z")},
	}
	curve := ReconstructEquity(Agent{ID: "a", InitialBalance: 100}, snap)
	// cash 150, holdings -1 @ 50
	assert.InDeltaSlice(t, []float64{100, 100, 150}, equities(curve), 1e-9)
}

func TestReconstructEquity_NotionalFallsBackToQuantityTimesPrice(t *testing.T) {
	tr := mkTrade("a", SideBuy, "BTC", 2, 10, 0, "2025-01-01T00:00:00Z")
	tr.NotionalEUR = 0
	snap := Snapshot{GeneratedAt: "2025-01-02T00:00:00Z", RecentTrades: []Trade{tr}}

	curve := ReconstructEquity(Agent{ID: "a", InitialBalance: 100}, snap)
	require.Len(t, curve, 3)
	assert.InDelta(t, 80, curve[2].Equity, 1e-9) // cash fallback
}

func TestReconstructEquity_DoesNotMutateSnapshot(t *testing.T) {
	snap := endToEndSnapshot()
	ReconstructEquity(snap.Agents[0], snap)
	assert.Equal(t, endToEndSnapshot(), snap)

	first := ReconstructEquity(snap.Agents[0], snap)
	second := ReconstructEquity(snap.Agents[0], snap)
	assert.Equal(t, first, second)
	for _, p := range first {
		assert.False(t, math.IsNaN(p.Equity))
	}
}
