package domain

import (
	"cmp"
	"math"
	"slices"
)

// OpenPosition is a Position enriched with its unrealized P&L.
type OpenPosition struct {
	Position
	UnrealizedPnLEUR float64
}

// AgentStats summarizes realized performance of one agent.
// Closed trades with pnl == 0 count as neither win nor loss.
type AgentStats struct {
	Wins           int
	Losses         int
	ClosedCount    int // wins + losses
	WinRate        float64
	LoseRate       float64
	GainsEUR       float64
	LossesEUR      float64 // absolute value
	NetRealizedEUR float64
	TradeCount     int
	FeesEUR        float64
	UnrealizedEUR  float64
}

// AgentAnalysis is the per-agent output consumed by the presentation layer.
type AgentAnalysis struct {
	AgentID      string
	OpenTrades   []OpenPosition // market value desc
	ClosedTrades []ClosedTrade  // exit_at desc
	Stats        AgentStats
}

// AnalyzeAgent builds open/closed tables and stats for agentID from the snapshot.
// Unknown agents and agents without trades produce empty tables and zero stats.
func AnalyzeAgent(snap Snapshot, agentID string) AgentAnalysis {
	trades := snap.TradesFor(agentID)
	closed := MatchTrades(trades)
	slices.SortStableFunc(closed, func(a, b ClosedTrade) int {
		return compareInt64(TimestampMillis(b.ExitAt), TimestampMillis(a.ExitAt))
	})

	var positions []Position
	if agent, ok := snap.FindAgent(agentID); ok {
		positions = agent.Positions
	}
	open := openPositions(positions)

	stats := ComputeStats(closed)
	for _, t := range trades {
		if t.IsInert() {
			continue
		}
		stats.TradeCount++
		stats.FeesEUR += t.FeeEUR
	}
	for _, p := range open {
		stats.UnrealizedEUR += p.UnrealizedPnLEUR
	}

	if closed == nil {
		closed = []ClosedTrade{}
	}
	return AgentAnalysis{
		AgentID:      agentID,
		OpenTrades:   open,
		ClosedTrades: closed,
		Stats:        stats,
	}
}

// ComputeStats aggregates win/loss counts and realized totals over closed trades.
func ComputeStats(closed []ClosedTrade) AgentStats {
	var s AgentStats
	for _, c := range closed {
		switch {
		case c.PnLEUR > 0:
			s.Wins++
			s.GainsEUR += c.PnLEUR
		case c.PnLEUR < 0:
			s.Losses++
			s.LossesEUR += math.Abs(c.PnLEUR)
		}
	}
	s.ClosedCount = s.Wins + s.Losses
	if s.ClosedCount > 0 {
		s.WinRate = float64(s.Wins) / float64(s.ClosedCount)
		s.LoseRate = float64(s.Losses) / float64(s.ClosedCount)
	}
	s.NetRealizedEUR = s.GainsEUR - s.LossesEUR
	return s
}

func openPositions(positions []Position) []OpenPosition {
	open := make([]OpenPosition, 0, len(positions))
	for _, p := range positions {
		open = append(open, OpenPosition{Position: p, UnrealizedPnLEUR: p.UnrealizedPnL()})
	}
	slices.SortStableFunc(open, func(a, b OpenPosition) int {
		return cmp.Compare(b.MarketValueEUR, a.MarketValueEUR)
	})
	return open
}
