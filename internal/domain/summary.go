package domain

import (
	"cmp"
	"slices"
)

// Summary aggregates valuation across all agents.
type Summary struct {
	AgentCount          int
	TotalInitialBalance float64
	TotalEquity         float64
	TotalCashBalance    float64
	TotalPositionsValue float64
	PnLAbs              float64
	PnLPct              float64 // fraction, 0 when the total initial balance is 0
}

// BuildSummary sums balances over agents.
func BuildSummary(agents []Agent) Summary {
	s := Summary{AgentCount: len(agents)}
	for _, a := range agents {
		s.TotalInitialBalance += a.InitialBalance
		s.TotalEquity += a.Equity
		s.TotalCashBalance += a.CashBalance
		for _, p := range a.Positions {
			s.TotalPositionsValue += p.MarketValueEUR
		}
	}
	s.PnLAbs = s.TotalEquity - s.TotalInitialBalance
	if s.TotalInitialBalance != 0 {
		s.PnLPct = s.PnLAbs / s.TotalInitialBalance
	}
	return s
}

// Allocation is the share of an agent's equity held in one position.
type Allocation struct {
	Position
	WeightPct float64
}

// Allocations returns the agent's positions weighted by equity, largest first.
// A non-positive equity uses a denominator of 1.
func Allocations(agent Agent) []Allocation {
	denom := agent.Equity
	if denom <= 0 {
		denom = 1
	}
	out := make([]Allocation, 0, len(agent.Positions))
	for _, p := range agent.Positions {
		out = append(out, Allocation{Position: p, WeightPct: p.MarketValueEUR / denom * 100})
	}
	slices.SortStableFunc(out, func(a, b Allocation) int {
		return cmp.Compare(b.MarketValueEUR, a.MarketValueEUR)
	})
	return out
}
