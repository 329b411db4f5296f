package domain

import "math"

// EquityPoint is a mark-to-market valuation at one event boundary.
type EquityPoint struct {
	Time   string
	Equity float64
}

// ReconstructEquity replays the agent's trades against a price table seeded from the
// market snapshot and returns the equity curve (cash + holdings marked at the latest
// known price).
//
// The curve starts at the first trade time with equity = initial balance and always ends
// at generated_at with the agent's reported equity (cash when none was reported): replay
// drift from missing price history is tolerated, the reported value wins. An agent with no
// trades gets exactly one point, the terminal valuation.
func ReconstructEquity(agent Agent, snap Snapshot) []EquityPoint {
	trades := snap.TradesFor(agent.ID)
	cash := agent.InitialBalance

	if len(trades) == 0 {
		return []EquityPoint{{Time: snap.GeneratedAt, Equity: terminalEquity(agent, cash)}}
	}

	prices := snap.PriceTable()
	holdings := make(map[string]float64)
	var held []string // holdings keys in first-seen order, for a deterministic sum

	points := []EquityPoint{{Time: trades[0].CreatedAt, Equity: cash}}

	for _, t := range trades {
		if t.IsInert() {
			continue
		}
		asset := t.AssetKey()
		prices[asset] = t.Price

		if _, ok := holdings[asset]; !ok {
			held = append(held, asset)
		}
		switch t.Side {
		case SideBuy:
			cash -= t.Notional() + t.FeeEUR
			holdings[asset] += t.Quantity
		case SideSell:
			cash += t.Notional() - t.FeeEUR
			holdings[asset] -= t.Quantity
		}
		if math.Abs(holdings[asset]) <= lotEpsilon {
			delete(holdings, asset)
		}

		positionsValue := 0.0
		kept := held[:0]
		for _, a := range held {
			qty, ok := holdings[a]
			if !ok {
				continue
			}
			kept = append(kept, a)
			positionsValue += qty * prices[a]
		}
		held = kept

		points = append(points, EquityPoint{Time: t.CreatedAt, Equity: cash + positionsValue})
	}

	return append(points, EquityPoint{Time: snap.GeneratedAt, Equity: terminalEquity(agent, cash)})
}

func terminalEquity(agent Agent, cash float64) float64 {
	if agent.HasEquity {
		return agent.Equity
	}
	return cash
}
