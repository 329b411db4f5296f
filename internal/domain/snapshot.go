package domain

import "strings"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes a raw side string. Unknown values return "".
func ParseSide(raw string) Side {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case SideBuy:
		return SideBuy
	case SideSell:
		return SideSell
	}
	return ""
}

// Snapshot is the immutable input exported by the trading system.
// Nothing in this module mutates a Snapshot after ingestion.
type Snapshot struct {
	GeneratedAt  string
	Agents       []Agent
	Market       []MarketQuote
	RecentTrades []Trade // unsorted, as exported
}

// MarketQuote is the latest market price for one asset.
type MarketQuote struct {
	Asset             string
	LastPrice         float64
	PriceChangePct24h float64
}

// Agent is one independent trading agent with its current valuation.
type Agent struct {
	ID             string
	Name           string
	RiskProfile    string
	Assets         []string
	Timeframes     []string
	InitialBalance float64
	CashBalance    float64
	Equity         float64
	HasEquity      bool // false when the export did not carry a numeric equity
	PnLAbs         float64
	PnLPct         float64
	Positions      []Position
}

// Position is an open holding of one asset.
type Position struct {
	Asset          string
	Quantity       float64
	AvgPrice       float64
	MarketPrice    float64
	MarketValueEUR float64
	UpdatedAt      string
}

// UnrealizedPnL returns (market_price - avg_price) * quantity.
func (p Position) UnrealizedPnL() float64 {
	return (p.MarketPrice - p.AvgPrice) * p.Quantity
}

// Trade is one executed (simulated) fill.
type Trade struct {
	ID          int64
	AgentID     string
	Asset       string
	Side        Side
	Quantity    float64
	Price       float64
	NotionalEUR float64
	FeeEUR      float64
	Reason      string
	CreatedAt   string
}

// AssetKey returns the uppercased asset symbol used to key lots, holdings and prices.
func (t Trade) AssetKey() string {
	return strings.ToUpper(strings.TrimSpace(t.Asset))
}

// IsInert reports whether the trade must be ignored by matching and equity replay:
// non-positive quantity or price, empty asset, or an unknown side.
func (t Trade) IsInert() bool {
	return t.Quantity <= 0 || t.Price <= 0 || t.AssetKey() == "" || t.Side == ""
}

// Notional returns NotionalEUR, or quantity*price when the export carried no notional.
func (t Trade) Notional() float64 {
	if t.NotionalEUR > 0 {
		return t.NotionalEUR
	}
	return t.Quantity * t.Price
}

// FindAgent returns the agent with the given id.
func (s Snapshot) FindAgent(id string) (Agent, bool) {
	for _, a := range s.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// TradesFor returns the agent's trades sorted ascending by created_at.
// The snapshot slice is never reordered.
func (s Snapshot) TradesFor(agentID string) []Trade {
	out := make([]Trade, 0, len(s.RecentTrades))
	for _, t := range s.RecentTrades {
		if t.AgentID == agentID {
			out = append(out, t)
		}
	}
	SortTradesAscending(out)
	return out
}

// PriceTable returns symbol → last price from the market snapshot, keyed by uppercased symbol.
func (s Snapshot) PriceTable() map[string]float64 {
	prices := make(map[string]float64, len(s.Market))
	for _, q := range s.Market {
		key := strings.ToUpper(strings.TrimSpace(q.Asset))
		if key == "" {
			continue
		}
		prices[key] = q.LastPrice
	}
	return prices
}
