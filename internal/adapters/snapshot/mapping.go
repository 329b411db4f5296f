package snapshot

import (
	"math"
	"strings"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

// mapSnapshot convierte el DTO completo a domain.Snapshot.
func mapSnapshot(raw snapshotDTO) domain.Snapshot {
	snap := domain.Snapshot{
		GeneratedAt:  string(raw.GeneratedAt),
		Agents:       make([]domain.Agent, 0, len(raw.Agents)),
		Market:       make([]domain.MarketQuote, 0, len(raw.Market)),
		RecentTrades: make([]domain.Trade, 0, len(raw.RecentTrades)),
	}
	for _, a := range raw.Agents {
		agent := mapAgent(a)
		if agent.ID == "" {
			continue // sin id no se puede seleccionar ni cruzar con trades
		}
		snap.Agents = append(snap.Agents, agent)
	}
	for _, q := range raw.Market {
		snap.Market = append(snap.Market, domain.MarketQuote{
			Asset:             strings.TrimSpace(string(q.Asset)),
			LastPrice:         q.LastPrice.Value,
			PriceChangePct24h: q.PriceChangePct24h.Value,
		})
	}
	for _, t := range raw.RecentTrades {
		snap.RecentTrades = append(snap.RecentTrades, mapTrade(t))
	}
	return snap
}

// mapAgent convierte un agentDTO. HasEquity solo es true si el export traía un equity numérico.
func mapAgent(r agentDTO) domain.Agent {
	a := domain.Agent{
		ID:             strings.TrimSpace(string(r.ID)),
		Name:           string(r.Name),
		RiskProfile:    string(r.RiskProfile),
		Assets:         nonEmpty(r.Assets),
		Timeframes:     nonEmpty(r.Timeframes),
		InitialBalance: r.InitialBalance.Value,
		CashBalance:    r.CashBalance.Value,
		Equity:         r.Equity.Value,
		HasEquity:      r.Equity.Valid,
		PnLAbs:         r.PnLAbs.Value,
		PnLPct:         r.PnLPct.Value,
		Positions:      make([]domain.Position, 0, len(r.Positions)),
	}
	for _, p := range r.Positions {
		a.Positions = append(a.Positions, domain.Position{
			Asset:          strings.TrimSpace(string(p.Asset)),
			Quantity:       p.Quantity.Value,
			AvgPrice:       p.AvgPrice.Value,
			MarketPrice:    p.MarketPrice.Value,
			MarketValueEUR: p.MarketValueEUR.Value,
			UpdatedAt:      string(p.UpdatedAt),
		})
	}
	return a
}

func mapTrade(r tradeDTO) domain.Trade {
	return domain.Trade{
		ID:          int64(math.Round(r.ID.Value)),
		AgentID:     strings.TrimSpace(string(r.AgentID)),
		Asset:       strings.TrimSpace(string(r.Asset)),
		Side:        domain.ParseSide(string(r.Side)),
		Quantity:    r.Quantity.Value,
		Price:       r.Price.Value,
		NotionalEUR: r.NotionalEUR.Value,
		FeeEUR:      r.FeeEUR.Value,
		Reason:      string(r.Reason),
		CreatedAt:   strings.TrimSpace(string(r.CreatedAt)),
	}
}

func nonEmpty(values []flexString) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
