// Package view holds the page model shared by the dashboard builder and the reporters.
package view

import (
	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/domain"
)

// Page is everything a reporter needs to render one dashboard selection.
type Page struct {
	GeneratedAt string
	Selection   domain.Selection
	Summary     domain.Summary
	Market      []domain.MarketQuote

	// Ranked is every agent in performance order; Top is Ranked[0] when HasTop.
	Ranked []domain.Agent
	Top    domain.Agent
	HasTop bool

	// Overview holds one analysis per agent, in Ranked order. It may be empty when the
	// caller only asked for the selected agent.
	Overview []domain.AgentAnalysis

	Selected    domain.Agent
	HasSelected bool
	Analysis    domain.AgentAnalysis
	Allocations []domain.Allocation

	// Feed is the filtered recent trade list, latest first.
	Feed []domain.Trade

	Equity []domain.EquityPoint
	Chart  chart.Geometry
}

// LatestEquity returns the last point of the equity curve.
func (p Page) LatestEquity() (domain.EquityPoint, bool) {
	if len(p.Equity) == 0 {
		return domain.EquityPoint{}, false
	}
	return p.Equity[len(p.Equity)-1], true
}
