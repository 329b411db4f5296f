// Package dashboard arma las vistas del dashboard a partir de un snapshot inmutable.
//
// Todo lo que hace es puro: la misma combinación de snapshot y selección produce
// siempre la misma vista, y un Dashboard se puede usar desde varias goroutines.
package dashboard

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/domain"
	"github.com/alejandrodnm/agentdash/internal/view"
)

// ErrUnknownAgent se devuelve cuando el agentID no existe en el snapshot.
var ErrUnknownAgent = errors.New("dashboard: unknown agent")

// Dashboard responde consultas sobre un snapshot.
type Dashboard struct {
	snap   domain.Snapshot
	layout chart.Layout
}

// New crea un Dashboard sobre snap. Un layout cero usa chart.DefaultLayout.
func New(snap domain.Snapshot, layout chart.Layout) *Dashboard {
	if layout.Width <= 0 || layout.Height <= 0 {
		layout = chart.DefaultLayout()
	}
	return &Dashboard{snap: snap, layout: layout}
}

// Analyze devuelve trades abiertos, cerrados y estadísticas del agente.
// Un id desconocido devuelve ErrUnknownAgent; quien prefiera una página vacía en vez de
// un error puede llamar domain.AnalyzeAgent, que da un análisis vacío para ids desconocidos.
func (d *Dashboard) Analyze(agentID string) (domain.AgentAnalysis, error) {
	if _, ok := d.snap.FindAgent(agentID); !ok {
		return domain.AgentAnalysis{}, fmt.Errorf("dashboard.Analyze %q: %w", agentID, ErrUnknownAgent)
	}
	return domain.AnalyzeAgent(d.snap, agentID), nil
}

// Reconstruct devuelve la curva de equity del agente. Igual que Analyze, un id
// desconocido es ErrUnknownAgent; domain.ReconstructEquity nunca falla.
func (d *Dashboard) Reconstruct(agentID string) ([]domain.EquityPoint, error) {
	agent, ok := d.snap.FindAgent(agentID)
	if !ok {
		return nil, fmt.Errorf("dashboard.Reconstruct %q: %w", agentID, ErrUnknownAgent)
	}
	return domain.ReconstructEquity(agent, d.snap), nil
}

// EquityChart proyecta la curva de equity del agente en el layout del dashboard.
func (d *Dashboard) EquityChart(agentID string) (chart.Geometry, error) {
	curve, err := d.Reconstruct(agentID)
	if err != nil {
		return chart.Geometry{}, err
	}
	return chart.Project(chart.FromEquity(curve), d.layout, chart.Labels{}), nil
}

// Ranked devuelve los agentes ordenados por rendimiento.
func (d *Dashboard) Ranked() []domain.Agent {
	return domain.RankAgents(d.snap.Agents)
}

// Matches es el predicado de los filtros del feed: "ALL" deja pasar todo.
func Matches(t domain.Trade, agentFilter, assetFilter string) bool {
	return domain.Filter{Agent: agentFilter, Asset: assetFilter}.MatchesTrade(t)
}

// View arma la página completa para sel. Si sel.AgentID está vacío o no existe se
// muestra el top performer; sin agentes la página queda sin selección.
func (d *Dashboard) View(sel domain.Selection) view.Page {
	ranked := d.Ranked()
	page := view.Page{
		GeneratedAt: d.snap.GeneratedAt,
		Selection:   sel,
		Summary:     domain.BuildSummary(d.snap.Agents),
		Market:      slices.Clone(d.snap.Market),
		Ranked:      ranked,
		Feed:        d.Feed(sel.Filter),
	}
	if top, ok := domain.TopPerformer(d.snap.Agents); ok {
		page.Top, page.HasTop = top, true
	}

	var (
		selected domain.Agent
		ok       bool
	)
	if sel.AgentID != "" {
		selected, ok = d.snap.FindAgent(sel.AgentID)
	}
	if !ok {
		selected, ok = page.Top, page.HasTop
	}
	if !ok {
		return page
	}

	page.Selection.AgentID = selected.ID
	page.Selected, page.HasSelected = selected, true
	page.Analysis = domain.AnalyzeAgent(d.snap, selected.ID)
	page.Allocations = domain.Allocations(selected)
	page.Equity = domain.ReconstructEquity(selected, d.snap)
	page.Chart = chart.Project(chart.FromEquity(page.Equity), d.layout, chart.Labels{})
	return page
}

// Feed devuelve los trades recientes que pasan el filtro, del más nuevo al más viejo.
func (d *Dashboard) Feed(f domain.Filter) []domain.Trade {
	feed := f.Apply(d.snap.RecentTrades)
	slices.SortStableFunc(feed, func(a, b domain.Trade) int {
		if c := cmp.Compare(domain.TimestampMillis(b.CreatedAt), domain.TimestampMillis(a.CreatedAt)); c != 0 {
			return c
		}
		if a.ID > 0 && b.ID > 0 {
			return cmp.Compare(b.ID, a.ID)
		}
		return 0
	})
	return feed
}
