package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/agentdash/internal/domain"
	"github.com/alejandrodnm/agentdash/internal/view"
)

const (
	defaultClosedLimit = 20
	feedLimit          = 15
	compactTopN        = 3
)

// Console implementa ports.Reporter escribiendo tablas en un io.Writer.
type Console struct {
	out         io.Writer
	table       bool
	closedLimit int
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(table bool, closedLimit int) *Console {
	return NewConsoleWriter(os.Stdout, table, closedLimit)
}

// NewConsoleWriter crea un reporter sobre w (tests).
func NewConsoleWriter(w io.Writer, table bool, closedLimit int) *Console {
	if closedLimit <= 0 {
		closedLimit = defaultClosedLimit
	}
	return &Console{out: w, table: table, closedLimit: closedLimit}
}

// Report imprime la página en el modo configurado.
func (c *Console) Report(_ context.Context, page view.Page) error {
	if len(page.Ranked) == 0 {
		fmt.Fprintf(c.out, "[%s] no agents in snapshot\n", time.Now().Format("15:04:05"))
		return nil
	}
	if c.table {
		c.printFull(page)
	} else {
		c.printCompact(page)
	}
	return nil
}

// printCompact imprime lo esencial en una línea más el agente seleccionado.
func (c *Console) printCompact(page view.Page) {
	now := time.Now().Format("15:04:05")
	s := page.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d agents → equity %s (%s)", now, s.AgentCount, eur(s.TotalEquity), signedPct(s.PnLPct))
	for i, a := range page.Ranked {
		if i >= compactTopN {
			break
		}
		fmt.Fprintf(&sb, " | #%d %s %s", i+1, compactName(agentLabel(a), 20), signedPct(a.PnLPct))
	}
	if page.HasSelected {
		st := page.Analysis.Stats
		fmt.Fprintf(&sb, "\n  %s: %dW/%dL win %.0f%% net %s open %d",
			agentLabel(page.Selected), st.Wins, st.Losses, st.WinRate*100,
			eur(st.NetRealizedEUR), len(page.Analysis.OpenTrades))
	}
	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el dashboard completo con tablas.
func (c *Console) printFull(page view.Page) {
	s := page.Summary
	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  AGENT DASHBOARD  (snapshot %s)\n", page.GeneratedAt)
	fmt.Fprintf(c.out, "  %d agents | equity %s | cash %s | positions %s | pnl %s (%s)\n",
		s.AgentCount, eur(s.TotalEquity), eur(s.TotalCashBalance), eur(s.TotalPositionsValue),
		signedEUR(s.PnLAbs), signedPct(s.PnLPct))
	fmt.Fprintf(c.out, "========================================================\n\n")

	c.printLeaderboard(page)
	c.printMarket(page.Market)

	if !page.HasSelected {
		return
	}
	c.printSelected(page)
	c.printOpen(page)
	c.printClosed(page.Analysis.ClosedTrades)
	c.printFeed(page)
	c.printEquity(page)
}

func (c *Console) printLeaderboard(page view.Page) {
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("#", "Agent", "Risk", "Equity", "PnL", "PnL%", "Cash", "Closed", "Win%")

	stats := make(map[string]domain.AgentStats, len(page.Overview))
	for _, a := range page.Overview {
		stats[a.AgentID] = a.Stats
	}

	for i, a := range page.Ranked {
		closed, win := "-", "-"
		if st, ok := stats[a.ID]; ok {
			closed = fmt.Sprintf("%d", st.ClosedCount)
			if st.ClosedCount > 0 {
				win = fmt.Sprintf("%.0f%%", st.WinRate*100)
			}
		}
		marker := fmt.Sprintf("%d", i+1)
		if page.HasSelected && a.ID == page.Selected.ID {
			marker += "*"
		}
		tbl.Append(
			marker,
			compactName(agentLabel(a), 24),
			orDash(a.RiskProfile),
			eur(a.Equity),
			signedEUR(a.PnLAbs),
			signedPct(a.PnLPct),
			eur(a.CashBalance),
			closed,
			win,
		)
	}
	tbl.Render()
	fmt.Fprintln(c.out)
}

func (c *Console) printMarket(market []domain.MarketQuote) {
	if len(market) == 0 {
		return
	}
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Asset", "Last", "24h")
	for _, q := range market {
		tbl.Append(q.Asset, humanize.FormatFloat("#,###.####", q.LastPrice), fmt.Sprintf("%+.2f%%", q.PriceChangePct24h))
	}
	tbl.Render()
	fmt.Fprintln(c.out)
}

func (c *Console) printSelected(page view.Page) {
	a := page.Selected
	st := page.Analysis.Stats
	fmt.Fprintf(c.out, "--- %s (%s) ---\n", agentLabel(a), orDash(a.RiskProfile))
	fmt.Fprintf(c.out, "  equity %s | initial %s | pnl %s (%s)\n",
		eur(a.Equity), eur(a.InitialBalance), signedEUR(a.PnLAbs), signedPct(a.PnLPct))
	fmt.Fprintf(c.out, "  closed %d (%dW / %dL) | win %.1f%% | lose %.1f%%\n",
		st.ClosedCount, st.Wins, st.Losses, st.WinRate*100, st.LoseRate*100)
	fmt.Fprintf(c.out, "  gains %s | losses %s | net realized %s | unrealized %s\n",
		eur(st.GainsEUR), eur(st.LossesEUR), signedEUR(st.NetRealizedEUR), signedEUR(st.UnrealizedEUR))
	fmt.Fprintf(c.out, "  trades %d | fees %s\n\n", st.TradeCount, eur(st.FeesEUR))
}

func (c *Console) printOpen(page view.Page) {
	if len(page.Analysis.OpenTrades) == 0 {
		fmt.Fprintln(c.out, "  no open positions")
		fmt.Fprintln(c.out)
		return
	}
	weights := make(map[string]float64, len(page.Allocations))
	for _, al := range page.Allocations {
		weights[al.Asset] = al.WeightPct
	}

	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Asset", "Qty", "Avg", "Mark", "Value", "Unrealized", "Weight")
	for _, p := range page.Analysis.OpenTrades {
		tbl.Append(
			p.Asset,
			qty(p.Quantity),
			price(p.AvgPrice),
			price(p.MarketPrice),
			eur(p.MarketValueEUR),
			signedEUR(p.UnrealizedPnLEUR),
			fmt.Sprintf("%.1f%%", weights[p.Asset]),
		)
	}
	tbl.Render()
	fmt.Fprintln(c.out)
}

func (c *Console) printClosed(closed []domain.ClosedTrade) {
	if len(closed) == 0 {
		fmt.Fprintln(c.out, "  no closed trades")
		fmt.Fprintln(c.out)
		return
	}
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Exit", "Asset", "Qty", "Entry", "Exit px", "PnL")
	for i, ct := range closed {
		if i >= c.closedLimit {
			break
		}
		tbl.Append(shortTime(ct.ExitAt), ct.Asset, qty(ct.Quantity), price(ct.EntryPrice), price(ct.ExitPrice), signedEUR(ct.PnLEUR))
	}
	tbl.Render()
	if len(closed) > c.closedLimit {
		fmt.Fprintf(c.out, "  ... %d more\n", len(closed)-c.closedLimit)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printFeed(page view.Page) {
	if len(page.Feed) == 0 {
		return
	}
	f := page.Selection.Filter
	fmt.Fprintf(c.out, "  recent trades (agent %s, asset %s)\n", orAll(f.Agent), orAll(f.Asset))
	tbl := tablewriter.NewWriter(c.out)
	tbl.Header("Time", "Agent", "Side", "Asset", "Qty", "Price", "Notional", "Fee")
	for i, t := range page.Feed {
		if i >= feedLimit {
			break
		}
		tbl.Append(shortTime(t.CreatedAt), t.AgentID, orDash(string(t.Side)), t.Asset,
			qty(t.Quantity), price(t.Price), eur(t.Notional()), eur(t.FeeEUR))
	}
	tbl.Render()
	fmt.Fprintln(c.out)
}

// printEquity imprime el rango de la curva y los ticks del eje Y.
func (c *Console) printEquity(page view.Page) {
	last, ok := page.LatestEquity()
	if !ok {
		return
	}
	first := page.Equity[0]
	ticks := make([]string, len(page.Chart.YTicks))
	for i, t := range page.Chart.YTicks {
		ticks[i] = t.Label
	}
	fmt.Fprintf(c.out, "  equity curve: %d points | %s → %s | y-axis [%s]\n",
		len(page.Equity), eur(first.Equity), eur(last.Equity), strings.Join(ticks, " "))
}

// --- formatting ---

func agentLabel(a domain.Agent) string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	return a.ID
}

func eur(v float64) string {
	return "€" + humanize.FormatFloat("#,###.##", v)
}

func signedEUR(v float64) string {
	if v > 0 {
		return "+" + eur(v)
	}
	return eur(v)
}

func signedPct(ratio float64) string {
	return fmt.Sprintf("%+.2f%%", ratio*100)
}

func price(v float64) string {
	return humanize.FormatFloat("#,###.####", v)
}

func qty(v float64) string {
	return humanize.FtoaWithDigits(v, 8)
}

// shortTime recorta un timestamp a "MM-DD HH:MM"; los inválidos se muestran tal cual.
func shortTime(raw string) string {
	t, ok := domain.ParseTimestamp(raw)
	if !ok {
		return orDash(raw)
	}
	return t.UTC().Format("01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func orAll(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.FilterAll
	}
	return s
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
