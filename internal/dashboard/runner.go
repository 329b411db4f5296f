package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/domain"
	"github.com/alejandrodnm/agentdash/internal/ports"
	"github.com/alejandrodnm/agentdash/internal/view"
)

// RunnerConfig contiene la configuración del loop de refresco.
type RunnerConfig struct {
	Interval  time.Duration
	Once      bool // un solo ciclo y salir
	Selection domain.Selection
	Workers   int // goroutines para el overview (0 = NumCPU*2)
	Layout    chart.Layout
}

// Runner recarga el snapshot periódicamente y reporta la vista resultante.
type Runner struct {
	cfg      RunnerConfig
	source   ports.SnapshotSource
	reporter ports.Reporter
	onPage   []func(view.Page) error
}

// NewRunner crea un Runner con las dependencias inyectadas.
func NewRunner(cfg RunnerConfig, source ports.SnapshotSource, reporter ports.Reporter) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Runner{cfg: cfg, source: source, reporter: reporter}
}

// OnPage registra un callback que recibe cada página tras reportarla (p.ej. exportar SVG).
func (r *Runner) OnPage(fn func(view.Page) error) {
	r.onPage = append(r.onPage, fn)
}

// Run ejecuta el loop hasta que el contexto se cancele.
// Si cfg.Once está activo, ejecuta un solo ciclo y devuelve su error.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("dashboard starting",
		"interval", r.cfg.Interval,
		"once", r.cfg.Once,
		"agent", r.cfg.Selection.AgentID,
	)

	if err := r.runCycle(ctx); err != nil {
		slog.Error("refresh cycle failed", "err", err)
		if r.cfg.Once {
			return err
		}
	}
	if r.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dashboard stopped")
			return nil
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				slog.Error("refresh cycle failed", "err", err)
			}
		}
	}
}

// RunOnce carga el snapshot y arma la página sin reportarla.
func (r *Runner) RunOnce(ctx context.Context) (view.Page, error) {
	snap, err := r.source.Load(ctx)
	if err != nil {
		return view.Page{}, fmt.Errorf("dashboard.RunOnce: load snapshot: %w", err)
	}

	d := New(snap, r.cfg.Layout)
	if id := r.cfg.Selection.AgentID; id != "" {
		if _, ok := snap.FindAgent(id); !ok {
			slog.Warn("selected agent not in snapshot, using top performer", "agent", id)
		}
	}

	page := d.View(r.cfg.Selection)
	overview, err := d.AnalyzeAll(ctx, r.cfg.Workers)
	if err != nil {
		return view.Page{}, fmt.Errorf("dashboard.RunOnce: analyze: %w", err)
	}
	page.Overview = overview
	return page, nil
}

// runCycle arma la página, la reporta y ejecuta los callbacks.
func (r *Runner) runCycle(ctx context.Context) error {
	start := time.Now()
	cycleID := uuid.NewString()
	log := slog.With("cycle_id", cycleID)

	page, err := r.RunOnce(ctx)
	if err != nil {
		return err
	}

	if err := r.reporter.Report(ctx, page); err != nil {
		log.Warn("reporter error", "err", err)
	}
	for _, fn := range r.onPage {
		if err := fn(page); err != nil {
			log.Warn("page hook error", "err", err)
		}
	}

	attrs := []any{
		"agents", len(page.Ranked),
		"trades", len(page.Feed),
		"duration", time.Since(start).Round(time.Millisecond),
	}
	if page.HasSelected {
		attrs = append(attrs,
			"selected", page.Selected.ID,
			"closed", len(page.Analysis.ClosedTrades),
			"net_realized", fmt.Sprintf("%.2f", page.Analysis.Stats.NetRealizedEUR),
		)
	}
	log.Info("refresh cycle complete", attrs...)
	return nil
}
