package dashboard

// concurrent.go: worker pool para analizar todos los agentes en paralelo.
//
// AnalyzeAgent es re-entrante (solo toca estado local), así que cada worker trabaja
// sobre el mismo snapshot sin locks. El resultado sale en orden de ranking.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

// AnalyzeAll analiza todos los agentes del snapshot con un worker pool y devuelve
// los resultados en el orden de Ranked(). Si workers <= 0 usa runtime.NumCPU() × 2.
// Si el contexto se cancela, los agentes pendientes quedan sin analizar y se devuelve
// ctx.Err().
func (d *Dashboard) AnalyzeAll(ctx context.Context, workers int) ([]domain.AgentAnalysis, error) {
	ranked := d.Ranked()
	if len(ranked) == 0 {
		return []domain.AgentAnalysis{}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	workers = min(workers, len(ranked))

	type work struct {
		index   int
		agentID string
	}

	workCh := make(chan work, len(ranked))
	results := make([]domain.AgentAnalysis, len(ranked))

	// Cada worker escribe solo en su índice: no hace falta canal de resultados.
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					continue
				}
				results[w.index] = domain.AnalyzeAgent(d.snap, w.agentID)
				slog.Debug("agent analyzed", "agent", w.agentID,
					"closed", len(results[w.index].ClosedTrades))
			}
		}()
	}

	for i, a := range ranked {
		workCh <- work{index: i, agentID: a.ID}
	}
	close(workCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("concurrent analysis complete", "agents", len(ranked), "workers", workers)
	return results, nil
}
