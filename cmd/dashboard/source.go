package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/agentdash/config"
	"github.com/alejandrodnm/agentdash/internal/adapters/notify"
	"github.com/alejandrodnm/agentdash/internal/adapters/snapshot"
	"github.com/alejandrodnm/agentdash/internal/adapters/storage"
	"github.com/alejandrodnm/agentdash/internal/chart"
	"github.com/alejandrodnm/agentdash/internal/ports"
	"github.com/alejandrodnm/agentdash/internal/view"
)

// openSource elige la fuente del snapshot: database > url > path.
// El cierre devuelto es no-op para las fuentes JSON.
func openSource(cfg *config.Config) (ports.SnapshotSource, func(), error) {
	if dsn := cfg.Snapshot.Database; dsn != "" {
		db, err := storage.NewSQLiteSource(dsn)
		if err != nil {
			return nil, nil, err
		}
		db.WithTradesLimit(cfg.Snapshot.TradesLimit)
		slog.Debug("snapshot source", "kind", "sqlite", "dsn", dsn, "trades_limit", cfg.Snapshot.TradesLimit)
		return db, func() { db.Close() }, nil
	}

	src, err := snapshot.NewSource(cfg.Snapshot.Path, cfg.Snapshot.URL, snapshot.HTTPOptions{
		RequestsPerSecond: cfg.Snapshot.RequestsPerSecond,
		Timeout:           cfg.Timeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("snapshot source", "path", cfg.Snapshot.Path, "url", cfg.Snapshot.URL)
	return src, func() {}, nil
}

// svgWriter devuelve un hook que reescribe el SVG del agente seleccionado en cada ciclo.
func svgWriter(path string, layout chart.Layout) func(view.Page) error {
	return func(page view.Page) error {
		if !page.HasSelected {
			return nil
		}
		tmp, err := os.CreateTemp(filepath.Dir(path), ".equity-*.svg")
		if err != nil {
			return fmt.Errorf("svg: %w", err)
		}
		defer os.Remove(tmp.Name())

		title := fmt.Sprintf("%s equity", page.Selected.ID)
		if err := notify.WriteEquitySVG(tmp, page.Chart, layout, title); err != nil {
			tmp.Close()
			return fmt.Errorf("svg: write: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("svg: close: %w", err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			return fmt.Errorf("svg: rename: %w", err)
		}
		slog.Debug("equity svg written", "path", path, "agent", page.Selected.ID)
		return nil
	}
}
