package ports

import (
	"context"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

// SnapshotSource entrega el snapshot más reciente del sistema de trading.
type SnapshotSource interface {
	// Load lee el snapshot completo. Cada llamada devuelve una copia independiente;
	// el core nunca la muta.
	Load(ctx context.Context) (domain.Snapshot, error)
}
