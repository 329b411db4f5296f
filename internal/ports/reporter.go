package ports

import (
	"context"

	"github.com/alejandrodnm/agentdash/internal/view"
)

// Reporter presenta una vista del dashboard al usuario.
type Reporter interface {
	// Report muestra la página ya calculada. En consola imprime tablas.
	Report(ctx context.Context, page view.Page) error
}
