package snapshot

import "github.com/alejandrodnm/agentdash/internal/ports"

// NewSource elige la fuente JSON: url tiene prioridad sobre path.
// Devuelve ErrNoSource si ambos están vacíos.
func NewSource(path, url string, opts HTTPOptions) (ports.SnapshotSource, error) {
	switch {
	case url != "":
		return NewHTTPSource(url, opts), nil
	case path != "":
		return NewFileSource(path), nil
	}
	return nil, ErrNoSource
}
