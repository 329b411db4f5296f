// Package snapshot lee el export JSON del dashboard desde disco o por HTTP.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

// ErrNoSource se devuelve cuando no hay ni path ni URL configurados.
var ErrNoSource = errors.New("snapshot: no source configured")

// Decode lee un snapshot JSON. Los campos numéricos malformados valen 0 y los arrays
// ausentes quedan vacíos; solo falla si el documento no es un objeto JSON.
func Decode(r io.Reader) (domain.Snapshot, error) {
	var raw snapshotDTO
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot.Decode: %w", err)
	}
	return mapSnapshot(raw), nil
}

// FileSource lee el snapshot de un fichero local en cada Load.
type FileSource struct {
	path string
}

// NewFileSource crea una FileSource para path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implementa ports.SnapshotSource.
func (s *FileSource) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot.FileSource.Load: %w", err)
	}
	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot.FileSource.Load: %s: %w", s.path, err)
	}
	return snap, nil
}
