package statefile

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/canonicaljson"
	"github.com/osvaldoandrade/movectl/internal/infra/filesystem"
	"github.com/osvaldoandrade/movectl/internal/infra/schema"
)

const statePerm os.FileMode = 0o644

//go:embed schema.json
var stateSchema []byte

var stateDocument = schema.MustCompile("publish-state.json", stateSchema)

// Store keeps publish-result.<network>.json next to each package.
type Store struct {
	canonicalizer canonicaljson.Canonicalizer
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Read(ctx context.Context, packagePath string, network domain.Network) (domain.PublishState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := domain.StatePath(packagePath, network)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateNotFound, path)
		}
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}

	if err := stateDocument.ValidateJSON(data); err != nil {
		return nil, &domain.StateCorruptError{Path: path, Err: err}
	}
	state := domain.PublishState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &domain.StateCorruptError{Path: path, Err: err}
	}
	return state, nil
}

// Write replaces the state file with state. Keys are written in canonical
// order so repeated writes of the same state produce identical files.
func (s *Store) Write(ctx context.Context, state domain.PublishState, packagePath string, network domain.Network) error {
	path := domain.StatePath(packagePath, network)
	data, err := s.canonicalizer.Pretty(ctx, state)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", path, err)
	}
	if err := stateDocument.ValidateJSON(data); err != nil {
		return fmt.Errorf("state for %s: %w", path, err)
	}
	return filesystem.WriteFileAtomic(ctx, path, data, statePerm)
}
