package deploy

import (
	"context"
	"errors"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

// manifestSwaps tracks packages whose Move.toml currently holds a network
// copy. release restores them in reverse order of swapping.
type manifestSwaps struct {
	manifests Manifests
	network   domain.Network
	swapped   []string
}

func newManifestSwaps(manifests Manifests, network domain.Network) *manifestSwaps {
	return &manifestSwaps{manifests: manifests, network: network}
}

func (s *manifestSwaps) swap(ctx context.Context, packagePath string) error {
	if err := s.manifests.SwapToNetworkManifest(ctx, packagePath, s.network); err != nil {
		return err
	}
	s.swapped = append(s.swapped, packagePath)
	return nil
}

// release runs even after cancellation; every restore is attempted.
func (s *manifestSwaps) release(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(s.swapped) - 1; i >= 0; i-- {
		if err := s.manifests.RestoreManifest(ctx, s.swapped[i]); err != nil {
			errs = append(errs, err)
		}
	}
	s.swapped = nil
	return errors.Join(errs...)
}

// withRestore keeps the operation's error first so callers matching on it
// still see it when a restore also failed.
func withRestore(original, restoreErr error) error {
	if restoreErr == nil {
		return original
	}
	if original == nil {
		return restoreErr
	}
	return errors.Join(original, restoreErr)
}
