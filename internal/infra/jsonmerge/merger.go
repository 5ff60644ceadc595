package jsonmerge

import (
	"context"
	"fmt"

	"github.com/evanphx/json-patch/v5"
	"github.com/go-json-experiment/json"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

// Merger applies RFC 7386 merge patches. Objects merge key by key, any other
// value in the patch replaces the target, and null removes a key.
type Merger struct{}

func (Merger) Merge(ctx context.Context, doc, patch []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("apply merge patch: %w", err)
	}
	return out, nil
}

// MergeState applies update to prior as a merge patch. Nil values in update
// remove keys and nested objects merge recursively. A nil prior yields a
// copy of update without its nil values.
func (m Merger) MergeState(ctx context.Context, prior, update domain.PublishState) (domain.PublishState, error) {
	if prior == nil {
		prior = domain.PublishState{}
	}
	doc, err := json.Marshal(prior)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	patch, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("encode state update: %w", err)
	}

	merged, err := m.Merge(ctx, doc, patch)
	if err != nil {
		return nil, err
	}

	out := domain.PublishState{}
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("decode merged state: %w", err)
	}
	return out, nil
}
