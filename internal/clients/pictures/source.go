package pictures

import (
	"context"
	"errors"

	"github.com/farsightlab/arv-backend/internal/types"
)

// ErrSourceUnavailable wraps any transport or provider failure so callers
// can distinguish "the source is down" from selection-policy failures.
var ErrSourceUnavailable = errors.New("picture source unavailable")

// Source yields one random candidate picture per call. Implementations are
// stateless from the protocol's point of view; dissimilarity and exclusion
// policy belong to the selector, not here.
type Source interface {
	FetchRandomCandidate(ctx context.Context) (*types.Picture, error)
}
