package pictures

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/farsightlab/arv-backend/internal/types"
)

// PoolSource serves candidates from a fixed in-memory pool. Used for
// keyless deployments and deterministic tests; sampling is uniform with
// replacement (the selector handles duplicates).
type PoolSource struct {
	mu   sync.Mutex
	pool []types.Picture
	rng  *rand.Rand
}

func NewPoolSource(pool []types.Picture, seed int64) (*PoolSource, error) {
	if len(pool) < 2 {
		return nil, fmt.Errorf("pool needs at least 2 pictures, got %d", len(pool))
	}
	cp := make([]types.Picture, len(pool))
	copy(cp, pool)
	return &PoolSource{
		pool: cp,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// defaultPool backs keyless deployments. Average colors sit near distinct
// corners of the RGB cube and the descriptions share no vocabulary, so any
// two entries satisfy the dissimilarity gate.
var defaultPool = []types.Picture{
	{ID: "pool-harbor", ImageURL: "https://picsum.photos/seed/harbor/1200/800", Description: "fishing boats moored in a deep blue harbor at dusk", AvgColor: "#2a2ad4"},
	{ID: "pool-sunflowers", ImageURL: "https://picsum.photos/seed/sunflowers/1200/800", Description: "yellow sunflower field stretching to the horizon", AvgColor: "#e6d22a"},
	{ID: "pool-peak", ImageURL: "https://picsum.photos/seed/peak/1200/800", Description: "snow covered mountain peak above white clouds", AvgColor: "#f0f0f0"},
	{ID: "pool-rainforest", ImageURL: "https://picsum.photos/seed/rainforest/1200/800", Description: "mossy green rainforest trail lined with tall ferns", AvgColor: "#2ab02a"},
	{ID: "pool-lanterns", ImageURL: "https://picsum.photos/seed/lanterns/1200/800", Description: "red lanterns hanging over a crowded street market", AvgColor: "#d42a2a"},
	{ID: "pool-orchids", ImageURL: "https://picsum.photos/seed/orchids/1200/800", Description: "purple orchids blooming inside a humid greenhouse", AvgColor: "#c82ac8"},
	{ID: "pool-lagoon", ImageURL: "https://picsum.photos/seed/lagoon/1200/800", Description: "turquoise lagoon holding one small wooden canoe", AvgColor: "#2ac8c8"},
	{ID: "pool-midnight", ImageURL: "https://picsum.photos/seed/midnight/1200/800", Description: "starless midnight sky above an empty dark plain", AvgColor: "#1a1a1a"},
}

// NewDefaultPoolSource serves the built-in pool, seeded from the clock.
// Used when no picture API key is configured.
func NewDefaultPoolSource() (*PoolSource, error) {
	return NewPoolSource(defaultPool, time.Now().UnixNano())
}

func (s *PoolSource) FetchRandomCandidate(ctx context.Context) (*types.Picture, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	s.mu.Lock()
	pic := s.pool[s.rng.Intn(len(s.pool))]
	s.mu.Unlock()
	return &pic, nil
}
