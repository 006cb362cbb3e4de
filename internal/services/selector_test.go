package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/farsightlab/arv-backend/internal/clients/pictures"
	"github.com/farsightlab/arv-backend/internal/platform/apierr"
	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// scriptedSource replays a fixed candidate sequence, wrapping around an
// injected failure when set.
type scriptedSource struct {
	pics []types.Picture
	idx  int
	err  error
}

func (s *scriptedSource) FetchRandomCandidate(ctx context.Context) (*types.Picture, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.idx >= len(s.pics) {
		return nil, fmt.Errorf("%w: fixture sequence exhausted", pictures.ErrSourceUnavailable)
	}
	pic := s.pics[s.idx]
	s.idx++
	return &pic, nil
}

func TestSelectPairAcceptsDissimilarPair(t *testing.T) {
	source := &scriptedSource{pics: []types.Picture{
		{ID: "a", AvgColor: "#000000", Description: "dark forest path"},
		{ID: "b", AvgColor: "#ffffff", Description: "bright sandy beach"},
	}}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())

	first, second, err := sel.SelectPair(context.Background(), nil)
	if err != nil {
		t.Fatalf("SelectPair: %v", err)
	}
	if first.ID != "a" || second.ID != "b" {
		t.Fatalf("got pair (%s, %s), want (a, b)", first.ID, second.ID)
	}
}

func TestSelectPairRejectsSimilarThenAccepts(t *testing.T) {
	// Three near-identical-color candidates for the second slot, then a
	// dissimilar fourth: the pair must be accepted on the fourth attempt
	// with the first slot kept throughout.
	source := &scriptedSource{pics: []types.Picture{
		{ID: "first", AvgColor: "#101010"},
		{ID: "s1", AvgColor: "#141414"},
		{ID: "s2", AvgColor: "#181818"},
		{ID: "s3", AvgColor: "#121212"},
		{ID: "s4", AvgColor: "#fafafa"},
	}}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())

	first, second, err := sel.SelectPair(context.Background(), nil)
	if err != nil {
		t.Fatalf("SelectPair: %v", err)
	}
	if first.ID != "first" {
		t.Fatalf("first slot resampled: got %s", first.ID)
	}
	if second.ID != "s4" {
		t.Fatalf("got second=%s, want s4", second.ID)
	}
	if source.idx != 5 {
		t.Fatalf("consumed %d fixtures, want 5", source.idx)
	}
}

func TestSelectPairSkipsExcludedAndDuplicateIDs(t *testing.T) {
	source := &scriptedSource{pics: []types.Picture{
		{ID: "banned", AvgColor: "#000000"},
		{ID: "a", AvgColor: "#000000"},
		{ID: "a", AvgColor: "#000000"}, // duplicate of first slot
		{ID: "banned", AvgColor: "#ffffff"},
		{ID: "b", AvgColor: "#ffffff"},
	}}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())

	excluded := map[string]struct{}{"banned": {}}
	first, second, err := sel.SelectPair(context.Background(), excluded)
	if err != nil {
		t.Fatalf("SelectPair: %v", err)
	}
	if first.ID != "a" || second.ID != "b" {
		t.Fatalf("got pair (%s, %s), want (a, b)", first.ID, second.ID)
	}
}

func TestSelectPairExhaustsAttemptBudget(t *testing.T) {
	policy := DefaultSelectorPolicy()
	policy.MaxPairAttempts = 3

	pics := []types.Picture{{ID: "first", AvgColor: "#101010"}}
	for i := 0; i < policy.MaxPairAttempts; i++ {
		pics = append(pics, types.Picture{ID: fmt.Sprintf("s%d", i), AvgColor: "#121212"})
	}
	source := &scriptedSource{pics: pics}
	sel := NewSelector(newTestLogger(t), source, policy)

	_, _, err := sel.SelectPair(context.Background(), nil)
	if !apierr.IsCode(err, apierr.CodeSelectionExhausted) {
		t.Fatalf("got err %v, want selection_exhausted", err)
	}
}

func TestSelectPairSlotExhaustion(t *testing.T) {
	// Every candidate is excluded, so the first slot can never be filled.
	source := &scriptedSource{pics: []types.Picture{
		{ID: "x"}, {ID: "x"}, {ID: "x"}, {ID: "x"}, {ID: "x"}, {ID: "x"},
	}}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())

	_, _, err := sel.SelectPair(context.Background(), map[string]struct{}{"x": {}})
	if !apierr.IsCode(err, apierr.CodeSelectionExhausted) {
		t.Fatalf("got err %v, want selection_exhausted", err)
	}
}

func TestSelectPairPropagatesSourceFailure(t *testing.T) {
	source := &scriptedSource{err: fmt.Errorf("%w: 503", pictures.ErrSourceUnavailable)}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())

	_, _, err := sel.SelectPair(context.Background(), nil)
	if !apierr.IsCode(err, apierr.CodeSourceUnavailable) {
		t.Fatalf("got err %v, want source_unavailable", err)
	}
	if !errors.Is(err, pictures.ErrSourceUnavailable) {
		t.Fatalf("source error not wrapped: %v", err)
	}
}

func TestSelectPairFromBuiltInPool(t *testing.T) {
	source, err := pictures.NewDefaultPoolSource()
	if err != nil {
		t.Fatalf("NewDefaultPoolSource: %v", err)
	}
	sel := NewSelector(newTestLogger(t), source, DefaultSelectorPolicy())
	policy := DefaultSelectorPolicy()

	// The built-in pool must reliably yield acceptable pairs; a handful of
	// runs guards the pool's spread, not the sampler's luck.
	for i := 0; i < 10; i++ {
		first, second, err := sel.SelectPair(context.Background(), nil)
		if err != nil {
			t.Fatalf("SelectPair run %d: %v", i, err)
		}
		if first.ID == second.ID {
			t.Fatalf("run %d returned the same picture twice: %s", i, first.ID)
		}
		if !policy.Accepts(first, second) {
			t.Fatalf("run %d returned a pair failing the dissimilarity gate: %s vs %s", i, first.ID, second.ID)
		}
	}
}
