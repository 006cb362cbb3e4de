package pictures

import (
	"context"
	"errors"
	"testing"

	"github.com/farsightlab/arv-backend/internal/types"
)

func TestNewPoolSourceRejectsTinyPool(t *testing.T) {
	if _, err := NewPoolSource([]types.Picture{{ID: "only"}}, 1); err == nil {
		t.Fatal("expected error for single-picture pool")
	}
}

func TestPoolSourceDrawsFromPool(t *testing.T) {
	pool := []types.Picture{
		{ID: "dark", AvgColor: "#000000"},
		{ID: "bright", AvgColor: "#ffffff"},
	}
	source, err := NewPoolSource(pool, 7)
	if err != nil {
		t.Fatalf("NewPoolSource: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pic, err := source.FetchRandomCandidate(context.Background())
		if err != nil {
			t.Fatalf("FetchRandomCandidate: %v", err)
		}
		if pic.ID != "dark" && pic.ID != "bright" {
			t.Fatalf("drew %q, not a pool member", pic.ID)
		}
		seen[pic.ID] = true
	}
	if !seen["dark"] || !seen["bright"] {
		t.Fatalf("50 draws never covered both members: %v", seen)
	}
}

func TestPoolSourceDeterministicForSeed(t *testing.T) {
	pool := []types.Picture{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	first, err := NewPoolSource(pool, 42)
	if err != nil {
		t.Fatalf("NewPoolSource: %v", err)
	}
	second, err := NewPoolSource(pool, 42)
	if err != nil {
		t.Fatalf("NewPoolSource: %v", err)
	}

	for i := 0; i < 20; i++ {
		p1, err := first.FetchRandomCandidate(context.Background())
		if err != nil {
			t.Fatalf("FetchRandomCandidate: %v", err)
		}
		p2, err := second.FetchRandomCandidate(context.Background())
		if err != nil {
			t.Fatalf("FetchRandomCandidate: %v", err)
		}
		if p1.ID != p2.ID {
			t.Fatalf("draw %d diverged: %q vs %q", i, p1.ID, p2.ID)
		}
	}
}

func TestPoolSourceHonorsCancelledContext(t *testing.T) {
	source, err := NewDefaultPoolSource()
	if err != nil {
		t.Fatalf("NewDefaultPoolSource: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.FetchRandomCandidate(ctx); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err=%v, want ErrSourceUnavailable", err)
	}
}

func TestDefaultPoolIsWellFormed(t *testing.T) {
	if len(defaultPool) < 2 {
		t.Fatalf("default pool has %d entries, need at least 2", len(defaultPool))
	}
	ids := map[string]bool{}
	for _, pic := range defaultPool {
		if pic.ID == "" || pic.ImageURL == "" {
			t.Fatalf("incomplete pool entry: %+v", pic)
		}
		if ids[pic.ID] {
			t.Fatalf("duplicate pool id %q", pic.ID)
		}
		ids[pic.ID] = true
	}
}
