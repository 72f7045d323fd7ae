package model

import (
	"math"
	"testing"
)

func TestExpectedEvenMatchup(t *testing.T) {
	elo := NewElo(0)
	if got := elo.Expected("a", "b"); got != 0.5 {
		t.Errorf("expected 0.5 for two unseen players, got %v", got)
	}
}

func TestExpectedSymmetry(t *testing.T) {
	elo := NewElo(32)
	elo.Record("a", "b")
	elo.Record("a", "c")

	pab := elo.Expected("a", "b")
	pba := elo.Expected("b", "a")
	if math.Abs(pab+pba-1.0) > 1e-12 {
		t.Errorf("expected complementary probabilities, got %v + %v", pab, pba)
	}
	if pab <= 0.5 {
		t.Errorf("expected winner favoured, got %v", pab)
	}
}

func TestRecordMovesRatings(t *testing.T) {
	elo := NewElo(32)
	elo.Record("winner", "loser")

	// First result between unseen players moves each side by K/2.
	if got := elo.Rating("winner"); got != 1516 {
		t.Errorf("expected winner rating 1516, got %v", got)
	}
	if got := elo.Rating("loser"); got != 1484 {
		t.Errorf("expected loser rating 1484, got %v", got)
	}
	if elo.Size() != 2 {
		t.Errorf("expected 2 rated players, got %d", elo.Size())
	}
}

func TestRecordUpsetMovesMore(t *testing.T) {
	elo := NewElo(32)
	for i := 0; i < 5; i++ {
		elo.Record("fav", "dog")
	}
	before := elo.Rating("dog")

	elo.Record("dog", "fav")
	gain := elo.Rating("dog") - before
	if gain <= 16 {
		t.Errorf("expected upset gain above K/2, got %v", gain)
	}
}

func TestNewEloDefaultsK(t *testing.T) {
	elo := NewElo(-5)
	elo.Record("a", "b")
	if got := elo.Rating("a"); got != 1516 {
		t.Errorf("expected default K of 32, got rating %v", got)
	}
}

func TestBlendWeights(t *testing.T) {
	if got := Blend(0.40, 0.60, 0); got != 0.40 {
		t.Errorf("weight 0 should trust the market, got %v", got)
	}
	if got := Blend(0.40, 0.60, 1); got != 0.60 {
		t.Errorf("weight 1 should trust the model, got %v", got)
	}
	if got := Blend(0.40, 0.60, 0.5); math.Abs(got-0.50) > 1e-12 {
		t.Errorf("expected midpoint 0.50, got %v", got)
	}
}

func TestBlendClampsInputs(t *testing.T) {
	if got := Blend(1.4, -0.2, 0.5); got != 0.5 {
		t.Errorf("expected clamped blend 0.5, got %v", got)
	}
	if got := Blend(0.3, 0.7, 2.0); got != 0.7 {
		t.Errorf("expected weight clamped to 1, got %v", got)
	}
	if got := Blend(0.3, 0.7, -1.0); got != 0.3 {
		t.Errorf("expected weight clamped to 0, got %v", got)
	}
}
