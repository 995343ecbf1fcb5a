package utils

import (
	"testing"
)

func TestNewRandSource(t *testing.T) {
	rng := NewRandSource(12345)
	if rng.Seed() != 12345 {
		t.Fatalf("expected seed 12345, got %d", rng.Seed())
	}

	rng2 := NewRandSource(0)
	if rng2.Seed() == 0 {
		t.Fatal("Expected zero seed to be replaced with a time-derived seed")
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceDeterministic(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)
	for i := 0; i < 50; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}

	// A replay from the reported seed of a time-seeded source matches too.
	c := NewRandSource(0)
	d := NewRandSource(c.Seed())
	if c.Float64() != d.Float64() {
		t.Fatalf("replay from Seed() diverged")
	}
}

func TestSequenceSource(t *testing.T) {
	s := NewSequenceSource(0.1, 0.2)
	got := []float64{s.Float64(), s.Float64(), s.Float64()}
	want := []float64{0.1, 0.2, 0.1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw %d = %v, want %v", i, got[i], want[i])
		}
	}
	if s.Draws() != 3 {
		t.Fatalf("Draws = %d, want 3", s.Draws())
	}

	if v := NewSequenceSource().Float64(); v != 0.5 {
		t.Fatalf("empty sequence should default to 0.5, got %v", v)
	}
}
