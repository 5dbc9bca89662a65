package rng

import "testing"

func TestRandDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("draw %d: %f != %f", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d out of range: %f", i, x)
		}
	}
}

func TestZeroSeedMatchesOne(t *testing.T) {
	if New(0).Next() != New(1).Next() {
		t.Error("seed 0 should behave like seed 1")
	}
}

func TestSequenceWraps(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	want := []float64{0.1, 0.9, 0.1}
	for i, w := range want {
		if got := s.Next(); got != w {
			t.Errorf("Next() #%d = %f, want %f", i, got, w)
		}
	}
	if got := NewSequence().Next(); got != 0 {
		t.Errorf("empty sequence = %f, want 0", got)
	}
}

func TestFunc(t *testing.T) {
	var src Source = Func(func() float64 { return 0.25 })
	if src.Next() != 0.25 {
		t.Error("Func did not forward")
	}
}

func TestWeighted(t *testing.T) {
	weights := []float64{3, 0, 1}
	w := func(i int) float64 { return weights[i] }

	tests := []struct {
		roll float64
		want int
	}{
		{0.0, 0},
		{0.5, 0},
		{0.75, 0}, // roll = 3 exactly, boundary is inclusive
		{0.76, 2},
		{0.999, 2},
	}
	for _, tc := range tests {
		got := Weighted(NewSequence(tc.roll), len(weights), w)
		if got != tc.want {
			t.Errorf("Weighted(roll=%v) = %d, want %d", tc.roll, got, tc.want)
		}
	}
}

func TestWeightedEdges(t *testing.T) {
	if got := Weighted(New(1), 0, nil); got != -1 {
		t.Errorf("empty = %d, want -1", got)
	}
	zeros := func(int) float64 { return 0 }
	if got := Weighted(New(1), 3, zeros); got != 0 {
		t.Errorf("all-zero = %d, want 0", got)
	}
	// A roll past 1.0 is outside the Source contract but must still land on
	// the last entry rather than fall off the end.
	weights := []float64{1, 1, 0}
	got := Weighted(NewSequence(1.0000001), 3, func(i int) float64 { return weights[i] })
	if got != 2 {
		t.Errorf("drift = %d, want 2", got)
	}
	// A zero roll stops on the first entry, whatever its weight.
	leading := []float64{0, 1}
	if got := Weighted(NewSequence(0), 2, func(i int) float64 { return leading[i] }); got != 0 {
		t.Errorf("zero roll = %d, want 0", got)
	}
}
