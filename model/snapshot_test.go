package model

import "testing"

func TestSupplyRatio(t *testing.T) {
	tests := []struct {
		supply, max, want float64
	}{
		{45, 50, 0.9},
		{0, 0, 0},
		{10, 0, 0},
	}
	for _, tc := range tests {
		s := Snapshot{Supply: tc.supply, MaxSupply: tc.max}
		if got := s.SupplyRatio(); got != tc.want {
			t.Errorf("SupplyRatio(%v/%v) = %v, want %v", tc.supply, tc.max, got, tc.want)
		}
	}
}

func TestWorkerSaturation(t *testing.T) {
	s := Snapshot{Workers: 16, Bases: 2}
	if got := s.WorkerSaturation(); got != 0.5 {
		t.Errorf("WorkerSaturation with default optimum = %v, want 0.5", got)
	}

	s.Config = &FactionAIConfig{Economy: EconomyConfig{OptimalWorkersPerBase: 8}}
	if got := s.WorkerSaturation(); got != 1 {
		t.Errorf("WorkerSaturation with optimum 8 = %v, want 1", got)
	}

	noBases := Snapshot{Workers: 12}
	if got := noBases.WorkerSaturation(); got != 0 {
		t.Errorf("WorkerSaturation with no bases = %v, want 0", got)
	}
}

func TestKeyedCountsDefaultToZero(t *testing.T) {
	s := Snapshot{BuildingCounts: map[string]int{"barracks": 2}}
	if got := s.BuildingCount("barracks"); got != 2 {
		t.Errorf("BuildingCount(barracks) = %d, want 2", got)
	}
	if got := s.BuildingCount("nonexistent"); got != 0 {
		t.Errorf("BuildingCount(nonexistent) = %d, want 0", got)
	}
	if got := s.UnitCount("marine"); got != 0 {
		t.Errorf("UnitCount on nil map = %d, want 0", got)
	}
}
