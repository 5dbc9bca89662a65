package rules

import (
	"testing"

	"github.com/nstehr/vimy/vimy-macro/model"
)

func TestScore(t *testing.T) {
	s := baseSnapshot()
	u := model.UtilityScore{
		BaseScore: 10,
		Conditions: []model.UtilityCondition{
			{Type: model.CondUnderAttack, Operator: model.OpEqual, Value: model.Bool(true), Multiplier: 3},
			{Type: model.CondMinerals, Operator: model.OpGreater, Value: model.Number(1000), Multiplier: 0},
			{Type: model.CondArmySupply, Operator: model.OpGreater, CompareRef: "enemyArmyStrength", Multiplier: 1.5},
		},
	}
	// 10 × 3 (under attack) × 1.5 (18 > 10); the false 0× condition is a no-op.
	if got := Score(u, s); got != 45 {
		t.Errorf("Score = %v, want 45", got)
	}
}

func TestScoreNoConditions(t *testing.T) {
	if got := Score(model.UtilityScore{BaseScore: 7}, baseSnapshot()); got != 7 {
		t.Errorf("Score = %v, want 7", got)
	}
}

func TestScoreUnknownConditionIsNoop(t *testing.T) {
	u := model.UtilityScore{
		BaseScore:  4,
		Conditions: []model.UtilityCondition{{Type: "enemyStrategy", Operator: model.OpEqual, Value: model.String("rush"), Multiplier: 10}},
	}
	if got := Score(u, baseSnapshot()); got != 4 {
		t.Errorf("Score = %v, want 4", got)
	}
}

func TestRank(t *testing.T) {
	s := baseSnapshot()
	options := map[string]model.UtilityScore{
		"attack": {BaseScore: 5},
		"defend": {BaseScore: 5, Conditions: []model.UtilityCondition{
			{Type: model.CondUnderAttack, Operator: model.OpHas, Multiplier: 4},
		}},
		"expand": {BaseScore: 5},
		"idle":   {BaseScore: 1},
	}
	got := Rank(options, s)
	want := []string{"defend", "attack", "expand", "idle"}
	if len(got) != len(want) {
		t.Fatalf("Rank returned %d options, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("rank[%d] = %s, want %s", i, got[i].Name, w)
		}
	}
	if got[0].Score != 20 {
		t.Errorf("defend score = %v, want 20", got[0].Score)
	}
}
