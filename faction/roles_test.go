package faction

import (
	"testing"

	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

func roleConfig() *model.FactionAIConfig {
	return &model.FactionAIConfig{
		ID: "vanguard",
		Roles: map[string]model.Role{
			"worker":     {IDs: []string{"worker"}},
			"production": {IDs: []string{"barracks", "factory"}},
			"empty":      {},
		},
	}
}

func TestResolveRole(t *testing.T) {
	cfg := roleConfig()
	tests := []struct {
		target string
		want   string
		ok     bool
	}{
		{"@worker", "worker", true},
		{"@production", "barracks", true},
		{"marine", "marine", true},
		{"@empty", "", false},
		{"@missing", "", false},
	}
	for _, tc := range tests {
		got, ok := ResolveRole(cfg, tc.target)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ResolveRole(%q) = %q, %v, want %q, %v", tc.target, got, ok, tc.want, tc.ok)
		}
	}
	if _, ok := ResolveRole(nil, "@worker"); ok {
		t.Error("ResolveRole(nil, role) should fail")
	}
}

func TestRoleCount(t *testing.T) {
	cfg := roleConfig()
	s := &model.Snapshot{
		BuildingCounts: map[string]int{"barracks": 2, "factory": 1},
		UnitCounts:     map[string]int{"worker": 19},
	}
	if got := RoleCount(cfg, s, "production"); got != 3 {
		t.Errorf("RoleCount(production) = %d, want 3", got)
	}
	if got := RoleCount(cfg, s, "worker"); got != 19 {
		t.Errorf("RoleCount(worker) = %d, want 19", got)
	}
	if got := RoleCount(cfg, nil, "worker"); got != 0 {
		t.Errorf("RoleCount(nil snapshot) = %d, want 0", got)
	}
}

func TestHasRole(t *testing.T) {
	cfg := roleConfig()
	if !HasRole(cfg, "worker") {
		t.Error("HasRole(worker) = false")
	}
	if HasRole(cfg, "empty") || HasRole(cfg, "missing") || HasRole(nil, "worker") {
		t.Error("HasRole should be false for empty, missing or nil config")
	}
}

func TestLintRoles(t *testing.T) {
	cfg := roleConfig()
	cfg.MacroRules = []model.MacroRule{
		{ID: "workers", Action: model.MacroAction{Type: model.ActionTrain, TargetID: "@worker"}},
		{ID: "supply", Action: model.MacroAction{Type: model.ActionBuild, TargetID: "@supply"}},
		{ID: "tech", Action: model.MacroAction{Type: model.ActionBuild, Options: []model.ActionOption{
			{ID: "factory", Weight: 1},
			{ID: "@empty", Weight: 1},
		}}},
	}
	findings := LintRoles(cfg)
	if len(findings) != 2 {
		t.Fatalf("findings = %v, want 2", findings)
	}
	if findings[0].RuleID != "supply" || findings[1].RuleID != "tech" {
		t.Errorf("findings = %v, want supply then tech", findings)
	}
	if rules.HasErrors(findings) {
		t.Error("unfilled roles should be warnings")
	}
}
