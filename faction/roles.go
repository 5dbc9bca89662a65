package faction

import (
	"strings"

	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

// RolePrefix marks an action target as an abstract role ("@worker") rather
// than a concrete content id.
const RolePrefix = "@"

// ResolveRole maps an "@role" target to the faction's preferred concrete id.
// Concrete ids pass through unchanged. ok is false for a role the faction
// does not define or defines with no ids.
func ResolveRole(cfg *model.FactionAIConfig, target string) (id string, ok bool) {
	name, isRole := strings.CutPrefix(target, RolePrefix)
	if !isRole {
		return target, true
	}
	if cfg == nil {
		return "", false
	}
	r, found := cfg.Roles[name]
	if !found || len(r.IDs) == 0 {
		return "", false
	}
	return r.IDs[0], true
}

// RoleCount sums the snapshot's unit and building counts over every id that
// fills the role.
func RoleCount(cfg *model.FactionAIConfig, s *model.Snapshot, role string) int {
	if cfg == nil || s == nil {
		return 0
	}
	n := 0
	for _, id := range cfg.Roles[role].IDs {
		n += s.UnitCount(id) + s.BuildingCount(id)
	}
	return n
}

// HasRole reports whether the faction defines role with at least one id.
func HasRole(cfg *model.FactionAIConfig, role string) bool {
	return cfg != nil && len(cfg.Roles[role].IDs) > 0
}

// LintRoles reports "@role" action targets the faction's role table does not
// fill. Such rules still fire, but resolve to no target.
func LintRoles(cfg *model.FactionAIConfig) []rules.Finding {
	var out []rules.Finding
	check := func(ruleID, target string) {
		role, isRole := strings.CutPrefix(target, RolePrefix)
		if isRole && !HasRole(cfg, role) {
			out = append(out, rules.Finding{RuleID: ruleID, Severity: rules.SeverityWarning, Message: "target " + target + " names a role with no ids"})
		}
	}
	for _, r := range cfg.MacroRules {
		check(r.ID, r.Action.TargetID)
		for _, o := range r.Action.Options {
			check(r.ID, o.ID)
		}
	}
	return out
}
