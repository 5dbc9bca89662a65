package rules

import (
	"log/slog"
	"sort"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// Cooldowns maps rule id to the tick it last fired. One map per AI player,
// owned by the caller; the selector only reads it.
type Cooldowns map[string]int

// Ready reports whether rule r is off cooldown at tick. A rule that never
// fired counts as having fired at tick 0.
func (c Cooldowns) Ready(r *model.MacroRule, tick int) bool {
	return tick-c[r.ID] >= r.CooldownTicks
}

// Commit records that the rule's action was carried out at tick.
func (c Cooldowns) Commit(ruleID string, tick int) {
	c[ruleID] = tick
}

// Engine holds a rule set pre-sorted by priority. It is immutable after
// construction and can be shared by every player of the same faction.
type Engine struct {
	rules []*model.MacroRule
}

// NewEngine copies the rules and stable-sorts them by priority, highest
// first; equal priorities keep their input order.
func NewEngine(rules []model.MacroRule) *Engine {
	return &Engine{rules: sortRules(rules)}
}

// Rules returns the rule set in evaluation order.
func (e *Engine) Rules() []*model.MacroRule { return e.rules }

// Select returns the first rule, in priority order, that is off cooldown and
// fires. ok is false when nothing fires, which is a normal outcome. The
// cooldown map is not modified; callers Commit once the action succeeds.
func (e *Engine) Select(s *model.Snapshot, cooldowns Cooldowns) (rule *model.MacroRule, ok bool) {
	if s == nil {
		return nil, false
	}
	for _, r := range e.rules {
		if !cooldowns.Ready(r, s.Tick) {
			continue
		}
		if Fires(r, s) {
			slog.Debug("rule fired", "rule", r.ID, "priority", r.Priority, "tick", s.Tick, "player", s.PlayerID)
			return r, true
		}
	}
	return nil, false
}

// Select is the one-shot form of Engine.Select for callers that do not keep
// an Engine around.
func Select(rules []model.MacroRule, s *model.Snapshot, cooldowns Cooldowns) (*model.MacroRule, bool) {
	return NewEngine(rules).Select(s, cooldowns)
}

func sortRules(rules []model.MacroRule) []*model.MacroRule {
	out := make([]*model.MacroRule, len(rules))
	for i := range rules {
		r := rules[i]
		out[i] = &r
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
