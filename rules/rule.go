package rules

import (
	"slices"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// Fires reports whether a rule applies to the snapshot's difficulty and
// personality and all of its conditions hold. Cooldowns are the selector's
// concern, not checked here.
func Fires(r *model.MacroRule, s *model.Snapshot) bool {
	if s == nil {
		return false
	}
	if len(r.Difficulties) > 0 && !slices.Contains(r.Difficulties, s.Difficulty) {
		return false
	}
	if len(r.Personalities) > 0 && !slices.Contains(r.Personalities, s.Personality) {
		return false
	}
	return EvaluateAll(r.Conditions, s)
}
