// Package composition chooses which unit to produce next and tracks army
// shape against time-phased goals.
package composition

import (
	"sort"

	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rng"
)

// Table holds weight tables by faction, then difficulty.
type Table map[string]map[model.Difficulty]model.Weights

// Weights returns the table for faction and difficulty, or an empty one.
func (t Table) Weights(faction string, d model.Difficulty) model.Weights {
	if w, ok := t[faction][d]; ok && w != nil {
		return w
	}
	return model.Weights{}
}

// Selector draws production choices from a Table. It holds no per-player
// state and is safe to share.
type Selector struct {
	table Table
}

func NewSelector(t Table) *Selector {
	return &Selector{table: t}
}

// SelectUnit picks the next unit to produce from available, weighted by the
// faction/difficulty table. Weights are normalized over the available subset
// only, at draw time.
//
// If none of the available units are in the table the first available id is
// returned so production never stalls; ok is false only when available is
// empty. A subset whose weights sum to 0 yields its first element.
func (s *Selector) SelectUnit(faction string, d model.Difficulty, available []string, src rng.Source) (unit string, ok bool) {
	if len(available) == 0 {
		return "", false
	}
	weights := s.table.Weights(faction, d)

	candidates := make([]string, 0, len(available))
	for _, id := range available {
		if _, ok := weights[id]; ok {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return available[0], true
	}
	i := rng.Weighted(src, len(candidates), func(i int) float64 { return weights[candidates[i]] })
	return candidates[i], true
}

// GoalAt returns the first goal for personality whose time range contains
// gameTime.
func GoalAt(goals []model.CompositionGoal, p model.Personality, gameTime float64) (model.CompositionGoal, bool) {
	for _, g := range goals {
		if g.Personality == p && g.TimeRange.Contains(gameTime) {
			return g, true
		}
	}
	return model.CompositionGoal{}, false
}

// Deficit is how far one unit type is below its target share of the army.
type Deficit struct {
	UnitID string  `json:"unitId"`
	Target float64 `json:"target"` // percent
	Actual float64 `json:"actual"` // percent
	Gap    float64 `json:"gap"`    // Target - Actual, positive means under target
}

// Deficits compares current unit counts with the goal's target percentages
// and returns under-represented unit types, largest gap first. Targets are
// normalized so they need not sum to 100.
func Deficits(goal model.CompositionGoal, counts map[string]int) []Deficit {
	targetTotal := 0.0
	for _, w := range goal.Targets {
		if w > 0 {
			targetTotal += w
		}
	}
	if targetTotal == 0 {
		return nil
	}
	armyTotal := 0
	for id := range goal.Targets {
		armyTotal += counts[id]
	}

	var out []Deficit
	for id, w := range goal.Targets {
		if w <= 0 {
			continue
		}
		target := w / targetTotal * 100
		actual := 0.0
		if armyTotal > 0 {
			actual = float64(counts[id]) / float64(armyTotal) * 100
		}
		if gap := target - actual; gap > 0 {
			out = append(out, Deficit{UnitID: id, Target: target, Actual: actual, Gap: gap})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gap != out[j].Gap {
			return out[i].Gap > out[j].Gap
		}
		return out[i].UnitID < out[j].UnitID
	})
	return out
}
