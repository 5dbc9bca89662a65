package rules

import (
	"sort"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// Score starts at BaseScore and multiplies in every condition that holds.
// Conditions that do not hold leave the score unchanged.
func Score(u model.UtilityScore, s *model.Snapshot) float64 {
	score := u.BaseScore
	for _, c := range u.Conditions {
		if Evaluate(c.Condition(), s) {
			score *= c.Multiplier
		}
	}
	return score
}

// Ranked is one scored option.
type Ranked struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Rank scores every option and orders them best first; ties sort by name so
// the result does not depend on map iteration.
func Rank(options map[string]model.UtilityScore, s *model.Snapshot) []Ranked {
	out := make([]Ranked, 0, len(options))
	for name, u := range options {
		out = append(out, Ranked{Name: name, Score: Score(u, s)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}
