package rules

import (
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rng"
)

// ResolveTarget picks the concrete target of an action. Actions without
// options return TargetID; otherwise an option is drawn by weight.
func ResolveTarget(a model.MacroAction, src rng.Source) string {
	if len(a.Options) == 0 {
		return a.TargetID
	}
	i := rng.Weighted(src, len(a.Options), func(i int) float64 { return a.Options[i].Weight })
	return a.Options[i].ID
}
