package rules

import (
	"log/slog"
	"math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// RefEnv is the environment compare refs are evaluated against. A ref is an
// expr expression over these names, usually a single identifier such as
// "bases" but arithmetic like "bases * 3 - 1" also works.
type RefEnv struct {
	Bases               float64 `expr:"bases"`
	Workers             float64 `expr:"workers"`
	Supply              float64 `expr:"supply"`
	MaxSupply           float64 `expr:"maxSupply"`
	Minerals            float64 `expr:"minerals"`
	Vespene             float64 `expr:"vespene"`
	ArmySupply          float64 `expr:"armySupply"`
	ArmyValue           float64 `expr:"armyValue"`
	ProductionBuildings float64 `expr:"productionBuildings"`
	EnemyBases          float64 `expr:"enemyBases"`
	EnemyArmyStrength   float64 `expr:"enemyArmyStrength"`
	GameTime            float64 `expr:"gameTime"`
	OptimalWorkers      float64 `expr:"optimalWorkers"`  // bases × optimal workers per base
	ProductionQuota     float64 `expr:"productionQuota"` // bases × buildings per base, capped
	MaxProduction       float64 `expr:"maxProduction"`
	MaxWorkers          float64 `expr:"maxWorkers"`
}

func newRefEnv(s *model.Snapshot) RefEnv {
	env := RefEnv{
		Bases:               float64(s.Bases),
		Workers:             float64(s.Workers),
		Supply:              s.Supply,
		MaxSupply:           s.MaxSupply,
		Minerals:            s.Minerals,
		Vespene:             s.Vespene,
		ArmySupply:          s.ArmySupply,
		ArmyValue:           s.ArmyValue,
		ProductionBuildings: float64(s.ProductionBuildings),
		EnemyBases:          float64(s.EnemyBases),
		EnemyArmyStrength:   s.EnemyArmyStrength,
		GameTime:            s.GameTime,
		OptimalWorkers:      float64(s.Bases * s.OptimalWorkersPerBase()),
	}
	if cfg := s.Config; cfg != nil {
		env.MaxProduction = float64(cfg.Production.MaxBuildings)
		env.MaxWorkers = float64(cfg.Economy.MaxWorkers)
		env.ProductionQuota = float64(s.Bases) * cfg.Production.BuildingsPerBase
		if cfg.Production.MaxBuildings > 0 {
			env.ProductionQuota = math.Min(env.ProductionQuota, env.MaxProduction)
		}
	}
	return env
}

// refPrograms caches compiled refs; a nil entry records a ref that failed
// to compile. Shared across players, so it must be safe for concurrent use.
var refPrograms sync.Map // string → *vm.Program

func refProgram(ref string) *vm.Program {
	if p, ok := refPrograms.Load(ref); ok {
		return p.(*vm.Program)
	}
	prog, err := expr.Compile(ref, expr.Env(RefEnv{}), expr.AsFloat64())
	if err != nil {
		slog.Debug("compare ref does not resolve", "ref", ref, "error", err)
		prog = nil
	}
	actual, _ := refPrograms.LoadOrStore(ref, prog)
	return actual.(*vm.Program)
}

// RefKnown reports whether ref compiles against RefEnv.
func RefKnown(ref string) bool {
	return refProgram(ref) != nil
}

// ResolveRef evaluates a compare ref against the snapshot. Unknown names,
// malformed expressions and runtime errors all resolve to 0.
func ResolveRef(ref string, s *model.Snapshot) float64 {
	if s == nil {
		return 0
	}
	prog := refProgram(ref)
	if prog == nil {
		return 0
	}
	out, err := vm.Run(prog, newRefEnv(s))
	if err != nil {
		slog.Debug("compare ref evaluation failed", "ref", ref, "error", err)
		return 0
	}
	f, ok := out.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
