package rules

import (
	"fmt"
	"math"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// Role references resolved by the faction's role table at execution time.
const (
	RoleWorker     = "@worker"
	RoleSupply     = "@supply"
	RoleProduction = "@production"
	RoleBase       = "@base"
	RoleAntiAir    = "@antiAir"
)

// CompileDefaults generates the standard macro rule set from a faction's
// difficulty tuning and economy constants. Each rule is emitted once per
// difficulty, scoped to it, with thresholds interpolated from the weights.
// Factions whose content declares no macroRules run on this set.
func CompileDefaults(cfg *model.FactionAIConfig) []model.MacroRule {
	var rules []model.MacroRule
	for _, d := range model.Difficulties {
		s := cfg.Settings(d)
		s.Validate()
		rules = append(rules, compileDifficulty(cfg, d, s)...)
	}
	return rules
}

func compileDifficulty(cfg *model.FactionAIConfig, d model.Difficulty, s model.DifficultySettings) []model.MacroRule {
	var rules []model.MacroRule
	add := func(r model.MacroRule) {
		r.ID = fmt.Sprintf("%s.%s", r.ID, d)
		r.Difficulties = []model.Difficulty{d}
		rules = append(rules, r)
	}
	cond := func(t model.ConditionType, op model.Operator, v model.Value) model.RuleCondition {
		return model.RuleCondition{Type: t, Operator: op, Value: v}
	}
	n := model.Number

	// --- Supply safety (always above production) ---

	add(model.MacroRule{
		ID:            "supply_emergency",
		Name:          "Emergency supply",
		Priority:      150,
		CooldownTicks: 15,
		Conditions: []model.RuleCondition{
			cond(model.CondSupplyRatio, model.OpGreaterEqual, n(0.85)),
			cond(model.CondMinerals, model.OpGreaterEqual, n(50)),
			cond(model.CondMaxSupply, model.OpLess, n(200)),
		},
		Action: model.MacroAction{Type: model.ActionBuild, TargetID: RoleSupply, Count: 1},
	})

	add(model.MacroRule{
		ID:            "supply_early",
		Name:          "Early supply",
		Priority:      100,
		CooldownTicks: 40,
		Conditions: []model.RuleCondition{
			cond(model.CondSupplyRatio, model.OpGreaterEqual, n(0.7)),
			cond(model.CondMinerals, model.OpGreaterEqual, n(100)),
			cond(model.CondMaxSupply, model.OpLess, n(200)),
		},
		Action: model.MacroAction{Type: model.ActionBuild, TargetID: RoleSupply, Count: 1},
	})

	// --- Defense (parameterized by DefenseFocus) ---

	add(model.MacroRule{
		ID:            "defend_base",
		Name:          "Defend base",
		Priority:      lerp(120, 170, s.DefenseFocus),
		CooldownTicks: 20,
		Conditions: []model.RuleCondition{
			cond(model.CondUnderAttack, model.OpEqual, model.Bool(true)),
		},
		Action: model.MacroAction{Type: model.ActionDefend},
	})

	add(model.MacroRule{
		ID:            "anti_air",
		Name:          "Answer air",
		Priority:      lerp(105, 135, s.DefenseFocus),
		CooldownTicks: 60,
		Conditions: []model.RuleCondition{
			cond(model.CondEnemyHasAir, model.OpEqual, model.Bool(true)),
			cond(model.CondHasAntiAir, model.OpEqual, model.Bool(false)),
			cond(model.CondMinerals, model.OpGreaterEqual, n(100)),
		},
		Action: model.MacroAction{Type: model.ActionBuild, TargetID: RoleAntiAir, Count: 1},
	})

	// --- Economy (parameterized by EconomyFocus) ---

	add(model.MacroRule{
		ID:            "worker_replacement",
		Name:          "Replace lost workers",
		Priority:      140,
		CooldownTicks: 10,
		Conditions: []model.RuleCondition{
			cond(model.CondWorkerReplacementPriority, model.OpGreaterEqual, n(round2(lerpf(0.8, 0.4, s.EconomyFocus)))),
			cond(model.CondMinerals, model.OpGreaterEqual, n(50)),
		},
		Action: model.MacroAction{Type: model.ActionTrain, TargetID: RoleWorker, Count: 1},
	})

	workerConds := []model.RuleCondition{
		cond(model.CondWorkerSaturation, model.OpLess, n(1)),
		cond(model.CondMinerals, model.OpGreaterEqual, n(50)),
	}
	if cfg.Economy.MaxWorkers > 0 {
		workerConds = append(workerConds, model.RuleCondition{
			Type: model.CondWorkers, Operator: model.OpLess, CompareRef: "maxWorkers",
		})
	}
	add(model.MacroRule{
		ID:            "train_workers",
		Name:          "Saturate bases",
		Priority:      lerp(80, 110, s.EconomyFocus),
		CooldownTicks: 5,
		Conditions:    workerConds,
		Action:        model.MacroAction{Type: model.ActionTrain, TargetID: RoleWorker, Count: 1},
	})

	if cfg.Production.BuildingsPerBase > 0 {
		add(model.MacroRule{
			ID:            "production_scaling",
			Name:          "Scale production",
			Priority:      90,
			CooldownTicks: 60,
			Conditions: []model.RuleCondition{
				{Type: model.CondProductionBuildings, Operator: model.OpLess, CompareRef: "productionQuota"},
				cond(model.CondMinerals, model.OpGreaterEqual, n(150)),
			},
			Action: model.MacroAction{Type: model.ActionBuild, TargetID: RoleProduction, Count: 1},
		})
	}

	expandMinerals := cfg.Economy.ExpandMinerals
	if expandMinerals <= 0 {
		expandMinerals = 400
	}
	add(model.MacroRule{
		ID:            "expand",
		Name:          "Take a base",
		Priority:      lerp(60, 95, s.EconomyFocus),
		CooldownTicks: 200,
		Conditions: []model.RuleCondition{
			cond(model.CondMinerals, model.OpGreaterEqual, n(expandMinerals)),
			cond(model.CondWorkerSaturation, model.OpGreaterEqual, n(round2(lerpf(0.9, 0.6, s.EconomyFocus)))),
			cond(model.CondBases, model.OpLess, n(float64(s.MaxBases))),
			cond(model.CondUnderAttack, model.OpEqual, model.Bool(false)),
		},
		Action: model.MacroAction{Type: model.ActionExpand, TargetID: RoleBase},
	})

	// --- Army ---

	add(model.MacroRule{
		ID:            "train_army",
		Name:          "Train army",
		Priority:      70,
		CooldownTicks: 5,
		Conditions: []model.RuleCondition{
			cond(model.CondProductionBuildings, model.OpHas, model.Value{}),
			cond(model.CondMinerals, model.OpGreaterEqual, n(100)),
		},
		Action: model.MacroAction{Type: model.ActionTrain, Count: 1},
	})

	// Aggressive tunings attack at smaller margins over the observed enemy army.
	add(model.MacroRule{
		ID:            "attack",
		Name:          "Attack",
		Priority:      lerp(60, 120, s.Aggression),
		CooldownTicks: 100,
		Conditions: []model.RuleCondition{
			cond(model.CondArmySupply, model.OpGreaterEqual, n(float64(s.AttackArmySupply))),
			{
				Type:              model.CondArmySupply,
				Operator:          model.OpGreater,
				CompareRef:        "enemyArmyStrength",
				CompareMultiplier: model.Scale(round2(lerpf(1.5, 0.8, s.Aggression))),
			},
		},
		Action: model.MacroAction{Type: model.ActionAttack},
	})

	// --- Recon (gated by ScoutFocus) ---

	if s.ScoutFocus > 0.2 {
		add(model.MacroRule{
			ID:            "scout",
			Name:          "Scout for enemy bases",
			Priority:      lerp(30, 70, s.ScoutFocus),
			CooldownTicks: lerp(600, 200, s.ScoutFocus),
			Conditions: []model.RuleCondition{
				cond(model.CondEnemyBases, model.OpMissing, model.Value{}),
			},
			Action: model.MacroAction{Type: model.ActionScout},
		})
	}

	return rules
}

// lerp linearly interpolates between min and max by t (0–1), returning an int.
func lerp(min, max int, t float64) int {
	return min + int(math.Round(float64(max-min)*t))
}

// lerpf linearly interpolates between min and max by t (0–1), returning a float64.
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
