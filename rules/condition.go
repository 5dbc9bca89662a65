package rules

import "github.com/nstehr/vimy/vimy-macro/model"

// Evaluate reports whether a single condition holds for the snapshot.
// Unknown condition types and operators evaluate false rather than erroring;
// Lint surfaces them at load time.
func Evaluate(c model.RuleCondition, s *model.Snapshot) bool {
	if s == nil {
		return false
	}
	left, ok := conditionValue(c.Type, c.TargetID, s)
	if !ok {
		return false
	}
	lf, _ := left.Float()

	switch c.Operator {
	case model.OpHas:
		return lf > 0
	case model.OpMissing:
		return lf == 0
	// Equality compares against the literal, never the ref, so bool and
	// string literals like `underAttack == true` keep working.
	case model.OpEqual:
		return left.Equal(c.Value)
	case model.OpNotEqual:
		return !left.Equal(c.Value)
	}

	var rf float64
	if c.CompareRef != "" {
		rf = ResolveRef(c.CompareRef, s) * c.Multiplier()
	} else {
		var ok bool
		if rf, ok = c.Value.Float(); !ok {
			return false
		}
	}

	switch c.Operator {
	case model.OpGreater:
		return lf > rf
	case model.OpLess:
		return lf < rf
	case model.OpGreaterEqual:
		return lf >= rf
	case model.OpLessEqual:
		return lf <= rf
	}
	return false
}

// EvaluateAll is the AND of every condition. An empty list holds.
func EvaluateAll(conds []model.RuleCondition, s *model.Snapshot) bool {
	for _, c := range conds {
		if !Evaluate(c, s) {
			return false
		}
	}
	return true
}

// conditionValue reads the one snapshot field a condition type maps to.
func conditionValue(t model.ConditionType, targetID string, s *model.Snapshot) (model.Value, bool) {
	num := func(f float64) (model.Value, bool) { return model.Number(f), true }
	switch t {
	case model.CondMinerals:
		return num(s.Minerals)
	case model.CondVespene:
		return num(s.Vespene)
	case model.CondSupply:
		return num(s.Supply)
	case model.CondMaxSupply:
		return num(s.MaxSupply)
	case model.CondSupplyRatio:
		return num(s.SupplyRatio())
	case model.CondWorkers:
		return num(float64(s.Workers))
	case model.CondWorkerSaturation:
		return num(s.WorkerSaturation())
	case model.CondWorkerReplacementPriority:
		return num(s.WorkerReplacementPriority)
	case model.CondDepletedPatches:
		return num(float64(s.DepletedPatches))
	case model.CondArmySupply:
		return num(s.ArmySupply)
	case model.CondArmyValue:
		return num(s.ArmyValue)
	case model.CondBases:
		return num(float64(s.Bases))
	case model.CondBuildingCount:
		return num(float64(s.BuildingCount(targetID)))
	case model.CondUnitCount:
		return num(float64(s.UnitCount(targetID)))
	case model.CondGameTime:
		return num(s.GameTime)
	case model.CondEnemyArmyStrength:
		return num(s.EnemyArmyStrength)
	case model.CondEnemyBases:
		return num(float64(s.EnemyBases))
	case model.CondUnderAttack:
		return model.Bool(s.UnderAttack), true
	case model.CondEnemyHasAir:
		return model.Bool(s.EnemyHasAir), true
	case model.CondHasAntiAir:
		return model.Bool(s.HasAntiAir), true
	case model.CondProductionBuildings:
		return num(float64(s.ProductionBuildings))
	}
	return model.Value{}, false
}
