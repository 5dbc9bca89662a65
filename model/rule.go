package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConditionType names the snapshot field a condition reads.
type ConditionType string

const (
	CondMinerals                  ConditionType = "minerals"
	CondVespene                   ConditionType = "vespene"
	CondSupply                    ConditionType = "supply"
	CondMaxSupply                 ConditionType = "maxSupply"
	CondSupplyRatio               ConditionType = "supplyRatio"
	CondWorkers                   ConditionType = "workers"
	CondWorkerSaturation          ConditionType = "workerSaturation"
	CondWorkerReplacementPriority ConditionType = "workerReplacementPriority"
	CondDepletedPatches           ConditionType = "depletedPatches"
	CondArmySupply                ConditionType = "armySupply"
	CondArmyValue                 ConditionType = "armyValue"
	CondBases                     ConditionType = "bases"
	CondBuildingCount             ConditionType = "buildingCount"
	CondUnitCount                 ConditionType = "unitCount"
	CondGameTime                  ConditionType = "gameTime"
	CondEnemyArmyStrength         ConditionType = "enemyArmyStrength"
	CondEnemyBases                ConditionType = "enemyBases"
	CondUnderAttack               ConditionType = "underAttack"
	CondEnemyHasAir               ConditionType = "enemyHasAir"
	CondHasAntiAir                ConditionType = "hasAntiAir"
	CondProductionBuildings       ConditionType = "productionBuildings"
)

// ConditionTypes lists every condition type the evaluator understands.
var ConditionTypes = []ConditionType{
	CondMinerals, CondVespene, CondSupply, CondMaxSupply, CondSupplyRatio,
	CondWorkers, CondWorkerSaturation, CondWorkerReplacementPriority, CondDepletedPatches,
	CondArmySupply, CondArmyValue, CondBases, CondBuildingCount, CondUnitCount,
	CondGameTime, CondEnemyArmyStrength, CondEnemyBases, CondUnderAttack,
	CondEnemyHasAir, CondHasAntiAir, CondProductionBuildings,
}

func (c ConditionType) Known() bool {
	for _, k := range ConditionTypes {
		if c == k {
			return true
		}
	}
	return false
}

// NeedsTarget reports whether the type reads a keyed count and requires TargetID.
func (c ConditionType) NeedsTarget() bool {
	return c == CondBuildingCount || c == CondUnitCount
}

// Operator compares a condition's resolved value against its literal.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpHas          Operator = "has"
	OpMissing      Operator = "missing"
)

func (o Operator) Known() bool {
	switch o {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual, OpHas, OpMissing:
		return true
	}
	return false
}

// ValueKind tags the dynamic type held by a Value.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindNumber
	KindString
	KindBool
)

// Value is a condition literal: a number, string or bool.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// Float coerces the value for numeric comparison. Bools map to 1/0, strings
// parse as decimals; anything else is not comparable.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	}
	return 0, false
}

// Equal is strict: kinds must match as well as contents.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	}
	return true
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	}
	return "<none>"
}

func (v Value) raw() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	}
	return nil
}

func valueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	}
	return Value{}, fmt.Errorf("condition value must be number, string or bool, got %T", raw)
}

func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.raw()) }

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (any, error) { return v.raw(), nil }

func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueOf(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*v = parsed
	return nil
}

// RuleCondition is one predicate of a macro rule. CompareRef, when set,
// replaces Value for ordering operators with the resolved reference times
// CompareMultiplier (1 when absent).
type RuleCondition struct {
	Type              ConditionType `json:"type" yaml:"type"`
	Operator          Operator      `json:"operator" yaml:"operator"`
	Value             Value         `json:"value" yaml:"value"`
	TargetID          string        `json:"targetId,omitempty" yaml:"targetId,omitempty"`
	CompareRef        string        `json:"compareRef,omitempty" yaml:"compareRef,omitempty"`
	CompareMultiplier *float64      `json:"compareMultiplier,omitempty" yaml:"compareMultiplier,omitempty"`
}

// Multiplier returns CompareMultiplier, or 1 when it is absent. An authored
// 0 stays 0.
func (c RuleCondition) Multiplier() float64 {
	if c.CompareMultiplier == nil {
		return 1
	}
	return *c.CompareMultiplier
}

// Scale returns a CompareMultiplier value.
func Scale(f float64) *float64 { return &f }

// ActionType is what a fired rule asks the simulation to do.
type ActionType string

const (
	ActionBuild    ActionType = "build"
	ActionTrain    ActionType = "train"
	ActionResearch ActionType = "research"
	ActionExpand   ActionType = "expand"
	ActionAttack   ActionType = "attack"
	ActionDefend   ActionType = "defend"
	ActionScout    ActionType = "scout"
)

func (a ActionType) Known() bool {
	switch a {
	case ActionBuild, ActionTrain, ActionResearch, ActionExpand, ActionAttack, ActionDefend, ActionScout:
		return true
	}
	return false
}

// ActionOption is one weighted alternative for an action's target.
type ActionOption struct {
	ID     string  `json:"id" yaml:"id"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// MacroAction is the decision payload of a rule. When Options is set the
// concrete target is drawn at execution time, not at selection.
type MacroAction struct {
	Type     ActionType     `json:"type" yaml:"type"`
	TargetID string         `json:"targetId,omitempty" yaml:"targetId,omitempty"`
	Count    int            `json:"count,omitempty" yaml:"count,omitempty"`
	Options  []ActionOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// DefaultPriority applies to rules that do not set one.
const DefaultPriority = 50

// MacroRule is a declarative condition -> action pair. ID keys the cooldown
// map and must be unique within a rule set. Empty Difficulties or
// Personalities means the rule applies to all.
type MacroRule struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Priority      int             `json:"priority" yaml:"priority"`
	Conditions    []RuleCondition `json:"conditions" yaml:"conditions"`
	Action        MacroAction     `json:"action" yaml:"action"`
	CooldownTicks int             `json:"cooldownTicks" yaml:"cooldownTicks"`
	Difficulties  []Difficulty    `json:"difficulties,omitempty" yaml:"difficulties,omitempty"`
	Personalities []Personality   `json:"personalities,omitempty" yaml:"personalities,omitempty"`
}

type plainRule MacroRule

func (r *MacroRule) UnmarshalYAML(n *yaml.Node) error {
	p := plainRule{Priority: DefaultPriority}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*r = MacroRule(p)
	return nil
}

func (r *MacroRule) UnmarshalJSON(b []byte) error {
	p := plainRule{Priority: DefaultPriority}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = MacroRule(p)
	return nil
}

// UtilityCondition multiplies the running score by Multiplier when it holds.
type UtilityCondition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	Operator   Operator      `json:"operator" yaml:"operator"`
	Value      Value         `json:"value" yaml:"value"`
	TargetID   string        `json:"targetId,omitempty" yaml:"targetId,omitempty"`
	Multiplier float64       `json:"multiplier" yaml:"multiplier"`
	CompareRef string        `json:"compareRef,omitempty" yaml:"compareRef,omitempty"`
}

// Condition drops the multiplier.
func (u UtilityCondition) Condition() RuleCondition {
	return RuleCondition{
		Type:       u.Type,
		Operator:   u.Operator,
		Value:      u.Value,
		TargetID:   u.TargetID,
		CompareRef: u.CompareRef,
	}
}

// UtilityScore is a continuous score: BaseScore times every matching multiplier.
type UtilityScore struct {
	BaseScore  float64            `json:"baseScore" yaml:"baseScore"`
	Conditions []UtilityCondition `json:"conditions" yaml:"conditions"`
}
