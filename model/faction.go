package model

// FactionAIConfig is the static content bundle for one faction. It is built
// once, registered at startup and never mutated afterwards.
type FactionAIConfig struct {
	ID            string                            `json:"id" yaml:"id"`
	Name          string                            `json:"name" yaml:"name"`
	Roles         map[string]Role                   `json:"roles" yaml:"roles"`
	Difficulty    map[Difficulty]DifficultySettings `json:"difficulty" yaml:"difficulty"`
	Economy       EconomyConfig                     `json:"economy" yaml:"economy"`
	Production    ProductionScaling                 `json:"production" yaml:"production"`
	MacroRules    []MacroRule                       `json:"macroRules" yaml:"macroRules"`
	Utility       map[string]UtilityScore           `json:"utility,omitempty" yaml:"utility,omitempty"`
	Composition   map[Difficulty]Weights            `json:"composition" yaml:"composition"`
	Tactical      TacticalConfig                    `json:"tactical" yaml:"tactical"`
	Micro         map[string]MicroConfig            `json:"micro,omitempty" yaml:"micro,omitempty"`
	BuildOrderKey string                            `json:"buildOrderKey" yaml:"buildOrderKey"`
	Catalog       Catalog                           `json:"catalog" yaml:"catalog"`
}

// Catalog lists the content ids a faction can produce. Build orders are
// validated against it at load time.
type Catalog struct {
	Units     []string `json:"units" yaml:"units"`
	Buildings []string `json:"buildings" yaml:"buildings"`
	Research  []string `json:"research" yaml:"research"`
}

// Role maps an abstract role ("worker", "supply", "barracks") to the
// faction's concrete content ids, preferred first.
type Role struct {
	Queue string   `json:"queue,omitempty" yaml:"queue,omitempty"`
	IDs   []string `json:"ids" yaml:"ids"`
}

// Settings returns the tuning for d, falling back to Medium and then to
// DefaultDifficultySettings.
func (c *FactionAIConfig) Settings(d Difficulty) DifficultySettings {
	if s, ok := c.Difficulty[d]; ok {
		return s
	}
	if s, ok := c.Difficulty[Medium]; ok {
		return s
	}
	return DefaultDifficultySettings()
}

// EconomyConfig holds worker and expansion constants.
type EconomyConfig struct {
	OptimalWorkersPerBase int     `json:"optimalWorkersPerBase" yaml:"optimalWorkersPerBase"`
	MaxWorkers            int     `json:"maxWorkers" yaml:"maxWorkers"`
	WorkersPerGas         int     `json:"workersPerGas" yaml:"workersPerGas"`
	ExpandMinerals        float64 `json:"expandMinerals" yaml:"expandMinerals"`
	SupplyPerDepot        float64 `json:"supplyPerDepot" yaml:"supplyPerDepot"`
}

// ProductionScaling caps production buildings relative to base count.
type ProductionScaling struct {
	BuildingsPerBase float64 `json:"buildingsPerBase" yaml:"buildingsPerBase"`
	MaxBuildings     int     `json:"maxBuildings" yaml:"maxBuildings"`
}

// Weights maps unit id to a relative, unnormalized preference.
type Weights map[string]float64

// TimeRange is a game-time bracket in seconds; End 0 means open-ended.
type TimeRange struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end,omitempty" yaml:"end,omitempty"`
}

// Contains reports whether t falls in [Start, End).
func (r TimeRange) Contains(t float64) bool {
	if t < r.Start {
		return false
	}
	return r.End == 0 || t < r.End
}

// CompositionGoal is a target army shape (unit id -> percentage) for one
// personality over one game-time bracket.
type CompositionGoal struct {
	Personality Personality `json:"personality" yaml:"personality"`
	TimeRange   TimeRange   `json:"timeRange" yaml:"timeRange"`
	Targets     Weights     `json:"targets" yaml:"targets"`
}

// TacticalConfig drives the tactical layer outside the macro loop.
type TacticalConfig struct {
	FocusFire        []string            `json:"focusFire,omitempty" yaml:"focusFire,omitempty"`
	Counters         map[string][]string `json:"counters,omitempty" yaml:"counters,omitempty"`
	ThreatWeights    map[string]float64  `json:"threatWeights,omitempty" yaml:"threatWeights,omitempty"`
	CompositionGoals []CompositionGoal   `json:"compositionGoals,omitempty" yaml:"compositionGoals,omitempty"`
	AttackThreshold  float64             `json:"attackThreshold" yaml:"attackThreshold"`
	DefenseThreshold float64             `json:"defenseThreshold" yaml:"defenseThreshold"`
}

// MicroConfig is per-unit combat behavior, consumed by the simulation.
type MicroConfig struct {
	Kite           bool    `json:"kite,omitempty" yaml:"kite,omitempty"`
	KiteRange      float64 `json:"kiteRange,omitempty" yaml:"kiteRange,omitempty"`
	RetreatHealth  float64 `json:"retreatHealth,omitempty" yaml:"retreatHealth,omitempty"`
	TransformTo    string  `json:"transformTo,omitempty" yaml:"transformTo,omitempty"`
	TransformRange float64 `json:"transformRange,omitempty" yaml:"transformRange,omitempty"`
}

// DifficultySettings tunes one difficulty. Weights are 0.0–1.0; the default
// rule compiler maps them to concrete thresholds and priorities.
type DifficultySettings struct {
	DecisionIntervalTicks int     `json:"decisionIntervalTicks" yaml:"decisionIntervalTicks"`
	Aggression            float64 `json:"aggression" yaml:"aggression"`
	EconomyFocus          float64 `json:"economyFocus" yaml:"economyFocus"`
	DefenseFocus          float64 `json:"defenseFocus" yaml:"defenseFocus"`
	ScoutFocus            float64 `json:"scoutFocus" yaml:"scoutFocus"`
	ResourceBonus         float64 `json:"resourceBonus" yaml:"resourceBonus"`
	MistakeChance         float64 `json:"mistakeChance" yaml:"mistakeChance"`
	AttackArmySupply      int     `json:"attackArmySupply" yaml:"attackArmySupply"`
	MaxBases              int     `json:"maxBases" yaml:"maxBases"`
}

// DefaultDifficultySettings returns a middle-of-the-road baseline.
func DefaultDifficultySettings() DifficultySettings {
	return DifficultySettings{
		DecisionIntervalTicks: 22,
		Aggression:            0.5,
		EconomyFocus:          0.5,
		DefenseFocus:          0.5,
		ScoutFocus:            0.5,
		ResourceBonus:         0,
		MistakeChance:         0.1,
		AttackArmySupply:      30,
		MaxBases:              4,
	}
}

// Validate clamps all weights to their valid ranges.
func (d *DifficultySettings) Validate() {
	d.Aggression = clamp(d.Aggression, 0, 1)
	d.EconomyFocus = clamp(d.EconomyFocus, 0, 1)
	d.DefenseFocus = clamp(d.DefenseFocus, 0, 1)
	d.ScoutFocus = clamp(d.ScoutFocus, 0, 1)
	d.MistakeChance = clamp(d.MistakeChance, 0, 1)
	d.ResourceBonus = clamp(d.ResourceBonus, 0, 2)
	d.DecisionIntervalTicks = clampInt(d.DecisionIntervalTicks, 1, 1000)
	d.AttackArmySupply = clampInt(d.AttackArmySupply, 4, 200)
	d.MaxBases = clampInt(d.MaxBases, 1, 12)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
