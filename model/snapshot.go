package model

// Difficulty scopes rules, build orders and composition tables.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Brutal Difficulty = "brutal"
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard, Brutal}

func (d Difficulty) Known() bool {
	switch d {
	case Easy, Medium, Hard, Brutal:
		return true
	}
	return false
}

// Personality biases which rules and composition goals apply.
type Personality string

const (
	Balanced   Personality = "balanced"
	Aggressive Personality = "aggressive"
	Defensive  Personality = "defensive"
	Economic   Personality = "economic"
)

// DefaultOptimalWorkersPerBase is used for saturation when the faction
// config does not set one.
const DefaultOptimalWorkersPerBase = 16

// Snapshot is a read-only view of one AI player's situation at one decision
// tick. The host simulation builds a fresh one every tick; the engine never
// mutates it.
type Snapshot struct {
	PlayerID    string      `json:"playerId"`
	Difficulty  Difficulty  `json:"difficulty"`
	Personality Personality `json:"personality"`
	Tick        int         `json:"tick"`
	GameTime    float64     `json:"gameTime"` // elapsed seconds

	Minerals  float64 `json:"minerals"`
	Vespene   float64 `json:"vespene"`
	Supply    float64 `json:"supply"`
	MaxSupply float64 `json:"maxSupply"`

	Workers                   int     `json:"workers"`
	WorkerReplacementPriority float64 `json:"workerReplacementPriority"`
	DepletedPatches           int     `json:"depletedPatches"`

	ArmySupply          float64 `json:"armySupply"`
	ArmyValue           float64 `json:"armyValue"`
	Bases               int     `json:"bases"`
	ProductionBuildings int     `json:"productionBuildings"`

	BuildingCounts map[string]int `json:"buildingCounts,omitempty"`
	UnitCounts     map[string]int `json:"unitCounts,omitempty"`
	Buildable      []string       `json:"buildable,omitempty"` // unit ids trainable right now

	EnemyArmyStrength float64 `json:"enemyArmyStrength"`
	EnemyBases        int     `json:"enemyBases"`
	UnderAttack       bool    `json:"underAttack"`
	EnemyHasAir       bool    `json:"enemyHasAir"`
	HasAntiAir        bool    `json:"hasAntiAir"`

	Config *FactionAIConfig `json:"-"`
}

// BuildingCount returns the number of owned buildings with the given id, 0 if unseen.
func (s *Snapshot) BuildingCount(id string) int { return s.BuildingCounts[id] }

// UnitCount returns the number of owned units with the given id, 0 if unseen.
func (s *Snapshot) UnitCount(id string) int { return s.UnitCounts[id] }

// SupplyRatio is supply / maxSupply, 0 when maxSupply is 0.
func (s *Snapshot) SupplyRatio() float64 {
	if s.MaxSupply == 0 {
		return 0
	}
	return s.Supply / s.MaxSupply
}

// OptimalWorkersPerBase reads the owning faction's economy constant.
func (s *Snapshot) OptimalWorkersPerBase() int {
	if s.Config != nil && s.Config.Economy.OptimalWorkersPerBase > 0 {
		return s.Config.Economy.OptimalWorkersPerBase
	}
	return DefaultOptimalWorkersPerBase
}

// WorkerSaturation is workers / (bases * optimalWorkersPerBase), 0 with no bases.
func (s *Snapshot) WorkerSaturation() float64 {
	if s.Bases == 0 {
		return 0
	}
	return float64(s.Workers) / float64(s.Bases*s.OptimalWorkersPerBase())
}
