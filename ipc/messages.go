package ipc

import (
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

// Message types exchanged with the simulation.
const (
	TypeHello        = "hello"
	TypeAck          = "ack"
	TypeSnapshot     = "snapshot"
	TypeDecision     = "decision"
	TypeActionResult = "action_result"
	TypeError        = "error"
)

// HelloMessage opens a session for one AI player. Seed 0 lets the server
// pick one.
type HelloMessage struct {
	Player      string            `json:"player"`
	Faction     string            `json:"faction"`
	Difficulty  model.Difficulty  `json:"difficulty"`
	Personality model.Personality `json:"personality"`
	Seed        int64             `json:"seed,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
	// Opening is the build order the player should run first, if any.
	Opening *OpeningMessage `json:"opening,omitempty"`
	// DecisionIntervalTicks is how often the simulation should send snapshots.
	DecisionIntervalTicks int `json:"decisionIntervalTicks"`
}

// OpeningMessage carries a selected build order and its transition chain.
type OpeningMessage struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Style string        `json:"style,omitempty"`
	Steps []OpeningStep `json:"steps"`
	Then  []string      `json:"then,omitempty"`
}

type OpeningStep struct {
	Type   string  `json:"type"`
	ID     string  `json:"id"`
	Supply int     `json:"supply,omitempty"`
	Time   float64 `json:"time,omitempty"`
	Count  int     `json:"count,omitempty"`
}

// DecisionMessage answers a snapshot. RuleID is empty when no rule fired;
// the ranking is still reported so the simulation can act on it.
type DecisionMessage struct {
	Tick    int              `json:"tick"`
	RuleID  string           `json:"ruleId,omitempty"`
	Action  model.ActionType `json:"action,omitempty"`
	Target  string           `json:"target,omitempty"`
	Queue   string           `json:"queue,omitempty"`
	Count   int              `json:"count,omitempty"`
	Ranking []rules.Ranked   `json:"ranking,omitempty"`
}

// ActionResult reports whether the simulation carried out a decision. The
// rule's cooldown starts only on success.
type ActionResult struct {
	RuleID string `json:"ruleId"`
	Tick   int    `json:"tick"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
