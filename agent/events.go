package agent

import (
	"fmt"
	"strings"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// EventKind identifies a significant change between two consecutive
// snapshots of the same player.
type EventKind string

const (
	EventBaseLost            EventKind = "base_lost"
	EventArmyDevastated      EventKind = "army_devastated"
	EventEnemyBaseDiscovered EventKind = "enemy_base_discovered"
	EventUnderAttack         EventKind = "under_attack"
	EventEconomyCrisis       EventKind = "economy_crisis"
	EventFirstContact        EventKind = "first_contact"
	EventEnemyAir            EventKind = "enemy_air"
	EventPhaseTransition     EventKind = "phase_transition"
)

// Event is one detected change. Events are logged and journaled next to the
// decision so a replay shows why the rule table's answer shifted.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// Army loss below this floor is skirmish noise, not devastation.
const armyDevastatedFloor = 10

// Phase is a coarse game stage derived from economy milestones, with game
// time as a fallback for stalled games.
type Phase string

const (
	PhaseEarly Phase = "early"
	PhaseMid   Phase = "mid"
	PhaseLate  Phase = "late"
)

func gamePhase(s *model.Snapshot) Phase {
	if s.Bases >= 3 || s.GameTime >= 900 {
		return PhaseLate
	}
	if s.Bases >= 2 || s.ProductionBuildings >= 3 || s.GameTime >= 360 {
		return PhaseMid
	}
	return PhaseEarly
}

// detectEvents diffs prev against cur. A nil prev (first snapshot of the
// session) yields no events.
func detectEvents(prev, cur *model.Snapshot) []Event {
	if prev == nil || cur == nil {
		return nil
	}
	var events []Event
	add := func(k EventKind, format string, args ...any) {
		events = append(events, Event{Kind: k, Tick: cur.Tick, Detail: fmt.Sprintf(format, args...)})
	}

	if cur.Bases < prev.Bases {
		add(EventBaseLost, "bases %d -> %d", prev.Bases, cur.Bases)
	}

	if prev.ArmySupply >= armyDevastatedFloor && cur.ArmySupply < prev.ArmySupply*0.5 {
		add(EventArmyDevastated, "army supply %.0f -> %.0f", prev.ArmySupply, cur.ArmySupply)
	}

	if prev.EnemyBases == 0 && cur.EnemyBases > 0 {
		add(EventEnemyBaseDiscovered, "%d enemy bases known", cur.EnemyBases)
	}

	if !prev.UnderAttack && cur.UnderAttack {
		add(EventUnderAttack, "enemy strength %.0f", cur.EnemyArmyStrength)
	}

	// Workers dropping by a third or more means harvesters are being picked off.
	if prev.Workers >= 6 && cur.Workers*3 <= prev.Workers*2 {
		add(EventEconomyCrisis, "workers %d -> %d", prev.Workers, cur.Workers)
	}

	if prev.EnemyArmyStrength == 0 && cur.EnemyArmyStrength > 0 {
		add(EventFirstContact, "enemy strength %.0f", cur.EnemyArmyStrength)
	}

	if !prev.EnemyHasAir && cur.EnemyHasAir {
		if cur.HasAntiAir {
			add(EventEnemyAir, "enemy air spotted, anti-air ready")
		} else {
			add(EventEnemyAir, "enemy air spotted, no anti-air")
		}
	}

	if pp, cp := gamePhase(prev), gamePhase(cur); pp != cp {
		add(EventPhaseTransition, "%s -> %s", pp, cp)
	}

	return events
}

func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = fmt.Sprintf("%s (%s)", e.Kind, e.Detail)
	}
	return strings.Join(parts, "; ")
}
