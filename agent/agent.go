// Package agent runs the macro decision loop for one AI player session.
package agent

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nstehr/vimy/vimy-macro/buildorder"
	"github.com/nstehr/vimy/vimy-macro/composition"
	"github.com/nstehr/vimy/vimy-macro/faction"
	"github.com/nstehr/vimy/vimy-macro/ipc"
	"github.com/nstehr/vimy/vimy-macro/journal"
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rng"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

// Deps is the shared, read-only state every player session draws on.
type Deps struct {
	Registry    *faction.Registry
	BuildOrders *buildorder.Table
	Selector    *composition.Selector
	Journal     journal.Recorder
	// Seed is used when a hello carries none. Zero means seed from the clock.
	Seed int64
}

// Decision is the engine's answer to one snapshot. RuleID is empty when no
// rule fired.
type Decision struct {
	Tick    int
	RuleID  string
	Action  model.ActionType
	Target  string
	Queue   string
	Count   int
	Ranking []rules.Ranked
	Events  []Event
}

// Agent owns the decision state for a single player: cooldowns, RNG,
// opening. It is driven by one connection and is not safe for concurrent
// use.
type Agent struct {
	deps Deps

	Player      string
	Faction     string
	Difficulty  model.Difficulty
	Personality model.Personality

	config    *model.FactionAIConfig
	settings  model.DifficultySettings
	engine    *rules.Engine
	src       rng.Source
	cooldowns rules.Cooldowns
	pending   map[string]int
	opening   *buildorder.Order
	prev      *model.Snapshot
}

func New(deps Deps) *Agent {
	if deps.Journal == nil {
		deps.Journal = journal.Discard
	}
	if deps.BuildOrders == nil {
		deps.BuildOrders = buildorder.NewTable(nil)
	}
	if deps.Selector == nil && deps.Registry != nil {
		deps.Selector = composition.NewSelector(deps.Registry.CompositionTable())
	}
	return &Agent{deps: deps}
}

// Start binds the agent to a player and faction. It is what a hello message
// does; tests and embedders can call it directly.
func (a *Agent) Start(hello ipc.HelloMessage) error {
	if a.deps.Registry == nil {
		return fmt.Errorf("start %q: no faction registry", hello.Player)
	}
	cfg, ok := a.deps.Registry.Get(hello.Faction)
	if !ok {
		return fmt.Errorf("start %q: %w: %q", hello.Player, faction.ErrUnknownFaction, hello.Faction)
	}
	engine, _ := a.deps.Registry.Engine(hello.Faction)

	d := hello.Difficulty
	if d == "" {
		d = model.Medium
	}
	if !d.Known() {
		return fmt.Errorf("start %q: unknown difficulty %q", hello.Player, d)
	}
	p := hello.Personality
	if p == "" {
		p = model.Balanced
	}

	seed := hello.Seed
	if seed == 0 {
		seed = a.deps.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a.Player = hello.Player
	a.Faction = cfg.ID
	a.Difficulty = d
	a.Personality = p
	a.config = cfg
	a.settings = cfg.Settings(d)
	a.engine = engine
	a.src = rng.New(seed)
	a.cooldowns = rules.Cooldowns{}
	a.pending = make(map[string]int)
	a.prev = nil
	a.opening = a.pickOpening()

	slog.Info("player identified",
		"player", a.Player,
		"faction", a.Faction,
		"difficulty", a.Difficulty,
		"personality", a.Personality,
		"seed", seed,
		"rules", len(engine.Rules()),
	)
	if a.opening != nil {
		a.record(journal.Entry{Kind: journal.KindOpening, Opening: a.opening.ID})
	}
	return nil
}

// pickOpening draws a build order for the session's faction and difficulty,
// falling back to the faction's declared build order key.
func (a *Agent) pickOpening() *buildorder.Order {
	if o, ok := a.deps.BuildOrders.PickRandom(a.Faction, a.Difficulty, a.src); ok {
		return &o
	}
	if a.config.BuildOrderKey != "" {
		if o, ok := a.deps.BuildOrders.ByID(a.config.BuildOrderKey); ok {
			return &o
		}
	}
	slog.Warn("no opening for player", "player", a.Player, "faction", a.Faction, "difficulty", a.Difficulty)
	return nil
}

// Opening returns the selected build order, or nil.
func (a *Agent) Opening() *buildorder.Order { return a.opening }

// Started reports whether a hello has bound the agent to a faction.
func (a *Agent) Started() bool { return a.config != nil }

// Decide evaluates the macro rules against s and resolves the winning
// rule's action into a concrete target. Cooldowns are not touched; the rule
// is held pending at this tick until the simulation reports the action's
// outcome.
func (a *Agent) Decide(s *model.Snapshot) Decision {
	snap := *s
	snap.Config = a.config
	if snap.Difficulty == "" {
		snap.Difficulty = a.Difficulty
	}
	if snap.Personality == "" {
		snap.Personality = a.Personality
	}
	a.fillRoleCounts(&snap)

	d := Decision{
		Tick:    snap.Tick,
		Ranking: rules.Rank(a.config.Utility, &snap),
		Events:  detectEvents(a.prev, &snap),
	}
	a.prev = &snap
	if len(d.Events) > 0 {
		slog.Info("game events", "player", a.Player, "tick", snap.Tick, "events", formatEvents(d.Events))
	}
	for _, e := range d.Events {
		a.record(journal.Entry{Kind: journal.KindEvent, Tick: e.Tick, Event: string(e.Kind), Detail: e.Detail})
	}

	r, ok := a.engine.Select(&snap, a.cooldowns)
	if !ok {
		slog.Debug("no rule fired", "player", a.Player, "tick", snap.Tick)
		return d
	}

	// Lower difficulties occasionally sit on a good decision.
	if a.settings.MistakeChance > 0 && a.src.Next() < a.settings.MistakeChance {
		slog.Debug("decision skipped", "player", a.Player, "tick", snap.Tick, "rule", r.ID)
		return d
	}

	d.RuleID = r.ID
	d.Action = r.Action.Type
	d.Count = r.Action.Count
	d.Target, d.Queue = a.resolveTarget(r, &snap)
	a.pending[r.ID] = snap.Tick

	a.record(journal.Entry{
		Kind:       journal.KindDecision,
		Difficulty: snap.Difficulty,
		Tick:       snap.Tick,
		RuleID:     d.RuleID,
		Action:     d.Action,
		Target:     d.Target,
		Count:      d.Count,
		Ranking:    d.Ranking,
		Snapshot:   &snap,
	})
	return d
}

// resolveTarget turns a rule's action into a concrete content id and
// production queue. Weighted options are drawn first; a train action with
// no target asks the composition selector, steered by the active composition
// goal; "@role" targets map through the
// faction's role table.
func (a *Agent) resolveTarget(r *model.MacroRule, s *model.Snapshot) (target, queue string) {
	target = rules.ResolveTarget(r.Action, a.src)
	if target == "" && r.Action.Type == model.ActionTrain && a.deps.Selector != nil {
		if unit, ok := a.deps.Selector.SelectUnit(a.Faction, s.Difficulty, a.trainable(s), a.src); ok {
			target = unit
		}
	}
	if target == "" {
		return "", ""
	}

	if role, isRole := strings.CutPrefix(target, faction.RolePrefix); isRole {
		queue = a.config.Roles[role].Queue
	}
	id, ok := faction.ResolveRole(a.config, target)
	if !ok {
		slog.Warn("unresolved role target", "player", a.Player, "rule", r.ID, "target", target)
		return "", queue
	}
	return id, queue
}

// fillRoleCounts derives the aggregate counts a simulation left at zero
// from its per-id counts, using the faction's role table.
func (a *Agent) fillRoleCounts(s *model.Snapshot) {
	for _, f := range []struct {
		role  string
		count *int
	}{
		{"worker", &s.Workers},
		{"base", &s.Bases},
		{"production", &s.ProductionBuildings},
	} {
		if *f.count == 0 {
			*f.count = faction.RoleCount(a.config, s, f.role)
		}
	}
}

// trainable narrows the snapshot's buildable units to those below their
// share in the active composition goal. Without a goal, or when nothing
// buildable is short, every buildable unit stays in play.
func (a *Agent) trainable(s *model.Snapshot) []string {
	goal, ok := composition.GoalAt(a.config.Tactical.CompositionGoals, s.Personality, s.GameTime)
	if !ok {
		return s.Buildable
	}
	short := make(map[string]bool)
	for _, d := range composition.Deficits(goal, s.UnitCounts) {
		short[d.UnitID] = true
	}
	var out []string
	for _, id := range s.Buildable {
		if short[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return s.Buildable
	}
	return out
}

// Report applies the simulation's outcome for a pending rule. On success
// the cooldown starts at the tick the rule was decided on; a failed action
// leaves the rule eligible immediately. Results for rules with no pending
// decision are dropped.
func (a *Agent) Report(res ipc.ActionResult) {
	decided, ok := a.pending[res.RuleID]
	if !ok {
		slog.Warn("dropping result for rule with no pending decision", "player", a.Player, "rule", res.RuleID, "tick", res.Tick)
		return
	}
	delete(a.pending, res.RuleID)

	succeeded := res.OK
	a.record(journal.Entry{Kind: journal.KindResult, Tick: res.Tick, RuleID: res.RuleID, OK: &succeeded, Detail: res.Reason})
	if !res.OK {
		slog.Debug("action failed", "player", a.Player, "rule", res.RuleID, "tick", res.Tick, "reason", res.Reason)
		return
	}
	a.cooldowns.Commit(res.RuleID, decided)
}

// Cooldowns returns the session's committed last-fired ticks.
func (a *Agent) Cooldowns() rules.Cooldowns { return a.cooldowns }

func (a *Agent) record(e journal.Entry) {
	e.Player = a.Player
	e.Faction = a.Faction
	if err := a.deps.Journal.Record(e); err != nil {
		slog.Warn("journal write failed", "player", a.Player, "error", err)
	}
}
