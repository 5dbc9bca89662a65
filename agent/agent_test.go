package agent

import (
	"errors"
	"testing"

	"github.com/nstehr/vimy/vimy-macro/buildorder"
	"github.com/nstehr/vimy/vimy-macro/faction"
	"github.com/nstehr/vimy/vimy-macro/ipc"
	"github.com/nstehr/vimy/vimy-macro/journal"
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rng"
)

type memJournal struct{ entries []journal.Entry }

func (m *memJournal) Record(e journal.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) kinds(k journal.Kind) []journal.Entry {
	var out []journal.Entry
	for _, e := range m.entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func testFaction() *model.FactionAIConfig {
	return &model.FactionAIConfig{
		ID:            "vanguard",
		Name:          "Vanguard",
		BuildOrderKey: "vanguard_standard",
		Roles: map[string]model.Role{
			"supply": {Queue: "build", IDs: []string{"depot"}},
			"worker": {Queue: "base", IDs: []string{"worker"}},
		},
		Difficulty: map[model.Difficulty]model.DifficultySettings{
			model.Easy:   {DecisionIntervalTicks: 44, MistakeChance: 1},
			model.Medium: {DecisionIntervalTicks: 22},
		},
		MacroRules: []model.MacroRule{
			{
				ID: "supply", Priority: 150, CooldownTicks: 40,
				Conditions: []model.RuleCondition{
					{Type: model.CondSupplyRatio, Operator: model.OpGreaterEqual, Value: model.Number(0.85)},
				},
				Action: model.MacroAction{Type: model.ActionBuild, TargetID: "@supply", Count: 1},
			},
			{
				ID: "army", Priority: 70, CooldownTicks: 5,
				Conditions: []model.RuleCondition{
					{Type: model.CondMinerals, Operator: model.OpGreaterEqual, Value: model.Number(100)},
				},
				Action: model.MacroAction{Type: model.ActionTrain, Count: 1},
			},
			{
				ID: "scout", Priority: 10, CooldownTicks: 100,
				Conditions: []model.RuleCondition{
					{Type: model.CondEnemyBases, Operator: model.OpMissing},
				},
				Action: model.MacroAction{Type: model.ActionScout, TargetID: "@scout"},
			},
		},
		Utility: map[string]model.UtilityScore{
			"defend": {BaseScore: 1, Conditions: []model.UtilityCondition{
				{Type: model.CondUnderAttack, Operator: model.OpEqual, Value: model.Bool(true), Multiplier: 4},
			}},
			"attack": {BaseScore: 2},
		},
		Composition: map[model.Difficulty]model.Weights{
			model.Medium: {"marine": 3, "marauder": 1},
		},
		Tactical: model.TacticalConfig{
			CompositionGoals: []model.CompositionGoal{
				{Personality: model.Defensive, Targets: model.Weights{"marine": 50, "marauder": 50}},
			},
		},
	}
}

func testOrders() *buildorder.Table {
	return buildorder.NewTable([]buildorder.Order{
		{
			ID: "vanguard_standard", Faction: "vanguard", Difficulty: model.Medium, TransitionTo: "vanguard_mid",
			Steps: []buildorder.Step{{Type: buildorder.StepBuilding, ID: "depot", Supply: 14}},
		},
		{ID: "vanguard_mid", Faction: "vanguard", Difficulty: model.Hard},
	})
}

func newTestAgent(t *testing.T) (*Agent, *memJournal) {
	t.Helper()
	reg := faction.NewRegistry()
	if err := reg.Register(testFaction()); err != nil {
		t.Fatal(err)
	}
	j := &memJournal{}
	return New(Deps{Registry: reg, BuildOrders: testOrders(), Journal: j, Seed: 7}), j
}

func startedAgent(t *testing.T, d model.Difficulty, p model.Personality) (*Agent, *memJournal) {
	t.Helper()
	a, j := newTestAgent(t)
	if err := a.Start(ipc.HelloMessage{Player: "p1", Faction: "vanguard", Difficulty: d, Personality: p}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return a, j
}

func supplyBlocked(tick int) *model.Snapshot {
	return &model.Snapshot{
		Tick: tick, Minerals: 150, Supply: 46, MaxSupply: 50, Workers: 16, Bases: 1, EnemyBases: 1,
		Buildable: []string{"marine", "marauder"},
	}
}

func TestStartRejectsUnknownFaction(t *testing.T) {
	a, _ := newTestAgent(t)
	err := a.Start(ipc.HelloMessage{Player: "p1", Faction: "swarm"})
	if !errors.Is(err, faction.ErrUnknownFaction) {
		t.Errorf("Start = %v, want ErrUnknownFaction", err)
	}
	if a.Started() {
		t.Error("agent should not be started")
	}
}

func TestStartRejectsUnknownDifficulty(t *testing.T) {
	a, _ := newTestAgent(t)
	if err := a.Start(ipc.HelloMessage{Player: "p1", Faction: "vanguard", Difficulty: "nightmare"}); err == nil {
		t.Error("Start with unknown difficulty should fail")
	}
}

func TestStartDefaults(t *testing.T) {
	a, j := startedAgent(t, "", "")
	if a.Difficulty != model.Medium || a.Personality != model.Balanced {
		t.Errorf("defaults = %s/%s, want medium/balanced", a.Difficulty, a.Personality)
	}
	if a.Opening() == nil || a.Opening().ID != "vanguard_standard" {
		t.Errorf("opening = %v, want vanguard_standard", a.Opening())
	}
	if got := j.kinds(journal.KindOpening); len(got) != 1 || got[0].Player != "p1" {
		t.Errorf("opening entries = %+v", got)
	}
}

func TestStartOpeningFallsBackToBuildOrderKey(t *testing.T) {
	a, _ := startedAgent(t, model.Easy, model.Balanced)
	if a.Opening() == nil || a.Opening().ID != "vanguard_standard" {
		t.Errorf("opening = %v, want build order key fallback", a.Opening())
	}
}

func TestDecideCooldownCommitsOnSuccess(t *testing.T) {
	a, j := startedAgent(t, model.Medium, model.Balanced)

	d := a.Decide(supplyBlocked(200))
	if d.RuleID != "supply" || d.Target != "depot" || d.Queue != "build" || d.Action != model.ActionBuild {
		t.Fatalf("decision = %+v, want supply -> depot on build queue", d)
	}
	if _, ok := a.Cooldowns()["supply"]; ok {
		t.Fatal("Decide must not commit cooldowns")
	}

	// Still supply until the simulation confirms.
	if d := a.Decide(supplyBlocked(210)); d.RuleID != "supply" {
		t.Errorf("unconfirmed rule = %q, want supply again", d.RuleID)
	}

	a.Report(ipc.ActionResult{RuleID: "supply", Tick: 214, OK: true})
	if got := a.Cooldowns()["supply"]; got != 210 {
		t.Errorf("cooldown = %d, want 210 (the decision tick)", got)
	}

	if d := a.Decide(supplyBlocked(230)); d.RuleID != "army" {
		t.Errorf("during cooldown rule = %q, want army", d.RuleID)
	}
	if d := a.Decide(supplyBlocked(250)); d.RuleID != "supply" {
		t.Errorf("after cooldown rule = %q, want supply", d.RuleID)
	}

	if n := len(j.kinds(journal.KindDecision)); n != 4 {
		t.Errorf("decision entries = %d, want 4", n)
	}
	res := j.kinds(journal.KindResult)
	if len(res) != 1 || res[0].OK == nil || !*res[0].OK {
		t.Errorf("result entries = %+v", res)
	}
}

func TestReportFailureLeavesRuleReady(t *testing.T) {
	a, _ := startedAgent(t, model.Medium, model.Balanced)
	a.Decide(supplyBlocked(200))
	a.Report(ipc.ActionResult{RuleID: "supply", Tick: 201, OK: false, Reason: "no placement"})
	if _, ok := a.Cooldowns()["supply"]; ok {
		t.Error("failed action must not start a cooldown")
	}
	if d := a.Decide(supplyBlocked(202)); d.RuleID != "supply" {
		t.Errorf("rule = %q, want supply", d.RuleID)
	}
}

func TestReportWithoutPendingDecision(t *testing.T) {
	a, j := startedAgent(t, model.Medium, model.Balanced)
	a.Report(ipc.ActionResult{RuleID: "supply", Tick: 50, OK: true})
	if _, ok := a.Cooldowns()["supply"]; ok {
		t.Error("a result with no pending decision must not start a cooldown")
	}
	if n := len(j.kinds(journal.KindResult)); n != 0 {
		t.Errorf("result entries = %d, want 0", n)
	}

	a.Decide(supplyBlocked(200))
	a.Report(ipc.ActionResult{RuleID: "supply", Tick: 201, OK: true})
	a.Report(ipc.ActionResult{RuleID: "supply", Tick: 260, OK: true})
	if got := a.Cooldowns()["supply"]; got != 200 {
		t.Errorf("cooldown = %d, want 200; a repeated result must not move it", got)
	}
}

func TestDecideTrainUsesComposition(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0.0, "marine"},
		{0.5, "marine"},
		{0.9, "marauder"},
	}
	for _, tc := range tests {
		a, _ := startedAgent(t, model.Medium, model.Balanced)
		a.src = rng.NewSequence(tc.draw)
		s := supplyBlocked(100)
		s.Supply = 20
		d := a.Decide(s)
		if d.RuleID != "army" || d.Target != tc.want {
			t.Errorf("draw %.1f: decision = %s -> %q, want army -> %q", tc.draw, d.RuleID, d.Target, tc.want)
		}
	}
}

func TestDecideTrainFollowsCompositionGoal(t *testing.T) {
	a, _ := startedAgent(t, model.Medium, model.Defensive)
	a.src = rng.NewSequence(0.0)
	s := supplyBlocked(100)
	s.Supply = 20
	s.UnitCounts = map[string]int{"marine": 10}
	if d := a.Decide(s); d.Target != "marauder" {
		t.Errorf("target = %q, want marauder to close the goal gap", d.Target)
	}
}

func TestDecideUnresolvedRole(t *testing.T) {
	a, _ := startedAgent(t, model.Medium, model.Balanced)
	s := supplyBlocked(100)
	s.Supply, s.Minerals, s.EnemyBases = 10, 0, 0
	d := a.Decide(s)
	if d.RuleID != "scout" || d.Target != "" {
		t.Errorf("decision = %+v, want scout with no target", d)
	}
}

func TestDecideMistakeChance(t *testing.T) {
	a, j := startedAgent(t, model.Easy, model.Balanced)
	d := a.Decide(supplyBlocked(200))
	if d.RuleID != "" {
		t.Errorf("rule = %q, want skipped decision", d.RuleID)
	}
	if len(d.Ranking) == 0 {
		t.Error("ranking should still be reported")
	}
	if n := len(j.kinds(journal.KindDecision)); n != 0 {
		t.Errorf("decision entries = %d, want 0", n)
	}
}

func TestDecideRankingAndEvents(t *testing.T) {
	a, j := startedAgent(t, model.Medium, model.Balanced)
	a.Decide(supplyBlocked(100))

	s := supplyBlocked(122)
	s.UnderAttack = true
	d := a.Decide(s)
	if len(d.Ranking) != 2 || d.Ranking[0].Name != "defend" || d.Ranking[0].Score != 4 {
		t.Errorf("ranking = %+v, want defend first with 4", d.Ranking)
	}
	if !hasEvent(d.Events, EventUnderAttack) {
		t.Errorf("events = %+v, want under_attack", d.Events)
	}
	ev := j.kinds(journal.KindEvent)
	if len(ev) == 0 || ev[0].Event != string(EventUnderAttack) || ev[0].Faction != "vanguard" {
		t.Errorf("event entries = %+v", ev)
	}
}

func TestDecideFillsCountsFromRoles(t *testing.T) {
	a, j := startedAgent(t, model.Medium, model.Balanced)
	s := supplyBlocked(100)
	s.Workers = 0
	s.UnitCounts = map[string]int{"worker": 12, "marine": 4}
	a.Decide(s)

	dec := j.kinds(journal.KindDecision)
	if len(dec) != 1 || dec[0].Snapshot == nil {
		t.Fatalf("decision entries = %+v", dec)
	}
	if got := dec[0].Snapshot.Workers; got != 12 {
		t.Errorf("workers = %d, want 12 from the worker role", got)
	}
	if got := dec[0].Snapshot.Bases; got != 1 {
		t.Errorf("bases = %d, want the reported 1 kept", got)
	}
	if s.Workers != 0 {
		t.Error("Decide mutated the caller's snapshot")
	}
}

func TestDecideDoesNotMutateSnapshot(t *testing.T) {
	a, _ := startedAgent(t, model.Medium, model.Balanced)
	s := supplyBlocked(100)
	a.Decide(s)
	if s.Config != nil || s.Difficulty != "" {
		t.Error("Decide mutated the caller's snapshot")
	}
}
