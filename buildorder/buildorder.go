// Package buildorder selects and lints scripted opening sequences.
package buildorder

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rng"
)

// StepType scopes which id namespace a step's ID belongs to.
type StepType string

const (
	StepUnit     StepType = "unit"
	StepBuilding StepType = "building"
	StepResearch StepType = "research"
	StepAbility  StepType = "ability"
)

// Step is one entry of an opening. Supply and Time are soft triggers the
// simulation may use to pace the order.
type Step struct {
	Type      StepType `json:"type" yaml:"type"`
	ID        string   `json:"id" yaml:"id"`
	Supply    int      `json:"supply,omitempty" yaml:"supply,omitempty"`
	Time      float64  `json:"time,omitempty" yaml:"time,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Priority  int      `json:"priority,omitempty" yaml:"priority,omitempty"`
	Count     int      `json:"count,omitempty" yaml:"count,omitempty"`
	Comment   string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Order is a named opening for one faction and difficulty. TransitionTo,
// when set, names the order to run after this one completes.
type Order struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Faction      string           `json:"faction" yaml:"faction"`
	Difficulty   model.Difficulty `json:"difficulty" yaml:"difficulty"`
	Style        string           `json:"style" yaml:"style"`
	Steps        []Step           `json:"steps" yaml:"steps"`
	TransitionTo string           `json:"transitionTo,omitempty" yaml:"transitionTo,omitempty"`
}

// Table indexes orders by faction, then difficulty. The zero value is an
// empty table; lookups on it return nothing rather than failing.
type Table struct {
	byKey map[string]map[model.Difficulty][]Order
	byID  map[string]Order
}

// NewTable indexes orders, preserving their relative order within each
// faction/difficulty bucket. Later orders with a duplicate id shadow earlier
// ones in ByID lookups.
func NewTable(orders []Order) *Table {
	t := &Table{
		byKey: make(map[string]map[model.Difficulty][]Order),
		byID:  make(map[string]Order, len(orders)),
	}
	for _, o := range orders {
		byDiff, ok := t.byKey[o.Faction]
		if !ok {
			byDiff = make(map[model.Difficulty][]Order)
			t.byKey[o.Faction] = byDiff
		}
		byDiff[o.Difficulty] = append(byDiff[o.Difficulty], o)
		if _, dup := t.byID[o.ID]; dup {
			slog.Warn("duplicate build order id", "id", o.ID, "faction", o.Faction)
		}
		t.byID[o.ID] = o
	}
	return t
}

// Orders returns the openings for a faction and difficulty, or nil.
func (t *Table) Orders(faction string, d model.Difficulty) []Order {
	if t == nil {
		return nil
	}
	return t.byKey[faction][d]
}

// ByID looks up an order by id.
func (t *Table) ByID(id string) (Order, bool) {
	if t == nil {
		return Order{}, false
	}
	o, ok := t.byID[id]
	return o, ok
}

// PickRandom draws one opening uniformly from Orders(faction, d).
func (t *Table) PickRandom(faction string, d model.Difficulty, src rng.Source) (Order, bool) {
	orders := t.Orders(faction, d)
	if len(orders) == 0 {
		return Order{}, false
	}
	i := int(src.Next() * float64(len(orders)))
	if i >= len(orders) {
		i = len(orders) - 1
	}
	return orders[i], true
}

// Chain follows TransitionTo links starting at start and returns the orders
// in execution order. It stops at an unknown id or on revisiting an order.
func (t *Table) Chain(start Order) []Order {
	chain := []Order{start}
	seen := map[string]bool{start.ID: true}
	next := start.TransitionTo
	for next != "" && !seen[next] {
		o, ok := t.ByID(next)
		if !ok {
			slog.Warn("build order transition to unknown id", "from", chain[len(chain)-1].ID, "to", next)
			break
		}
		seen[next] = true
		chain = append(chain, o)
		next = o.TransitionTo
	}
	return chain
}

// KnownIDs are the content ids a build order may reference.
type KnownIDs struct {
	Units     map[string]bool
	Buildings map[string]bool
	Research  map[string]bool
}

// NewKnownIDs builds id sets from plain lists.
func NewKnownIDs(units, buildings, research []string) KnownIDs {
	set := func(ids []string) map[string]bool {
		m := make(map[string]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		return m
	}
	return KnownIDs{Units: set(units), Buildings: set(buildings), Research: set(research)}
}

// Result is the outcome of Validate. Errors is never nil.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate reports one error per step whose id is missing from the id set
// its type selects. Ability steps have no id set and are not checked. The
// order itself is never modified.
func Validate(o Order, known KnownIDs) Result {
	errs := []string{}
	for i, step := range o.Steps {
		var ids map[string]bool
		switch step.Type {
		case StepUnit:
			ids = known.Units
		case StepBuilding:
			ids = known.Buildings
		case StepResearch:
			ids = known.Research
		case StepAbility:
			continue
		default:
			errs = append(errs, fmt.Sprintf("step %d: unknown step type %q for id %q", i, step.Type, step.ID))
			continue
		}
		if !ids[step.ID] {
			errs = append(errs, fmt.Sprintf("step %d: unknown %s id %q", i, step.Type, step.ID))
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// File is the on-disk layout of buildorders.yaml.
type File struct {
	BuildOrders []Order `yaml:"buildOrders"`
}

// Load reads a buildorders.yaml file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewTable(f.BuildOrders), nil
}
