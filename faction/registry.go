package faction

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/nstehr/vimy/vimy-macro/composition"
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

var (
	ErrUnknownFaction   = errors.New("unknown faction")
	ErrDuplicateFaction = errors.New("faction already registered")
)

// Registry maps faction ids to their configuration. It is populated at
// startup and read by every player controller afterwards; reads are safe
// from many goroutines. There is no way to remove a faction.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]*model.FactionAIConfig
	engines map[string]*rules.Engine
}

func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]*model.FactionAIConfig),
		engines: make(map[string]*rules.Engine),
	}
}

// Register adds a faction and pre-sorts its macro rules. Callers must not
// mutate cfg afterwards.
func (r *Registry) Register(cfg *model.FactionAIConfig) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("register faction: missing id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.ID]; ok {
		return fmt.Errorf("register %q: %w", cfg.ID, ErrDuplicateFaction)
	}
	r.configs[cfg.ID] = cfg
	r.engines[cfg.ID] = rules.NewEngine(cfg.MacroRules)
	slog.Info("faction registered", "faction", cfg.ID, "rules", len(cfg.MacroRules))
	return nil
}

// Get returns the configuration for id.
func (r *Registry) Get(id string) (*model.FactionAIConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	return cfg, ok
}

// Engine returns the sorted macro rule engine for id.
func (r *Registry) Engine(id string) (*rules.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[id]
	return e, ok
}

// IDs lists registered faction ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CompositionTable collects every registered faction's weight tables.
func (r *Registry) CompositionTable() composition.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t := make(composition.Table, len(r.configs))
	for id, cfg := range r.configs {
		t[id] = cfg.Composition
	}
	return t
}
