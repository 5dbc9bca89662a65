package faction

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-macro/buildorder"
	"github.com/nstehr/vimy/vimy-macro/model"
	"github.com/nstehr/vimy/vimy-macro/rules"
)

// ErrContentLint is returned in strict mode when content has lint errors.
var ErrContentLint = errors.New("content lint failed")

// LoadOptions controls content loading.
type LoadOptions struct {
	// Strict turns rule lint errors and invalid build orders into load
	// failures instead of warnings.
	Strict bool
}

// Content is everything loaded from a content directory.
type Content struct {
	Registry    *Registry
	BuildOrders *buildorder.Table
}

// LoadFile reads one faction document: schema check, typed decode,
// difficulty clamping, default rules when none are declared, then lint.
func LoadFile(path string, opts LoadOptions) (*model.FactionAIConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: schema: %w", path, err)
	}

	var cfg model.FactionAIConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for d, s := range cfg.Difficulty {
		s.Validate()
		cfg.Difficulty[d] = s
	}
	if len(cfg.MacroRules) == 0 {
		cfg.MacroRules = rules.CompileDefaults(&cfg)
		slog.Info("no macro rules declared, compiled defaults", "faction", cfg.ID, "rules", len(cfg.MacroRules))
	}

	findings := append(rules.Lint(cfg.MacroRules), rules.LintUtility(cfg.Utility)...)
	findings = append(findings, LintRoles(&cfg)...)
	for _, f := range findings {
		slog.Warn("rule lint", "faction", cfg.ID, "rule", f.RuleID, "severity", f.Severity, "message", f.Message)
	}
	if opts.Strict && rules.HasErrors(findings) {
		return nil, fmt.Errorf("%s: %d findings: %w", path, len(findings), ErrContentLint)
	}
	return &cfg, nil
}

// LoadDir loads <dir>/factions/*.yaml into a fresh Registry and, if
// present, <dir>/buildorders.yaml. Build orders are validated against their
// faction's catalog.
func LoadDir(dir string, opts LoadOptions) (*Content, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "factions", "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no faction files in %s", filepath.Join(dir, "factions"))
	}

	reg := NewRegistry()
	for _, p := range paths {
		cfg, err := LoadFile(p, opts)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	orders, err := buildorder.Load(filepath.Join(dir, "buildorders.yaml"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		orders = buildorder.NewTable(nil)
	case err != nil:
		return nil, err
	}
	if err := lintBuildOrders(reg, orders, opts); err != nil {
		return nil, err
	}
	return &Content{Registry: reg, BuildOrders: orders}, nil
}

func lintBuildOrders(reg *Registry, orders *buildorder.Table, opts LoadOptions) error {
	failed := 0
	for _, id := range reg.IDs() {
		cfg, _ := reg.Get(id)
		known := buildorder.NewKnownIDs(cfg.Catalog.Units, cfg.Catalog.Buildings, cfg.Catalog.Research)
		for _, d := range model.Difficulties {
			for _, o := range orders.Orders(id, d) {
				res := buildorder.Validate(o, known)
				for _, e := range res.Errors {
					slog.Warn("build order lint", "faction", id, "order", o.ID, "error", e)
				}
				if !res.Valid {
					failed++
				}
			}
		}
		if cfg.BuildOrderKey != "" {
			if _, ok := orders.ByID(cfg.BuildOrderKey); !ok {
				slog.Warn("faction build order key not found", "faction", id, "key", cfg.BuildOrderKey)
			}
		}
	}
	if opts.Strict && failed > 0 {
		return fmt.Errorf("%d invalid build orders: %w", failed, ErrContentLint)
	}
	return nil
}
