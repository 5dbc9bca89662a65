package rules

import (
	"fmt"
	"sort"

	"github.com/nstehr/vimy/vimy-macro/model"
)

// Severity grades a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one content problem in a rule table. Evaluation never fails on
// these; they exist so content authors see rules that can never fire.
type Finding struct {
	RuleID   string
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: rule %q: %s", f.Severity, f.RuleID, f.Message)
}

// HasErrors reports whether any finding is an error.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Lint checks a rule set for content that the evaluator would silently
// treat as false or 0.
func Lint(rules []model.MacroRule) []Finding {
	var out []Finding
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		id := r.ID
		add := func(sev Severity, format string, args ...any) {
			out = append(out, Finding{RuleID: id, Severity: sev, Message: fmt.Sprintf(format, args...)})
		}
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			add(SeverityError, "missing id")
		} else if seen[id] {
			add(SeverityError, "duplicate id shares a cooldown slot with an earlier rule")
		}
		seen[r.ID] = true

		if r.CooldownTicks < 0 {
			add(SeverityWarning, "negative cooldown %d", r.CooldownTicks)
		}
		for j, c := range r.Conditions {
			for _, msg := range lintCondition(c) {
				add(msg.Severity, "condition %d: %s", j, msg.Message)
			}
		}
		for _, msg := range lintAction(r.Action) {
			add(msg.Severity, "action: %s", msg.Message)
		}
	}
	return out
}

// LintUtility checks named utility scores the same way.
func LintUtility(options map[string]model.UtilityScore) []Finding {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Finding
	for _, name := range names {
		for j, c := range options[name].Conditions {
			for _, msg := range lintCondition(c.Condition()) {
				out = append(out, Finding{
					RuleID:   "utility:" + name,
					Severity: msg.Severity,
					Message:  fmt.Sprintf("condition %d: %s", j, msg.Message),
				})
			}
		}
	}
	return out
}

func lintCondition(c model.RuleCondition) []Finding {
	var out []Finding
	add := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}
	if !c.Type.Known() {
		add(SeverityError, "unknown condition type %q always evaluates false", c.Type)
	}
	if !c.Operator.Known() {
		add(SeverityError, "unknown operator %q always evaluates false", c.Operator)
	}
	if c.Type.NeedsTarget() && c.TargetID == "" {
		add(SeverityWarning, "%s without targetId always counts 0", c.Type)
	}
	if c.CompareRef != "" && !RefKnown(c.CompareRef) {
		add(SeverityWarning, "compareRef %q does not resolve and reads as 0", c.CompareRef)
	}
	if c.CompareRef != "" && (c.Operator == model.OpEqual || c.Operator == model.OpNotEqual) {
		add(SeverityWarning, "compareRef %q is ignored by %s", c.CompareRef, c.Operator)
	}
	return out
}

func lintAction(a model.MacroAction) []Finding {
	var out []Finding
	add := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}
	if !a.Type.Known() {
		add(SeverityError, "unknown action type %q", a.Type)
	}
	if len(a.Options) == 0 {
		return out
	}
	positive := false
	for i, o := range a.Options {
		if o.ID == "" {
			add(SeverityError, "option %d has no id", i)
		}
		if o.Weight > 0 {
			positive = true
		}
	}
	if !positive {
		add(SeverityWarning, "no option has positive weight; the first option always wins")
	}
	return out
}
