// Package validation runs the ordered rule catalog over a snapshot of the
// three record collections. The engine is synchronous, does no I/O, and is a
// pure function of its input: callers re-run it on every edit for immediate
// feedback and may run arbitrarily many passes concurrently.
package validation

import (
	"gridsmith/internal/logging"
	"gridsmith/internal/records"
)

// Engine aggregates the findings of every rule in catalog order.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over the default rule catalog.
func NewEngine() *Engine {
	return &Engine{rules: Catalog()}
}

// NewEngineWithRules returns an engine over a custom ordered rule list.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Validate runs every rule independently and concatenates the results.
// Findings are reported, never thrown: a panicking rule is contained so the
// remaining rules still run.
func (e *Engine) Validate(snap records.Snapshot) []records.ValidationError {
	timer := logging.StartTimer(logging.CategoryValidation, "validate")
	defer timer.Stop()

	errs := make([]records.ValidationError, 0)
	for _, rule := range e.rules {
		errs = append(errs, runRule(rule, snap)...)
	}

	logging.ValidationDebug("validate: %d rules, %d findings", len(e.rules), len(errs))
	return errs
}

// Summary counts findings by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Summarize tallies a finding list. error-severity findings are the ones a
// caller should gate export on; that gate is the caller's, not the engine's.
func Summarize(errs []records.ValidationError) Summary {
	var s Summary
	for _, e := range errs {
		if e.Severity == records.SeverityError {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
	return s
}

func runRule(rule Rule, snap records.Snapshot) (errs []records.ValidationError) {
	defer func() {
		if r := recover(); r != nil {
			logging.Get(logging.CategoryValidation).Error("rule %s panicked: %v", rule.Name, r)
			errs = nil
		}
	}()
	return rule.Check(snap)
}
