// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate runs consistency rules over a stored SKOS vocabulary.
// Rules are independent and read-only; every finding of every selected
// rule is returned.
package validate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// Rule names.
const (
	RuleCyclicHierarchy    = "cyclic_hierarchy"
	RuleOrphanConcept      = "orphan_concept"
	RuleLabelConflict      = "label_conflict"
	RuleAsymmetricRelation = "asymmetric_relation"
	RuleReflexiveRelation  = "reflexive_relation"
	RuleMissingTopConcept  = "missing_top_concept"
	RuleOverlappingLabel   = "overlapping_label"
)

// Querier is the read side of *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type checkFunc func(ctx context.Context, q Querier) ([]types.Finding, error)

type rule struct {
	name     string
	severity types.Severity
	check    checkFunc
}

// registry lists every rule in reporting order.
var registry = []rule{
	{RuleCyclicHierarchy, types.SeverityError, checkCycles},
	{RuleReflexiveRelation, types.SeverityError, checkReflexive},
	{RuleOrphanConcept, types.SeverityWarning, checkOrphans},
	{RuleLabelConflict, types.SeverityWarning, checkLabelConflicts},
	{RuleAsymmetricRelation, types.SeverityWarning, checkAsymmetric},
	{RuleMissingTopConcept, types.SeverityWarning, checkMissingTop},
	{RuleOverlappingLabel, types.SeverityWarning, checkOverlappingLabels},
}

// RuleNames returns every known rule name in reporting order.
func RuleNames() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}

// Validator runs a fixed set of rules.
type Validator struct {
	rules   []rule
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithMetrics counts findings by rule and severity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}

// New returns a Validator for the named rules, or all rules when names is
// empty. Unknown names are an error.
func New(names []string, opts ...Option) (*Validator, error) {
	v := &Validator{logger: zap.NewNop()}
	for _, o := range opts {
		o(v)
	}

	if len(names) == 0 {
		v.rules = registry
		return v, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, r := range registry {
		if want[r.name] {
			v.rules = append(v.rules, r)
			delete(want, r.name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown validation rule %q", n)
	}
	return v, nil
}

// Run executes the rules against q. Callers should pass a transaction so
// every rule sees the same snapshot.
func (v *Validator) Run(ctx context.Context, q Querier) ([]types.Finding, error) {
	start := time.Now()
	var all []types.Finding

	for _, r := range v.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := r.check(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.name, err)
		}
		for i := range found {
			found[i].RuleName = r.name
			found[i].Severity = r.severity
			v.metrics.Finding(r.name, string(r.severity))
		}
		v.logger.Debug("rule checked", zap.String("rule", r.name), zap.Int("findings", len(found)))
		all = append(all, found...)
	}

	v.logger.Info("validation complete",
		zap.Int("rules", len(v.rules)),
		zap.Int("findings", len(all)),
		zap.Duration("duration", time.Since(start)))
	return all, nil
}

// Summary counts findings by severity.
func Summary(findings []types.Finding) (errs, warnings int) {
	for _, f := range findings {
		if f.Severity == types.SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}
