// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hierarchy materializes the transitive closure of skos:broader
// into the hierarchy_paths table.
//
// The table is a cache derived from the relations table. Rebuild replaces
// it wholesale inside the caller's transaction, so readers see either the
// previous closure or the new one, never a partial one.
package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// Execer is the subset of *sql.Tx used by the materializer.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Result describes one rebuild.
type Result struct {
	// Paths is the number of rows written, self paths included.
	Paths int

	// MaxDepth is the largest depth recorded.
	MaxDepth int

	// CeilingReached is set when some path reached the depth ceiling; the
	// closure below that point may be incomplete.
	CeilingReached bool

	Duration time.Duration
}

// Materializer rebuilds the closure table.
type Materializer struct {
	maxDepth int
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(m *Materializer) { m.logger = l }
}

// WithMetrics records rebuild counts and latency.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Materializer) { m.metrics = mt }
}

// New creates a Materializer. maxDepth is the cycle-safety ceiling; values
// below one use types.DefaultMaxDepth.
func New(maxDepth int, opts ...Option) *Materializer {
	if maxDepth <= 0 {
		maxDepth = types.DefaultMaxDepth
	}
	m := &Materializer{maxDepth: maxDepth, logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// MaxDepth returns the configured ceiling.
func (m *Materializer) MaxDepth() int {
	return m.maxDepth
}

// closureSQL expands broader edges level by level. UNION drops repeated
// (ancestor, descendant, depth) rows, so the recursion ends once no new
// path is found or the ceiling is reached. A concept is never recorded as
// its own ancestor above depth 0.
const closureSQL = `INSERT INTO hierarchy_paths (ancestor_id, descendant_id, depth)
	WITH RECURSIVE closure(ancestor_id, descendant_id, depth) AS (
		SELECT target_id, source_id, 1
		FROM relations
		WHERE type = 'broader' AND source_id <> target_id
		UNION
		SELECT r.target_id, c.descendant_id, c.depth + 1
		FROM closure c
		JOIN relations r ON r.source_id = c.ancestor_id AND r.type = 'broader'
		WHERE c.depth < ? AND r.target_id <> c.descendant_id
	)
	SELECT ancestor_id, descendant_id, MIN(depth)
	FROM closure
	GROUP BY ancestor_id, descendant_id`

// Rebuild truncates and repopulates hierarchy_paths and clears the stale
// flag. It must run inside a transaction; it never fails because of cycles.
func (m *Materializer) Rebuild(ctx context.Context, tx Execer) (Result, error) {
	start := time.Now()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hierarchy_paths`); err != nil {
		return Result{}, fmt.Errorf("truncating hierarchy paths: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO hierarchy_paths (ancestor_id, descendant_id, depth)
		 SELECT id, id, 0 FROM concepts`,
	); err != nil {
		return Result{}, fmt.Errorf("writing self paths: %w", err)
	}

	if _, err := tx.ExecContext(ctx, closureSQL, m.maxDepth); err != nil {
		return Result{}, fmt.Errorf("expanding closure: %w", err)
	}

	var res Result
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(MAX(depth), 0) FROM hierarchy_paths`,
	).Scan(&res.Paths, &res.MaxDepth); err != nil {
		return Result{}, fmt.Errorf("counting hierarchy paths: %w", err)
	}
	res.CeilingReached = res.MaxDepth >= m.maxDepth

	if _, err := tx.ExecContext(ctx,
		`UPDATE hierarchy_state SET stale = 0, version = version + 1, refreshed_at = ? WHERE id = 1`,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return Result{}, fmt.Errorf("clearing stale flag: %w", err)
	}

	res.Duration = time.Since(start)
	m.metrics.Rebuild(res.Duration, res.Paths)

	if res.CeilingReached {
		m.logger.Warn("hierarchy depth ceiling reached; closure may be incomplete",
			zap.Int("max_depth", m.maxDepth))
	}
	m.logger.Debug("hierarchy rebuilt",
		zap.Int("paths", res.Paths),
		zap.Int("max_depth", res.MaxDepth),
		zap.Duration("duration", res.Duration))

	return res, nil
}

// Stale reports whether relations or concepts changed since the last
// rebuild.
func Stale(ctx context.Context, q Execer) (bool, error) {
	var stale int
	if err := q.QueryRowContext(ctx,
		`SELECT stale FROM hierarchy_state WHERE id = 1`,
	).Scan(&stale); err != nil {
		return false, fmt.Errorf("reading hierarchy state: %w", err)
	}
	return stale != 0, nil
}

// RebuildIfStale rebuilds only when the stale flag is set. The returned
// bool reports whether a rebuild ran.
func (m *Materializer) RebuildIfStale(ctx context.Context, tx Execer) (Result, bool, error) {
	stale, err := Stale(ctx, tx)
	if err != nil {
		return Result{}, false, err
	}
	if !stale {
		return Result{}, false, nil
	}
	res, err := m.Rebuild(ctx, tx)
	return res, err == nil, err
}
