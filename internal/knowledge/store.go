// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists SKOS schemes, concepts, labels, relations,
// and mappings in SQLite and keeps the broader closure table current.
//
// Writes are grouped into batches. Each batch runs in one transaction and
// ends with at most one hierarchy rebuild, so readers always see a closure
// that matches the relations committed with it.
package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/skos-engine/internal/hierarchy"
	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/internal/validate"
	"github.com/pdiddy/skos-engine/pkg/types"
)

const dbFile = "skos.db"

// Sentinel errors returned by write operations.
var (
	ErrSelfRelation        = errors.New("relation source and target are the same concept")
	ErrUnknownConcept      = errors.New("unknown concept")
	ErrInvalidRelationType = errors.New("invalid relation type")
	ErrInvalidLabelType    = errors.New("invalid label type")
	ErrInvalidMappingType  = errors.New("invalid mapping type")
)

// Store manages the SKOS SQLite database.
type Store struct {
	db *sql.DB

	// writeMu serializes write batches. SQLite allows one writer; holding
	// the lock in-process avoids busy retries between our own goroutines.
	writeMu sync.Mutex

	mat     *hierarchy.Materializer
	logger  *zap.Logger
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records hierarchy rebuilds.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithIDGenerator overrides the concept id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore opens or creates the database at cfg.DataDir/skos.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig, opts ...Option) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = types.DefaultDataDir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = types.DefaultBusyTimeout
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		filepath.Join(dataDir, dbFile), busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.mat = hierarchy.New(cfg.Hierarchy.MaxDepth,
		hierarchy.WithLogger(s.logger.Named("hierarchy")),
		hierarchy.WithMetrics(s.metrics))

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schemes (
			uri TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			creator TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS concepts (
			id TEXT PRIMARY KEY,
			uri TEXT NOT NULL UNIQUE,
			pref_label TEXT NOT NULL,
			pref_label_lang TEXT NOT NULL DEFAULT '',
			pref_label_fold TEXT NOT NULL,
			scheme_uri TEXT,
			definition TEXT NOT NULL DEFAULT '',
			definition_fold TEXT NOT NULL DEFAULT '',
			notation TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_concepts_scheme ON concepts(scheme_uri)`,
		`CREATE INDEX IF NOT EXISTS idx_concepts_pref_label ON concepts(pref_label)`,
		`CREATE TABLE IF NOT EXISTS labels (
			concept_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			type TEXT NOT NULL CHECK (type IN ('alt', 'hidden')),
			text TEXT NOT NULL,
			text_fold TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			UNIQUE (concept_id, type, text, language)
		)`,
		`CREATE TABLE IF NOT EXISTS relations (
			source_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			target_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			type TEXT NOT NULL CHECK (type IN ('broader', 'narrower', 'related', 'broaderTransitive', 'narrowerTransitive')),
			CHECK (source_id <> target_id),
			UNIQUE (source_id, target_id, type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id, type)`,
		`CREATE TABLE IF NOT EXISTS mappings (
			concept_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			target_uri TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('exactMatch', 'closeMatch', 'broadMatch', 'narrowMatch', 'relatedMatch')),
			confidence REAL NOT NULL DEFAULT 1.0 CHECK (confidence >= 0 AND confidence <= 1),
			UNIQUE (concept_id, target_uri, type)
		)`,
		`CREATE TABLE IF NOT EXISTS hierarchy_paths (
			ancestor_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			descendant_id TEXT NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			depth INTEGER NOT NULL,
			PRIMARY KEY (ancestor_id, descendant_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hierarchy_descendant ON hierarchy_paths(descendant_id, depth)`,
		`CREATE TABLE IF NOT EXISTS hierarchy_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			stale INTEGER NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			refreshed_at TEXT
		)`,
		`INSERT OR IGNORE INTO hierarchy_state (id, stale) VALUES (1, 1)`,

		// Any change to broader edges or to the concept set invalidates
		// the closure. Triggers only flag it; the store rebuilds once per
		// batch.
		`CREATE TRIGGER IF NOT EXISTS relations_ai AFTER INSERT ON relations
			WHEN new.type = 'broader' BEGIN
			UPDATE hierarchy_state SET stale = 1 WHERE id = 1;
		END`,
		`CREATE TRIGGER IF NOT EXISTS relations_au AFTER UPDATE ON relations
			WHEN old.type = 'broader' OR new.type = 'broader' BEGIN
			UPDATE hierarchy_state SET stale = 1 WHERE id = 1;
		END`,
		`CREATE TRIGGER IF NOT EXISTS relations_ad AFTER DELETE ON relations
			WHEN old.type = 'broader' BEGIN
			UPDATE hierarchy_state SET stale = 1 WHERE id = 1;
		END`,
		`CREATE TRIGGER IF NOT EXISTS concepts_ai AFTER INSERT ON concepts BEGIN
			UPDATE hierarchy_state SET stale = 1 WHERE id = 1;
		END`,
		`CREATE TRIGGER IF NOT EXISTS concepts_ad AFTER DELETE ON concepts BEGIN
			UPDATE hierarchy_state SET stale = 1 WHERE id = 1;
		END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Batch groups writes into one transaction. It is only valid inside the
// function passed to Store.Batch.
type Batch struct {
	tx *sql.Tx
	s  *Store
}

// Batch runs fn in a write transaction. If fn returns nil the closure table
// is rebuilt when stale and the transaction commits; otherwise nothing is
// written. Statement failures that fn records and does not return leave
// the rest of the batch intact.
func (s *Store) Batch(ctx context.Context, fn func(b *Batch) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Batch{tx: tx, s: s}); err != nil {
		return err
	}

	if _, _, err := s.mat.RebuildIfStale(ctx, tx); err != nil {
		return fmt.Errorf("materializing hierarchy: %w", err)
	}

	return tx.Commit()
}

// Materialize rebuilds the closure table now if the batch left it stale,
// so later reads in the same batch see it. The bool reports whether a
// rebuild ran.
func (b *Batch) Materialize(ctx context.Context) (hierarchy.Result, bool, error) {
	return b.s.mat.RebuildIfStale(ctx, b.tx)
}

// Validate runs v against the batch's uncommitted state.
func (b *Batch) Validate(ctx context.Context, v *validate.Validator) ([]types.Finding, error) {
	return v.Run(ctx, b.tx)
}

// BatchResult summarizes a multi-row write.
type BatchResult struct {
	Inserted int
	Skipped  int // already present
	Errors   []error
}

// add records one row outcome.
func (r *BatchResult) add(inserted bool, err error) {
	switch {
	case err != nil:
		r.Errors = append(r.Errors, err)
	case inserted:
		r.Inserted++
	default:
		r.Skipped++
	}
}

// RefreshHierarchy rebuilds the closure table unconditionally.
func (s *Store) RefreshHierarchy(ctx context.Context) (hierarchy.Result, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hierarchy.Result{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := s.mat.Rebuild(ctx, tx)
	if err != nil {
		return hierarchy.Result{}, err
	}
	return res, tx.Commit()
}

// RefreshHierarchyIfStale rebuilds the closure table only when a write
// left it stale. The bool reports whether a rebuild ran.
func (s *Store) RefreshHierarchyIfStale(ctx context.Context) (hierarchy.Result, bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hierarchy.Result{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, ran, err := s.mat.RebuildIfStale(ctx, tx)
	if err != nil {
		return hierarchy.Result{}, false, err
	}
	return res, ran, tx.Commit()
}

// Validate runs v in a read transaction so every rule sees one snapshot.
func (s *Store) Validate(ctx context.Context, v *validate.Validator) ([]types.Finding, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	return v.Run(ctx, tx)
}

// Stats returns row counts and closure state.
func (s *Store) Stats(ctx context.Context) (types.StoreStats, error) {
	var st types.StoreStats
	var stale int
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM schemes),
		(SELECT count(*) FROM concepts),
		(SELECT count(*) FROM labels),
		(SELECT count(*) FROM relations),
		(SELECT count(*) FROM mappings),
		(SELECT count(*) FROM hierarchy_paths),
		(SELECT COALESCE(MAX(depth), 0) FROM hierarchy_paths),
		(SELECT stale FROM hierarchy_state WHERE id = 1)`,
	).Scan(&st.Schemes, &st.Concepts, &st.Labels, &st.Relations, &st.Mappings,
		&st.Paths, &st.MaxDepth, &stale)
	if err != nil {
		return types.StoreStats{}, fmt.Errorf("reading stats: %w", err)
	}
	st.HierarchyStale = stale != 0
	return st, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
