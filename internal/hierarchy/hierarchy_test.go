// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/pkg/types"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE concepts (id TEXT PRIMARY KEY)`,
		`CREATE TABLE relations (source_id TEXT, target_id TEXT, type TEXT)`,
		`CREATE TABLE hierarchy_paths (
			ancestor_id TEXT, descendant_id TEXT, depth INTEGER,
			PRIMARY KEY (ancestor_id, descendant_id)
		)`,
		`CREATE TABLE hierarchy_state (id INTEGER PRIMARY KEY, stale INTEGER, version INTEGER, refreshed_at TEXT)`,
		`INSERT INTO hierarchy_state VALUES (1, 1, 0, NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

// chain inserts concepts c0..cn-1 with ci broader ci-1.
func chain(t *testing.T, db *sql.DB, n int) {
	t.Helper()
	ids := []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	require.LessOrEqual(t, n, len(ids))
	for i := 0; i < n; i++ {
		_, err := db.Exec(`INSERT INTO concepts (id) VALUES (?)`, ids[i])
		require.NoError(t, err)
		if i > 0 {
			_, err := db.Exec(`INSERT INTO relations VALUES (?, ?, 'broader')`, ids[i], ids[i-1])
			require.NoError(t, err)
		}
	}
}

func rebuild(t *testing.T, db *sql.DB, m *Materializer) Result {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err)
	res, err := m.Rebuild(context.Background(), tx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return res
}

func depth(t *testing.T, db *sql.DB, anc, desc string) (int, bool) {
	t.Helper()
	var d int
	err := db.QueryRow(`SELECT depth FROM hierarchy_paths WHERE ancestor_id = ? AND descendant_id = ?`, anc, desc).Scan(&d)
	if err == sql.ErrNoRows {
		return 0, false
	}
	require.NoError(t, err)
	return d, true
}

func TestNewDefaultsMaxDepth(t *testing.T) {
	assert.Equal(t, types.DefaultMaxDepth, New(0).MaxDepth())
	assert.Equal(t, types.DefaultMaxDepth, New(-3).MaxDepth())
	assert.Equal(t, 7, New(7).MaxDepth())
}

func TestRebuildChain(t *testing.T) {
	db := testDB(t)
	chain(t, db, 4)

	res := rebuild(t, db, New(0))
	// 4 self paths + 3 + 2 + 1.
	assert.Equal(t, 10, res.Paths)
	assert.Equal(t, 3, res.MaxDepth)
	assert.False(t, res.CeilingReached)

	d, ok := depth(t, db, "c0", "c3")
	require.True(t, ok)
	assert.Equal(t, 3, d)

	_, ok = depth(t, db, "c3", "c0")
	assert.False(t, ok, "closure must follow broader direction only")
}

func TestRebuildStopsAtCeiling(t *testing.T) {
	db := testDB(t)
	chain(t, db, 6)

	res := rebuild(t, db, New(2))
	assert.True(t, res.CeilingReached)
	assert.Equal(t, 2, res.MaxDepth)

	_, ok := depth(t, db, "c0", "c2")
	assert.True(t, ok)
	_, ok = depth(t, db, "c0", "c3")
	assert.False(t, ok)
}

func TestRebuildIgnoresNonBroaderRelations(t *testing.T) {
	db := testDB(t)
	chain(t, db, 2)
	_, err := db.Exec(`INSERT INTO relations VALUES ('c0', 'c1', 'narrower'), ('c0', 'c1', 'related')`)
	require.NoError(t, err)

	res := rebuild(t, db, New(0))
	assert.Equal(t, 3, res.Paths)
}

func TestRebuildIfStale(t *testing.T) {
	db := testDB(t)
	chain(t, db, 3)
	ctx := context.Background()
	m := New(0)

	stale, err := Stale(ctx, db)
	require.NoError(t, err)
	assert.True(t, stale)

	tx, err := db.Begin()
	require.NoError(t, err)
	_, ran, err := m.RebuildIfStale(ctx, tx)
	require.NoError(t, err)
	assert.True(t, ran)
	require.NoError(t, tx.Commit())

	stale, err = Stale(ctx, db)
	require.NoError(t, err)
	assert.False(t, stale)

	tx, err = db.Begin()
	require.NoError(t, err)
	_, ran, err = m.RebuildIfStale(ctx, tx)
	require.NoError(t, err)
	assert.False(t, ran)
	require.NoError(t, tx.Rollback())

	var version int
	require.NoError(t, db.QueryRow(`SELECT version FROM hierarchy_state WHERE id = 1`).Scan(&version))
	assert.Equal(t, 1, version)
}

func TestRebuildRecordsMetrics(t *testing.T) {
	db := testDB(t)
	chain(t, db, 3)

	reg := prometheus.NewRegistry()
	mt, err := metrics.New(reg)
	require.NoError(t, err)

	rebuild(t, db, New(0, WithMetrics(mt)))

	n, err := testutil.GatherAndCount(reg, "skos_engine_hierarchy_rebuilds_total", "skos_engine_hierarchy_paths")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
