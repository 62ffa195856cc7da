package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/skos-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	return testSetupDepth(t, 0)
}

func testSetupDepth(t *testing.T, maxDepth int) *Store {
	t.Helper()
	cfg := types.StoreConfig{
		DataDir:   t.TempDir(),
		Hierarchy: types.HierarchyConfig{MaxDepth: maxDepth},
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

const ex = "http://example.org/"

func mustConcept(t *testing.T, s *Store, local, label, scheme string) string {
	t.Helper()
	id, err := s.UpsertConcept(context.Background(), types.Concept{
		URI:       ex + local,
		PrefLabel: label,
		SchemeURI: scheme,
	})
	if err != nil {
		t.Fatalf("UpsertConcept(%s): %v", local, err)
	}
	return id
}

func mustBroader(t *testing.T, s *Store, child, parent string) {
	t.Helper()
	if _, err := s.AddRelation(context.Background(), types.Relation{
		SourceID: child, TargetID: parent, Type: types.RelBroader,
	}); err != nil {
		t.Fatalf("AddRelation: %v", err)
	}
}

func count(t *testing.T, s *Store, query string, args ...any) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func stateVersion(t *testing.T, s *Store) int {
	t.Helper()
	return count(t, s, `SELECT version FROM hierarchy_state WHERE id = 1`)
}

func entryDepths(entries []types.HierarchyEntry) map[string]int {
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		m[e.ID] = e.Depth
	}
	return m
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store := testSetup(t)

	tables := []string{"schemes", "concepts", "labels", "relations", "mappings", "hierarchy_paths", "hierarchy_state"}
	for _, table := range tables {
		n := count(t, store, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if n == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(dir, dbFile)); os.IsNotExist(err) {
		t.Errorf("database file not created in %s", dir)
	}
}

func TestNewStoreReopensExistingData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.UpsertConcept(ctx, types.Concept{URI: ex + "a", PrefLabel: "A"})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	c, ok, err := store.GetConcept(ctx, id)
	if err != nil || !ok {
		t.Fatalf("GetConcept after reopen: ok=%v err=%v", ok, err)
	}
	if c.URI != ex+"a" {
		t.Errorf("URI = %s, want %s", c.URI, ex+"a")
	}
}

// --- concept tests ---

func TestUpsertConceptKeepsIDAndUpdatesFields(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	first, err := store.UpsertConcept(ctx, types.Concept{
		URI: ex + "ml", PrefLabel: "ML", Definition: "old",
	})
	if err != nil {
		t.Fatal(err)
	}

	second, err := store.UpsertConcept(ctx, types.Concept{
		ID: "ignored-for-existing", URI: ex + "ml", PrefLabel: "Machine Learning",
		PrefLabelLang: "en", Definition: "new", SchemeURI: ex + "scheme",
	})
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("id changed on re-upsert: %s -> %s", first, second)
	}
	if n := count(t, store, `SELECT count(*) FROM concepts`); n != 1 {
		t.Errorf("concepts = %d, want 1", n)
	}

	c, ok, err := store.GetConceptByURI(ctx, ex+"ml")
	if err != nil || !ok {
		t.Fatalf("GetConceptByURI: ok=%v err=%v", ok, err)
	}
	if c.PrefLabel != "Machine Learning" || c.PrefLabelLang != "en" || c.Definition != "new" || c.SchemeURI != ex+"scheme" {
		t.Errorf("fields not updated: %+v", c)
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.Before(c.CreatedAt) {
		t.Errorf("timestamps: created %v updated %v", c.CreatedAt, c.UpdatedAt)
	}
}

func TestUpsertConceptValidation(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		c    types.Concept
	}{
		{"missing uri", types.Concept{PrefLabel: "x"}},
		{"missing prefLabel", types.Concept{URI: ex + "x"}},
		{"blank prefLabel", types.Concept{URI: ex + "x", PrefLabel: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.UpsertConcept(ctx, tt.c); err == nil {
				t.Error("expected error")
			}
		})
	}
	if n := count(t, store, `SELECT count(*) FROM concepts`); n != 0 {
		t.Errorf("concepts = %d, want 0", n)
	}
}

func TestUpsertSchemeIsIdempotent(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		if err := store.UpsertScheme(ctx, types.ConceptScheme{URI: ex + "s", Title: title}); err != nil {
			t.Fatal(err)
		}
	}

	schemes, err := store.ListSchemes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(schemes) != 1 || schemes[0].Title != "Second" {
		t.Errorf("schemes = %+v, want one titled Second", schemes)
	}

	_, ok, err := store.GetScheme(ctx, ex+"missing")
	if err != nil || ok {
		t.Errorf("GetScheme(missing): ok=%v err=%v", ok, err)
	}
}

func TestGetConceptDetail(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	parent := mustConcept(t, store, "parent", "Parent", "")
	child := mustConcept(t, store, "child", "Child", "")
	peer := mustConcept(t, store, "peer", "Peer", "")
	mustBroader(t, store, child, parent)

	res, err := store.AddRelations(ctx, []types.Relation{
		{SourceID: child, TargetID: peer, Type: types.RelRelated},
		{SourceID: parent, TargetID: child, Type: types.RelNarrower},
	})
	if err != nil || len(res.Errors) != 0 {
		t.Fatalf("AddRelations: %+v, %v", res, err)
	}
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: child, Type: types.LabelAlt, Text: "Kid", Language: "en"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddMapping(ctx, types.Mapping{ConceptID: child, TargetURI: "http://other.org/c", Type: types.MapExact, Confidence: 0.8}); err != nil {
		t.Fatal(err)
	}

	d, ok, err := store.GetConceptDetail(ctx, child)
	if err != nil || !ok {
		t.Fatalf("GetConceptDetail: ok=%v err=%v", ok, err)
	}
	if d.PrefLabel != "Child" {
		t.Errorf("PrefLabel = %q", d.PrefLabel)
	}
	if len(d.Broader) != 1 || d.Broader[0] != parent {
		t.Errorf("Broader = %v, want [%s]", d.Broader, parent)
	}
	if len(d.Related) != 1 || d.Related[0] != peer {
		t.Errorf("Related = %v, want [%s]", d.Related, peer)
	}
	if len(d.Labels) != 1 || d.Labels[0].Text != "Kid" {
		t.Errorf("Labels = %+v", d.Labels)
	}
	if len(d.Mappings) != 1 || d.Mappings[0].Confidence != 0.8 {
		t.Errorf("Mappings = %+v", d.Mappings)
	}

	pd, _, err := store.GetConceptDetail(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	if len(pd.Narrower) != 1 || pd.Narrower[0] != child {
		t.Errorf("parent Narrower = %v, want [%s]", pd.Narrower, child)
	}
}

func TestGetConceptDetailUnknownID(t *testing.T) {
	store := testSetup(t)

	d, ok, err := store.GetConceptDetail(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("unknown id should not be an error: %v", err)
	}
	if ok || d != nil {
		t.Errorf("got %+v, ok=%v; want not found", d, ok)
	}
}

// --- relation tests ---

func TestAddRelationRejectsInvalidInput(t *testing.T) {
	store := testSetup(t)
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")

	tests := []struct {
		name string
		r    types.Relation
		want error
	}{
		{"self relation", types.Relation{SourceID: a, TargetID: a, Type: types.RelBroader}, ErrSelfRelation},
		{"unknown target", types.Relation{SourceID: a, TargetID: "nope", Type: types.RelBroader}, ErrUnknownConcept},
		{"unknown source", types.Relation{SourceID: "nope", TargetID: b, Type: types.RelRelated}, ErrUnknownConcept},
		{"invalid type", types.Relation{SourceID: a, TargetID: b, Type: "sibling"}, ErrInvalidRelationType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddRelation(context.Background(), tt.r)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if n := count(t, store, `SELECT count(*) FROM relations`); n != 0 {
		t.Errorf("relations = %d, want 0", n)
	}
}

func TestAddRelationIsInsertOrIgnore(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	r := types.Relation{SourceID: a, TargetID: b, Type: types.RelBroader}

	inserted, err := store.AddRelation(ctx, r)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = store.AddRelation(ctx, r)
	if err != nil || inserted {
		t.Fatalf("second insert: inserted=%v err=%v", inserted, err)
	}
	if n := count(t, store, `SELECT count(*) FROM relations`); n != 1 {
		t.Errorf("relations = %d, want 1", n)
	}
}

func TestAddRelationsRebuildsOncePerBatch(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	c := mustConcept(t, store, "c", "C", "")

	before := stateVersion(t, store)

	res, err := store.AddRelations(ctx, []types.Relation{
		{SourceID: c, TargetID: b, Type: types.RelBroader},
		{SourceID: b, TargetID: a, Type: types.RelBroader},
		{SourceID: a, TargetID: a, Type: types.RelBroader},
		{SourceID: a, TargetID: "ghost", Type: types.RelBroader},
		{SourceID: c, TargetID: b, Type: types.RelBroader},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || res.Skipped != 1 || len(res.Errors) != 2 {
		t.Errorf("result = %+v, want 2 inserted, 1 skipped, 2 errors", res)
	}
	if !errors.Is(res.Errors[0], ErrSelfRelation) || !errors.Is(res.Errors[1], ErrUnknownConcept) {
		t.Errorf("errors = %v", res.Errors)
	}

	if got := stateVersion(t, store) - before; got != 1 {
		t.Errorf("rebuilds = %d, want 1", got)
	}

	anc, err := store.Ancestors(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if got := entryDepths(anc); got[b] != 1 || got[a] != 2 || len(got) != 2 {
		t.Errorf("ancestors of c = %v", got)
	}
}

func TestDeleteRelationUpdatesClosure(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	mustBroader(t, store, b, a)

	deleted, err := store.DeleteRelation(ctx, types.Relation{SourceID: b, TargetID: a, Type: types.RelBroader})
	if err != nil || !deleted {
		t.Fatalf("DeleteRelation: deleted=%v err=%v", deleted, err)
	}

	anc, err := store.Ancestors(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != 0 {
		t.Errorf("ancestors after delete = %+v, want none", anc)
	}
}

func TestNarrowerAndRelated(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	c := mustConcept(t, store, "c", "C", "")
	mustBroader(t, store, b, a)
	for _, r := range []types.Relation{
		{SourceID: a, TargetID: c, Type: types.RelNarrower},
		{SourceID: c, TargetID: b, Type: types.RelRelated},
	} {
		if _, err := store.AddRelation(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	narrower, err := store.Narrower(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(narrower) != 2 || narrower[0].ID != b || narrower[1].ID != c {
		t.Errorf("Narrower(a) = %+v, want [B C]", narrower)
	}

	related, err := store.Related(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(related) != 1 || related[0].ID != c {
		t.Errorf("Related(b) = %+v, want [C]", related)
	}

	broader, err := store.Broader(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(broader) != 1 || broader[0].ID != a {
		t.Errorf("Broader(b) = %+v, want [A]", broader)
	}
}

// --- hierarchy tests ---

func TestHierarchyClosureUsesShortestDepth(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	// root <- mid <- leaf, and leaf also directly under root.
	root := mustConcept(t, store, "root", "Root", "")
	mid := mustConcept(t, store, "mid", "Mid", "")
	leaf := mustConcept(t, store, "leaf", "Leaf", "")
	deep := mustConcept(t, store, "deep", "Deep", "")
	mustBroader(t, store, mid, root)
	mustBroader(t, store, leaf, mid)
	mustBroader(t, store, leaf, root)
	mustBroader(t, store, deep, leaf)

	tests := []struct {
		name string
		id   string
		want map[string]int
	}{
		{"mid", mid, map[string]int{root: 1}},
		{"leaf", leaf, map[string]int{root: 1, mid: 1}},
		{"deep", deep, map[string]int{leaf: 1, mid: 2, root: 2}},
		{"root", root, map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anc, err := store.Ancestors(ctx, tt.id)
			if err != nil {
				t.Fatal(err)
			}
			got := entryDepths(anc)
			if len(got) != len(tt.want) {
				t.Fatalf("ancestors = %v, want %v", got, tt.want)
			}
			for id, d := range tt.want {
				if got[id] != d {
					t.Errorf("depth of %s = %d, want %d", id, got[id], d)
				}
			}
		})
	}

	desc, err := store.Descendants(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	if got := entryDepths(desc); len(got) != 3 || got[mid] != 1 || got[leaf] != 1 || got[deep] != 2 {
		t.Errorf("descendants of root = %v", got)
	}

	if n := count(t, store, `SELECT count(*) FROM hierarchy_paths WHERE depth = 0`); n != 4 {
		t.Errorf("self paths = %d, want 4", n)
	}
}

func TestHierarchyCycleTerminates(t *testing.T) {
	store := testSetupDepth(t, 8)
	ctx := context.Background()

	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	c := mustConcept(t, store, "c", "C", "")
	res, err := store.AddRelations(ctx, []types.Relation{
		{SourceID: a, TargetID: b, Type: types.RelBroader},
		{SourceID: b, TargetID: c, Type: types.RelBroader},
		{SourceID: c, TargetID: a, Type: types.RelBroader},
	})
	if err != nil || len(res.Errors) != 0 {
		t.Fatalf("AddRelations: %+v, %v", res, err)
	}

	if n := count(t, store, `SELECT count(*) FROM hierarchy_paths WHERE ancestor_id = descendant_id AND depth > 0`); n != 0 {
		t.Errorf("self-ancestor paths = %d, want 0", n)
	}
	if n := count(t, store, `SELECT count(*) FROM hierarchy_paths WHERE depth > 8`); n != 0 {
		t.Errorf("paths beyond ceiling = %d", n)
	}
}

func TestRefreshHierarchy(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	mustBroader(t, store, b, a)

	_, ran, err := store.RefreshHierarchyIfStale(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Error("closure should be current after a batch")
	}

	res, err := store.RefreshHierarchy(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Paths != 3 || res.MaxDepth != 1 || res.CeilingReached {
		t.Errorf("result = %+v, want 3 paths at max depth 1", res)
	}
}

// --- delete tests ---

func TestDeleteConceptCascades(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")
	b := mustConcept(t, store, "b", "B", "")
	c := mustConcept(t, store, "c", "C", "")
	mustBroader(t, store, b, a)
	mustBroader(t, store, c, b)
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: b, Type: types.LabelHidden, Text: "bee"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddMapping(ctx, types.Mapping{ConceptID: b, TargetURI: "http://x.org/b", Type: types.MapClose, Confidence: 1}); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteConcept(ctx, b)
	if err != nil || !deleted {
		t.Fatalf("DeleteConcept: deleted=%v err=%v", deleted, err)
	}

	for _, q := range []string{
		`SELECT count(*) FROM labels WHERE concept_id = ?`,
		`SELECT count(*) FROM mappings WHERE concept_id = ?`,
		`SELECT count(*) FROM relations WHERE source_id = ?1 OR target_id = ?1`,
		`SELECT count(*) FROM hierarchy_paths WHERE ancestor_id = ?1 OR descendant_id = ?1`,
	} {
		if n := count(t, store, q, b); n != 0 {
			t.Errorf("%s = %d, want 0", q, n)
		}
	}

	// The path c -> a ran through b and must be gone after the rebuild.
	anc, err := store.Ancestors(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(anc) != 0 {
		t.Errorf("ancestors of c = %+v, want none", anc)
	}

	deleted, err = store.DeleteConcept(ctx, b)
	if err != nil || deleted {
		t.Errorf("second delete: deleted=%v err=%v", deleted, err)
	}
}

// --- label and mapping tests ---

func TestAddLabelValidation(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	a := mustConcept(t, store, "a", "A", "")

	if _, err := store.AddLabel(ctx, types.Label{ConceptID: a, Type: "pref", Text: "x"}); !errors.Is(err, ErrInvalidLabelType) {
		t.Errorf("pref label type: err = %v", err)
	}
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: "nope", Type: types.LabelAlt, Text: "x"}); !errors.Is(err, ErrUnknownConcept) {
		t.Errorf("unknown concept: err = %v", err)
	}

	l := types.Label{ConceptID: a, Type: types.LabelAlt, Text: "Alpha", Language: "en"}
	for i, want := range []bool{true, false} {
		inserted, err := store.AddLabel(ctx, l)
		if err != nil || inserted != want {
			t.Errorf("insert %d: inserted=%v err=%v, want %v", i, inserted, err, want)
		}
	}

	// Same text in another language is a distinct label.
	l.Language = "de"
	if inserted, err := store.AddLabel(ctx, l); err != nil || !inserted {
		t.Errorf("other language: inserted=%v err=%v", inserted, err)
	}
}

func TestAddMappingsValidation(t *testing.T) {
	store := testSetup(t)
	a := mustConcept(t, store, "a", "A", "")

	res, err := store.AddMappings(context.Background(), []types.Mapping{
		{ConceptID: a, TargetURI: "http://x.org/1", Type: types.MapExact, Confidence: 1},
		{ConceptID: a, TargetURI: "http://x.org/1", Type: types.MapExact, Confidence: 1},
		{ConceptID: a, TargetURI: "http://x.org/2", Type: types.MapExact, Confidence: 1.5},
		{ConceptID: a, TargetURI: "http://x.org/3", Type: "sameAs", Confidence: 1},
		{ConceptID: a, TargetURI: "", Type: types.MapClose, Confidence: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 1 || res.Skipped != 1 || len(res.Errors) != 3 {
		t.Errorf("result = %+v, want 1 inserted, 1 skipped, 3 errors", res)
	}
	if !errors.Is(res.Errors[1], ErrInvalidMappingType) {
		t.Errorf("errors[1] = %v, want ErrInvalidMappingType", res.Errors[1])
	}
}

// --- search tests ---

func TestSearchConcepts(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	ml := mustConcept(t, store, "ml", "Machine Learning", "")
	school := mustConcept(t, store, "school", "École", "")
	nets := mustConcept(t, store, "nn", "Neural Networks", "")
	if _, err := store.UpsertConcept(ctx, types.Concept{
		URI: ex + "stats", PrefLabel: "Statistics", Definition: "The science of LEARNING from data",
	}); err != nil {
		t.Fatal(err)
	}
	stats, _, _ := store.GetConceptByURI(ctx, ex+"stats")
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: nets, Type: types.LabelAlt, Text: "ANN"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: ml, Type: types.LabelHidden, Text: "machinelearning"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query", "", nil},
		{"whitespace query", "   ", nil},
		{"prefLabel substring", "machine", []string{ml}},
		{"case-insensitive alt label", "ann", []string{nets}},
		{"definition", "learning", []string{ml, stats.ID}},
		{"unicode case folding", "ÉCOLE", []string{school}},
		{"no match", "quantum", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchConcepts(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d = %s (%s), want %s", i, got[i].ID, got[i].PrefLabel, id)
				}
			}
		})
	}
}

func TestSearchConceptsCapsResults(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	err := store.Batch(ctx, func(b *Batch) error {
		for i := 0; i < searchLimit+20; i++ {
			if _, err := b.UpsertConcept(ctx, types.Concept{
				URI:       fmt.Sprintf("%stopic/%03d", ex, i),
				PrefLabel: fmt.Sprintf("Topic %03d", i),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.SearchConcepts(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != searchLimit {
		t.Fatalf("got %d results, want %d", len(got), searchLimit)
	}
	if got[0].PrefLabel != "Topic 000" || got[searchLimit-1].PrefLabel != "Topic 099" {
		t.Errorf("results not ordered by prefLabel: first %q last %q", got[0].PrefLabel, got[searchLimit-1].PrefLabel)
	}
}

// --- scheme and stats tests ---

func TestTopConcepts(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()
	scheme := ex + "scheme"

	animals := mustConcept(t, store, "animals", "Animals", scheme)
	plants := mustConcept(t, store, "plants", "Plants", scheme)
	cats := mustConcept(t, store, "cats", "Cats", scheme)
	mustConcept(t, store, "other", "Other", ex+"elsewhere")
	mustBroader(t, store, cats, animals)

	top, err := store.TopConcepts(ctx, scheme)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != animals || top[1].ID != plants {
		t.Errorf("TopConcepts = %+v, want [Animals Plants]", top)
	}
}

func TestStats(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	if err := store.UpsertScheme(ctx, types.ConceptScheme{URI: ex + "s", Title: "S"}); err != nil {
		t.Fatal(err)
	}
	a := mustConcept(t, store, "a", "A", ex+"s")
	b := mustConcept(t, store, "b", "B", ex+"s")
	c := mustConcept(t, store, "c", "C", ex+"s")
	mustBroader(t, store, b, a)
	mustBroader(t, store, c, b)
	if _, err := store.AddLabel(ctx, types.Label{ConceptID: a, Type: types.LabelAlt, Text: "Alpha"}); err != nil {
		t.Fatal(err)
	}

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := types.StoreStats{
		Schemes: 1, Concepts: 3, Labels: 1, Relations: 2, Mappings: 0,
		Paths: 6, MaxDepth: 2, HierarchyStale: false,
	}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}
}
