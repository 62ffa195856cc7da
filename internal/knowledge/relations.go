// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/skos-engine/pkg/types"
)

// AddLabel inserts an alt or hidden label. It reports false when the same
// (concept, type, text, language) already exists.
func (b *Batch) AddLabel(ctx context.Context, l types.Label) (bool, error) {
	if !l.Type.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidLabelType, l.Type)
	}
	if strings.TrimSpace(l.Text) == "" {
		return false, fmt.Errorf("label for %s: empty text", l.ConceptID)
	}
	if err := b.requireConcepts(ctx, l.ConceptID); err != nil {
		return false, err
	}
	res, err := b.tx.ExecContext(ctx,
		`INSERT INTO labels (concept_id, type, text, text_fold, language)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(concept_id, type, text, language) DO NOTHING`,
		l.ConceptID, string(l.Type), l.Text, fold(l.Text), l.Language,
	)
	if err != nil {
		return false, fmt.Errorf("inserting label %q: %w", l.Text, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddRelation inserts a semantic relation between two stored concepts.
func (b *Batch) AddRelation(ctx context.Context, r types.Relation) (bool, error) {
	if !r.Type.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidRelationType, r.Type)
	}
	if r.SourceID == r.TargetID {
		return false, fmt.Errorf("%w: %s", ErrSelfRelation, r.SourceID)
	}
	if err := b.requireConcepts(ctx, r.SourceID, r.TargetID); err != nil {
		return false, err
	}
	res, err := b.tx.ExecContext(ctx,
		`INSERT INTO relations (source_id, target_id, type) VALUES (?, ?, ?)
		 ON CONFLICT(source_id, target_id, type) DO NOTHING`,
		r.SourceID, r.TargetID, string(r.Type),
	)
	if err != nil {
		return false, fmt.Errorf("inserting relation %s %s %s: %w", r.SourceID, r.Type, r.TargetID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteRelation removes one relation. It reports false when none matched.
func (b *Batch) DeleteRelation(ctx context.Context, r types.Relation) (bool, error) {
	res, err := b.tx.ExecContext(ctx,
		`DELETE FROM relations WHERE source_id = ? AND target_id = ? AND type = ?`,
		r.SourceID, r.TargetID, string(r.Type),
	)
	if err != nil {
		return false, fmt.Errorf("deleting relation: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AddMapping inserts an external mapping. Confidence must be in [0, 1].
func (b *Batch) AddMapping(ctx context.Context, m types.Mapping) (bool, error) {
	if !m.Type.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidMappingType, m.Type)
	}
	if m.TargetURI == "" {
		return false, fmt.Errorf("mapping for %s: empty target uri", m.ConceptID)
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return false, fmt.Errorf("mapping for %s: confidence %v out of range", m.ConceptID, m.Confidence)
	}
	if err := b.requireConcepts(ctx, m.ConceptID); err != nil {
		return false, err
	}
	res, err := b.tx.ExecContext(ctx,
		`INSERT INTO mappings (concept_id, target_uri, type, confidence) VALUES (?, ?, ?, ?)
		 ON CONFLICT(concept_id, target_uri, type) DO NOTHING`,
		m.ConceptID, m.TargetURI, string(m.Type), m.Confidence,
	)
	if err != nil {
		return false, fmt.Errorf("inserting mapping %s: %w", m.TargetURI, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// requireConcepts fails with ErrUnknownConcept unless every id is stored.
func (b *Batch) requireConcepts(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		var n int
		if err := b.tx.QueryRowContext(ctx,
			`SELECT count(*) FROM concepts WHERE id = ?`, id,
		).Scan(&n); err != nil {
			return fmt.Errorf("checking concept %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownConcept, id)
		}
	}
	return nil
}

// AddLabel inserts one label in its own batch.
func (s *Store) AddLabel(ctx context.Context, l types.Label) (bool, error) {
	var inserted bool
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		inserted, err = b.AddLabel(ctx, l)
		return err
	})
	return inserted, err
}

// AddRelation inserts one relation. A single write is its own batch, so
// the closure is current when it returns.
func (s *Store) AddRelation(ctx context.Context, r types.Relation) (bool, error) {
	var inserted bool
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		inserted, err = b.AddRelation(ctx, r)
		return err
	})
	return inserted, err
}

// AddRelations inserts relations in one batch. Invalid rows are reported
// in BatchResult.Errors and do not stop the others; the closure is rebuilt
// once at the end.
func (s *Store) AddRelations(ctx context.Context, rs []types.Relation) (BatchResult, error) {
	var res BatchResult
	err := s.Batch(ctx, func(b *Batch) error {
		for _, r := range rs {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.add(b.AddRelation(ctx, r))
		}
		return nil
	})
	return res, err
}

// DeleteRelation removes one relation in its own batch.
func (s *Store) DeleteRelation(ctx context.Context, r types.Relation) (bool, error) {
	var deleted bool
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		deleted, err = b.DeleteRelation(ctx, r)
		return err
	})
	return deleted, err
}

// AddMapping inserts one mapping in its own batch.
func (s *Store) AddMapping(ctx context.Context, m types.Mapping) (bool, error) {
	var inserted bool
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		inserted, err = b.AddMapping(ctx, m)
		return err
	})
	return inserted, err
}

// AddMappings inserts mappings in one batch, collecting per-row errors.
func (s *Store) AddMappings(ctx context.Context, ms []types.Mapping) (BatchResult, error) {
	var res BatchResult
	err := s.Batch(ctx, func(b *Batch) error {
		for _, m := range ms {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.add(b.AddMapping(ctx, m))
		}
		return nil
	})
	return res, err
}

// Labels returns the alt and hidden labels of a concept.
func (s *Store) Labels(ctx context.Context, conceptID string) ([]types.Label, error) {
	return labels(ctx, s.db, conceptID)
}

func labels(ctx context.Context, q queryer, conceptID string) ([]types.Label, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT concept_id, type, text, language FROM labels
		 WHERE concept_id = ? ORDER BY type, language, text`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	var out []types.Label
	for rows.Next() {
		var (
			l   types.Label
			typ string
		)
		if err := rows.Scan(&l.ConceptID, &typ, &l.Text, &l.Language); err != nil {
			return nil, fmt.Errorf("scanning label: %w", err)
		}
		l.Type = types.LabelType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Mappings returns the external mappings of a concept.
func (s *Store) Mappings(ctx context.Context, conceptID string) ([]types.Mapping, error) {
	return mappings(ctx, s.db, conceptID)
}

func mappings(ctx context.Context, q queryer, conceptID string) ([]types.Mapping, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT concept_id, target_uri, type, confidence FROM mappings
		 WHERE concept_id = ? ORDER BY type, target_uri`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var out []types.Mapping
	for rows.Next() {
		var (
			m   types.Mapping
			typ string
		)
		if err := rows.Scan(&m.ConceptID, &m.TargetURI, &typ, &m.Confidence); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		m.Type = types.MappingType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Relations returns every stored relation whose source is in scope (one
// scheme, or all when schemeURI is empty), ordered by source, type, and
// target.
func (s *Store) Relations(ctx context.Context, schemeURI string) ([]types.Relation, error) {
	query := `SELECT r.source_id, r.target_id, r.type FROM relations r`
	var args []any
	if schemeURI != "" {
		query += ` JOIN concepts c ON c.id = r.source_id WHERE c.scheme_uri = ?`
		args = append(args, schemeURI)
	}
	query += ` ORDER BY r.source_id, r.type, r.target_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()

	var out []types.Relation
	for rows.Next() {
		var (
			r   types.Relation
			typ string
		)
		if err := rows.Scan(&r.SourceID, &r.TargetID, &typ); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		r.Type = types.RelationType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}

// related returns the targets of typ edges leaving id.
func (s *Store) related(ctx context.Context, id string, typ types.RelationType) ([]types.Concept, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conceptColumns+` FROM relations r
		 JOIN concepts c ON c.id = r.target_id
		 WHERE r.source_id = ? AND r.type = ?
		 ORDER BY c.pref_label, c.uri`, id, string(typ))
	if err != nil {
		return nil, fmt.Errorf("querying %s concepts: %w", typ, err)
	}
	return collectConcepts(rows)
}

// Broader returns the direct broader concepts of id.
func (s *Store) Broader(ctx context.Context, id string) ([]types.Concept, error) {
	return s.related(ctx, id, types.RelBroader)
}

// Narrower returns the concepts whose broader edge points at id, together
// with explicit narrower targets of id.
func (s *Store) Narrower(ctx context.Context, id string) ([]types.Concept, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c
		 WHERE c.id IN (
			SELECT source_id FROM relations WHERE target_id = ?1 AND type = 'broader'
			UNION
			SELECT target_id FROM relations WHERE source_id = ?1 AND type = 'narrower'
		 )
		 ORDER BY c.pref_label, c.uri`, id)
	if err != nil {
		return nil, fmt.Errorf("querying narrower concepts: %w", err)
	}
	return collectConcepts(rows)
}

// Related returns the associatively related concepts of id in either
// direction.
func (s *Store) Related(ctx context.Context, id string) ([]types.Concept, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c
		 WHERE c.id IN (
			SELECT target_id FROM relations WHERE source_id = ?1 AND type = 'related'
			UNION
			SELECT source_id FROM relations WHERE target_id = ?1 AND type = 'related'
		 )
		 ORDER BY c.pref_label, c.uri`, id)
	if err != nil {
		return nil, fmt.Errorf("querying related concepts: %w", err)
	}
	return collectConcepts(rows)
}

// Ancestors returns every concept above id in the closure table, nearest
// first.
func (s *Store) Ancestors(ctx context.Context, id string) ([]types.HierarchyEntry, error) {
	return s.closure(ctx,
		`SELECT `+conceptColumns+`, p.depth FROM hierarchy_paths p
		 JOIN concepts c ON c.id = p.ancestor_id
		 WHERE p.descendant_id = ? AND p.depth > 0
		 ORDER BY p.depth, c.pref_label, c.uri`, id)
}

// Descendants returns every concept below id in the closure table, nearest
// first.
func (s *Store) Descendants(ctx context.Context, id string) ([]types.HierarchyEntry, error) {
	return s.closure(ctx,
		`SELECT `+conceptColumns+`, p.depth FROM hierarchy_paths p
		 JOIN concepts c ON c.id = p.descendant_id
		 WHERE p.ancestor_id = ? AND p.depth > 0
		 ORDER BY p.depth, c.pref_label, c.uri`, id)
}

func (s *Store) closure(ctx context.Context, query, id string) ([]types.HierarchyEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying hierarchy: %w", err)
	}
	defer rows.Close()

	var out []types.HierarchyEntry
	for rows.Next() {
		var (
			e                types.HierarchyEntry
			created, updated string
		)
		if err := rows.Scan(&e.ID, &e.URI, &e.PrefLabel, &e.PrefLabelLang, &e.SchemeURI,
			&e.Definition, &e.Notation, &created, &updated, &e.Depth); err != nil {
			return nil, fmt.Errorf("scanning hierarchy entry: %w", err)
		}
		e.CreatedAt = parseTime(created)
		e.UpdatedAt = parseTime(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// HierarchyPaths returns the closure rows, self paths excluded, ordered by
// ancestor, descendant.
func (s *Store) HierarchyPaths(ctx context.Context) ([]types.HierarchyPath, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ancestor_id, descendant_id, depth FROM hierarchy_paths
		 WHERE depth > 0 ORDER BY ancestor_id, descendant_id`)
	if err != nil {
		return nil, fmt.Errorf("querying hierarchy paths: %w", err)
	}
	defer rows.Close()

	var out []types.HierarchyPath
	for rows.Next() {
		var p types.HierarchyPath
		if err := rows.Scan(&p.AncestorID, &p.DescendantID, &p.Depth); err != nil {
			return nil, fmt.Errorf("scanning hierarchy path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
