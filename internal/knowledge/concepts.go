// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/skos-engine/pkg/types"
)

// searchLimit caps SearchConcepts results.
const searchLimit = 100

const conceptColumns = `c.id, c.uri, c.pref_label, c.pref_label_lang, COALESCE(c.scheme_uri, ''),
	c.definition, c.notation, c.created_at, c.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConcept(r rowScanner) (types.Concept, error) {
	var (
		c                types.Concept
		created, updated string
	)
	if err := r.Scan(&c.ID, &c.URI, &c.PrefLabel, &c.PrefLabelLang, &c.SchemeURI,
		&c.Definition, &c.Notation, &created, &updated); err != nil {
		return types.Concept{}, err
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}

func collectConcepts(rows *sql.Rows) ([]types.Concept, error) {
	defer rows.Close()
	var out []types.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertScheme inserts or updates a scheme by URI.
func (b *Batch) UpsertScheme(ctx context.Context, sc types.ConceptScheme) error {
	if sc.URI == "" {
		return errors.New("scheme uri is empty")
	}
	now := b.s.timestamp()
	_, err := b.tx.ExecContext(ctx,
		`INSERT INTO schemes (uri, title, description, creator, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uri) DO UPDATE SET
			title=excluded.title, description=excluded.description,
			creator=excluded.creator, updated_at=excluded.updated_at`,
		sc.URI, sc.Title, sc.Description, sc.Creator, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting scheme %s: %w", sc.URI, err)
	}
	return nil
}

// UpsertConcept inserts or updates a concept by URI and returns its stable
// id. An existing concept keeps its id; c.ID is used only for new rows and
// is generated when empty.
func (b *Batch) UpsertConcept(ctx context.Context, c types.Concept) (string, error) {
	if c.URI == "" {
		return "", errors.New("concept uri is empty")
	}
	if strings.TrimSpace(c.PrefLabel) == "" {
		return "", fmt.Errorf("concept %s: missing prefLabel", c.URI)
	}
	if c.ID == "" {
		c.ID = b.s.newID()
	}

	now := b.s.timestamp()
	var id string
	err := b.tx.QueryRowContext(ctx,
		`INSERT INTO concepts (id, uri, pref_label, pref_label_lang, pref_label_fold, scheme_uri,
			definition, definition_fold, notation, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uri) DO UPDATE SET
			pref_label=excluded.pref_label, pref_label_lang=excluded.pref_label_lang,
			pref_label_fold=excluded.pref_label_fold, scheme_uri=excluded.scheme_uri,
			definition=excluded.definition, definition_fold=excluded.definition_fold,
			notation=excluded.notation, updated_at=excluded.updated_at
		 RETURNING id`,
		c.ID, c.URI, c.PrefLabel, c.PrefLabelLang, fold(c.PrefLabel), nullString(c.SchemeURI),
		c.Definition, fold(c.Definition), c.Notation, now, now,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upserting concept %s: %w", c.URI, err)
	}
	return id, nil
}

// ConceptIDByURI resolves a URI inside the batch.
func (b *Batch) ConceptIDByURI(ctx context.Context, uri string) (string, bool, error) {
	var id string
	err := b.tx.QueryRowContext(ctx, `SELECT id FROM concepts WHERE uri = ?`, uri).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up concept %s: %w", uri, err)
	}
	return id, true, nil
}

// DeleteConcept removes a concept with its labels, relations, mappings,
// and hierarchy paths.
func (b *Batch) DeleteConcept(ctx context.Context, id string) (bool, error) {
	res, err := b.tx.ExecContext(ctx, `DELETE FROM concepts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting concept %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpsertScheme inserts or updates a scheme in its own batch.
func (s *Store) UpsertScheme(ctx context.Context, sc types.ConceptScheme) error {
	return s.Batch(ctx, func(b *Batch) error {
		return b.UpsertScheme(ctx, sc)
	})
}

// UpsertConcept inserts or updates a concept in its own batch.
func (s *Store) UpsertConcept(ctx context.Context, c types.Concept) (string, error) {
	var id string
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		id, err = b.UpsertConcept(ctx, c)
		return err
	})
	return id, err
}

// DeleteConcept removes a concept and everything that references it. It
// reports false for an unknown id.
func (s *Store) DeleteConcept(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		deleted, err = b.DeleteConcept(ctx, id)
		return err
	})
	return deleted, err
}

// GetScheme returns a scheme by URI.
func (s *Store) GetScheme(ctx context.Context, uri string) (*types.ConceptScheme, bool, error) {
	var (
		sc               types.ConceptScheme
		created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT uri, title, description, creator, created_at, updated_at FROM schemes WHERE uri = ?`, uri,
	).Scan(&sc.URI, &sc.Title, &sc.Description, &sc.Creator, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up scheme: %w", err)
	}
	sc.CreatedAt = parseTime(created)
	sc.UpdatedAt = parseTime(updated)
	return &sc, true, nil
}

// ListSchemes returns all schemes ordered by URI.
func (s *Store) ListSchemes(ctx context.Context) ([]types.ConceptScheme, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uri, title, description, creator, created_at, updated_at FROM schemes ORDER BY uri`)
	if err != nil {
		return nil, fmt.Errorf("listing schemes: %w", err)
	}
	defer rows.Close()

	var out []types.ConceptScheme
	for rows.Next() {
		var (
			sc               types.ConceptScheme
			created, updated string
		)
		if err := rows.Scan(&sc.URI, &sc.Title, &sc.Description, &sc.Creator, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning scheme: %w", err)
		}
		sc.CreatedAt = parseTime(created)
		sc.UpdatedAt = parseTime(updated)
		out = append(out, sc)
	}
	return out, rows.Err()
}

// GetConcept returns a concept by id.
func (s *Store) GetConcept(ctx context.Context, id string) (*types.Concept, bool, error) {
	return s.getConcept(ctx, s.db, `WHERE c.id = ?`, id)
}

// GetConceptByURI returns a concept by URI.
func (s *Store) GetConceptByURI(ctx context.Context, uri string) (*types.Concept, bool, error) {
	return s.getConcept(ctx, s.db, `WHERE c.uri = ?`, uri)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getConcept(ctx context.Context, q queryer, where string, arg string) (*types.Concept, bool, error) {
	c, err := scanConcept(q.QueryRowContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up concept: %w", err)
	}
	return &c, true, nil
}

// GetConceptDetail returns a concept with its labels, outgoing relation
// targets, and mappings, read from one snapshot. An unknown id is reported
// as not found, not as an error.
func (s *Store) GetConceptDetail(ctx context.Context, id string) (*types.ConceptDetail, bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	c, ok, err := s.getConcept(ctx, tx, `WHERE c.id = ?`, id)
	if err != nil || !ok {
		return nil, ok, err
	}

	d := &types.ConceptDetail{Concept: *c}
	if d.Labels, err = labels(ctx, tx, id); err != nil {
		return nil, false, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT target_id, type FROM relations
		 WHERE source_id = ? AND type IN ('broader', 'narrower', 'related')
		 ORDER BY type, target_id`, id)
	if err != nil {
		return nil, false, fmt.Errorf("querying relations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var target, typ string
		if err := rows.Scan(&target, &typ); err != nil {
			return nil, false, fmt.Errorf("scanning relation: %w", err)
		}
		switch types.RelationType(typ) {
		case types.RelBroader:
			d.Broader = append(d.Broader, target)
		case types.RelNarrower:
			d.Narrower = append(d.Narrower, target)
		case types.RelRelated:
			d.Related = append(d.Related, target)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if d.Mappings, err = mappings(ctx, tx, id); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// SearchConcepts matches query case-insensitively as a substring of the
// prefLabel, any alt or hidden label, or the definition. An empty query
// returns nothing. Results are ordered by prefLabel.
func (s *Store) SearchConcepts(ctx context.Context, query string) ([]types.Concept, error) {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c
		 WHERE instr(c.pref_label_fold, ?1) > 0
			OR instr(c.definition_fold, ?1) > 0
			OR EXISTS (SELECT 1 FROM labels l WHERE l.concept_id = c.id AND instr(l.text_fold, ?1) > 0)
		 ORDER BY c.pref_label, c.uri
		 LIMIT ?2`, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching concepts: %w", err)
	}
	return collectConcepts(rows)
}

// TopConcepts returns the concepts of a scheme that have no broader
// concept, ordered by prefLabel.
func (s *Store) TopConcepts(ctx context.Context, schemeURI string) ([]types.Concept, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+conceptColumns+` FROM concepts c
		 WHERE c.scheme_uri = ?
			AND NOT EXISTS (SELECT 1 FROM relations r WHERE r.source_id = c.id AND r.type = 'broader')
		 ORDER BY c.pref_label, c.uri`, schemeURI)
	if err != nil {
		return nil, fmt.Errorf("querying top concepts: %w", err)
	}
	return collectConcepts(rows)
}

// ConceptsInScope returns every concept of a scheme, or all concepts when
// schemeURI is empty, ordered by URI.
func (s *Store) ConceptsInScope(ctx context.Context, schemeURI string) ([]types.Concept, error) {
	query := `SELECT ` + conceptColumns + ` FROM concepts c`
	var args []any
	if schemeURI != "" {
		query += ` WHERE c.scheme_uri = ?`
		args = append(args, schemeURI)
	}
	query += ` ORDER BY c.uri`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying concepts: %w", err)
	}
	return collectConcepts(rows)
}

// fold lowercases text for the *_fold search columns. Go's case mapping
// covers all of Unicode; SQLite's lower() only handles ASCII.
func fold(s string) string {
	return strings.ToLower(s)
}
