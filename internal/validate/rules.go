// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/skos-engine/pkg/types"
)

func checkReflexive(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT r.source_id, COALESCE(c.uri, ''), r.type FROM relations r
		 LEFT JOIN concepts c ON c.id = r.source_id
		 WHERE r.source_id = r.target_id
		 ORDER BY c.uri, r.type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Finding
	for rows.Next() {
		var id, uri, typ string
		if err := rows.Scan(&id, &uri, &typ); err != nil {
			return nil, err
		}
		out = append(out, types.Finding{
			ConceptID:   id,
			ConceptURI:  uri,
			Description: fmt.Sprintf("concept %s has a %s relation to itself", uri, typ),
		})
	}
	return out, rows.Err()
}

func checkOrphans(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.uri FROM concepts c
		 WHERE c.scheme_uri IS NULL
			AND NOT EXISTS (SELECT 1 FROM relations r WHERE r.source_id = c.id OR r.target_id = c.id)
		 ORDER BY c.uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Finding
	for rows.Next() {
		var id, uri string
		if err := rows.Scan(&id, &uri); err != nil {
			return nil, err
		}
		out = append(out, types.Finding{
			ConceptID:   id,
			ConceptURI:  uri,
			Description: fmt.Sprintf("concept %s belongs to no scheme and has no relations", uri),
		})
	}
	return out, rows.Err()
}

func checkLabelConflicts(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.pref_label, COALESCE(c.scheme_uri, ''), c.id, c.uri FROM concepts c
		 JOIN (
			SELECT pref_label, COALESCE(scheme_uri, '') AS scheme
			FROM concepts
			GROUP BY pref_label, COALESCE(scheme_uri, '')
			HAVING count(*) > 1
		 ) d ON d.pref_label = c.pref_label AND d.scheme = COALESCE(c.scheme_uri, '')
		 ORDER BY c.pref_label, COALESCE(c.scheme_uri, ''), c.uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out []types.Finding
		cur *types.Finding
		key string
	)
	for rows.Next() {
		var label, scheme, id, uri string
		if err := rows.Scan(&label, &scheme, &id, &uri); err != nil {
			return nil, err
		}
		k := label + "\x00" + scheme
		if cur == nil || k != key {
			out = append(out, types.Finding{ConceptID: id, ConceptURI: uri})
			cur = &out[len(out)-1]
			key = k
			if scheme == "" {
				cur.Description = fmt.Sprintf("prefLabel %q is shared by concepts outside any scheme", label)
			} else {
				cur.Description = fmt.Sprintf("prefLabel %q is shared by concepts in scheme %s", label, scheme)
			}
		}
		cur.Members = append(cur.Members, uri)
	}
	return out, rows.Err()
}

func checkAsymmetric(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT r.source_id, s.uri, t.uri, r.type FROM relations r
		 JOIN concepts s ON s.id = r.source_id
		 JOIN concepts t ON t.id = r.target_id
		 WHERE r.type IN ('broader', 'narrower')
			AND NOT EXISTS (
				SELECT 1 FROM relations i
				WHERE i.source_id = r.target_id AND i.target_id = r.source_id
					AND i.type = CASE r.type WHEN 'broader' THEN 'narrower' ELSE 'broader' END
			)
		 ORDER BY s.uri, r.type, t.uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Finding
	for rows.Next() {
		var id, src, dst, typ string
		if err := rows.Scan(&id, &src, &dst, &typ); err != nil {
			return nil, err
		}
		inverse := types.RelNarrower
		if types.RelationType(typ) == types.RelNarrower {
			inverse = types.RelBroader
		}
		out = append(out, types.Finding{
			ConceptID:   id,
			ConceptURI:  src,
			Members:     []string{src, dst},
			Description: fmt.Sprintf("%s %s %s has no matching %s", src, typ, dst, inverse),
		})
	}
	return out, rows.Err()
}

func checkMissingTop(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.scheme_uri, count(*) FROM concepts c
		 WHERE c.scheme_uri IS NOT NULL
		 GROUP BY c.scheme_uri
		 HAVING sum(CASE WHEN EXISTS (
			SELECT 1 FROM relations r WHERE r.source_id = c.id AND r.type = 'broader'
		 ) THEN 0 ELSE 1 END) = 0
		 ORDER BY c.scheme_uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Finding
	for rows.Next() {
		var scheme string
		var n int
		if err := rows.Scan(&scheme, &n); err != nil {
			return nil, err
		}
		out = append(out, types.Finding{
			Members:     []string{scheme},
			Description: fmt.Sprintf("scheme %s has %d concepts but no top concept", scheme, n),
		})
	}
	return out, rows.Err()
}

func checkOverlappingLabels(ctx context.Context, q Querier) ([]types.Finding, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.uri, c.pref_label, group_concat(DISTINCT l.type) FROM concepts c
		 JOIN labels l ON l.concept_id = c.id AND l.text = c.pref_label
		 GROUP BY c.id, c.uri, c.pref_label
		 ORDER BY c.uri`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Finding
	for rows.Next() {
		var id, uri, label, kinds string
		if err := rows.Scan(&id, &uri, &label, &kinds); err != nil {
			return nil, err
		}
		ks := strings.Split(kinds, ",")
		sort.Strings(ks)
		out = append(out, types.Finding{
			ConceptID:   id,
			ConceptURI:  uri,
			Description: fmt.Sprintf("prefLabel %q of %s is repeated as a %s label", label, uri, strings.Join(ks, "/")),
		})
	}
	return out, rows.Err()
}
