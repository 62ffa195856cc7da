// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/skos-engine/internal/knowledge"
	"github.com/pdiddy/skos-engine/internal/turtle"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// ScopeAll exports every scheme and concept.
const ScopeAll = "all"

var relationPredicate = map[types.RelationType]string{
	types.RelBroader:            turtle.SkosBroader,
	types.RelNarrower:           turtle.SkosNarrower,
	types.RelRelated:            turtle.SkosRelated,
	types.RelBroaderTransitive:  turtle.SkosBroaderTransitive,
	types.RelNarrowerTransitive: turtle.SkosNarrowerTransitive,
}

var mappingPredicate = map[types.MappingType]string{
	types.MapExact:   turtle.SkosExactMatch,
	types.MapClose:   turtle.SkosCloseMatch,
	types.MapBroad:   turtle.SkosBroadMatch,
	types.MapNarrow:  turtle.SkosNarrowMatch,
	types.MapRelated: turtle.SkosRelatedMatch,
}

// Exporter serializes stored vocabularies to Turtle.
type Exporter struct {
	store *knowledge.Store
}

// NewExporter creates an Exporter reading from store.
func NewExporter(store *knowledge.Store) *Exporter {
	return &Exporter{store: store}
}

// Export writes the schemes and concepts in scope to w. scope is a scheme
// URI, or ScopeAll (or empty) for the whole store. Output is deterministic:
// subjects sorted by URI, predicates in a fixed order, objects sorted.
func (e *Exporter) Export(ctx context.Context, scope string, w io.Writer) error {
	if scope == ScopeAll {
		scope = ""
	}

	schemes, err := e.schemes(ctx, scope)
	if err != nil {
		return err
	}

	// Relation targets may sit outside the exported scheme, so URIs are
	// resolved against every concept.
	all, err := e.store.ConceptsInScope(ctx, "")
	if err != nil {
		return fmt.Errorf("loading concepts: %w", err)
	}
	uris := make(map[string]string, len(all))
	for _, c := range all {
		uris[c.ID] = c.URI
	}

	concepts := all
	if scope != "" {
		if concepts, err = e.store.ConceptsInScope(ctx, scope); err != nil {
			return fmt.Errorf("loading concepts: %w", err)
		}
	}

	rels, err := e.store.Relations(ctx, scope)
	if err != nil {
		return fmt.Errorf("loading relations: %w", err)
	}
	bySource := make(map[string][]types.Relation)
	for _, r := range rels {
		bySource[r.SourceID] = append(bySource[r.SourceID], r)
	}

	tw := turtle.NewWriter(w)
	tw.WritePrefixes()

	for _, sc := range schemes {
		tw.WriteResource(sc.URI, turtle.SkosConceptScheme, schemeProperties(sc))
	}

	for _, c := range concepts {
		if err := ctx.Err(); err != nil {
			return err
		}
		props, err := e.conceptProperties(ctx, c, bySource[c.ID], uris)
		if err != nil {
			return err
		}
		tw.WriteResource(c.URI, turtle.SkosConcept, props)
	}

	if err := tw.Err(); err != nil {
		return fmt.Errorf("writing turtle: %w", err)
	}
	return nil
}

func (e *Exporter) schemes(ctx context.Context, scope string) ([]types.ConceptScheme, error) {
	if scope == "" {
		schemes, err := e.store.ListSchemes(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading schemes: %w", err)
		}
		return schemes, nil
	}
	sc, ok, err := e.store.GetScheme(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading scheme: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("scheme %s not found", scope)
	}
	return []types.ConceptScheme{*sc}, nil
}

func schemeProperties(sc types.ConceptScheme) []turtle.Property {
	var props []turtle.Property
	if sc.Title != "" {
		props = append(props, turtle.Property{Predicate: turtle.DCTitle, Object: turtle.Literal(sc.Title, "")})
	}
	if sc.Description != "" {
		props = append(props, turtle.Property{Predicate: turtle.DCDescription, Object: turtle.Literal(sc.Description, "")})
	}
	if sc.Creator != "" {
		obj := turtle.Literal(sc.Creator, "")
		if isHTTPIRI(sc.Creator) {
			obj = turtle.IRI(sc.Creator)
		}
		props = append(props, turtle.Property{Predicate: turtle.DCCreator, Object: obj})
	}
	return props
}

func (e *Exporter) conceptProperties(ctx context.Context, c types.Concept, rels []types.Relation, uris map[string]string) ([]turtle.Property, error) {
	props := []turtle.Property{
		{Predicate: turtle.SkosPrefLabel, Object: turtle.Literal(c.PrefLabel, c.PrefLabelLang)},
	}

	labels, err := e.store.Labels(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading labels for %s: %w", c.URI, err)
	}
	for _, lt := range []struct {
		typ  types.LabelType
		pred string
	}{
		{types.LabelAlt, turtle.SkosAltLabel},
		{types.LabelHidden, turtle.SkosHiddenLabel},
	} {
		var objs []turtle.Term
		for _, l := range labels {
			if l.Type == lt.typ {
				objs = append(objs, turtle.Literal(l.Text, l.Language))
			}
		}
		sort.Slice(objs, func(i, j int) bool {
			if objs[i].Lang != objs[j].Lang {
				return objs[i].Lang < objs[j].Lang
			}
			return objs[i].Value < objs[j].Value
		})
		for _, o := range objs {
			props = append(props, turtle.Property{Predicate: lt.pred, Object: o})
		}
	}

	if c.Definition != "" {
		props = append(props, turtle.Property{Predicate: turtle.SkosDefinition, Object: turtle.Literal(c.Definition, "")})
	}
	if c.Notation != "" {
		props = append(props, turtle.Property{Predicate: turtle.SkosNotation, Object: turtle.Literal(c.Notation, "")})
	}
	if c.SchemeURI != "" {
		props = append(props, turtle.Property{Predicate: turtle.SkosInScheme, Object: turtle.IRI(c.SchemeURI)})
	}

	for _, rt := range types.RelationTypes {
		var targets []string
		for _, r := range rels {
			if r.Type == rt {
				if uri, ok := uris[r.TargetID]; ok {
					targets = append(targets, uri)
				}
			}
		}
		sort.Strings(targets)
		for _, t := range targets {
			props = append(props, turtle.Property{Predicate: relationPredicate[rt], Object: turtle.IRI(t)})
		}
	}

	mappings, err := e.store.Mappings(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading mappings for %s: %w", c.URI, err)
	}
	for _, mt := range types.MappingTypes {
		var targets []string
		for _, m := range mappings {
			if m.Type == mt {
				targets = append(targets, m.TargetURI)
			}
		}
		sort.Strings(targets)
		for _, t := range targets {
			props = append(props, turtle.Property{Predicate: mappingPredicate[mt], Object: turtle.IRI(t)})
		}
	}

	return props, nil
}

func isHTTPIRI(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
