// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path"
	"strings"

	"github.com/pdiddy/skos-engine/internal/turtle"
	"github.com/pdiddy/skos-engine/pkg/types"
)

var relationPredicates = []struct {
	iri string
	typ types.RelationType
}{
	{turtle.SkosBroader, types.RelBroader},
	{turtle.SkosNarrower, types.RelNarrower},
	{turtle.SkosRelated, types.RelRelated},
	{turtle.SkosBroaderTransitive, types.RelBroaderTransitive},
	{turtle.SkosNarrowerTransitive, types.RelNarrowerTransitive},
}

var mappingPredicates = []struct {
	iri string
	typ types.MappingType
}{
	{turtle.SkosExactMatch, types.MapExact},
	{turtle.SkosCloseMatch, types.MapClose},
	{turtle.SkosBroadMatch, types.MapBroad},
	{turtle.SkosNarrowMatch, types.MapNarrow},
	{turtle.SkosRelatedMatch, types.MapRelated},
}

// Schemes extracts every skos:ConceptScheme subject.
func (d *Document) Schemes() ([]types.ConceptScheme, []Issue) {
	var (
		out    []types.ConceptScheme
		issues []Issue
	)
	for _, subj := range d.graph.SubjectsOfType(turtle.SkosConceptScheme) {
		if !subj.IsIRI() {
			issues = append(issues, Issue{PassSchemes, subj.Value, "blank node schemes are not supported"})
			continue
		}
		s := types.ConceptScheme{URI: subj.Value, Title: d.schemeTitle(subj)}
		if lit, ok := d.pickLiteral(subj, turtle.DCDescription); ok {
			s.Description = lit.Value
		}
		if lit, ok := d.graph.FirstLiteral(subj, turtle.DCCreator); ok {
			s.Creator = lit.Value
		} else if objs := d.graph.Objects(subj, turtle.DCCreator); len(objs) > 0 && objs[0].IsIRI() {
			s.Creator = objs[0].Value
		}
		out = append(out, s)
	}
	return out, issues
}

func (d *Document) schemeTitle(subj turtle.Term) string {
	for _, p := range []string{turtle.DCTitle, turtle.RDFSLabel, turtle.SkosPrefLabel} {
		if lit, ok := d.pickLiteral(subj, p); ok && lit.Value != "" {
			return lit.Value
		}
	}
	return localName(subj.Value)
}

// Concepts returns the registered concepts with their registration issues.
func (d *Document) Concepts() ([]types.Concept, []Issue) {
	issues := append([]Issue(nil), d.issues...)
	out := make([]types.Concept, 0, len(d.concepts))

	for _, subj := range d.concepts {
		pref := d.prefs[subj.Value]
		c := types.Concept{
			ID:            d.ids[subj.Value],
			URI:           subj.Value,
			PrefLabel:     pref.Value,
			PrefLabelLang: pref.Lang,
			SchemeURI:     d.schemeOf(subj),
		}
		if lit, ok := d.pickLiteral(subj, turtle.SkosDefinition); ok {
			c.Definition = lit.Value
		}
		if lit, ok := d.graph.FirstLiteral(subj, turtle.SkosNotation); ok {
			c.Notation = lit.Value
		}
		out = append(out, c)
	}
	return out, issues
}

// schemeOf resolves scheme membership from inScheme, topConceptOf, or a
// scheme's hasTopConcept, in that order.
func (d *Document) schemeOf(subj turtle.Term) string {
	for _, p := range []string{turtle.SkosInScheme, turtle.SkosTopConceptOf} {
		for _, o := range d.graph.Objects(subj, p) {
			if o.IsIRI() {
				return o.Value
			}
		}
	}
	for _, t := range d.graph.WithPredicate(turtle.SkosHasTopConcept) {
		if t.Subject.IsIRI() && t.Object.IsIRI() && t.Object.Value == subj.Value {
			return t.Subject.Value
		}
	}
	return ""
}

// Labels extracts altLabel and hiddenLabel literals of registered concepts.
func (d *Document) Labels() ([]types.Label, []Issue) {
	var (
		out    []types.Label
		issues []Issue
	)
	for _, subj := range d.concepts {
		id := d.ids[subj.Value]
		seen := make(map[types.Label]bool)
		for _, lp := range []struct {
			iri string
			typ types.LabelType
		}{
			{turtle.SkosAltLabel, types.LabelAlt},
			{turtle.SkosHiddenLabel, types.LabelHidden},
		} {
			for _, o := range d.graph.Objects(subj, lp.iri) {
				if !o.IsLiteral() {
					issues = append(issues, Issue{PassLabels, subj.Value, string(lp.typ) + " label is not a literal"})
					continue
				}
				if strings.TrimSpace(o.Value) == "" {
					continue
				}
				l := types.Label{ConceptID: id, Type: lp.typ, Text: o.Value, Language: o.Lang}
				if seen[l] {
					continue
				}
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out, issues
}

// Relations extracts semantic relations whose subject is a registered
// concept. Targets outside the document keep an empty TargetID.
func (d *Document) Relations() ([]RelationRef, []Issue) {
	var (
		out    []RelationRef
		issues []Issue
	)
	for _, subj := range d.concepts {
		seen := make(map[RelationRef]bool)
		for _, rp := range relationPredicates {
			for _, o := range d.graph.Objects(subj, rp.iri) {
				if !o.IsIRI() {
					issues = append(issues, Issue{PassRelations, subj.Value, string(rp.typ) + " target is not an IRI"})
					continue
				}
				ref := RelationRef{
					SourceID:  d.ids[subj.Value],
					SourceURI: subj.Value,
					TargetID:  d.ids[o.Value],
					TargetURI: o.Value,
					Type:      rp.typ,
				}
				if seen[ref] {
					continue
				}
				seen[ref] = true
				out = append(out, ref)
			}
		}
	}
	return out, issues
}

// Mappings extracts the exactMatch family of registered concepts.
func (d *Document) Mappings() ([]types.Mapping, []Issue) {
	var (
		out    []types.Mapping
		issues []Issue
	)
	for _, subj := range d.concepts {
		seen := make(map[types.Mapping]bool)
		for _, mp := range mappingPredicates {
			for _, o := range d.graph.Objects(subj, mp.iri) {
				if !o.IsIRI() {
					issues = append(issues, Issue{PassMappings, subj.Value, string(mp.typ) + " target is not an IRI"})
					continue
				}
				m := types.Mapping{
					ConceptID:  d.ids[subj.Value],
					TargetURI:  o.Value,
					Type:       mp.typ,
					Confidence: 1.0,
				}
				if seen[m] {
					continue
				}
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, issues
}

// localName returns the fragment or last path segment of an IRI.
func localName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	if base := path.Base(strings.TrimRight(iri, "/")); base != "." && base != "/" {
		return base
	}
	return iri
}
