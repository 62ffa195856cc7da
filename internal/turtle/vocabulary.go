// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package turtle

// Namespaces recognized on import and declared on export.
//
// References:
//   - SKOS: https://www.w3.org/TR/skos-reference/
//   - Dublin Core: https://www.dublincore.org/specifications/dublin-core/dcmi-terms/
const (
	NSRDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	NSSKOS    = "http://www.w3.org/2004/02/skos/core#"
	NSDCTerms = "http://purl.org/dc/terms/"
)

// RDF and RDFS terms.
const (
	RDFType   = NSRDF + "type"
	RDFSLabel = NSRDFS + "label"
)

// SKOS classes.
const (
	SkosConcept       = NSSKOS + "Concept"
	SkosConceptScheme = NSSKOS + "ConceptScheme"
)

// SKOS lexical and documentation properties.
const (
	SkosPrefLabel   = NSSKOS + "prefLabel"
	SkosAltLabel    = NSSKOS + "altLabel"
	SkosHiddenLabel = NSSKOS + "hiddenLabel"
	SkosDefinition  = NSSKOS + "definition"
	SkosNotation    = NSSKOS + "notation"
)

// SKOS scheme membership.
const (
	SkosInScheme      = NSSKOS + "inScheme"
	SkosTopConceptOf  = NSSKOS + "topConceptOf"
	SkosHasTopConcept = NSSKOS + "hasTopConcept"
)

// SKOS semantic relations.
const (
	SkosBroader            = NSSKOS + "broader"
	SkosNarrower           = NSSKOS + "narrower"
	SkosRelated            = NSSKOS + "related"
	SkosBroaderTransitive  = NSSKOS + "broaderTransitive"
	SkosNarrowerTransitive = NSSKOS + "narrowerTransitive"
)

// SKOS mapping properties.
const (
	SkosExactMatch   = NSSKOS + "exactMatch"
	SkosCloseMatch   = NSSKOS + "closeMatch"
	SkosBroadMatch   = NSSKOS + "broadMatch"
	SkosNarrowMatch  = NSSKOS + "narrowMatch"
	SkosRelatedMatch = NSSKOS + "relatedMatch"
)

// Dublin Core terms used for scheme metadata.
const (
	DCTitle       = NSDCTerms + "title"
	DCDescription = NSDCTerms + "description"
	DCCreator     = NSDCTerms + "creator"
)

// DefaultPrefixes returns the prefix declarations written on export.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":     NSRDF,
		"rdfs":    NSRDFS,
		"skos":    NSSKOS,
		"dcterms": NSDCTerms,
	}
}
