// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the records shared by the parser, store, materializer,
// validator, and CLI.
package types

import "time"

// LabelType distinguishes the non-preferred SKOS lexical labels.
type LabelType string

const (
	LabelAlt    LabelType = "alt"
	LabelHidden LabelType = "hidden"
)

// Valid reports whether t is a storable label type.
func (t LabelType) Valid() bool {
	return t == LabelAlt || t == LabelHidden
}

// RelationType is a SKOS semantic relation between two concepts.
type RelationType string

const (
	RelBroader            RelationType = "broader"
	RelNarrower           RelationType = "narrower"
	RelRelated            RelationType = "related"
	RelBroaderTransitive  RelationType = "broaderTransitive"
	RelNarrowerTransitive RelationType = "narrowerTransitive"
)

// RelationTypes lists every relation type in export order.
var RelationTypes = []RelationType{
	RelBroader, RelNarrower, RelRelated, RelBroaderTransitive, RelNarrowerTransitive,
}

// Valid reports whether t is a known relation type.
func (t RelationType) Valid() bool {
	for _, rt := range RelationTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// MappingType is a SKOS mapping property linking a concept to an external URI.
type MappingType string

const (
	MapExact   MappingType = "exactMatch"
	MapClose   MappingType = "closeMatch"
	MapBroad   MappingType = "broadMatch"
	MapNarrow  MappingType = "narrowMatch"
	MapRelated MappingType = "relatedMatch"
)

// MappingTypes lists every mapping type in export order.
var MappingTypes = []MappingType{MapExact, MapClose, MapBroad, MapNarrow, MapRelated}

// Valid reports whether t is a known mapping type.
func (t MappingType) Valid() bool {
	for _, mt := range MappingTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// ConceptScheme is a named vocabulary grouping related concepts.
type ConceptScheme struct {
	// URI is the scheme's key.
	URI string `json:"uri" yaml:"uri"`

	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Creator     string `json:"creator,omitempty" yaml:"creator,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Concept is a single SKOS concept. ID is assigned once and survives
// re-imports of the same URI.
type Concept struct {
	ID  string `json:"id" yaml:"id"`
	URI string `json:"uri" yaml:"uri"`

	PrefLabel string `json:"pref_label" yaml:"pref_label"`

	// PrefLabelLang is the language tag of PrefLabel, empty when untagged.
	PrefLabelLang string `json:"pref_label_lang,omitempty" yaml:"pref_label_lang,omitempty"`

	// SchemeURI is empty when the concept belongs to no scheme.
	SchemeURI string `json:"scheme_uri,omitempty" yaml:"scheme_uri,omitempty"`

	Definition string `json:"definition,omitempty" yaml:"definition,omitempty"`
	Notation   string `json:"notation,omitempty" yaml:"notation,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Label is an alternative or hidden label. Unique per
// (ConceptID, Type, Text, Language).
type Label struct {
	ConceptID string    `json:"concept_id" yaml:"concept_id"`
	Type      LabelType `json:"type" yaml:"type"`
	Text      string    `json:"text" yaml:"text"`
	Language  string    `json:"language,omitempty" yaml:"language,omitempty"`
}

// Relation is a directed semantic edge. SourceID never equals TargetID.
type Relation struct {
	SourceID string       `json:"source_id" yaml:"source_id"`
	TargetID string       `json:"target_id" yaml:"target_id"`
	Type     RelationType `json:"type" yaml:"type"`
}

// Mapping links a concept to a concept in another vocabulary.
type Mapping struct {
	ConceptID  string      `json:"concept_id" yaml:"concept_id"`
	TargetURI  string      `json:"target_uri" yaml:"target_uri"`
	Type       MappingType `json:"type" yaml:"type"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
}

// HierarchyPath is one row of the materialized broader closure. Depth 0 is
// the self path.
type HierarchyPath struct {
	AncestorID   string `json:"ancestor_id" yaml:"ancestor_id"`
	DescendantID string `json:"descendant_id" yaml:"descendant_id"`
	Depth        int    `json:"depth" yaml:"depth"`
}

// ConceptDetail composes a concept with everything attached to it.
type ConceptDetail struct {
	Concept

	Labels   []Label   `json:"labels" yaml:"labels"`
	Broader  []string  `json:"broader" yaml:"broader"`
	Narrower []string  `json:"narrower" yaml:"narrower"`
	Related  []string  `json:"related" yaml:"related"`
	Mappings []Mapping `json:"mappings" yaml:"mappings"`
}

// HierarchyEntry is a concept reached through the closure index together
// with its distance from the query concept.
type HierarchyEntry struct {
	Concept
	Depth int `json:"depth" yaml:"depth"`
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a structural inconsistency detected by the validator. Findings
// are data; callers decide whether error severity blocks anything.
type Finding struct {
	RuleName    string   `json:"rule_name" yaml:"rule_name"`
	Severity    Severity `json:"severity" yaml:"severity"`
	ConceptID   string   `json:"concept_id,omitempty" yaml:"concept_id,omitempty"`
	ConceptURI  string   `json:"concept_uri,omitempty" yaml:"concept_uri,omitempty"`
	Description string   `json:"description" yaml:"description"`

	// Members lists the URIs of every concept or scheme involved, sorted.
	Members []string `json:"members,omitempty" yaml:"members,omitempty"`
}

// ImportStats summarizes one import. An import always yields stats, even
// when individual items failed.
type ImportStats struct {
	SchemesImported   int `json:"schemes_imported" yaml:"schemes_imported"`
	ConceptsImported  int `json:"concepts_imported" yaml:"concepts_imported"`
	LabelsImported    int `json:"labels_imported" yaml:"labels_imported"`
	RelationsImported int `json:"relations_imported" yaml:"relations_imported"`
	MappingsImported  int `json:"mappings_imported" yaml:"mappings_imported"`

	// Unresolved counts relations whose target URI was neither a concept of
	// the document nor already stored. They are dropped.
	Unresolved int `json:"unresolved" yaml:"unresolved"`

	Errors   []string  `json:"errors" yaml:"errors"`
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// StoreStats reports table sizes and hierarchy shape.
type StoreStats struct {
	Schemes        int  `json:"schemes" yaml:"schemes"`
	Concepts       int  `json:"concepts" yaml:"concepts"`
	Labels         int  `json:"labels" yaml:"labels"`
	Relations      int  `json:"relations" yaml:"relations"`
	Mappings       int  `json:"mappings" yaml:"mappings"`
	Paths          int  `json:"hierarchy_paths" yaml:"hierarchy_paths"`
	MaxDepth       int  `json:"max_depth" yaml:"max_depth"`
	HierarchyStale bool `json:"hierarchy_stale" yaml:"hierarchy_stale"`
}
