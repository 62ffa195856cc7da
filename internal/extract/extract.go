// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a parsed Turtle graph into typed SKOS records.
// Concept subjects are registered once, up front, so the five extraction
// passes only read immutable state and can run concurrently.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/skos-engine/internal/turtle"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// Pass names, used in Issue.Pass and error messages.
const (
	PassSchemes   = "scheme"
	PassConcepts  = "concept"
	PassLabels    = "label"
	PassRelations = "relation"
	PassMappings  = "mapping"
)

// Options configures extraction.
type Options struct {
	// PreferredLanguage picks the prefLabel and definition when a concept
	// carries several language variants.
	PreferredLanguage string

	// NewID returns a fresh internal concept identifier. Defaults to a
	// random UUID.
	NewID func() string
}

// Issue records a node that was skipped because it lacks a required
// property or has the wrong shape. Issues never stop extraction.
type Issue struct {
	Pass    string
	Subject string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Pass, i.Subject, i.Message)
}

// RelationRef is an extracted relation. TargetID is empty when the target
// URI is not a concept of this document; callers may resolve it elsewhere.
type RelationRef struct {
	SourceID  string
	SourceURI string
	TargetID  string
	TargetURI string
	Type      types.RelationType
}

// Document is a parsed graph plus its concept registry.
type Document struct {
	graph *turtle.Graph
	opts  Options

	// concepts holds registered concept subjects in declaration order.
	concepts []turtle.Term
	ids      map[string]string
	prefs    map[string]turtle.Term
	issues   []Issue
}

// Parse decodes r and registers its concepts. A malformed document fails
// with a *turtle.ParseError.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Document, error) {
	g, err := turtle.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	return NewDocument(g, opts), nil
}

// NewDocument registers every skos:Concept subject that has a prefLabel and
// assigns it a fresh identifier.
func NewDocument(g *turtle.Graph, opts Options) *Document {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	d := &Document{
		graph: g,
		opts:  opts,
		ids:   make(map[string]string),
		prefs: make(map[string]turtle.Term),
	}

	for _, subj := range g.SubjectsOfType(turtle.SkosConcept) {
		if !subj.IsIRI() {
			d.issues = append(d.issues, Issue{PassConcepts, subj.Value, "blank node concepts are not supported"})
			continue
		}
		pref, ok := d.pickLiteral(subj, turtle.SkosPrefLabel)
		if !ok || strings.TrimSpace(pref.Value) == "" {
			d.issues = append(d.issues, Issue{PassConcepts, subj.Value, "missing skos:prefLabel"})
			continue
		}
		d.concepts = append(d.concepts, subj)
		d.ids[subj.Value] = opts.NewID()
		d.prefs[subj.Value] = pref
	}

	return d
}

// Graph returns the underlying parsed graph.
func (d *Document) Graph() *turtle.Graph {
	return d.graph
}

// ConceptID returns the identifier assigned to a concept URI during
// registration.
func (d *Document) ConceptID(uri string) (string, bool) {
	id, ok := d.ids[uri]
	return id, ok
}

// ConceptCount returns the number of registered concepts.
func (d *Document) ConceptCount() int {
	return len(d.concepts)
}

// Result collects the output of all five passes.
type Result struct {
	Schemes   []types.ConceptScheme
	Concepts  []types.Concept
	Labels    []types.Label
	Relations []RelationRef
	Mappings  []types.Mapping

	// Issues are ordered by pass: schemes, concepts, labels, relations,
	// mappings.
	Issues []Issue
}

// Run executes the five extraction passes concurrently.
func Run(ctx context.Context, d *Document) (*Result, error) {
	var (
		res    Result
		issues [5][]Issue
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Schemes, issues[0] = d.Schemes()
		return ctx.Err()
	})
	g.Go(func() error {
		res.Concepts, issues[1] = d.Concepts()
		return ctx.Err()
	})
	g.Go(func() error {
		res.Labels, issues[2] = d.Labels()
		return ctx.Err()
	})
	g.Go(func() error {
		res.Relations, issues[3] = d.Relations()
		return ctx.Err()
	})
	g.Go(func() error {
		res.Mappings, issues[4] = d.Mappings()
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, is := range issues {
		res.Issues = append(res.Issues, is...)
	}
	return &res, nil
}

// pickLiteral chooses among the literal objects of predicate: the one in
// the preferred language, else the untagged one, else the first.
func (d *Document) pickLiteral(subj turtle.Term, predicate string) (turtle.Term, bool) {
	var untagged, first *turtle.Term
	for _, o := range d.graph.Objects(subj, predicate) {
		if !o.IsLiteral() {
			continue
		}
		if d.opts.PreferredLanguage != "" && strings.EqualFold(o.Lang, d.opts.PreferredLanguage) {
			return o, true
		}
		if o.Lang == "" && untagged == nil {
			untagged = &o
		}
		if first == nil {
			first = &o
		}
	}
	if untagged != nil {
		return *untagged, true
	}
	if first != nil {
		return *first, true
	}
	return turtle.Term{}, false
}
