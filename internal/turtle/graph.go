// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package turtle

// Kind classifies an RDF term.
type Kind int

const (
	KindIRI Kind = iota
	KindBlank
	KindLiteral
)

// Term is an RDF node. Lang is set only on language-tagged literals.
type Term struct {
	Kind  Kind
	Value string
	Lang  string
}

// IRI builds an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

func (t Term) key() string {
	switch t.Kind {
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		return "\"" + t.Value + "\"@" + t.Lang
	default:
		return t.Value
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Graph is a parsed document. It is never mutated after Parse returns, so
// concurrent readers need no locking.
type Graph struct {
	triples     []Triple
	bySubject   map[string][]int
	byPredicate map[string][]int
}

type builder struct {
	g *Graph
}

func newBuilder() *builder {
	return &builder{g: &Graph{
		bySubject:   make(map[string][]int),
		byPredicate: make(map[string][]int),
	}}
}

func (b *builder) add(t Triple) {
	i := len(b.g.triples)
	b.g.triples = append(b.g.triples, t)
	sk := t.Subject.key()
	b.g.bySubject[sk] = append(b.g.bySubject[sk], i)
	b.g.byPredicate[t.Predicate.Value] = append(b.g.byPredicate[t.Predicate.Value], i)
}

func (b *builder) build() *Graph {
	return b.g
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns a copy of all triples in document order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// WithPredicate returns the triples using predicate, in document order.
func (g *Graph) WithPredicate(predicate string) []Triple {
	idx := g.byPredicate[predicate]
	out := make([]Triple, len(idx))
	for i, n := range idx {
		out[i] = g.triples[n]
	}
	return out
}

// SubjectsOfType returns the distinct subjects declared with rdf:type
// typeIRI, in order of first declaration.
func (g *Graph) SubjectsOfType(typeIRI string) []Term {
	seen := make(map[string]bool)
	var out []Term
	for _, n := range g.byPredicate[RDFType] {
		t := g.triples[n]
		if !t.Object.IsIRI() || t.Object.Value != typeIRI {
			continue
		}
		k := t.Subject.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t.Subject)
	}
	return out
}

// Objects returns the objects of subject's predicate statements in
// document order.
func (g *Graph) Objects(subject Term, predicate string) []Term {
	var out []Term
	for _, n := range g.bySubject[subject.key()] {
		t := g.triples[n]
		if t.Predicate.Value == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// FirstLiteral returns the first literal object of subject's predicate.
func (g *Graph) FirstLiteral(subject Term, predicate string) (Term, bool) {
	for _, o := range g.Objects(subject, predicate) {
		if o.IsLiteral() {
			return o, true
		}
	}
	return Term{}, false
}

// HasType reports whether subject is declared with rdf:type typeIRI.
func (g *Graph) HasType(subject Term, typeIRI string) bool {
	for _, o := range g.Objects(subject, RDFType) {
		if o.IsIRI() && o.Value == typeIRI {
			return true
		}
	}
	return false
}
