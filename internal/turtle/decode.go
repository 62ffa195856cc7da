// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package turtle isolates the RDF library behind a small immutable graph
// and writes Turtle back out. Only this file imports the decoder, so the
// library can be swapped without touching extraction logic.
package turtle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/knakk/rdf"
)

// ParseError reports a malformed document. Nothing from a document that
// fails to parse is returned.
type ParseError struct {
	// Triples is the number of triples decoded before the failure.
	Triples int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing turtle after %d triples: %v", e.Triples, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ctxCheckInterval is how many triples are decoded between context checks.
const ctxCheckInterval = 1024

// Parse decodes a Turtle document into an immutable Graph.
func Parse(ctx context.Context, r io.Reader) (*Graph, error) {
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)
	b := newBuilder()

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		t, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Triples: n, Err: err}
		}

		b.add(Triple{
			Subject:   convertTerm(t.Subj),
			Predicate: convertTerm(t.Pred),
			Object:    convertTerm(t.Obj),
		})
	}

	return b.build(), nil
}

func convertTerm(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermIRI:
		return Term{Kind: KindIRI, Value: t.String()}
	case rdf.TermBlank:
		return Term{Kind: KindBlank, Value: t.String()}
	default:
		term := Term{Kind: KindLiteral, Value: t.String()}
		if lit, ok := t.(rdf.Literal); ok {
			term.Lang = lit.Lang()
		}
		return term
	}
}
