// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package turtle

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Property is one predicate-object pair of a resource block.
type Property struct {
	Predicate string
	Object    Term
}

// Literal builds a literal term with an optional language tag.
func Literal(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// Writer emits Turtle with a sorted prefix block followed by one block per
// resource. Output is byte-for-byte deterministic for the same calls.
type Writer struct {
	w        io.Writer
	prefixes map[string]string
	err      error
}

// NewWriter creates a Writer with DefaultPrefixes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, prefixes: DefaultPrefixes()}
}

// SetPrefix declares an additional namespace prefix.
func (w *Writer) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WritePrefixes writes the @prefix declarations sorted by prefix.
func (w *Writer) WritePrefixes() {
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		w.printf("@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.printf("\n")
}

// WriteResource writes a subject block: its rdf:type followed by props in
// the given order.
func (w *Writer) WriteResource(subject, typeIRI string, props []Property) {
	w.printf("<%s> a %s", escapeIRI(subject), w.compact(typeIRI))
	for _, p := range props {
		w.printf(" ;\n    %s %s", w.compact(p.Predicate), w.object(p.Object))
	}
	w.printf(" .\n\n")
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// compact rewrites iri as prefix:local when a declared namespace matches
// and the local part needs no escaping.
func (w *Writer) compact(iri string) string {
	best := ""
	for prefix, ns := range w.prefixes {
		if !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if !isSimpleLocal(local) {
			continue
		}
		if best == "" || prefix < best {
			best = prefix
		}
	}
	if best == "" {
		return "<" + escapeIRI(iri) + ">"
	}
	return best + ":" + iri[len(w.prefixes[best]):]
}

func (w *Writer) object(t Term) string {
	switch t.Kind {
	case KindLiteral:
		s := "\"" + escapeString(t.Value) + "\""
		if t.Lang != "" {
			s += "@" + t.Lang
		}
		return s
	case KindBlank:
		return "_:" + t.Value
	default:
		return "<" + escapeIRI(t.Value) + ">"
	}
}

func isSimpleLocal(s string) bool {
	for i, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' {
			continue
		}
		if i > 0 && (r >= '0' && r <= '9' || r == '-') {
			continue
		}
		return false
	}
	return s != ""
}

// escapeString escapes special characters in literal values.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// escapeIRI percent-encodes the characters Turtle forbids inside <...>.
func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			fmt.Fprintf(&sb, "%%%02X", r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
