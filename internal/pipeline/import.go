// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives vocabulary imports and exports: parse, store,
// materialize, and validate on the way in; read and serialize to Turtle on
// the way out.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/skos-engine/internal/extract"
	"github.com/pdiddy/skos-engine/internal/httputil"
	"github.com/pdiddy/skos-engine/internal/knowledge"
	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/internal/secrets"
	"github.com/pdiddy/skos-engine/internal/validate"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// Importer loads Turtle documents into a store.
type Importer struct {
	store     *knowledge.Store
	cfg       types.ImportConfig
	validator *validate.Validator
	client    *http.Client
	secrets   map[string]string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// WithMetrics records item and error counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(im *Importer) { im.metrics = m }
}

// WithValidator runs v after every import. Without it imports are not
// validated.
func WithValidator(v *validate.Validator) Option {
	return func(im *Importer) { im.validator = v }
}

// WithHTTPClient sets the client used by ImportURL.
func WithHTTPClient(c *http.Client) Option {
	return func(im *Importer) { im.client = c }
}

// WithSecrets supplies per-host bearer tokens for ImportURL.
func WithSecrets(s map[string]string) Option {
	return func(im *Importer) { im.secrets = s }
}

// NewImporter creates an Importer writing to store.
func NewImporter(store *knowledge.Store, cfg types.ImportConfig, opts ...Option) *Importer {
	im := &Importer{
		store:  store,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(im)
	}
	if im.client == nil {
		im.client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return im
}

// Import parses r and writes its contents in one batch. Progress lines go
// to w. Only an unparseable document fails the call; every other problem
// is recorded in the returned stats and the import continues.
func (im *Importer) Import(ctx context.Context, r io.Reader, w io.Writer) (types.ImportStats, error) {
	var stats types.ImportStats

	doc, err := extract.Parse(ctx, r, extract.Options{PreferredLanguage: im.cfg.PreferredLanguage})
	if err != nil {
		im.metrics.ImportRun("failed")
		return stats, fmt.Errorf("parsing vocabulary: %w", err)
	}
	fmt.Fprintf(w, "parsed %d triples, %d concepts\n", doc.Graph().Len(), doc.ConceptCount())

	res, err := extract.Run(ctx, doc)
	if err != nil {
		im.metrics.ImportRun("failed")
		return stats, fmt.Errorf("extracting vocabulary: %w", err)
	}
	for _, is := range res.Issues {
		stats.Errors = append(stats.Errors, is.String())
		im.metrics.ImportError(is.Pass)
		fmt.Fprintf(w, "skipped %s\n", is)
	}

	err = im.store.Batch(ctx, func(b *knowledge.Batch) error {
		if err := im.write(ctx, b, res, &stats, w); err != nil {
			return err
		}

		hr, ran, err := b.Materialize(ctx)
		if err != nil {
			return fmt.Errorf("materializing hierarchy: %w", err)
		}
		if ran {
			fmt.Fprintf(w, "hierarchy rebuilt: %d paths, max depth %d\n", hr.Paths, hr.MaxDepth)
			if hr.CeilingReached {
				fmt.Fprintf(w, "warning: hierarchy depth ceiling reached\n")
			}
		}

		if im.validator != nil {
			if stats.Findings, err = b.Validate(ctx, im.validator); err != nil {
				return fmt.Errorf("validating: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		im.metrics.ImportRun("failed")
		return stats, err
	}

	im.metrics.ImportItems("scheme", stats.SchemesImported)
	im.metrics.ImportItems("concept", stats.ConceptsImported)
	im.metrics.ImportItems("label", stats.LabelsImported)
	im.metrics.ImportItems("relation", stats.RelationsImported)
	im.metrics.ImportItems("mapping", stats.MappingsImported)

	fmt.Fprintf(w, "\nschemes: %d, concepts: %d, labels: %d, relations: %d, mappings: %d, unresolved: %d, errors: %d\n",
		stats.SchemesImported, stats.ConceptsImported, stats.LabelsImported,
		stats.RelationsImported, stats.MappingsImported, stats.Unresolved, len(stats.Errors))
	if im.validator != nil {
		errs, warns := validate.Summary(stats.Findings)
		fmt.Fprintf(w, "findings: %d errors, %d warnings\n", errs, warns)
	}

	outcome := "ok"
	if len(stats.Errors) > 0 {
		outcome = "partial"
	}
	im.metrics.ImportRun(outcome)
	im.logger.Info("import complete",
		zap.Int("concepts", stats.ConceptsImported),
		zap.Int("relations", stats.RelationsImported),
		zap.Int("errors", len(stats.Errors)))

	return stats, nil
}

// write stores each phase in order. A failed item is recorded and skipped;
// a failed phase never blocks the next one. Only context cancellation
// aborts the batch.
func (im *Importer) write(ctx context.Context, b *knowledge.Batch, res *extract.Result, stats *types.ImportStats, w io.Writer) error {
	fail := func(phase, item string, err error) {
		msg := fmt.Sprintf("%s %s: %v", phase, item, err)
		stats.Errors = append(stats.Errors, msg)
		im.metrics.ImportError(phase)
		fmt.Fprintf(w, "failed  %s\n", msg)
	}

	for _, sc := range res.Schemes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.UpsertScheme(ctx, sc); err != nil {
			fail(extract.PassSchemes, sc.URI, err)
			continue
		}
		stats.SchemesImported++
	}

	// Parsed ids are provisional: a concept already in the store keeps the
	// id it was first given.
	ids := make(map[string]string, len(res.Concepts))
	for _, c := range res.Concepts {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := b.UpsertConcept(ctx, c)
		if err != nil {
			fail(extract.PassConcepts, c.URI, err)
			continue
		}
		ids[c.ID] = id
		stats.ConceptsImported++
	}

	for _, l := range res.Labels {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, ok := ids[l.ConceptID]
		if !ok {
			continue
		}
		l.ConceptID = id
		if _, err := b.AddLabel(ctx, l); err != nil {
			fail(extract.PassLabels, fmt.Sprintf("%q", l.Text), err)
			continue
		}
		stats.LabelsImported++
	}

	for _, ref := range res.Relations {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, ok := ids[ref.SourceID]
		if !ok {
			continue
		}
		dst, ok, err := im.resolveTarget(ctx, b, ids, ref)
		if err != nil {
			fail(extract.PassRelations, ref.SourceURI+" "+string(ref.Type)+" "+ref.TargetURI, err)
			continue
		}
		if !ok {
			stats.Unresolved++
			fmt.Fprintf(w, "unresolved %s %s %s\n", ref.SourceURI, ref.Type, ref.TargetURI)
			continue
		}
		if _, err := b.AddRelation(ctx, types.Relation{SourceID: src, TargetID: dst, Type: ref.Type}); err != nil {
			fail(extract.PassRelations, ref.SourceURI+" "+string(ref.Type)+" "+ref.TargetURI, err)
			continue
		}
		stats.RelationsImported++
	}

	for _, m := range res.Mappings {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, ok := ids[m.ConceptID]
		if !ok {
			continue
		}
		m.ConceptID = id
		if _, err := b.AddMapping(ctx, m); err != nil {
			fail(extract.PassMappings, m.TargetURI, err)
			continue
		}
		stats.MappingsImported++
	}

	return nil
}

// resolveTarget maps a relation target to a stored id: first through the
// document's own concepts, then by URI against the store.
func (im *Importer) resolveTarget(ctx context.Context, b *knowledge.Batch, ids map[string]string, ref extract.RelationRef) (string, bool, error) {
	if ref.TargetID != "" {
		id, ok := ids[ref.TargetID]
		return id, ok, nil
	}
	return b.ConceptIDByURI(ctx, ref.TargetURI)
}

// ImportURL fetches a Turtle document and imports it. A bearer token is
// sent when the secrets hold one for the URL's host.
func (im *Importer) ImportURL(ctx context.Context, url string, w io.Writer) (types.ImportStats, error) {
	opts := httputil.FetchOptions{
		Client:     im.client,
		MaxRetries: im.cfg.MaxRetries,
		Logger:     im.logger,
	}
	if tok, ok := secrets.TokenFor(im.secrets, url); ok {
		opts.Token = tok
	}

	fmt.Fprintf(w, "fetching %s\n", url)
	data, err := httputil.FetchVocabulary(ctx, url, opts)
	if err != nil {
		im.metrics.ImportRun("failed")
		return types.ImportStats{}, err
	}
	return im.Import(ctx, bytes.NewReader(data), w)
}
