// Package annotator runs the end-to-end variable-to-term mapping: normalize
// the annotation source against a table, write the BIDS sidecar and emit
// data elements into a graph.
package annotator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/c360studio/nidm-annotate/graph"
	"github.com/c360studio/nidm-annotate/table"
	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
)

// Annotator maps table columns to terms.
type Annotator struct {
	logger    *slog.Logger
	metrics   *Metrics
	namespace string
	profile   nidm.Profile
	idColumn  string
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Annotator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics records runs in m.
func WithMetrics(m *Metrics) Option {
	return func(a *Annotator) { a.metrics = m }
}

// WithNamespace sets the IRI prefix of emitted data elements.
func WithNamespace(ns string) Option {
	return func(a *Annotator) { a.namespace = ns }
}

// WithProfile selects the ontology type assertions on data elements.
func WithProfile(p nidm.Profile) Option {
	return func(a *Annotator) { a.profile = p }
}

// WithIDColumn names the subject identifier column excluded from mapping.
func WithIDColumn(name string) Option {
	return func(a *Annotator) { a.idColumn = name }
}

// New creates an annotator.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		logger:    slog.Default(),
		namespace: nidm.InstanceNamespace,
		profile:   nidm.ProfileMinimal,
		idColumn:  annotation.DefaultIDColumn,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request is one annotation run.
type Request struct {
	// Table supplies the column names to annotate.
	Table *table.Table

	// Source is the raw JSON annotation document.
	Source []byte

	// Directory receives nidm_annotations.json.
	Directory string

	// Assessment names the source of every descriptor.
	Assessment string

	// Dialect of Source; DialectAuto detects it.
	Dialect annotation.Dialect

	// Graph is appended to; nil starts a new graph.
	Graph *graph.Graph
}

// Result is the outcome of a successful run.
type Result struct {
	Assessment  string
	Mapping     annotation.Mapping
	Graph       *graph.Graph
	SidecarPath string
	Dialect     annotation.Dialect
}

// MapVariablesToTerms normalizes req.Source against the table columns,
// writes the sidecar to req.Directory and emits one data element per
// annotated column into the graph. Any failure aborts the run without a
// partial result.
func (a *Annotator) MapVariablesToTerms(ctx context.Context, req Request) (*Result, error) {
	res, err := a.run(ctx, req)
	if err != nil {
		a.metrics.recordError(err)
		a.logger.Warn("Annotation failed",
			slog.String("assessment", req.Assessment),
			slog.String("error", err.Error()))
		return nil, err
	}
	return res, nil
}

func (a *Annotator) run(ctx context.Context, req Request) (*Result, error) {
	if req.Table == nil {
		return nil, fmt.Errorf("%w: table is required", annotation.ErrConfiguration)
	}

	doc, err := annotation.Decode(req.Source)
	if err != nil {
		return nil, err
	}
	dialect := req.Dialect
	if dialect == annotation.DialectAuto {
		dialect = annotation.DetectDialect(doc)
	}

	normalizer := annotation.NewNormalizer(a.logger, annotation.WithIDColumn(a.idColumn))
	mapping, err := normalizer.NormalizeDocument(req.Table.Columns, doc, req.Assessment, dialect)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := annotation.WriteSidecar(req.Directory, mapping)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emitter := graph.NewEmitter(
		graph.WithNamespace(a.namespace),
		graph.WithProfile(a.profile),
		graph.WithLogger(a.logger))
	_, g := emitter.Emit(mapping, req.Graph)

	a.metrics.recordRun(dialect, len(mapping))
	a.logger.Info("Annotated table",
		slog.String("table", req.Table.Name),
		slog.String("assessment", req.Assessment),
		slog.String("dialect", dialect.String()),
		slog.Int("annotated", len(mapping)),
		slog.Int("columns", len(req.Table.Columns)),
		slog.String("sidecar", path))

	return &Result{
		Assessment:  req.Assessment,
		Mapping:     mapping,
		Graph:       g,
		SidecarPath: path,
		Dialect:     dialect,
	}, nil
}
