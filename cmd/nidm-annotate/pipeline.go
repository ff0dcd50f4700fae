package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/c360studio/nidm-annotate/annotator"
	"github.com/c360studio/nidm-annotate/config"
	"github.com/c360studio/nidm-annotate/export"
	"github.com/c360studio/nidm-annotate/graph"
	"github.com/c360studio/nidm-annotate/storage"
	"github.com/c360studio/nidm-annotate/table"
	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
)

// annotateFlags are the run inputs shared by annotate, query and watch.
// Empty values leave the loaded configuration untouched.
type annotateFlags struct {
	tables     []string
	source     string
	assessment string
	dialect    string
	out        string
	format     string
	profile    string
	idColumn   string
}

func (f *annotateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.tables, "table", "t", nil, "Table file or glob (repeatable, ** supported)")
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "JSON annotation source (BIDS sidecar or ReproSchema mapping)")
	cmd.Flags().StringVar(&f.assessment, "assessment", "", "Assessment name (default: table file name without extension)")
	cmd.Flags().StringVar(&f.dialect, "dialect", "", "Source dialect (auto, bids, reproschema)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory")
	cmd.Flags().StringVar(&f.format, "format", "", "Graph format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Data element type profile (minimal, bfo, cco)")
	cmd.Flags().StringVar(&f.idColumn, "id-column", "", `Subject identifier column ("-" to annotate every column)`)
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("source")
}

// apply overlays the flags on cfg and revalidates it.
func (f *annotateFlags) apply(cfg *config.Config) error {
	overrides := []struct {
		dst *string
		val string
	}{
		{&cfg.Annotation.Assessment, f.assessment},
		{&cfg.Annotation.Dialect, f.dialect},
		{&cfg.Annotation.IDColumn, f.idColumn},
		{&cfg.Output.Directory, f.out},
		{&cfg.Output.Format, f.format},
		{&cfg.Graph.Profile, f.profile},
	}
	for _, o := range overrides {
		if o.val != "" {
			*o.dst = o.val
		}
	}
	return cfg.Validate()
}

// pipeline annotates a set of tables against one source into a shared graph.
type pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	annotator *annotator.Annotator
	dialect   annotation.Dialect
	format    export.Format
}

func newPipeline(cfg *config.Config, logger *slog.Logger, metrics *annotator.Metrics) (*pipeline, error) {
	dialect, err := annotation.ParseDialect(cfg.Annotation.Dialect)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", annotation.ErrConfiguration, err)
	}
	// Validate already rejected unknown profiles.
	profile, _ := nidm.ParseProfile(cfg.Graph.Profile)

	return &pipeline{
		cfg:    cfg,
		logger: logger,
		annotator: annotator.New(
			annotator.WithLogger(logger),
			annotator.WithMetrics(metrics),
			annotator.WithNamespace(cfg.Graph.Namespace),
			annotator.WithProfile(profile),
			annotator.WithIDColumn(cfg.Annotation.IdentifierColumn())),
		dialect: dialect,
		format:  format,
	}, nil
}

// runOutput is everything one pipeline run produced.
type runOutput struct {
	Graph     *graph.Graph
	Results   []*annotator.Result
	GraphPath string
}

// Annotated returns the number of annotated columns across all tables.
func (o *runOutput) Annotated() int {
	n := 0
	for _, r := range o.Results {
		n += len(r.Mapping)
	}
	return n
}

// run annotates every table. A single table writes its sidecar directly
// into the output directory; several tables each get a subdirectory named
// after their assessment so their sidecars do not overwrite each other.
// The graph file always lands in the output directory.
// Assessment names are resolved before anything is written.
func (p *pipeline) run(ctx context.Context, tables []string, sourcePath string) (*runOutput, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no tables to annotate", annotation.ErrConfiguration)
	}
	if p.cfg.Annotation.Assessment != "" && len(tables) > 1 {
		return nil, fmt.Errorf("%w: an assessment name can only be set for a single table", annotation.ErrConfiguration)
	}

	assessments, err := assessmentNames(tables, p.cfg.Annotation.Assessment)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read annotation source: %v", annotation.ErrConfiguration, err)
	}

	outDir := p.cfg.Output.Directory
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", annotation.ErrConfiguration, err)
	}

	out := &runOutput{Graph: graph.New()}
	for i, path := range tables {
		tbl, err := table.ReadFile(path)
		if err != nil {
			return nil, err
		}
		assessment := assessments[i]

		dir := outDir
		if len(tables) > 1 {
			dir = filepath.Join(outDir, assessment)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("%w: create output directory: %v", annotation.ErrConfiguration, err)
			}
		}

		res, err := p.annotator.MapVariablesToTerms(ctx, annotator.Request{
			Table:      tbl,
			Source:     source,
			Directory:  dir,
			Assessment: assessment,
			Dialect:    p.dialect,
			Graph:      out.Graph,
		})
		if err != nil {
			return nil, fmt.Errorf("annotate %s: %w", tbl.Name, err)
		}
		out.Results = append(out.Results, res)
	}

	out.GraphPath = filepath.Join(outDir, export.FileName(p.format))
	if err := export.WriteFile(out.GraphPath, out.Graph, p.format, p.cfg.Graph.Namespace); err != nil {
		return nil, fmt.Errorf("write graph: %w", err)
	}

	p.logger.Info("Annotation run complete",
		slog.Int("tables", len(out.Results)),
		slog.Int("annotated", out.Annotated()),
		slog.Int("statements", out.Graph.Len()),
		slog.String("graph", out.GraphPath))

	return out, nil
}

// assessmentNames returns one assessment per table. The default is the
// file name without its extension; tables sharing a file name, as in
// sub-01/participants.tsv and sub-02/participants.tsv, are named after
// their path below the tables' common directory (sub-01_participants).
func assessmentNames(tables []string, override string) ([]string, error) {
	if override != "" {
		return []string{override}, nil
	}

	byBase := make(map[string]int, len(tables))
	for _, path := range tables {
		byBase[baseAssessment(path)]++
	}

	root := commonDir(tables)
	names := make([]string, len(tables))
	owner := make(map[string]string, len(tables))
	for i, path := range tables {
		name := baseAssessment(path)
		if byBase[name] > 1 {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, fmt.Errorf("%w: name table %s: %v", annotation.ErrConfiguration, path, err)
			}
			rel = strings.TrimSuffix(rel, filepath.Ext(rel))
			name = strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
		}
		if prev, dup := owner[name]; dup {
			return nil, fmt.Errorf("%w: tables %s and %s both resolve to assessment %q",
				annotation.ErrConfiguration, prev, path, name)
		}
		owner[name] = path
		names[i] = name
	}
	return names, nil
}

func baseAssessment(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !isWithin(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// natsConn is the part of natsclient.Client the pipeline needs.
type natsConn interface {
	graph.StreamPublisher
	JetStream() (jetstream.JetStream, error)
}

// sync persists the canonical records and publishes the data elements,
// as enabled by the nats configuration.
func (p *pipeline) sync(ctx context.Context, conn natsConn, out *runOutput) error {
	if p.cfg.NATS.PersistEnabled() {
		js, err := conn.JetStream()
		if err != nil {
			return fmt.Errorf("get jetstream: %w", err)
		}
		store, err := storage.NewStore(ctx, js)
		if err != nil {
			return err
		}
		stored := 0
		for _, res := range out.Results {
			n, err := store.PutMapping(ctx, res.Mapping)
			stored += n
			if err != nil {
				return fmt.Errorf("persist annotations: %w", err)
			}
		}
		p.logger.Info("Persisted annotations",
			slog.String("bucket", storage.BucketAnnotations),
			slog.Int("records", stored))
	}

	if p.cfg.NATS.PublishEnabled() {
		n, err := graph.PublishDataElements(ctx, conn, out.Graph)
		if err != nil {
			return fmt.Errorf("publish data elements: %w", err)
		}
		p.logger.Info("Published data elements",
			slog.String("subject", graph.GraphIngestSubject),
			slog.Int("entities", n))
	}
	return nil
}
