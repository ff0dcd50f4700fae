package annotation

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

const (
	// DefaultIDColumn names the column holding subject identifiers.
	DefaultIDColumn = "participant_id"

	// suggestThreshold is the minimum name similarity for a column suggestion.
	suggestThreshold = 0.7
)

// Normalizer converts annotation sources of either dialect into a Mapping.
type Normalizer struct {
	logger   *slog.Logger
	idColumn string
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithIDColumn sets the subject identifier column. It identifies rows rather
// than measuring anything, so it never becomes a data element even when the
// source annotates it. An empty name disables the exclusion.
func WithIDColumn(name string) NormalizerOption {
	return func(n *Normalizer) {
		n.idColumn = name
	}
}

// NewNormalizer creates a normalizer. A nil logger uses slog.Default().
func NewNormalizer(logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{logger: logger, idColumn: DefaultIDColumn}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize decodes source and normalizes it. See NormalizeDocument.
func (n *Normalizer) Normalize(columns []string, source []byte, assessment string, dialect Dialect) (Mapping, error) {
	doc, err := decodeDocument(source)
	if err != nil {
		return nil, err
	}
	return n.NormalizeDocument(columns, doc, assessment, dialect)
}

// NormalizeDocument builds the canonical mapping for the columns present in
// both the table and doc. Every key is DD(source=assessment, variable=column)
// regardless of the source the annotation was authored against. Columns
// without an annotation, and the identifier column, are omitted; no overlap
// yields an empty mapping. On error no mapping is returned.
func (n *Normalizer) NormalizeDocument(columns []string, doc map[string]any, assessment string, dialect Dialect) (Mapping, error) {
	if strings.TrimSpace(assessment) == "" {
		return nil, fmt.Errorf("%w: assessment name is required", ErrConfiguration)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: JSON source is empty", ErrValidation)
	}
	if dialect == DialectAuto {
		dialect = DetectDialect(doc)
	}

	p := parserFor(dialect)
	entries, err := p.parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", p.dialect(), err)
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	mapping := make(Mapping, len(entries))
	origins := make(map[Descriptor]string, len(entries))
	for _, e := range entries {
		if n.idColumn != "" && e.variable == n.idColumn {
			n.logger.Debug("Skipping identifier column", slog.String("key", e.key))
			continue
		}
		if !present[e.variable] {
			n.logUnmatched(e, columns)
			continue
		}
		d := NewDescriptor(assessment, e.variable)
		if prev, dup := origins[d]; dup {
			return nil, fmt.Errorf("%w: column %q is annotated by both %q and %q",
				ErrValidation, e.variable, prev, e.key)
		}
		origins[d] = e.key
		mapping[d] = e.record
	}

	n.logger.Debug("Normalized annotations",
		slog.String("dialect", p.dialect().String()),
		slog.String("assessment", assessment),
		slog.Int("records", len(entries)),
		slog.Int("annotated", len(mapping)))

	return mapping, nil
}

func (n *Normalizer) logUnmatched(e entry, columns []string) {
	attrs := []any{
		slog.String("key", e.key),
		slog.String("variable", e.variable),
	}
	if suggestion, ok := closestColumn(e.variable, columns); ok {
		attrs = append(attrs, slog.String("did_you_mean", suggestion))
		n.logger.Warn("Annotation has no matching column", attrs...)
		return
	}
	n.logger.Debug("Annotation has no matching column", attrs...)
}

// closestColumn returns the table column most similar to name.
func closestColumn(name string, columns []string) (string, bool) {
	best, bestScore := "", 0.0
	for _, c := range columns {
		if score := nameSimilarity(name, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= suggestThreshold
}

// nameSimilarity scores two names in [0, 1], case-insensitively.
func nameSimilarity(a, b string) float64 {
	n1, n2 := strings.ToLower(a), strings.ToLower(b)
	if n1 == n2 {
		return 1.0
	}

	maxLen := math.Max(float64(len([]rune(n1))), float64(len([]rune(n2))))
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.DistanceForStrings([]rune(n1), []rune(n2), levenshtein.DefaultOptions)
	return 1.0 - float64(distance)/maxLen
}

// Normalize normalizes source with a normalizer logging to slog.Default().
func Normalize(columns []string, source []byte, assessment string, dialect Dialect) (Mapping, error) {
	return NewNormalizer(nil).Normalize(columns, source, assessment, dialect)
}
