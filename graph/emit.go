package graph

import (
	"log/slog"
	"time"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"github.com/c360studio/semstreams/message"
	"github.com/google/uuid"
)

// EmitterSource is recorded as the Source of every emitted triple.
const EmitterSource = "nidm-annotate.emitter"

// Emitter turns a canonical annotation mapping into data element entities.
type Emitter struct {
	profile   nidm.Profile
	namespace string
	logger    *slog.Logger
	now       func() time.Time
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithProfile selects the ontology type assertions placed on data elements.
func WithProfile(p nidm.Profile) EmitterOption {
	return func(e *Emitter) { e.profile = p }
}

// WithNamespace sets the IRI prefix of emitted entities.
func WithNamespace(ns string) EmitterOption {
	return func(e *Emitter) {
		if ns != "" {
			e.namespace = ns
		}
	}
}

// WithLogger sets the emitter logger.
func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEmitter creates an emitter using the minimal profile and the NIDM
// instance namespace unless configured otherwise.
func NewEmitter(opts ...EmitterOption) *Emitter {
	e := &Emitter{
		profile:   nidm.ProfileMinimal,
		namespace: nidm.InstanceNamespace,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ElementIRI returns the IRI of the data element for d. It is derived from
// the descriptor alone, so re-emitting a mapping names the same entities.
func (e *Emitter) ElementIRI(d annotation.Descriptor) string {
	return e.mint(d.String())
}

func (e *Emitter) mint(name string) string {
	return e.namespace + uuid.NewSHA1(uuid.NameSpaceURL, []byte(e.namespace+name)).String()
}

// Emit adds one data element entity per descriptor of m to g and returns
// both. A nil g starts a new graph. Statements already present are not
// duplicated, so emitting the same mapping twice leaves g unchanged.
func (e *Emitter) Emit(m annotation.Mapping, g *Graph) (annotation.Mapping, *Graph) {
	if g == nil {
		g = New()
	}

	now := e.now()
	g.Add(e.hierarchyTriples(now)...)

	added := 0
	for _, d := range m.Descriptors() {
		added += g.Add(e.elementTriples(d, m[d], now)...)
	}

	e.logger.Debug("Emitted data elements",
		slog.Int("elements", len(m)),
		slog.Int("triples_added", added),
		slog.Int("graph_size", g.Len()))

	return m, g
}

func (e *Emitter) hierarchyTriples(now time.Time) []message.Triple {
	var triples []message.Triple
	for _, class := range []string{nidm.ClassPersonalDataElement, nidm.ClassDataElement} {
		for _, super := range nidm.ClassHierarchy[class] {
			triples = append(triples, newTriple(class, nidm.ClassSubClassOf, super, now))
		}
	}
	return triples
}

// elementTriples builds the data element statements for one descriptor
// followed by the statements of its term, response option and choice nodes.
func (e *Emitter) elementTriples(d annotation.Descriptor, rec annotation.Record, now time.Time) []message.Triple {
	id := e.ElementIRI(d)

	var element, secondary []message.Triple
	add := func(pred string, obj string) {
		if obj != "" {
			element = append(element, newTriple(id, pred, obj, now))
		}
	}

	for _, class := range nidm.GetTypesForDataElement(e.profile) {
		add(nidm.Type, class)
	}
	add(nidm.ElementLabel, rec.Label)
	add(nidm.ElementDescription, rec.Description)
	add(nidm.ElementSourceVariable, rec.SourceVariable)
	add(nidm.ElementAssociatedWith, rec.AssociatedWith)

	for _, term := range rec.IsAbout {
		add(nidm.ElementIsAbout, term.ID)
		if term.Label != "" {
			secondary = append(secondary, newTriple(term.ID, nidm.TermLabel, term.Label, now))
		}
	}

	if ro := rec.ResponseOptions; !ro.IsZero() {
		node := e.mint(d.String() + "/responseOptions")
		add(nidm.ElementResponseOptions, node)
		secondary = append(secondary, e.responseTriples(node, d, ro, now)...)
	}

	add(nidm.ElementSource, d.Source)
	add(nidm.ElementIdentifier, d.String())

	return append(element, secondary...)
}

func (e *Emitter) responseTriples(node string, d annotation.Descriptor, ro *annotation.ResponseOptions, now time.Time) []message.Triple {
	triples := []message.Triple{newTriple(node, nidm.Type, nidm.ClassResponseOption, now)}

	fields := []struct {
		pred  string
		value string
	}{
		{nidm.ResponseValueType, ro.ValueType},
		{nidm.ResponseUnitCode, ro.UnitCode},
		{nidm.ResponseMinValue, ro.MinValue},
		{nidm.ResponseMaxValue, ro.MaxValue},
	}
	for _, f := range fields {
		if f.value != "" {
			triples = append(triples, newTriple(node, f.pred, f.value, now))
		}
	}

	for _, label := range ro.ChoiceLabels() {
		choice := e.mint(d.String() + "/choices/" + label)
		triples = append(triples,
			newTriple(node, nidm.ResponseChoice, choice, now),
			newTriple(choice, nidm.Type, nidm.ClassChoice, now),
			newTriple(choice, nidm.ChoiceName, label, now),
			newTriple(choice, nidm.ChoiceValue, ro.Choices[label], now),
		)
	}
	return triples
}

func newTriple(subject, predicate string, object any, now time.Time) message.Triple {
	return message.Triple{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Source:     EmitterSource,
		Timestamp:  now,
		Confidence: 1.0,
	}
}

// Emit adds m to g with a default emitter. See Emitter.Emit.
func Emit(m annotation.Mapping, g *Graph) (annotation.Mapping, *Graph) {
	return NewEmitter().Emit(m, g)
}
