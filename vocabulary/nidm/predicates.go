package nidm

import "github.com/c360studio/semstreams/vocabulary"

// Type is the rdf:type predicate in semstreams dotted notation.
const Type = "rdf.syntax.type"

// Class predicates describe the ontology itself.
const (
	// ClassSubClassOf links a class to its direct superclass.
	ClassSubClassOf = "nidm.class.subclass_of"
)

// Data element predicates define attributes of an annotated dataset column.
const (
	// ElementLabel is the human-readable variable label.
	ElementLabel = "nidm.element.label"

	// ElementDescription is the free-text variable description.
	ElementDescription = "nidm.element.description"

	// ElementSourceVariable is the column name in the source table.
	ElementSourceVariable = "nidm.element.source_variable"

	// ElementAssociatedWith names the terminology or project the element is
	// associated with (e.g. "NIDM").
	ElementAssociatedWith = "nidm.element.associated_with"

	// ElementIsAbout links the element to an external ontology term.
	ElementIsAbout = "nidm.element.is_about"

	// ElementResponseOptions links the element to its response options node.
	ElementResponseOptions = "nidm.element.response_options"

	// ElementSource is the assessment the element was annotated from.
	ElementSource = "nidm.element.source"

	// ElementIdentifier is the data dictionary descriptor string.
	ElementIdentifier = "nidm.element.identifier"
)

// Term predicates describe external ontology terms referenced by isAbout.
const (
	// TermLabel is the display label of a referenced term.
	TermLabel = "nidm.term.label"
)

// Response option predicates describe admissible values of a data element.
const (
	// ResponseValueType is the datatype IRI of the values.
	ResponseValueType = "nidm.response.value_type"

	// ResponseUnitCode is the unit of measure ("NA" when not applicable).
	ResponseUnitCode = "nidm.response.unit_code"

	// ResponseMinValue is the lower bound ("NA" when not applicable).
	ResponseMinValue = "nidm.response.min_value"

	// ResponseMaxValue is the upper bound ("NA" when not applicable).
	ResponseMaxValue = "nidm.response.max_value"

	// ResponseChoice links the response options to one choice node.
	ResponseChoice = "nidm.response.choice"
)

// Choice predicates describe one labelled categorical value.
const (
	// ChoiceName is the human-readable label of the choice (e.g. "Male").
	ChoiceName = "nidm.choice.name"

	// ChoiceValue is the raw code stored in the table (e.g. "m").
	ChoiceValue = "nidm.choice.value"
)

func registerClassPredicates() {
	vocabulary.Register(ClassSubClassOf,
		vocabulary.WithDescription("Direct superclass of a class"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(IRISubClassOf))
}

func registerElementPredicates() {
	vocabulary.Register(ElementLabel,
		vocabulary.WithDescription("Variable label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRILabel))

	vocabulary.Register(ElementDescription,
		vocabulary.WithDescription("Variable description"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIDescription))

	vocabulary.Register(ElementSourceVariable,
		vocabulary.WithDescription("Column name in the source table"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRISourceVariable))

	vocabulary.Register(ElementAssociatedWith,
		vocabulary.WithDescription("Terminology the element is associated with"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIAssociatedWith))

	vocabulary.Register(ElementIsAbout,
		vocabulary.WithDescription("Ontology term the element is about"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(IRIIsAbout))

	vocabulary.Register(ElementResponseOptions,
		vocabulary.WithDescription("Response options of the element"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(IRIResponseOptions))

	vocabulary.Register(ElementSource,
		vocabulary.WithDescription("Assessment the element was annotated from"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcSource))

	vocabulary.Register(ElementIdentifier,
		vocabulary.WithDescription("Data dictionary descriptor"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcIdentifier))
}

func registerTermPredicates() {
	vocabulary.Register(TermLabel,
		vocabulary.WithDescription("Display label of an ontology term"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRILabel))
}

func registerResponsePredicates() {
	vocabulary.Register(ResponseValueType,
		vocabulary.WithDescription("Datatype of the response values"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIValueType))

	vocabulary.Register(ResponseUnitCode,
		vocabulary.WithDescription("Unit of measure"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIUnitCode))

	vocabulary.Register(ResponseMinValue,
		vocabulary.WithDescription("Minimum admissible value"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIMinValue))

	vocabulary.Register(ResponseMaxValue,
		vocabulary.WithDescription("Maximum admissible value"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIMaxValue))

	vocabulary.Register(ResponseChoice,
		vocabulary.WithDescription("Categorical choice of the response"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(IRIChoices))

	vocabulary.Register(ChoiceName,
		vocabulary.WithDescription("Choice label"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIName))

	vocabulary.Register(ChoiceValue,
		vocabulary.WithDescription("Raw value stored for the choice"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(IRIValue))
}

func init() {
	registerClassPredicates()
	registerElementPredicates()
	registerTermPredicates()
	registerResponsePredicates()
}
