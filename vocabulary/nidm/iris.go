package nidm

// Namespace is the base IRI for NIDM ontology terms.
const Namespace = "http://purl.org/nidash/nidm#"

// InstanceNamespace is the base IRI for NIDM instance data (niiri).
const InstanceNamespace = "http://iri.nidm.nidash.org/"

// Namespaces of the vocabularies data element statements map onto.
const (
	ReproSchemaNamespace = "http://schema.repronim.org/"
	SchemaOrgNamespace   = "http://schema.org/"
	DCTermsNamespace     = "http://purl.org/dc/terms/"
	RDFNamespace         = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace        = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace         = "http://www.w3.org/2001/XMLSchema#"
)

// Class IRIs.
const (
	// ClassDataElement is the root class for dataset variable descriptions.
	ClassDataElement = Namespace + "DataElement"

	// ClassPersonalDataElement describes a variable of a study-specific
	// assessment. Extends: ClassDataElement
	ClassPersonalDataElement = Namespace + "PersonalDataElement"

	// ClassResponseOption describes the admissible values of a data element.
	ClassResponseOption = ReproSchemaNamespace + "ResponseOption"

	// ClassChoice is one labelled value of a categorical response.
	ClassChoice = ReproSchemaNamespace + "Choice"
)

// Property IRIs without a standard counterpart in semstreams.
const (
	IRIType        = RDFNamespace + "type"
	IRISubClassOf  = RDFSNamespace + "subClassOf"
	IRILabel       = RDFSNamespace + "label"
	IRIDescription = DCTermsNamespace + "description"

	IRISourceVariable = Namespace + "sourceVariable"
	IRIAssociatedWith = Namespace + "associatedWith"
	IRIIsAbout        = Namespace + "isAbout"

	IRIResponseOptions = ReproSchemaNamespace + "responseOptions"
	IRIValueType       = ReproSchemaNamespace + "valueType"
	IRIChoices         = ReproSchemaNamespace + "choices"

	IRIUnitCode = SchemaOrgNamespace + "unitCode"
	IRIMinValue = SchemaOrgNamespace + "minValue"
	IRIMaxValue = SchemaOrgNamespace + "maxValue"
	IRIName     = SchemaOrgNamespace + "name"
	IRIValue    = SchemaOrgNamespace + "value"
)
