// Package nidm provides vocabulary predicates and class IRIs for NIDM data
// element annotation.
//
// Data elements describe the columns of a tabular assessment (for example a
// participants.tsv file) and link them to external ontology terms. The
// vocabulary is designed for:
//   - Internal efficiency: dotted predicates that sort and filter cleanly
//   - External interoperability: IRI mappings onto NIDM, ReproSchema,
//     schema.org, Dublin Core, RDFS and PROV-O
//
// # Semstreams Integration
//
// This package follows semstreams vocabulary patterns:
//   - Predicates use three-level dotted notation (domain.category.property)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() for RDF export compatibility
//
// # Class Hierarchy
//
//	PersonalDataElement → DataElement → prov:Entity
//
// Data elements are asserted as nidm:PersonalDataElement and prov:Entity.
// Consumers that look for "is-a DataElement" must follow rdfs:subClassOf,
// which is why the hierarchy itself is emitted into every graph.
//
// # Usage
//
//	triples := []message.Triple{
//	    {Subject: elementIRI, Predicate: nidm.ElementLabel, Object: "age"},
//	    {Subject: elementIRI, Predicate: nidm.ElementIsAbout, Object: "http://uri.interlex.org/ilx_0100400"},
//	}
package nidm
