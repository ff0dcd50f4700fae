package nidm

import (
	"github.com/c360studio/semstreams/vocabulary"
	"github.com/c360studio/semstreams/vocabulary/bfo"
	"github.com/c360studio/semstreams/vocabulary/cco"
)

// Profile determines which ontology type assertions accompany a data element.
type Profile string

const (
	// ProfileMinimal asserts the NIDM class and prov:Entity only.
	ProfileMinimal Profile = "minimal"

	// ProfileBFO adds the BFO class to the minimal profile.
	ProfileBFO Profile = "bfo"

	// ProfileCCO adds the CCO class to the BFO profile.
	ProfileCCO Profile = "cco"
)

// ParseProfile returns the profile named by s and whether it is known.
func ParseProfile(s string) (Profile, bool) {
	switch p := Profile(s); p {
	case ProfileMinimal, ProfileBFO, ProfileCCO:
		return p, true
	case "":
		return ProfileMinimal, true
	default:
		return ProfileMinimal, false
	}
}

// ClassHierarchy maps each NIDM class to its direct superclasses.
// It is emitted as subclass statements so that "is-a DataElement" queries
// can follow rdfs:subClassOf.
var ClassHierarchy = map[string][]string{
	ClassPersonalDataElement: {ClassDataElement},
	ClassDataElement:         {vocabulary.ProvEntity},
}

// PredicateIRIMap maps dotted predicates to standard IRIs.
var PredicateIRIMap = map[string]string{
	Type:            IRIType,
	ClassSubClassOf: IRISubClassOf,

	ElementLabel:           IRILabel,
	ElementDescription:     IRIDescription,
	ElementSourceVariable:  IRISourceVariable,
	ElementAssociatedWith:  IRIAssociatedWith,
	ElementIsAbout:         IRIIsAbout,
	ElementResponseOptions: IRIResponseOptions,
	ElementSource:          vocabulary.DcSource,
	ElementIdentifier:      vocabulary.DcIdentifier,

	TermLabel: IRILabel,

	ResponseValueType: IRIValueType,
	ResponseUnitCode:  IRIUnitCode,
	ResponseMinValue:  IRIMinValue,
	ResponseMaxValue:  IRIMaxValue,
	ResponseChoice:    IRIChoices,

	ChoiceName:  IRIName,
	ChoiceValue: IRIValue,
}

// GetTypesForDataElement returns the rdf:type IRIs asserted on a data element.
//   - "minimal": nidm:PersonalDataElement + prov:Entity
//   - "bfo": adds bfo:GenericallyDependentContinuant
//   - "cco": adds cco:InformationContentEntity
func GetTypesForDataElement(profile Profile) []string {
	types := []string{ClassPersonalDataElement, vocabulary.ProvEntity}

	if profile == ProfileBFO || profile == ProfileCCO {
		types = append(types, bfo.GenericallyDependentContinuant)
	}
	if profile == ProfileCCO {
		types = append(types, cco.InformationContentEntity)
	}

	return types
}

// GetPredicateIRI returns the standard IRI for a predicate.
// Unmapped predicates fall back to the NIDM namespace.
func GetPredicateIRI(predicate string) string {
	if iri, ok := PredicateIRIMap[predicate]; ok {
		return iri
	}
	return Namespace + predicate
}
