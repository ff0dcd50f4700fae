package nidm_test

import (
	"testing"

	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"github.com/c360studio/semstreams/vocabulary"
	"github.com/c360studio/semstreams/vocabulary/bfo"
	"github.com/c360studio/semstreams/vocabulary/cco"
)

func TestGetTypesForDataElement(t *testing.T) {
	tests := []struct {
		profile nidm.Profile
		want    []string
	}{
		{nidm.ProfileMinimal, []string{nidm.ClassPersonalDataElement, vocabulary.ProvEntity}},
		{nidm.ProfileBFO, []string{nidm.ClassPersonalDataElement, vocabulary.ProvEntity, bfo.GenericallyDependentContinuant}},
		{nidm.ProfileCCO, []string{nidm.ClassPersonalDataElement, vocabulary.ProvEntity, bfo.GenericallyDependentContinuant, cco.InformationContentEntity}},
	}

	for _, tc := range tests {
		t.Run(string(tc.profile), func(t *testing.T) {
			got := nidm.GetTypesForDataElement(tc.profile)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d types, want %d: %v", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("type[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		in     string
		want   nidm.Profile
		wantOK bool
	}{
		{"", nidm.ProfileMinimal, true},
		{"minimal", nidm.ProfileMinimal, true},
		{"bfo", nidm.ProfileBFO, true},
		{"cco", nidm.ProfileCCO, true},
		{"owl", nidm.ProfileMinimal, false},
	}

	for _, tc := range tests {
		got, ok := nidm.ParseProfile(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseProfile(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestClassHierarchyReachesDataElement(t *testing.T) {
	supers := nidm.ClassHierarchy[nidm.ClassPersonalDataElement]
	if len(supers) != 1 || supers[0] != nidm.ClassDataElement {
		t.Errorf("PersonalDataElement superclasses = %v, want [%s]", supers, nidm.ClassDataElement)
	}
}

func TestGetPredicateIRI(t *testing.T) {
	if got := nidm.GetPredicateIRI(nidm.ResponseUnitCode); got != "http://schema.org/unitCode" {
		t.Errorf("GetPredicateIRI(unit_code) = %q", got)
	}
	if got := nidm.GetPredicateIRI("custom.thing.prop"); got != nidm.Namespace+"custom.thing.prop" {
		t.Errorf("unmapped predicate fallback = %q", got)
	}
}
