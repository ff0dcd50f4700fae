// Package annotation normalizes variable annotations from BIDS sidecars and
// ReproSchema mappings into one canonical, descriptor-keyed structure.
package annotation

import (
	"fmt"
	"sort"
)

// NotApplicable is the sentinel for response option fields that do not apply.
const NotApplicable = "NA"

// TermRef references an external ontology term.
type TermRef struct {
	ID    string `json:"@id"`
	Label string `json:"label,omitempty"`
}

// ResponseOptions describes the admissible values of a variable.
type ResponseOptions struct {
	ValueType string `json:"valueType,omitempty"`
	UnitCode  string `json:"unitCode,omitempty"`
	MinValue  string `json:"minValue,omitempty"`
	MaxValue  string `json:"maxValue,omitempty"`

	// Choices maps a human-readable label to the raw code stored in the
	// table, e.g. "Male" -> "m".
	Choices map[string]string `json:"choices,omitempty"`
}

// IsZero reports whether no field is set.
func (r *ResponseOptions) IsZero() bool {
	return r == nil || (r.ValueType == "" && r.UnitCode == "" &&
		r.MinValue == "" && r.MaxValue == "" && len(r.Choices) == 0)
}

// ChoiceLabels returns the choice labels in sorted order.
func (r *ResponseOptions) ChoiceLabels() []string {
	if r == nil {
		return nil
	}
	labels := make([]string, 0, len(r.Choices))
	for label := range r.Choices {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Record is the canonical annotation of one variable, independent of the
// dialect it was read from.
type Record struct {
	Label           string           `json:"label"`
	Description     string           `json:"description"`
	SourceVariable  string           `json:"source_variable"`
	AssociatedWith  string           `json:"associatedWith,omitempty"`
	IsAbout         []TermRef        `json:"isAbout"`
	ResponseOptions *ResponseOptions `json:"responseOptions,omitempty"`
}

// Mapping is the canonical annotation mapping of one normalization run.
type Mapping map[Descriptor]Record

// Lookup returns the record annotated for d.
func (m Mapping) Lookup(d Descriptor) (Record, error) {
	rec, ok := m[d]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s was not annotated", ErrLookup, d)
	}
	return rec, nil
}

// Descriptors returns the keys ordered by source, then variable.
func (m Mapping) Descriptors() []Descriptor {
	keys := make([]Descriptor, 0, len(m))
	for d := range m {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Variable < keys[j].Variable
	})
	return keys
}

// Columns returns the annotated variable names in descriptor order.
func (m Mapping) Columns() []string {
	keys := m.Descriptors()
	cols := make([]string, len(keys))
	for i, d := range keys {
		cols[i] = d.Variable
	}
	return cols
}
