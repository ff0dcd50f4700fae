package annotation

import (
	"fmt"
	"sort"
)

// reproSchemaParser reads mappings keyed by descriptor strings that name the
// source the annotation was originally authored against.
type reproSchemaParser struct{}

func (reproSchemaParser) dialect() Dialect { return DialectReproSchema }

func (reproSchemaParser) parse(doc map[string]any) ([]entry, error) {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		origin, err := ParseDescriptor(key)
		if err != nil {
			return nil, err
		}
		raw, err := recordObject(key, doc[key])
		if err != nil {
			return nil, err
		}
		rec, err := parseReproSchemaRecord(origin, raw)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", origin, err)
		}
		entries = append(entries, entry{key: key, variable: rec.SourceVariable, record: rec})
	}
	return entries, nil
}

// parseReproSchemaRecord reads one record. source_variable is authoritative
// for matching; a value that disagrees with the descriptor's variable is
// rejected rather than guessed at.
func parseReproSchemaRecord(origin Descriptor, raw map[string]any) (Record, error) {
	var rec Record
	var err error

	if rec.Label, err = firstScalar(raw, "label"); err != nil {
		return Record{}, err
	}
	if rec.Description, err = firstScalar(raw, "description"); err != nil {
		return Record{}, err
	}
	if rec.SourceVariable, err = firstScalar(raw, "source_variable"); err != nil {
		return Record{}, err
	}
	switch {
	case rec.SourceVariable == "":
		rec.SourceVariable = origin.Variable
	case rec.SourceVariable != origin.Variable:
		return Record{}, fmt.Errorf("%w: source_variable %q does not match descriptor variable %q",
			ErrValidation, rec.SourceVariable, origin.Variable)
	}
	if rec.AssociatedWith, err = firstScalar(raw, "associatedWith"); err != nil {
		return Record{}, err
	}
	if rec.IsAbout, err = parseTermRefs(raw["isAbout"]); err != nil {
		return Record{}, err
	}

	ro, err := parseResponseOptions(raw["responseOptions"])
	if err != nil {
		return Record{}, err
	}
	if !ro.IsZero() {
		rec.ResponseOptions = ro
	}
	return rec, nil
}
