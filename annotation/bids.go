package annotation

import (
	"fmt"
	"sort"
)

// bidsParser reads sidecars keyed by bare column name. Response option
// fields live at the top level of each record and choices are named "levels".
type bidsParser struct{}

func (bidsParser) dialect() Dialect { return DialectBIDS }

func (bidsParser) parse(doc map[string]any) ([]entry, error) {
	columns := make([]string, 0, len(doc))
	for column := range doc {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	entries := make([]entry, 0, len(columns))
	for _, column := range columns {
		raw, err := recordObject(column, doc[column])
		if err != nil {
			return nil, err
		}
		rec, err := parseBIDSRecord(column, raw)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", column, err)
		}
		entries = append(entries, entry{key: column, variable: column, record: rec})
	}
	return entries, nil
}

// parseBIDSRecord translates one sidecar record. The lower-case keys written
// by annotation tools win over the BIDS-standard capitalised keys.
func parseBIDSRecord(column string, raw map[string]any) (Record, error) {
	var rec Record
	var err error

	if rec.Label, err = firstScalar(raw, "label", "LongName"); err != nil {
		return Record{}, err
	}
	if rec.Description, err = firstScalar(raw, "description", "Description"); err != nil {
		return Record{}, err
	}
	if rec.SourceVariable, err = firstScalar(raw, "source_variable"); err != nil {
		return Record{}, err
	}
	if rec.SourceVariable == "" {
		rec.SourceVariable = column
	}
	if rec.AssociatedWith, err = firstScalar(raw, "associatedWith"); err != nil {
		return Record{}, err
	}

	if rec.IsAbout, err = parseTermRefs(raw["isAbout"]); err != nil {
		return Record{}, err
	}
	termURL, err := firstScalar(raw, "TermURL")
	if err != nil {
		return Record{}, err
	}
	if termURL != "" && !hasTerm(rec.IsAbout, termURL) {
		rec.IsAbout = append(rec.IsAbout, TermRef{ID: termURL, Label: column})
	}

	ro, err := parseBIDSResponseOptions(raw)
	if err != nil {
		return Record{}, err
	}
	if !ro.IsZero() {
		rec.ResponseOptions = ro
	}
	return rec, nil
}

// parseBIDSResponseOptions folds the top-level fields into response options.
// A nested responseOptions object is merged underneath them.
func parseBIDSResponseOptions(raw map[string]any) (*ResponseOptions, error) {
	ro, err := parseResponseOptions(raw["responseOptions"])
	if err != nil {
		return nil, err
	}

	fields := []struct {
		dst  *string
		keys []string
	}{
		{&ro.ValueType, []string{"valueType"}},
		{&ro.UnitCode, []string{"unitCode", "Units"}},
		{&ro.MinValue, []string{"minValue"}},
		{&ro.MaxValue, []string{"maxValue"}},
	}
	for _, f := range fields {
		v, err := firstScalar(raw, f.keys...)
		if err != nil {
			return nil, err
		}
		if v != "" {
			*f.dst = v
		}
	}

	if levels, present := raw["levels"]; present {
		choices, err := parseChoices(levels)
		if err != nil {
			return nil, fmt.Errorf("levels: %w", err)
		}
		ro.Choices = mergeChoices(ro.Choices, choices)
	} else if levels, present := raw["Levels"]; present {
		// BIDS-standard Levels map the stored code to its description.
		byCode, err := parseChoices(levels)
		if err != nil {
			return nil, fmt.Errorf("standard levels: %w", err)
		}
		choices, err := invertChoices(byCode)
		if err != nil {
			return nil, fmt.Errorf("standard levels: %w", err)
		}
		ro.Choices = mergeChoices(ro.Choices, choices)
	}
	return ro, nil
}

func mergeChoices(base, over map[string]string) map[string]string {
	if len(base) == 0 {
		return over
	}
	for label, value := range over {
		base[label] = value
	}
	return base
}

// invertChoices turns code->description into description->code. Two codes
// sharing a description cannot both survive the inversion.
func invertChoices(byCode map[string]string) (map[string]string, error) {
	if byCode == nil {
		return nil, nil
	}
	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make(map[string]string, len(byCode))
	for _, code := range codes {
		label := byCode[code]
		if prev, dup := out[label]; dup {
			return nil, fmt.Errorf("%w: codes %q and %q share the description %q", ErrValidation, prev, code, label)
		}
		out[label] = code
	}
	return out, nil
}

func hasTerm(terms []TermRef, id string) bool {
	for _, t := range terms {
		if t.ID == id {
			return true
		}
	}
	return false
}
