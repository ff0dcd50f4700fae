package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the shape of a JSON annotation source.
type Dialect int

const (
	// DialectAuto picks ReproSchema when every key is a descriptor and BIDS otherwise.
	DialectAuto Dialect = iota
	// DialectBIDS is a sidecar keyed by bare column name.
	DialectBIDS
	// DialectReproSchema is a mapping keyed by descriptor strings.
	DialectReproSchema
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectBIDS:
		return "bids"
	case DialectReproSchema:
		return "reproschema"
	default:
		return "auto"
	}
}

// ParseDialect parses a dialect name as used in configuration and flags.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DialectAuto, nil
	case "bids":
		return DialectBIDS, nil
	case "reproschema":
		return DialectReproSchema, nil
	default:
		return DialectAuto, fmt.Errorf("%w: unknown dialect %q (valid: auto, bids, reproschema)", ErrConfiguration, s)
	}
}

// DetectDialect returns DialectReproSchema when every top-level key of doc
// is a descriptor, and DialectBIDS otherwise. An empty document is BIDS.
func DetectDialect(doc map[string]any) Dialect {
	if len(doc) == 0 {
		return DialectBIDS
	}
	for key := range doc {
		if !IsDescriptor(key) {
			return DialectBIDS
		}
	}
	return DialectReproSchema
}

// entry is one parsed record together with the table column it describes.
type entry struct {
	key      string
	variable string
	record   Record
}

// parser turns a decoded JSON document of one dialect into canonical entries.
type parser interface {
	dialect() Dialect
	parse(doc map[string]any) ([]entry, error)
}

func parserFor(d Dialect) parser {
	if d == DialectReproSchema {
		return reproSchemaParser{}
	}
	return bidsParser{}
}

// Decode decodes a JSON annotation source. The document must be an object;
// numbers are kept verbatim so they stringify exactly as authored.
func Decode(source []byte) (map[string]any, error) {
	return decodeDocument(source)
}

func decodeDocument(source []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(source))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: decode JSON source: %v", ErrValidation, err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: JSON source must be an object, got %s", ErrValidation, jsonKind(v))
	}
	return doc, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

// scalar stringifies a JSON scalar. Absent and null values report ok=false.
func scalar(raw map[string]any, key string) (string, bool, error) {
	v, present := raw[key]
	if !present || v == nil {
		return "", false, nil
	}
	switch t := v.(type) {
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		return "", false, fmt.Errorf("%w: field %q must be a scalar, got %s", ErrValidation, key, jsonKind(v))
	}
}

// firstScalar returns the first present scalar among keys.
func firstScalar(raw map[string]any, keys ...string) (string, error) {
	for _, key := range keys {
		s, ok, err := scalar(raw, key)
		if err != nil {
			return "", err
		}
		if ok {
			return s, nil
		}
	}
	return "", nil
}

// parseTermRefs accepts a single term object or an array of them.
func parseTermRefs(v any) ([]TermRef, error) {
	var items []any
	switch t := v.(type) {
	case nil:
		return []TermRef{}, nil
	case []any:
		items = t
	case map[string]any:
		items = []any{t}
	default:
		return nil, fmt.Errorf("%w: isAbout must be an object or array, got %s", ErrValidation, jsonKind(v))
	}

	terms := make([]TermRef, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: isAbout[%d] must be an object, got %s", ErrValidation, i, jsonKind(item))
		}
		id, _, err := scalar(obj, "@id")
		if err != nil {
			return nil, fmt.Errorf("isAbout[%d]: %w", i, err)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: isAbout[%d] has no @id", ErrValidation, i)
		}
		label, _, err := scalar(obj, "label")
		if err != nil {
			return nil, fmt.Errorf("isAbout[%d]: %w", i, err)
		}
		terms = append(terms, TermRef{ID: id, Label: label})
	}
	return terms, nil
}

// parseChoices accepts a label -> value object or a ReproSchema array of
// {"name": ..., "value": ...} objects.
func parseChoices(v any) (map[string]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		choices := make(map[string]string, len(t))
		for label := range t {
			value, _, err := scalar(t, label)
			if err != nil {
				return nil, fmt.Errorf("choice %q: %w", label, err)
			}
			choices[label] = value
		}
		return choices, nil
	case []any:
		choices := make(map[string]string, len(t))
		for i, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: choices[%d] must be an object", ErrValidation, i)
			}
			name, _, err := scalar(obj, "name")
			if err != nil {
				return nil, fmt.Errorf("choices[%d]: %w", i, err)
			}
			if name == "" {
				return nil, fmt.Errorf("%w: choices[%d] has no name", ErrValidation, i)
			}
			if _, dup := choices[name]; dup {
				return nil, fmt.Errorf("%w: duplicate choice label %q", ErrValidation, name)
			}
			value, _, err := scalar(obj, "value")
			if err != nil {
				return nil, fmt.Errorf("choices[%d]: %w", i, err)
			}
			choices[name] = value
		}
		return choices, nil
	default:
		return nil, fmt.Errorf("%w: choices must be an object or array, got %s", ErrValidation, jsonKind(v))
	}
}

// parseResponseOptions reads the canonical responseOptions object.
func parseResponseOptions(v any) (*ResponseOptions, error) {
	if v == nil {
		return &ResponseOptions{}, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: responseOptions must be an object, got %s", ErrValidation, jsonKind(v))
	}

	ro := &ResponseOptions{}
	var err error
	if ro.ValueType, err = firstScalar(raw, "valueType"); err != nil {
		return nil, err
	}
	if ro.UnitCode, err = firstScalar(raw, "unitCode"); err != nil {
		return nil, err
	}
	if ro.MinValue, err = firstScalar(raw, "minValue"); err != nil {
		return nil, err
	}
	if ro.MaxValue, err = firstScalar(raw, "maxValue"); err != nil {
		return nil, err
	}
	if ro.Choices, err = parseChoices(raw["choices"]); err != nil {
		return nil, err
	}
	return ro, nil
}

// recordObject asserts that a record value is a JSON object.
func recordObject(key string, v any) (map[string]any, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: record %q must be an object, got %s", ErrValidation, key, jsonKind(v))
	}
	return raw, nil
}
