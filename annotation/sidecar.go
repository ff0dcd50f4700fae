package annotation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SidecarFileName is the file WriteSidecar produces in the output directory.
const SidecarFileName = "nidm_annotations.json"

// sidecarRecord is the BIDS shape of a record: response option fields at
// the top level and choices named levels.
type sidecarRecord struct {
	Label          string            `json:"label,omitempty"`
	Description    string            `json:"description,omitempty"`
	SourceVariable string            `json:"source_variable,omitempty"`
	AssociatedWith string            `json:"associatedWith,omitempty"`
	IsAbout        []TermRef         `json:"isAbout,omitempty"`
	ValueType      string            `json:"valueType,omitempty"`
	UnitCode       string            `json:"unitCode,omitempty"`
	MinValue       string            `json:"minValue,omitempty"`
	MaxValue       string            `json:"maxValue,omitempty"`
	Levels         map[string]string `json:"levels,omitempty"`
}

func toSidecarRecord(rec Record) sidecarRecord {
	out := sidecarRecord{
		Label:          rec.Label,
		Description:    rec.Description,
		SourceVariable: rec.SourceVariable,
		AssociatedWith: rec.AssociatedWith,
		IsAbout:        rec.IsAbout,
	}
	if ro := rec.ResponseOptions; ro != nil {
		out.ValueType = ro.ValueType
		out.UnitCode = ro.UnitCode
		out.MinValue = ro.MinValue
		out.MaxValue = ro.MaxValue
		out.Levels = ro.Choices
	}
	return out
}

// MarshalSidecar renders the BIDS view of m keyed by bare column name.
// Keys are emitted sorted, so equal mappings give identical bytes.
func MarshalSidecar(m Mapping) ([]byte, error) {
	doc := make(map[string]sidecarRecord, len(m))
	for d, rec := range m {
		if _, dup := doc[d.Variable]; dup {
			return nil, fmt.Errorf("%w: column %q appears under more than one source", ErrValidation, d.Variable)
		}
		doc[d.Variable] = toSidecarRecord(rec)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sidecar: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteSidecar writes the BIDS view of m to dir/nidm_annotations.json and
// returns its path. The file is replaced atomically; concurrent writers to
// the same directory must be serialized by the caller.
func WriteSidecar(dir string, m Mapping) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: output directory: %v", ErrConfiguration, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: output path %s is not a directory", ErrConfiguration, dir)
	}

	data, err := MarshalSidecar(m)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, SidecarFileName)
	tmp, err := os.CreateTemp(dir, ".nidm_annotations-*.json")
	if err != nil {
		return "", fmt.Errorf("%w: output directory not writable: %v", ErrConfiguration, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close sidecar: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return "", fmt.Errorf("chmod sidecar: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("replace sidecar: %w", err)
	}
	return path, nil
}

// ReadSidecar loads a sidecar written by WriteSidecar and normalizes every
// record in it under assessment. Every column in the file is kept, the ID
// column included; pass WithIDColumn to exclude one.
func ReadSidecar(path, assessment string, opts ...NormalizerOption) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(doc))
	for column := range doc {
		columns = append(columns, column)
	}
	opts = append([]NormalizerOption{WithIDColumn("")}, opts...)
	return NewNormalizer(nil, opts...).NormalizeDocument(columns, doc, assessment, DialectBIDS)
}
