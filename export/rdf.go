package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/nidm-annotate/graph"
	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	ssexport "github.com/c360studio/semstreams/vocabulary/export"
)

// Serialize renders every triple of g in format. Relative identifiers are
// resolved against baseIRI, which defaults to the NIDM instance namespace.
func Serialize(g *graph.Graph, format Format, baseIRI string) (string, error) {
	info, ok := GetFormatInfo(format)
	if !ok {
		return "", fmt.Errorf("unsupported format: %s", format)
	}
	if g == nil {
		g = graph.New()
	}
	if baseIRI == "" {
		baseIRI = nidm.InstanceNamespace
	}

	output, err := ssexport.SerializeToString(g.Triples(), info.serializer,
		ssexport.WithBaseIRI(baseIRI))
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", format, err)
	}
	return output, nil
}

// WriteFile serializes g to path, replacing any existing file.
func WriteFile(path string, g *graph.Graph, format Format, baseIRI string) error {
	output, err := Serialize(g, format, baseIRI)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".nidm_cde-*")
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(output); err != nil {
		tmp.Close()
		return fmt.Errorf("write graph file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close graph file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod graph file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace graph file: %w", err)
	}
	return nil
}
