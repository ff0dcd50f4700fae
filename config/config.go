// Package config provides configuration loading and management for nidm-annotate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/nidm-annotate/annotation"
	"github.com/c360studio/nidm-annotate/export"
	"github.com/c360studio/nidm-annotate/vocabulary/nidm"
	"gopkg.in/yaml.v3"
)

// NoIDColumn disables the identifier column exclusion.
const NoIDColumn = "-"

// Config represents the complete nidm-annotate configuration
type Config struct {
	Annotation AnnotationConfig `yaml:"annotation"`
	Output     OutputConfig     `yaml:"output"`
	Graph      GraphConfig      `yaml:"graph"`
	NATS       NATSConfig       `yaml:"nats"`
	Watch      WatchConfig      `yaml:"watch"`
}

// AnnotationConfig configures normalization
type AnnotationConfig struct {
	// Dialect of the JSON source: auto, bids or reproschema
	Dialect string `yaml:"dialect"`
	// Assessment overrides the assessment name derived from the table file
	Assessment string `yaml:"assessment"`
	// IDColumn is the subject identifier column ("-" disables the exclusion)
	IDColumn string `yaml:"id_column"`
}

// OutputConfig configures where results are written
type OutputConfig struct {
	// Directory receives nidm_annotations.json and the graph file
	Directory string `yaml:"directory"`
	// Format of the graph file: turtle, ntriples or jsonld
	Format string `yaml:"format"`
}

// GraphConfig configures data element emission
type GraphConfig struct {
	// Namespace is the IRI prefix of data element entities
	Namespace string `yaml:"namespace"`
	// Profile selects ontology type assertions: minimal, bfo or cco
	Profile string `yaml:"profile"`
}

// NATSConfig configures the optional NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = no NATS)
	URL string `yaml:"url"`
	// Publish sends data element entities to the graph ingestion stream (nil = true)
	Publish *bool `yaml:"publish,omitempty"`
	// Persist stores canonical records in the annotations KV bucket (nil = true)
	Persist *bool `yaml:"persist,omitempty"`
}

// PublishEnabled reports whether data elements are published.
func (n NATSConfig) PublishEnabled() bool {
	return n.Publish == nil || *n.Publish
}

// PersistEnabled reports whether canonical records are stored in KV.
func (n NATSConfig) PersistEnabled() bool {
	return n.Persist == nil || *n.Persist
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is the quiet period before re-annotating after a change
	Debounce time.Duration `yaml:"debounce"`
	// MetricsAddr is the listen address of the /metrics endpoint (empty = off)
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Annotation: AnnotationConfig{
			Dialect:  "auto",
			IDColumn: annotation.DefaultIDColumn,
		},
		Output: OutputConfig{
			Directory: ".",
			Format:    string(export.FormatTurtle),
		},
		Graph: GraphConfig{
			Namespace: nidm.InstanceNamespace,
			Profile:   string(nidm.ProfileMinimal),
		},
		NATS: NATSConfig{
			Publish: boolPtr(true),
			Persist: boolPtr(true),
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			MetricsAddr: ":9464",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := annotation.ParseDialect(c.Annotation.Dialect); err != nil {
		return fmt.Errorf("annotation.dialect: %w", err)
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", annotation.ErrConfiguration, err)
	}
	if _, ok := nidm.ParseProfile(c.Graph.Profile); !ok {
		return fmt.Errorf("%w: graph.profile %q is not one of minimal, bfo, cco", annotation.ErrConfiguration, c.Graph.Profile)
	}
	if c.Graph.Namespace == "" {
		return fmt.Errorf("%w: graph.namespace is required", annotation.ErrConfiguration)
	}
	if !strings.HasSuffix(c.Graph.Namespace, "/") && !strings.HasSuffix(c.Graph.Namespace, "#") {
		return fmt.Errorf("%w: graph.namespace must end in / or #", annotation.ErrConfiguration)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", annotation.ErrConfiguration)
	}
	return nil
}

// IdentifierColumn returns the identifier column to exclude, or "" for none.
func (a AnnotationConfig) IdentifierColumn() string {
	if a.IDColumn == NoIDColumn {
		return ""
	}
	return a.IDColumn
}

func boolPtr(b bool) *bool { return &b }

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := loadLayer(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// loadLayer decodes a YAML file into a zero Config, so only the fields the
// file sets are non-zero and Merge leaves everything else alone.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	layer := &Config{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Annotation
	if other.Annotation.Dialect != "" {
		c.Annotation.Dialect = other.Annotation.Dialect
	}
	if other.Annotation.Assessment != "" {
		c.Annotation.Assessment = other.Annotation.Assessment
	}
	if other.Annotation.IDColumn != "" {
		c.Annotation.IDColumn = other.Annotation.IDColumn
	}

	// Output
	if other.Output.Directory != "" {
		c.Output.Directory = other.Output.Directory
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}

	// Graph
	if other.Graph.Namespace != "" {
		c.Graph.Namespace = other.Graph.Namespace
	}
	if other.Graph.Profile != "" {
		c.Graph.Profile = other.Graph.Profile
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Publish != nil {
		c.NATS.Publish = boolPtr(*other.NATS.Publish)
	}
	if other.NATS.Persist != nil {
		c.NATS.Persist = boolPtr(*other.NATS.Persist)
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.MetricsAddr != "" {
		c.Watch.MetricsAddr = other.Watch.MetricsAddr
	}
}
