package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "sub", "dir")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
output:
  format: ntriples
graph:
  profile: bfo
`)
	writeConfig(t, filepath.Join(project, ProjectConfigFile), `
graph:
  profile: cco
`)
	explicit := filepath.Join(t.TempDir(), "run.yaml")
	writeConfig(t, explicit, `
annotation:
  assessment: phenotype
`)
	t.Setenv(EnvNATSURL, "nats://env:4222")

	l := &Loader{logger: NewLoader(nil).logger, homeDir: home, workDir: work}
	cfg, err := l.Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Format != "ntriples" {
		t.Errorf("expected user format ntriples, got %s", cfg.Output.Format)
	}
	if cfg.Graph.Profile != "cco" {
		t.Errorf("expected project profile cco to win, got %s", cfg.Graph.Profile)
	}
	if cfg.Annotation.Assessment != "phenotype" {
		t.Errorf("expected explicit assessment phenotype, got %s", cfg.Annotation.Assessment)
	}
	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("expected NATS URL from environment, got %s", cfg.NATS.URL)
	}
}

func TestLoaderLayers_LaterFilesOnlyOverrideWhatTheySet(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()

	writeConfig(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
output:
  format: ntriples
  directory: /data/out
nats:
  publish: false
watch:
  debounce: 2s
`)
	writeConfig(t, filepath.Join(work, ProjectConfigFile), `
graph:
  profile: cco
nats:
  url: nats://project:4222
`)
	t.Setenv(EnvNATSURL, "")

	l := &Loader{logger: NewLoader(nil).logger, homeDir: home, workDir: work}
	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output.Format != "ntriples" {
		t.Errorf("expected user format ntriples, got %s", cfg.Output.Format)
	}
	if cfg.Output.Directory != "/data/out" {
		t.Errorf("expected user directory /data/out, got %s", cfg.Output.Directory)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected user debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Graph.Profile != "cco" {
		t.Errorf("expected project profile cco, got %s", cfg.Graph.Profile)
	}
	if cfg.NATS.URL != "nats://project:4222" {
		t.Errorf("expected project NATS URL, got %s", cfg.NATS.URL)
	}
	if cfg.NATS.PublishEnabled() {
		t.Error("expected user publish=false to survive the project layer")
	}
	if !cfg.NATS.PersistEnabled() {
		t.Error("expected persist to keep its default")
	}
	if cfg.Annotation.IDColumn != "participant_id" {
		t.Errorf("expected default id column, got %s", cfg.Annotation.IDColumn)
	}
}

func TestLoaderInvalidConfig(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "run.yaml")
	writeConfig(t, explicit, "output:\n  format: rdfxml\n")
	t.Setenv(EnvNATSURL, "")

	l := &Loader{logger: NewLoader(nil).logger, homeDir: t.TempDir(), workDir: t.TempDir()}
	if _, err := l.Load(explicit); err == nil {
		t.Error("expected validation error")
	}
	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := &Loader{logger: NewLoader(nil).logger, homeDir: home}

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("user config not created: %v", err)
	}
	if err := l.EnsureUserConfig(); err != nil {
		t.Errorf("second EnsureUserConfig() error = %v", err)
	}
}
