package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name" env:"SAMPLE_NAME"`
	Port int    `yaml:"port" env:"SAMPLE_PORT"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsAndOverrides(t *testing.T) {
	t.Setenv("SAMPLE_HOST_NAME", "expanded")
	t.Setenv("SAMPLE_PORT", "9090")
	path := writeFile(t, "name: ${SAMPLE_HOST_NAME}\nport: 8080\n")

	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "expanded" {
		t.Errorf("name = %q, want expanded", cfg.Name)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want env override 9090", cfg.Port)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var cfg sample
	err := Load(path, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithDefaults_NoFileKeepsDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 1}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), "", &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadWithDefaults_FallsBack(t *testing.T) {
	def := writeFile(t, "name: fallback\nport: 2\n")
	var cfg sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), def, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("name = %q", cfg.Name)
	}
}
