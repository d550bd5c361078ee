package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name" json:"name"`
	Port int    `yaml:"port" json:"port"`
}

var errNoName = errors.New("name required")

func (s *sample) Validate() error {
	if s.Name == "" {
		return errNoName
	}
	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "gazette")
	p := writeFile(t, "c.yaml", "name: ${SAMPLE_NAME}\nport: 8080\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "gazette" || s.Port != 8080 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "c.yaml", "port: 1\n")
	var s sample
	if err := Load(p, &s); !errors.Is(err, errNoName) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Setenv("SAMPLE_PORT", "9000")
	p := writeFile(t, "c.json", `{"name": "site", "port": ${SAMPLE_PORT}}`)

	var s sample
	if err := LoadJSON(p, &s); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if s.Name != "site" || s.Port != 9000 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoadJSON_Malformed(t *testing.T) {
	p := writeFile(t, "c.json", `{"name": `)
	var s sample
	if err := LoadJSON(p, &s); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeFile(t, "default.yaml", "name: fallback\n")
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &s); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if s.Name != "fallback" {
		t.Errorf("name = %q, want fallback", s.Name)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &s); err == nil {
		t.Error("expected error without default file")
	}
}
