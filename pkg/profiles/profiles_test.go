package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfiles(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write profiles file: %v", err)
	}
	return path
}

func TestLoadProfilesYAML(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - id: local
    host: http://127.0.0.1:11434
    default_model: tinyllama
  - id: lab
    host: https://llm.lab.internal
    username: samvad
    password: secret
    timeout_seconds: 30
    default: true
`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("loaded %d profiles, want 2", len(reg.All()))
	}

	local, ok := reg.Get("local")
	if !ok || local.DefaultModel != "tinyllama" {
		t.Fatalf("unexpected local profile %+v ok=%v", local, ok)
	}

	def, ok := reg.Default()
	if !ok || def.ID != "lab" {
		t.Fatalf("expected lab as default, got %+v", def)
	}
	if def.TimeoutSeconds != 30 || def.Username != "samvad" {
		t.Fatalf("unexpected default profile %+v", def)
	}
}

func TestLoadDefaultsToFirstProfile(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - id: only
    host: http://127.0.0.1:11434
`)

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def, ok := reg.Default()
	if !ok || def.ID != "only" {
		t.Fatalf("expected first profile as fallback default, got %+v", def)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - id: twin
    host: http://a
  - id: twin
    host: http://b
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadRejectsMissingHost(t *testing.T) {
	path := writeProfiles(t, `
profiles:
  - id: broken
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing host error")
	}
}
