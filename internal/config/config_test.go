package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate_WritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	if cfg.Model != "qwen/qwen3-coder:free" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.MaxContextLength != 8000 {
		t.Errorf("MaxContextLength: got %d, want 8000", cfg.MaxContextLength)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature: got %v, want 0.7", cfg.Temperature)
	}
}

func TestLoadOrCreate_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
endpoint = "http://localhost:8080"
model = "local-model"
max_context_length = 2048
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}

	if cfg.Endpoint != "http://localhost:8080" {
		t.Errorf("Endpoint: got %q", cfg.Endpoint)
	}
	if cfg.Model != "local-model" {
		t.Errorf("Model: got %q", cfg.Model)
	}
	if cfg.MaxContextLength != 2048 {
		t.Errorf("MaxContextLength: got %d, want 2048", cfg.MaxContextLength)
	}
}

func TestLoadOrCreate_RequiresEndpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`endpoint = ""`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected an error for empty endpoint")
	}
}

func TestLoadOrCreate_APIKeyFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`endpoint = "http://localhost:8080"`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	t.Setenv("QCODER_API_KEY", "sk-from-env")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.APIKey != "sk-from-env" {
		t.Errorf("APIKey: got %q, want sk-from-env", cfg.APIKey)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got := expandPath("~/data")
	want := filepath.Join(home, "data")
	if got != want {
		t.Errorf("expandPath: got %q, want %q", got, want)
	}

	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\"): got %q, want empty", got)
	}
}
