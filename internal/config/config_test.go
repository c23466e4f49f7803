package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadParsesFileAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[bilibili]
cookie = "SESSDATA=abc; bili_jct=def; DedeUserID=42"
page_size = 30

[llm]
api_key = "sk-test"
model = "demo-model"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config file to be found, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Bilibili.PageSize != 30 {
		t.Fatalf("page_size = %d, want 30", cfg.Bilibili.PageSize)
	}
	if cfg.Bilibili.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("api_base_url = %q, want default", cfg.Bilibili.APIBaseURL)
	}
	if cfg.LLM.BatchSize != defaultBatchSize {
		t.Fatalf("batch_size = %d, want default %d", cfg.LLM.BatchSize, defaultBatchSize)
	}
}

func TestLoadRejectsPageSizeOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[bilibili]\npage_size = 500\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "page_size") {
		t.Fatalf("expected page_size validation error, got %v", err)
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("BILIBILI_COOKIE", "SESSDATA=env; bili_jct=env; DedeUserID=7")
	t.Setenv("FAVSORT_LLM_API_KEY", "sk-env")

	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.Contains(cfg.Bilibili.Cookie, "SESSDATA=env") {
		t.Fatalf("cookie env fallback not applied: %q", cfg.Bilibili.Cookie)
	}
	if cfg.LLM.APIKey != "sk-env" {
		t.Fatalf("llm key env fallback not applied: %q", cfg.LLM.APIKey)
	}
}

func TestRequireLLM(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireLLM(); err == nil {
		t.Fatal("expected RequireLLM to fail without api key")
	}
	cfg.LLM.APIKey = "sk-test"
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM with key: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected second WriteSample to refuse overwrite")
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
