package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init to refuse overwriting")
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	path := writeTestConfig(t, "https://api.example.test")
	t.Setenv("FAVSORT_LLM_API_KEY", "sk-superdupersecretvalue")

	out, err := runCLI(t, []string{"config", "show", "--config", path}, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "llm.api_key")
	requireContains(t, out, "sk-s...alue")
	if strings.Contains(out, "sk-superdupersecretvalue") {
		t.Fatal("expected API key masked, found it verbatim in output")
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "(unset)" {
		t.Fatalf("empty secret: got %q", got)
	}
	if got := maskSecret("short"); got != "****" {
		t.Fatalf("short secret: got %q", got)
	}
	if got := maskSecret("sk-abcdefghijklmnop"); got != "sk-a...mnop" {
		t.Fatalf("long secret: got %q", got)
	}
}
