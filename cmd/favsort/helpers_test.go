package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string, stdin string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, apiBaseURL string) string {
	t.Helper()

	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[bilibili]
cookie = "SESSDATA=sess; bili_jct=csrf; DedeUserID=4242"
api_base_url = %q
request_delay_ms = 0

[paths]
state_dir = %q
`, apiBaseURL, filepath.Join(base, "state"))
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
