package bilibili

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCookie(t *testing.T) {
	cookie := "buvid3=x; SESSDATA=sess%2Cvalue; bili_jct=csrf123; DedeUserID=4567; sid=abc"
	cred, err := ParseCookie(cookie)
	if err != nil {
		t.Fatalf("parse cookie: %v", err)
	}
	if cred.SessData != "sess%2Cvalue" || cred.CSRF != "csrf123" || cred.UserID != "4567" {
		t.Fatalf("unexpected credential %+v", cred)
	}
}

func TestParseCookieMissingFields(t *testing.T) {
	_, err := ParseCookie("SESSDATA=only")
	if err == nil {
		t.Fatal("expected error for incomplete cookie")
	}
	msg := err.Error()
	if !strings.Contains(msg, "bili_jct") || !strings.Contains(msg, "DedeUserID") {
		t.Fatalf("error should name missing fields, got %q", msg)
	}
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "credential.json")
	store := NewCredentialStore(path)

	if cookie, err := store.Load(); err != nil || cookie != "" {
		t.Fatalf("fresh store load = (%q, %v), want empty", cookie, err)
	}

	want := "SESSDATA=a; bili_jct=b; DedeUserID=1"
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("load = %q, want %q", got, want)
	}
}

func TestCredentialStoreRejectsEmptyCookie(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "credential.json"))
	if err := store.Save("   "); err == nil {
		t.Fatal("expected save of empty cookie to fail")
	}
}
