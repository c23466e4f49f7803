package bilibili

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Credential is the token triple extracted from one coherent login event.
// All three fields are required for authenticated catalog calls.
type Credential struct {
	SessData string
	CSRF     string
	UserID   string
}

// ParseCookie extracts a Credential from a raw browser cookie string.
func ParseCookie(cookie string) (Credential, error) {
	fields := map[string]string{}
	for _, part := range strings.Split(cookie, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || key == "" {
			continue
		}
		if _, seen := fields[key]; !seen {
			fields[key] = value
		}
	}

	cred := Credential{
		SessData: fields["SESSDATA"],
		CSRF:     fields["bili_jct"],
		UserID:   fields["DedeUserID"],
	}

	var missing []string
	if cred.SessData == "" {
		missing = append(missing, "SESSDATA")
	}
	if cred.CSRF == "" {
		missing = append(missing, "bili_jct")
	}
	if cred.UserID == "" {
		missing = append(missing, "DedeUserID")
	}
	if len(missing) > 0 {
		return Credential{}, fmt.Errorf("cookie is missing required fields: %s", strings.Join(missing, ", "))
	}
	return cred, nil
}

// cookieHeader renders the credential as a Cookie header value.
func (c Credential) cookieHeader() string {
	return fmt.Sprintf("SESSDATA=%s; bili_jct=%s; DedeUserID=%s", c.SessData, c.CSRF, c.UserID)
}

type credentialState struct {
	Cookie  string    `json:"cookie"`
	SavedAt time.Time `json:"saved_at"`
}

// CredentialStore persists the harvested login cookie as a JSON file. Writes
// are serialized with a sibling flock so concurrent invocations do not
// interleave.
type CredentialStore struct {
	path string
}

// NewCredentialStore builds a CredentialStore rooted at the provided path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Load reads the stored cookie. A missing file resolves to an empty string.
func (s *CredentialStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read credential state: %w", err)
	}

	var state credentialState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("decode credential state: %w", err)
	}
	return state.Cookie, nil
}

// Save persists the cookie to disk with restricted permissions.
func (s *CredentialStore) Save(cookie string) error {
	trimmed := strings.TrimSpace(cookie)
	if trimmed == "" {
		return errors.New("credential cookie is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure state directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credential state: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(credentialState{Cookie: trimmed, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential state: %w", err)
	}
	return nil
}
