package bilibili

import (
	"fmt"
	"strings"
)

// AuthError describes a QR-login failure: generation failure, malformed
// payload, or a passport-side rejection.
type AuthError struct {
	Op     string
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError describes a non-success transport or application response from
// the catalog service. StatusCode is set for HTTP-level failures, Code for
// application envelope errors.
type RemoteError struct {
	Op         string
	StatusCode int
	Code       int
	Message    string
}

func (e *RemoteError) Error() string {
	parts := []string{e.Op}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("http %d", e.StatusCode))
	}
	if e.Code != 0 {
		parts = append(parts, fmt.Sprintf("code %d", e.Code))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, ": ")
}
