package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"favsort/internal/logging"
)

const (
	qrGeneratePath = "/x/passport-login/web/qrcode/generate"
	qrPollPath     = "/x/passport-login/web/qrcode/poll"

	pollInterval = 2 * time.Second

	// Inner login-progress codes returned by the poll endpoint.
	loginCodeSuccess      = 0
	loginCodeExpired      = 86038
	loginCodeNotConfirmed = 86090
	loginCodeNotScanned   = 86101
)

// LoginStatus is the terminal outcome of one login attempt.
type LoginStatus int

const (
	LoginSucceeded LoginStatus = iota
	LoginExpired
	LoginTimedOut
)

// LoginResult carries the outcome of WaitForLogin. Cookie is only populated
// on LoginSucceeded and contains every base cookie plus every cookie the
// passport service set during the successful poll exchange.
type LoginResult struct {
	Status LoginStatus
	Cookie string
	Reason string
}

// QRCode identifies one freshly generated login QR code.
type QRCode struct {
	Key string
	URL string
}

// AuthOption customizes Auth construction.
type AuthOption func(*Auth)

// WithAuthHTTPClient overrides the HTTP client used for passport calls.
func WithAuthHTTPClient(client HTTPDoer) AuthOption {
	return func(a *Auth) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithAuthBaseURL overrides the passport base URL (used in tests).
func WithAuthBaseURL(baseURL string) AuthOption {
	return func(a *Auth) {
		a.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithPollSleeper overrides how the inter-poll wait is performed.
func WithPollSleeper(sleeper func(context.Context, time.Duration) error) AuthOption {
	return func(a *Auth) {
		if sleeper != nil {
			a.sleep = sleeper
		}
	}
}

// WithStatusNotifier registers a callback invoked whenever a poll reports a
// new login-progress code, for interactive status display.
func WithStatusNotifier(notify func(code int, message string)) AuthOption {
	return func(a *Auth) {
		a.notify = notify
	}
}

// Auth drives the QR-code login flow. It owns the transient polling state for
// the duration of one login attempt and is not safe for concurrent use.
type Auth struct {
	baseURL     string
	httpClient  HTTPDoer
	logger      *slog.Logger
	baseCookies []cookiePair
	sleep       func(context.Context, time.Duration) error
	notify      func(code int, message string)
	lastCode    int
}

// NewAuth constructs an Auth with a fresh device identity.
func NewAuth(logger *slog.Logger, opts ...AuthOption) *Auth {
	auth := &Auth{
		baseURL:     "https://passport.bilibili.com",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logging.NewComponentLogger(logger, "auth"),
		baseCookies: newDeviceCookies(time.Now()),
		sleep:       sleepContext,
		lastCode:    -1,
	}
	for _, opt := range opts {
		opt(auth)
	}
	return auth
}

type qrEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GenerateQRCode requests a fresh QR identifier and login URL.
func (a *Auth) GenerateQRCode(ctx context.Context) (*QRCode, error) {
	envelope, _, err := a.doPassportGet(ctx, qrGeneratePath, nil)
	if err != nil {
		return nil, &AuthError{Op: "generate qrcode", Reason: "request failed", Err: err}
	}
	if envelope.Code != 0 {
		return nil, &AuthError{Op: "generate qrcode", Reason: fmt.Sprintf("api error %d: %s", envelope.Code, envelope.Message)}
	}

	var data struct {
		QRCodeKey string `json:"qrcode_key"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, &AuthError{Op: "generate qrcode", Reason: "malformed payload", Err: err}
	}
	if data.QRCodeKey == "" || data.URL == "" {
		return nil, &AuthError{Op: "generate qrcode", Reason: "payload missing qrcode_key or url"}
	}

	a.logger.Debug("qr code generated", logging.String("qrcode_key", data.QRCodeKey))
	return &QRCode{Key: data.QRCodeKey, URL: data.URL}, nil
}

type pollResult struct {
	code      int
	innerCode int
	message   string
	harvested []cookiePair
}

// poll issues one status check for the QR key and harvests any cookies the
// passport service set during the exchange.
func (a *Auth) poll(ctx context.Context, key string) (pollResult, error) {
	query := url.Values{"qrcode_key": {key}}
	envelope, cookies, err := a.doPassportGet(ctx, qrPollPath, query)
	if err != nil {
		return pollResult{}, err
	}

	result := pollResult{code: envelope.Code, innerCode: -1, message: envelope.Message, harvested: cookies}
	if len(envelope.Data) > 0 {
		var data struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err == nil {
			result.innerCode = data.Code
			if data.Message != "" {
				result.message = data.Message
			}
		}
	}
	return result, nil
}

// WaitForLogin polls until the QR code is confirmed, expires, or the timeout
// elapses. Timeout is measured as elapsed wall-clock time at each iteration,
// so the loop terminates even if the process slept through the deadline. Any
// unexpected poll status, including transport errors, is retried after the
// fixed interval; only success, expiry, timeout, or context cancellation end
// the loop.
func (a *Auth) WaitForLogin(ctx context.Context, key string, timeout time.Duration) (LoginResult, error) {
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return LoginResult{}, err
		}
		if !time.Now().Before(deadline) {
			a.logger.Warn("login timed out", logging.Duration("timeout", timeout))
			return LoginResult{Status: LoginTimedOut, Reason: "login not confirmed before timeout"}, nil
		}

		result, err := a.poll(ctx, key)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return LoginResult{}, err
			}
			// Transient transport failures must not abort the attempt;
			// they are logged apart from "not scanned yet" so the two
			// stay distinguishable in diagnostics.
			a.logger.Debug("poll transport error, retrying", logging.Error(err))
			if err := a.sleep(ctx, pollInterval); err != nil {
				return LoginResult{}, err
			}
			continue
		}

		a.notifyStatus(result.innerCode)

		switch {
		case result.code == 0 && result.innerCode == loginCodeSuccess:
			merged := mergeCookies(a.baseCookies, result.harvested)
			a.logger.Info("login succeeded", logging.Int("cookies", len(merged)))
			return LoginResult{Status: LoginSucceeded, Cookie: cookieHeaderValue(merged)}, nil
		case result.code == 0 && result.innerCode == loginCodeExpired:
			a.logger.Warn("qr code expired")
			return LoginResult{Status: LoginExpired, Reason: "qr code expired before it was scanned"}, nil
		case result.code == 0 && (result.innerCode == loginCodeNotScanned || result.innerCode == loginCodeNotConfirmed):
			// Still waiting on the user.
		default:
			a.logger.Debug("unexpected poll status, retrying",
				logging.Int("code", result.code),
				logging.Int("inner_code", result.innerCode),
				logging.String("message", result.message))
		}

		if err := a.sleep(ctx, pollInterval); err != nil {
			return LoginResult{}, err
		}
	}
}

// StatusMessage renders a login-progress code for display.
func StatusMessage(code int) string {
	switch code {
	case loginCodeSuccess:
		return "login confirmed"
	case loginCodeExpired:
		return "qr code expired, request a new one"
	case loginCodeNotConfirmed:
		return "scanned, waiting for confirmation on the phone"
	case loginCodeNotScanned:
		return "waiting for the qr code to be scanned"
	default:
		return fmt.Sprintf("unexpected status %d", code)
	}
}

func (a *Auth) notifyStatus(code int) {
	if a.notify == nil || code == a.lastCode {
		return
	}
	a.lastCode = code
	a.notify(code, StatusMessage(code))
}

func (a *Auth) doPassportGet(ctx context.Context, path string, query url.Values) (qrEnvelope, []cookiePair, error) {
	target := a.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return qrEnvelope{}, nil, fmt.Errorf("build passport request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", "https://www.bilibili.com/")
	req.Header.Set("Origin", "https://www.bilibili.com")
	req.Header.Set("Cookie", cookieHeaderValue(a.baseCookies))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return qrEnvelope{}, nil, fmt.Errorf("passport request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return qrEnvelope{}, nil, fmt.Errorf("passport request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope qrEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return qrEnvelope{}, nil, fmt.Errorf("decode passport response: %w", err)
	}

	var harvested []cookiePair
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "" {
			continue
		}
		harvested = append(harvested, cookiePair{key: cookie.Name, value: cookie.Value})
	}
	return envelope, harvested, nil
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
