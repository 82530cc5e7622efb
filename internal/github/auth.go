package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/alfred/internal/logging"
)

const (
	deviceCodeURL  = "https://github.com/login/device/code"
	accessTokenURL = "https://github.com/login/oauth/access_token"

	// Public OAuth app client ID for the device flow. Not a secret.
	oauthClientID = "Ov23liJYi5NNdHpVqhzK"

	oauthScope = "repo read:user"

	// pollTimeout bounds the whole device-flow poll loop.
	pollTimeout = 15 * time.Minute

	// tokenLifetime is recorded with saved tokens so stale credentials can
	// be reported instead of silently failing later.
	tokenLifetime = 365 * 24 * time.Hour

	tokenFile = "github_token.json"
)

// ErrNotLoggedIn is returned when an operation needs a stored GitHub token
// and none exists.
var ErrNotLoggedIn = errors.New("not logged in to GitHub; run 'alfred github login'")

// Token is a stored OAuth access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Valid reports whether the token exists and has not passed its recorded
// expiry.
func (t Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Before(t.ExpiresAt)
}

// TokenStore persists the GitHub OAuth token under the state directory.
type TokenStore struct {
	path string
}

// NewTokenStore creates a store rooted at dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, tokenFile)}
}

// Load returns the stored token. A missing or unreadable file reports false.
func (s *TokenStore) Load() (Token, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Token{}, false
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		logging.Warn().Err(err).Str("path", s.path).Msg("ignoring corrupt token file")
		return Token{}, false
	}
	return tok, tok.AccessToken != ""
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(tok Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// DeviceCode is the user-facing half of a started device flow.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        int
}

// Auth runs the GitHub OAuth device flow and manages the stored token.
type Auth struct {
	store   *TokenStore
	httpCli *http.Client
}

// NewAuth creates an authenticator storing tokens under dir.
func NewAuth(dir string) *Auth {
	return &Auth{
		store:   NewTokenStore(dir),
		httpCli: &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns the stored access token, or ErrNotLoggedIn.
func (a *Auth) Token() (Token, error) {
	tok, ok := a.store.Load()
	if !ok {
		return Token{}, ErrNotLoggedIn
	}
	if !tok.Valid() {
		return Token{}, fmt.Errorf("stored GitHub token expired %s; run 'alfred github login' again", tok.ExpiresAt.Format("2006-01-02"))
	}
	return tok, nil
}

// IsLoggedIn reports whether a usable token is stored.
func (a *Auth) IsLoggedIn() bool {
	tok, ok := a.store.Load()
	return ok && tok.Valid()
}

// Logout removes the stored token.
func (a *Auth) Logout() error {
	return a.store.Clear()
}

// StartDeviceFlow requests a device and user code pair. The caller shows the
// user code and verification URI, then calls PollForToken.
func (a *Auth) StartDeviceFlow(ctx context.Context) (DeviceCode, error) {
	form := url.Values{
		"client_id": {oauthClientID},
		"scope":     {oauthScope},
	}
	body, err := a.postForm(ctx, deviceCodeURL, form)
	if err != nil {
		return DeviceCode{}, fmt.Errorf("requesting device code: %w", err)
	}

	var resp struct {
		DeviceCode      string `json:"device_code"`
		UserCode        string `json:"user_code"`
		VerificationURI string `json:"verification_uri"`
		Interval        int    `json:"interval"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return DeviceCode{}, fmt.Errorf("parsing device code response: %w", err)
	}
	if resp.DeviceCode == "" {
		return DeviceCode{}, fmt.Errorf("device code response missing device_code: %s", string(body))
	}
	if resp.Interval <= 0 {
		resp.Interval = 5
	}
	return DeviceCode{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		Interval:        resp.Interval,
	}, nil
}

// PollForToken polls the token endpoint until the user authorizes the device,
// denies it, or the flow expires. On success the token is saved to the store.
func (a *Auth) PollForToken(ctx context.Context, dc DeviceCode) (Token, error) {
	deadline := time.Now().Add(pollTimeout)
	interval := time.Duration(dc.Interval) * time.Second

	for {
		if time.Now().After(deadline) {
			return Token{}, errors.New("device flow timed out; run 'alfred github login' again")
		}

		select {
		case <-ctx.Done():
			return Token{}, ctx.Err()
		case <-time.After(interval):
		}

		form := url.Values{
			"client_id":   {oauthClientID},
			"device_code": {dc.DeviceCode},
			"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		}
		body, err := a.postForm(ctx, accessTokenURL, form)
		if err != nil {
			return Token{}, fmt.Errorf("polling for token: %w", err)
		}

		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			Scope       string `json:"scope"`
			Error       string `json:"error"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return Token{}, fmt.Errorf("parsing token response: %w", err)
		}

		switch pollStatus(resp.Error, resp.AccessToken) {
		case pollSuccess:
			now := time.Now()
			tok := Token{
				AccessToken: resp.AccessToken,
				TokenType:   resp.TokenType,
				Scope:       resp.Scope,
				ExpiresAt:   now.Add(tokenLifetime),
				CreatedAt:   now,
			}
			if err := a.store.Save(tok); err != nil {
				return Token{}, err
			}
			return tok, nil
		case pollWait:
			continue
		case pollSlowDown:
			interval += 5 * time.Second
			logging.Debug().Dur("interval", interval).Msg("GitHub asked to slow down polling")
			continue
		case pollDenied:
			return Token{}, errors.New("authorization was denied")
		case pollExpired:
			return Token{}, errors.New("device code expired before authorization; run 'alfred github login' again")
		default:
			return Token{}, fmt.Errorf("device flow failed: %s", resp.Error)
		}
	}
}

type pollOutcome int

const (
	pollSuccess pollOutcome = iota
	pollWait
	pollSlowDown
	pollDenied
	pollExpired
	pollFailed
)

// pollStatus maps a token-endpoint response to the next loop action.
func pollStatus(errCode, accessToken string) pollOutcome {
	if accessToken != "" {
		return pollSuccess
	}
	switch errCode {
	case "authorization_pending":
		return pollWait
	case "slow_down":
		return pollSlowDown
	case "access_denied":
		return pollDenied
	case "expired_token":
		return pollExpired
	default:
		return pollFailed
	}
}

// UserLogin returns the authenticated user's login, for the status command.
func (a *Auth) UserLogin(ctx context.Context) (string, error) {
	tok, err := a.Token()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", defaultAPIURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := a.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("parsing user response: %w", err)
	}
	return user.Login, nil
}

func (a *Auth) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpCli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
