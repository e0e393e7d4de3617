package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config carries the two portal endpoints. The auth domain hosts the login
// and OTP endpoints plus the redirect used for the authorization-code
// exchange; the API domain hosts the banking endpoints proper.
type Config struct {
	AuthBaseURL string
	APIBaseURL  string

	// HTTPClient overrides the default client, mainly for tests. The session
	// installs its own cookie jar if the client has none.
	HTTPClient *http.Client
}

// State is the position of a session in the login flow.
type State int

const (
	// StateAwaitingCredentials is the initial state before Login.
	StateAwaitingCredentials State = iota
	// StateAwaitingOTP means the portal asked for the SMS one-time code.
	StateAwaitingOTP
	// StateAuthenticated means the cookie jar holds an authorized session.
	StateAuthenticated
	// StateFailed is terminal; the user has to restart with a fresh session.
	StateFailed
)

// Session is the single connection to the bank portal. It owns the cookie jar
// shared by every request, the login state machine and the owner name cached
// from the verify-user response. A Session belongs to exactly one login
// attempt and must not be shared across flows.
type Session struct {
	httpClient  *http.Client
	authBaseURL string
	apiBaseURL  string

	state     State
	ownerName string
}

// NewSession creates an unauthenticated session with an empty cookie jar.
func NewSession(cfg Config) (*Session, error) {
	if cfg.AuthBaseURL == "" || cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("bank: both auth and api base URLs are required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("bank: create cookie jar: %w", err)
		}
		client.Jar = jar
	}

	return &Session{
		httpClient:  client,
		authBaseURL: cfg.AuthBaseURL,
		apiBaseURL:  cfg.APIBaseURL,
	}, nil
}

// State returns the session's position in the login flow.
func (s *Session) State() State {
	return s.state
}

// Authenticated reports whether the session holds an authorized cookie state.
func (s *Session) Authenticated() bool {
	return s.state == StateAuthenticated
}

// OwnerName returns the account holder name reported by the portal after a
// successful code exchange. Empty until then.
func (s *Session) OwnerName() string {
	return s.ownerName
}

// visit performs an anonymous GET against the given URL, discarding the body.
// Used for the initial portal visit that provisions the server-side redirect
// state, and for the code-exchange redirect itself.
func (s *Session) visit(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("bank: build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bank: GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// get issues an authenticated-style GET and returns the raw body. Callers
// decide how strictly to interpret the payload; a transport failure is always
// an error.
func (s *Session) get(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("bank: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bank: read response of %s: %w", path, err)
	}
	return body, nil
}

// getJSON is get plus a JSON decode into out.
func (s *Session) getJSON(ctx context.Context, base, path string, query url.Values, out interface{}) error {
	body, err := s.get(ctx, base, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("bank: decode response of %s: %w", path, err)
	}
	return nil
}

// postJSON sends a JSON body and decodes the JSON response into out. The
// portal reports login outcomes in the body rather than the HTTP status, so
// the status code is not interpreted here.
func (s *Session) postJSON(ctx context.Context, base, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bank: encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bank: build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bank: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bank: read response of %s: %w", path, err)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("bank: decode response of %s: %w", path, err)
		}
	}
	return nil
}
