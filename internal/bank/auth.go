package bank

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dsommer/bankfeed/internal/domain"
	"github.com/dsommer/bankfeed/internal/logger"
)

const (
	loginPath      = "/api/auth/customer-id/login"
	otpPath        = "/api/auth/customer-id/submit/otp"
	redirectPath   = "/redirect"
	verifyUserPath = "/gw/verifyUser"
	logoutPath     = "/gw/logout"

	// authMethod is the fixed method discriminator the redirect endpoint
	// expects for customer-id logins.
	authMethod = "customerid"

	statusMFARequired     = "MFA_REQUIRED"
	statusLoginSuccessful = "LOGIN_SUCCESSFUL"
)

// authResponse is the shared response shape of the login and OTP endpoints.
type authResponse struct {
	Status            string `json:"status"`
	Recipient         string `json:"recipient"`
	AuthorizationCode string `json:"authorizationCode"`
}

type verifyUserResponse struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Username   string `json:"username"`
}

// Login runs the first authentication step. It visits the portal anonymously
// to provision the server-side redirect state, then posts the credentials.
//
// Three outcomes: the portal demands an SMS one-time code, in which case a
// non-nil AuthChallenge is returned and SubmitOTP has to follow; the login
// succeeds directly and the returned challenge is nil; or the attempt is
// rejected with ErrLoginFailed.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthChallenge, error) {
	log := logger.FromContext(ctx)

	if s.state != StateAwaitingCredentials {
		return nil, fmt.Errorf("bank: login attempted in state %d, use a fresh session", s.state)
	}

	// The redirect endpoint later resolves the authorization code against
	// state stored during this visit. Skipping it breaks the exchange.
	if err := s.visit(ctx, s.apiBaseURL+"/"); err != nil {
		return nil, err
	}

	payload := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}
	var resp authResponse
	if err := s.postJSON(ctx, s.authBaseURL, loginPath, payload, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusMFARequired:
		s.state = StateAwaitingOTP
		log.Info().Str("recipient", resp.Recipient).Msg("Portal requires one-time code")
		return &domain.AuthChallenge{
			Title:       "One-time code required",
			Instruction: fmt.Sprintf("Enter the code sent to %s.", resp.Recipient),
			InputLabel:  "mTAN",
		}, nil
	case statusLoginSuccessful:
		return nil, s.establish(ctx, resp.AuthorizationCode)
	default:
		s.state = StateFailed
		return nil, fmt.Errorf("%w: unexpected login status %q", ErrLoginFailed, resp.Status)
	}
}

// SubmitOTP runs the second authentication step with the code the user
// entered. On success the session is authenticated; any other portal status
// is ErrLoginFailed.
func (s *Session) SubmitOTP(ctx context.Context, code string) error {
	if s.state != StateAwaitingOTP {
		return fmt.Errorf("bank: no pending one-time code challenge")
	}

	var resp authResponse
	if err := s.postJSON(ctx, s.authBaseURL, otpPath, map[string]string{"otp": code}, &resp); err != nil {
		return err
	}

	if resp.Status != statusLoginSuccessful {
		s.state = StateFailed
		return fmt.Errorf("%w: unexpected otp status %q", ErrLoginFailed, resp.Status)
	}
	return s.establish(ctx, resp.AuthorizationCode)
}

// establish exchanges the authorization code and promotes the session to
// authenticated. An exchange failure is terminal for this session.
func (s *Session) establish(ctx context.Context, code string) error {
	if code == "" {
		s.state = StateFailed
		return fmt.Errorf("%w: login succeeded without an authorization code", ErrSessionNotEstablished)
	}
	if err := s.exchangeAuthorizationCode(ctx, code); err != nil {
		s.state = StateFailed
		return err
	}
	s.state = StateAuthenticated
	log := logger.FromContext(ctx)
	log.Info().Str("owner", s.ownerName).Msg("Session authenticated")
	return nil
}

// exchangeAuthorizationCode converts the short-lived code into an authorized
// cookie session. The code alone is not a session token: the auth domain's
// redirect endpoint holds the pairing between code and the original request
// context and replays a browser-style redirect into the banking domain, which
// sets the session cookies. The result is verified via the verify-user
// endpoint. The exchange is non-idempotent server-side and therefore never
// retried.
func (s *Session) exchangeAuthorizationCode(ctx context.Context, code string) error {
	q := url.Values{
		"code":   {code},
		"method": {authMethod},
	}
	if err := s.visit(ctx, s.authBaseURL+redirectPath+"?"+q.Encode()); err != nil {
		return err
	}

	var verify verifyUserResponse
	if err := s.postJSON(ctx, s.apiBaseURL, verifyUserPath, map[string]string{}, &verify); err != nil {
		return err
	}
	if !verify.IsLoggedIn {
		return fmt.Errorf("%w: portal reports isLoggedIn=false after redirect", ErrSessionNotEstablished)
	}
	s.ownerName = verify.Username
	return nil
}

// Logout invalidates the session on the portal side and resets the local
// state. Safe to call on an unauthenticated session.
func (s *Session) Logout(ctx context.Context) error {
	if s.state != StateAuthenticated {
		return nil
	}
	err := s.visit(ctx, s.apiBaseURL+logoutPath)
	s.state = StateFailed
	s.ownerName = ""
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().Msg("Logged out")
	return nil
}
