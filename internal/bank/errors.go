package bank

import "errors"

var (
	// ErrLoginFailed means the portal rejected the credentials or the one-time
	// code. Distinct from transport failures; the user has to restart the
	// login from the first step.
	ErrLoginFailed = errors.New("bank: login failed")

	// ErrSessionNotEstablished means the authorization-code exchange did not
	// produce an authorized session. Not recoverable within the same attempt:
	// the server-side pairing between code and request context may already be
	// consumed, so the exchange is never retried.
	ErrSessionNotEstablished = errors.New("bank: session could not be established")

	// ErrNotAuthenticated is returned when balance or statement operations are
	// invoked before the session reached the authenticated state. The request
	// is never sent.
	ErrNotAuthenticated = errors.New("bank: session not authenticated")
)
