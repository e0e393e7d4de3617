package domain

// Credentials are the customer's primary login inputs. The one-time code of
// the second step is supplied separately once the portal asks for it.
// Credentials are immutable per login attempt and never persisted.
type Credentials struct {
	Username string // customer id
	Password string
}

// AuthChallenge describes a prompt the caller has to present to the user when
// the portal requires more input, currently only the SMS one-time code (mTAN).
// It is consumed by the UI and never persisted.
type AuthChallenge struct {
	Title       string // short heading, e.g. "One-time code required"
	Instruction string // full instruction including the masked recipient
	InputLabel  string // label for the input field, e.g. "mTAN"
}
