package auth

import "time"

// User represents a user account. PasswordHash holds a bcrypt digest; the
// raw credential is never stored or returned.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// LoginOutcome classifies a login attempt. Callers branch on the outcome
// instead of catching typed errors.
type LoginOutcome int

const (
	// LoginSuccess means the credentials matched an enabled account.
	LoginSuccess LoginOutcome = iota
	// LoginUnknownAccount means no account exists with that username.
	LoginUnknownAccount
	// LoginIncorrectCredentials means the account exists but the password
	// did not match.
	LoginIncorrectCredentials
	// LoginAccountDisabled means the credentials matched but the account is
	// disabled. The credential check runs first so a disabled account with a
	// wrong password still reports LoginIncorrectCredentials.
	LoginAccountDisabled
)

// String returns a stable label for logs and metrics.
func (o LoginOutcome) String() string {
	switch o {
	case LoginSuccess:
		return "success"
	case LoginUnknownAccount:
		return "unknown_account"
	case LoginIncorrectCredentials:
		return "incorrect_credentials"
	case LoginAccountDisabled:
		return "account_disabled"
	default:
		return "unknown"
	}
}

// RegisterOutcome classifies a registration attempt.
type RegisterOutcome int

const (
	// Registered means a new account was created.
	Registered RegisterOutcome = iota
	// RegisterEmptyCredentials means username or password was blank.
	RegisterEmptyCredentials
	// RegisterAccountExists means the username is already taken.
	RegisterAccountExists
	// RegisterUnknownError covers unexpected persistence failures.
	RegisterUnknownError
)
