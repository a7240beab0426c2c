// Package identity implements the account side of the marketplace: email and
// password credentials, token issuance, and a push stream of sign-in state
// changes that the session layer subscribes to. Accounts are stored apart
// from marketplace profiles; the UID is the only link between the two.
package identity

import (
	"context"
	"time"
)

// Identity is the authenticated principal as seen by the rest of the system.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// RegisterData is the input for creating a new account.
type RegisterData struct {
	Name     string
	Email    string
	Password string
}

// SignInResult carries the tokens issued on a successful sign-in.
type SignInResult struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
}

// StateListener receives the current identity after every auth state change,
// or nil after a sign-out.
type StateListener func(id *Identity)

// Provider is the identity boundary: registration, credential checks, and a
// subscription stream mirroring the provider's view of who is signed in.
type Provider interface {
	// Register creates a new account. It must not leave any trace when it
	// fails (no partial account, no profile).
	Register(ctx context.Context, data RegisterData) (*Identity, error)

	// SignIn verifies credentials and issues tokens.
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)

	// SignOut invalidates the provider-side session for the given user and
	// notifies subscribers with a nil identity.
	SignOut(ctx context.Context, uid string) error

	// SendPasswordReset produces a short-lived reset token for the account
	// with the given email. Delivering it is the mailer's concern.
	SendPasswordReset(ctx context.Context, email string) (string, error)

	// Subscribe registers a listener for auth state changes. The returned
	// function removes the listener.
	Subscribe(fn StateListener) (unsubscribe func())
}

// Account is the stored credential record.
type Account struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountRepository defines persistence operations for credential records.
type AccountRepository interface {
	FindByUID(ctx context.Context, uid string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, a *Account) error
}
