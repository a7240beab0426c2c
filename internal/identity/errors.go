package identity

import "github.com/haulbuddy/service-marketplace/internal/common/domain"

// Sentinel errors for credential failures. Messages are the ones shown to
// end users, so they stay deliberately vague where account enumeration is a
// concern.
var (
	ErrEmailInUse         = domain.NewConflictError("This email is already registered")
	ErrWeakPassword       = domain.NewValidationError("Password should be at least 6 characters")
	ErrInvalidCredentials = domain.NewUnauthorizedError("Invalid email or password")
	ErrUserNotFound       = &domain.AppError{Kind: domain.KindNotFound, Message: "No account found with this email"}
	ErrUserDisabled       = domain.NewForbiddenError("This account has been disabled")
	ErrTooManyAttempts    = domain.NewRateLimitedError("Too many failed attempts. Please try again later")
)
