package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	profileDomain "github.com/haulbuddy/service-marketplace/internal/domain/profile"
	"github.com/haulbuddy/service-marketplace/internal/identity"
)

// RegisterRequest holds the sign-up form.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest holds the sign-in form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	UID          string      `json:"uid"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	Profile      *ProfileDTO `json:"profile,omitempty"`
}

// AuthService glues the identity provider to the profile store: a
// registration is an account plus a customer profile, created in that order
// so a failed registration never leaves a profile behind.
type AuthService struct {
	provider identity.Provider
	profiles *ProfileService
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(provider identity.Provider, profiles *ProfileService, logger *zap.Logger) *AuthService {
	return &AuthService{provider: provider, profiles: profiles, logger: logger}
}

// Register creates the account and then the customer profile. The profile is
// only written once the account exists; a rejected registration (weak
// password, email in use) leaves no trace.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	id, err := s.provider.Register(ctx, identity.RegisterData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.CreateProfile(ctx, id.UID, req.Name, id.Email, profileDomain.RoleCustomer)
	if err != nil {
		// The account exists but its profile write failed. Login recreates
		// the missing profile, so the registration still counts.
		s.logger.Error("profile creation failed after registration",
			zap.String("uid", id.UID),
			zap.Error(err),
		)
	}

	return &AuthResponse{
		UID:     id.UID,
		Email:   id.Email,
		Name:    id.DisplayName,
		Profile: profile,
	}, nil
}

// Login verifies credentials and returns tokens plus the user's profile. A
// profile lost to a failed write at registration time is recreated here with
// the default customer role.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	result, err := s.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, result.Identity.UID)
	if domain.IsKind(err, domain.KindNotFound) {
		s.logger.Info("recreating missing profile on login",
			zap.String("uid", result.Identity.UID),
		)
		profile, err = s.profiles.CreateProfile(ctx,
			result.Identity.UID, result.Identity.DisplayName, result.Identity.Email,
			profileDomain.RoleCustomer)
	}
	if err != nil {
		// An unreadable profile does not block sign-in; the session is
		// simply roleless until the store recovers.
		s.logger.Warn("profile lookup failed on login",
			zap.String("uid", result.Identity.UID),
			zap.Error(err),
		)
		profile = nil
	}

	return &AuthResponse{
		UID:          result.Identity.UID,
		Email:        result.Identity.Email,
		Name:         result.Identity.DisplayName,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Profile:      profile,
	}, nil
}

// Logout signs the user out of the identity provider.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	return s.provider.SignOut(ctx, uid)
}

// RequestPasswordReset issues a reset token for the given email. The token
// goes to the mailer, never to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.provider.SendPasswordReset(ctx, email)
	return err
}
