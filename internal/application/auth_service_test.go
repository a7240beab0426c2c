package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	profileDomain "github.com/haulbuddy/service-marketplace/internal/domain/profile"
	"github.com/haulbuddy/service-marketplace/internal/identity"
)

// fakeIdentityProvider returns scripted results for the auth service.
type fakeIdentityProvider struct {
	registerErr  error
	signInResult *identity.SignInResult
	signInErr    error
}

func (p *fakeIdentityProvider) Register(ctx context.Context, data identity.RegisterData) (*identity.Identity, error) {
	if p.registerErr != nil {
		return nil, p.registerErr
	}
	return &identity.Identity{UID: "uid-1", Email: data.Email, DisplayName: data.Name}, nil
}

func (p *fakeIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.signInResult, nil
}

func (p *fakeIdentityProvider) SignOut(ctx context.Context, uid string) error { return nil }

func (p *fakeIdentityProvider) SendPasswordReset(ctx context.Context, email string) (string, error) {
	return "reset-token", nil
}

func (p *fakeIdentityProvider) Subscribe(fn identity.StateListener) func() { return func() {} }

// countingProfileRepo tracks profile writes and can fail them on demand.
type countingProfileRepo struct {
	*fakeProfileRepo
	saves   int
	saveErr error
}

func newCountingProfileRepo() *countingProfileRepo {
	return &countingProfileRepo{fakeProfileRepo: newFakeProfileRepo()}
}

func (r *countingProfileRepo) Save(ctx context.Context, p *profileDomain.Profile) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.fakeProfileRepo.Save(ctx, p)
}

func newTestAuthService(provider *fakeIdentityProvider) (*AuthService, *countingProfileRepo) {
	profiles := newCountingProfileRepo()
	profileSvc := NewProfileService(profiles, zap.NewNop())
	return NewAuthService(provider, profileSvc, zap.NewNop()), profiles
}

func TestRegister_CreatesCustomerProfile(t *testing.T) {
	svc, profiles := newTestAuthService(&fakeIdentityProvider{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, string(profileDomain.RoleCustomer), resp.Profile.Role)

	p, err := profiles.FindByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", p.Email())
}

func TestRegister_RejectedRegistrationWritesNoProfile(t *testing.T) {
	svc, profiles := newTestAuthService(&fakeIdentityProvider{
		registerErr: identity.ErrEmailInUse,
	})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, identity.ErrEmailInUse)
	assert.Zero(t, profiles.saves)
}

func TestRegister_ProfileWriteFailureStillRegisters(t *testing.T) {
	svc, profiles := newTestAuthService(&fakeIdentityProvider{})
	profiles.saveErr = errors.New("store unavailable")

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", resp.UID)
	assert.Nil(t, resp.Profile)
}

func TestLogin_RecreatesMissingProfile(t *testing.T) {
	provider := &fakeIdentityProvider{
		signInResult: &identity.SignInResult{
			Identity:     identity.Identity{UID: "uid-1", Email: "sam@example.com", DisplayName: "Sam"},
			AccessToken:  "access",
			RefreshToken: "refresh",
		},
	}
	svc, profiles := newTestAuthService(provider)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "sam@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, string(profileDomain.RoleCustomer), resp.Profile.Role)
	assert.Equal(t, 1, profiles.saves)

	p, err := profiles.FindByUID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "Sam", p.Name())
}

func TestLogin_ExistingProfileNotRewritten(t *testing.T) {
	provider := &fakeIdentityProvider{
		signInResult: &identity.SignInResult{
			Identity: identity.Identity{UID: "uid-1", Email: "sam@example.com", DisplayName: "Sam"},
		},
	}
	svc, profiles := newTestAuthService(provider)

	existing, err := profileDomain.NewProfile("uid-1", "Sam", "sam@example.com", profileDomain.RoleOwner)
	require.NoError(t, err)
	require.NoError(t, profiles.Save(context.Background(), existing))
	profiles.saves = 0

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "sam@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, string(profileDomain.RoleOwner), resp.Profile.Role)
	assert.Zero(t, profiles.saves)
}
