package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/common/domain"
	"github.com/haulbuddy/service-marketplace/internal/domain/profile"
	"github.com/haulbuddy/service-marketplace/internal/identity"
)

// stubProvider lets tests push identity events by hand.
type stubProvider struct {
	mu         sync.Mutex
	listeners  []identity.StateListener
	signOutErr error
}

func (p *stubProvider) Register(ctx context.Context, data identity.RegisterData) (*identity.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) SignIn(ctx context.Context, email, password string) (*identity.SignInResult, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) SignOut(ctx context.Context, uid string) error {
	return p.signOutErr
}

func (p *stubProvider) SendPasswordReset(ctx context.Context, email string) (string, error) {
	return "", errors.New("not implemented")
}

func (p *stubProvider) Subscribe(fn identity.StateListener) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
	return func() {}
}

func (p *stubProvider) emit(id *identity.Identity) {
	p.mu.Lock()
	listeners := append([]identity.StateListener(nil), p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(id)
	}
}

// stubProfileRepo serves roles and can block lookups behind a gate so tests
// can interleave a logout with an in-flight role lookup.
type stubProfileRepo struct {
	mu    sync.Mutex
	roles map[string]profile.Role
	gate  chan struct{} // when non-nil, FindByUID waits for it to close
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{roles: make(map[string]profile.Role)}
}

func (r *stubProfileRepo) FindByUID(ctx context.Context, uid string) (*profile.Profile, error) {
	r.mu.Lock()
	gate := r.gate
	role, ok := r.roles[uid]
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if !ok {
		return nil, domain.NewNotFoundError("Profile", uid)
	}
	return profile.NewProfile(uid, "Sam", uid+"@example.com", role)
}

func (r *stubProfileRepo) Save(ctx context.Context, p *profile.Profile) error   { return nil }
func (r *stubProfileRepo) Update(ctx context.Context, p *profile.Profile) error { return nil }

func newTestManager(t *testing.T) (*Manager, *stubProvider, *stubProfileRepo) {
	t.Helper()
	provider := &stubProvider{}
	profiles := newStubProfileRepo()
	m := NewManager(provider, profiles, zap.NewNop())
	t.Cleanup(m.Close)
	return m, provider, profiles
}

func TestManager_StartsLoading(t *testing.T) {
	m, _, _ := newTestManager(t)

	snap := m.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Role)
}

func TestManager_SignInEvent(t *testing.T) {
	m, provider, profiles := newTestManager(t)
	profiles.roles["u1"] = profile.RoleOwner

	provider.emit(&identity.Identity{UID: "u1", Email: "u1@example.com"})

	snap := m.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "u1", snap.Identity.UID)
	assert.Equal(t, profile.RoleOwner, snap.Role)
}

func TestManager_SignInEvent_MissingProfile(t *testing.T) {
	m, provider, _ := newTestManager(t)

	provider.emit(&identity.Identity{UID: "u1"})

	// Authenticated but roleless; the profile is created lazily elsewhere.
	snap := m.Snapshot()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.Empty(t, snap.Role)
}

func TestManager_NilEventClearsSession(t *testing.T) {
	m, provider, profiles := newTestManager(t)
	profiles.roles["u1"] = profile.RoleCustomer
	provider.emit(&identity.Identity{UID: "u1"})

	provider.emit(nil)

	snap := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Role)
}

func TestManager_LogoutSettlesEvenOnProviderError(t *testing.T) {
	m, provider, profiles := newTestManager(t)
	profiles.roles["u1"] = profile.RoleCustomer
	provider.emit(&identity.Identity{UID: "u1"})
	provider.signOutErr = errors.New("provider unreachable")

	err := m.Logout(context.Background())
	assert.Error(t, err)

	// The session must not be stuck in logging-out.
	snap := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Identity)
}

func TestManager_LogoutDropsStaleSignInEvent(t *testing.T) {
	m, provider, profiles := newTestManager(t)
	profiles.roles["u1"] = profile.RoleOwner

	// Hold the role lookup open so the logout can overtake it.
	gate := make(chan struct{})
	profiles.mu.Lock()
	profiles.gate = gate
	profiles.mu.Unlock()

	done := make(chan struct{})
	go func() {
		provider.emit(&identity.Identity{UID: "u1"})
		close(done)
	}()

	// Give the event handler time to reach the blocked lookup.
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.Logout(context.Background()))
	close(gate)
	<-done

	// The sign-in event lost the race and must not resurrect the session.
	snap := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Role)
}

func TestManager_RefreshRole(t *testing.T) {
	m, provider, profiles := newTestManager(t)
	profiles.roles["u1"] = profile.RoleCustomer
	provider.emit(&identity.Identity{UID: "u1"})

	profiles.mu.Lock()
	profiles.roles["u1"] = profile.RoleOwner
	profiles.mu.Unlock()

	m.RefreshRole(context.Background())
	assert.Equal(t, profile.RoleOwner, m.Snapshot().Role)
}

func TestManager_RefreshRole_NoopWhenSignedOut(t *testing.T) {
	m, provider, _ := newTestManager(t)
	provider.emit(nil)

	m.RefreshRole(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Empty(t, snap.Role)
}
