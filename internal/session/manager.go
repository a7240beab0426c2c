// Package session tracks the signed-in user as an explicit state machine fed
// by the identity provider's state stream. The state is one of four tags
// rather than a pair of booleans, so "logging out" and "still loading" can
// never be confused with each other.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/domain/profile"
	"github.com/haulbuddy/service-marketplace/internal/identity"
)

// State is the session lifecycle tag.
type State string

const (
	// StateLoading is the initial state before the first identity event.
	StateLoading State = "loading"
	// StateAuthenticated means a user is signed in and their role resolved.
	StateAuthenticated State = "authenticated"
	// StateUnauthenticated means no user is signed in.
	StateUnauthenticated State = "unauthenticated"
	// StateLoggingOut is the transient state between a logout request and
	// the provider confirming the sign-out.
	StateLoggingOut State = "logging-out"
)

// Snapshot is a consistent read of the session at one point in time.
type Snapshot struct {
	State    State
	Identity *identity.Identity
	Role     profile.Role
}

// Manager subscribes to the identity provider and exposes the current
// session. Role lookups happen outside the lock, so a logout can overtake an
// in-flight lookup; each lookup is stamped with the logout sequence counter
// and its result is dropped when the counter has moved on.
type Manager struct {
	provider identity.Provider
	profiles profile.ProfileRepository
	logger   *zap.Logger

	mu        sync.Mutex
	state     State
	identity  *identity.Identity
	role      profile.Role
	logoutSeq uint64

	unsubscribe func()
}

// NewManager creates a manager in the loading state and subscribes it to the
// provider's state stream.
func NewManager(provider identity.Provider, profiles profile.ProfileRepository, logger *zap.Logger) *Manager {
	m := &Manager{
		provider: provider,
		profiles: profiles,
		logger:   logger,
		state:    StateLoading,
	}
	m.unsubscribe = provider.Subscribe(m.onIdentityEvent)
	return m
}

// Close detaches the manager from the provider stream.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Snapshot returns the current session state, identity and role.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Identity: m.identity, Role: m.role}
}

// Logout moves the session to logging-out, bumps the sequence counter so any
// in-flight role lookup is discarded, then signs out of the provider and
// settles in unauthenticated. The session never gets stuck in logging-out
// even if the provider call fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.logoutSeq++
	m.state = StateLoggingOut
	uid := ""
	if m.identity != nil {
		uid = m.identity.UID
	}
	m.mu.Unlock()

	err := m.provider.SignOut(ctx, uid)

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.identity = nil
	m.role = ""
	m.mu.Unlock()

	return err
}

// RefreshRole re-reads the signed-in user's role from their profile. It is a
// no-op when nobody is signed in.
func (m *Manager) RefreshRole(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.identity == nil {
		m.mu.Unlock()
		return
	}
	uid := m.identity.UID
	seq := m.logoutSeq
	m.mu.Unlock()

	role := m.lookupRole(ctx, uid)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logoutSeq != seq || m.state != StateAuthenticated {
		return
	}
	m.role = role
}

// onIdentityEvent handles one event from the provider stream. A nil identity
// always lands the session in unauthenticated with the role cleared.
func (m *Manager) onIdentityEvent(id *identity.Identity) {
	if id == nil {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.identity = nil
		m.role = ""
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	seq := m.logoutSeq
	m.mu.Unlock()

	role := m.lookupRole(context.Background(), id.UID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logoutSeq != seq {
		// A logout raced this sign-in event; the event is stale.
		m.logger.Debug("dropping stale identity event", zap.String("uid", id.UID))
		return
	}
	m.state = StateAuthenticated
	m.identity = id
	m.role = role
}

// lookupRole resolves the user's marketplace role. Missing or unreadable
// profiles resolve to an empty role rather than an error; the session is
// still authenticated, just roleless.
func (m *Manager) lookupRole(ctx context.Context, uid string) profile.Role {
	p, err := m.profiles.FindByUID(ctx, uid)
	if err != nil {
		m.logger.Warn("role lookup failed", zap.String("uid", uid), zap.Error(err))
		return ""
	}
	return p.Role()
}
