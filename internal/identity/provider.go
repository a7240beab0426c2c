package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/haulbuddy/service-marketplace/internal/common/auth"
	"github.com/haulbuddy/service-marketplace/internal/common/domain"
)

const minPasswordLength = 6

// loginLimiter throttles sign-in attempts per email address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute),
		burst:    5,
	}
}

func (l *loginLimiter) allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[email]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[email] = lim
	}
	return lim.Allow()
}

// RoleResolver looks up the marketplace role to embed in a user's tokens.
// The profile store owns the role, so the resolver is wired to it.
type RoleResolver func(ctx context.Context, uid string) (string, error)

// LocalProvider is a Provider backed by the service's own account table,
// bcrypt password hashes and locally issued JWTs.
type LocalProvider struct {
	accounts AccountRepository
	jwt      *auth.JWTManager
	roles    RoleResolver
	limiter  *loginLimiter
	logger   *zap.Logger

	mu          sync.Mutex
	subscribers map[int]StateListener
	nextSubID   int
}

// NewLocalProvider creates a provider over the given account store. A nil
// role resolver issues roleless tokens.
func NewLocalProvider(accounts AccountRepository, jwt *auth.JWTManager, roles RoleResolver, logger *zap.Logger) *LocalProvider {
	return &LocalProvider{
		accounts:    accounts,
		jwt:         jwt,
		roles:       roles,
		limiter:     newLoginLimiter(),
		logger:      logger,
		subscribers: make(map[int]StateListener),
	}
}

// Register creates a new account and signs the user in. On any failure the
// account store is left untouched.
func (p *LocalProvider) Register(ctx context.Context, data RegisterData) (*Identity, error) {
	email := normalizeEmail(data.Email)
	if email == "" {
		return nil, domain.NewValidationError("Email is required")
	}
	if len(data.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	existing, err := p.accounts.FindByEmail(ctx, email)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &Account{
		UID:          uuid.New().String(),
		Email:        email,
		DisplayName:  data.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := p.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	id := &Identity{UID: account.UID, Email: account.Email, DisplayName: account.DisplayName}
	p.notify(id)
	return id, nil
}

// SignIn verifies the credentials and issues an access and refresh token.
// Unknown emails and wrong passwords are reported identically.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = normalizeEmail(email)
	if !p.limiter.allow(email) {
		return nil, ErrTooManyAttempts
	}

	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Disabled {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		p.logger.Info("sign-in rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	// The role claim comes from the profile so RequireRole-gated routes work
	// with the issued token. A missing profile yields a roleless token; the
	// role lands on the next sign-in after the profile exists.
	role := p.resolveRole(ctx, account.UID)

	accessToken, err := p.jwt.GenerateAccessToken(account.UID, account.Email, role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := p.jwt.GenerateRefreshToken(account.UID, account.Email, role)
	if err != nil {
		return nil, err
	}

	id := Identity{UID: account.UID, Email: account.Email, DisplayName: account.DisplayName}
	p.notify(&id)
	return &SignInResult{Identity: id, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// SignOut pushes a nil identity to every subscriber. Tokens are stateless and
// expire on their own.
func (p *LocalProvider) SignOut(ctx context.Context, uid string) error {
	p.logger.Info("signed out", zap.String("uid", uid))
	p.notify(nil)
	return nil
}

// SendPasswordReset issues an opaque reset token for the account. The caller
// hands it to the mailer; it is never returned over the API.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	token := uuid.New().String()
	p.logger.Info("password reset requested", zap.String("uid", account.UID))
	return token, nil
}

// Subscribe adds a state listener and returns its removal function.
func (p *LocalProvider) Subscribe(fn StateListener) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

func (p *LocalProvider) notify(id *Identity) {
	p.mu.Lock()
	listeners := make([]StateListener, 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(id)
	}
}

// resolveRole asks the resolver for the user's role. Lookup failures degrade
// to a roleless token rather than blocking the sign-in.
func (p *LocalProvider) resolveRole(ctx context.Context, uid string) string {
	if p.roles == nil {
		return ""
	}
	role, err := p.roles(ctx, uid)
	if err != nil {
		p.logger.Warn("role resolution failed, issuing roleless token",
			zap.String("uid", uid), zap.Error(err))
		return ""
	}
	return role
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
