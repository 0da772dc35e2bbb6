package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/keyring"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
)

// localNamespace seeds deterministic offline user ids, so the same email maps
// to the same notes across machines sharing a database.
var localNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://dailyfocus.app/local-users"))

// Claims is the subset of the hosted backend's access token we rely on.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSigningKey makes SignInWithToken verify HMAC signatures with key.
// Without it tokens are decoded only, leaving verification to the backend.
func WithSigningKey(key []byte) Option {
	return func(m *Manager) { m.signingKey = key }
}

// Manager owns the signed-in identity. The identity is persisted in the OS
// keyring from sign-in until sign-out.
type Manager struct {
	now        func() time.Time
	signingKey []byte

	mu      sync.Mutex
	current *models.Identity
	loaded  bool
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentUser returns the signed-in identity, or nil when signed out or when
// the stored session has expired.
func (m *Manager) CurrentUser(ctx context.Context) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		id, err := m.read()
		if err != nil {
			return nil, err
		}
		m.current = id
		m.loaded = true
	}

	if m.current == nil {
		return nil, nil
	}
	if m.current.Expired(m.now()) {
		logger.Info("Stored session has expired", "user", m.current.ID)
		return nil, nil
	}
	id := *m.current
	return &id, nil
}

func (m *Manager) read() (*models.Identity, error) {
	raw, err := keyring.Get(constants.SessionKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		logger.Warn("Ignoring unreadable stored session", "error", err)
		return nil, nil
	}
	return &id, nil
}

func (m *Manager) store(id *models.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(constants.SessionKeyringUser, string(data)); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = id
	m.loaded = true
	m.mu.Unlock()

	logger.Info("Signed in", "user", id.ID, "provider", id.Provider)
	return nil
}

// SignInLocal establishes an offline identity derived from email.
func (m *Manager) SignInLocal(email string) (*models.Identity, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	normalized := strings.ToLower(addr.Address)

	id := &models.Identity{
		ID:         uuid.NewSHA1(localNamespace, []byte(normalized)).String(),
		Email:      normalized,
		Provider:   models.ProviderLocal,
		SignedInAt: m.now().UTC(),
	}
	if err := m.store(id); err != nil {
		return nil, err
	}
	return id, nil
}

// SignInWithToken establishes an identity from a hosted-backend access token.
// The subject claim becomes the user id.
func (m *Manager) SignInWithToken(token string) (*models.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	id := &models.Identity{
		ID:         claims.Subject,
		Email:      strings.ToLower(claims.Email),
		Provider:   models.ProviderHosted,
		Token:      token,
		SignedInAt: m.now().UTC(),
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		id.ExpiresAt = &exp
		if id.Expired(m.now()) {
			return nil, ErrTokenExpired
		}
	}

	if err := m.store(id); err != nil {
		return nil, err
	}
	return id, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}

	if m.signingKey == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// SignOut removes the stored identity. Signing out while signed out is not an error.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := keyring.Delete(constants.SessionKeyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	m.current = nil
	m.loaded = true
	logger.Info("Signed out")
	return nil
}
