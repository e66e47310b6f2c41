// Package session holds the bearer token and the signed-in user's profile,
// and drives the login, token validation and logout lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/tokenstore"
)

// RoleAdmin grants category management.
const RoleAdmin = "ADMIN"

var (
	// ErrNoToken is returned when there is no token to validate.
	ErrNoToken = errors.New("no session token")
	// ErrTokenExpired is returned for a token whose exp claim has passed.
	ErrTokenExpired = errors.New("session token expired")
)

// Session is the shared auth state. An empty token means signed out, and
// the zero User is the signed-out profile.
type Session struct {
	mu    sync.RWMutex
	token string
	user  blogen.User
}

// New returns a signed-out session.
func New() *Session {
	return &Session{}
}

// SetToken stores the bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetUser stores the signed-in user's profile.
func (s *Session) SetUser(user blogen.User) {
	user.Roles = append([]string(nil), user.Roles...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Clear resets the token and profile to the signed-out state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = blogen.User{}
}

// Token implements blogen.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in profile.
func (s *Session) User() blogen.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user := s.user
	user.Roles = append([]string(nil), s.user.Roles...)
	return user
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// IsAdmin reports whether the signed-in user holds the ADMIN role.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.HasRole(RoleAdmin)
}

var _ blogen.TokenSource = (*Session)(nil)

// Remote is the subset of the API the session lifecycle needs.
type Remote interface {
	Login(ctx context.Context, username, password string) (string, error)
	AuthenticatedUser(ctx context.Context) (blogen.User, error)
	Logout(ctx context.Context) error
}

var _ Remote = (*blogen.Client)(nil)

// Manager runs the session lifecycle against the API and keeps the token
// store in step with the session.
type Manager struct {
	session *Session
	remote  Remote
	store   tokenstore.Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager wires a Manager. A nil store keeps sessions for one run only.
func NewManager(sess *Session, remote Remote, store tokenstore.Store, logger *zap.Logger) *Manager {
	if store == nil {
		store = tokenstore.None{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		session: sess,
		remote:  remote,
		store:   store,
		logger:  logger.With(zap.String("component", "session")),
		now:     time.Now,
	}
}

// Session returns the managed session.
func (m *Manager) Session() *Session {
	return m.session
}

// Login exchanges credentials for a token and loads the profile. Either
// both succeed or the session is left signed out.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	token, err := m.remote.Login(ctx, username, password)
	if err != nil {
		m.session.Clear()
		return "", err
	}
	if err := m.adopt(ctx, token); err != nil {
		return "", err
	}
	m.persist(ctx, token)
	m.logger.Info("logged in", zap.String("user", m.session.User().UserName))
	return token, nil
}

// ValidateToken restores a session from a previously issued token. A token
// whose exp claim has passed is rejected without contacting the server.
func (m *Manager) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		m.session.Clear()
		return ErrNoToken
	}
	if Expired(token, m.now()) {
		m.session.Clear()
		m.forget(ctx)
		return ErrTokenExpired
	}
	if err := m.adopt(ctx, token); err != nil {
		if apiErr := blogen.AsAPIError(err); apiErr != nil {
			m.forget(ctx)
		}
		return err
	}
	return nil
}

// Restore loads the persisted token, if any, and validates it.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNoToken) {
			return ErrNoToken
		}
		return fmt.Errorf("load saved token: %w", err)
	}
	if err := m.ValidateToken(ctx, token); err != nil {
		return err
	}
	m.logger.Info("session restored", zap.String("user", m.session.User().UserName))
	return nil
}

// Logout signs out locally, then tells the server. The local state is
// cleared before any request goes out, and a server failure is only logged.
// Calling Logout while signed out is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	wasAuthenticated := m.session.IsAuthenticated()
	m.session.Clear()
	m.forget(ctx)
	if !wasAuthenticated {
		return
	}
	if err := m.remote.Logout(ctx); err != nil {
		m.logger.Warn("server logout failed", zap.Error(err))
	}
}

// adopt installs token and fetches the profile, rolling back on failure.
func (m *Manager) adopt(ctx context.Context, token string) error {
	m.session.SetToken(token)
	user, err := m.remote.AuthenticatedUser(ctx)
	if err != nil {
		m.session.Clear()
		return err
	}
	m.session.SetUser(user)
	return nil
}

func (m *Manager) persist(ctx context.Context, token string) {
	if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("save token failed", zap.Error(err))
	}
}

func (m *Manager) forget(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear saved token failed", zap.Error(err))
	}
}

// Claims is the unverified view of a bearer token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseClaims reads sub and exp from a JWT without checking its signature.
// The client never holds the signing key.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether token carries an exp claim at or before now.
// Opaque tokens are never considered expired here.
func Expired(token string, now time.Time) bool {
	claims, err := ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(claims.ExpiresAt)
}
