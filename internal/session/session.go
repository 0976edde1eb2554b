// Package session owns the authenticated principal and its bearer token and
// keeps a snapshot of both in local storage across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/storage"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
	"github.com/Skotchmaster/mercadotech/pkg/tokens"
)

const StorageKey = "user"

var ErrMissingToken = errors.New("session: backend returned no token")

// Authenticator is the slice of the API client the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, email, password string, role models.Role) (*apiclient.AuthResponse, error)
	GoogleLogin(ctx context.Context, email, googleID string) (*apiclient.AuthResponse, error)
}

// Listener observes transitions. prev and next are nil when no principal is
// present on that side of the transition.
type Listener func(ctx context.Context, prev, next *models.Principal)

type Store struct {
	auth Authenticator
	kv   storage.KV
	log  zerolog.Logger

	mu        sync.RWMutex
	current   *models.Session
	pending   bool
	listeners map[int]Listener
	order     []int
	nextID    int
}

func NewStore(auth Authenticator, kv storage.KV, log zerolog.Logger) *Store {
	return &Store{
		auth:      auth,
		kv:        kv,
		log:       log.With().Str("component", "session").Logger(),
		pending:   true,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Restore loads the persisted snapshot. It never fails: a missing or
// malformed snapshot simply means there is no session.
func (s *Store) Restore(ctx context.Context) *models.Principal {
	var snap models.Session
	err := storage.GetJSON(ctx, s.kv, StorageKey, &snap)
	if err == nil {
		err = snap.Validate()
	}

	var restored *models.Session
	switch {
	case err == nil:
		restored = &snap
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.log.Warn().Err(err).Msg("discarding unreadable session snapshot")
		if delErr := s.kv.Delete(ctx, StorageKey); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to delete session snapshot")
		}
	}

	s.mu.Lock()
	prev := principalOf(s.current)
	s.current = restored
	s.pending = false
	s.mu.Unlock()

	next := principalOf(restored)
	if next != nil {
		s.log.Info().Str("user_id", next.ID).Str("role", string(next.Role)).Msg("session restored")
	}
	s.notify(ctx, prev, next)
	return next
}

func (s *Store) Login(ctx context.Context, email, password string) (*models.Principal, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.establish(ctx, res, "login")
}

func (s *Store) Register(ctx context.Context, email, password string, role models.Role) (*models.Principal, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("register: role %q: %w", role, models.ErrInvalidRole)
	}
	res, err := s.auth.Register(ctx, email, password, role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.establish(ctx, res, "register")
}

// SocialLogin signs in with an identity asserted by an external provider.
func (s *Store) SocialLogin(ctx context.Context, email, providerID string) (*models.Principal, error) {
	res, err := s.auth.GoogleLogin(ctx, email, providerID)
	if err != nil {
		return nil, fmt.Errorf("social login: %w", err)
	}
	return s.establish(ctx, res, "social_login")
}

func (s *Store) establish(ctx context.Context, res *apiclient.AuthResponse, via string) (*models.Principal, error) {
	if res.Token == "" {
		return nil, fmt.Errorf("%s: %w", via, ErrMissingToken)
	}
	sess := &models.Session{Principal: res.User, Token: res.Token}
	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", via, err)
	}
	if err := storage.SetJSON(ctx, s.kv, StorageKey, sess); err != nil {
		return nil, fmt.Errorf("%s: persist session: %w", via, err)
	}

	s.mu.Lock()
	prev := principalOf(s.current)
	s.current = sess
	s.mu.Unlock()

	next := principalOf(sess)
	s.log.Info().Str("user_id", next.ID).Str("role", string(next.Role)).Str("via", via).Msg("session established")
	s.notify(ctx, prev, next)
	return next, nil
}

// Logout drops the session locally. The backend token is not revoked.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := principalOf(s.current)
	s.current = nil
	s.mu.Unlock()

	err := s.kv.Delete(ctx, StorageKey)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to delete session snapshot")
		err = fmt.Errorf("logout: %w", err)
	}
	if prev != nil {
		s.log.Info().Str("user_id", prev.ID).Msg("session closed")
	}
	s.notify(ctx, prev, nil)
	return err
}

// Principal returns a copy of the current principal, or nil.
func (s *Store) Principal() *models.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return principalOf(s.current)
}

// Token satisfies apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Pending is true until Restore has run.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// ExpiresAt is the token's expiry when the token carries one.
func (s *Store) ExpiresAt() (time.Time, bool) {
	return tokens.ExpiresAt(s.Token())
}

// Expired reports whether the token's expiry has passed at now. Tokens
// without an expiry never expire here; the backend still has the last word.
func (s *Store) Expired(now time.Time) bool {
	return tokens.Expired(s.Token(), now)
}

func (s *Store) notify(ctx context.Context, prev, next *models.Principal) {
	if prev == nil && next == nil {
		return
	}
	s.mu.RLock()
	ls := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		ls = append(ls, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(ctx, prev, next)
	}
}

func principalOf(sess *models.Session) *models.Principal {
	if sess == nil {
		return nil
	}
	p := sess.Principal
	return &p
}
