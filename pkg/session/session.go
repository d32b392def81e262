// Package session holds the signed-in user's backend credentials.
//
// A Manager owns the lifecycle: Load initialises a Session from the
// persisted Store, and Login and Logout are the only operations that change
// it. Everyone else gets a read-only *Session. A backend 401/403 revokes
// the session through Session.Revoke, which delegates to the Manager.
//
// Usage (web):
//
//	mgr := session.NewManager(session.NewCacheStore(store, cipher), bus, session.DefaultOptions())
//	r.Use(mgr.Middleware())
//	sess := session.FromCtx(r.Context())
//
// Usage (CLI):
//
//	mgr := session.NewManager(database.NewSessionStore(db), bus, opts)
//	sess, _ := mgr.Load(ctx, session.LocalID)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/auth"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/metrics"
)

// Event names fired on the Manager's bus.
const (
	EventLogin  = "session.login"
	EventLogout = "session.logout"
)

// LocalID is the fixed session id used by single-user clients.
const LocalID = "default"

// Ended is the payload of EventLogout.
type Ended struct {
	ID     string
	Reason string // "logout" | "revoked"
}

// Record is what a Store persists. Keys mirror the backend contract:
// token and role, plus the expiry the BFF derived.
type Record struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists session records by id.
type Store interface {
	Read(ctx context.Context, id string) (Record, bool, error)
	Write(ctx context.Context, id string, rec Record) error
	Remove(ctx context.Context, id string) error
}

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Path       string

	// RotateOnLogin issues a fresh id on every login. Web sessions rotate;
	// single-user local sessions keep LocalID.
	RotateOnLogin bool
}

// DefaultOptions returns web options read from config.
func DefaultOptions() Options {
	return Options{
		CookieName:    config.SessionCookie(),
		TTL:           config.SessionTTL(),
		Secure:        config.SessionSecure(),
		Path:          "/",
		RotateOnLogin: true,
	}
}

// ------------------- Session -------------------

// Session is a read-only view of one user's credentials.
type Session struct {
	mu        sync.RWMutex
	id        string
	token     string
	role      string
	expiresAt time.Time
	mgr       *Manager
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Token returns the bearer token, or "" for anonymous sessions.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Revoke ends the session because the backend rejected its credentials.
// Repeated calls leave the same end state.
func (s *Session) Revoke(ctx context.Context) error {
	if s.mgr == nil {
		s.clear()
		return nil
	}
	return s.mgr.end(ctx, s, "revoked")
}

func (s *Session) clear() (wasAuthenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAuthenticated = s.token != ""
	s.token, s.role, s.expiresAt = "", "", time.Time{}
	return wasAuthenticated
}

// ------------------- Manager -------------------

// Manager is the only writer of session state.
type Manager struct {
	store Store
	bus   *event.Bus
	opts  Options
	now   func() time.Time
}

// NewManager wires a Manager. bus may be nil.
func NewManager(store Store, bus *event.Bus, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Manager{store: store, bus: bus, opts: opts, now: time.Now}
}

// Options returns the manager's configuration.
func (m *Manager) Options() Options { return m.opts }

// Load restores the session stored under id. Unknown or expired ids yield
// an anonymous session; an empty id gets a fresh random one.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		nid, err := newID()
		if err != nil {
			return nil, err
		}
		return &Session{id: nid, mgr: m}, nil
	}

	s := &Session{id: id, mgr: m}

	rec, ok, err := m.store.Read(ctx, id)
	if err != nil {
		return s, fmt.Errorf("session: read: %w", err)
	}
	if !ok || rec.Token == "" {
		return s, nil
	}
	if !rec.ExpiresAt.IsZero() && m.now().After(rec.ExpiresAt) {
		_ = m.store.Remove(ctx, id)
		return s, nil
	}

	s.token, s.role, s.expiresAt = rec.Token, rec.Role, rec.ExpiresAt
	return s, nil
}

// Login stores token and role on s and persists them.
func (m *Manager) Login(ctx context.Context, s *Session, token, role string) error {
	if token == "" {
		return fmt.Errorf("session: empty token")
	}

	expiresAt := m.now().Add(m.opts.TTL)
	if exp, err := auth.Expiry(token); err == nil && exp.After(m.now()) {
		expiresAt = exp
	}

	s.mu.Lock()
	oldID := s.id
	if m.opts.RotateOnLogin || s.id == "" {
		nid, err := newID()
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.id = nid
	}
	s.token, s.role, s.expiresAt = token, role, expiresAt
	id := s.id
	s.mu.Unlock()

	if oldID != "" && oldID != id {
		_ = m.store.Remove(ctx, oldID)
	}
	if err := m.store.Write(ctx, id, Record{Token: token, Role: role, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}

	metrics.SessionEvents.WithLabelValues("login").Inc()
	m.bus.Fire(EventLogin, id)
	return nil
}

// Logout clears s unconditionally.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	return m.end(ctx, s, "logout")
}

func (m *Manager) end(ctx context.Context, s *Session, reason string) error {
	was := s.clear()
	id := s.ID()

	if err := m.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("session: remove: %w", err)
	}
	if !was {
		return nil
	}

	metrics.SessionEvents.WithLabelValues(reason).Inc()
	m.bus.Fire(EventLogout, Ended{ID: id, Reason: reason})
	return nil
}

// ------------------- Context -------------------

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromCtx returns the request's session, or a detached anonymous one.
func FromCtx(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}

// ------------------- Middleware -------------------

// Middleware loads the session named by the cookie into the request context
// and keeps the cookie in step with it: a login sets it, a logout or
// revocation clears it.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(m.opts.CookieName); err == nil {
				id = c.Value
			}

			s, err := m.Load(r.Context(), id)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
				if s == nil {
					http.Error(w, "session unavailable", http.StatusServiceUnavailable)
					return
				}
			}

			cw := &cookieWriter{ResponseWriter: w, mgr: m, sess: s, hadCookie: id != "", origID: s.ID()}
			next.ServeHTTP(cw, r.WithContext(WithSession(r.Context(), s)))
			cw.sync()
		})
	}
}

type cookieWriter struct {
	http.ResponseWriter
	mgr       *Manager
	sess      *Session
	hadCookie bool
	origID    string
	synced    bool
}

func (cw *cookieWriter) WriteHeader(code int) {
	cw.sync()
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cookieWriter) Write(b []byte) (int, error) {
	cw.sync()
	return cw.ResponseWriter.Write(b)
}

func (cw *cookieWriter) sync() {
	if cw.synced {
		return
	}
	cw.synced = true

	switch {
	case cw.sess.Authenticated() && (!cw.hadCookie || cw.sess.ID() != cw.origID):
		cw.mgr.setCookie(cw.ResponseWriter, cw.sess)
	case !cw.sess.Authenticated() && cw.hadCookie:
		cw.mgr.clearCookie(cw.ResponseWriter)
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, s *Session) {
	maxAge := int(s.ExpiresAt().Sub(m.now()).Seconds())
	if maxAge <= 0 {
		maxAge = int(m.opts.TTL.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.ID(),
		Path:     m.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     m.opts.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
