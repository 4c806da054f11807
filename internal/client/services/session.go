package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
	"github.com/dmitrijs2005/clouddash/internal/logging"
)

// DefaultIdleTimeout is how long a session survives without activity.
const DefaultIdleTimeout = 120 * time.Second

type SessionState int

const (
	StateLoggedOut SessionState = iota
	StateAuthenticating
	StateLoggedIn
)

func (s SessionState) String() string {
	switch s {
	case StateLoggedOut:
		return "logged out"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged in"
	default:
		return "unknown"
	}
}

// LogoutReason tells an OnLogout callback why the session ended.
type LogoutReason int

const (
	ReasonIdleTimeout LogoutReason = iota + 1
	ReasonExplicit
)

func (r LogoutReason) String() string {
	switch r {
	case ReasonIdleTimeout:
		return "idle timeout"
	case ReasonExplicit:
		return "logout"
	default:
		return "unknown"
	}
}

// SessionGuard tracks whether the user is logged in and logs them out
// after a period without activity.
//
// The guard is safe for concurrent use; the idle timer fires on its own
// goroutine.
type SessionGuard struct {
	api      client.AuthAPI
	store    SessionStore
	clock    Clock
	idle     time.Duration
	log      logging.Logger
	onLogout func(LogoutReason)

	mu      sync.Mutex
	state   SessionState
	session models.Session
	timer   Timer
	// gen identifies the live timer; callbacks of replaced timers see a
	// different value and return without effect.
	gen uint64
}

type GuardOption func(*SessionGuard)

func WithClock(c Clock) GuardOption {
	return func(g *SessionGuard) { g.clock = c }
}

// WithIdleTimeout overrides DefaultIdleTimeout. Non-positive values are ignored.
func WithIdleTimeout(d time.Duration) GuardOption {
	return func(g *SessionGuard) {
		if d > 0 {
			g.idle = d
		}
	}
}

func WithGuardLogger(l logging.Logger) GuardOption {
	return func(g *SessionGuard) { g.log = l }
}

// WithOnLogout registers fn to be called after every transition to
// logged out caused by idle expiry or Logout. fn runs without the guard's
// lock held and may call back into the guard.
func WithOnLogout(fn func(LogoutReason)) GuardOption {
	return func(g *SessionGuard) { g.onLogout = fn }
}

func NewSessionGuard(api client.AuthAPI, store SessionStore, opts ...GuardOption) *SessionGuard {
	g := &SessionGuard{
		api:   api,
		store: store,
		clock: SystemClock,
		idle:  DefaultIdleTimeout,
		log:   logging.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// SubmitCredentials authenticates against the backend. Any negative reply or
// transport failure yields ErrInvalidCredentials; the backend detail is only
// logged.
func (g *SessionGuard) SubmitCredentials(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrValidation
	}

	g.mu.Lock()
	if g.state == StateAuthenticating {
		g.mu.Unlock()
		return ErrOperationInProgress
	}
	g.stopLocked()
	g.state = StateAuthenticating
	g.mu.Unlock()

	res, err := g.api.Authenticate(ctx, username, password)
	if err != nil || !res.OK() {
		g.mu.Lock()
		g.state = StateLoggedOut
		g.session = models.Session{}
		g.mu.Unlock()

		g.log.Debug(ctx, "authentication rejected", "user", username, "error", err, "message", res.Message)
		return ErrInvalidCredentials
	}

	user := models.UserInfo{Username: username}
	if res.User != nil {
		user = *res.User
		if user.Username == "" {
			user.Username = username
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = StateLoggedIn
	g.session = models.Session{Authenticated: true, User: user, LastActivityAt: g.clock.Now()}
	g.armLocked()

	if err := g.store.Save(ctx, g.session); err != nil {
		g.log.Warn(ctx, "session not persisted", "error", err)
	}
	g.log.Info(ctx, "logged in", "user", user.Username)
	return nil
}

// Touch records user activity and restarts the idle timer. It does nothing
// unless the user is logged in.
func (g *SessionGuard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateLoggedIn {
		return
	}
	g.session.LastActivityAt = g.clock.Now()
	g.armLocked()
}

// Logout ends the session and clears the durable store. It returns
// ErrNotLoggedIn when there was no session, after clearing anyway.
func (g *SessionGuard) Logout(ctx context.Context) error {
	g.mu.Lock()
	wasIn := g.state == StateLoggedIn
	g.endLocked(ctx)
	cb := g.onLogout
	g.mu.Unlock()

	if !wasIn {
		return ErrNotLoggedIn
	}
	g.log.Info(ctx, "logged out", "reason", ReasonExplicit)
	if cb != nil {
		cb(ReasonExplicit)
	}
	return nil
}

// Restore resumes a session persisted by an earlier run and reports
// whether one was found.
func (g *SessionGuard) Restore(ctx context.Context) bool {
	sess, ok, err := g.store.Load(ctx)
	if err != nil {
		g.log.Warn(ctx, "session not restored", "error", err)
		return false
	}
	if !ok || !sess.Authenticated {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateLoggedOut {
		return g.state == StateLoggedIn
	}
	sess.LastActivityAt = g.clock.Now()
	g.session = sess
	g.state = StateLoggedIn
	g.armLocked()

	g.log.Info(ctx, "session restored", "user", sess.User.Username)
	return true
}

func (g *SessionGuard) State() SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *SessionGuard) IsAuthenticated() bool {
	return g.State() == StateLoggedIn
}

// Session returns a copy of the current session.
func (g *SessionGuard) Session() models.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Require returns ErrNotLoggedIn unless a session is active.
func (g *SessionGuard) Require() error {
	if !g.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// UserName is the name sent with list and upload calls, empty when unknown.
func (g *SessionGuard) UserName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateLoggedIn {
		return ""
	}
	if g.session.User.Name != "" {
		return g.session.User.Name
	}
	return g.session.User.Username
}

func (g *SessionGuard) IdleTimeout() time.Duration {
	return g.idle
}

func (g *SessionGuard) armLocked() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.gen++
	gen := g.gen
	g.timer = g.clock.AfterFunc(g.idle, func() { g.expire(gen) })
}

func (g *SessionGuard) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.gen++
}

// endLocked moves to logged out and wipes the durable session.
func (g *SessionGuard) endLocked(ctx context.Context) {
	g.stopLocked()
	g.state = StateLoggedOut
	g.session = models.Session{}
	if err := g.store.Clear(ctx); err != nil {
		g.log.Warn(ctx, "session store not cleared", "error", err)
	}
}

// expire is the idle timer callback. It inspects the state as it is now,
// not as it was when the timer was armed.
func (g *SessionGuard) expire(gen uint64) {
	ctx := context.Background()

	g.mu.Lock()
	if gen != g.gen || g.state != StateLoggedIn {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	g.endLocked(ctx)
	cb := g.onLogout
	g.mu.Unlock()

	g.log.Info(ctx, "logged out", "reason", ReasonIdleTimeout)
	if cb != nil {
		cb(ReasonIdleTimeout)
	}
}
