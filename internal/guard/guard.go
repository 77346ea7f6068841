// Package guard decides whether the current session may enter a location
// (a command or page), and where to send it otherwise.
//
// Guards are convenience only. They save a round-trip to an endpoint that
// would refuse the request anyway; the server stays authoritative.
package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/audictl/internal/claims"
	"github.com/me/audictl/internal/session"
	"github.com/me/audictl/pkg/model"
)

// Kind selects a guard variant.
type Kind string

const (
	// Public locations are always allowed.
	Public Kind = ""
	// Authenticated locations require a token whose claims parse.
	Authenticated Kind = "authenticated"
	// Anonymous locations (login, registration) require no valid session.
	Anonymous Kind = "anonymous"
	// Admin locations require a token carrying the administrator role.
	Admin Kind = "admin"
)

// ParseKind converts an annotation value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Public, Authenticated, Anonymous, Admin:
		return k, nil
	}
	return "", fmt.Errorf("unknown guard %q", s)
}

// Destination is where a refused navigation is sent.
type Destination string

const (
	// Login is the login location.
	Login Destination = "login"
	// UserHome is the landing location for non-admin sessions.
	UserHome Destination = "user-home"
	// AdminHome is the landing location for administrators.
	AdminHome Destination = "admin-home"
)

// Decision is the outcome of evaluating a guard.
type Decision struct {
	Allow    bool
	Redirect Destination
	Reason   string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(to Destination, reason string) Decision {
	return Decision{Redirect: to, Reason: reason}
}

// Guard is one guard variant with its options.
type Guard struct {
	Kind Kind
	// RedirectAdmins sends administrator sessions on an Authenticated
	// location to AdminHome. User-area screens set it.
	RedirectAdmins bool
}

// Evaluate applies the guard to a session snapshot. It is pure: the caller
// supplies a fresh snapshot on every navigation.
//
// Token presence is checked before role, and an unparseable token is
// always treated as no session: it fails closed to Login, never open.
func (g Guard) Evaluate(sess model.Session) Decision {
	switch g.Kind {
	case Authenticated:
		if !sess.HasToken() {
			return redirect(Login, "not logged in")
		}
		role, err := claims.Role(sess.Token)
		if err != nil {
			return redirect(Login, "session token unreadable")
		}
		if g.RedirectAdmins && role.IsAdmin() {
			return redirect(AdminHome, "administrators use the admin area")
		}
		return allow()

	case Anonymous:
		if !sess.HasToken() {
			return allow()
		}
		role, err := claims.Role(sess.Token)
		if err != nil {
			return allow()
		}
		return redirect(Landing(role), "already logged in")

	case Admin:
		if !sess.HasToken() {
			return redirect(Login, "not logged in")
		}
		role, err := claims.Role(sess.Token)
		if err != nil {
			return redirect(Login, "session token unreadable")
		}
		if !role.IsAdmin() {
			return redirect(UserHome, "administrator role required")
		}
		return allow()

	default:
		return allow()
	}
}

// Landing returns the home destination for a role.
func Landing(role model.Role) Destination {
	if role.IsAdmin() {
		return AdminHome
	}
	return UserHome
}

// LandingForToken returns the home destination for a token. Unparseable
// tokens land on Login.
func LandingForToken(token string) Destination {
	role, err := claims.Role(token)
	if err != nil {
		return Login
	}
	return Landing(role)
}

// RedirectError reports a refused navigation.
type RedirectError struct {
	Location string
	Decision Decision
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s: %s (go to %s)", e.Location, e.Decision.Reason, e.Decision.Redirect)
}

// Gate evaluates guards against a Store, reading the session fresh on
// every Check.
type Gate struct {
	store  session.Store
	logger *slog.Logger
}

// NewGate creates a Gate over st.
func NewGate(st session.Store, logger *slog.Logger) *Gate {
	return &Gate{store: st, logger: logger.With("component", "guard")}
}

// Check evaluates g for location. A session that cannot be loaded counts
// as anonymous. A refusal is returned as *RedirectError.
func (gt *Gate) Check(ctx context.Context, location string, g Guard) error {
	sess, err := gt.store.Load(ctx)
	if err != nil {
		gt.logger.Warn("session unreadable, treating as logged out", "error", err)
		sess = model.Session{}
	}

	d := g.Evaluate(sess)
	gt.logger.Debug("guard", "location", location, "kind", string(g.Kind), "allow", d.Allow, "redirect", string(d.Redirect))
	if d.Allow {
		return nil
	}
	return &RedirectError{Location: location, Decision: d}
}
