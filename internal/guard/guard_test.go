package guard

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/audictl/internal/session"
	"github.com/me/audictl/pkg/model"
)

func token(t *testing.T, role string) string {
	t.Helper()
	c := jwt.MapClaims{"sub": "someone"}
	if role != "" {
		c["role"] = role
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestEvaluate(t *testing.T) {
	admin := token(t, "ADMIN")
	user := token(t, "USER")
	noRole := token(t, "")
	malformed := "not-a-jwt"

	tests := []struct {
		name  string
		guard Guard
		sess  model.Session
		want  Decision
	}{
		{"auth/no token", Guard{Kind: Authenticated}, model.Session{}, Decision{Redirect: Login}},
		{"auth/stale role only", Guard{Kind: Authenticated}, model.Session{Role: "ADMIN", Username: "x"}, Decision{Redirect: Login}},
		{"auth/user", Guard{Kind: Authenticated}, model.Session{Token: user}, Decision{Allow: true}},
		{"auth/admin", Guard{Kind: Authenticated}, model.Session{Token: admin}, Decision{Allow: true}},
		{"auth/admin redirected", Guard{Kind: Authenticated, RedirectAdmins: true}, model.Session{Token: admin}, Decision{Redirect: AdminHome}},
		{"auth/user not redirected", Guard{Kind: Authenticated, RedirectAdmins: true}, model.Session{Token: user}, Decision{Allow: true}},
		{"auth/malformed", Guard{Kind: Authenticated}, model.Session{Token: malformed}, Decision{Redirect: Login}},
		{"auth/no role claim", Guard{Kind: Authenticated}, model.Session{Token: noRole}, Decision{Redirect: Login}},

		{"anon/no token", Guard{Kind: Anonymous}, model.Session{}, Decision{Allow: true}},
		{"anon/user", Guard{Kind: Anonymous}, model.Session{Token: user}, Decision{Redirect: UserHome}},
		{"anon/admin", Guard{Kind: Anonymous}, model.Session{Token: admin}, Decision{Redirect: AdminHome}},
		{"anon/malformed", Guard{Kind: Anonymous}, model.Session{Token: malformed}, Decision{Allow: true}},

		{"admin/no token", Guard{Kind: Admin}, model.Session{}, Decision{Redirect: Login}},
		{"admin/stale admin role", Guard{Kind: Admin}, model.Session{Role: "ADMIN"}, Decision{Redirect: Login}},
		{"admin/user", Guard{Kind: Admin}, model.Session{Token: user}, Decision{Redirect: UserHome}},
		{"admin/user with stored admin role", Guard{Kind: Admin}, model.Session{Token: user, Role: "ADMIN"}, Decision{Redirect: UserHome}},
		{"admin/admin", Guard{Kind: Admin}, model.Session{Token: admin}, Decision{Allow: true}},
		{"admin/malformed", Guard{Kind: Admin}, model.Session{Token: malformed}, Decision{Redirect: Login}},
		{"admin/no role claim", Guard{Kind: Admin}, model.Session{Token: noRole}, Decision{Redirect: Login}},

		{"public/anything", Guard{}, model.Session{Token: malformed}, Decision{Allow: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.guard.Evaluate(tt.sess)
			assert.Equal(t, tt.want.Allow, got.Allow)
			assert.Equal(t, tt.want.Redirect, got.Redirect)
			if !got.Allow {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

// Unparseable tokens must behave exactly like an absent token under the
// authenticated and admin guards.
func TestEvaluate_UnparseableEqualsAbsent(t *testing.T) {
	bad := []string{"a.b", "x.y.z", "....", token(t, "")}
	for _, g := range []Guard{{Kind: Authenticated}, {Kind: Admin}, {Kind: Authenticated, RedirectAdmins: true}} {
		absent := g.Evaluate(model.Session{})
		for _, tok := range bad {
			got := g.Evaluate(model.Session{Token: tok, Role: "ADMIN"})
			assert.Equal(t, absent.Allow, got.Allow, "%s %q", g.Kind, tok)
			assert.Equal(t, absent.Redirect, got.Redirect, "%s %q", g.Kind, tok)
		}
	}
}

// Admin access depends on the role claim alone, whatever the header or the
// registered claims look like.
func TestEvaluate_AdminFromPayloadOnly(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	tokens := []string{
		seg(`{"typ":"JWT"}`) + "." + seg(`{"role":"ADMIN"}`) + ".sig",
		seg(`{"alg":"XYZ"}`) + "." + seg(`{"role":"ADMIN"}`) + ".sig",
		"garbage." + seg(`{"role":"ADMIN"}`) + ".sig",
		seg(`{"alg":"HS256"}`) + "." + seg(`{"sub":42,"role":"ADMIN"}`) + ".sig",
		seg(`{"alg":"HS256"}`) + "." + seg(`{"exp":"soon","role":"ADMIN"}`) + ".sig",
	}
	for _, tok := range tokens {
		got := Guard{Kind: Admin}.Evaluate(model.Session{Token: tok})
		assert.True(t, got.Allow, tok)
		assert.Equal(t, AdminHome, LandingForToken(tok), tok)
	}
}

func TestLanding(t *testing.T) {
	assert.Equal(t, AdminHome, Landing(model.RoleAdmin))
	assert.Equal(t, UserHome, Landing("USER"))
	assert.Equal(t, UserHome, Landing("LECTURER"))
	assert.Equal(t, AdminHome, LandingForToken(token(t, "ADMIN")))
	assert.Equal(t, Login, LandingForToken("garbage"))
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"", "authenticated", "anonymous", "admin"} {
		_, err := ParseKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseKind("superuser")
	assert.Error(t, err)
}

func TestGate_ReadsStoreFresh(t *testing.T) {
	ctx := context.Background()
	st := session.NewMemoryStore(model.Session{})
	gate := NewGate(st, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := gate.Check(ctx, "admin stats", Guard{Kind: Admin})
	var re *RedirectError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, Login, re.Decision.Redirect)
	assert.Contains(t, err.Error(), "admin stats")

	require.NoError(t, st.Save(ctx, model.Session{Token: token(t, "ADMIN")}))
	assert.NoError(t, gate.Check(ctx, "admin stats", Guard{Kind: Admin}))

	require.NoError(t, st.Clear(ctx))
	assert.Error(t, gate.Check(ctx, "admin stats", Guard{Kind: Admin}))
}

type failingStore struct{ session.MemoryStore }

func (f *failingStore) Load(context.Context) (model.Session, error) {
	return model.Session{}, errors.New("disk on fire")
}

func TestGate_LoadErrorIsAnonymous(t *testing.T) {
	gate := NewGate(&failingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.NoError(t, gate.Check(ctx, "login", Guard{Kind: Anonymous}))
	err := gate.Check(ctx, "bookings list", Guard{Kind: Authenticated})
	var re *RedirectError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, Login, re.Decision.Redirect)
}
