package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/audictl/internal/fakeapi"
	"github.com/me/audictl/internal/guard"
	"github.com/me/audictl/internal/logging"
	"github.com/me/audictl/internal/session"
	"github.com/me/audictl/pkg/model"
)

// testEnv is a fake booking API plus an isolated session file.
type testEnv struct {
	srv         *fakeapi.Server
	url         string
	dir         string
	sessionPath string

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := fakeapi.New(fakeapi.DefaultConfig(), logging.Discard())
	require.NoError(t, srv.Seed("admin@example.com", "admin-pw"))
	_, err := srv.AddUser("alice", "alice@example.com", "alice-pw", model.RoleUser)
	require.NoError(t, err)

	dir := t.TempDir()
	e := &testEnv{
		srv:         srv,
		dir:         dir,
		sessionPath: filepath.Join(dir, "session.json"),
		hits:        map[string]int{},
		failures:    map[string]int{},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.hits[r.URL.Path]++
		fail := e.failures[r.URL.Path] > 0
		if fail {
			e.failures[r.URL.Path]--
		}
		e.mu.Unlock()
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message":"try again later"}`))
			return
		}
		srv.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	e.url = ts.URL
	return e
}

// failNext makes the next n requests to path answer 503.
func (e *testEnv) failNext(path string, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[path] = n
}

// calls returns how many requests reached path.
func (e *testEnv) calls(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[path]
}

// run executes one CLI invocation with stdin as input and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--server", e.url,
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--session-path", e.sessionPath,
	}, args...))

	err := execute(context.Background(), root)
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "audictl %s\n%s", strings.Join(args, " "), out)
	return out
}

func (e *testEnv) loginAs(t *testing.T, email, password string) string {
	t.Helper()
	return e.mustRun(t, "login", "--email", email, "--password", password)
}

func requireRedirect(t *testing.T, err error, to guard.Destination) {
	t.Helper()
	var nav *NavigationError
	require.ErrorAs(t, err, &nav)
	assert.Equal(t, to, nav.Decision.Redirect)
	assert.Contains(t, err.Error(), LandingCommand(to))

	var re *guard.RedirectError
	assert.ErrorAs(t, err, &re)
}

func TestLogin_LandsByRole(t *testing.T) {
	e := newTestEnv(t)

	out := e.loginAs(t, "alice@example.com", "alice-pw")
	assert.Contains(t, out, "Logged in as alice.")
	assert.Contains(t, out, "Next: audictl auditoriums list")

	info, err := os.Stat(e.sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = e.run(t, "", "login", "--email", "alice@example.com", "--password", "alice-pw")
	requireRedirect(t, err, guard.UserHome)

	e.mustRun(t, "logout")
	out = e.loginAs(t, "admin@example.com", "admin-pw")
	assert.Contains(t, out, "Next: audictl admin stats")
}

func TestLogin_PromptsForMissingFields(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "alice@example.com\nalice-pw\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in as alice.")
}

func TestLogin_PasswordReadWithoutEchoOnTerminal(t *testing.T) {
	e := newTestEnv(t)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	_, err = w.WriteString("alice@example.com\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var secretFD int
	origTerm, origRead := isTerminal, readPassword
	isTerminal = func(fd int) bool { return fd == int(r.Fd()) }
	readPassword = func(fd int) ([]byte, error) {
		secretFD = fd
		return []byte("alice-pw"), nil
	}
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(r)
	root.SetArgs([]string{
		"--server", e.url,
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--session-path", e.sessionPath,
		"login",
	})
	require.NoError(t, execute(context.Background(), root))

	assert.Equal(t, int(r.Fd()), secretFD)
	assert.Contains(t, out.String(), "Password: ")
	assert.Contains(t, out.String(), "Logged in as alice.")
	assert.NotContains(t, out.String(), "alice-pw")
}

func TestLogin_FailureSavesNothing(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "", "login", "--email", "alice@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")

	_, statErr := os.Stat(e.sessionPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, e.mustRun(t, "whoami"), "Not logged in.")
}

func TestGuards(t *testing.T) {
	e := newTestEnv(t)

	// Anonymous.
	_, err := e.run(t, "", "auditoriums", "list")
	requireRedirect(t, err, guard.Login)
	_, err = e.run(t, "", "admin", "stats")
	requireRedirect(t, err, guard.Login)
	_, err = e.run(t, "", "book", "1", "--start", "2024-06-01 10:00", "--purpose", "x", "--yes")
	requireRedirect(t, err, guard.Login)

	// Standard user.
	e.loginAs(t, "alice@example.com", "alice-pw")
	_, err = e.run(t, "", "admin", "bookings", "list")
	requireRedirect(t, err, guard.UserHome)
	_, err = e.run(t, "", "register", "verify", "--email", "x@example.com", "--otp", "1")
	requireRedirect(t, err, guard.UserHome)
	e.mustRun(t, "auditoriums", "list")

	// Administrator.
	e.mustRun(t, "logout")
	e.loginAs(t, "admin@example.com", "admin-pw")
	_, err = e.run(t, "", "bookings", "list")
	requireRedirect(t, err, guard.AdminHome)
	_, err = e.run(t, "", "password", "forgot", "--email", "admin@example.com")
	requireRedirect(t, err, guard.AdminHome)
	e.mustRun(t, "admin", "stats")
}

func TestGuards_UnparseableToken(t *testing.T) {
	e := newTestEnv(t)
	st := session.NewFileStore(e.sessionPath, logging.Discard())
	require.NoError(t, st.Save(context.Background(), model.Session{Token: "garbage", Role: "ADMIN", Username: "mallory"}))

	_, err := e.run(t, "", "admin", "stats")
	requireRedirect(t, err, guard.Login)
	_, err = e.run(t, "", "auditoriums", "list")
	requireRedirect(t, err, guard.Login)

	assert.Contains(t, e.mustRun(t, "whoami"), "unreadable")

	// Login stays reachable and replaces the broken session.
	e.loginAs(t, "alice@example.com", "alice-pw")
	out := e.mustRun(t, "whoami")
	assert.Contains(t, out, "User: alice")
	assert.Contains(t, out, "Role: USER")
}

func TestAuditorium_Browse(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "alice@example.com", "alice-pw")

	out := e.mustRun(t, "auditoriums", "list")
	assert.Contains(t, out, "Main Auditorium")
	assert.Contains(t, out, "Seminar Hall")
	assert.NotContains(t, out, "Open Air Theatre")

	out = e.mustRun(t, "auditoriums", "list", "--search", "block b")
	assert.Contains(t, out, "Seminar Hall")
	assert.NotContains(t, out, "Main Auditorium")

	out = e.mustRun(t, "auditoriums", "show", "2")
	assert.Contains(t, out, "Auditorium: Seminar Hall")
	assert.Contains(t, out, "Projector")
	assert.NotContains(t, out, "Green Room")

	_, err := e.run(t, "", "auditoriums", "show", "99")
	assert.True(t, model.IsNotFound(err))
}

func TestBook_Flow(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "alice@example.com", "alice-pw")

	_, err := e.run(t, "", "book", "1", "--start", "2024-06-01 10:00", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please fill all the details")

	out, err := e.run(t, "n\n", "book", "1", "--start", "2024-06-01 10:00", "--purpose", "Workshop")
	require.NoError(t, err)
	assert.Contains(t, out, "End:        2024-06-01 12:00")
	assert.Contains(t, out, "Booking not sent.")
	assert.Contains(t, e.mustRun(t, "bookings", "list"), "No bookings found.")

	out, err = e.run(t, "y\n", "book", "1", "--start", "2024-06-01 10:00", "--purpose", "Workshop")
	require.NoError(t, err)
	assert.Contains(t, out, "Booking request sent")

	_, err = e.run(t, "", "book", "1", "--start", "2024-06-01 11:00", "--purpose", "Overlap", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already booked")

	out = e.mustRun(t, "bookings", "list")
	assert.Contains(t, out, "Main Auditorium")
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "Workshop")
	assert.NotContains(t, out, "Overlap")
}

func TestBook_FailureOffersRetry(t *testing.T) {
	const create = "/user/bookings/create"
	e := newTestEnv(t)
	e.loginAs(t, "alice@example.com", "alice-pw")

	e.failNext(create, 1)
	out, err := e.run(t, "y\ny\n", "book", "1", "--start", "2024-06-01 10:00", "--purpose", "Workshop")
	require.NoError(t, err)
	assert.Contains(t, out, "Booking failed: ")
	assert.Contains(t, out, "try again later")
	assert.Contains(t, out, "Try again?")
	assert.Contains(t, out, "Booking request sent")
	assert.Equal(t, 2, e.calls(create))

	e.failNext(create, 1)
	out, err = e.run(t, "y\nn\n", "book", "1", "--start", "2024-06-01 14:00", "--purpose", "Seminar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "try again later")
	assert.Contains(t, out, "Try again?")
	assert.Equal(t, 3, e.calls(create), "declining the retry sends nothing more")

	list := e.mustRun(t, "bookings", "list")
	assert.Contains(t, list, "Workshop")
	assert.NotContains(t, list, "Seminar")
}

func TestBookings_CancelOnlyPending(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "alice@example.com", "alice-pw")
	e.mustRun(t, "book", "1", "--start", "2024-06-01 10:00", "--purpose", "Workshop", "--yes")
	e.mustRun(t, "book", "2", "--start", "2024-06-02 10:00", "--purpose", "Seminar", "--yes")

	e.mustRun(t, "logout")
	e.loginAs(t, "admin@example.com", "admin-pw")
	out := e.mustRun(t, "admin", "bookings", "approve", "1")
	assert.Contains(t, out, "Booking 1 approved.")
	_, err := e.run(t, "", "admin", "bookings", "reject", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only PENDING")

	out = e.mustRun(t, "admin", "bookings", "list", "--status", "pending")
	assert.Contains(t, out, "Seminar")
	assert.NotContains(t, out, "Workshop")
	out = e.mustRun(t, "admin", "bookings", "list", "--user", "ALI")
	assert.Contains(t, out, "alice")
	assert.Contains(t, e.mustRun(t, "admin", "bookings", "list", "--user", "bob"), "No bookings found.")
	_, err = e.run(t, "", "admin", "bookings", "list", "--status", "DELETED")
	require.Error(t, err)

	e.mustRun(t, "logout")
	e.loginAs(t, "alice@example.com", "alice-pw")
	_, err = e.run(t, "", "bookings", "cancel", "1", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is APPROVED")

	out, err = e.run(t, "no\n", "bookings", "cancel", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Booking kept.")

	out = e.mustRun(t, "bookings", "cancel", "2", "--yes")
	assert.Contains(t, out, "Booking 2 cancelled.")
	assert.Contains(t, e.mustRun(t, "bookings", "list"), "CANCELLED")
}

func TestAdmin_AuditoriumsAndStats(t *testing.T) {
	e := newTestEnv(t)
	e.loginAs(t, "admin@example.com", "admin-pw")

	_, err := e.run(t, "", "admin", "auditoriums", "add", "--name", "Lab", "--location", "Block D", "--capacity", "40", "--amenity", "teleporter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown amenity")

	e.mustRun(t, "admin", "auditoriums", "add", "--name", "Lab", "--location", "Block D", "--capacity", "40", "--amenity", "wifi,projector")
	out := e.mustRun(t, "admin", "auditoriums", "list")
	assert.Contains(t, out, "Open Air Theatre")
	assert.Contains(t, out, "Lab")

	e.mustRun(t, "admin", "auditoriums", "update", "4", "--capacity", "60", "--active=false", "--no-amenity", "wifi")
	out = e.mustRun(t, "admin", "auditoriums", "list", "--search", "lab")
	assert.Contains(t, out, "60")
	assert.Contains(t, out, "no")

	out, err = e.run(t, "", "admin", "auditoriums", "delete", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Auditorium kept.")
	e.mustRun(t, "admin", "auditoriums", "delete", "4", "--yes")
	assert.NotContains(t, e.mustRun(t, "admin", "auditoriums", "list"), "Lab")

	out = e.mustRun(t, "admin", "stats")
	assert.Contains(t, out, "Total:     3")
	assert.Contains(t, out, "Inactive:  1")
	assert.Contains(t, out, "Most booked: -")

	out = e.mustRun(t, "admin", "users", "list")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "ADMIN")
}

func TestRegister_VerifyLater(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "register", "--username", "bob", "--email", "bob@example.com", "--password", "bob-pw")
	assert.Contains(t, out, "Verify later with: audictl register verify --email bob@example.com")

	_, err := e.run(t, "", "login", "--email", "bob@example.com", "--password", "bob-pw")
	require.Error(t, err, "unverified")

	code, ok := e.srv.PendingOTP("bob@example.com")
	require.True(t, ok)
	e.mustRun(t, "register", "verify", "--email", "bob@example.com", "--otp", code)

	out = e.loginAs(t, "bob@example.com", "bob-pw")
	assert.Contains(t, out, "Logged in as bob.")
}

func TestRegister_InteractiveResendCooldown(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.run(t, "resend\nwrong\n", "register", "--username", "carol", "--email", "carol@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "please wait")
	assert.Contains(t, out, "Verification failed")
	assert.Contains(t, out, "Verify later with")
}

func TestPasswordReset_Flow(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun(t, "password", "forgot", "--email", "alice@example.com")
	code, ok := e.srv.PendingOTP("alice@example.com")
	require.True(t, ok)
	e.mustRun(t, "password", "verify", "--email", "alice@example.com", "--otp", code)
	out, err := e.run(t, "new-pw\n", "password", "reset", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Next: audictl login")

	e.loginAs(t, "alice@example.com", "new-pw")
}

func TestSQLiteSessionBackend(t *testing.T) {
	e := newTestEnv(t)
	e.sessionPath = filepath.Join(e.dir, "session.db")

	_, err := e.run(t, "", "--session-backend", "sqlite", "login", "--email", "alice@example.com", "--password", "alice-pw")
	require.NoError(t, err)
	out, err := e.run(t, "", "--session-backend", "sqlite", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "User: alice")
}

func TestSQLiteSessionBackend_ClosedAfterFailure(t *testing.T) {
	e := newTestEnv(t)
	e.sessionPath = filepath.Join(e.dir, "session.db")

	_, err := e.run(t, "", "--session-backend", "sqlite", "login", "--email", "alice@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Nil(t, store, "store is released after a failing command")
	assert.NoFileExists(t, e.sessionPath+"-wal", "closing the last connection checkpoints the WAL")

	_, err = e.run(t, "", "--session-backend", "sqlite", "login", "--email", "alice@example.com", "--password", "alice-pw")
	require.NoError(t, err)
	out, err := e.run(t, "", "--session-backend", "sqlite", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "User: alice")
}

func TestConfigFile(t *testing.T) {
	e := newTestEnv(t)
	cfg := "server: " + e.url + "\nsession_backend: file\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "config.yaml"), []byte(cfg), 0o600))

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{
		"--config", filepath.Join(e.dir, "config.yaml"),
		"--session-path", e.sessionPath,
		"login", "--email", "alice@example.com", "--password", "alice-pw",
	})
	require.NoError(t, execute(context.Background(), root))
	assert.Contains(t, out.String(), "Logged in as alice.")
}
