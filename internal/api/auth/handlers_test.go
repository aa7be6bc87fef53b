package auth

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/db"
	"github.com/codr1/axl-portal/internal/ratelimit"
	"github.com/codr1/axl-portal/internal/session"
	"github.com/codr1/axl-portal/internal/testutil"
)

type fakeBackend struct {
	loginErr    error
	registerErr error
	logins      []axl.LoginRequest
	registers   []axl.RegisterRequest
}

func (f *fakeBackend) Login(ctx context.Context, req axl.LoginRequest) (*axl.LoginResponse, error) {
	f.logins = append(f.logins, req)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &axl.LoginResponse{
		Token: "jwt-ash",
		User:  axl.Account{UserID: "u1", Username: "ash", Role: axl.RolePlayer},
	}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req axl.RegisterRequest) (*axl.RegisterResponse, error) {
	f.registers = append(f.registers, req)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &axl.RegisterResponse{User: axl.Account{UserID: "u2", Username: req.Username}}, nil
}

type dropRecorder struct {
	dropped      []string
	droppedUsers []string
	kept         []string
}

func (d *dropRecorder) Drop(id string) { d.dropped = append(d.dropped, id) }

func (d *dropRecorder) DropUser(userID, keep string) int {
	d.droppedUsers = append(d.droppedUsers, userID)
	d.kept = append(d.kept, keep)
	return 1
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type authTest struct {
	db        *db.DB
	backend   *fakeBackend
	sessions  *session.Manager
	providers *dropRecorder
}

func setupAuthTest(t *testing.T, limits *ratelimit.Config) authTest {
	t.Helper()

	prevDeps := deps
	t.Cleanup(func() { deps = prevDeps })

	database := testutil.NewTestDB(t)
	at := authTest{
		db:        database,
		backend:   &fakeBackend{},
		sessions:  session.NewManager(database, session.WithSecureCookies(false)),
		providers: &dropRecorder{},
	}
	var limiter *ratelimit.Limiter
	if limits != nil {
		limiter = ratelimit.New(limits)
		t.Cleanup(limiter.Close)
	}
	InitHandlers(Deps{
		Backend:   at.backend,
		Sessions:  at.sessions,
		Providers: at.providers,
		Limiter:   limiter,
		Now:       func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	})
	return at
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginCreatesSession(t *testing.T) {
	at := setupAuthTest(t, nil)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"login": {"ash"}, "password": {"pikachu123"}}))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/player" {
		t.Fatalf("expected redirect to /player, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := cookieNamed(rec, session.CookieName)
	if cookie == nil {
		t.Fatalf("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/player", nil)
	req.AddCookie(cookie)
	sess, err := at.sessions.Load(req)
	if err != nil || sess == nil {
		t.Fatalf("expected stored session, got %v %v", sess, err)
	}
	if sess.Token != "jwt-ash" || sess.Username != "ash" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestLoginDropsReplacedProviders(t *testing.T) {
	at := setupAuthTest(t, nil)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"login": {"ash"}, "password": {"pikachu123"}}))

	req := httptest.NewRequest(http.MethodGet, "/player", nil)
	req.AddCookie(cookieNamed(rec, session.CookieName))
	sess, err := at.sessions.Load(req)
	if err != nil || sess == nil {
		t.Fatalf("expected stored session, got %v %v", sess, err)
	}
	if len(at.providers.droppedUsers) != 1 || at.providers.droppedUsers[0] != "u1" {
		t.Fatalf("expected providers of u1 dropped, got %v", at.providers.droppedUsers)
	}
	if at.providers.kept[0] != sess.ID {
		t.Fatalf("expected new session %s kept, got %s", sess.ID, at.providers.kept[0])
	}
}

func TestLoginHtmxUsesHXRedirect(t *testing.T) {
	setupAuthTest(t, nil)

	req := postForm("/login", url.Values{"login": {"ash"}, "password": {"pikachu123"}})
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	HandleLogin(rec, req)

	if rec.Header().Get("HX-Redirect") != "/player" {
		t.Fatalf("expected HX-Redirect, got %v", rec.Header())
	}
}

func TestLoginValidationSkipsBackend(t *testing.T) {
	at := setupAuthTest(t, nil)

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"login": {""}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(at.backend.logins) != 0 {
		t.Fatalf("backend should not be called")
	}
	if !strings.Contains(rec.Body.String(), "Ingresá tu contraseña") {
		t.Fatalf("expected inline error")
	}
}

func TestLoginRejectedShowsBackendMessage(t *testing.T) {
	at := setupAuthTest(t, nil)
	at.backend.loginErr = &axl.RemoteError{Op: "Login", Status: http.StatusUnauthorized, Message: "Credenciales inválidas"}

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"login": {"ash"}, "password": {"wrong-pass"}}))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Credenciales inválidas") {
		t.Fatalf("expected backend message in body")
	}
	if cookieNamed(rec, session.CookieName) != nil {
		t.Fatalf("no session cookie expected")
	}
}

func TestLoginLockout(t *testing.T) {
	cfg := ratelimit.DefaultConfig()
	cfg.LoginMaxFailures = 2
	cfg.Clock = fixedClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	at := setupAuthTest(t, cfg)
	at.backend.loginErr = &axl.RemoteError{Op: "Login", Status: http.StatusUnauthorized, Message: "Credenciales inválidas"}

	for i := 0; i < 2; i++ {
		HandleLogin(httptest.NewRecorder(), postForm("/login", url.Values{"login": {"ash"}, "password": {"nope-nope"}}))
	}

	rec := httptest.NewRecorder()
	HandleLogin(rec, postForm("/login", url.Values{"login": {"ash"}, "password": {"nope-nope"}}))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if len(at.backend.logins) != 2 {
		t.Fatalf("locked out attempt must not reach backend, got %d calls", len(at.backend.logins))
	}
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	at := setupAuthTest(t, nil)

	rec := httptest.NewRecorder()
	HandleRegister(rec, postForm("/register", url.Values{
		"username":  {"misty"},
		"email":     {"misty@example.com"},
		"password":  {"starmie123"},
		"firstname": {"Misty"},
		"surname":   {"Waterflower"},
	}))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d", rec.Code)
	}
	if len(at.backend.registers) != 1 || at.backend.registers[0].Phone != nil {
		t.Fatalf("unexpected register calls %+v", at.backend.registers)
	}
}

func TestRegisterInvalidFormSkipsBackend(t *testing.T) {
	at := setupAuthTest(t, nil)

	rec := httptest.NewRecorder()
	HandleRegister(rec, postForm("/register", url.Values{"username": {"misty"}, "email": {"nope"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(at.backend.registers) != 0 {
		t.Fatalf("backend should not be called")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	at := setupAuthTest(t, nil)

	created, err := at.sessions.Create(context.Background(), httptest.NewRecorder(), session.Params{Token: "jwt", UserID: "u1", Username: "ash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(session.NewContext(req.Context(), created))
	rec := httptest.NewRecorder()
	HandleLogout(rec, req)

	if rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login")
	}
	if len(at.providers.dropped) != 1 || at.providers.dropped[0] != created.ID {
		t.Fatalf("expected provider drop, got %v", at.providers.dropped)
	}
	cleared := cookieNamed(rec, session.CookieName)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie")
	}
	if n, err := at.db.Queries.CountSessions(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected no stored sessions, got %d (%v)", n, err)
	}
}
