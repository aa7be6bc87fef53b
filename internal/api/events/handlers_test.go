package events

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/dashboard"
	"github.com/codr1/axl-portal/internal/league"
	"github.com/codr1/axl-portal/internal/session"
)

type fakeBackend struct {
	owned         []axl.Team
	event         *axl.EventResponse
	eventErr      error
	registerErr   error
	registrations []axl.EventRegistrationRequest
}

func (f *fakeBackend) Me(ctx context.Context, token string) (*axl.Profile, error) {
	return &axl.Profile{UserID: "u1"}, nil
}

func (f *fakeBackend) Teams(ctx context.Context, token string) (*axl.TeamsResponse, error) {
	return &axl.TeamsResponse{OwnedTeams: f.owned, MemberTeams: []axl.Team{}}, nil
}

func (f *fakeBackend) Invitations(ctx context.Context, token string) ([]axl.Invite, error) {
	return nil, nil
}

func (f *fakeBackend) AcceptInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeBackend) DeclineInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeBackend) GetEvent(ctx context.Context, eventID string) (*axl.EventResponse, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.event, nil
}

func (f *fakeBackend) RegisterTeamToEvent(ctx context.Context, token string, req axl.EventRegistrationRequest) (*axl.EventRegistrationResponse, error) {
	f.registrations = append(f.registrations, req)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	id := "reg-1"
	return &axl.EventRegistrationResponse{RegistrationID: &id}, nil
}

func setupEventsTest(t *testing.T) *fakeBackend {
	t.Helper()

	prevDeps := deps
	t.Cleanup(func() { deps = prevDeps })

	catalog, err := league.Load()
	if err != nil {
		t.Fatalf("league.Load: %v", err)
	}
	backend := &fakeBackend{
		owned: []axl.Team{{TeamID: "cerulean", TeamName: "Cerulean Gym"}},
		event: &axl.EventResponse{
			Open:  true,
			Event: axl.Event{EventID: "axl-2026-fecha-1", Categories: []string{"3v3 D5", "3v3 D6"}},
		},
	}
	InitHandlers(Deps{
		Backend:    backend,
		Dashboards: dashboard.NewRegistry(backend, nil),
		Catalog:    catalog,
	})
	return backend
}

func signedIn(req *http.Request) *http.Request {
	sess := &session.Session{ID: "s1", Token: "jwt", UserID: "u1", Username: "misty"}
	return req.WithContext(session.NewContext(req.Context(), sess))
}

func postRegistration(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/player/events/fecha-1/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("slug", "fecha-1")
	return signedIn(req)
}

func TestHomeListsCalendar(t *testing.T) {
	setupEventsTest(t)

	rec := httptest.NewRecorder()
	HandleHome(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/events/fecha-1"`) {
		t.Fatalf("expected link to the detailed date")
	}
}

func TestEventDetailAnonymousLinksToLogin(t *testing.T) {
	setupEventsTest(t)

	req := httptest.NewRequest(http.MethodGet, "/events/fecha-1", nil)
	req.SetPathValue("slug", "fecha-1")
	rec := httptest.NewRecorder()
	HandleEventDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "La Barranca Paintball") {
		t.Fatalf("expected venue in detail")
	}
	if strings.Contains(body, "/player/events/fecha-1/register") {
		t.Fatalf("anonymous visitors should be sent to login")
	}
}

func TestEventDetailUnknownSlug(t *testing.T) {
	setupEventsTest(t)

	for _, slug := range []string{"fecha-99", "fecha-2"} {
		req := httptest.NewRequest(http.MethodGet, "/events/"+slug, nil)
		req.SetPathValue("slug", slug)
		rec := httptest.NewRecorder()
		HandleEventDetail(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", slug, rec.Code)
		}
	}
}

func TestRegisterPagePreselectsOnlyTeam(t *testing.T) {
	setupEventsTest(t)

	req := httptest.NewRequest(http.MethodGet, "/player/events/fecha-1/register", nil)
	req.SetPathValue("slug", "fecha-1")
	rec := httptest.NewRecorder()
	HandleRegisterPage(rec, signedIn(req))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="cerulean" selected>`) {
		t.Fatalf("expected the only owned team preselected")
	}
}

func TestRegisterTeam(t *testing.T) {
	backend := setupEventsTest(t)

	rec := httptest.NewRecorder()
	HandleRegister(rec, postRegistration(url.Values{"teamId": {"cerulean"}, "category": {"3v3 D5"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := axl.EventRegistrationRequest{EventID: "axl-2026-fecha-1", TeamID: "cerulean", Category: "3v3 D5"}
	if len(backend.registrations) != 1 || backend.registrations[0] != want {
		t.Fatalf("unexpected registrations %+v", backend.registrations)
	}
	if !strings.Contains(rec.Body.String(), "Inscripción confirmada") {
		t.Fatalf("expected confirmation")
	}
}

func TestRegisterRejectsForeignTeam(t *testing.T) {
	backend := setupEventsTest(t)

	rec := httptest.NewRecorder()
	HandleRegister(rec, postRegistration(url.Values{"teamId": {"viridian"}, "category": {"3v3 D5"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if len(backend.registrations) != 0 {
		t.Fatalf("backend should not be called")
	}
}

func TestRegisterClosedEvent(t *testing.T) {
	backend := setupEventsTest(t)
	backend.event.Open = false

	rec := httptest.NewRecorder()
	HandleRegister(rec, postRegistration(url.Values{"teamId": {"cerulean"}, "category": {"3v3 D5"}}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Inscripción cerrada") {
		t.Fatalf("expected closed notice")
	}
	if len(backend.registrations) != 0 {
		t.Fatalf("backend should not be called")
	}
}

func TestRegisterEventUnavailable(t *testing.T) {
	backend := setupEventsTest(t)
	backend.eventErr = &axl.MissingConfigError{Endpoint: "GetEvent"}

	rec := httptest.NewRecorder()
	HandleRegister(rec, postRegistration(url.Values{"teamId": {"cerulean"}, "category": {"3v3 D5"}}))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "El servicio no está configurado") {
		t.Fatalf("expected configuration message")
	}
}
