package dashboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/session"
)

type fakeBackend struct {
	mu         sync.Mutex
	profile    *axl.Profile
	teams      *axl.TeamsResponse
	invites    []axl.Invite
	meErr      error
	teamsErr   error
	invitesErr error
	acceptErr  error
	accepted   []string
	declined   []string
	reads      int
}

func (f *fakeBackend) Me(ctx context.Context, token string) (*axl.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.profile, f.meErr
}

func (f *fakeBackend) Teams(ctx context.Context, token string) (*axl.TeamsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teams, f.teamsErr
}

func (f *fakeBackend) Invitations(ctx context.Context, token string) ([]axl.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invites, f.invitesErr
}

func (f *fakeBackend) AcceptInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	f.accepted = append(f.accepted, teamID)
	return &axl.MessageResponse{}, nil
}

func (f *fakeBackend) DeclineInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declined = append(f.declined, teamID)
	msg := "Listo"
	return &axl.MessageResponse{Message: &msg}, nil
}

func rocketBackend() *fakeBackend {
	name := "Team Rocket"
	return &fakeBackend{
		profile: &axl.Profile{UserID: "u1", Firstname: "Ash"},
		teams:   &axl.TeamsResponse{OwnedTeams: []axl.Team{}, MemberTeams: []axl.Team{}},
		invites: []axl.Invite{{InviteID: "i1", TeamID: "rocket", TeamName: &name, InviteRole: axl.RolePlayer, Status: axl.InviteStatusPending}},
	}
}

var testSession = &session.Session{ID: "s1", Token: "jwt"}

func TestInitialStateIsLoading(t *testing.T) {
	p := NewRegistry(rocketBackend(), nil).For(testSession)
	state := p.State()
	if !state.Loading || state.Loaded || state.Err != nil {
		t.Fatalf("unexpected initial state %+v", state)
	}
}

func TestRefreshFillsState(t *testing.T) {
	p := NewRegistry(rocketBackend(), nil).For(testSession)

	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	state := p.State()
	if state.Loading || !state.Loaded || state.Profile.Firstname != "Ash" {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.HasTeams() {
		t.Fatalf("expected no teams")
	}
	pending := state.PendingInvitations()
	if len(pending) != 1 || *pending[0].TeamName != "Team Rocket" {
		t.Fatalf("unexpected invitations %+v", pending)
	}
}

func TestRefreshIsAllOrNothing(t *testing.T) {
	backend := rocketBackend()
	p := NewRegistry(backend, nil).For(testSession)
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	backend.profile = &axl.Profile{UserID: "u1", Firstname: "Changed"}
	backend.invites = nil
	backend.teamsErr = &axl.RemoteError{Op: "Teams", Status: 500, Message: "Teams error 500"}

	if err := p.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	state := p.State()
	if state.Err == nil || state.ErrorMessage() != "Teams error 500" {
		t.Fatalf("expected error to be recorded, got %v", state.Err)
	}
	if state.Profile.Firstname != "Ash" || len(state.Invitations) != 1 {
		t.Fatalf("expected prior data kept, got %+v", state)
	}
	if !state.Loaded {
		t.Fatalf("expected Loaded to survive a failed refresh")
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	p := NewRegistry(rocketBackend(), nil).For(&session.Session{ID: "anon"})
	if err := p.Refresh(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

// steppedRegistry returns a registry whose clock only moves when advanced.
func steppedRegistry(backend Backend) (*Registry, func(time.Duration)) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(backend, nil)
	r.now = func() time.Time { return now }
	return r, func(d time.Duration) { now = now.Add(d) }
}

func TestActivateReusesFreshRefresh(t *testing.T) {
	backend := rocketBackend()
	r, _ := steppedRegistry(backend)
	p := r.For(testSession)

	for i := 0; i < 3; i++ {
		if err := p.Activate(context.Background()); err != nil {
			t.Fatalf("Activate: %v", err)
		}
	}
	if backend.reads != 1 {
		t.Fatalf("expected a single refresh, got %d", backend.reads)
	}
}

func TestActivateRefreshesOnEveryPageLoad(t *testing.T) {
	backend := rocketBackend()
	r, advance := steppedRegistry(backend)
	p := r.For(testSession)
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	name := "Pewter"
	backend.invites = append(backend.invites, axl.Invite{InviteID: "i2", TeamID: "pewter", TeamName: &name, Status: axl.InviteStatusPending})
	advance(freshFor)

	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if backend.reads != 2 || len(p.State().PendingInvitations()) != 2 {
		t.Fatalf("expected the new invitation after a later page load, got %d reads %+v", backend.reads, p.State().Invitations)
	}
}

func TestActivateRecoversAfterFailedRefresh(t *testing.T) {
	backend := rocketBackend()
	r, _ := steppedRegistry(backend)
	p := r.For(testSession)
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	backend.meErr = &axl.RemoteError{Op: "Me", Status: 503, Message: "Me error 503"}
	if err := p.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	if p.State().Err == nil {
		t.Fatalf("expected error recorded")
	}

	// Still inside the fresh window: an error state is never reused.
	backend.meErr = nil
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate after recovery: %v", err)
	}
	if state := p.State(); state.Err != nil || !state.Loaded {
		t.Fatalf("expected recovered state, got %+v", state)
	}
}

func TestAcceptInvitationSendsTeamAndRefreshes(t *testing.T) {
	backend := rocketBackend()
	p := NewRegistry(backend, nil).For(testSession)
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	inv, ok := p.FindInvitation("i1")
	if !ok {
		t.Fatalf("expected invitation i1")
	}
	backend.invites = []axl.Invite{}
	msg, err := p.AcceptInvitation(context.Background(), inv)
	if err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}
	if msg != "Invitación aceptada" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(backend.accepted) != 1 || backend.accepted[0] != "rocket" {
		t.Fatalf("unexpected accepted %v", backend.accepted)
	}
	if len(p.State().Invitations) != 0 {
		t.Fatalf("expected refreshed invitation list")
	}
}

func TestFailedAcceptLeavesListUnchanged(t *testing.T) {
	backend := rocketBackend()
	p := NewRegistry(backend, nil).For(testSession)
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	backend.acceptErr = &axl.RemoteError{Op: "Accept", Status: 409, Message: "Invitación vencida"}
	inv, _ := p.FindInvitation("i1")
	if _, err := p.AcceptInvitation(context.Background(), inv); err == nil {
		t.Fatalf("expected error")
	}
	if len(p.State().Invitations) != 1 {
		t.Fatalf("expected invitation to stay listed")
	}
	if backend.reads != 1 {
		t.Fatalf("expected no refresh after failure, got %d reads", backend.reads)
	}
}

func TestAnswerLogsFailedRefresh(t *testing.T) {
	backend := rocketBackend()
	p := NewRegistry(backend, nil).For(testSession)
	if err := p.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	backend.invitesErr = &axl.RemoteError{Op: "Invitations", Status: 500, Message: "Invitations error 500"}

	inv, _ := p.FindInvitation("i1")
	if _, err := p.AcceptInvitation(ctx, inv); err != nil {
		t.Fatalf("accept should succeed even when the refresh fails: %v", err)
	}
	if !strings.Contains(buf.String(), "Refresh after invitation answer failed") || !strings.Contains(buf.String(), `"team_id":"rocket"`) {
		t.Fatalf("expected refresh failure to be logged, got %s", buf.String())
	}
	if p.State().Err == nil {
		t.Fatalf("expected refresh error in state")
	}
}

func TestDeclineUsesBackendMessage(t *testing.T) {
	backend := rocketBackend()
	p := NewRegistry(backend, nil).For(testSession)

	msg, err := p.DeclineInvitation(context.Background(), axl.Invite{InviteID: "i1", TeamID: "rocket"})
	if err != nil || msg != "Listo" {
		t.Fatalf("unexpected result %q, %v", msg, err)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(rocketBackend(), nil)
	now := time.Now()
	live := &session.Session{ID: "live", Token: "a", ExpiresAt: now.Add(time.Hour)}
	old := &session.Session{ID: "old", Token: "b", ExpiresAt: now.Add(-time.Minute)}

	if r.For(live) != r.For(live) {
		t.Fatalf("expected the same provider for the same session")
	}
	r.For(old)
	if n := r.PruneExpired(now); n != 1 || r.Len() != 1 {
		t.Fatalf("expected one expired provider pruned, got %d (len %d)", n, r.Len())
	}
	r.Drop("live")
	if r.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestRegistryDropUserKeepsNewSession(t *testing.T) {
	r := NewRegistry(rocketBackend(), nil)
	r.For(&session.Session{ID: "old-1", Token: "a", UserID: "u1"})
	r.For(&session.Session{ID: "old-2", Token: "b", UserID: "u1"})
	other := r.For(&session.Session{ID: "misty", Token: "c", UserID: "u2"})
	fresh := r.For(&session.Session{ID: "new", Token: "d", UserID: "u1"})

	if n := r.DropUser("u1", "new"); n != 2 {
		t.Fatalf("expected two replaced providers dropped, got %d", n)
	}
	if r.Len() != 2 {
		t.Fatalf("expected two providers left, got %d", r.Len())
	}
	if r.For(&session.Session{ID: "new", Token: "d", UserID: "u1"}) != fresh {
		t.Fatalf("expected the new session's provider kept")
	}
	if r.For(&session.Session{ID: "misty", Token: "c", UserID: "u2"}) != other {
		t.Fatalf("expected other users untouched")
	}
	if n := r.DropUser("", "new"); n != 0 {
		t.Fatalf("empty user id must not match anonymous providers, got %d", n)
	}
}
