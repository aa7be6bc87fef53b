// Package dashboard holds the signed-in user's profile, teams and pending
// invitations. One Provider exists per session; it is filled by an
// all-or-nothing refresh and dropped at logout.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/metrics"
	"github.com/codr1/axl-portal/internal/session"
)

var ErrUnauthenticated = errors.New("sesión no iniciada")

// freshFor lets the page that follows a mutation reuse the refresh the
// mutation already ran instead of reading the backend twice.
const freshFor = 2 * time.Second

// Backend is the subset of the league client the provider reads and mutates through.
type Backend interface {
	Me(ctx context.Context, token string) (*axl.Profile, error)
	Teams(ctx context.Context, token string) (*axl.TeamsResponse, error)
	Invitations(ctx context.Context, token string) ([]axl.Invite, error)
	AcceptInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error)
	DeclineInvite(ctx context.Context, token, teamID string) (*axl.MessageResponse, error)
}

// State is a copy of what the provider currently exposes.
type State struct {
	Loading     bool
	Loaded      bool
	Err         error
	Profile     *axl.Profile
	OwnedTeams  []axl.Team
	MemberTeams []axl.Team
	Invitations []axl.Invite
}

// ErrorMessage is the user-facing text of Err, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// PendingInvitations returns invitations still awaiting an answer.
func (s State) PendingInvitations() []axl.Invite {
	pending := make([]axl.Invite, 0, len(s.Invitations))
	for _, inv := range s.Invitations {
		if inv.Status == "" || inv.Status == axl.InviteStatusPending {
			pending = append(pending, inv)
		}
	}
	return pending
}

// HasTeams reports whether the user owns or belongs to any team.
func (s State) HasTeams() bool {
	return len(s.OwnedTeams) > 0 || len(s.MemberTeams) > 0
}

// OwnsTeam reports whether teamID is among the owned teams.
func (s State) OwnsTeam(teamID string) bool {
	for _, team := range s.OwnedTeams {
		if team.TeamID == teamID {
			return true
		}
	}
	return false
}

type Provider struct {
	backend Backend
	sess    *session.Session
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.RWMutex
	state       State
	refreshedAt time.Time
}

func newProvider(backend Backend, sess *session.Session, m *metrics.Metrics, now func() time.Time) *Provider {
	return &Provider{
		backend: backend,
		sess:    sess,
		metrics: m,
		now:     now,
		state: State{
			Loading:     true,
			OwnedTeams:  []axl.Team{},
			MemberTeams: []axl.Team{},
			Invitations: []axl.Invite{},
		},
	}
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.state
	s.OwnedTeams = append([]axl.Team(nil), p.state.OwnedTeams...)
	s.MemberTeams = append([]axl.Team(nil), p.state.MemberTeams...)
	s.Invitations = append([]axl.Invite(nil), p.state.Invitations...)
	return s
}

// Activate is called by every page that shows dashboard data. It refreshes
// unless the last refresh succeeded within freshFor, so a failed refresh is
// retried by the next page load.
func (p *Provider) Activate(ctx context.Context) error {
	p.mu.RLock()
	fresh := p.state.Loaded && p.state.Err == nil && p.now().Sub(p.refreshedAt) < freshFor
	p.mu.RUnlock()
	if fresh {
		return nil
	}
	return p.Refresh(ctx)
}

// Refresh reads profile, teams and invitations concurrently. If any read
// fails, the error is recorded and the previous data is left in place.
func (p *Provider) Refresh(ctx context.Context) error {
	if !p.sess.Authenticated() {
		return ErrUnauthenticated
	}
	token := p.sess.Token

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	var (
		profile *axl.Profile
		teams   *axl.TeamsResponse
		invites []axl.Invite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = p.backend.Me(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = p.backend.Teams(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		invites, err = p.backend.Invitations(gctx, token)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		p.state.Err = err
		p.metrics.Refresh(false)
		log.Ctx(ctx).Warn().Err(err).Str("session_id", p.sess.ID).Msg("Dashboard refresh failed")
		return err
	}

	p.state.Err = nil
	p.state.Loaded = true
	p.refreshedAt = p.now()
	p.state.Profile = profile
	p.state.OwnedTeams = teams.OwnedTeams
	p.state.MemberTeams = teams.MemberTeams
	p.state.Invitations = invites
	p.metrics.Refresh(true)
	return nil
}

// FindInvitation looks up an invitation by id in the current state.
func (p *Provider) FindInvitation(inviteID string) (axl.Invite, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, inv := range p.state.Invitations {
		if inv.InviteID == inviteID {
			return inv, true
		}
	}
	return axl.Invite{}, false
}

// AcceptInvitation accepts inv and then refreshes. On failure the
// invitation list is not touched.
func (p *Provider) AcceptInvitation(ctx context.Context, inv axl.Invite) (string, error) {
	return p.decide(ctx, inv, p.backend.AcceptInvite, "Invitación aceptada")
}

func (p *Provider) DeclineInvitation(ctx context.Context, inv axl.Invite) (string, error) {
	return p.decide(ctx, inv, p.backend.DeclineInvite, "Invitación rechazada")
}

type inviteMutation func(ctx context.Context, token, teamID string) (*axl.MessageResponse, error)

func (p *Provider) decide(ctx context.Context, inv axl.Invite, mutate inviteMutation, fallback string) (string, error) {
	if !p.sess.Authenticated() {
		return "", ErrUnauthenticated
	}
	resp, err := mutate(ctx, p.sess.Token, inv.TeamID)
	if err != nil {
		return "", err
	}

	message := fallback
	if resp != nil && resp.Message != nil && *resp.Message != "" {
		message = *resp.Message
	}

	// The mutation succeeded; a failed refresh only leaves State.Err set.
	if err := p.Refresh(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("session_id", p.sess.ID).
			Str("team_id", inv.TeamID).
			Msg("Refresh after invitation answer failed")
	}
	return message, nil
}

func (p *Provider) expired(now time.Time) bool {
	return !p.sess.ExpiresAt.IsZero() && !p.sess.ExpiresAt.After(now)
}
