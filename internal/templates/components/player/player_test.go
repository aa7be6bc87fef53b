package player

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/dashboard"
)

func render(t *testing.T, v DashboardView) string {
	t.Helper()
	var b strings.Builder
	if err := Dashboard(v).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestDashboardInvitationWithoutTeams(t *testing.T) {
	rocket := "Team Rocket"
	html := render(t, DashboardView{State: dashboard.State{
		Loaded:  true,
		Profile: &axl.Profile{Firstname: "Ash", Surname: "Ketchum", Username: "ash", PlayerCode: "12345-6789"},
		Invitations: []axl.Invite{{
			InviteID:   "inv-1",
			TeamID:     "team-rocket",
			TeamName:   &rocket,
			InviteRole: axl.RolePlayer,
			Status:     axl.InviteStatusPending,
		}},
	}})

	if !strings.Contains(html, "Has sido invitado a unirte a <strong>Team Rocket</strong>") {
		t.Fatalf("expected invitation banner naming Team Rocket:\n%s", html)
	}
	if !strings.Contains(html, `hx-post="/player/invitations/inv-1/accept"`) ||
		!strings.Contains(html, `hx-post="/player/invitations/inv-1/decline"`) {
		t.Fatalf("expected accept and decline actions")
	}
	if !strings.Contains(html, "Aún no perteneces a ningún equipo.") {
		t.Fatalf("expected empty teams message")
	}
}

func TestDashboardListsTeamsAndHidesAnsweredInvites(t *testing.T) {
	html := render(t, DashboardView{State: dashboard.State{
		Loaded:      true,
		Profile:     &axl.Profile{Firstname: "Misty"},
		OwnedTeams:  []axl.Team{{TeamID: "t1", TeamName: "Cerulean"}},
		Invitations: []axl.Invite{{InviteID: "old", Status: "ACCEPTED"}},
	}})
	if strings.Contains(html, "no-teams") {
		t.Fatalf("did not expect empty teams message")
	}
	if !strings.Contains(html, `href="/player/teams/t1"`) {
		t.Fatalf("expected team link")
	}
	if strings.Contains(html, "data-invite") {
		t.Fatalf("answered invitations should not show")
	}
}

func TestDashboardErrorPanel(t *testing.T) {
	html := render(t, DashboardView{State: dashboard.State{Err: errors.New("Teams error 500")}})
	if !strings.Contains(html, `id="error-panel"`) || !strings.Contains(html, "Teams error 500") {
		t.Fatalf("expected error panel, got %s", html)
	}
	if !strings.Contains(html, `action="/logout"`) {
		t.Fatalf("expected back-to-login action to end the session")
	}
}

func TestDashboardLoading(t *testing.T) {
	html := render(t, DashboardView{State: dashboard.State{Loading: true}})
	if !strings.Contains(html, "Cargando dashboard") {
		t.Fatalf("expected loading state, got %s", html)
	}
}
