package events

import (
	"context"
	"strings"
	"testing"

	"github.com/codr1/axl-portal/internal/axl"
	"github.com/codr1/axl-portal/internal/league"
)

func render(t *testing.T, v RegisterView) string {
	t.Helper()
	var b strings.Builder
	if err := Register(v).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestRegisterClosed(t *testing.T) {
	html := render(t, RegisterView{
		Event: league.Event{Slug: "fecha-1", Title: "1ª FECHA"},
		Live:  &axl.EventResponse{Open: false},
		Owned: []axl.Team{{TeamID: "t1", TeamName: "Foxes"}},
	})
	if !strings.Contains(html, "Inscripción cerrada") || strings.Contains(html, "<form") {
		t.Fatalf("expected closed notice without form:\n%s", html)
	}
}

func TestRegisterFormUsesLiveCategories(t *testing.T) {
	v := RegisterView{
		Event: league.Event{Slug: "fecha-1", Categories: []league.Category{{Name: "3v3 D6"}}},
		Live:  &axl.EventResponse{Open: true, Event: axl.Event{Categories: []string{"Amateur"}}},
		Owned: []axl.Team{{TeamID: "t1", TeamName: "Foxes"}},
	}
	html := render(t, v)
	if !strings.Contains(html, `<option value="Amateur">`) || strings.Contains(html, "3v3 D6") {
		t.Fatalf("expected live categories:\n%s", html)
	}
	if !strings.Contains(html, `<option value="t1">Foxes</option>`) {
		t.Fatalf("expected owned team option")
	}

	v.Live.Event.Categories = nil
	if got := v.Categories(); len(got) != 1 || got[0] != "3v3 D6" {
		t.Fatalf("expected catalog fallback, got %v", got)
	}
}
