package league

import (
	"errors"
	"testing"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Season != 2026 {
		t.Fatalf("expected season 2026, got %d", c.Season)
	}
	if len(c.Events) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(c.Events))
	}
	for _, e := range c.Events {
		if e.Location() != "La Barranca Paintball - San Luis" {
			t.Fatalf("unexpected location for %s: %q", e.Slug, e.Location())
		}
	}
}

func TestFirstDateDetail(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, err := c.BySlug("fecha-1")
	if err != nil {
		t.Fatalf("BySlug: %v", err)
	}
	if !e.Detailed() || !e.Registrable() {
		t.Fatalf("fecha-1 should be detailed and registrable")
	}
	if e.BackendEventID != "axl-2026-fecha-1" {
		t.Fatalf("unexpected backend id %q", e.BackendEventID)
	}
	names := e.CategoryNames()
	if len(names) != 3 || names[0] != "5v5 D4/D3" {
		t.Fatalf("unexpected categories %v", names)
	}
	d6 := e.Categories[2]
	if d6.Format != "Race-To-2" || d6.Prices.Before != 300 || d6.Prizes.Third != 150 {
		t.Fatalf("unexpected D6 category %+v", d6)
	}
	if len(e.Amenities) != 4 {
		t.Fatalf("expected 4 amenities, got %v", e.Amenities)
	}

	later, _ := c.BySlug("fecha-3")
	if later.Detailed() || later.Registrable() {
		t.Fatalf("fecha-3 has no detail yet")
	}
}

func TestBySlugNotFound(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := c.BySlug("fecha-9"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestParseRejectsDuplicateSlugs(t *testing.T) {
	doc := []byte("events:\n  - slug: a\n  - slug: a\n")
	if _, err := Parse(doc); err == nil {
		t.Fatalf("expected duplicate slug error")
	}
	if _, err := Parse([]byte("events:\n  - title: x\n")); err == nil {
		t.Fatalf("expected missing slug error")
	}
}
