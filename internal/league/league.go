// Package league holds the static season calendar shown on the public pages.
// The catalog is embedded at build time; live registration state comes from
// the league backend.
package league

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var catalogYAML []byte

var ErrEventNotFound = errors.New("event not found")

type Catalog struct {
	Season    int     `yaml:"season"`
	Title     string  `yaml:"title"`
	Divisions string  `yaml:"divisions"`
	Events    []Event `yaml:"events"`
}

type Event struct {
	Slug           string     `yaml:"slug"`
	BackendEventID string     `yaml:"backend_event_id"`
	Title          string     `yaml:"title"`
	Dates          string     `yaml:"dates"`
	Days           string     `yaml:"days"`
	Venue          string     `yaml:"venue"`
	City           string     `yaml:"city"`
	PriceDeadline  string     `yaml:"price_deadline"`
	MapURL         string     `yaml:"map_url"`
	Notes          []string   `yaml:"notes"`
	Categories     []Category `yaml:"categories"`
	Amenities      []string   `yaml:"amenities"`
	Lodging        []Lodging  `yaml:"lodging"`
}

type Category struct {
	Name     string `yaml:"name"`
	Marker   string `yaml:"marker"`
	GameTime string `yaml:"game_time"`
	Format   string `yaml:"format"`
	Prices   Prices `yaml:"prices"`
	Prizes   Prizes `yaml:"prizes"`
}

// Prices are entry fees in USD, before and after the early deadline.
type Prices struct {
	Before int `yaml:"before"`
	After  int `yaml:"after"`
}

// Prizes are cash prizes in USD.
type Prizes struct {
	First  int `yaml:"first"`
	Second int `yaml:"second"`
	Third  int `yaml:"third"`
}

type Lodging struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Details string `yaml:"details"`
	Rate    string `yaml:"rate"`
}

// Detailed reports whether the event has a full information page.
func (e Event) Detailed() bool {
	return len(e.Categories) > 0
}

// Registrable reports whether teams can sign up through the backend.
func (e Event) Registrable() bool {
	return e.BackendEventID != ""
}

// Location joins venue and city the way the pages print it.
func (e Event) Location() string {
	switch {
	case e.Venue == "":
		return e.City
	case e.City == "":
		return e.Venue
	}
	return e.Venue + " - " + e.City
}

func (e Event) CategoryNames() []string {
	names := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		names = append(names, c.Name)
	}
	return names
}

func (c *Catalog) BySlug(slug string) (Event, error) {
	for _, e := range c.Events {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Event{}, fmt.Errorf("%w: %q", ErrEventNotFound, slug)
}

// Parse decodes a catalog document and checks that slugs are present and unique.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse event catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Events))
	for i, e := range c.Events {
		if e.Slug == "" {
			return nil, fmt.Errorf("event %d: missing slug", i)
		}
		if _, dup := seen[e.Slug]; dup {
			return nil, fmt.Errorf("event %q: duplicate slug", e.Slug)
		}
		seen[e.Slug] = struct{}{}
	}
	return &c, nil
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load returns the embedded catalog. It is parsed once.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(catalogYAML)
	})
	return loaded, loadErr
}
