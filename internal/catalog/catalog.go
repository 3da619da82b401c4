// Package catalog holds the static lookup tables the query pipeline runs on:
// landmark aliases, the seeded routes, mock transcripts and example queries.
// A catalog is loaded once at startup and never mutated afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"yatra/internal/domain"
)

//go:embed default.yaml
var defaultData []byte

type Catalog struct {
	ServedDestination string                                `yaml:"served_destination"`
	Landmarks         []domain.Landmark                     `yaml:"landmarks"`
	Routes            []domain.TransportRoute               `yaml:"routes"`
	Transcripts       map[domain.Language]domain.Transcript `yaml:"transcripts"`
	Examples          []domain.ExampleQuery                 `yaml:"examples"`
}

// Default returns the built-in Bengaluru demo catalog.
func Default() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error

	for i, l := range c.Landmarks {
		if l.Alias == "" || l.Name == "" {
			errs = append(errs, fmt.Errorf("landmark %d: alias and name are required", i))
			continue
		}
		if l.Alias != strings.ToLower(l.Alias) {
			errs = append(errs, fmt.Errorf("landmark %q: alias must be lowercase", l.Alias))
		}
	}

	seen := make(map[string]bool, len(c.Routes))
	for _, r := range c.Routes {
		if r.ID == "" {
			errs = append(errs, errors.New("route with empty id"))
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("route %s: duplicate id", r.ID))
		}
		seen[r.ID] = true

		if !r.Type.Valid() {
			errs = append(errs, fmt.Errorf("route %s: unknown type %q", r.ID, r.Type))
		}
		if !r.Status.Valid() {
			errs = append(errs, fmt.Errorf("route %s: unknown status %q", r.ID, r.Status))
		}
		if r.Stops < 0 {
			errs = append(errs, fmt.Errorf("route %s: negative stop count", r.ID))
		}
	}

	if _, ok := c.Transcripts[domain.DefaultLanguage]; !ok {
		errs = append(errs, fmt.Errorf("missing transcript for default language %q", domain.DefaultLanguage))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}

// Transcript returns the mock transcript for lang, falling back to the
// default language.
func (c *Catalog) Transcript(lang domain.Language) domain.Transcript {
	if t, ok := c.Transcripts[lang]; ok {
		return t
	}
	return c.Transcripts[domain.DefaultLanguage]
}
