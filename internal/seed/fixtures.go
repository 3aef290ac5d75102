package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"blogicum/internal/models"
	"blogicum/internal/validation"

	"gopkg.in/yaml.v3"
)

// Fixtures is the YAML document loaded by `blogctl fixtures load`.
//
//	categories:
//	  - title: Travel
//	    description: Trips and places
//	    slug: travel
//	    is_published: true
//	locations:
//	  - name: Lisbon
//	    is_published: true
type Fixtures struct {
	Categories []models.Category `yaml:"categories"`
	Locations  []models.Location `yaml:"locations"`
}

// CategoryStore is the part of the category repository fixtures need.
type CategoryStore interface {
	Upsert(ctx context.Context, category *models.Category) error
}

// LocationStore is the part of the location repository fixtures need.
type LocationStore interface {
	FirstOrCreate(ctx context.Context, location *models.Location) error
}

// ParseFixtures decodes and validates a fixtures document.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	seen := make(map[string]bool, len(fx.Categories))
	for i, c := range fx.Categories {
		if c.Title == "" {
			return nil, fmt.Errorf("categories[%d]: title is required", i)
		}
		if err := validation.ValidateSlug(c.Slug); err != nil {
			return nil, fmt.Errorf("categories[%d]: %w", i, err)
		}
		if seen[c.Slug] {
			return nil, fmt.Errorf("categories[%d]: duplicate slug %q", i, c.Slug)
		}
		seen[c.Slug] = true
	}
	for i, l := range fx.Locations {
		if l.Name == "" {
			return nil, fmt.Errorf("locations[%d]: name is required", i)
		}
	}
	return &fx, nil
}

// LoadFixturesFile reads and parses a fixtures file.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseFixtures(f)
}

// Apply upserts categories by slug and creates missing locations by name.
func (fx *Fixtures) Apply(ctx context.Context, categories CategoryStore, locations LocationStore) error {
	for i := range fx.Categories {
		if err := categories.Upsert(ctx, &fx.Categories[i]); err != nil {
			return fmt.Errorf("category %q: %w", fx.Categories[i].Slug, err)
		}
	}
	for i := range fx.Locations {
		if err := locations.FirstOrCreate(ctx, &fx.Locations[i]); err != nil {
			return fmt.Errorf("location %q: %w", fx.Locations[i].Name, err)
		}
	}
	return nil
}
