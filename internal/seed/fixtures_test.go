package seed

import (
	"context"
	"strings"
	"testing"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	categories []models.Category
	locations  []models.Location
}

func (s *recordingStore) Upsert(_ context.Context, c *models.Category) error {
	s.categories = append(s.categories, *c)
	return nil
}

func (s *recordingStore) FirstOrCreate(_ context.Context, l *models.Location) error {
	s.locations = append(s.locations, *l)
	return nil
}

func TestParseFixtures(t *testing.T) {
	doc := `
categories:
  - title: Travel
    description: Trips and places
    slug: travel
    is_published: true
  - title: Archive
    description: Old posts
    slug: archive
locations:
  - name: Lisbon
    is_published: true
`
	fx, err := ParseFixtures(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, fx.Categories, 2)
	assert.True(t, fx.Categories[0].IsPublished)
	assert.False(t, fx.Categories[1].IsPublished)

	store := &recordingStore{}
	require.NoError(t, fx.Apply(context.Background(), store, store))
	assert.Len(t, store.categories, 2)
	require.Len(t, store.locations, 1)
	assert.Equal(t, "Lisbon", store.locations[0].Name)
}

func TestParseFixtures_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad slug", "categories:\n  - title: X\n    slug: Not Valid\n"},
		{"duplicate slug", "categories:\n  - title: A\n    slug: a\n  - title: B\n    slug: a\n"},
		{"missing title", "categories:\n  - slug: a\n"},
		{"missing location name", "locations:\n  - is_published: true\n"},
		{"unknown field", "tags:\n  - x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	fx, err := ParseFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Categories)
}
