package policy

import (
	"errors"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func visiblePost() *models.Post {
	return &models.Post{
		ID:          1,
		AuthorID:    7,
		IsPublished: true,
		PubDate:     now.Add(-time.Hour),
		Category:    &models.Category{ID: 1, Slug: "travel", IsPublished: true},
	}
}

func TestVisible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *models.Post)
		want   bool
	}{
		{"published and due", func(p *models.Post) {}, true},
		{"due exactly now", func(p *models.Post) { p.PubDate = now }, true},
		{"unpublished", func(p *models.Post) { p.IsPublished = false }, false},
		{"unpublished in the past", func(p *models.Post) { p.IsPublished = false; p.PubDate = now.AddDate(-1, 0, 0) }, false},
		{"scheduled in the future", func(p *models.Post) { p.PubDate = now.Add(time.Second) }, false},
		{"category hidden", func(p *models.Post) { p.Category.IsPublished = false }, false},
		{"no category", func(p *models.Post) { p.Category = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := visiblePost()
			tt.mutate(p)
			assert.Equal(t, tt.want, Visible(p, now))
		})
	}
}

func TestVisibleTo_AuthorOverride(t *testing.T) {
	t.Parallel()

	hidden := visiblePost()
	hidden.IsPublished = false
	hidden.PubDate = now.Add(24 * time.Hour)
	hidden.Category = &models.Category{IsPublished: false}

	assert.True(t, VisibleTo(hidden, 7, now))
	assert.False(t, VisibleTo(hidden, 8, now))
	assert.False(t, VisibleTo(hidden, 0, now))
	assert.False(t, VisibleTo(nil, 7, now))
}

func TestLocationShown(t *testing.T) {
	p := visiblePost()
	assert.False(t, LocationShown(p))

	p.Location = &models.Location{Name: "Moscow", IsPublished: false}
	assert.False(t, LocationShown(p))

	p.Location.IsPublished = true
	assert.True(t, LocationShown(p))
}

func TestCanModifyPost(t *testing.T) {
	t.Parallel()

	post := &models.Post{ID: 5, AuthorID: 7}
	author := Actor{ID: 7}
	stranger := Actor{ID: 8}
	staff := Actor{ID: 9, IsStaff: true}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"author edits", author, ActionEdit, true},
		{"author deletes", author, ActionDelete, true},
		{"stranger edits", stranger, ActionEdit, false},
		{"stranger deletes", stranger, ActionDelete, false},
		{"staff edits", staff, ActionEdit, false},
		{"staff deletes", staff, ActionDelete, true},
		{"anonymous deletes", Actor{}, ActionDelete, false},
		{"anonymous staff flag ignored", Actor{IsStaff: true}, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyPost(tt.actor, post, tt.action))
		})
	}
}

func TestCanModifyComment_NoStaffOverride(t *testing.T) {
	t.Parallel()

	comment := &models.Comment{ID: 3, AuthorID: 7}

	for _, action := range []Action{ActionEdit, ActionDelete} {
		assert.True(t, CanModifyComment(Actor{ID: 7}, comment, action))
		assert.False(t, CanModifyComment(Actor{ID: 8}, comment, action))
		assert.False(t, CanModifyComment(Actor{ID: 9, IsStaff: true}, comment, action))
		assert.False(t, CanModifyComment(Actor{}, comment, action))
	}
}

func TestAuthorize_ReturnsForbidden(t *testing.T) {
	t.Parallel()

	err := AuthorizePost(Actor{ID: 8}, &models.Post{ID: 5, AuthorID: 7}, ActionEdit)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	assert.NoError(t, AuthorizeComment(Actor{ID: 7}, &models.Comment{ID: 3, AuthorID: 7}, ActionDelete))
	assert.True(t, models.IsNotFound(AuthorizeComment(Actor{ID: 7}, nil, ActionDelete)))
}

func TestActorFromUser(t *testing.T) {
	assert.True(t, ActorFromUser(nil).Anonymous())

	a := ActorFromUser(&models.User{ID: 4, Username: "kate", IsStaff: true})
	assert.Equal(t, Actor{ID: 4, Username: "kate", IsStaff: true}, a)
}
