package repository

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Lifecycle(t *testing.T) {
	fx := newPostFixture(t)
	repo := NewCommentRepository(fx.db)
	ctx := context.Background()

	p := fx.post(t, "commented", fx.cat)

	first := &models.Comment{Text: "first", PostID: p.ID, AuthorID: fx.reader.ID}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Comment{Text: "second", PostID: p.ID, AuthorID: fx.author.ID}
	require.NoError(t, repo.Create(ctx, second))

	comments, err := repo.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "reader", comments[0].Author.Username)
	assert.Equal(t, "second", comments[1].Text)

	require.NoError(t, repo.UpdateText(ctx, first.ID, "edited"))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, fx.reader.ID, got.AuthorID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(repo.Delete(ctx, first.ID)))
	assert.True(t, models.IsNotFound(repo.UpdateText(ctx, 9999, "x")))
}

func TestCommentRepository_ListByPost_OldestFirst(t *testing.T) {
	fx := newPostFixture(t)
	repo := NewCommentRepository(fx.db)
	ctx := context.Background()

	p := fx.post(t, "thread", fx.cat)
	base := testNow.Add(-time.Hour)
	for _, c := range []struct {
		text string
		at   time.Time
	}{
		{"late", base.Add(2 * time.Minute)},
		{"early", base},
		{"middle", base.Add(time.Minute)},
	} {
		c := c
		_, err := fx.factory.CreateComment(fx.reader, p, func(m *models.Comment) {
			m.Text = c.text
			m.CreatedAt = c.at
		})
		require.NoError(t, err)
	}

	comments, err := repo.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(comments))
	for _, c := range comments {
		got = append(got, c.Text)
	}
	assert.Equal(t, []string{"early", "middle", "late"}, got)

	empty, err := repo.ListByPost(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
