//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// setupPostgres starts a disposable PostgreSQL and applies the embedded migrations.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blogicum"),
		postgres.WithUsername("blogicum"),
		postgres.WithPassword("blogicum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.OpenPostgres(connStr)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(ctx, db))
	return db
}

func TestPostgres_VisibilityAndCascade(t *testing.T) {
	db := setupPostgres(t)
	f := testutil.NewFactory(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author, err := f.CreateUser()
	require.NoError(t, err)
	cat, err := f.CreateCategory()
	require.NoError(t, err)
	hidden, err := f.CreateCategory(func(c *models.Category) { c.IsPublished = false })
	require.NoError(t, err)

	visible, err := f.CreatePost(author, cat, func(p *models.Post) { p.PubDate = testNow.Add(-time.Hour) })
	require.NoError(t, err)
	_, err = f.CreatePost(author, hidden, func(p *models.Post) { p.PubDate = testNow.Add(-time.Hour) })
	require.NoError(t, err)
	_, err = f.CreatePost(author, cat, func(p *models.Post) { p.PubDate = testNow.Add(time.Hour) })
	require.NoError(t, err)

	posts, err := repo.Find(ctx, PostFilter{Now: testNow})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, visible.ID, posts[0].ID)

	_, err = f.CreateComment(author, visible)
	require.NoError(t, err)

	// the FK cascade alone must clear comments
	require.NoError(t, db.Delete(&models.Post{}, visible.ID).Error)
	var n int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", visible.ID).Count(&n).Error)
	assert.Zero(t, n)

	// the slug check rejects anything but lowercase url-safe text
	err = db.Create(&models.Category{Title: "Bad", Description: "x", Slug: "Bad Slug"}).Error
	assert.Error(t, err)
}
