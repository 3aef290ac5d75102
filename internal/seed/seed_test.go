package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestSeeder_Run(t *testing.T) {
	db := newTestDB(t)
	opts := Options{
		NumUsers:        3,
		NumCategories:   2,
		NumLocations:    2,
		NumPosts:        16,
		CommentsPerPost: 2,
		FactoryOptions:  FactoryOptions{SkipBcrypt: true},
	}

	res, err := NewSeeder(db, opts).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Posts, 16)
	assert.Equal(t, 32, res.Comments)

	// last category is left unpublished
	assert.True(t, res.Categories[0].IsPublished)
	assert.False(t, res.Categories[1].IsPublished)

	var drafts, scheduled int64
	require.NoError(t, db.Model(&models.Post{}).Where("is_published = ?", false).Count(&drafts).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("pub_date > ?", time.Now().UTC()).Count(&scheduled).Error)
	assert.Equal(t, int64(2), drafts)
	assert.Equal(t, int64(2), scheduled)

	require.NoError(t, NewSeeder(db, opts).ClearAll(context.Background()))
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestSeeder_RequiresUsers(t *testing.T) {
	_, err := NewSeeder(newTestDB(t), Options{}).Run(context.Background())
	assert.Error(t, err)
}

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, FactoryOptions{DryRun: true, SkipBcrypt: true})

	u, err := f.CreateUser()
	require.NoError(t, err)
	c, err := f.CreateCategory()
	require.NoError(t, err)
	p, err := f.CreatePost(u, c)
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Greater(t, p.ID, c.ID)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, c.ID, *p.CategoryID)
	assert.True(t, p.IsPublished)
	assert.False(t, p.PubDate.After(time.Now().UTC()))
	assert.NotContains(t, u.Username, " ")
	assert.Equal(t, strings.ToLower(c.Slug), c.Slug)
}
