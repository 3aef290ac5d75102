package repository

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/seed"
	"blogicum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type postFixture struct {
	db      *gorm.DB
	factory *seed.Factory
	repo    PostRepository
	author  *models.User
	reader  *models.User
	cat     *models.Category
	hidden  *models.Category
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := testutil.NewFactory(db)

	author, err := f.CreateUser(func(u *models.User) { u.Username = "author" })
	require.NoError(t, err)
	reader, err := f.CreateUser(func(u *models.User) { u.Username = "reader" })
	require.NoError(t, err)
	cat, err := f.CreateCategory(func(c *models.Category) { c.Slug = "travel" })
	require.NoError(t, err)
	hidden, err := f.CreateCategory(func(c *models.Category) {
		c.Slug = "drafts"
		c.IsPublished = false
	})
	require.NoError(t, err)

	return &postFixture{db: db, factory: f, repo: NewPostRepository(db), author: author, reader: reader, cat: cat, hidden: hidden}
}

func (fx *postFixture) post(t *testing.T, title string, category *models.Category, overrides ...func(*models.Post)) *models.Post {
	t.Helper()
	overrides = append([]func(*models.Post){func(p *models.Post) {
		p.Title = title
		p.PubDate = testNow.Add(-time.Hour)
	}}, overrides...)
	p, err := fx.factory.CreatePost(fx.author, category, overrides...)
	require.NoError(t, err)
	return p
}

func titles(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostRepository_Find_Visibility(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	fx.post(t, "visible", fx.cat)
	fx.post(t, "draft", fx.cat, func(p *models.Post) { p.IsPublished = false })
	fx.post(t, "scheduled", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(time.Hour) })
	fx.post(t, "hidden category", fx.hidden)
	fx.post(t, "no category", nil)
	fx.post(t, "due now", fx.cat, func(p *models.Post) { p.PubDate = testNow })

	t.Run("default filter hides drafts, future and hidden categories", func(t *testing.T) {
		posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"visible", "due now"}, titles(posts))
	})

	t.Run("author sees everything with IncludeHidden", func(t *testing.T) {
		posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow, IncludeHidden: true}.ByAuthor(fx.author.ID))
		require.NoError(t, err)
		assert.Len(t, posts, 6)
	})

	t.Run("ViewerID does not widen list queries", func(t *testing.T) {
		posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow, ViewerID: fx.author.ID})
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow}.ByAuthor(fx.reader.ID))
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostRepository_Find_Ordering(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	fx.post(t, "t1", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-3 * time.Hour) })
	fx.post(t, "t3", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-1 * time.Hour) })
	fx.post(t, "t2", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-2 * time.Hour) })

	posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t2", "t1"}, titles(posts))

	// ties on pub_date fall back to the newest id
	tieA := fx.post(t, "tie-a", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-30 * time.Minute) })
	tieB := fx.post(t, "tie-b", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-30 * time.Minute) })
	require.Greater(t, tieB.ID, tieA.ID)

	posts, err = fx.repo.Find(ctx, PostFilter{Now: testNow, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"tie-b", "tie-a"}, titles(posts))
}

func TestPostRepository_Find_Filters(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	other, err := fx.factory.CreateCategory()
	require.NoError(t, err)

	fx.post(t, "in travel", fx.cat)
	fx.post(t, "elsewhere", other)
	_, err = fx.factory.CreatePost(fx.reader, fx.cat, func(p *models.Post) {
		p.Title = "reader's"
		p.PubDate = testNow.Add(-time.Hour)
	})
	require.NoError(t, err)

	posts, err := fx.repo.Find(ctx, PostFilter{Now: testNow}.InCategory(fx.cat.ID))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"in travel", "reader's"}, titles(posts))

	posts, err = fx.repo.Find(ctx, PostFilter{Now: testNow}.InCategory(fx.cat.ID).ByAuthor(fx.reader.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{"reader's"}, titles(posts))

	n, err := fx.repo.Count(ctx, PostFilter{Now: testNow})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPostRepository_Find_Pagination(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		offset := time.Duration(i+1) * time.Hour
		fx.post(t, "p", fx.cat, func(p *models.Post) { p.PubDate = testNow.Add(-offset) })
	}

	page1, err := fx.repo.Find(ctx, PostFilter{Now: testNow}.Page(1, 2))
	require.NoError(t, err)
	page3, err := fx.repo.Find(ctx, PostFilter{Now: testNow}.Page(3, 2))
	require.NoError(t, err)
	page4, err := fx.repo.Find(ctx, PostFilter{Now: testNow}.Page(4, 2))
	require.NoError(t, err)

	assert.Len(t, page1, 2)
	assert.Len(t, page3, 1)
	assert.Empty(t, page4)

	// Count ignores Limit/Offset
	n, err := fx.repo.Count(ctx, PostFilter{Now: testNow}.Page(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestPostRepository_Get_AuthorOverride(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	draft := fx.post(t, "draft", fx.hidden, func(p *models.Post) { p.IsPublished = false })

	got, err := fx.repo.Get(ctx, PostFilter{Now: testNow, ViewerID: fx.author.ID}.ByID(draft.ID))
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, "author", got.Author.Username)

	_, err = fx.repo.Get(ctx, PostFilter{Now: testNow, ViewerID: fx.reader.ID}.ByID(draft.ID))
	assert.True(t, models.IsNotFound(err))

	_, err = fx.repo.Get(ctx, PostFilter{Now: testNow}.ByID(draft.ID))
	assert.True(t, models.IsNotFound(err))

	_, err = fx.repo.Get(ctx, PostFilter{Now: testNow})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestPostRepository_Get_Details(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	loc, err := fx.factory.CreateLocation(func(l *models.Location) { l.Name = "Lisbon" })
	require.NoError(t, err)
	p := fx.post(t, "with details", fx.cat, func(p *models.Post) { p.LocationID = &loc.ID })
	for i := 0; i < 3; i++ {
		_, err := fx.factory.CreateComment(fx.reader, p)
		require.NoError(t, err)
	}

	got, err := fx.repo.Get(ctx, PostFilter{Now: testNow}.ByID(p.ID))
	require.NoError(t, err)
	assert.Equal(t, 3, got.CommentCount)
	require.NotNil(t, got.Category)
	assert.Equal(t, "travel", got.Category.Slug)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Lisbon", got.Location.Name)

	raw, err := fx.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, raw.CommentCount)

	_, err = fx.repo.GetByID(ctx, 9999)
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_Update_PreservesAuthor(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	p := fx.post(t, "before", fx.cat)
	created := p.CreatedAt

	edit := &models.Post{
		ID:          p.ID,
		Title:       "after",
		Text:        "edited",
		PubDate:     testNow.Add(24 * time.Hour),
		IsPublished: false,
		AuthorID:    fx.reader.ID,
		CategoryID:  &fx.hidden.ID,
	}
	require.NoError(t, fx.repo.Update(ctx, edit))

	got, err := fx.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.False(t, got.IsPublished)
	assert.Equal(t, fx.author.ID, got.AuthorID)
	assert.True(t, created.Equal(got.CreatedAt))
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, fx.hidden.ID, *got.CategoryID)
	assert.Nil(t, got.LocationID)

	err = fx.repo.Update(ctx, &models.Post{ID: 9999, Title: "x", Text: "x", PubDate: testNow})
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_Delete_RemovesComments(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	doomed := fx.post(t, "doomed", fx.cat)
	kept := fx.post(t, "kept", fx.cat)
	for _, p := range []*models.Post{doomed, doomed, kept} {
		_, err := fx.factory.CreateComment(fx.reader, p)
		require.NoError(t, err)
	}

	require.NoError(t, fx.repo.Delete(ctx, doomed.ID))

	var remaining int64
	require.NoError(t, fx.db.Model(&models.Comment{}).Where("post_id = ?", doomed.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, fx.db.Model(&models.Comment{}).Where("post_id = ?", kept.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)

	_, err := fx.repo.GetByID(ctx, doomed.ID)
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(fx.repo.Delete(ctx, doomed.ID)))
}

func TestPostRepository_CategoryDelete_SetsNull(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	p := fx.post(t, "orphan", fx.cat)
	require.NoError(t, fx.db.Delete(&models.Category{}, fx.cat.ID).Error)

	got, err := fx.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	// no category: author-visible only
	_, err = fx.repo.Get(ctx, PostFilter{Now: testNow}.ByID(p.ID))
	assert.True(t, models.IsNotFound(err))
	_, err = fx.repo.Get(ctx, PostFilter{Now: testNow, ViewerID: fx.author.ID}.ByID(p.ID))
	assert.NoError(t, err)
}

func TestPostRepository_Create(t *testing.T) {
	fx := newPostFixture(t)
	ctx := context.Background()

	p := &models.Post{
		Title:       "fresh",
		Text:        "body",
		PubDate:     testNow,
		IsPublished: true,
		AuthorID:    fx.author.ID,
		CategoryID:  &fx.cat.ID,
		// associations are never written through a post
		Author: models.User{Username: "ignored"},
	}
	require.NoError(t, fx.repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	var users int64
	require.NoError(t, fx.db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}
