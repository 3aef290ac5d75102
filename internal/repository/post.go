package repository

import (
	"context"

	"blogicum/internal/models"
	"blogicum/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// Find returns the posts matching f, newest pub_date first. Never nil.
	Find(ctx context.Context, f PostFilter) ([]*models.Post, error)
	// Count returns how many posts match f, ignoring Limit and Offset.
	Count(ctx context.Context, f PostFilter) (int64, error)
	// Get returns the single post matching f (PostID must be set) or NOT_FOUND.
	Get(ctx context.Context, f PostFilter) (*models.Post, error)
	// GetByID loads a post regardless of visibility.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post together with its comments.
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withDetails selects the comment count alongside each post and preloads its relations.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count").
		Preload("Author").
		Preload("Category").
		Preload("Location")
}

func (r *postRepository) Find(ctx context.Context, f PostFilter) ([]*models.Post, error) {
	defer observability.TrackQuery("find", "posts")()

	base := r.db.Session(&gorm.Session{NewDB: true})
	q := withDetails(f.apply(r.db.WithContext(ctx).Model(&models.Post{}), base)).
		Order("posts.pub_date DESC").
		Order("posts.id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	posts := make([]*models.Post, 0)
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	defer observability.TrackQuery("count", "posts")()

	base := r.db.Session(&gorm.Session{NewDB: true})
	var n int64
	if err := f.apply(r.db.WithContext(ctx).Model(&models.Post{}), base).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) Get(ctx context.Context, f PostFilter) (*models.Post, error) {
	if f.PostID == nil {
		return nil, models.NewValidationError("post id is required")
	}
	f.Limit, f.Offset = 1, 0

	posts, err := r.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Post", *f.PostID)
	}
	return posts[0], nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := withDetails(r.db.WithContext(ctx).Model(&models.Post{})).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return mapError(err, "Post", post.ID)
	}
	return nil
}

// Update writes the editable columns only; author and created_at are never touched.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	res := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select("title", "text", "pub_date", "is_published", "category_id", "location_id").
		Updates(post)
	if res.Error != nil {
		return mapError(res.Error, "Post", post.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return mapError(err, "Comment", id)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return mapError(res.Error, "Post", id)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}
