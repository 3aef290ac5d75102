package repository

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	// Upsert inserts or overwrites the category with the same slug.
	Upsert(ctx context.Context, category *models.Category) error
	SetPublished(ctx context.Context, slug string, published bool) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, mapError(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, mapError(err, "Category", slug)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, publishedOnly bool) ([]models.Category, error) {
	q := r.db.WithContext(ctx).Order("title ASC")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}

	categories := make([]models.Category, 0)
	if err := q.Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return mapError(err, "Category", category.Slug)
	}
	return nil
}

func (r *categoryRepository) Upsert(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "is_published"}),
	}).Create(category).Error
	if err != nil {
		return mapError(err, "Category", category.Slug)
	}
	return nil
}

func (r *categoryRepository) SetPublished(ctx context.Context, slug string, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", slug)
	}
	return nil
}
