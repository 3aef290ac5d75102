package repository

import (
	"context"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context, publishedOnly bool) ([]models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	// FirstOrCreate returns the location with this name, creating it when missing.
	FirstOrCreate(ctx context.Context, location *models.Location) error
	SetPublished(ctx context.Context, id uint, published bool) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, mapError(err, "Location", id)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context, publishedOnly bool) ([]models.Location, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}

	locations := make([]models.Location, 0)
	if err := q.Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return mapError(err, "Location", location.Name)
	}
	return nil
}

func (r *locationRepository) FirstOrCreate(ctx context.Context, location *models.Location) error {
	err := r.db.WithContext(ctx).
		Where(models.Location{Name: location.Name}).
		Attrs(models.Location{IsPublished: location.IsPublished}).
		FirstOrCreate(location).Error
	if err != nil {
		return mapError(err, "Location", location.Name)
	}
	return nil
}

func (r *locationRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Location{ID: id}).Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Location", id)
	}
	return nil
}
