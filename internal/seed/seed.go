package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Options configures a seed run.
type Options struct {
	NumUsers        int
	NumCategories   int
	NumLocations    int
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
	FactoryOptions
}

// DefaultOptions is a small demo data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:        10,
		NumCategories:   4,
		NumLocations:    5,
		NumPosts:        40,
		CommentsPerPost: 3,
		ShouldClean:     false,
	}
}

// Result reports what a seed run created.
type Result struct {
	Users      []*models.User
	Categories []*models.Category
	Locations  []*models.Location
	Posts      []*models.Post
	Comments   int
}

// Seeder fills the database with demo content, including hidden posts so every
// visibility rule has something to hide.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts.FactoryOptions)}
}

// ClearAll deletes every blog row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("Clearing existing data...")
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.Comment{}, &models.Post{}, &models.Location{}, &models.Category{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, categories, locations, posts and comments.
//
// One category is left unpublished and roughly one post in eight is either a
// draft or scheduled in the future, so a fresh demo shows the visibility rules.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}
	if s.opts.NumUsers < 1 {
		return nil, fmt.Errorf("seed needs at least one user")
	}

	res := &Result{}
	f := s.factory

	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		res.Users = append(res.Users, u)
	}
	log.Printf("✓ %d users created", len(res.Users))

	for i := 0; i < s.opts.NumCategories; i++ {
		published := i != s.opts.NumCategories-1 || s.opts.NumCategories == 1
		c, err := f.CreateCategory(func(c *models.Category) { c.IsPublished = published })
		if err != nil {
			return nil, fmt.Errorf("failed to create categories: %w", err)
		}
		res.Categories = append(res.Categories, c)
	}
	log.Printf("✓ %d categories created", len(res.Categories))

	for i := 0; i < s.opts.NumLocations; i++ {
		l, err := f.CreateLocation()
		if err != nil {
			return nil, fmt.Errorf("failed to create locations: %w", err)
		}
		res.Locations = append(res.Locations, l)
	}
	log.Printf("✓ %d locations created", len(res.Locations))

	for i := 0; i < s.opts.NumPosts; i++ {
		author := res.Users[f.rnd.Intn(len(res.Users))]
		var category *models.Category
		if len(res.Categories) > 0 {
			category = res.Categories[f.rnd.Intn(len(res.Categories))]
		}
		var location *models.Location
		if len(res.Locations) > 0 && f.rnd.Intn(2) == 0 {
			location = res.Locations[f.rnd.Intn(len(res.Locations))]
		}

		slot := i % 8
		p, err := f.CreatePost(author, category, func(p *models.Post) {
			if location != nil {
				p.LocationID = &location.ID
			}
			switch slot {
			case 6:
				p.IsPublished = false
			case 7:
				p.PubDate = time.Now().UTC().Add(time.Duration(1+f.rnd.Intn(14)) * 24 * time.Hour).Truncate(time.Minute)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create posts: %w", err)
		}
		res.Posts = append(res.Posts, p)

		for j := 0; j < s.opts.CommentsPerPost; j++ {
			commenter := res.Users[f.rnd.Intn(len(res.Users))]
			if _, err := f.CreateComment(commenter, p); err != nil {
				return nil, fmt.Errorf("failed to create comments: %w", err)
			}
			res.Comments++
		}
	}
	log.Printf("✓ %d posts and %d comments created", len(res.Posts), res.Comments)

	return res, nil
}
