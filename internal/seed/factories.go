// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the plain-text password given to every generated user.
const DefaultPassword = "password123"

// FactoryOptions tunes how the Factory builds records.
type FactoryOptions struct {
	// SkipBcrypt stores a cheap hash so large seeds and tests stay fast.
	SkipBcrypt bool
	// DryRun assigns synthetic IDs and logs instead of writing.
	DryRun bool
	// MaxDays spreads generated pub_dates over the last MaxDays days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed runs and tests.
type Factory struct {
	db   *gorm.DB
	opts FactoryOptions
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// password hash computed once per factory
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		log.Printf("seed: bcrypt failed: %v", err)
		return ""
	}
	f.hash = string(hashed)
	return f.hash
}

func (f *Factory) persist(kind string, value interface{}, setID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		setID(f.nextID)
		log.Printf("[dry-run] Create%s: %+v", kind, value)
		return nil
	}
	return f.db.Omit(clause.Associations).Create(value).Error
}

// RandomPastTime returns a UTC time within the last MaxDays days.
func (f *Factory) RandomPastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back).Truncate(time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	handle := alnum(first, "user")
	user := &models.User{
		Username:  fmt.Sprintf("%s.%s%d", handle, alnum(last, "blog"), gofakeit.Number(100, 99999)),
		Email:     fmt.Sprintf("%s%d@example.com", handle, gofakeit.Number(100, 99999)),
		FirstName: first,
		LastName:  last,
		Password:  f.passwordHash(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.persist("User", user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory constructs and persists a published `models.Category`.
func (f *Factory) CreateCategory(overrides ...func(*models.Category)) (*models.Category, error) {
	word := alnum(gofakeit.Word(), "category")
	category := &models.Category{
		Title:       strings.ToUpper(word[:1]) + word[1:],
		Description: gofakeit.Sentence(12),
		Slug:        fmt.Sprintf("%s-%d", word, gofakeit.Number(1000, 999999)),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(category)
	}

	if err := f.persist("Category", category, func(id uint) { category.ID = id }); err != nil {
		return nil, err
	}
	return category, nil
}

// alnum lowercases w and drops everything but ascii letters and digits.
func alnum(w, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// CreateLocation constructs and persists a published `models.Location`.
func (f *Factory) CreateLocation(overrides ...func(*models.Location)) (*models.Location, error) {
	location := &models.Location{
		Name:        gofakeit.City(),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(location)
	}

	if err := f.persist("Location", location, func(id uint) { location.ID = id }); err != nil {
		return nil, err
	}
	return location, nil
}

// BuildPost constructs a published, already due post without persisting it.
// category may be nil.
func (f *Factory) BuildPost(author *models.User, category *models.Category, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Text:        gofakeit.Paragraph(2, 4, 12, "\n\n"),
		PubDate:     f.RandomPastTime(),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds a post with BuildPost and persists it.
func (f *Factory) CreatePost(author *models.User, category *models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, category, overrides...)
	if err := f.persist("Post", post, func(id uint) { post.ID = id }); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     gofakeit.Sentence(8),
		AuthorID: author.ID,
		PostID:   post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.persist("Comment", comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}
