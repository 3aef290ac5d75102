// Package service holds the page logic: load, authorize, validate, apply.
package service

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPageSize is used when the configured page size is not positive.
const DefaultPageSize = 10

// Page is one page of a post listing.
type Page struct {
	Posts    []*models.Post
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p *Page) HasNext() bool { return p.Number < p.NumPages }

// PrevNumber is the previous page number.
func (p *Page) PrevNumber() int { return p.Number - 1 }

// NextNumber is the next page number.
func (p *Page) NextNumber() int { return p.Number + 1 }

// FormChoices are the select options offered on the post form.
type FormChoices struct {
	Categories []models.Category
	Locations  []models.Location
}

type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	users      repository.UserRepository
	pageSize   int
	now        func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	users repository.UserRepository,
	pageSize int,
) *PostService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PostService{
		posts:      posts,
		comments:   comments,
		categories: categories,
		locations:  locations,
		users:      users,
		pageSize:   pageSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// paginate counts f's matches and loads the requested 1-based page. Pages past
// the end are NOT_FOUND, except page 1 which is always valid.
func (s *PostService) paginate(ctx context.Context, f repository.PostFilter, number int) (*Page, error) {
	if number < 1 {
		number = 1
	}
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	numPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if numPages < 1 {
		numPages = 1
	}
	if number > numPages {
		return nil, models.NewNotFoundError("Page", number)
	}

	posts, err := s.posts.Find(ctx, f.Page(number, s.pageSize))
	if err != nil {
		return nil, err
	}
	return &Page{Posts: posts, Number: number, Size: s.pageSize, Total: total, NumPages: numPages}, nil
}

// List is the home page: every publicly visible post.
func (s *PostService) List(ctx context.Context, viewer policy.Actor, page int) (_ *Page, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "List", attribute.Int("page", page))
	defer func() { observability.EndSpan(span, err) }()

	return s.paginate(ctx, repository.PostFilter{Now: s.now()}, page)
}

// Category lists a published category's visible posts. An unpublished category is
// NOT_FOUND for everyone, its posts' authors included.
func (s *PostService) Category(ctx context.Context, viewer policy.Actor, slug string, page int) (_ *models.Category, _ *Page, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Category", attribute.String("category.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !category.IsPublished {
		return nil, nil, models.NewNotFoundError("Category", slug)
	}

	p, err := s.paginate(ctx, repository.PostFilter{Now: s.now()}.InCategory(category.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return category, p, nil
}

// Profile lists a user's posts. The owner also sees drafts, scheduled posts and
// posts in hidden categories.
func (s *PostService) Profile(ctx context.Context, viewer policy.Actor, username string, page int) (_ *models.User, _ *Page, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Profile", attribute.String("profile.username", username))
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewNotFoundError("User", username)
	}

	f := repository.PostFilter{Now: s.now(), IncludeHidden: viewer.ID == user.ID}.ByAuthor(user.ID)
	p, err := s.paginate(ctx, f, page)
	if err != nil {
		return nil, nil, err
	}
	return user, p, nil
}

// Detail loads a post visible to viewer, with its comments oldest first.
func (s *PostService) Detail(ctx context.Context, viewer policy.Actor, id uint) (_ *models.Post, _ []*models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Detail", attribute.Int64("post.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.Get(ctx, repository.PostFilter{Now: s.now(), ViewerID: viewer.ID}.ByID(id))
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// FormChoices loads the category and location options for the post form.
func (s *PostService) FormChoices(ctx context.Context) (*FormChoices, error) {
	categories, err := s.categories.List(ctx, false)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return &FormChoices{Categories: categories, Locations: locations}, nil
}

// bind validates form and copies it onto post.
func (s *PostService) bind(ctx context.Context, form validation.PostForm, post *models.Post) error {
	fields := validation.Struct(&form)
	if fields == nil {
		fields = map[string]string{}
	}

	pubDate, perr := validation.ParsePubDate(form.PubDate)

	var categoryID *uint
	if form.Category != 0 {
		c, err := s.categories.GetByID(ctx, form.Category)
		switch {
		case models.IsNotFound(err):
			fields["category"] = "Select a valid choice."
		case err != nil:
			return err
		default:
			categoryID = &c.ID
		}
	}

	var locationID *uint
	if form.Location != 0 {
		l, err := s.locations.GetByID(ctx, form.Location)
		switch {
		case models.IsNotFound(err):
			fields["location"] = "Select a valid choice."
		case err != nil:
			return err
		default:
			locationID = &l.ID
		}
	}

	if len(fields) > 0 {
		return models.NewFieldErrors(fields)
	}
	if perr != nil {
		return models.NewFieldErrors(map[string]string{"pub_date": perr.Error()})
	}

	post.Title = form.Title
	post.Text = form.Text
	post.PubDate = pubDate
	post.IsPublished = form.IsPublished
	post.CategoryID = categoryID
	post.LocationID = locationID
	return nil
}

// Create stores a new post authored by actor.
func (s *PostService) Create(ctx context.Context, actor policy.Actor, form validation.PostForm) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Create", attribute.Int64("actor.id", int64(actor.ID)))
	defer func() { observability.EndSpan(span, err) }()

	if actor.Anonymous() {
		return nil, models.NewUnauthorizedError("login required")
	}

	post := &models.Post{AuthorID: actor.ID}
	if err := s.bind(ctx, form, post); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("post", "create").Inc()
	return post, nil
}

// authorize loads a post regardless of visibility and checks action against it.
func (s *PostService) authorize(ctx context.Context, actor policy.Actor, id uint, action policy.Action) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizePost(actor, post, action); err != nil {
		observability.AuthzDenials.WithLabelValues("post", string(action)).Inc()
		return nil, err
	}
	return post, nil
}

// Editable returns the post for a pre-filled edit form, only to its author.
func (s *PostService) Editable(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	return s.authorize(ctx, actor, id, policy.ActionEdit)
}

// Deletable returns the post for the delete confirmation page.
func (s *PostService) Deletable(ctx context.Context, actor policy.Actor, id uint) (*models.Post, error) {
	return s.authorize(ctx, actor, id, policy.ActionDelete)
}

// Update rewrites the post's editable fields. Author and creation time are kept.
func (s *PostService) Update(ctx context.Context, actor policy.Actor, id uint, form validation.PostForm) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Update", attribute.Int64("post.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.authorize(ctx, actor, id, policy.ActionEdit)
	if err != nil {
		return nil, err
	}
	if err := s.bind(ctx, form, post); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("post", "update").Inc()
	return post, nil
}

// Delete removes the post and its comments. Authors and staff may delete.
func (s *PostService) Delete(ctx context.Context, actor policy.Actor, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Delete", attribute.Int64("post.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.authorize(ctx, actor, id, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	observability.ContentWrites.WithLabelValues("post", "delete").Inc()
	return nil
}
