package repository

import (
	"time"

	"gorm.io/gorm"
)

// PostFilter selects posts for every listing and lookup page.
//
// The zero value lists all publicly visible posts: published, due (pub_date <= Now) and
// in a published category. Posts without a category never pass the visibility check.
type PostFilter struct {
	PostID     *uint
	CategoryID *uint
	AuthorID   *uint

	// IncludeHidden skips the visibility predicate entirely. Set it only when the
	// viewer owns every post the other constraints can match.
	IncludeHidden bool

	// ViewerID admits the viewer's own post on single-post lookups (PostID set).
	ViewerID uint

	Limit  int
	Offset int

	// Now is the visibility cutoff. Zero means the current UTC time.
	Now time.Time
}

// Clock returns the visibility cutoff in UTC.
func (f PostFilter) Clock() time.Time {
	if f.Now.IsZero() {
		return time.Now().UTC()
	}
	return f.Now.UTC()
}

func uintPtr(v uint) *uint {
	return &v
}

// ByID narrows the filter to one post.
func (f PostFilter) ByID(id uint) PostFilter {
	f.PostID = uintPtr(id)
	return f
}

// InCategory narrows the filter to one category.
func (f PostFilter) InCategory(id uint) PostFilter {
	f.CategoryID = uintPtr(id)
	return f
}

// ByAuthor narrows the filter to one author.
func (f PostFilter) ByAuthor(id uint) PostFilter {
	f.AuthorID = uintPtr(id)
	return f
}

// Page sets Limit/Offset for a 1-based page number.
func (f PostFilter) Page(page, size int) PostFilter {
	if page < 1 {
		page = 1
	}
	f.Limit = size
	f.Offset = (page - 1) * size
	return f
}

// apply adds joins and WHERE clauses to q. base must be a statement-free handle used
// to build the grouped visibility condition.
func (f PostFilter) apply(q, base *gorm.DB) *gorm.DB {
	q = q.Joins("LEFT JOIN categories ON categories.id = posts.category_id")

	if f.PostID != nil {
		q = q.Where("posts.id = ?", *f.PostID)
	}
	if f.CategoryID != nil {
		q = q.Where("posts.category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *f.AuthorID)
	}

	if f.IncludeHidden {
		return q
	}

	visible := base.Where(
		"posts.is_published = ? AND posts.pub_date <= ? AND categories.is_published = ?",
		true, f.Clock(), true,
	)
	if f.PostID != nil && f.ViewerID != 0 {
		visible = visible.Or("posts.author_id = ?", f.ViewerID)
	}
	return q.Where(visible)
}
