// Package policy holds the rules deciding who may see and who may change posts and comments.
package policy

import (
	"time"

	"blogicum/internal/models"
)

// Visible reports whether post is shown to readers at now. The category must be loaded;
// a post without a category is never publicly visible.
func Visible(post *models.Post, now time.Time) bool {
	if post == nil || !post.IsPublished {
		return false
	}
	if post.PubDate.After(now) {
		return false
	}
	return post.Category != nil && post.Category.IsPublished
}

// VisibleTo is Visible with the author override applied.
func VisibleTo(post *models.Post, viewerID uint, now time.Time) bool {
	if post != nil && post.IsAuthor(viewerID) {
		return true
	}
	return Visible(post, now)
}

// LocationShown reports whether the post's location may be displayed.
func LocationShown(post *models.Post) bool {
	return post.Location != nil && post.Location.IsPublished
}
