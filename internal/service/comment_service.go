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

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	now      func() time.Time
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateComment(form validation.CommentForm) error {
	if fields := validation.Struct(&form); fields != nil {
		return models.NewFieldErrors(fields)
	}
	return nil
}

// Create adds a comment to a post the actor can currently see.
func (s *CommentService) Create(ctx context.Context, actor policy.Actor, postID uint, form validation.CommentForm) (_ *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "Create", attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	if actor.Anonymous() {
		return nil, models.NewUnauthorizedError("login required")
	}
	post, err := s.posts.Get(ctx, repository.PostFilter{Now: s.now(), ViewerID: actor.ID}.ByID(postID))
	if err != nil {
		return nil, err
	}
	if err := validateComment(form); err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: form.Text, PostID: post.ID, AuthorID: actor.ID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "create").Inc()
	return comment, nil
}

// authorize loads the comment addressed as /posts/{postID}/.../{commentID}/ and
// checks action. A comment filed under another post is NOT_FOUND.
func (s *CommentService) authorize(ctx context.Context, actor policy.Actor, postID, commentID uint, action policy.Action) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if err := policy.AuthorizeComment(actor, comment, action); err != nil {
		observability.AuthzDenials.WithLabelValues("comment", string(action)).Inc()
		return nil, err
	}
	return comment, nil
}

// Editable returns the comment for its edit form, only to its author.
func (s *CommentService) Editable(ctx context.Context, actor policy.Actor, postID, commentID uint) (*models.Comment, error) {
	return s.authorize(ctx, actor, postID, commentID, policy.ActionEdit)
}

// Deletable returns the comment for the delete confirmation page.
func (s *CommentService) Deletable(ctx context.Context, actor policy.Actor, postID, commentID uint) (*models.Comment, error) {
	return s.authorize(ctx, actor, postID, commentID, policy.ActionDelete)
}

// Update replaces the comment text.
func (s *CommentService) Update(ctx context.Context, actor policy.Actor, postID, commentID uint, form validation.CommentForm) (_ *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "Update", attribute.Int64("comment.id", int64(commentID)))
	defer func() { observability.EndSpan(span, err) }()

	comment, err := s.authorize(ctx, actor, postID, commentID, policy.ActionEdit)
	if err != nil {
		return nil, err
	}
	if err := validateComment(form); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateText(ctx, comment.ID, form.Text); err != nil {
		return nil, err
	}
	comment.Text = form.Text
	observability.ContentWrites.WithLabelValues("comment", "update").Inc()
	return comment, nil
}

// Delete removes the comment. Only its author may.
func (s *CommentService) Delete(ctx context.Context, actor policy.Actor, postID, commentID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "Delete", attribute.Int64("comment.id", int64(commentID)))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.authorize(ctx, actor, postID, commentID, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	observability.ContentWrites.WithLabelValues("comment", "delete").Inc()
	return nil
}
