package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func commentIDs(c *fiber.Ctx) (postID, commentID uint, err error) {
	if postID, err = paramID(c, "id"); err != nil {
		return 0, 0, err
	}
	if commentID, err = paramID(c, "comment_id"); err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}

// CommentCreate handles POST /posts/:id/comment/. An invalid comment redisplays the post.
func (s *Server) CommentCreate(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	if _, err := s.commentService.Create(c.UserContext(), middleware.ActorFrom(c), postID, form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			return s.renderDetail(c, postID, form, errs)
		}
		return err
	}
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// CommentEditForm handles GET /posts/:id/edit_comment/:comment_id/.
func (s *Server) CommentEditForm(c *fiber.Ctx) error {
	postID, commentID, err := commentIDs(c)
	if err != nil {
		return err
	}
	comment, err := s.commentService.Editable(c.UserContext(), middleware.ActorFrom(c), postID, commentID)
	if err != nil {
		return s.deny(c, err, "Comment", commentID, postID)
	}
	return s.render(c, fiber.StatusOK, "blog/comment", fiber.Map{
		"Comment": comment,
		"Form":    validation.CommentForm{Text: comment.Text},
	})
}

// CommentEdit handles POST /posts/:id/edit_comment/:comment_id/.
func (s *Server) CommentEdit(c *fiber.Ctx) error {
	postID, commentID, err := commentIDs(c)
	if err != nil {
		return err
	}
	var form validation.CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	if _, err := s.commentService.Update(c.UserContext(), middleware.ActorFrom(c), postID, commentID, form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			return s.render(c, fiber.StatusOK, "blog/comment", fiber.Map{
				"Comment": &models.Comment{ID: commentID, PostID: postID},
				"Form":    form,
				"Errors":  errs,
			})
		}
		return s.deny(c, err, "Comment", commentID, postID)
	}
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}

// CommentDeleteConfirm handles GET /posts/:id/delete_comment/:comment_id/.
func (s *Server) CommentDeleteConfirm(c *fiber.Ctx) error {
	postID, commentID, err := commentIDs(c)
	if err != nil {
		return err
	}
	comment, err := s.commentService.Deletable(c.UserContext(), middleware.ActorFrom(c), postID, commentID)
	if err != nil {
		return s.deny(c, err, "Comment", commentID, postID)
	}
	return s.render(c, fiber.StatusOK, "blog/comment_delete", fiber.Map{"Comment": comment})
}

// CommentDelete handles POST /posts/:id/delete_comment/:comment_id/.
func (s *Server) CommentDelete(c *fiber.Ctx) error {
	postID, commentID, err := commentIDs(c)
	if err != nil {
		return err
	}
	if err := s.commentService.Delete(c.UserContext(), middleware.ActorFrom(c), postID, commentID); err != nil {
		return s.deny(c, err, "Comment", commentID, postID)
	}
	return c.Redirect(postURL(postID), fiber.StatusSeeOther)
}
