package server

import (
	"time"

	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PostList handles GET / with every publicly visible post.
func (s *Server) PostList(c *fiber.Ctx) error {
	number, err := pageNumber(c)
	if err != nil {
		return err
	}
	page, err := s.postService.List(c.UserContext(), middleware.ActorFrom(c), number)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/index", fiber.Map{"Page": page})
}

// CategoryPosts handles GET /category/:slug/.
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	number, err := pageNumber(c)
	if err != nil {
		return err
	}
	category, page, err := s.postService.Category(c.UserContext(), middleware.ActorFrom(c), c.Params("slug"), number)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/category", fiber.Map{
		"Category": category,
		"Page":     page,
	})
}

// PostDetail handles GET /posts/:id/ with comments and the comment form.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	return s.renderDetail(c, id, validation.CommentForm{}, nil)
}

func (s *Server) renderDetail(c *fiber.Ctx, id uint, form validation.CommentForm, errs map[string]string) error {
	post, comments, err := s.postService.Detail(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/detail", fiber.Map{
		"Post":         post,
		"Comments":     comments,
		"Form":         form,
		"Errors":       errs,
		"CommentsOpen": s.flags.Enabled(featureflags.Comments, middleware.ActorFrom(c).ID),
	})
}

func (s *Server) renderPostForm(c *fiber.Ctx, post *models.Post, form validation.PostForm, errs map[string]string) error {
	choices, err := s.postService.FormChoices(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/create", fiber.Map{
		"Post":    post,
		"Form":    form,
		"Errors":  errs,
		"Choices": choices,
	})
}

// PostCreateForm handles GET /posts/create/.
func (s *Server) PostCreateForm(c *fiber.Ctx) error {
	form := validation.PostForm{
		PubDate:     validation.FormatPubDate(time.Now().UTC().Truncate(time.Minute)),
		IsPublished: true,
	}
	return s.renderPostForm(c, nil, form, nil)
}

// PostCreate handles POST /posts/create/ and sends the author to their profile.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	actor := middleware.ActorFrom(c)
	if _, err := s.postService.Create(c.UserContext(), actor, form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			return s.renderPostForm(c, nil, form, errs)
		}
		return err
	}
	return c.Redirect(profileURL(actor.Username), fiber.StatusSeeOther)
}

// PostEditForm handles GET /posts/:id/edit/ for the post's author.
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.Editable(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return s.deny(c, err, "Post", id, id)
	}
	return s.renderPostForm(c, post, postForm(post), nil)
}

// PostEdit handles POST /posts/:id/edit/.
func (s *Server) PostEdit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	actor := middleware.ActorFrom(c)
	if _, err := s.postService.Update(c.UserContext(), actor, id, form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			return s.renderPostForm(c, &models.Post{ID: id}, form, errs)
		}
		return s.deny(c, err, "Post", id, id)
	}
	return c.Redirect(postURL(id), fiber.StatusSeeOther)
}

// PostDeleteConfirm handles GET /posts/:id/delete/.
func (s *Server) PostDeleteConfirm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.Deletable(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		return s.deny(c, err, "Post", id, id)
	}
	return s.render(c, fiber.StatusOK, "blog/post_delete", fiber.Map{"Post": post})
}

// PostDelete handles POST /posts/:id/delete/.
func (s *Server) PostDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	if err := s.postService.Delete(c.UserContext(), actor, id); err != nil {
		return s.deny(c, err, "Post", id, id)
	}
	return c.Redirect(profileURL(actor.Username), fiber.StatusSeeOther)
}
