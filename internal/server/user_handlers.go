package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Profile handles GET /profile/:username/. The owner also sees their hidden posts.
func (s *Server) Profile(c *fiber.Ctx) error {
	number, err := pageNumber(c)
	if err != nil {
		return err
	}
	user, page, err := s.postService.Profile(c.UserContext(), middleware.ActorFrom(c), c.Params("username"), number)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/profile", fiber.Map{
		"Profile": user,
		"Page":    page,
	})
}

// ProfileEditForm handles GET /profile/edit/.
func (s *Server) ProfileEditForm(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), middleware.ActorFrom(c).ID)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/user", fiber.Map{
		"Form": validation.ProfileForm{
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
	})
}

// ProfileEdit handles POST /profile/edit/ and returns to the (possibly renamed) profile.
func (s *Server) ProfileEdit(c *fiber.Ctx) error {
	var form validation.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), middleware.ActorFrom(c), form)
	if err != nil {
		if errs := fieldErrors(err); errs != nil {
			return s.render(c, fiber.StatusOK, "blog/user", fiber.Map{"Form": form, "Errors": errs})
		}
		return err
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusSeeOther)
}
