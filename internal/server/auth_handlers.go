package server

import (
	"errors"
	"log/slog"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LoginForm handles GET /auth/login/.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "registration/login", fiber.Map{
		"Form": validation.LoginForm{},
		"Next": safeNext(c.Query("next")),
	})
}

// Login handles POST /auth/login/ and sets the session cookie.
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}
	next := safeNext(c.FormValue("next"))

	redisplay := func(errs map[string]string, message string) error {
		form.Password = ""
		return s.render(c, fiber.StatusOK, "registration/login", fiber.Map{
			"Form":    form,
			"Next":    next,
			"Errors":  errs,
			"Message": message,
		})
	}

	if errs := validation.Struct(&form); errs != nil {
		return redisplay(errs, "")
	}
	user, err := s.userService.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
			return redisplay(nil, appErr.Message)
		}
		return err
	}

	token, expires, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(s.sessions.Cookie(token, expires, s.config.IsProduction()))

	if next == "" {
		next = "/"
	}
	return c.Redirect(next, fiber.StatusSeeOther)
}

// Logout handles POST /auth/logout/. The token id is revoked so a copied cookie stops working.
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims := middleware.SessionFrom(c); claims != nil {
		if err := s.sessions.Revoke(c.UserContext(), claims); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revocation failed",
				slog.String("error", err.Error()))
		}
		observability.SessionEvents.WithLabelValues("logout", "success").Inc()
	}
	c.ClearCookie(middleware.SessionCookie)
	c.Locals(middleware.LocalActor, nil)
	return s.render(c, fiber.StatusOK, "registration/logged_out", nil)
}

// RegistrationForm handles GET /auth/registration/.
func (s *Server) RegistrationForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "registration/registration_form", fiber.Map{
		"Form": validation.RegistrationForm{},
	})
}

// Register handles POST /auth/registration/ and sends the new user to the login page.
func (s *Server) Register(c *fiber.Ctx) error {
	var form validation.RegistrationForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("malformed form")
	}

	if _, err := s.userService.Register(c.UserContext(), form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			form.Password, form.PasswordConfirm = "", ""
			return s.render(c, fiber.StatusOK, "registration/registration_form", fiber.Map{
				"Form":   form,
				"Errors": errs,
			})
		}
		return err
	}
	return c.Redirect("/auth/login/", fiber.StatusSeeOther)
}
