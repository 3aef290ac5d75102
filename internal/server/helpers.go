package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error to the HTTP status of the page that reports it.
func statusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders the 403, 404 and 500 pages. Other statuses get a plain message.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var page string
	switch status {
	case fiber.StatusForbidden:
		page = "errors/403"
	case fiber.StatusNotFound:
		page = "errors/404"
	case fiber.StatusUnauthorized:
		return c.Redirect(loginURL(c.OriginalURL()), fiber.StatusSeeOther)
	default:
		if status >= fiber.StatusInternalServerError {
			middleware.Logger.ErrorContext(c.UserContext(), "request error",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			page = "errors/500"
		}
	}

	if page == "" {
		return c.Status(status).SendString(err.Error())
	}
	if rerr := s.render(c, status, page, nil); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "error page failed",
			slog.String("page", page), slog.String("error", rerr.Error()))
		return c.Status(status).SendString(fiber.ErrInternalServerError.Message)
	}
	return nil
}

// deny surfaces an authorization failure on a post or one of its comments
// according to AUTHZ_DENIAL_MODE. Other errors pass through.
func (s *Server) deny(c *fiber.Ctx, err error, resource string, id, postID uint) error {
	if models.ErrorCode(err) != models.CodeForbidden {
		return err
	}
	switch s.config.AuthzDenialMode {
	case config.DenialForbidden:
		return err
	case config.DenialRedirect:
		return c.Redirect(postURL(postID), fiber.StatusSeeOther)
	default:
		return models.NewNotFoundError(resource, id)
	}
}

// fieldErrors returns the per-field messages of a validation failure, or nil.
func fieldErrors(err error) map[string]string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeValidation && len(appErr.Fields) > 0 {
		return appErr.Fields
	}
	return nil
}

// paramID reads a positive integer route parameter. Routes constrain it to
// digits, so a bad value means the object cannot exist.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError(name, c.Params(name))
	}
	return uint(id), nil
}

// pageNumber reads ?page=N. A value that is not a positive integer is NOT_FOUND.
func pageNumber(c *fiber.Ctx) (int, error) {
	raw := c.Query("page")
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, models.NewNotFoundError("Page", raw)
	}
	return n, nil
}

// safeNext accepts only same-site absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return ""
	}
	return next
}

func loginURL(next string) string {
	return "/auth/login/?next=" + url.QueryEscape(next)
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
