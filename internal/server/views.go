package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

const baseLayout = "layouts/base"

func newViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("date", func(t time.Time) string {
		return t.Format("2 January 2006, 15:04")
	})
	engine.AddFunc("inputDate", validation.FormatPubDate)
	engine.AddFunc("truncateWords", truncateWords)
	engine.AddFunc("locationShown", policy.LocationShown)
	return engine, nil
}

// truncateWords keeps the first n words of s, marking the cut with an ellipsis.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + " …"
}

// render writes a page inside the base layout with the shared context added.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	actor := middleware.ActorFrom(c)
	data["Actor"] = actor
	data["CSRF"], _ = c.Locals(csrfContextKey).(string)
	data["Path"] = c.Path()
	data["RegistrationOpen"] = s.flags.Enabled(featureflags.Registration, actor.ID)
	return c.Status(status).Render(name, data, baseLayout)
}

// feature hides a route behind a feature flag.
func (s *Server) feature(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.flags.Enabled(name, middleware.ActorFrom(c).ID) {
			return fiber.ErrNotFound
		}
		return c.Next()
	}
}

// staticPage serves a template that needs no data.
func (s *Server) staticPage(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.render(c, fiber.StatusOK, name, nil)
	}
}

// postForm pre-fills the post form from an existing post.
func postForm(post *models.Post) validation.PostForm {
	form := validation.PostForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     validation.FormatPubDate(post.PubDate),
		IsPublished: post.IsPublished,
	}
	if post.CategoryID != nil {
		form.Category = *post.CategoryID
	}
	if post.LocationID != nil {
		form.Location = *post.LocationID
	}
	return form
}
