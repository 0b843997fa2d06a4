package http

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/i18n"
)

// registerFrontend serves the built SPA from dir, falling back to index.html
// for client-side routes. Without a dir, non-API GETs return a notice pointing
// at the dev server. Unknown /api paths always fall through to 404.
func registerFrontend(app *fiber.App, dir string, localizer *i18n.Localizer) {
	if dir != "" {
		app.Static("/", dir)
		index := filepath.Join(dir, "index.html")
		app.Get("/*", func(c *fiber.Ctx) error {
			if isAPIPath(c.Path()) {
				return c.Next()
			}
			return c.SendFile(index)
		})
		return
	}

	app.Get("/*", func(c *fiber.Ctx) error {
		if isAPIPath(c.Path()) {
			return c.Next()
		}
		return c.JSON(fiber.Map{"message": localizer.T(c, "devNotice")})
	})
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
