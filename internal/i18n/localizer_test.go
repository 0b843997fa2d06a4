package i18n

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizerReadsLocaleCookie(t *testing.T) {
	loc := NewLocalizer(NewCatalog(LocaleZhCN), "i18nextLng")
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(loc.T(c, "userNotFound"))
	})

	tests := map[string]string{
		"":      "用户不存在",
		"en":    "User not found",
		"en-GB": "User not found",
		"xx":    "用户不存在",
	}
	for cookie, want := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "i18nextLng", Value: cookie})
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), "cookie=%q", cookie)
	}
}
