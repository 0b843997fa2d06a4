package i18n

import "github.com/gofiber/fiber/v2"

// Localizer resolves messages for the locale a request asks for through its
// locale cookie.
type Localizer struct {
	translator Translator
	cookieName string
}

// NewLocalizer binds a translator to the locale cookie name.
func NewLocalizer(translator Translator, cookieName string) *Localizer {
	return &Localizer{translator: translator, cookieName: cookieName}
}

// Locale returns the negotiated locale of the request.
func (l *Localizer) Locale(c *fiber.Ctx) string {
	return l.translator.Negotiate(c.Cookies(l.cookieName))
}

// T localizes key for the request.
func (l *Localizer) T(c *fiber.Ctx, key string) string {
	return l.translator.T(l.Locale(c), key)
}
