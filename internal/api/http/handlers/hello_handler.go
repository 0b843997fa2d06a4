package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/i18n"
)

// HelloHandler serves the API greeting.
type HelloHandler struct {
	msgs *i18n.Localizer
}

func NewHelloHandler(msgs *i18n.Localizer) *HelloHandler {
	return &HelloHandler{msgs: msgs}
}

// Hello handles GET /api/hello.
func (h *HelloHandler) Hello(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: h.msgs.T(c, "hello")})
}
