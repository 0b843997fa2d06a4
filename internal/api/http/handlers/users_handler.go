package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// UsersHandler exposes the self-service user endpoints.
type UsersHandler struct {
	users *service.UserService
	msgs  *i18n.Localizer
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, msgs *i18n.Localizer) *UsersHandler {
	return &UsersHandler{users: users, msgs: msgs}
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Update handles PUT /api/users/:id. Only the owner or an admin may update.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.ErrUnauthorized
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateSelf(c.UserContext(), principal, id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.UserMessageResponse{
		Message: h.msgs.T(c, "userUpdated"),
		User:    dto.NewUserResponse(user),
	})
}
