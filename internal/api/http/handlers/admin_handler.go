package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// AdminHandler exposes user management for admins.
type AdminHandler struct {
	users *service.UserService
	auth  *service.AuthService
	msgs  *i18n.Localizer
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, authService *service.AuthService, msgs *i18n.Localizer) *AdminHandler {
	return &AdminHandler{users: users, auth: authService, msgs: msgs}
}

// List handles GET /api/admin/users.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserListResponse(users))
}

// Create handles POST /api/admin/users.
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	input := service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     domain.Role(req.Role),
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}

	user, err := h.users.Create(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(h.userMessage(c, "userCreated", user))
}

// Update handles PUT /api/admin/users/:id.
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	input := service.AdminUpdateInput{
		UpdateUserInput: service.UpdateUserInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		},
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.users.AdminUpdate(c.UserContext(), principal, id, input)
	if err != nil {
		return err
	}
	return c.JSON(h.userMessage(c, "userUpdated", user))
}

// Delete handles DELETE /api/admin/users/:id.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Delete(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(h.userMessage(c, "userDeleted", user))
}

// Activate handles POST /api/admin/users/:id/activate.
func (h *AdminHandler) Activate(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Activate(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(h.userMessage(c, "accountActivated", user))
}

// Deactivate handles POST /api/admin/users/:id/deactivate.
func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	principal, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Deactivate(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(h.userMessage(c, "accountDeactivated", user))
}

func (h *AdminHandler) userMessage(c *fiber.Ctx, key string, user *domain.User) dto.UserMessageResponse {
	return dto.UserMessageResponse{Message: h.msgs.T(c, key), User: dto.NewUserResponse(user)}
}

func adminPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, errorutil.ErrUnauthorized
	}
	if !principal.User.IsAdmin() {
		return nil, errorutil.ErrAdminRequired
	}
	return principal, nil
}
