package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/i18n"
	"github.com/spec-kit/account-service/internal/service"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// SessionCookie describes the session cookie written on login.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie SessionCookie
	msgs   *i18n.Localizer
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie SessionCookie, msgs *i18n.Localizer) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie, msgs: msgs}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, issued, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, issued)
	return c.JSON(h.authResponse(c, "loginSuccess", user, issued))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	user, issued, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		SecretKey: req.SecretKey,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, issued)
	return c.Status(http.StatusCreated).JSON(h.authResponse(c, "adminRegisterSuccess", user, issued))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.ErrUnauthorized
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(dto.MessageResponse{Message: h.msgs.T(c, "logoutSuccess")})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.ErrUnauthorized
	}
	return c.JSON(dto.NewUserResponse(principal.User))
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, issued *domain.IssuedSession) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    issued.Token,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) authResponse(c *fiber.Ctx, key string, user *domain.User, issued *domain.IssuedSession) dto.AuthResponse {
	return dto.AuthResponse{
		Message:   h.msgs.T(c, key),
		User:      dto.NewUserResponse(user),
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}
}
