package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicsys/clinic-services/internal/api/dto"
	"github.com/clinicsys/clinic-services/internal/service"
)

// AuthHandler exposes register, login, refresh and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}
	if len(req.Password) < 8 {
		return fiber.NewError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewAuthResponse(result),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.NewAuthResponse(result),
	})
}

// Refresh handles POST /api/auth/refresh. The refresh token travels in the
// Authorization header.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := bearerToken(c)
	if refreshToken == "" {
		return fiber.NewError(http.StatusBadRequest, "authorization header with bearer token required")
	}

	result, err := h.auth.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.NewAuthResponse(result),
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), bearerToken(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"loggedOut": true},
	})
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
