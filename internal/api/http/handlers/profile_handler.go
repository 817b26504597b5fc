package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicsys/clinic-services/internal/api/dto"
	"github.com/clinicsys/clinic-services/internal/auth"
	"github.com/clinicsys/clinic-services/internal/service"
)

// ProfileHandler exposes the user-profile endpoints. All /me routes resolve
// the subject from the request auth context.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profileService}
}

// GetMine handles GET /api/user/profiles/me.
func (h *ProfileHandler) GetMine(c *fiber.Ctx) error {
	authCtx, err := requireContext(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.GetByUserID(c.UserContext(), authCtx.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// CreateMine handles POST /api/user/profiles/me.
func (h *ProfileHandler) CreateMine(c *fiber.Ctx) error {
	authCtx, err := requireContext(c)
	if err != nil {
		return err
	}

	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.CreateForUser(c.UserContext(), authCtx.SubjectID, req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// UpdateMine handles PUT /api/user/profiles/me.
func (h *ProfileHandler) UpdateMine(c *fiber.Ctx) error {
	authCtx, err := requireContext(c)
	if err != nil {
		return err
	}

	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.ReplaceForUser(c.UserContext(), authCtx.SubjectID, req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// PatchSection handles PATCH /api/user/profiles/me/:section.
func (h *ProfileHandler) PatchSection(c *fiber.Ctx) error {
	authCtx, err := requireContext(c)
	if err != nil {
		return err
	}

	var updates map[string]any
	if err := c.BodyParser(&updates); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.UpdateSection(c.UserContext(), authCtx.SubjectID, c.Params("section"), updates)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// Completion handles GET /api/user/profiles/me/completion.
func (h *ProfileHandler) Completion(c *fiber.Ctx) error {
	authCtx, err := requireContext(c)
	if err != nil {
		return err
	}

	completion, err := h.profiles.Completion(c.UserContext(), authCtx.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": completion})
}

// List handles GET /api/user/profiles (admin).
func (h *ProfileHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	profiles, err := h.profiles.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, dto.NewProfileResponse(profile))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetByID handles GET /api/user/profiles/:id (admin).
func (h *ProfileHandler) GetByID(c *fiber.Ctx) error {
	profile, err := h.profiles.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// UpdateByID handles PUT /api/user/profiles/:id (admin).
func (h *ProfileHandler) UpdateByID(c *fiber.Ctx) error {
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	profile, err := h.profiles.ReplaceByID(c.UserContext(), c.Params("id"), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// DeleteByID handles DELETE /api/user/profiles/:id (admin).
func (h *ProfileHandler) DeleteByID(c *fiber.Ctx) error {
	if err := h.profiles.DeleteByID(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Search handles GET /api/user/profiles/search (admin).
func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	profiles, err := h.profiles.Search(c.UserContext(), query, limit, offset)
	if err != nil {
		return err
	}

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, dto.NewProfileResponse(profile))
	}
	return c.JSON(fiber.Map{"data": out})
}

// PublicPing handles GET /api/user/public/ping; it sits under an excluded
// prefix and needs no token.
func (h *ProfileHandler) PublicPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"pong": true}})
}

func requireContext(c *fiber.Ctx) (*auth.Context, error) {
	authCtx, ok := auth.ContextFrom(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return authCtx, nil
}
