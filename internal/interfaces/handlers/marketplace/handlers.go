package marketplace

import (
	"errors"

	mktsvc "estate-marketplace/internal/application/marketplace"
	"estate-marketplace/internal/domain"
	"estate-marketplace/internal/infrastructure/backendapi"
	"estate-marketplace/internal/middleware"
	"estate-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles marketplace handlers.
type Handlers struct {
	Service *mktsvc.Service
}

func backendFailure(c *fiber.Ctx, err error) error {
	var apiErr *backendapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == fiber.StatusNotFound {
		return response.Error(c, "Property not found", fiber.StatusNotFound, nil)
	}
	if errors.Is(err, domain.ErrMissingToken) {
		return response.Unauthorized(c, "Authentication token is required")
	}
	log.Warn().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("Marketplace backend call failed")
	return response.Error(c, "Failed to fetch marketplace properties", fiber.StatusBadGateway, nil)
}

// GetAllProperties GET /api/v1/marketplace/properties
func (h *Handlers) GetAllProperties(c *fiber.Ctx) error {
	data, err := h.Service.GetAllProperties(c.UserContext(), middleware.GetToken(c))
	if err != nil {
		return backendFailure(c, err)
	}
	return response.List(c, "Properties fetched successfully", data)
}

// Search GET /api/v1/marketplace/properties/search?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	data, err := h.Service.Search(c.UserContext(), middleware.GetToken(c), c.Query("q"))
	if err != nil {
		if errors.Is(err, mktsvc.ErrEmptyQuery) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return backendFailure(c, err)
	}
	return response.List(c, "Properties fetched successfully", data)
}

// Bookmark POST /api/v1/marketplace/properties/:id/bookmark
func (h *Handlers) Bookmark(c *fiber.Ctx) error {
	err := h.Service.Bookmark(c.UserContext(), middleware.GetToken(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return response.Error(c, "Invalid property id", fiber.StatusBadRequest, nil)
		}
		return backendFailure(c, err)
	}
	return response.Success(c, "Property bookmarked", nil, nil)
}
