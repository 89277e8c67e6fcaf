package listings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	listsvc "estate-marketplace/internal/application/listings"
	"estate-marketplace/internal/contracts"
	"estate-marketplace/internal/domain"
	"estate-marketplace/internal/infrastructure/backendapi"
	"estate-marketplace/internal/middleware"
	"estate-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// PropertyLister fetches the backend property list used to resolve backend refs.
type PropertyLister interface {
	ListProperties(ctx context.Context, token string) ([]domain.BackendProperty, error)
}

type Handlers struct {
	Service  *listsvc.Service
	Backend  PropertyLister
	MediaDir string
}

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true}

// errorStatus maps service errors to HTTP status and message.
func errorStatus(err error) (int, string) {
	var pubErr *listsvc.PublishError
	var apiErr *backendapi.APIError
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return fiber.StatusUnauthorized, "Authentication token is required"
	case errors.Is(err, domain.ErrListingNotFound):
		return fiber.StatusNotFound, "Listing not found"
	case errors.Is(err, domain.ErrListingRemoved):
		return fiber.StatusConflict, "Listing has been removed"
	case errors.Is(err, domain.ErrAlreadyPublished):
		return fiber.StatusConflict, "Listing is already published"
	case errors.Is(err, domain.ErrNotEditable):
		return fiber.StatusConflict, "Published listings cannot be edited"
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return fiber.StatusBadRequest, "Coordinates out of range"
	case errors.As(err, &pubErr), errors.As(err, &apiErr):
		return fiber.StatusBadGateway, "Failed to submit listing"
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

func respondErr(c *fiber.Ctx, err error) error {
	status, msg := errorStatus(err)
	if status >= 500 {
		ev := log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("path", c.Path())
		var pubErr *listsvc.PublishError
		if errors.As(err, &pubErr) {
			ev = ev.Str("step", string(pubErr.Step)).Int64("property_id", pubErr.PropertyID)
		}
		ev.Msg(msg)
	}
	return response.Error(c, msg, status, nil)
}

// decodeDraft validates the body against the draft contract and decodes it.
func decodeDraft(c *fiber.Ctx) (listsvc.DraftInput, error) {
	var in listsvc.DraftInput
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return in, nil
	}
	if err := contracts.Validate(contracts.DraftInput, body); err != nil {
		return in, err
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return in, err
	}
	return in, nil
}

// POST /api/v1/listings/drafts
func (h *Handlers) CreateDraft(c *fiber.Ctx) error {
	in, err := decodeDraft(c)
	if err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, fiber.Map{"reason": err.Error()})
	}
	draft, err := h.Service.CreateDraft(c.UserContext(), middleware.GetOwner(c), in)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Draft created successfully", draft, nil)
}

// GET /api/v1/listings/drafts?include_removed=true
func (h *Handlers) ListDrafts(c *fiber.Ctx) error {
	includeRemoved := c.QueryBool("include_removed", false)
	drafts, err := h.Service.ListDrafts(c.UserContext(), middleware.GetOwner(c), includeRemoved)
	if err != nil {
		return respondErr(c, err)
	}
	return response.List(c, "Drafts fetched successfully", drafts)
}

// GET /api/v1/listings/:id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.Error(c, "id is required", fiber.StatusBadRequest, nil)
	}
	var backend []domain.BackendProperty
	if domain.ParseRef(id).IsBackend() && h.Backend != nil {
		props, err := h.Backend.ListProperties(c.UserContext(), middleware.GetToken(c))
		if err != nil {
			log.Warn().Err(err).Str("listing_id", id).Msg("Backend property list unavailable")
			return response.Error(c, "Failed to fetch marketplace properties", fiber.StatusBadGateway, nil)
		}
		backend = props
	}
	listing, err := h.Service.GetListing(c.UserContext(), middleware.GetOwner(c), id, backend)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// PUT /api/v1/listings/drafts/:id
func (h *Handlers) UpdateDraft(c *fiber.Ctx) error {
	in, err := decodeDraft(c)
	if err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, fiber.Map{"reason": err.Error()})
	}
	draft, err := h.Service.UpdateDraft(c.UserContext(), middleware.GetOwner(c), c.Params("id"), in)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Draft updated successfully", draft, nil)
}

// DELETE /api/v1/listings/drafts/:id
func (h *Handlers) RemoveDraft(c *fiber.Ctx) error {
	draft, err := h.Service.RemoveDraft(c.UserContext(), middleware.GetOwner(c), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Draft removed successfully", draft, nil)
}

// POST /api/v1/listings/drafts/:id/images (multipart, field "file")
func (h *Handlers) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, "file is required", fiber.StatusBadRequest, nil)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return response.Error(c, "Unsupported image type", fiber.StatusBadRequest, nil)
	}

	dir := h.MediaDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return respondErr(c, err)
	}
	name := strings.ToLower(ulid.Make().String()) + ext
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return respondErr(c, err)
	}

	draft, err := h.Service.AddImage(c.UserContext(), middleware.GetOwner(c), c.Params("id"),
		domain.ImageRef{URI: name, Kind: domain.ImageLocal})
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Image added successfully", draft, nil)
}

// POST /api/v1/listings/drafts/:id/publish
func (h *Handlers) Publish(c *fiber.Ctx) error {
	listing, err := h.Service.Publish(c.UserContext(), middleware.GetOwner(c), middleware.GetToken(c), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Listing published successfully", listing, nil)
}
