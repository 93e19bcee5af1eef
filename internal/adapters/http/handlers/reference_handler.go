package handlers

import (
	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler handles reference data (users, roles, statuses, leasing, PICs, surveyors, admins)
type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

func (h *ReferenceHandler) kind(c *fiber.Ctx) (services.ReferenceKind, bool) {
	return services.ParseReferenceKind(c.Params("kind"))
}

// List returns a reference collection
// @Summary List reference data
// @Tags References
// @Produce json
// @Param kind path string true "users, roles, statuses, leasing, pics, surveyors or admins"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /references/{kind} [get]
func (h *ReferenceHandler) List(c *fiber.Ctx) error {
	kind, ok := h.kind(c)
	if !ok {
		return response.NotFound(c, "Data referensi tidak dikenal")
	}

	items, err := h.referenceService.List(c.UserContext(), middleware.CurrentSession(c), kind)
	if err != nil {
		return respondError(c, err, "Gagal memuat data")
	}
	return response.Success(c, "OK", items)
}

// Create adds a reference item
// @Summary Create reference item
// @Tags References
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /references/{kind} [post]
func (h *ReferenceHandler) Create(c *fiber.Ctx) error {
	kind, ok := h.kind(c)
	if !ok {
		return response.NotFound(c, "Data referensi tidak dikenal")
	}

	item := kind.NewItem()
	if err := c.BodyParser(item); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.referenceService.Create(c.UserContext(), middleware.CurrentSession(c), kind, item); err != nil {
		return respondError(c, err, "Gagal menyimpan data")
	}
	return response.Created(c, "Data disimpan", item)
}

// Update replaces a reference item
// @Summary Update reference item
// @Description Administrators are keyed by email
// @Tags References
// @Accept json
// @Produce json
// @Param kind path string true "Collection"
// @Param id path string true "Item ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /references/{kind}/{id} [put]
func (h *ReferenceHandler) Update(c *fiber.Ctx) error {
	kind, ok := h.kind(c)
	if !ok {
		return response.NotFound(c, "Data referensi tidak dikenal")
	}

	item := kind.NewItem()
	if err := c.BodyParser(item); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.referenceService.Update(c.UserContext(), middleware.CurrentSession(c), kind, c.Params("id"), item); err != nil {
		return respondError(c, err, "Gagal memperbarui data")
	}
	return response.Success(c, "Data diperbarui", item)
}

// Delete removes a reference item
// @Summary Delete reference item
// @Tags References
// @Produce json
// @Param kind path string true "Collection"
// @Param id path string true "Item ID"
// @Success 200 {object} response.Response
// @Router /references/{kind}/{id} [delete]
func (h *ReferenceHandler) Delete(c *fiber.Ctx) error {
	kind, ok := h.kind(c)
	if !ok {
		return response.NotFound(c, "Data referensi tidak dikenal")
	}

	if err := h.referenceService.Delete(c.UserContext(), middleware.CurrentSession(c), kind, c.Params("id")); err != nil {
		return respondError(c, err, "Gagal menghapus data")
	}
	return response.Success(c, "Data dihapus", nil)
}
