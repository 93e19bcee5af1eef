package handlers

import (
	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler handles file downloads
type ExportHandler struct {
	exportService *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// XLSX downloads the filtered records as a spreadsheet
// @Summary Export records to Excel
// @Description Accepts the same filters as the record list
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} response.Response
// @Router /exports/records.xlsx [get]
func (h *ExportHandler) XLSX(c *fiber.Ctx) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return respondError(c, err, "Filter tidak valid")
	}

	file, err := h.exportService.XLSX(c.UserContext(), middleware.CurrentSession(c), criteria)
	if err != nil {
		return respondError(c, err, "Gagal membuat file Excel")
	}
	return response.Attachment(c, file.Name, file.ContentType, file.Data)
}

// PDF downloads the filtered records as a printable report
// @Summary Export records to PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 401 {object} response.Response
// @Router /exports/records.pdf [get]
func (h *ExportHandler) PDF(c *fiber.Ctx) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return respondError(c, err, "Filter tidak valid")
	}

	file, err := h.exportService.PDF(c.UserContext(), middleware.CurrentSession(c), criteria)
	if err != nil {
		return respondError(c, err, "Gagal membuat file PDF")
	}
	return response.Attachment(c, file.Name, file.ContentType, file.Data)
}

// Documents bundles the documents of one record into a PDF
// @Summary Export record documents
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Record ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Router /records/{id}/documents.pdf [get]
func (h *ExportHandler) Documents(c *fiber.Ctx) error {
	file, err := h.exportService.Documents(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Gagal membuat PDF dokumen")
	}
	return response.Attachment(c, file.Name, file.ContentType, file.Data)
}
