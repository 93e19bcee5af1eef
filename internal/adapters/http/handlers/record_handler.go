package handlers

import (
	"encoding/json"
	"io"
	"strings"

	"daterbo-console/internal/adapters/http/middleware"
	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/actions"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/services"
	"daterbo-console/internal/pkg/pagination"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RecordHandler handles borrower record endpoints
type RecordHandler struct {
	recordService *services.RecordService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(recordService *services.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// List returns the filtered record list with counts and dropdown data
// @Summary List borrower records
// @Description Filter records by search, date, status and references. page/limit page the rows only.
// @Tags Records
// @Produce json
// @Param q query string false "Search text"
// @Param date query string false "Input day (YYYY-MM-DD)"
// @Param status query string false "Status name or all"
// @Param leasing query string false "Leasing id or all"
// @Param user query string false "User id or all"
// @Param pic query string false "PIC id or all"
// @Param surveyor query string false "Surveyor id or all"
// @Param page query int false "Page"
// @Param limit query int false "Rows per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /records [get]
func (h *RecordHandler) List(c *fiber.Ctx) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return respondError(c, err, "Filter tidak valid")
	}

	view, err := h.recordService.List(c.UserContext(), middleware.CurrentSession(c), criteria)
	if err != nil {
		return respondError(c, err, "Gagal memuat data peminjam")
	}

	if params, ok := pagination.FromQuery(c); ok {
		total := len(view.Rows)
		view.Rows = pagination.Slice(view.Rows, params)
		return response.Paginated(c, "OK", view, pagination.GetMeta(params, total))
	}

	return response.Success(c, "OK", view)
}

// Detail returns one record with its actions and documents
// @Summary Record detail
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /records/{id} [get]
func (h *RecordHandler) Detail(c *fiber.Ctx) error {
	detail, err := h.recordService.Detail(c.UserContext(), middleware.CurrentSession(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Gagal memuat data peminjam")
	}
	return response.Success(c, "OK", detail)
}

// Create adds a record
// @Summary Create record
// @Description Multipart form: "data" holds the record JSON, document files use their kind as field name
// @Tags Records
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /records [post]
func (h *RecordHandler) Create(c *fiber.Ctx) error {
	input, uploads, closeAll, err := readRecordForm(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	defer closeAll()

	rec, err := h.recordService.Create(c.UserContext(), middleware.CurrentSession(c), input, uploads)
	if err != nil {
		return respondError(c, err, "Gagal menyimpan data peminjam")
	}
	return response.Created(c, "Data peminjam disimpan", rec)
}

// Update replaces a record
// @Summary Update record
// @Tags Records
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c *fiber.Ctx) error {
	input, uploads, closeAll, err := readRecordForm(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	defer closeAll()

	rec, err := h.recordService.Update(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), input, uploads)
	if err != nil {
		return respondError(c, err, "Gagal memperbarui data peminjam")
	}
	return response.Success(c, "Data peminjam diperbarui", rec)
}

// Delete removes a record
// @Summary Delete record
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	if err := h.recordService.Delete(c.UserContext(), middleware.CurrentSession(c), c.Params("id")); err != nil {
		return respondError(c, err, "Gagal menghapus data peminjam")
	}
	return response.Success(c, "Data peminjam dihapus", nil)
}

// Action runs a lifecycle action offered for the record
// @Summary Run record action
// @Description mark_complete, process, disburse, cancel or delete
// @Tags Records
// @Produce json
// @Param id path string true "Record ID"
// @Param action path string true "Action"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /records/{id}/actions/{action} [post]
func (h *RecordHandler) Action(c *fiber.Ctx) error {
	action, err := actions.Parse(c.Params("action"))
	if err != nil {
		return respondError(c, err, "Aksi tidak dikenal")
	}

	ctx := c.UserContext()
	sess := middleware.CurrentSession(c)
	id := c.Params("id")

	switch {
	case action == actions.Delete:
		err = h.recordService.Delete(ctx, sess, id)
	case action.IsTransition():
		err = h.recordService.Transition(ctx, sess, id, action)
	default:
		return response.BadRequest(c, "Aksi "+action.Label()+" tidak dijalankan melalui endpoint ini")
	}
	if err != nil {
		return respondError(c, err, "Gagal menjalankan aksi")
	}

	return response.Success(c, action.Label()+" berhasil", fiber.Map{"action": action})
}

// Document proxies one supporting document image
// @Summary Record document
// @Tags Records
// @Produce octet-stream
// @Param id path string true "Record ID"
// @Param kind path string true "Document kind"
// @Success 200 {file} binary
// @Failure 404 {object} response.Response
// @Router /records/{id}/documents/{kind} [get]
func (h *RecordHandler) Document(c *fiber.Ctx) error {
	kind, ok := domain.ParseDocumentKind(c.Params("kind"))
	if !ok {
		return response.NotFound(c, "Jenis dokumen tidak dikenal")
	}

	data, contentType, err := h.recordService.Document(c.UserContext(), middleware.CurrentSession(c), c.Params("id"), kind)
	if err != nil {
		return respondError(c, err, "Gagal memuat dokumen")
	}

	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

// readRecordForm decodes a record write. Multipart requests carry the record
// JSON in "data" plus one optional file per document kind; plain JSON bodies
// carry the record only.
func readRecordForm(c *fiber.Ctx) (services.RecordInput, []upstream.Upload, func(), error) {
	var input services.RecordInput
	noop := func() {}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&input); err != nil {
			return input, nil, noop, err
		}
		return input, nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, nil, noop, err
	}
	if data := form.Value["data"]; len(data) > 0 {
		if err := json.Unmarshal([]byte(data[0]), &input); err != nil {
			return input, nil, noop, err
		}
	}

	var (
		uploads []upstream.Upload
		files   []io.Closer
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, kind := range domain.DocumentKinds {
		headers := form.File[string(kind)]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			closeAll()
			return input, nil, noop, err
		}
		files = append(files, f)
		uploads = append(uploads, upstream.Upload{Kind: kind, FileName: headers[0].Filename, Reader: f})
	}

	return input, uploads, closeAll, nil
}
