package handlers

import (
	"context"
	"errors"
	"fmt"

	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/core/filter"
	"daterbo-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto an HTTP response.
// fallback is shown when the error carries nothing fit for the user.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var rejected *domain.RejectedError

	switch {
	case errors.Is(err, domain.ErrNoSession),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrMalformedToken):
		return response.Unauthorized(c, "Sesi berakhir, silakan login kembali")
	case errors.Is(err, domain.ErrSuperseded):
		return response.Conflict(c, "Permintaan digantikan oleh permintaan yang lebih baru")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Data tidak ditemukan")
	case errors.Is(err, domain.ErrActionNotOffered):
		return response.Forbidden(c, "Aksi tidak tersedia untuk data ini")
	case errors.Is(err, domain.ErrRequiredField),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownAction):
		return response.BadRequest(c, err.Error())
	case errors.As(err, &rejected):
		message := rejected.Message
		if message == "" {
			message = fallback
		}
		if rejected.StatusCode >= 400 && rejected.StatusCode < 500 {
			return response.Error(c, rejected.StatusCode, message)
		}
		return response.BadGateway(c, message)
	case errors.Is(err, domain.ErrTransport):
		return response.BadGateway(c, "Server API tidak dapat dihubungi")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return response.Error(c, fiber.StatusRequestTimeout, "Permintaan dibatalkan")
	default:
		return response.InternalServerError(c, fallback)
	}
}

// criteriaFromQuery reads list filters from the query string.
// Empty or "all" selections mean no restriction.
func criteriaFromQuery(c *fiber.Ctx) (filter.Criteria, error) {
	criteria := filter.Criteria{
		Search:   c.Query("q"),
		Status:   filter.ParseSelection(c.Query("status")),
		Leasing:  filter.ParseSelection(c.Query("leasing")),
		User:     filter.ParseSelection(c.Query("user")),
		PIC:      filter.ParseSelection(c.Query("pic")),
		Surveyor: filter.ParseSelection(c.Query("surveyor")),
	}

	if raw := c.Query("date"); raw != "" {
		day, err := domain.ParseDay(raw)
		if err != nil {
			return criteria, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		criteria.Date = &day
	}

	return criteria, nil
}
