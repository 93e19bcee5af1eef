package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheControl(t *testing.T) {
	app := fiber.New()
	app.Use(NoStore())
	app.Get("/doc", CacheControl(5*time.Minute), func(c *fiber.Ctx) error { return c.SendString("img") })
	app.Get("/missing", CacheControl(5*time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/list", func(c *fiber.Ctx) error { return c.SendString("[]") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/doc", nil))
	require.NoError(t, err)
	assert.Equal(t, "private, max-age=300", resp.Header.Get("Cache-Control"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/list", nil))
	require.NoError(t, err)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}
