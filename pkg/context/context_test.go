package context

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFiberCtx(t *testing.T) {
	var got context.Context

	app := fiber.New()
	app.Get("/plain", func(c *fiber.Ctx) error {
		got = FromFiberCtx(c)
		return nil
	})
	app.Get("/ticketed", func(c *fiber.Ctx) error {
		c.Locals("X-Request-ID", "req-42")
		c.Locals("passage_id", "01JPASSAGE")
		got = FromFiberCtx(c)
		return nil
	})

	t.Run("request id from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/plain", nil)
		req.Header.Set("X-Request-ID", "from-header")
		_, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "from-header", GetRequestID(got))
		_, ok := GetPassageID(got)
		assert.False(t, ok)
	})

	t.Run("passage admitted by a ticket", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/ticketed", nil))
		require.NoError(t, err)

		assert.Equal(t, "req-42", GetRequestID(got))
		id, ok := GetPassageID(got)
		assert.True(t, ok)
		assert.Equal(t, "01JPASSAGE", id)
	})

	t.Run("missing request id", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
		require.NoError(t, err)
		assert.Equal(t, "unknown", GetRequestID(got))
	})
}
