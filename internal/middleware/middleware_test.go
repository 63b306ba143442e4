package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtPkg "KeikoHub/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, Middleware) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger)

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewLoggingMiddleware())
	return app, m
}

func TestRequestID(t *testing.T) {
	app, m := newTestApp(t)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Len(t, string(body), 26)
	assert.Equal(t, string(body), resp.Header.Get(RequestIDKey))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "given-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "given-id", string(body))
}

func TestTicketMiddleware(t *testing.T) {
	t.Setenv(jwtPkg.TicketSecretEnv, "test-secret")

	app, m := newTestApp(t)
	app.Get("/passages/:id/ws", m.NewTicketMiddleware, func(c *fiber.Ctx) error {
		return c.SendString(m.GetPassageID(c))
	})

	ticket, _, err := jwtPkg.SignTicket("P1", time.Minute)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/passages/P1/ws?token="+ticket, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "P1", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/passages/P2/ws?token="+ticket, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/passages/P1/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	app, m := newTestApp(t)
	m.(*middleware).rateLimitter = newRateLimiter(0, 2)
	app.Get("/", m.NewRateLimiter, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	var codes []int
	for range 3 {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody([]byte(`{"grade":"1er Dan","api_key":"abc","Token":"x"}`))
	assert.Contains(t, out, `"grade":"1er Dan"`)
	assert.NotContains(t, out, "abc")
	assert.NotContains(t, out, `"x"`)
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("plain")))
}
