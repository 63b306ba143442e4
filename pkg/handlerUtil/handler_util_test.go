package handlerUtil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtPkg "KeikoHub/pkg/jwt"
	"KeikoHub/pkg/response"

	passageCore "KeikoHub/internal/passage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_Handle(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	tests := []struct {
		name     string
		err      error
		status   int
		contains string
	}{
		{
			name:     "no techniques names the grade",
			err:      fmt.Errorf("%w for grade %q with the selected filters", passageCore.ErrNoTechniquesAvailable, "1er Dan"),
			status:   http.StatusUnprocessableEntity,
			contains: "1er Dan",
		},
		{
			name:     "response error keeps its code",
			err:      response.NewError(http.StatusNotFound, "grade not found"),
			status:   http.StatusNotFound,
			contains: "grade not found",
		},
		{
			name:     "ticket",
			err:      fmt.Errorf("%w: expired", jwtPkg.ErrInvalidTicket),
			status:   http.StatusUnauthorized,
			contains: "INVALID_TICKET",
		},
		{
			name:     "unexpected error quotes the request id as trace id",
			err:      errors.New("disk on fire"),
			status:   http.StatusInternalServerError,
			contains: `"trace_id":"req-1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tt.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), tt.contains)
		})
	}
}

func TestErrorHandler_HandleUnknownRequestGetsFreshTraceID(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return h.Handle(c, "unknown", errors.New("disk on fire"), c.Path(), "test")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Len(t, body["trace_id"], 36)
	assert.NotEqual(t, "unknown", body["trace_id"])
}
