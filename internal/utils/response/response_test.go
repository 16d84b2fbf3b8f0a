package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	apperr "signwise/internal/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "validation",
			err:        apperr.Validation("miles", "distance must not be negative"),
			wantStatus: fiber.StatusBadRequest,
			wantBody: map[string]interface{}{
				"error": "distance must not be negative", "code": "VALIDATION_ERROR", "field": "miles",
			},
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("loading: %w", apperr.NotFound("vendor v-1")),
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "vendor v-1 not found", "code": "NOT_FOUND"},
		},
		{
			name:       "conflict",
			err:        apperr.Conflict("assignment already completed"),
			wantStatus: fiber.StatusConflict,
			wantBody:   map[string]interface{}{"error": "assignment already completed", "code": "CONFLICT"},
		},
		{
			name:       "invariant hides details",
			err:        apperr.Invariant("client c-1 is in pilot mode with 0 credits remaining"),
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Internal server error", "code": "INVARIANT_VIOLATION"},
		},
		{
			name:       "plain error",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestSuccessAndCreated(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return Success(c, "done", fiber.Map{"n": 1}) })
	app.Post("/new", func(c *fiber.Ctx) error { return Created(c, "created", nil) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/new", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
