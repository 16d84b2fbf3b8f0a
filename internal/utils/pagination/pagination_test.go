package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"?page=0&limit=-4", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"?page=abc&limit=xyz", Pagination{Page: 1, Limit: DefaultLimit, Offset: 0}},
		{"?page=2&limit=1000", Pagination{Page: 2, Limit: MaxLimit, Offset: MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Pagination
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = ParseFromRequest(c)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponse(t *testing.T) {
	p := Pagination{Page: 2, Limit: 10, Total: 21}
	assert.Equal(t, int64(3), p.TotalPages())

	body := Response(p, []int{1, 2})
	meta := body["meta"].(fiber.Map)
	assert.Equal(t, 2, meta["current_page"])
	assert.Equal(t, int64(21), meta["total_items"])
	assert.Equal(t, int64(3), meta["total_pages"])

	p.Total = 20
	assert.Equal(t, int64(2), p.TotalPages())
}
