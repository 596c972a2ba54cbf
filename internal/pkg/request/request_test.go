package request

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("date", "2024-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	d, err = ParseDate("date", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("start_date", "01/03/2024")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "start_date")
}

func TestOptionalDate(t *testing.T) {
	d, err := OptionalDate("end_date", nil)
	require.NoError(t, err)
	assert.Nil(t, d)
	s := "2024-12-31"
	d, err = OptionalDate("end_date", &s)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 31, d.Day())
}

type body struct {
	Title string `json:"title" validate:"required"`
}

func TestBindAndParamID(t *testing.T) {
	app := fiber.New()
	app.Post("/items/:id", func(c *fiber.Ctx) error {
		id, err := ParamID(c, "id")
		if err != nil {
			return response.FromError(c, err)
		}
		var b body
		if err := Bind(c, &b); err != nil {
			return response.FromError(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "title": b.Title})
	})

	cases := []struct {
		path, body string
		code       int
	}{
		{"/items/3", `{"title":"x"}`, fiber.StatusOK},
		{"/items/abc", `{"title":"x"}`, fiber.StatusBadRequest},
		{"/items/0", `{"title":"x"}`, fiber.StatusBadRequest},
		{"/items/3", `{}`, fiber.StatusBadRequest},
		{"/items/3", `{bad`, fiber.StatusBadRequest},
		{"/items/3", ``, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.path+" "+tc.body)
	}
}
