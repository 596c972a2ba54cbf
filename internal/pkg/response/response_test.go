package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"bondbook-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) (int, ErrorBody) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return FromError(c, err) })
	resp, e := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, e)
	body, _ := io.ReadAll(resp.Body)
	var out ErrorBody
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestFromError_Kinds(t *testing.T) {
	code, body := render(t, domain.Validation("Invalid status."))
	assert.Equal(t, 400, code)
	assert.Equal(t, "Invalid status.", body.Error.Message)
	assert.Equal(t, "error", body.Status)

	code, _ = render(t, domain.NotFound("Transaction 1 not found."))
	assert.Equal(t, 404, code)

	code, body = render(t, domain.InvalidState("Transaction 1 is already approved."))
	assert.Equal(t, 409, code)
	assert.Equal(t, 409, body.Error.StatusCode)
}

func TestFromError_StoreFailureIsGeneric(t *testing.T) {
	code, body := render(t, domain.StoreFailure("get transaction", errors.New("dial tcp: connection refused")))
	assert.Equal(t, 500, code)
	assert.Equal(t, InternalMessage, body.Error.Message)

	code, body = render(t, errors.New("boom"))
	assert.Equal(t, 500, code)
	assert.Equal(t, InternalMessage, body.Error.Message)
}
