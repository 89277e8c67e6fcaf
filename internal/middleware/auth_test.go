package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthorization(t *testing.T) {
	assert.Equal(t, "abc", ParseAuthorization("Token abc"))
	assert.Equal(t, "abc", ParseAuthorization("  token   abc "))
	assert.Equal(t, "abc", ParseAuthorization("Bearer abc"))
	assert.Equal(t, "", ParseAuthorization("Basic abc"))
	assert.Equal(t, "", ParseAuthorization("abc"))
	assert.Equal(t, "", ParseAuthorization(""))
}

func TestOwnerFromToken(t *testing.T) {
	a := OwnerFromToken("token-a")
	assert.Len(t, a, 32)
	assert.Equal(t, a, OwnerFromToken("token-a"))
	assert.NotEqual(t, a, OwnerFromToken("token-b"))
	assert.NotContains(t, a, "token-a")
}

func TestRequireToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", RequireToken(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": GetToken(c), "owner": GetOwner(c)})
	})

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Token secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	var ok map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ok))
	assert.Equal(t, "secret", ok["token"])
	assert.Equal(t, OwnerFromToken("secret"), ok["owner"])
}
