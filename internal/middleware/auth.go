package middleware

import (
	"encoding/hex"
	"strings"

	"estate-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	tokenLocal = "auth_token"
	ownerLocal = "owner"
)

// ParseAuthorization extracts the token from "Token <value>" (or "Bearer <value>").
func ParseAuthorization(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(value)
	}
	return ""
}

// OwnerFromToken derives the storage namespace for a token. Raw tokens never reach storage keys.
func OwnerFromToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

// RequireToken rejects requests without an API token before any handler runs.
// The token and its owner namespace are put in Locals.
func RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ParseAuthorization(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return response.Unauthorized(c, "Authentication token is required")
		}
		c.Locals(tokenLocal, token)
		c.Locals(ownerLocal, OwnerFromToken(token))
		return c.Next()
	}
}

// GetToken returns the request's API token ("" if absent).
func GetToken(c *fiber.Ctx) string {
	t, _ := c.Locals(tokenLocal).(string)
	return t
}

// GetOwner returns the owner namespace for the request's token.
func GetOwner(c *fiber.Ctx) string {
	o, _ := c.Locals(ownerLocal).(string)
	return o
}
