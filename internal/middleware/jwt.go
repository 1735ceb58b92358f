package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

const identityKey = "identity"

// JWTProtected returns a middleware that validates JWT bearer tokens and binds the caller identity.
func JWTProtected(secret string, policy auth.AdminPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		identity, ok := identityFromClaims(claims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		identity = policy.Resolve(identity)

		c.Locals(identityKey, &identity)
		c.Locals("user_id", identity.UserID)
		if identity.Role != "" {
			c.Locals("user_role", identity.Role)
		}

		return c.Next()
	}
}

// IdentityFrom returns the identity bound by JWTProtected.
func IdentityFrom(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}

func identityFromClaims(claims jwt.MapClaims) (auth.Identity, bool) {
	var identity auth.Identity
	for _, key := range []string{"sub", "user_id", "id"} {
		if value := stringClaim(claims[key]); value != "" {
			identity.UserID = value
			break
		}
	}
	if identity.UserID == "" {
		return auth.Identity{}, false
	}

	identity.Email = strings.ToLower(stringClaim(claims["email"]))
	identity.Role = extractUserRoleFromClaims(claims)

	if metadata, ok := claims["user_metadata"].(map[string]interface{}); ok {
		for _, key := range []string{"name", "full_name"} {
			if name := stringClaim(metadata[key]); name != "" {
				identity.Name = name
				break
			}
		}
	}
	if identity.Name == "" {
		identity.Name = stringClaim(claims["name"])
	}

	return identity, true
}

func stringClaim(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// extractUserRoleFromClaims prefers the application role over the transport role
// some identity providers put in "role".
func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	if metadata, ok := claims["app_metadata"].(map[string]interface{}); ok {
		for _, key := range []string{"role", "roles"} {
			if role := normalizeRole(metadata[key]); role != "" {
				return role
			}
		}
	}
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				role := strings.ToLower(strings.TrimSpace(str))
				if role != "" {
					return role
				}
			}
		}
	}
	return ""
}
