package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/auth"
	"catalog/internal/services"
)

// Context keys for values stored by AuthRequired.
const (
	LocalAuthUser = "auth_user"
	LocalTokenJTI = "token_jti"
	LocalTokenExp = "token_exp"
	LocalUsername = "username"
)

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   apperrors.KindUnauthenticated,
		"message": message,
	})
}

// AuthRequired is a Fiber middleware that checks for a valid bearer token
// and stores the caller's security context in the request locals.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthenticated(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return unauthenticated(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthenticated(c, "Invalid or expired token")
		}

		c.Locals(LocalAuthUser, services.AuthUserFromClaims(claims))
		if jti, ok := claims["jti"].(string); ok {
			c.Locals(LocalTokenJTI, jti)
		}
		if exp, ok := claims["exp"].(float64); ok {
			c.Locals(LocalTokenExp, time.Unix(int64(exp), 0))
		}
		if username, ok := claims["username"].(string); ok {
			c.Locals(LocalUsername, username)
		}

		return c.Next()
	}
}

// AuthUserFromCtx returns the security context stored by AuthRequired.
func AuthUserFromCtx(c *fiber.Ctx) (auth.AuthUser, bool) {
	user, ok := c.Locals(LocalAuthUser).(auth.AuthUser)
	return user, ok
}

// AdminRequired gates mutation endpoints to the admin role. It must run
// after AuthRequired; a missing security context is treated as
// unauthenticated, a non-admin one as forbidden.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := AuthUserFromCtx(c)
		if !ok {
			return unauthenticated(c, "Authorization header is required")
		}
		if !auth.CanMutate(user.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   apperrors.KindForbidden,
				"message": "Admin role required",
			})
		}
		return c.Next()
	}
}
