// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for the fiber web
// framework.
package middleware

import (
	"log"
	"strings"

	"signwise/internal/models"
	"signwise/internal/services/auth"
	"signwise/internal/utils"
	"signwise/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware handles JWT token validation and operator authentication.
// It extracts the JWT token from the Authorization header or the access_token
// cookie, validates it, and adds the operator claims to the request context.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Handler validates JWT tokens and adds claims to the request context.
// It checks for:
// - Presence of a Bearer token or access_token cookie
// - Valid JWT signature and expiry
// - Token version matches current operator version
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
	}

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	currentVersion, err := m.authService.GetOperatorTokenVersion(c.UserContext(), claims.OperatorID)
	if err != nil {
		log.Printf("Error getting token version for operator %d: %v", claims.OperatorID, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	if claims.TokenVersion != currentVersion {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
	}

	c.Locals(utils.ClaimsKey, claims)
	c.Locals("operatorID", claims.OperatorID)

	return c.Next()
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		token := c.Cookies("access_token")
		return token, token != ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// AdminOnly verifies that the request has valid admin claims.
func AdminOnly(c *fiber.Ctx) error {
	claims, err := utils.GetOperatorClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	if claims.Role != models.RoleAdmin {
		log.Printf("Access denied: operator %d has role %s, not admin", claims.OperatorID, claims.Role)
		return response.Forbidden(c)
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetOperatorClaims(c)
		if err != nil {
			return response.Unauthorized(c)
		}

		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}

		return response.Forbidden(c)
	}
}
