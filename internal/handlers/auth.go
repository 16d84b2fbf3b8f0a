package handlers

import (
	"errors"
	"log"
	"time"

	"signwise/internal/config"
	"signwise/internal/models"
	"signwise/internal/services/auth"
	"signwise/internal/utils"
	"signwise/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates an operator and returns JWT tokens
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	op, accessToken, refreshToken, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return response.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, auth.ErrAccountLocked):
			return response.Error(c, fiber.StatusForbidden, "Account locked")
		}
		return response.ServerError(c, "Authentication failed")
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"operator": fiber.Map{
			"id":          op.ID,
			"email":       op.Email,
			"role":        op.Role,
			"permissions": models.GetDefaultPermissions(op.Role),
		},
	})
}

// RefreshToken handles token refresh requests
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return response.Unauthorized(c)
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return response.Unauthorized(c)
	}

	access, refresh, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		return response.Unauthorized(c)
	}

	h.setAuthCookies(c, access, refresh)
	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout invalidates every token of the calling operator
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := utils.GetOperatorClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if err := h.authService.Logout(c.UserContext(), claims.OperatorID); err != nil {
		return response.ServerError(c, "Failed to logout")
	}

	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   config.IsProduction(),
			Path:     "/",
		})
	}

	return response.Success(c, "Successfully logged out", nil)
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(utils.AccessTokenTTL.Seconds()),
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		Path:     "/",
		SameSite: "Strict",
		MaxAge:   int(utils.RefreshTokenTTL.Seconds()),
	})
}
