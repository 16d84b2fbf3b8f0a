package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"signwise/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer     = "signwise-api"
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var ErrSecretNotConfigured = errors.New("JWT_SECRET not configured")

// GenerateTokens generates an access token and a refresh token for the given operator claims.
// The JWT secret is expected to be set in the environment variable JWT_SECRET.
func GenerateTokens(claims *models.OperatorClaims) (accessToken string, refreshToken string, err error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", "", ErrSecretNotConfigured
	}

	now := time.Now()

	accessClaims := models.OperatorClaims{
		RegisteredClaims: registered(claims.OperatorID, now, AccessTokenTTL),
		OperatorID:       claims.OperatorID,
		Email:            claims.Email,
		Role:             claims.Role,
		Permissions:      claims.Permissions,
		TokenVersion:     claims.TokenVersion,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", "", err
	}

	// Refresh tokens carry no permissions.
	refreshClaims := models.OperatorClaims{
		RegisteredClaims: registered(claims.OperatorID, now, RefreshTokenTTL),
		OperatorID:       claims.OperatorID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(jwtSecret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func registered(operatorID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(operatorID), 10),
	}
}

// ParseToken parses and validates a JWT token string.
// It returns the token if valid, or an error if something is wrong.
func ParseToken(tokenStr string) (*jwt.Token, *models.OperatorClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(*models.OperatorClaims)
	if !ok || !token.Valid {
		return nil, nil, errors.New("invalid token claims")
	}

	return token, claims, nil
}
