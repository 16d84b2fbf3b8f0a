package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"signwise/internal/models"
	"signwise/internal/repositories"
	"signwise/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// MaxFailedLogins locks an operator account after that many bad passwords in a row.
const MaxFailedLogins = 5

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenGeneration    = errors.New("error generating tokens")
)

type Service interface {
	Login(ctx context.Context, email, password string) (*models.Operator, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, operatorID uint) error
	GetOperatorTokenVersion(ctx context.Context, operatorID uint) (int, error)
}

type service struct {
	operatorRepo repositories.OperatorRepository
	now          func() time.Time
}

func NewService(operatorRepo repositories.OperatorRepository) Service {
	if operatorRepo == nil {
		panic("operator repository is required")
	}
	return &service{
		operatorRepo: operatorRepo,
		now:          time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.Operator, string, string, error) {
	op, err := s.operatorRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		log.Printf("Login failed: operator not found for %s", email)
		return nil, "", "", ErrInvalidCredentials
	}

	if op.Status != "active" || op.FailedLoginAttempts >= MaxFailedLogins {
		log.Printf("Login refused: operator %d is locked", op.ID)
		return nil, "", "", ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.Password), []byte(password)); err != nil {
		log.Printf("Login failed: incorrect password for operator %d", op.ID)
		if err := s.operatorRepo.RecordFailedLogin(ctx, op.ID); err != nil {
			log.Printf("⚠️ Failed to record failed login for operator %d: %v", op.ID, err)
		}
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(claimsFor(op))
	if err != nil {
		log.Println("Error generating tokens:", err)
		return nil, "", "", ErrTokenGeneration
	}

	if err := s.operatorRepo.RecordLogin(ctx, op.ID, s.now()); err != nil {
		log.Printf("⚠️ Failed to record login for operator %d: %v", op.ID, err)
	}

	return op, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	op, err := s.operatorRepo.GetByID(ctx, claims.OperatorID)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	if op.TokenVersion != claims.TokenVersion {
		return "", "", ErrInvalidToken
	}

	return utils.GenerateTokens(claimsFor(op))
}

// Logout invalidates every token issued to the operator so far.
func (s *service) Logout(ctx context.Context, operatorID uint) error {
	return s.operatorRepo.IncrementTokenVersion(ctx, operatorID)
}

func (s *service) GetOperatorTokenVersion(ctx context.Context, operatorID uint) (int, error) {
	op, err := s.operatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		return 0, err
	}
	return op.TokenVersion, nil
}

func claimsFor(op *models.Operator) *models.OperatorClaims {
	return &models.OperatorClaims{
		OperatorID:   op.ID,
		Email:        op.Email,
		Role:         op.Role,
		TokenVersion: op.TokenVersion,
		Permissions:  models.GetDefaultPermissions(op.Role),
	}
}
