package auth

import (
	"context"
	"testing"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/models"
	"signwise/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockOperatorRepo struct {
	mock.Mock
}

func (m *MockOperatorRepo) Create(ctx context.Context, op *models.Operator) error {
	return m.Called(op).Error(0)
}

func (m *MockOperatorRepo) GetByID(ctx context.Context, id uint) (*models.Operator, error) {
	args := m.Called(id)
	if op := args.Get(0); op != nil {
		return op.(*models.Operator), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOperatorRepo) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	args := m.Called(email)
	if op := args.Get(0); op != nil {
		return op.(*models.Operator), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOperatorRepo) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return m.Called(id, at).Error(0)
}

func (m *MockOperatorRepo) RecordFailedLogin(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockOperatorRepo) IncrementTokenVersion(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func operator(t *testing.T, password string) *models.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Operator{
		Model:        gorm.Model{ID: 3},
		Email:        "dispatch@signwise.test",
		Password:     string(hash),
		Role:         models.RoleDispatcher,
		Status:       "active",
		TokenVersion: 1,
	}
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	repo := new(MockOperatorRepo)
	op := operator(t, "Str0ng!pass")
	repo.On("GetByEmail", "dispatch@signwise.test").Return(op, nil)
	repo.On("RecordLogin", uint(3), mock.AnythingOfType("time.Time")).Return(nil)
	repo.On("RecordFailedLogin", uint(3)).Return(nil)

	svc := NewService(repo)

	got, access, refresh, err := svc.Login(ctx, " Dispatch@SignWise.test ", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)
	assert.NotEmpty(t, refresh)

	_, claims, err := utils.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.OperatorID)
	assert.Equal(t, models.RoleDispatcher, claims.Role)

	_, _, _, err = svc.Login(ctx, "dispatch@signwise.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	repo.AssertCalled(t, "RecordFailedLogin", uint(3))
}

func TestLogin_UnknownAndLocked(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	repo := new(MockOperatorRepo)
	locked := operator(t, "Str0ng!pass")
	locked.FailedLoginAttempts = MaxFailedLogins
	repo.On("GetByEmail", "ghost@signwise.test").Return(nil, apperr.NotFound("operator ghost@signwise.test"))
	repo.On("GetByEmail", "dispatch@signwise.test").Return(locked, nil)

	svc := NewService(repo)

	_, _, _, err := svc.Login(ctx, "ghost@signwise.test", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "dispatch@signwise.test", "Str0ng!pass")
	assert.ErrorIs(t, err, ErrAccountLocked)
	repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything)
}

func TestRefreshTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	repo := new(MockOperatorRepo)
	op := operator(t, "Str0ng!pass")
	repo.On("GetByID", uint(3)).Return(op, nil).Once()

	_, refresh, err := utils.GenerateTokens(claimsFor(op))
	require.NoError(t, err)

	svc := NewService(repo)
	access, _, err := svc.RefreshTokens(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	rotated := *op
	rotated.TokenVersion = 2
	repo.On("GetByID", uint(3)).Return(&rotated, nil)
	_, _, err = svc.RefreshTokens(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.RefreshTokens(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutAndTokenVersion(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOperatorRepo)
	repo.On("IncrementTokenVersion", uint(3)).Return(nil)
	repo.On("GetByID", uint(3)).Return(&models.Operator{Model: gorm.Model{ID: 3}, TokenVersion: 4}, nil)

	svc := NewService(repo)
	require.NoError(t, svc.Logout(ctx, 3))

	v, err := svc.GetOperatorTokenVersion(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
