package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/models"

	"gorm.io/gorm"
)

var ErrDatabaseOperation = errors.New("database operation failed")

// OperatorRepository defines the interface for operator-related database operations
type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByID(ctx context.Context, id uint) (*models.Operator, error)
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	RecordLogin(ctx context.Context, id uint, at time.Time) error
	RecordFailedLogin(ctx context.Context, id uint) error
	IncrementTokenVersion(ctx context.Context, id uint) error
}

type operatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository creates a new instance of OperatorRepository
func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, op *models.Operator) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("operator " + op.Email + " already exists")
		}
		return ErrDatabaseOperation
	}
	return nil
}

func (r *operatorRepository) GetByID(ctx context.Context, id uint) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.WithContext(ctx).First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("operator %d", id))
		}
		return nil, ErrDatabaseOperation
	}
	return &op, nil
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("operator " + email)
		}
		return nil, ErrDatabaseOperation
	}
	return &op, nil
}

func (r *operatorRepository) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).
		Updates(map[string]interface{}{"last_login_at": at, "failed_login_attempts": 0}).Error
}

func (r *operatorRepository) RecordFailedLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).
		UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + ?", 1)).Error
}

func (r *operatorRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1)).Error
}
