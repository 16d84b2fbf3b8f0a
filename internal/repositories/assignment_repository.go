package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "signwise/internal/errors"
	"signwise/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentRepository defines the interface for assignment-related database operations
type AssignmentRepository interface {
	Create(ctx context.Context, a *models.Assignment) error
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Assignment, error)
	// Transition moves the assignment from one status to another. It fails
	// with a conflict if the assignment is no longer in the from status, so
	// at most one caller can complete or fail an assignment. Moving back to
	// scheduled releases a claim and clears the completion time.
	Transition(ctx context.Context, publicID uuid.UUID, from, to string, at time.Time) error
	UpdateBilling(ctx context.Context, publicID uuid.UUID, status, invoiceItemID string) error
	// List returns one page of matching assignments, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]models.Assignment, int64, error)
}

// AssignmentFilter narrows a listing. Empty fields match everything.
type AssignmentFilter struct {
	ClientID      string
	VendorID      string
	Status        string
	BillingStatus string
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("assignment " + publicID.String())
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func (r *assignmentRepository) Transition(ctx context.Context, publicID uuid.UUID, from, to string, at time.Time) error {
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.AssignmentCompleted:
		updates["completed_at"] = at
	case models.AssignmentScheduled:
		updates["completed_at"] = nil
	}

	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("public_id = ? AND status = ?", publicID, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByPublicID(ctx, publicID); err != nil {
			return err
		}
		return apperr.Conflict(fmt.Sprintf("assignment %s is no longer %s", publicID, from))
	}
	return nil
}

func (r *assignmentRepository) UpdateBilling(ctx context.Context, publicID uuid.UUID, status, invoiceItemID string) error {
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("public_id = ?", publicID).
		Updates(map[string]interface{}{
			"billing_status":  status,
			"invoice_item_id": invoiceItemID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update assignment billing: %w", result.Error)
	}
	return nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter, offset, limit int) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.VendorID != "" {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BillingStatus != "" {
		query = query.Where("billing_status = ?", filter.BillingStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	var assignments []models.Assignment
	if err := query.Order("scheduled_at DESC").Offset(offset).Limit(limit).Find(&assignments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, total, nil
}
