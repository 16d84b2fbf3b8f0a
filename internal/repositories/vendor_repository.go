package repositories

import (
	"context"
	"errors"
	"fmt"

	apperr "signwise/internal/errors"
	"signwise/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository defines the interface for vendor-related database operations
type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByVendorID(ctx context.Context, vendorID string) (*models.Vendor, error)
	// Modify loads the vendor row locked for update, lets fn change it and
	// saves it in the same transaction. Nothing is written if fn fails.
	Modify(ctx context.Context, vendorID string, fn func(*models.Vendor) error) error
}

type vendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository creates a new instance of VendorRepository
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("vendor " + vendor.VendorID + " already exists")
		}
		return fmt.Errorf("failed to create vendor: %w", err)
	}
	return nil
}

func (r *vendorRepository) GetByVendorID(ctx context.Context, vendorID string) (*models.Vendor, error) {
	return findVendor(r.db.WithContext(ctx), vendorID)
}

func (r *vendorRepository) Modify(ctx context.Context, vendorID string, fn func(*models.Vendor) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := findVendor(tx.Clauses(clause.Locking{Strength: "UPDATE"}), vendorID)
		if err != nil {
			return err
		}
		if err := fn(vendor); err != nil {
			return err
		}
		if err := tx.Save(vendor).Error; err != nil {
			return fmt.Errorf("failed to update vendor: %w", err)
		}
		return nil
	})
}

func findVendor(db *gorm.DB, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := db.Where("vendor_id = ?", vendorID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("vendor " + vendorID)
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &vendor, nil
}
