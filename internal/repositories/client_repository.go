package repositories

import (
	"context"
	"errors"
	"fmt"

	apperr "signwise/internal/errors"
	"signwise/internal/models"
	"signwise/internal/services/pilot"

	"gorm.io/gorm"
)

// ClientRepository stores clients and serves as the pilot ledger store.
type ClientRepository interface {
	pilot.Store
	// Register adds a full client that never enters pilot mode.
	Register(ctx context.Context, client *models.Client) error
	GetByClientID(ctx context.Context, clientID string) (*models.Client, error)
	SetStripeCustomer(ctx context.Context, clientID, customerID string) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Register(ctx context.Context, client *models.Client) error {
	client.PilotMode = false
	client.PilotCredits = 0
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("client " + client.ClientID + " already exists")
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) GetByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("client " + clientID)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) SetStripeCustomer(ctx context.Context, clientID, customerID string) error {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("client_id = ?", clientID).
		Update("stripe_customer_id", customerID)
	if result.Error != nil {
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("client " + clientID)
	}
	return nil
}

// Create provisions the client row together with its pilot ledger entry.
func (r *clientRepository) Create(ctx context.Context, e pilot.Entry) error {
	client := models.Client{
		ClientID:      e.ClientID,
		PilotMode:     e.PilotMode,
		PilotCredits:  e.CreditsRemaining,
		LedgerVersion: e.Version,
	}
	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("client " + e.ClientID + " already has a pilot ledger")
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, clientID string) (pilot.Entry, error) {
	client, err := r.GetByClientID(ctx, clientID)
	if err != nil {
		return pilot.Entry{}, err
	}
	return entryOf(client), nil
}

// CompareAndSwap writes next only while the row still carries the expected
// ledger version. Zero rows affected means another writer got there first.
func (r *clientRepository) CompareAndSwap(ctx context.Context, expected, next pilot.Entry) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Client{}).
		Where("client_id = ? AND ledger_version = ?", expected.ClientID, expected.Version).
		Updates(map[string]interface{}{
			"pilot_mode":     next.PilotMode,
			"pilot_credits":  next.CreditsRemaining,
			"ledger_version": expected.Version + 1,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func entryOf(c *models.Client) pilot.Entry {
	return pilot.Entry{
		ClientID:         c.ClientID,
		PilotMode:        c.PilotMode,
		CreditsRemaining: c.PilotCredits,
		Version:          c.LedgerVersion,
	}
}
