package models

import "gorm.io/gorm"

// Client is a title, escrow or lender account that books signings. The pilot
// columns hold the client's pilot ledger entry; LedgerVersion is bumped on
// every ledger write and keys the conditional update.
type Client struct {
	gorm.Model
	ClientID         string `gorm:"uniqueIndex;not null"`
	Name             string
	StripeCustomerID string
	PilotMode        bool  `gorm:"not null;default:false"`
	PilotCredits     int   `gorm:"not null;default:0"`
	LedgerVersion    int64 `gorm:"not null;default:0"`
}
