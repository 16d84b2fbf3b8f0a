package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Vendor credentials stored in Certifications.
const (
	CertificationCommission = "commission"
	CertificationRON        = "ron"
)

// Vendor is a signing agent with its rolling performance counters. LastTier is
// a denormalized copy of the latest classification, never the source of truth.
type Vendor struct {
	gorm.Model
	VendorID          string `gorm:"uniqueIndex;not null"`
	Name              string
	CompletedSignings int            `gorm:"not null;default:0"`
	FirstPassSignings int            `gorm:"not null;default:0"`
	FailedSignings    int            `gorm:"not null;default:0"`
	Score             int            `gorm:"not null;default:0"`
	Certifications    pq.StringArray `gorm:"type:text[]"`
	LastTier          string         `gorm:"default:'bronze'"`
	// CountersVersion increases with every counter update and orders cached
	// tier snapshots.
	CountersVersion int64 `gorm:"not null;default:0"`
}

// HasCertification reports whether the vendor holds the named credential.
func (v *Vendor) HasCertification(name string) bool {
	for _, c := range v.Certifications {
		if c == name {
			return true
		}
	}
	return false
}
