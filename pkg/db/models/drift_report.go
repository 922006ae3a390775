package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/enums"
)

// DriftReport records a stored aggregate that disagreed with its line items
// when the reconciliation sweep recomputed it.
type DriftReport struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CheckType     enums.DriftCheckType `gorm:"column:check_type;type:varchar(32);not null;index"`
	OwnerKind     enums.OwnerKind      `gorm:"column:owner_kind;type:varchar(16);not null;index"`
	OwnerID       uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	StoredValue   string               `gorm:"column:stored_value;not null"`
	DerivedValue  string               `gorm:"column:derived_value;not null"`
	CorrelationID string               `gorm:"column:correlation_id;type:varchar(64);index"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (d *DriftReport) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
