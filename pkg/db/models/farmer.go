package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/enums"
)

// Farmer supplies fruit; TotalFruits/TotalMoney are derived from its orders.
type Farmer struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Contact     string            `gorm:"column:contact;not null;default:''"`
	Location    string            `gorm:"column:location;not null;default:''"`
	AvocadoType enums.AvocadoType `gorm:"column:avocado_type;type:varchar(32);not null"`
	TotalFruits int64             `gorm:"column:total_fruits;not null;default:0"`
	TotalMoney  decimal.Decimal   `gorm:"column:total_money;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (f *Farmer) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
