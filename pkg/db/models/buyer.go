package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Buyer purchases fruit; TotalFruits/TotalMoney are derived from its sales.
type Buyer struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Contact     string          `gorm:"column:contact;not null;default:''"`
	Location    string          `gorm:"column:location;not null;default:''"`
	TotalFruits int64           `gorm:"column:total_fruits;not null;default:0"`
	TotalMoney  decimal.Decimal `gorm:"column:total_money;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Buyer) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
