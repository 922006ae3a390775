package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/enums"
)

// Sale is a delivery of fruit to a buyer.
type Sale struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID        uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	BuyerName      string            `gorm:"column:buyer_name;not null;default:''"`
	AvocadoType    enums.AvocadoType `gorm:"column:avocado_type;type:varchar(32);not null"`
	NumberOfFruits int64             `gorm:"column:number_of_fruits;not null"`
	PricePerFruit  decimal.Decimal   `gorm:"column:price_per_fruit;type:numeric(14,2);not null"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	SaleDate       time.Time         `gorm:"column:sale_date;not null"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s Sale) OwnerID() uuid.UUID      { return s.BuyerID }
func (s Sale) Fruits() int64           { return s.NumberOfFruits }
func (s Sale) Amount() decimal.Decimal { return s.TotalAmount }
