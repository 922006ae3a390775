package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/enums"
)

// Order is a purchase of fruit from a farmer.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	FarmerID       uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null;index"`
	CustomerName   string            `gorm:"column:customer_name;not null;default:''"`
	AvocadoType    enums.AvocadoType `gorm:"column:avocado_type;type:varchar(32);not null"`
	NumberOfFruits int64             `gorm:"column:number_of_fruits;not null"`
	PricePerFruit  decimal.Decimal   `gorm:"column:price_per_fruit;type:numeric(14,2);not null"`
	TotalAmount    decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	OrderDate      time.Time         `gorm:"column:order_date;not null"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o Order) OwnerID() uuid.UUID      { return o.FarmerID }
func (o Order) Fruits() int64           { return o.NumberOfFruits }
func (o Order) Amount() decimal.Decimal { return o.TotalAmount }
