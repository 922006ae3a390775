package types

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type Farmer struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Contact     string          `json:"contact" yaml:"contact"`
	Location    string          `json:"location" yaml:"location"`
	AvocadoType string          `json:"avocado_type" yaml:"avocado_type"`
	TotalFruits int64           `json:"total_fruits" yaml:"total_fruits"`
	TotalMoney  decimal.Decimal `json:"total_money" yaml:"total_money"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at"`
}

type Buyer struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Contact     string          `json:"contact" yaml:"contact"`
	Location    string          `json:"location" yaml:"location"`
	TotalFruits int64           `json:"total_fruits" yaml:"total_fruits"`
	TotalMoney  decimal.Decimal `json:"total_money" yaml:"total_money"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at"`
}

type Order struct {
	ID             string          `json:"id" yaml:"id"`
	FarmerID       string          `json:"farmer_id" yaml:"farmer_id"`
	CustomerName   string          `json:"customer_name" yaml:"customer_name"`
	AvocadoType    string          `json:"avocado_type" yaml:"avocado_type"`
	NumberOfFruits int64           `json:"number_of_fruits" yaml:"number_of_fruits"`
	PricePerFruit  decimal.Decimal `json:"price_per_fruit" yaml:"price_per_fruit"`
	TotalAmount    decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	OrderDate      time.Time       `json:"order_date" yaml:"order_date"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" yaml:"updated_at"`
}

type Sale struct {
	ID             string          `json:"id" yaml:"id"`
	BuyerID        string          `json:"buyer_id" yaml:"buyer_id"`
	BuyerName      string          `json:"buyer_name" yaml:"buyer_name"`
	AvocadoType    string          `json:"avocado_type" yaml:"avocado_type"`
	NumberOfFruits int64           `json:"number_of_fruits" yaml:"number_of_fruits"`
	PricePerFruit  decimal.Decimal `json:"price_per_fruit" yaml:"price_per_fruit"`
	TotalAmount    decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	SaleDate       time.Time       `json:"sale_date" yaml:"sale_date"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" yaml:"updated_at"`
}

// FarmerRequest is the body of POST /farmers and PUT /farmers/{id}.
// The aggregate fields are accepted only so the server can reject edits to them.
type FarmerRequest struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Contact     string           `json:"contact" validate:"max=120"`
	Location    string           `json:"location" validate:"max=120"`
	AvocadoType string           `json:"avocado_type,omitempty" validate:"omitempty,oneof=Hass Fuerte"`
	TotalFruits *int64           `json:"total_fruits,omitempty"`
	TotalMoney  *decimal.Decimal `json:"total_money,omitempty"`
}

type BuyerRequest struct {
	Name        string           `json:"name" validate:"required,max=120"`
	Contact     string           `json:"contact" validate:"max=120"`
	Location    string           `json:"location" validate:"max=120"`
	TotalFruits *int64           `json:"total_fruits,omitempty"`
	TotalMoney  *decimal.Decimal `json:"total_money,omitempty"`
}

// OrderRequest is the body of POST /orders and PUT /orders/{id}. On update
// FarmerID and OrderDate may be omitted; when present they must match the row.
type OrderRequest struct {
	FarmerID       string           `json:"farmer_id,omitempty" validate:"omitempty,uuid"`
	CustomerName   string           `json:"customer_name" validate:"max=120"`
	AvocadoType    string           `json:"avocado_type,omitempty" validate:"omitempty,oneof=Hass Fuerte"`
	NumberOfFruits int64            `json:"number_of_fruits" validate:"required,gt=0,lte=1000000000"`
	PricePerFruit  decimal.Decimal  `json:"price_per_fruit" validate:"required,gt=0,lte=100000"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	OrderDate      *time.Time       `json:"order_date,omitempty"`
}

type SaleRequest struct {
	BuyerID        string           `json:"buyer_id,omitempty" validate:"omitempty,uuid"`
	BuyerName      string           `json:"buyer_name" validate:"max=120"`
	AvocadoType    string           `json:"avocado_type,omitempty" validate:"omitempty,oneof=Hass Fuerte"`
	NumberOfFruits int64            `json:"number_of_fruits" validate:"required,gt=0,lte=1000000000"`
	PricePerFruit  decimal.Decimal  `json:"price_per_fruit" validate:"required,gt=0,lte=100000"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty"`
	SaleDate       *time.Time       `json:"sale_date,omitempty"`
}

// Totals is an owner aggregate as exposed over the wire.
type Totals struct {
	TotalFruits int64           `json:"total_fruits" yaml:"total_fruits"`
	TotalMoney  decimal.Decimal `json:"total_money" yaml:"total_money"`
}

// ReconcileResult is returned by POST /farmers/{id}/reconcile and /buyers/{id}/reconcile.
type ReconcileResult struct {
	OwnerKind string `json:"owner_kind" yaml:"owner_kind"`
	OwnerID   string `json:"owner_id" yaml:"owner_id"`
	Before    Totals `json:"before" yaml:"before"`
	After     Totals `json:"after" yaml:"after"`
	Drifted   bool   `json:"drifted" yaml:"drifted"`
}

type TopFarmer struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	TotalFruits int64           `json:"total_fruits" yaml:"total_fruits"`
	TotalMoney  decimal.Decimal `json:"total_money" yaml:"total_money"`
}

type DashboardSummary struct {
	TotalFarmers int64           `json:"total_farmers" yaml:"total_farmers"`
	TotalBuyers  int64           `json:"total_buyers" yaml:"total_buyers"`
	FarmerFruits int64           `json:"farmer_fruits" yaml:"farmer_fruits"`
	FarmerMoney  decimal.Decimal `json:"farmer_money" yaml:"farmer_money"`
	BuyerFruits  int64           `json:"buyer_fruits" yaml:"buyer_fruits"`
	BuyerMoney   decimal.Decimal `json:"buyer_money" yaml:"buyer_money"`
	StockBalance int64           `json:"stock_balance" yaml:"stock_balance"`
	TopFarmers   []TopFarmer     `json:"top_farmers" yaml:"top_farmers"`
}

type AnalyticsPoint struct {
	Name   string          `json:"name" yaml:"name"`
	Fruits int64           `json:"fruits" yaml:"fruits"`
	Money  decimal.Decimal `json:"money" yaml:"money"`
}
