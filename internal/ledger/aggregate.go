package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals is an owner aggregate: how many fruits and how much money its line items add up to.
type Totals struct {
	Fruits int64
	Money  decimal.Decimal
}

// Equal compares numerically so 50 and 50.00 are the same amount.
func (t Totals) Equal(other Totals) bool {
	return t.Fruits == other.Fruits && t.Money.Equal(other.Money)
}

// Line is anything that rolls up into an owner aggregate.
type Line interface {
	OwnerID() uuid.UUID
	Fruits() int64
	Amount() decimal.Decimal
}

// Aggregate sums the lines that belong to owner. Lines for other owners are ignored
// and an owner with no lines yields zero totals.
func Aggregate[L Line](owner uuid.UUID, lines []L) Totals {
	totals := Totals{Money: decimal.Zero}
	for _, line := range lines {
		if line.OwnerID() != owner {
			continue
		}
		totals.Fruits += line.Fruits()
		totals.Money = totals.Money.Add(line.Amount())
	}
	return totals
}

// LineAmount is total_amount for a line: fruits * price, at cent precision.
func LineAmount(fruits int64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(fruits)).Round(2)
}

// Per-line and per-owner ceilings. Money columns are NUMERIC(14,2).
const MaxFruitsPerLine = 1_000_000_000

var (
	MaxPricePerFruit = decimal.NewFromInt(100_000)
	MaxMoney         = decimal.RequireFromString("999999999999.99")
)
