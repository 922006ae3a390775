package ledger

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
)

func order(farmer uuid.UUID, fruits int64, price int64) models.Order {
	p := decimal.NewFromInt(price)
	return models.Order{
		ID:             uuid.New(),
		FarmerID:       farmer,
		NumberOfFruits: fruits,
		PricePerFruit:  p,
		TotalAmount:    LineAmount(fruits, p),
	}
}

func TestAggregate_EmptyOwnerIsZero(t *testing.T) {
	got := Aggregate[models.Order](uuid.New(), nil)
	require.Equal(t, int64(0), got.Fruits)
	require.True(t, got.Money.IsZero())
	require.True(t, got.Equal(Totals{}))
}

func TestAggregate_OnlyCountsOwnerRows(t *testing.T) {
	f1, f2 := uuid.New(), uuid.New()
	lines := []models.Order{order(f1, 10, 5), order(f2, 100, 1), order(f1, 5, 8)}

	got := Aggregate(f1, lines)
	require.Equal(t, int64(15), got.Fruits)
	require.True(t, got.Money.Equal(decimal.NewFromInt(90)), "got %s", got.Money)

	other := Aggregate(f2, lines)
	require.True(t, other.Equal(Totals{Fruits: 100, Money: decimal.NewFromInt(100)}))
}

func TestAggregate_OrderIndependentAndIdempotent(t *testing.T) {
	owner := uuid.New()
	lines := []models.Order{order(owner, 1, 3), order(owner, 7, 2), order(owner, 12, 9), order(uuid.New(), 4, 4)}
	want := Aggregate(owner, lines)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Order(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.True(t, Aggregate(owner, shuffled).Equal(want))
	}
	require.True(t, Aggregate(owner, lines).Equal(Aggregate(owner, lines)))
}

func TestAggregate_Sales(t *testing.T) {
	buyer := uuid.New()
	sales := []models.Sale{
		{BuyerID: buyer, NumberOfFruits: 3, TotalAmount: decimal.RequireFromString("4.50")},
		{BuyerID: buyer, NumberOfFruits: 2, TotalAmount: decimal.RequireFromString("3.25")},
	}
	got := Aggregate(buyer, sales)
	require.Equal(t, int64(5), got.Fruits)
	require.Equal(t, "7.75", got.Money.StringFixed(2))
}

func TestLineAmount(t *testing.T) {
	require.Equal(t, "50.00", LineAmount(10, decimal.NewFromInt(5)).StringFixed(2))
	require.Equal(t, "3.75", LineAmount(3, decimal.RequireFromString("1.25")).StringFixed(2))
}
