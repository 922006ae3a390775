package farmers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/pkg/db"
	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

func newService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	require.NoError(t, err)
	return svc, client
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.As(err).Code(), "error: %v", err)
}

func int64Ptr(v int64) *int64 { return &v }

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateFarmerDefaults(t *testing.T) {
	svc, _ := newService(t)
	farmer, err := svc.Create(context.Background(), Input{Name: "  Juma  ", Contact: "0700", Location: "Muranga"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, farmer.ID)
	require.Equal(t, "Juma", farmer.Name)
	require.Equal(t, enums.AvocadoHass, farmer.AvocadoType)
	require.Zero(t, farmer.TotalFruits)
	require.True(t, farmer.TotalMoney.IsZero())

	got, err := svc.Get(context.Background(), farmer.ID)
	require.NoError(t, err)
	require.Equal(t, "Muranga", got.Location)
}

func TestCreateFarmerValidation(t *testing.T) {
	svc, _ := newService(t)
	tests := []struct {
		name  string
		input Input
		field string
	}{
		{name: "blank name", input: Input{Name: "   "}, field: "name"},
		{name: "unknown avocado", input: Input{Name: "A", AvocadoType: "Reed"}, field: "avocado_type"},
		{name: "seeded fruits", input: Input{Name: "A", TotalFruits: int64Ptr(10)}, field: "total_fruits"},
		{name: "seeded money", input: Input{Name: "A", TotalMoney: decimalPtr(10)}, field: "total_money"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			requireCode(t, err, pkgerrors.CodeValidation)
			require.Contains(t, pkgerrors.As(err).Details(), tt.field)
		})
	}

	_, err := svc.Create(context.Background(), Input{Name: "Zeroes", TotalFruits: int64Ptr(0), TotalMoney: decimalPtr(0)})
	require.NoError(t, err, "explicit zero totals are accepted")
}

func TestUpdateFarmerRejectsAggregateEdits(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()
	farmer, err := svc.Create(ctx, Input{Name: "Wanjiru", AvocadoType: "Fuerte"})
	require.NoError(t, err)
	require.NoError(t, client.DB().Model(&models.Farmer{}).Where("id = ?", farmer.ID).
		Updates(map[string]any{"total_fruits": 15, "total_money": decimal.NewFromInt(90)}).Error)

	_, err = svc.Update(ctx, farmer.ID, Input{Name: "Wanjiru", TotalFruits: int64Ptr(500)})
	requireCode(t, err, pkgerrors.CodeValidation)

	updated, err := svc.Update(ctx, farmer.ID, Input{Name: "Wanjiru K", Location: "Nyeri", TotalFruits: int64Ptr(15), TotalMoney: decimalPtr(90)})
	require.NoError(t, err, "unchanged aggregate values pass")
	require.Equal(t, "Wanjiru K", updated.Name)
	require.Equal(t, enums.AvocadoFuerte, updated.AvocadoType, "blank avocado keeps the stored one")

	stored, err := svc.Get(ctx, farmer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(15), stored.TotalFruits)
	require.Equal(t, "Nyeri", stored.Location)

	_, err = svc.Update(ctx, uuid.New(), Input{Name: "ghost"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteFarmerBlockedByOrders(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()
	farmer, err := svc.Create(ctx, Input{Name: "Otieno"})
	require.NoError(t, err)

	order := &models.Order{
		FarmerID:       farmer.ID,
		AvocadoType:    enums.AvocadoHass,
		NumberOfFruits: 3,
		PricePerFruit:  decimal.NewFromInt(2),
		TotalAmount:    decimal.NewFromInt(6),
		OrderDate:      time.Now().UTC(),
	}
	require.NoError(t, client.DB().Create(order).Error)

	err = svc.Delete(ctx, farmer.ID)
	requireCode(t, err, pkgerrors.CodeConflict)
	require.Contains(t, err.Error(), "1 orders")

	require.NoError(t, client.DB().Delete(&models.Order{}, "id = ?", order.ID).Error)
	require.NoError(t, svc.Delete(ctx, farmer.ID))

	_, err = svc.Get(ctx, farmer.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	requireCode(t, svc.Delete(ctx, farmer.ID), pkgerrors.CodeNotFound)
}

func TestListFarmersInCreationOrder(t *testing.T) {
	svc, _ := newService(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), Input{Name: name})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "a", rows[0].Name)
	require.Equal(t, "c", rows[2].Name)
}
