package buyers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

func TestBuyerLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	logs := &bytes.Buffer{}
	svc, err := NewService(NewRepository(client.DB()), client, logger.New(logger.Options{ServiceName: "test", Output: logs}))
	require.NoError(t, err)
	ctx := context.Background()

	buyer, err := svc.Create(ctx, Input{Name: "Nakumatt", Contact: "buyer@example.com", Location: "Nairobi"})
	require.NoError(t, err)
	assert.Zero(t, buyer.TotalFruits)
	assert.Contains(t, logs.String(), "buyer created")

	fruits := int64(4)
	_, err = svc.Update(ctx, buyer.ID, Input{Name: "Nakumatt", TotalFruits: &fruits})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	updated, err := svc.Update(ctx, buyer.ID, Input{Name: "Naivas", Location: "Thika"})
	require.NoError(t, err)
	assert.Equal(t, "Naivas", updated.Name)

	sale := &models.Sale{
		BuyerID:        buyer.ID,
		AvocadoType:    enums.AvocadoHass,
		NumberOfFruits: 1,
		PricePerFruit:  decimal.NewFromInt(1),
		TotalAmount:    decimal.NewFromInt(1),
		SaleDate:       time.Now().UTC(),
	}
	require.NoError(t, client.DB().Create(sale).Error)

	err = svc.Delete(ctx, buyer.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	require.NoError(t, client.DB().Delete(&models.Sale{}, "id = ?", sale.ID).Error)
	require.NoError(t, svc.Delete(ctx, buyer.ID))

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuyerValidationAndNotFound(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}))
	require.NoError(t, err)

	money := decimal.NewFromInt(5)
	_, err = svc.Create(context.Background(), Input{Name: "X", TotalMoney: &money})
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Details(), "total_money")

	_, err = svc.Create(context.Background(), Input{})
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Details(), "name")

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
}
