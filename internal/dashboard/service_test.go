package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

func seedFarmer(t *testing.T, conn *gorm.DB, name string, fruits int64, money string) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Farmer{
		Name:        name,
		AvocadoType: enums.AvocadoHass,
		TotalFruits: fruits,
		TotalMoney:  decimal.RequireFromString(money),
	}).Error)
}

func seedBuyer(t *testing.T, conn *gorm.DB, name string, fruits int64, money string) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Buyer{
		Name:        name,
		TotalFruits: fruits,
		TotalMoney:  decimal.RequireFromString(money),
	}).Error)
}

func TestSummary(t *testing.T) {
	conn := dbtest.Open(t).DB()
	for i, fruits := range []int64{50, 300, 120, 300, 10, 75} {
		seedFarmer(t, conn, fmt.Sprintf("Farmer %c", 'A'+i), fruits, "10.25")
	}
	seedBuyer(t, conn, "Buyer A", 400, "900.00")
	seedBuyer(t, conn, "Buyer B", 100, "250.50")

	svc, err := NewService(NewRepository(conn), testLogger())
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 6, summary.TotalFarmers)
	assert.EqualValues(t, 2, summary.TotalBuyers)
	assert.EqualValues(t, 855, summary.FarmerFruits)
	assert.True(t, decimal.RequireFromString("61.50").Equal(summary.FarmerMoney))
	assert.EqualValues(t, 500, summary.BuyerFruits)
	assert.True(t, decimal.RequireFromString("1150.50").Equal(summary.BuyerMoney))
	assert.EqualValues(t, 355, summary.StockBalance)

	require.Len(t, summary.TopFarmers, TopFarmerCount)
	got := []string{}
	for _, f := range summary.TopFarmers {
		got = append(got, f.Name)
	}
	assert.Equal(t, []string{"Farmer B", "Farmer D", "Farmer C", "Farmer F", "Farmer A"}, got)
}

func TestSummaryEmptyLedger(t *testing.T) {
	conn := dbtest.Open(t).DB()
	svc, err := NewService(NewRepository(conn), testLogger())
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalFarmers)
	assert.Zero(t, summary.StockBalance)
	assert.True(t, summary.FarmerMoney.IsZero())
	assert.NotNil(t, summary.TopFarmers)
	assert.Empty(t, summary.TopFarmers)
}

func TestAnalyticsOrderedByName(t *testing.T) {
	conn := dbtest.Open(t).DB()
	seedFarmer(t, conn, "Zawadi", 5, "2.50")
	seedFarmer(t, conn, "Amani", 7, "3.50")

	svc, err := NewService(NewRepository(conn), testLogger())
	require.NoError(t, err)

	points, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Amani", points[0].Name)
	assert.EqualValues(t, 7, points[0].Fruits)
	assert.True(t, decimal.RequireFromString("3.50").Equal(points[0].Money))
}

type failingRepo struct{}

func (failingRepo) Farmers(context.Context) ([]models.Farmer, error) {
	return nil, errors.New("connection reset")
}
func (failingRepo) Buyers(context.Context) ([]models.Buyer, error) { return nil, nil }

func TestSummaryRepositoryFailure(t *testing.T) {
	svc, err := NewService(failingRepo{}, testLogger())
	require.NoError(t, err)

	_, err = svc.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, testLogger())
	require.Error(t, err)
	_, err = NewService(failingRepo{}, nil)
	require.Error(t, err)
}
