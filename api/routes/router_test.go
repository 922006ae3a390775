package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/internal/buyers"
	"github.com/dmm341/avocado-ledger/internal/dashboard"
	"github.com/dmm341/avocado-ledger/internal/farmers"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/config"
	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/metrics"
	"github.com/dmm341/avocado-ledger/pkg/outbox"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &bytes.Buffer{}})
	reg := metrics.NewRegistry()

	farmerSvc, err := farmers.NewService(farmers.NewRepository(conn), client, logg)
	require.NoError(t, err)
	buyerSvc, err := buyers.NewService(buyers.NewRepository(conn), client, logg)
	require.NoError(t, err)
	ledgerSvc, err := ledger.NewService(ledger.ServiceParams{
		Repo:    ledger.NewRepository(conn),
		Tx:      client,
		Outbox:  outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics: metrics.NewLedgerMetrics(reg),
		Logger:  logg,
	})
	require.NoError(t, err)
	dashSvc, err := dashboard.NewService(dashboard.NewRepository(conn), logg)
	require.NoError(t, err)

	return NewRouter(Deps{
		Config:    &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:    logg,
		DB:        client,
		Metrics:   metrics.Handler(reg),
		Farmers:   farmerSvc,
		Buyers:    buyerSvc,
		Ledger:    ledgerSvc,
		Dashboard: dashSvc,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLedgerFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/farmers", `{"name":"Wanjiru","contact":"0711","location":"Muranga"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	farmer := decode[types.Farmer](t, rec)
	assert.Equal(t, "Hass", farmer.AvocadoType)
	assert.Zero(t, farmer.TotalFruits)

	rec = do(t, h, http.MethodPost, "/orders", `{"farmer_id":"`+farmer.ID+`","customer_name":"Market","number_of_fruits":100,"price_per_fruit":0.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[types.Order](t, rec)
	assert.True(t, decimal.NewFromInt(50).Equal(order.TotalAmount))

	rec = do(t, h, http.MethodPost, "/orders", `{"farmer_id":"`+farmer.ID+`","number_of_fruits":20,"price_per_fruit":1.5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/farmers/"+farmer.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	farmer = decode[types.Farmer](t, rec)
	assert.EqualValues(t, 120, farmer.TotalFruits)
	assert.True(t, decimal.NewFromInt(80).Equal(farmer.TotalMoney))

	rec = do(t, h, http.MethodPut, "/orders/"+order.ID, `{"number_of_fruits":10,"price_per_fruit":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/farmers/"+farmer.ID, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[types.ErrorBody](t, rec).Message, "2 orders")

	rec = do(t, h, http.MethodDelete, "/orders/"+order.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/farmers/"+farmer.ID, "")
	farmer = decode[types.Farmer](t, rec)
	assert.EqualValues(t, 20, farmer.TotalFruits)
	assert.True(t, decimal.NewFromInt(30).Equal(farmer.TotalMoney))

	rec = do(t, h, http.MethodPost, "/farmers/"+farmer.ID+"/reconcile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[types.ReconcileResult](t, rec).Drifted)

	rec = do(t, h, http.MethodGet, "/dashboard/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[types.DashboardSummary](t, rec)
	assert.EqualValues(t, 1, summary.TotalFarmers)
	assert.EqualValues(t, 20, summary.StockBalance)
}

func TestErrorResponses(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/orders", `{"farmer_id":"5b0c7f35-3a4e-4a43-9b1c-3a6d1fd0c0aa","number_of_fruits":1,"price_per_fruit":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[types.ErrorBody](t, rec)
	assert.Equal(t, "REFERENCE_ERROR", body.Code)
	assert.NotEmpty(t, body.Message)

	rec = do(t, h, http.MethodPost, "/orders", `{"farmer_id":"5b0c7f35-3a4e-4a43-9b1c-3a6d1fd0c0aa","number_of_fruits":0,"price_per_fruit":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "number_of_fruits must be greater than 0", decode[types.ErrorBody](t, rec).Message)

	rec = do(t, h, http.MethodGet, "/sales/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/sales/5b0c7f35-3a4e-4a43-9b1c-3a6d1fd0c0aa", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/buyers", `{"name":"Kiosk","total_fruits":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQueryParams(t *testing.T) {
	h := newTestRouter(t)
	for _, name := range []string{"Chebet", "amani", "Baraka", "Achieng"} {
		rec := do(t, h, http.MethodPost, "/buyers", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/buyers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]types.Buyer](t, rec), 4)
	assert.Equal(t, "4", rec.Header().Get("X-Total-Count"))

	rec = do(t, h, http.MethodGet, "/buyers?sort=name&dir=asc&page=1&per_page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]types.Buyer](t, rec)
	require.Len(t, page, 2)
	assert.Equal(t, "Achieng", page[0].Name)
	assert.Equal(t, "Baraka", page[1].Name)
	assert.Equal(t, "2", rec.Header().Get("X-Page-Count"))

	rec = do(t, h, http.MethodGet, "/buyers?q=AMANI", "")
	assert.Len(t, decode[[]types.Buyer](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/buyers?sort=password", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db":"ok"`)

	do(t, h, http.MethodPost, "/orders", `{"farmer_id":"5b0c7f35-3a4e-4a43-9b1c-3a6d1fd0c0aa","number_of_fruits":1,"price_per_fruit":1}`)
	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "avoledger_line_item_writes_total")
}
