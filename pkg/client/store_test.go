package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func TestCollectionDropsStaleFetch(t *testing.T) {
	coll := NewCollection(query.FarmerSchema, func(f types.Farmer) string { return f.ID })

	slow := coll.Begin()
	fast := coll.Begin()
	if !coll.Apply(fast, []types.Farmer{{ID: "f-1", Name: "new"}}) {
		t.Fatalf("newest fetch should apply")
	}
	if coll.Apply(slow, []types.Farmer{{ID: "f-1", Name: "old"}}) {
		t.Fatalf("older fetch should be discarded")
	}
	if rows := coll.Rows(); len(rows) != 1 || rows[0].Name != "new" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestLocalWriteInvalidatesInFlightFetch(t *testing.T) {
	store := NewStore(nil)
	tok := store.Buyers.Begin()
	store.Buyers.upsert(types.Buyer{ID: "b-1", Name: "Market"})

	if store.Buyers.Apply(tok, nil) {
		t.Fatalf("fetch started before the write must not clobber it")
	}
	if _, ok := store.Buyers.Get("b-1"); !ok {
		t.Fatalf("written row missing")
	}
}

func TestCollectionRemove(t *testing.T) {
	store := NewStore(nil)
	store.Orders.Apply(store.Orders.Begin(), []types.Order{{ID: "o-1"}, {ID: "o-2"}, {ID: "o-3"}})
	store.Orders.remove("o-2")

	rows := store.Orders.Rows()
	if len(rows) != 2 || rows[0].ID != "o-1" || rows[1].ID != "o-3" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestCollectionView(t *testing.T) {
	store := NewStore(nil)
	store.Farmers.Apply(store.Farmers.Begin(), []types.Farmer{
		{ID: "1", Name: "Zoe", Location: "Michoacan"},
		{ID: "2", Name: "Ana", Location: "Jalisco"},
		{ID: "3", Name: "Luis", Location: "michoacan"},
	})

	view := store.Farmers.View()
	view.SetFilter("MICHOACAN")
	if err := view.SortBy("name"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	page := view.Page()
	if page.Total != 2 || page.Items[0].Name != "Luis" || page.Items[1].Name != "Zoe" {
		t.Fatalf("unexpected page %+v", page)
	}
}

const storeFarmerID = "9b2d3c9e-0a53-4b8e-9df3-6a1f2e7c1d10"

func TestStoreOrderWritesRefreshFarmer(t *testing.T) {
	farmerTotal := `{"id":"` + storeFarmerID + `","name":"Ana","total_fruits":0,"total_money":0}`
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		farmerTotal = `{"id":"` + storeFarmerID + `","name":"Ana","total_fruits":10,"total_money":20}`
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"o-1","farmer_id":"`+storeFarmerID+`","number_of_fruits":10,"price_per_fruit":2,"total_amount":20}`)
	})
	mux.HandleFunc("DELETE /orders/o-1", func(w http.ResponseWriter, r *http.Request) {
		farmerTotal = `{"id":"` + storeFarmerID + `","name":"Ana","total_fruits":0,"total_money":0}`
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /farmers/"+storeFarmerID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, farmerTotal)
	})
	mux.HandleFunc("GET /farmers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "["+farmerTotal+"]")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewStore(newTestClient(t, srv.URL))
	ctx := context.Background()
	if applied, err := store.RefreshFarmers(ctx); err != nil || !applied {
		t.Fatalf("refresh: applied=%v err=%v", applied, err)
	}

	if _, err := store.CreateOrder(ctx, types.OrderRequest{
		FarmerID:       storeFarmerID,
		NumberOfFruits: 10,
		PricePerFruit:  decimal.NewFromInt(2),
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	farmer, _ := store.Farmers.Get(storeFarmerID)
	if farmer.TotalFruits != 10 || !farmer.TotalMoney.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("farmer totals not refreshed: %+v", farmer)
	}

	if err := store.DeleteOrder(ctx, "o-1"); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	farmer, _ = store.Farmers.Get(storeFarmerID)
	if farmer.TotalFruits != 0 || !farmer.TotalMoney.IsZero() {
		t.Fatalf("farmer totals not refreshed after delete: %+v", farmer)
	}
	if len(store.Orders.Rows()) != 0 {
		t.Fatalf("order not removed locally")
	}
}
