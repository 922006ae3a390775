package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

func resource(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", &ValidationError{Message: "id is required", Fields: map[string]string{"id": "is required"}}
	}
	return "/" + kind + "/" + url.PathEscape(id), nil
}

func get[T any](ctx context.Context, c *Client, kind, id string) (*T, error) {
	path, err := resource(kind, id)
	if err != nil {
		return nil, err
	}
	var out T
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func create[T any](ctx context.Context, c *Client, kind string, body any) (*T, error) {
	if err := validate(body); err != nil {
		return nil, err
	}
	var out T
	if _, err := c.do(ctx, http.MethodPost, "/"+kind, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func update[T any](ctx context.Context, c *Client, kind, id string, body any) (*T, error) {
	path, err := resource(kind, id)
	if err != nil {
		return nil, err
	}
	if err := validate(body); err != nil {
		return nil, err
	}
	var out T
	if _, err := c.do(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) remove(ctx context.Context, kind, id string) error {
	path, err := resource(kind, id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

func (c *Client) reconcile(ctx context.Context, kind, id string) (*types.ReconcileResult, error) {
	path, err := resource(kind, id)
	if err != nil {
		return nil, err
	}
	var out types.ReconcileResult
	if _, err := c.do(ctx, http.MethodPost, path+"/reconcile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListFarmers(ctx context.Context, opts ListOptions) (*ListResult[types.Farmer], error) {
	return list[types.Farmer](ctx, c, "/farmers", opts)
}

func (c *Client) GetFarmer(ctx context.Context, id string) (*types.Farmer, error) {
	return get[types.Farmer](ctx, c, "farmers", id)
}

func (c *Client) CreateFarmer(ctx context.Context, req types.FarmerRequest) (*types.Farmer, error) {
	return create[types.Farmer](ctx, c, "farmers", req)
}

func (c *Client) UpdateFarmer(ctx context.Context, id string, req types.FarmerRequest) (*types.Farmer, error) {
	return update[types.Farmer](ctx, c, "farmers", id, req)
}

// DeleteFarmer fails with a 409 APIError while the farmer still has orders.
func (c *Client) DeleteFarmer(ctx context.Context, id string) error {
	return c.remove(ctx, "farmers", id)
}

func (c *Client) ReconcileFarmer(ctx context.Context, id string) (*types.ReconcileResult, error) {
	return c.reconcile(ctx, "farmers", id)
}

func (c *Client) ListBuyers(ctx context.Context, opts ListOptions) (*ListResult[types.Buyer], error) {
	return list[types.Buyer](ctx, c, "/buyers", opts)
}

func (c *Client) GetBuyer(ctx context.Context, id string) (*types.Buyer, error) {
	return get[types.Buyer](ctx, c, "buyers", id)
}

func (c *Client) CreateBuyer(ctx context.Context, req types.BuyerRequest) (*types.Buyer, error) {
	return create[types.Buyer](ctx, c, "buyers", req)
}

func (c *Client) UpdateBuyer(ctx context.Context, id string, req types.BuyerRequest) (*types.Buyer, error) {
	return update[types.Buyer](ctx, c, "buyers", id, req)
}

func (c *Client) DeleteBuyer(ctx context.Context, id string) error {
	return c.remove(ctx, "buyers", id)
}

func (c *Client) ReconcileBuyer(ctx context.Context, id string) (*types.ReconcileResult, error) {
	return c.reconcile(ctx, "buyers", id)
}

func (c *Client) ListOrders(ctx context.Context, opts ListOptions) (*ListResult[types.Order], error) {
	return list[types.Order](ctx, c, "/orders", opts)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*types.Order, error) {
	return get[types.Order](ctx, c, "orders", id)
}

// CreateOrder requires FarmerID; the server recomputes the farmer's totals in the same transaction.
func (c *Client) CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	if strings.TrimSpace(req.FarmerID) == "" {
		return nil, &ValidationError{
			Message: "farmer_id is required",
			Fields:  map[string]string{"farmer_id": "is required"},
		}
	}
	return create[types.Order](ctx, c, "orders", req)
}

func (c *Client) UpdateOrder(ctx context.Context, id string, req types.OrderRequest) (*types.Order, error) {
	return update[types.Order](ctx, c, "orders", id, req)
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.remove(ctx, "orders", id)
}

func (c *Client) ListSales(ctx context.Context, opts ListOptions) (*ListResult[types.Sale], error) {
	return list[types.Sale](ctx, c, "/sales", opts)
}

func (c *Client) GetSale(ctx context.Context, id string) (*types.Sale, error) {
	return get[types.Sale](ctx, c, "sales", id)
}

func (c *Client) CreateSale(ctx context.Context, req types.SaleRequest) (*types.Sale, error) {
	if strings.TrimSpace(req.BuyerID) == "" {
		return nil, &ValidationError{
			Message: "buyer_id is required",
			Fields:  map[string]string{"buyer_id": "is required"},
		}
	}
	return create[types.Sale](ctx, c, "sales", req)
}

func (c *Client) UpdateSale(ctx context.Context, id string, req types.SaleRequest) (*types.Sale, error) {
	return update[types.Sale](ctx, c, "sales", id, req)
}

func (c *Client) DeleteSale(ctx context.Context, id string) error {
	return c.remove(ctx, "sales", id)
}

func (c *Client) DashboardSummary(ctx context.Context) (*types.DashboardSummary, error) {
	var out types.DashboardSummary
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardAnalytics(ctx context.Context) ([]types.AnalyticsPoint, error) {
	var out []types.AnalyticsPoint
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/analytics", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.AnalyticsPoint{}
	}
	return out, nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}
