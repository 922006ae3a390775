package client

import (
	"context"
	"sync"

	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

// Token orders fetches and local writes against one collection.
type Token uint64

// Sequencer hands out increasing tokens and remembers the newest one applied.
type Sequencer struct {
	mu      sync.Mutex
	issued  Token
	applied Token
}

func (s *Sequencer) Next() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept records tok as applied unless a newer token already was.
func (s *Sequencer) Accept(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok < s.applied {
		return false
	}
	s.applied = tok
	return true
}

// Collection is the client-side copy of one resource list.
type Collection[T any] struct {
	mu     sync.RWMutex
	seq    Sequencer
	rows   []T
	idOf   func(T) string
	schema query.Schema[T]
}

func NewCollection[T any](schema query.Schema[T], idOf func(T) string) *Collection[T] {
	return &Collection[T]{schema: schema, idOf: idOf}
}

// Begin takes a token for a fetch that is about to start.
func (c *Collection[T]) Begin() Token {
	return c.seq.Next()
}

// Apply replaces the rows with a fetch result. A result that was overtaken by
// a newer fetch or a local write is dropped and Apply returns false.
func (c *Collection[T]) Apply(tok Token, rows []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.Accept(tok) {
		return false
	}
	c.rows = append([]T(nil), rows...)
	return true
}

// Rows returns a copy of the current rows.
func (c *Collection[T]) Rows() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.rows...)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, row := range c.rows {
		if c.idOf(row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// View wraps a snapshot of the rows for local filtering, sorting and paging.
func (c *Collection[T]) View() *query.View[T] {
	return query.NewView(c.schema, c.Rows())
}

func (c *Collection[T]) upsert(row T) {
	tok := c.seq.Next()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Accept(tok)
	id := c.idOf(row)
	for i := range c.rows {
		if c.idOf(c.rows[i]) == id {
			c.rows[i] = row
			return
		}
	}
	c.rows = append(c.rows, row)
}

func (c *Collection[T]) remove(id string) {
	tok := c.seq.Next()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Accept(tok)
	kept := c.rows[:0]
	for _, row := range c.rows {
		if c.idOf(row) != id {
			kept = append(kept, row)
		}
	}
	c.rows = kept
}

// Store mirrors the four ledger resources and keeps owner totals current
// after order and sale writes by re-reading the owner.
type Store struct {
	api     *Client
	Farmers *Collection[types.Farmer]
	Buyers  *Collection[types.Buyer]
	Orders  *Collection[types.Order]
	Sales   *Collection[types.Sale]
}

func NewStore(api *Client) *Store {
	return &Store{
		api:     api,
		Farmers: NewCollection(query.FarmerSchema, func(f types.Farmer) string { return f.ID }),
		Buyers:  NewCollection(query.BuyerSchema, func(b types.Buyer) string { return b.ID }),
		Orders:  NewCollection(query.OrderSchema, func(o types.Order) string { return o.ID }),
		Sales:   NewCollection(query.SaleSchema, func(s types.Sale) string { return s.ID }),
	}
}

func refresh[T any](ctx context.Context, coll *Collection[T], fetch func(context.Context, ListOptions) (*ListResult[T], error)) (bool, error) {
	tok := coll.Begin()
	res, err := fetch(ctx, ListOptions{})
	if err != nil {
		return false, err
	}
	return coll.Apply(tok, res.Items), nil
}

// RefreshFarmers reloads the farmer list. It reports false when the response
// arrived after a newer one and was discarded.
func (s *Store) RefreshFarmers(ctx context.Context) (bool, error) {
	return refresh(ctx, s.Farmers, s.api.ListFarmers)
}

func (s *Store) RefreshBuyers(ctx context.Context) (bool, error) {
	return refresh(ctx, s.Buyers, s.api.ListBuyers)
}

func (s *Store) RefreshOrders(ctx context.Context) (bool, error) {
	return refresh(ctx, s.Orders, s.api.ListOrders)
}

func (s *Store) RefreshSales(ctx context.Context) (bool, error) {
	return refresh(ctx, s.Sales, s.api.ListSales)
}

// Refresh reloads every collection, stopping at the first error.
func (s *Store) Refresh(ctx context.Context) error {
	for _, fn := range []func(context.Context) (bool, error){
		s.RefreshFarmers, s.RefreshBuyers, s.RefreshOrders, s.RefreshSales,
	} {
		if _, err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateFarmer(ctx context.Context, req types.FarmerRequest) (*types.Farmer, error) {
	f, err := s.api.CreateFarmer(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Farmers.upsert(*f)
	return f, nil
}

func (s *Store) UpdateFarmer(ctx context.Context, id string, req types.FarmerRequest) (*types.Farmer, error) {
	f, err := s.api.UpdateFarmer(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Farmers.upsert(*f)
	return f, nil
}

func (s *Store) DeleteFarmer(ctx context.Context, id string) error {
	if err := s.api.DeleteFarmer(ctx, id); err != nil {
		return err
	}
	s.Farmers.remove(id)
	return nil
}

func (s *Store) CreateBuyer(ctx context.Context, req types.BuyerRequest) (*types.Buyer, error) {
	b, err := s.api.CreateBuyer(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Buyers.upsert(*b)
	return b, nil
}

func (s *Store) UpdateBuyer(ctx context.Context, id string, req types.BuyerRequest) (*types.Buyer, error) {
	b, err := s.api.UpdateBuyer(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Buyers.upsert(*b)
	return b, nil
}

func (s *Store) DeleteBuyer(ctx context.Context, id string) error {
	if err := s.api.DeleteBuyer(ctx, id); err != nil {
		return err
	}
	s.Buyers.remove(id)
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	o, err := s.api.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Orders.upsert(*o)
	return o, s.syncFarmer(ctx, o.FarmerID)
}

func (s *Store) UpdateOrder(ctx context.Context, id string, req types.OrderRequest) (*types.Order, error) {
	o, err := s.api.UpdateOrder(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Orders.upsert(*o)
	return o, s.syncFarmer(ctx, o.FarmerID)
}

// DeleteOrder resolves the owning farmer first so its totals can be re-read afterwards.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	o, ok := s.Orders.Get(id)
	if !ok {
		fetched, err := s.api.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		o = *fetched
	}
	if err := s.api.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.Orders.remove(id)
	return s.syncFarmer(ctx, o.FarmerID)
}

func (s *Store) CreateSale(ctx context.Context, req types.SaleRequest) (*types.Sale, error) {
	sale, err := s.api.CreateSale(ctx, req)
	if err != nil {
		return nil, err
	}
	s.Sales.upsert(*sale)
	return sale, s.syncBuyer(ctx, sale.BuyerID)
}

func (s *Store) UpdateSale(ctx context.Context, id string, req types.SaleRequest) (*types.Sale, error) {
	sale, err := s.api.UpdateSale(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.Sales.upsert(*sale)
	return sale, s.syncBuyer(ctx, sale.BuyerID)
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	sale, ok := s.Sales.Get(id)
	if !ok {
		fetched, err := s.api.GetSale(ctx, id)
		if err != nil {
			return err
		}
		sale = *fetched
	}
	if err := s.api.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.Sales.remove(id)
	return s.syncBuyer(ctx, sale.BuyerID)
}

func (s *Store) syncFarmer(ctx context.Context, id string) error {
	f, err := s.api.GetFarmer(ctx, id)
	if err != nil {
		return err
	}
	s.Farmers.upsert(*f)
	return nil
}

func (s *Store) syncBuyer(ctx context.Context, id string) error {
	b, err := s.api.GetBuyer(ctx, id)
	if err != nil {
		return err
	}
	s.Buyers.upsert(*b)
	return nil
}
