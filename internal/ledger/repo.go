package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
)

// Repository manages persistence for orders, sales and the owner aggregates they feed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindFarmer(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
	FindBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	UpdateFarmerTotals(ctx context.Context, id uuid.UUID, totals Totals) error
	UpdateBuyerTotals(ctx context.Context, id uuid.UUID, totals Totals) error
	ListFarmerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
	ListBuyerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
	CreateDriftReports(ctx context.Context, reports []models.DriftReport) error

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Order, error)

	CreateSale(ctx context.Context, sale *models.Sale) error
	FindSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	UpdateSale(ctx context.Context, sale *models.Sale) error
	DeleteSale(ctx context.Context, id uuid.UUID) error
	ListSales(ctx context.Context) ([]models.Sale, error)
	ListSalesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// find loads a single row by id, returning nil when it does not exist.
func find[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindFarmer(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	return find[models.Farmer](ctx, r.db, id)
}

func (r *repository) FindBuyer(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	return find[models.Buyer](ctx, r.db, id)
}

func (r *repository) UpdateFarmerTotals(ctx context.Context, id uuid.UUID, totals Totals) error {
	return r.db.WithContext(ctx).Model(&models.Farmer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_fruits": totals.Fruits,
			"total_money":  totals.Money,
		}).Error
}

func (r *repository) UpdateBuyerTotals(ctx context.Context, id uuid.UUID, totals Totals) error {
	return r.db.WithContext(ctx).Model(&models.Buyer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_fruits": totals.Fruits,
			"total_money":  totals.Money,
		}).Error
}

func (r *repository) ListFarmerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	return pluckIDsAfter(r.db.WithContext(ctx).Model(&models.Farmer{}), after, limit)
}

func (r *repository) ListBuyerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	return pluckIDsAfter(r.db.WithContext(ctx).Model(&models.Buyer{}), after, limit)
}

// pluckIDsAfter returns one page of ids in id order, starting past after.
// uuid.Nil starts from the beginning.
func pluckIDsAfter(query *gorm.DB, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if after != uuid.Nil {
		query = query.Where("id > ?", after)
	}
	query = query.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) CreateDriftReports(ctx context.Context, reports []models.DriftReport) error {
	if len(reports) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reports).Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return find[models.Order](ctx, r.db, id)
}

// UpdateOrder persists only the editable columns; farmer_id and order_date never change.
func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("customer_name", "avocado_type", "number_of_fruits", "price_per_fruit", "total_amount", "updated_at").
		Updates(order).Error
}

func (r *repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{}).Error
}

func (r *repository) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListOrdersByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Find(&rows).Error
	return rows, err
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) FindSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return find[models.Sale](ctx, r.db, id)
}

// UpdateSale persists only the editable columns; buyer_id and sale_date never change.
func (r *repository) UpdateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Model(sale).
		Select("buyer_name", "avocado_type", "number_of_fruits", "price_per_fruit", "total_amount", "updated_at").
		Updates(sale).Error
}

func (r *repository) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sale{}).Error
}

func (r *repository) ListSales(ctx context.Context) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListSalesByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Find(&rows).Error
	return rows, err
}
