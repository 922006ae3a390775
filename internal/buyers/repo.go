package buyers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
)

// Repository manages persistence for buyers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, buyer *models.Buyer) error
	Find(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	UpdateProfile(ctx context.Context, buyer *models.Buyer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Buyer, error)
	CountSales(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, buyer *models.Buyer) error {
	return r.db.WithContext(ctx).Create(buyer).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	var buyer models.Buyer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&buyer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

func (r *repository) UpdateProfile(ctx context.Context, buyer *models.Buyer) error {
	return r.db.WithContext(ctx).Model(buyer).
		Select("name", "contact", "location", "updated_at").
		Updates(buyer).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Buyer{}).Error
}

func (r *repository) List(ctx context.Context) ([]models.Buyer, error) {
	var rows []models.Buyer
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountSales(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Sale{}).Where("buyer_id = ?", id).Count(&n).Error
	return n, err
}
