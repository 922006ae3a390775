package farmers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
)

// Repository manages persistence for farmers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, farmer *models.Farmer) error
	Find(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
	UpdateProfile(ctx context.Context, farmer *models.Farmer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Farmer, error)
	CountOrders(ctx context.Context, id uuid.UUID) (int64, error)
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

func (r *repository) Create(ctx context.Context, farmer *models.Farmer) error {
	return r.db.WithContext(ctx).Create(farmer).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	var farmer models.Farmer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&farmer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &farmer, nil
}

// UpdateProfile writes the descriptive columns only; totals belong to the ledger.
func (r *repository) UpdateProfile(ctx context.Context, farmer *models.Farmer) error {
	return r.db.WithContext(ctx).Model(farmer).
		Select("name", "contact", "location", "avocado_type", "updated_at").
		Updates(farmer).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Farmer{}).Error
}

func (r *repository) List(ctx context.Context) ([]models.Farmer, error) {
	var rows []models.Farmer
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("farmer_id = ?", id).Count(&n).Error
	return n, err
}
