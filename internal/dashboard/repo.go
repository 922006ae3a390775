package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/internal/repo"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
)

// Repository reads the stored owner aggregates the dashboard reports on.
type Repository interface {
	Farmers(ctx context.Context) ([]models.Farmer, error)
	Buyers(ctx context.Context) ([]models.Buyer, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Farmers(ctx context.Context) ([]models.Farmer, error) {
	var rows []models.Farmer
	err := r.DB(ctx).
		Select("id", "name", "total_fruits", "total_money", "created_at").
		Order("name ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Buyers(ctx context.Context) ([]models.Buyer, error) {
	var rows []models.Buyer
	err := r.DB(ctx).
		Select("id", "name", "total_fruits", "total_money").
		Find(&rows).Error
	return rows, err
}
