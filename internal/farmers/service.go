package farmers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
)

const maxFieldLen = 120

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages farmer profiles. The aggregate columns are never written here.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Farmer, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Farmer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
	List(ctx context.Context) ([]models.Farmer, error)
}

// Input is a farmer profile. TotalFruits/TotalMoney are accepted only to be
// checked against the derived values.
type Input struct {
	Name        string
	Contact     string
	Location    string
	AvocadoType string
	TotalFruits *int64
	TotalMoney  *decimal.Decimal
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("farmers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Farmer, error) {
	avocado, err := normalize(&input)
	if err != nil {
		return nil, err
	}
	if err := checkDerived(input, 0, decimal.Zero, "a new farmer starts at 0"); err != nil {
		return nil, err
	}
	farmer := &models.Farmer{
		Name:        input.Name,
		Contact:     input.Contact,
		Location:    input.Location,
		AvocadoType: avocado,
		TotalMoney:  decimal.Zero,
	}
	if err := s.repo.Create(ctx, farmer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create farmer")
	}
	s.logg.Info(s.logg.WithOwner(ctx, string(enums.OwnerFarmer), farmer.ID.String()), "farmer created")
	return farmer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Farmer, error) {
	avocado, err := normalize(&input)
	if err != nil {
		return nil, err
	}
	var farmer *models.Farmer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		if err := checkDerived(input, existing.TotalFruits, existing.TotalMoney, "totals are derived from orders"); err != nil {
			return err
		}
		existing.Name = input.Name
		existing.Contact = input.Contact
		existing.Location = input.Location
		if strings.TrimSpace(input.AvocadoType) != "" {
			existing.AvocadoType = avocado
		}
		if err := repo.UpdateProfile(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update farmer")
		}
		farmer = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return farmer, nil
}

// Delete refuses to remove a farmer that still has orders.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		orders, err := repo.CountOrders(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count farmer orders")
		}
		if orders > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("farmer has %d orders; delete them first", orders)).
				WithDetails(map[string]any{"orders": orders})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete farmer")
		}
		s.logg.Info(s.logg.WithOwner(ctx, string(enums.OwnerFarmer), id.String()), "farmer deleted")
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	farmer, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
	}
	if farmer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
	}
	return farmer, nil
}

func (s *service) List(ctx context.Context) ([]models.Farmer, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list farmers")
	}
	return rows, nil
}

func normalize(input *Input) (enums.AvocadoType, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Contact = strings.TrimSpace(input.Contact)
	input.Location = strings.TrimSpace(input.Location)
	details := map[string]string{}
	if input.Name == "" {
		details["name"] = "is required"
	}
	for field, value := range map[string]string{"name": input.Name, "contact": input.Contact, "location": input.Location} {
		if len(value) > maxFieldLen {
			details[field] = fmt.Sprintf("must be at most %d", maxFieldLen)
		}
	}
	avocado, err := enums.ParseAvocadoType(input.AvocadoType)
	if err != nil {
		details["avocado_type"] = "must be one of [Hass Fuerte]"
	}
	if len(details) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return avocado, nil
}

// checkDerived rejects a supplied aggregate that differs from the stored one.
func checkDerived(input Input, fruits int64, money decimal.Decimal, reason string) error {
	details := map[string]string{}
	if input.TotalFruits != nil && *input.TotalFruits != fruits {
		details["total_fruits"] = fmt.Sprintf("cannot be edited directly (%s); expected %d", reason, fruits)
	}
	if input.TotalMoney != nil && !input.TotalMoney.Equal(money) {
		details["total_money"] = fmt.Sprintf("cannot be edited directly (%s); expected %s", reason, money.StringFixed(2))
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "aggregate fields are derived and cannot be edited").WithDetails(details)
	}
	return nil
}
