package buyers

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

// Service manages buyer profiles; sales drive the aggregate columns.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Buyer, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Buyer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Buyer, error)
	List(ctx context.Context) ([]models.Buyer, error)
}

type Input struct {
	Name        string
	Contact     string
	Location    string
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
		return nil, fmt.Errorf("buyers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Buyer, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}
	if err := checkDerived(input, 0, decimal.Zero); err != nil {
		return nil, err
	}
	buyer := &models.Buyer{
		Name:       input.Name,
		Contact:    input.Contact,
		Location:   input.Location,
		TotalMoney: decimal.Zero,
	}
	if err := s.repo.Create(ctx, buyer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create buyer")
	}
	s.logg.Info(s.logg.WithOwner(ctx, string(enums.OwnerBuyer), buyer.ID.String()), "buyer created")
	return buyer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Buyer, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}
	var buyer *models.Buyer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		if err := checkDerived(input, existing.TotalFruits, existing.TotalMoney); err != nil {
			return err
		}
		existing.Name = input.Name
		existing.Contact = input.Contact
		existing.Location = input.Location
		if err := repo.UpdateProfile(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update buyer")
		}
		buyer = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buyer, nil
}

// Delete refuses to remove a buyer that still has sales.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		sales, err := repo.CountSales(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count buyer sales")
		}
		if sales > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("buyer has %d sales; delete them first", sales)).
				WithDetails(map[string]any{"sales": sales})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete buyer")
		}
		s.logg.Info(s.logg.WithOwner(ctx, string(enums.OwnerBuyer), id.String()), "buyer deleted")
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	buyer, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
	}
	if buyer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
	}
	return buyer, nil
}

func (s *service) List(ctx context.Context) ([]models.Buyer, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyers")
	}
	return rows, nil
}

func normalize(input *Input) error {
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
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func checkDerived(input Input, fruits int64, money decimal.Decimal) error {
	details := map[string]string{}
	if input.TotalFruits != nil && *input.TotalFruits != fruits {
		details["total_fruits"] = fmt.Sprintf("is derived from sales; expected %d", fruits)
	}
	if input.TotalMoney != nil && !input.TotalMoney.Equal(money) {
		details["total_money"] = fmt.Sprintf("is derived from sales; expected %s", money.StringFixed(2))
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "aggregate fields are derived and cannot be edited").WithDetails(details)
	}
	return nil
}
