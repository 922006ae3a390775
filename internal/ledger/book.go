package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
)

// ownerBook binds one side of the ledger (farmers+orders or buyers+sales) to
// the repository calls that read and write its aggregate.
type ownerBook struct {
	kind   enums.OwnerKind
	stored func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error)
	derive func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error)
	store  func(ctx context.Context, repo Repository, id uuid.UUID, totals Totals) error
}

var farmerBook = ownerBook{
	kind: enums.OwnerFarmer,
	stored: func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error) {
		farmer, err := repo.FindFarmer(ctx, id)
		if err != nil {
			return Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
		}
		if farmer == nil {
			return Totals{}, referenceError("farmer", id)
		}
		return Totals{Fruits: farmer.TotalFruits, Money: farmer.TotalMoney}, nil
	},
	derive: func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error) {
		orders, err := repo.ListOrdersByFarmer(ctx, id)
		if err != nil {
			return Totals{}, err
		}
		return Aggregate(id, orders), nil
	},
	store: func(ctx context.Context, repo Repository, id uuid.UUID, totals Totals) error {
		return repo.UpdateFarmerTotals(ctx, id, totals)
	},
}

var buyerBook = ownerBook{
	kind: enums.OwnerBuyer,
	stored: func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error) {
		buyer, err := repo.FindBuyer(ctx, id)
		if err != nil {
			return Totals{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
		}
		if buyer == nil {
			return Totals{}, referenceError("buyer", id)
		}
		return Totals{Fruits: buyer.TotalFruits, Money: buyer.TotalMoney}, nil
	},
	derive: func(ctx context.Context, repo Repository, id uuid.UUID) (Totals, error) {
		sales, err := repo.ListSalesByBuyer(ctx, id)
		if err != nil {
			return Totals{}, err
		}
		return Aggregate(id, sales), nil
	},
	store: func(ctx context.Context, repo Repository, id uuid.UUID, totals Totals) error {
		return repo.UpdateBuyerTotals(ctx, id, totals)
	},
}
