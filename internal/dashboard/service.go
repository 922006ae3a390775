// Package dashboard reports ledger-wide totals computed from the stored owner aggregates.
package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

// TopFarmerCount is how many farmers the summary ranks.
const TopFarmerCount = 5

type Service interface {
	Summary(ctx context.Context) (*types.DashboardSummary, error)
	Analytics(ctx context.Context) ([]types.AnalyticsPoint, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Summary(ctx context.Context) (*types.DashboardSummary, error) {
	farmers, err := s.repo.Farmers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmers")
	}
	buyers, err := s.repo.Buyers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyers")
	}

	summary := &types.DashboardSummary{
		TotalFarmers: int64(len(farmers)),
		TotalBuyers:  int64(len(buyers)),
		FarmerMoney:  decimal.Zero,
		BuyerMoney:   decimal.Zero,
		TopFarmers:   []types.TopFarmer{},
	}
	top := make([]types.TopFarmer, 0, len(farmers))
	for _, f := range farmers {
		summary.FarmerFruits += f.TotalFruits
		summary.FarmerMoney = summary.FarmerMoney.Add(f.TotalMoney)
		top = append(top, types.TopFarmer{
			ID:          f.ID.String(),
			Name:        f.Name,
			TotalFruits: f.TotalFruits,
			TotalMoney:  f.TotalMoney,
		})
	}
	for _, b := range buyers {
		summary.BuyerFruits += b.TotalFruits
		summary.BuyerMoney = summary.BuyerMoney.Add(b.TotalMoney)
	}
	summary.StockBalance = summary.FarmerFruits - summary.BuyerFruits

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].TotalFruits != top[j].TotalFruits {
			return top[i].TotalFruits > top[j].TotalFruits
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > TopFarmerCount {
		top = top[:TopFarmerCount]
	}
	summary.TopFarmers = top

	if summary.StockBalance < 0 {
		s.logg.Warn(s.logg.WithField(ctx, "stock_balance", summary.StockBalance), "more fruit sold than bought")
	}
	return summary, nil
}

// Analytics returns one point per farmer, ordered by name.
func (s *service) Analytics(ctx context.Context) ([]types.AnalyticsPoint, error) {
	farmers, err := s.repo.Farmers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmers")
	}
	points := make([]types.AnalyticsPoint, 0, len(farmers))
	for _, f := range farmers {
		points = append(points, types.AnalyticsPoint{
			Name:   f.Name,
			Fruits: f.TotalFruits,
			Money:  f.TotalMoney,
		})
	}
	return points, nil
}
