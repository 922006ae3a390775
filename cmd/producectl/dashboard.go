package main

import (
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

func newDashboardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "dashboard", Short: "Ledger-wide figures"}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Totals, stock balance and the top farmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.api.DashboardSummary(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"farmers", count(s.TotalFarmers)},
				{"buyers", count(s.TotalBuyers)},
				{"fruits bought", count(s.FarmerFruits)},
				{"money paid", s.FarmerMoney.StringFixed(2)},
				{"fruits sold", count(s.BuyerFruits)},
				{"money received", s.BuyerMoney.StringFixed(2)},
				{"stock balance", count(s.StockBalance)},
			}
			for i, f := range s.TopFarmers {
				rows = append(rows, []string{"top " + count(int64(i+1)), f.Name + " (" + count(f.TotalFruits) + ")"})
			}
			return a.render(s, []string{"METRIC", "VALUE"}, rows)
		},
	}

	analytics := &cobra.Command{
		Use:   "analytics",
		Short: "Per-farmer fruit and money series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := a.api.DashboardAnalytics(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(points, []string{"FARMER", "FRUITS", "MONEY"}, analyticsRows(points))
		},
	}

	cmd.AddCommand(summary, analytics)
	return cmd
}

func analyticsRows(points []types.AnalyticsPoint) [][]string {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Name, count(p.Fruits), p.Money.StringFixed(2)})
	}
	return rows
}
