package main

import (
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

func newSalesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "sales", Aliases: []string{"sale"}, Short: "Record sales to buyers"}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), a, lf, lister[types.Sale]{
				remote:  a.api.ListSales,
				refresh: a.store.RefreshSales,
				coll:    a.store.Sales,
				headers: saleHeaders,
				rows:    saleRows,
			})
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.api.GetSale(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(s, saleHeaders, saleRows(*s))
		},
	}

	var cf lineFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Record a sale; the buyer's totals follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, err := parseDecimal("price", cf.price)
			if err != nil {
				return err
			}
			date, err := parseDate("date", cf.date)
			if err != nil {
				return err
			}
			s, err := a.store.CreateSale(cmd.Context(), types.SaleRequest{
				BuyerID:        cf.owner,
				BuyerName:      cf.party,
				AvocadoType:    cf.avocado,
				NumberOfFruits: cf.fruits,
				PricePerFruit:  price,
				SaleDate:       date,
			})
			if err != nil {
				return err
			}
			if err := a.render(s, saleHeaders, saleRows(*s)); err != nil {
				return err
			}
			a.buyerTotals(s.BuyerID)
			return nil
		},
	}
	cf.registerSale(create, true)

	var uf lineFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a sale; buyer and date stay fixed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetSale(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := types.SaleRequest{
				BuyerName:      current.BuyerName,
				AvocadoType:    current.AvocadoType,
				NumberOfFruits: current.NumberOfFruits,
				PricePerFruit:  current.PricePerFruit,
			}
			flags := cmd.Flags()
			if flags.Changed("buyer-name") {
				req.BuyerName = uf.party
			}
			if flags.Changed("type") {
				req.AvocadoType = uf.avocado
			}
			if flags.Changed("fruits") {
				req.NumberOfFruits = uf.fruits
			}
			if flags.Changed("price") {
				if req.PricePerFruit, err = parseDecimal("price", uf.price); err != nil {
					return err
				}
			}
			s, err := a.store.UpdateSale(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if err := a.render(s, saleHeaders, saleRows(*s)); err != nil {
				return err
			}
			a.buyerTotals(s.BuyerID)
			return nil
		},
	}
	uf.registerSale(update, false)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a sale and roll back the buyer's totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteSale(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("deleted sale %s\n", args[0])
			for _, b := range a.store.Buyers.Rows() {
				a.buyerTotals(b.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}

func (lf *lineFlags) registerSale(cmd *cobra.Command, creating bool) {
	f := cmd.Flags()
	if creating {
		f.StringVar(&lf.owner, "buyer", "", "buyer id")
		f.StringVar(&lf.date, "date", "", "sale date (YYYY-MM-DD or RFC3339, default now)")
	}
	f.StringVar(&lf.party, "buyer-name", "", "buyer name as written on the sale")
	f.StringVar(&lf.avocado, "type", "", "avocado type (Hass or Fuerte)")
	f.Int64Var(&lf.fruits, "fruits", 0, "number of fruits")
	f.StringVar(&lf.price, "price", "", "price per fruit")
}

func (a *app) buyerTotals(id string) {
	if b, ok := a.store.Buyers.Get(id); ok {
		a.printf("buyer %s now holds %d fruits worth %s\n", b.Name, b.TotalFruits, b.TotalMoney.StringFixed(2))
	}
}
