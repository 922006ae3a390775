package main

import (
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

type lineFlags struct {
	owner   string
	party   string
	avocado string
	fruits  int64
	price   string
	date    string
}

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "orders", Aliases: []string{"order"}, Short: "Record purchases from farmers"}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), a, lf, lister[types.Order]{
				remote:  a.api.ListOrders,
				refresh: a.store.RefreshOrders,
				coll:    a.store.Orders,
				headers: orderHeaders,
				rows:    orderRows,
			})
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.api.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(o, orderHeaders, orderRows(*o))
		},
	}

	var cf lineFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Record an order; the farmer's totals follow",
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
			o, err := a.store.CreateOrder(cmd.Context(), types.OrderRequest{
				FarmerID:       cf.owner,
				CustomerName:   cf.party,
				AvocadoType:    cf.avocado,
				NumberOfFruits: cf.fruits,
				PricePerFruit:  price,
				OrderDate:      date,
			})
			if err != nil {
				return err
			}
			if err := a.render(o, orderHeaders, orderRows(*o)); err != nil {
				return err
			}
			a.farmerTotals(o.FarmerID)
			return nil
		},
	}
	cf.registerOrder(create, true)

	var uf lineFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit an order; farmer and date stay fixed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := types.OrderRequest{
				CustomerName:   current.CustomerName,
				AvocadoType:    current.AvocadoType,
				NumberOfFruits: current.NumberOfFruits,
				PricePerFruit:  current.PricePerFruit,
			}
			flags := cmd.Flags()
			if flags.Changed("customer") {
				req.CustomerName = uf.party
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
			o, err := a.store.UpdateOrder(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if err := a.render(o, orderHeaders, orderRows(*o)); err != nil {
				return err
			}
			a.farmerTotals(o.FarmerID)
			return nil
		},
	}
	uf.registerOrder(update, false)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an order and roll back the farmer's totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteOrder(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("deleted order %s\n", args[0])
			// the store only holds the farmer it re-read after the delete
			for _, f := range a.store.Farmers.Rows() {
				a.farmerTotals(f.ID)
			}
			return nil
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}

func (lf *lineFlags) registerOrder(cmd *cobra.Command, creating bool) {
	f := cmd.Flags()
	if creating {
		f.StringVar(&lf.owner, "farmer", "", "farmer id")
		f.StringVar(&lf.date, "date", "", "order date (YYYY-MM-DD or RFC3339, default now)")
	}
	f.StringVar(&lf.party, "customer", "", "customer name")
	f.StringVar(&lf.avocado, "type", "", "avocado type (Hass or Fuerte)")
	f.Int64Var(&lf.fruits, "fruits", 0, "number of fruits")
	f.StringVar(&lf.price, "price", "", "price per fruit")
}

func (a *app) farmerTotals(id string) {
	if f, ok := a.store.Farmers.Get(id); ok {
		a.printf("farmer %s now holds %d fruits worth %s\n", f.Name, f.TotalFruits, f.TotalMoney.StringFixed(2))
	}
}
