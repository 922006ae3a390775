package main

import (
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

func newBuyersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "buyers", Aliases: []string{"buyer"}, Short: "Manage buyers"}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List buyers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), a, lf, lister[types.Buyer]{
				remote:  a.api.ListBuyers,
				refresh: a.store.RefreshBuyers,
				coll:    a.store.Buyers,
				headers: buyerHeaders,
				rows:    buyerRows,
			})
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one buyer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.api.GetBuyer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(b, buyerHeaders, buyerRows(*b))
		},
	}

	var cf ownerFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a buyer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.store.CreateBuyer(cmd.Context(), types.BuyerRequest{
				Name:     cf.name,
				Contact:  cf.contact,
				Location: cf.location,
			})
			if err != nil {
				return err
			}
			return a.render(b, buyerHeaders, buyerRows(*b))
		},
	}
	cf.register(create, false)

	var uf ownerFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a buyer's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetBuyer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := types.BuyerRequest{Name: current.Name, Contact: current.Contact, Location: current.Location}
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = uf.name
			}
			if flags.Changed("contact") {
				req.Contact = uf.contact
			}
			if flags.Changed("location") {
				req.Location = uf.location
			}
			b, err := a.store.UpdateBuyer(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.render(b, buyerHeaders, buyerRows(*b))
		},
	}
	uf.register(update, false)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a buyer without sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteBuyer(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("deleted buyer %s\n", args[0])
			return nil
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile ID",
		Short: "Recompute a buyer's totals from its sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.ReconcileBuyer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(res, reconcileHeaders, reconcileRows(*res))
		},
	}

	cmd.AddCommand(list, get, create, update, del, reconcile)
	return cmd
}
