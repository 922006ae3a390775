package main

import (
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

type ownerFlags struct {
	name     string
	contact  string
	location string
	avocado  string
}

func (of *ownerFlags) register(cmd *cobra.Command, withType bool) {
	f := cmd.Flags()
	f.StringVar(&of.name, "name", "", "name")
	f.StringVar(&of.contact, "contact", "", "contact details")
	f.StringVar(&of.location, "location", "", "location")
	if withType {
		f.StringVar(&of.avocado, "type", "", "avocado type (Hass or Fuerte)")
	}
}

func newFarmersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "farmers", Aliases: []string{"farmer"}, Short: "Manage farmers"}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List farmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), a, lf, lister[types.Farmer]{
				remote:  a.api.ListFarmers,
				refresh: a.store.RefreshFarmers,
				coll:    a.store.Farmers,
				headers: farmerHeaders,
				rows:    farmerRows,
			})
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one farmer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.api.GetFarmer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(f, farmerHeaders, farmerRows(*f))
		},
	}

	var cf ownerFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a farmer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.store.CreateFarmer(cmd.Context(), types.FarmerRequest{
				Name:        cf.name,
				Contact:     cf.contact,
				Location:    cf.location,
				AvocadoType: cf.avocado,
			})
			if err != nil {
				return err
			}
			return a.render(f, farmerHeaders, farmerRows(*f))
		},
	}
	cf.register(create, true)

	var uf ownerFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a farmer's details; totals are derived and cannot be set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetFarmer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := types.FarmerRequest{
				Name:        current.Name,
				Contact:     current.Contact,
				Location:    current.Location,
				AvocadoType: current.AvocadoType,
			}
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
			if flags.Changed("type") {
				req.AvocadoType = uf.avocado
			}
			f, err := a.store.UpdateFarmer(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.render(f, farmerHeaders, farmerRows(*f))
		},
	}
	uf.register(update, true)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a farmer without orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteFarmer(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("deleted farmer %s\n", args[0])
			return nil
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile ID",
		Short: "Recompute a farmer's totals from its orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.ReconcileFarmer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(res, reconcileHeaders, reconcileRows(*res))
		},
	}

	cmd.AddCommand(list, get, create, update, del, reconcile)
	return cmd
}
