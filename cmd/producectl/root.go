package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/client"
)

type app struct {
	out     io.Writer
	baseURL string
	output  string
	timeout time.Duration
	retries int

	api   *client.Client
	store *client.Store
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "producectl",
		Short:         "Operate the avocado ledger from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.connect(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.baseURL, "base-url", "", "ledger API base url (default $AVOLEDGER_CLIENT_BASE_URL)")
	flags.StringVarP(&a.output, "output", "o", "table", "output format: table, json or yaml")
	flags.DurationVar(&a.timeout, "timeout", 0, "per-request timeout (default $AVOLEDGER_CLIENT_TIMEOUT)")
	flags.IntVar(&a.retries, "retries", -1, "retries for read requests (default $AVOLEDGER_CLIENT_MAX_RETRIES)")

	root.AddCommand(
		newFarmersCmd(a),
		newBuyersCmd(a),
		newOrdersCmd(a),
		newSalesCmd(a),
		newDashboardCmd(a),
	)
	return root
}

func (a *app) connect(cmd *cobra.Command) error {
	switch a.output {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := client.LoadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = a.retries
	}

	api, err := client.New(cfg)
	if err != nil {
		return err
	}
	a.api = api
	a.store = client.NewStore(api)
	return nil
}
