package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dmm341/avocado-ledger/pkg/client"
)

type listFlags struct {
	filter  string
	sort    string
	desc    bool
	page    int
	perPage int
	local   bool
}

func (lf *listFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&lf.filter, "filter", "q", "", "case-insensitive text filter")
	f.StringVar(&lf.sort, "sort", "", "sort field")
	f.BoolVar(&lf.desc, "desc", false, "sort descending")
	f.IntVar(&lf.page, "page", 0, "page number")
	f.IntVar(&lf.perPage, "per-page", 0, "rows per page")
	f.BoolVar(&lf.local, "local", false, "fetch everything and filter, sort and page locally")
}

func (lf listFlags) options() client.ListOptions {
	return client.ListOptions{Filter: lf.filter, Sort: lf.sort, Desc: lf.desc, Page: lf.page, PerPage: lf.perPage}
}

type lister[T any] struct {
	remote  func(context.Context, client.ListOptions) (*client.ListResult[T], error)
	refresh func(context.Context) (bool, error)
	coll    *client.Collection[T]
	headers []string
	rows    func(...T) [][]string
}

func runList[T any](ctx context.Context, a *app, lf listFlags, l lister[T]) error {
	var res *client.ListResult[T]
	if lf.local {
		page, err := localPage(ctx, lf, l)
		if err != nil {
			return err
		}
		res = page
	} else {
		page, err := l.remote(ctx, lf.options())
		if err != nil {
			return err
		}
		res = page
	}

	if err := a.render(res, l.headers, l.rows(res.Items...)); err != nil {
		return err
	}
	a.printf("page %d of %d (%d total)\n", res.Page, res.PageCount, res.Total)
	return nil
}

func localPage[T any](ctx context.Context, lf listFlags, l lister[T]) (*client.ListResult[T], error) {
	if _, err := l.refresh(ctx); err != nil {
		return nil, err
	}
	view := l.coll.View()
	view.SetFilter(lf.filter)
	if lf.sort != "" {
		if err := view.SortBy(lf.sort); err != nil {
			return nil, err
		}
		if lf.desc {
			_ = view.SortBy(lf.sort)
		}
	}
	if lf.perPage > 0 {
		view.SetPageSize(lf.perPage)
	}
	if lf.page > 0 {
		view.SetPage(lf.page)
	}
	p := view.Page()
	return &client.ListResult[T]{Items: p.Items, Total: p.Total, Page: p.Page, PageCount: p.PageCount}, nil
}

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return d, nil
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD (midnight UTC).
func parseDate(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--%s: %q is not a date", name, raw)
}
