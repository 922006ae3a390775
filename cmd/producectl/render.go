package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"

	dateLayout = "2006-01-02"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// render prints v as json or yaml, or as a table built from headers and rows.
func (a *app) render(v any, headers []string, rows [][]string) error {
	switch a.output {
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(a.out, t.Render())
	return err
}

func (a *app) printf(format string, args ...any) {
	if a.output != formatTable {
		return
	}
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func count(n int64) string { return strconv.FormatInt(n, 10) }

var farmerHeaders = []string{"ID", "NAME", "CONTACT", "LOCATION", "TYPE", "FRUITS", "MONEY"}

func farmerRows(farmers ...types.Farmer) [][]string {
	rows := make([][]string, 0, len(farmers))
	for _, f := range farmers {
		rows = append(rows, []string{f.ID, f.Name, f.Contact, f.Location, f.AvocadoType, count(f.TotalFruits), f.TotalMoney.StringFixed(2)})
	}
	return rows
}

var buyerHeaders = []string{"ID", "NAME", "CONTACT", "LOCATION", "FRUITS", "MONEY"}

func buyerRows(buyers ...types.Buyer) [][]string {
	rows := make([][]string, 0, len(buyers))
	for _, b := range buyers {
		rows = append(rows, []string{b.ID, b.Name, b.Contact, b.Location, count(b.TotalFruits), b.TotalMoney.StringFixed(2)})
	}
	return rows
}

var orderHeaders = []string{"ID", "FARMER", "CUSTOMER", "TYPE", "FRUITS", "PRICE", "TOTAL", "DATE"}

func orderRows(orders ...types.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID, o.FarmerID, o.CustomerName, o.AvocadoType, count(o.NumberOfFruits),
			o.PricePerFruit.StringFixed(2), o.TotalAmount.StringFixed(2), o.OrderDate.Format(dateLayout),
		})
	}
	return rows
}

var saleHeaders = []string{"ID", "BUYER", "BUYER NAME", "TYPE", "FRUITS", "PRICE", "TOTAL", "DATE"}

func saleRows(sales ...types.Sale) [][]string {
	rows := make([][]string, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []string{
			s.ID, s.BuyerID, s.BuyerName, s.AvocadoType, count(s.NumberOfFruits),
			s.PricePerFruit.StringFixed(2), s.TotalAmount.StringFixed(2), s.SaleDate.Format(dateLayout),
		})
	}
	return rows
}

var reconcileHeaders = []string{"OWNER", "ID", "FRUITS BEFORE", "MONEY BEFORE", "FRUITS AFTER", "MONEY AFTER", "DRIFTED"}

func reconcileRows(r types.ReconcileResult) [][]string {
	return [][]string{{
		r.OwnerKind, r.OwnerID,
		count(r.Before.TotalFruits), r.Before.TotalMoney.StringFixed(2),
		count(r.After.TotalFruits), r.After.TotalMoney.StringFixed(2),
		strconv.FormatBool(r.Drifted),
	}}
}
