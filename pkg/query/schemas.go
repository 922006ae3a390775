package query

import (
	"strconv"

	"github.com/dmm341/avocado-ledger/pkg/types"
)

var FarmerSchema = Schema[types.Farmer]{
	Fields: []Field[types.Farmer]{
		{Name: "name", Value: func(f types.Farmer) Value { return String(f.Name) }},
		{Name: "contact", Value: func(f types.Farmer) Value { return String(f.Contact) }},
		{Name: "location", Value: func(f types.Farmer) Value { return String(f.Location) }},
		{Name: "avocado_type", Value: func(f types.Farmer) Value { return String(f.AvocadoType) }},
		{Name: "total_fruits", Value: func(f types.Farmer) Value { return Int(f.TotalFruits) }},
		{Name: "total_money", Value: func(f types.Farmer) Value { return Decimal(f.TotalMoney) }},
		{Name: "created_at", Value: func(f types.Farmer) Value { return Time(f.CreatedAt) }},
	},
	Display: func(f types.Farmer) []string {
		return []string{f.Name, f.Contact, f.Location, f.AvocadoType, strconv.FormatInt(f.TotalFruits, 10), f.TotalMoney.StringFixed(2)}
	},
}

var BuyerSchema = Schema[types.Buyer]{
	Fields: []Field[types.Buyer]{
		{Name: "name", Value: func(b types.Buyer) Value { return String(b.Name) }},
		{Name: "contact", Value: func(b types.Buyer) Value { return String(b.Contact) }},
		{Name: "location", Value: func(b types.Buyer) Value { return String(b.Location) }},
		{Name: "total_fruits", Value: func(b types.Buyer) Value { return Int(b.TotalFruits) }},
		{Name: "total_money", Value: func(b types.Buyer) Value { return Decimal(b.TotalMoney) }},
		{Name: "created_at", Value: func(b types.Buyer) Value { return Time(b.CreatedAt) }},
	},
	Display: func(b types.Buyer) []string {
		return []string{b.Name, b.Contact, b.Location, strconv.FormatInt(b.TotalFruits, 10), b.TotalMoney.StringFixed(2)}
	},
}

var OrderSchema = Schema[types.Order]{
	Fields: []Field[types.Order]{
		{Name: "customer_name", Value: func(o types.Order) Value { return String(o.CustomerName) }},
		{Name: "avocado_type", Value: func(o types.Order) Value { return String(o.AvocadoType) }},
		{Name: "number_of_fruits", Value: func(o types.Order) Value { return Int(o.NumberOfFruits) }},
		{Name: "price_per_fruit", Value: func(o types.Order) Value { return Decimal(o.PricePerFruit) }},
		{Name: "total_amount", Value: func(o types.Order) Value { return Decimal(o.TotalAmount) }},
		{Name: "order_date", Value: func(o types.Order) Value { return Time(o.OrderDate) }},
		{Name: "farmer_id", Value: func(o types.Order) Value { return String(o.FarmerID) }},
	},
	Display: func(o types.Order) []string {
		return []string{o.AvocadoType, o.CustomerName, strconv.FormatInt(o.NumberOfFruits, 10), o.TotalAmount.StringFixed(2)}
	},
}

var SaleSchema = Schema[types.Sale]{
	Fields: []Field[types.Sale]{
		{Name: "buyer_name", Value: func(s types.Sale) Value { return String(s.BuyerName) }},
		{Name: "avocado_type", Value: func(s types.Sale) Value { return String(s.AvocadoType) }},
		{Name: "number_of_fruits", Value: func(s types.Sale) Value { return Int(s.NumberOfFruits) }},
		{Name: "price_per_fruit", Value: func(s types.Sale) Value { return Decimal(s.PricePerFruit) }},
		{Name: "total_amount", Value: func(s types.Sale) Value { return Decimal(s.TotalAmount) }},
		{Name: "sale_date", Value: func(s types.Sale) Value { return Time(s.SaleDate) }},
		{Name: "buyer_id", Value: func(s types.Sale) Value { return String(s.BuyerID) }},
	},
	Display: func(s types.Sale) []string {
		return []string{s.BuyerName, s.AvocadoType, strconv.FormatInt(s.NumberOfFruits, 10), s.TotalAmount.StringFixed(2)}
	},
}
