package controllers

import (
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func farmerDTO(m models.Farmer) types.Farmer {
	return types.Farmer{
		ID:          m.ID.String(),
		Name:        m.Name,
		Contact:     m.Contact,
		Location:    m.Location,
		AvocadoType: string(m.AvocadoType),
		TotalFruits: m.TotalFruits,
		TotalMoney:  m.TotalMoney,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func buyerDTO(m models.Buyer) types.Buyer {
	return types.Buyer{
		ID:          m.ID.String(),
		Name:        m.Name,
		Contact:     m.Contact,
		Location:    m.Location,
		TotalFruits: m.TotalFruits,
		TotalMoney:  m.TotalMoney,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func orderDTO(m models.Order) types.Order {
	return types.Order{
		ID:             m.ID.String(),
		FarmerID:       m.FarmerID.String(),
		CustomerName:   m.CustomerName,
		AvocadoType:    string(m.AvocadoType),
		NumberOfFruits: m.NumberOfFruits,
		PricePerFruit:  m.PricePerFruit,
		TotalAmount:    m.TotalAmount,
		OrderDate:      m.OrderDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func saleDTO(m models.Sale) types.Sale {
	return types.Sale{
		ID:             m.ID.String(),
		BuyerID:        m.BuyerID.String(),
		BuyerName:      m.BuyerName,
		AvocadoType:    string(m.AvocadoType),
		NumberOfFruits: m.NumberOfFruits,
		PricePerFruit:  m.PricePerFruit,
		TotalAmount:    m.TotalAmount,
		SaleDate:       m.SaleDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func mapAll[M any, D any](rows []M, fn func(M) D) []D {
	out := make([]D, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

func reconcileDTO(res *ledger.ReconcileResult) types.ReconcileResult {
	return types.ReconcileResult{
		OwnerKind: string(res.OwnerKind),
		OwnerID:   res.OwnerID.String(),
		Before:    types.Totals{TotalFruits: res.Before.Fruits, TotalMoney: res.Before.Money},
		After:     types.Totals{TotalFruits: res.After.Fruits, TotalMoney: res.After.Money},
		Drifted:   res.Drifted,
	}
}
