package controllers

import (
	"net/http"

	"github.com/dmm341/avocado-ledger/api/responses"
	"github.com/dmm341/avocado-ledger/api/validators"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func saleInput(req types.SaleRequest) (ledger.SaleInput, error) {
	buyerID, err := parseOptionalID(req.BuyerID, "buyer_id")
	if err != nil {
		return ledger.SaleInput{}, err
	}
	return ledger.SaleInput{
		BuyerID:        buyerID,
		BuyerName:      req.BuyerName,
		AvocadoType:    req.AvocadoType,
		NumberOfFruits: req.NumberOfFruits,
		PricePerFruit:  req.PricePerFruit,
		TotalAmount:    req.TotalAmount,
		SaleDate:       req.SaleDate,
	}, nil
}

func decodeSale(w http.ResponseWriter, r *http.Request) (ledger.SaleInput, error) {
	var req types.SaleRequest
	if err := validators.DecodeJSONBody(w, r, &req); err != nil {
		return ledger.SaleInput{}, err
	}
	return saleInput(req)
}

func SaleList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListSales(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeList(w, r, logg, query.SaleSchema, mapAll(rows, saleDTO))
	}
}

func SaleGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.GetSale(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saleDTO(*sale))
	}
}

// SaleCreate stores the sale and the buyer's recomputed totals together.
func SaleCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeSale(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.CreateSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, saleDTO(*sale))
	}
}

func SaleUpdate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeSale(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.UpdateSale(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saleDTO(*sale))
	}
}

func SaleDelete(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSale(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
