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

func orderInput(req types.OrderRequest) (ledger.OrderInput, error) {
	farmerID, err := parseOptionalID(req.FarmerID, "farmer_id")
	if err != nil {
		return ledger.OrderInput{}, err
	}
	return ledger.OrderInput{
		FarmerID:       farmerID,
		CustomerName:   req.CustomerName,
		AvocadoType:    req.AvocadoType,
		NumberOfFruits: req.NumberOfFruits,
		PricePerFruit:  req.PricePerFruit,
		TotalAmount:    req.TotalAmount,
		OrderDate:      req.OrderDate,
	}, nil
}

func decodeOrder(w http.ResponseWriter, r *http.Request) (ledger.OrderInput, error) {
	var req types.OrderRequest
	if err := validators.DecodeJSONBody(w, r, &req); err != nil {
		return ledger.OrderInput{}, err
	}
	return orderInput(req)
}

func OrderList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeList(w, r, logg, query.OrderSchema, mapAll(rows, orderDTO))
	}
}

func OrderGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderDTO(*order))
	}
}

// OrderCreate stores the order and the farmer's recomputed totals together.
func OrderCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeOrder(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderDTO(*order))
	}
}

func OrderUpdate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeOrder(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateOrder(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderDTO(*order))
	}
}

func OrderDelete(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
