package controllers

import (
	"net/http"

	"github.com/dmm341/avocado-ledger/api/responses"
	"github.com/dmm341/avocado-ledger/api/validators"
	"github.com/dmm341/avocado-ledger/internal/buyers"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func buyerInput(req types.BuyerRequest) buyers.Input {
	return buyers.Input{
		Name:        req.Name,
		Contact:     req.Contact,
		Location:    req.Location,
		TotalFruits: req.TotalFruits,
		TotalMoney:  req.TotalMoney,
	}
}

func BuyerList(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeList(w, r, logg, query.BuyerSchema, mapAll(rows, buyerDTO))
	}
}

func BuyerGet(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buyerDTO(*buyer))
	}
}

func BuyerCreate(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BuyerRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyer, err := svc.Create(r.Context(), buyerInput(req))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buyerDTO(*buyer))
	}
}

// BuyerUpdate edits the profile. Supplying totals that differ from the
// derived values is rejected by the service.
func BuyerUpdate(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req types.BuyerRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		buyer, err := svc.Update(r.Context(), id, buyerInput(req))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buyerDTO(*buyer))
	}
}

func BuyerDelete(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// BuyerReconcile recomputes one buyer's totals from its sales on demand.
func BuyerReconcile(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithOwner(r.Context(), "buyer", id.String())
		res, err := svc.ReconcileBuyer(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, reconcileDTO(res))
	}
}
