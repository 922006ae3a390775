package controllers

import (
	"net/http"

	"github.com/dmm341/avocado-ledger/api/responses"
	"github.com/dmm341/avocado-ledger/api/validators"
	"github.com/dmm341/avocado-ledger/internal/farmers"
	"github.com/dmm341/avocado-ledger/internal/ledger"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func farmerInput(req types.FarmerRequest) farmers.Input {
	return farmers.Input{
		Name:        req.Name,
		Contact:     req.Contact,
		Location:    req.Location,
		AvocadoType: req.AvocadoType,
		TotalFruits: req.TotalFruits,
		TotalMoney:  req.TotalMoney,
	}
}

func FarmerList(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeList(w, r, logg, query.FarmerSchema, mapAll(rows, farmerDTO))
	}
}

func FarmerGet(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		farmer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, farmerDTO(*farmer))
	}
}

func FarmerCreate(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.FarmerRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		farmer, err := svc.Create(r.Context(), farmerInput(req))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, farmerDTO(*farmer))
	}
}

// FarmerUpdate edits the profile. Supplying totals that differ from the
// derived values is rejected by the service.
func FarmerUpdate(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req types.FarmerRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		farmer, err := svc.Update(r.Context(), id, farmerInput(req))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, farmerDTO(*farmer))
	}
}

func FarmerDelete(svc farmers.Service, logg *logger.Logger) http.HandlerFunc {
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

// FarmerReconcile recomputes one farmer's totals from its orders on demand.
func FarmerReconcile(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithOwner(r.Context(), "farmer", id.String())
		res, err := svc.ReconcileFarmer(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, reconcileDTO(res))
	}
}
