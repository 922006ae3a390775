package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmm341/avocado-ledger/api/responses"
	"github.com/dmm341/avocado-ledger/api/validators"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/query"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]string{"id": "must be a valid id"})
	}
	return id, nil
}

func parseOptionalID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be a valid id").WithDetails(map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

// writeList applies q/sort/dir/page/per_page to rows. Without page or per_page
// every matching row is returned in one window.
func writeList[T any](w http.ResponseWriter, r *http.Request, logg *logger.Logger, schema query.Schema[T], rows []T) {
	params, paged, err := validators.ParseListParams(r, schema.FieldNames())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	if !paged {
		params.Page = 1
		params.PageSize = len(rows)
	}
	page, err := query.Apply(schema, rows, params)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
		return
	}
	items := page.Items
	if items == nil {
		items = []T{}
	}
	responses.WritePage(w, items, page.Total, page.Page, page.PageCount)
}
