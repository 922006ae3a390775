package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/query"
)

const (
	maxPerPage   = 500
	maxFilterLen = 120
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseListParams reads q, sort, dir, page and per_page. Paged reports whether
// any windowing was requested; without it a list endpoint returns every row.
func ParseListParams(r *http.Request, sortable []string) (params query.Params, paged bool, err error) {
	values := r.URL.Query()
	params.Filter = SanitizeString(values.Get("q"), maxFilterLen)

	params.Sort = strings.TrimSpace(values.Get("sort"))
	if params.Sort != "" && !contains(sortable, params.Sort) {
		return params, false, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort field").
			WithDetails(map[string]any{"field": "sort", "allowed": sortable})
	}

	switch dir := query.Direction(strings.ToLower(strings.TrimSpace(values.Get("dir")))); dir {
	case "", query.Asc, query.Desc:
		params.Dir = dir
	default:
		return params, false, pkgerrors.New(pkgerrors.CodeValidation, "dir must be asc or desc").
			WithDetails(map[string]any{"field": "dir"})
	}

	if params.Page, err = ParseQueryInt(r, "page", 0, 1, 1<<20); err != nil {
		return params, false, err
	}
	if params.PageSize, err = ParseQueryInt(r, "per_page", 0, 1, maxPerPage); err != nil {
		return params, false, err
	}
	paged = params.Page > 0 || params.PageSize > 0
	return params, paged, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
