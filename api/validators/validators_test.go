package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/query"
	"github.com/dmm341/avocado-ledger/pkg/types"
)

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"number_of_fruits":10,"price_per_fruit":1.5,"customer_name":"Kiosk"}`},
		{name: "unknown field", body: `{"number_of_fruits":10,"price_per_fruit":1.5,"discount":3}`, wantErr: true},
		{name: "malformed", body: `{"number_of_fruits":`, wantErr: true},
		{name: "zero fruits", body: `{"number_of_fruits":0,"price_per_fruit":1.5}`, wantErr: true, field: "number_of_fruits"},
		{name: "negative price", body: `{"number_of_fruits":3,"price_per_fruit":-1}`, wantErr: true, field: "price_per_fruit"},
		{name: "bad avocado type", body: `{"number_of_fruits":3,"price_per_fruit":1,"avocado_type":"Reed"}`, wantErr: true, field: "avocado_type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tc.body))
			var dest types.OrderRequest
			err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
			if tc.field != "" {
				details, ok := typed.Details().(map[string]string)
				require.True(t, ok)
				assert.Contains(t, details, tc.field)
			}
		})
	}
}

func TestParseListParams(t *testing.T) {
	sortable := query.OrderSchema.FieldNames()

	req := httptest.NewRequest(http.MethodGet, "/orders?q=%20hass%20&sort=total_amount&dir=DESC&page=2&per_page=5", nil)
	params, paged, err := ParseListParams(req, sortable)
	require.NoError(t, err)
	assert.True(t, paged)
	assert.Equal(t, query.Params{Filter: "hass", Sort: "total_amount", Dir: query.Desc, Page: 2, PageSize: 5}, params)

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	_, paged, err = ParseListParams(req, sortable)
	require.NoError(t, err)
	assert.False(t, paged)

	for _, raw := range []string{"sort=secret", "dir=up", "page=0", "per_page=abc", "per_page=100000"} {
		req = httptest.NewRequest(http.MethodGet, "/orders?"+raw, nil)
		_, _, err = ParseListParams(req, sortable)
		require.Error(t, err, raw)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
}
