package api

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"wallet_balance/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidationDetails(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{
			name:   "missing amount",
			method: http.MethodPost,
			target: "/api/v1/wallets/1/operation",
			body:   `{"detail": [{"type": "missing", "loc": ["query", "query_balance"], "msg": "Field required", "input": null}]}`,
		},
		{
			name:   "amount over limit",
			method: http.MethodPost,
			target: "/api/v1/wallets/1/operation?query_balance=52000",
			body: `{"detail": [{"type": "less_than_equal", "loc": ["query", "query_balance"],
				"msg": "Input should be less than or equal to 50000", "input": "52000", "ctx": {"le": 50000}}]}`,
		},
		{
			name:   "wallet id over limit",
			method: http.MethodPost,
			target: "/api/v1/wallets/1007/operation?query_balance=26000",
			body: `{"detail": [{"type": "less_than_equal", "loc": ["path", "wallet_id"],
				"msg": "Input should be less than or equal to 1000", "input": "1007", "ctx": {"le": 1000}}]}`,
		},
		{
			name:   "wallet id zero",
			method: http.MethodDelete,
			target: "/api/v1/wallets/0/operation",
			body: `{"detail": [{"type": "greater_than", "loc": ["path", "wallet_id"],
				"msg": "Input should be greater than 0", "input": "0", "ctx": {"gt": 0}}]}`,
		},
		{
			name:   "zero amount on update",
			method: http.MethodPatch,
			target: "/api/v1/wallets/5/operation?query_balance=0",
			body: `{"detail": [{"type": "greater_than", "loc": ["query", "query_balance"],
				"msg": "Input should be greater than 0", "input": "0", "ctx": {"gt": 0}}]}`,
		},
		{
			name:   "path before query",
			method: http.MethodPost,
			target: "/api/v1/wallets/abc/operation?query_balance=53000",
			body: `{"detail": [
				{"type": "int_parsing", "loc": ["path", "wallet_id"],
				 "msg": "Input should be a valid integer, unable to parse string as an integer", "input": "abc"},
				{"type": "less_than_equal", "loc": ["query", "query_balance"],
				 "msg": "Input should be less than or equal to 50000", "input": "53000", "ctx": {"le": 50000}}]}`,
		},
		{
			name:   "unparsable amount",
			method: http.MethodPatch,
			target: "/api/v1/wallets/5/operation?query_balance=lots",
			body: `{"detail": [{"type": "int_parsing", "loc": ["query", "query_balance"],
				"msg": "Input should be a valid integer, unable to parse string as an integer", "input": "lots"}]}`,
		},
		{
			name:   "additional info too long",
			method: http.MethodPost,
			target: "/api/v1/wallets/2/operation?query_balance=5&additional_info=" + strings.Repeat("x", 256),
			body: `{"detail": [{"type": "string_too_long", "loc": ["query", "additional_info"],
				"msg": "String should have at most 255 characters", "input": "` + strings.Repeat("x", 256) + `", "ctx": {"max_length": 255}}]}`,
		},
		{
			name:   "repeated amount binds the last value",
			method: http.MethodPost,
			target: "/api/v1/wallets/5/operation?query_balance=5&query_balance=99999",
			body: `{"detail": [{"type": "less_than_equal", "loc": ["query", "query_balance"],
				"msg": "Input should be less than or equal to 50000", "input": "99999", "ctx": {"le": 50000}}]}`,
		},
		{
			name:   "get with bad id",
			method: http.MethodGet,
			target: "/api/v1/wallets/1001",
			body: `{"detail": [{"type": "less_than_equal", "loc": ["path", "wallet_id"],
				"msg": "Input should be less than or equal to 1000", "input": "1001", "ctx": {"le": 1000}}]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newLegacyServer(t), tc.method, tc.target)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRejectedRequestsDoNotWrite(t *testing.T) {
	srv := newLegacyServer(t)
	do(srv, http.MethodPost, "/api/v1/wallets/5/operation?query_balance=26000")

	assert.Equal(t, http.StatusUnprocessableEntity, do(srv, http.MethodPatch, "/api/v1/wallets/5/operation?query_balance=53000").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(srv, http.MethodPatch, "/api/v1/wallets/5/operation").Code)
	assert.Equal(t, "26000", do(srv, http.MethodGet, "/api/v1/wallets/5").Body.String())
}

func TestAmountAcceptsSurroundingSpaces(t *testing.T) {
	srv := newLegacyServer(t)

	assert.Equal(t, http.StatusOK, do(srv, http.MethodPost, "/api/v1/wallets/5/operation?query_balance=%205").Code)
	assert.Equal(t, http.StatusOK, do(srv, http.MethodPatch, "/api/v1/wallets/5/operation?query_balance=70%20").Code)
	assert.Equal(t, "70", do(srv, http.MethodGet, "/api/v1/wallets/5").Body.String())
}

func TestRepeatedAmountStoresLastValue(t *testing.T) {
	srv := newLegacyServer(t)

	assert.Equal(t, http.StatusOK, do(srv, http.MethodPost, "/api/v1/wallets/5/operation?query_balance=99999&query_balance=5").Code)
	assert.Equal(t, "5", do(srv, http.MethodGet, "/api/v1/wallets/5").Body.String())
}

func TestDeleteIgnoresQuery(t *testing.T) {
	srv := newLegacyServer(t)
	do(srv, http.MethodPost, "/api/v1/wallets/9/operation?query_balance=1")

	w := do(srv, http.MethodDelete, "/api/v1/wallets/9/operation?query_balance=abc")
	assert.Equal(t, http.StatusOK, w.Code)
}

// The binding tags must agree with the domain bounds
func TestBindingTagsMatchDomainBounds(t *testing.T) {
	tag := func(v any, field string) string {
		f, ok := reflect.TypeOf(v).FieldByName(field)
		assert.True(t, ok, field)
		return f.Tag.Get("binding")
	}

	assert.Contains(t, tag(walletPath{}, "WalletID"), "gt="+strconv.Itoa(domain.MinWalletID-1))
	assert.Contains(t, tag(walletPath{}, "WalletID"), "lte="+strconv.Itoa(domain.MaxWalletID))
	assert.Contains(t, tag(updateQuery{}, "QueryBalance"), "lte="+strconv.Itoa(domain.MaxBalance))
	assert.Contains(t, tag(depositQuery{}, "QueryBalance"), "lte="+strconv.Itoa(domain.MaxBalance))
	assert.Contains(t, tag(depositQuery{}, "AdditionalInfo"), "max="+strconv.Itoa(domain.MaxInfoLength))
}
