package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	f := newAPIFixture(t)
	headers := map[string]string{IdempotencyKeyHeader: "key-1"}

	first := f.do(t, http.MethodPost, "/v1/orders", validOrderBody(0), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := f.do(t, http.MethodPost, "/v1/orders", validOrderBody(0), headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// Повтор не создаёт второй заказ.
	rec := f.do(t, http.MethodGet, "/v1/customers/cust-1/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []orderResponse `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 1)
}

func TestIdempotency_HashMismatchConflicts(t *testing.T) {
	f := newAPIFixture(t)
	headers := map[string]string{IdempotencyKeyHeader: "key-2"}

	first := f.do(t, http.MethodPost, "/v1/orders", validOrderBody(0), headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := f.do(t, http.MethodPost, "/v1/orders", validOrderBody(60000), headers)
	require.Equal(t, http.StatusConflict, second.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "idempotency_key_conflict", resp.Code)
}

func TestIdempotency_ReplaysFailedResponse(t *testing.T) {
	f := newAPIFixture(t)
	headers := map[string]string{IdempotencyKeyHeader: "key-3"}

	body := validOrderBody(0)
	body["customer_id"] = "ghost"

	first := f.do(t, http.MethodPost, "/v1/orders", body, headers)
	require.Equal(t, http.StatusNotFound, first.Code)

	second := f.do(t, http.MethodPost, "/v1/orders", body, headers)
	require.Equal(t, http.StatusNotFound, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_MissingHeaderPassesThrough(t *testing.T) {
	f := newAPIFixture(t)

	for i := 0; i < 2; i++ {
		rec := f.do(t, http.MethodPost, "/v1/orders", validOrderBody(0), nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/v1/customers/cust-1/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []orderResponse `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 2)
}

func TestIdempotency_GetRequestsIgnored(t *testing.T) {
	f := newAPIFixture(t)
	orderID := createOrderViaAPI(t, f, 0)

	headers := map[string]string{IdempotencyKeyHeader: "key-read"}
	first := f.do(t, http.MethodGet, "/v1/orders/"+orderID, nil, headers)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.do(t, http.MethodGet, "/v1/orders/"+orderID, nil, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Header().Get("Idempotency-Replayed"))
}
