package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCulqiClientCreateOrder(t *testing.T) {
	var got CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RemoteOrder{
			ID:           "ord_live_abc",
			State:        "created",
			Amount:       got.Amount,
			CurrencyCode: got.CurrencyCode,
			OrderNumber:  got.OrderNumber,
		})
	}))
	defer srv.Close()

	client := NewCulqiClient(srv.URL, "sk_test_123")
	remote, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:       6200,
		CurrencyCode: "PEN",
		OrderNumber:  "DANI-AAAAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "ord_live_abc", remote.ID)
	assert.Equal(t, "created", remote.State)
	assert.Equal(t, int64(6200), got.Amount)
	assert.Equal(t, "DANI-AAAAAA", got.OrderNumber)
}

func TestCulqiClientRelaysErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"object":"error","merchant_message":"monto invalido"}`))
	}))
	defer srv.Close()

	client := NewCulqiClient(srv.URL, "sk_test_123")
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "monto invalido")
}

func TestCulqiClientRejectsGarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewCulqiClient(srv.URL, "sk_test_123")
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
