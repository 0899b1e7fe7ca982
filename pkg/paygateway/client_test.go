package paygateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kelas/pkg/paygateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_Sign(t *testing.T) {
	signer := paygateway.NewSigner("test_secret")

	sig := signer.Sign("g1", "p1")
	assert.Equal(t, "039e9fff2e6e8759aede7d91f0c1075268154146757fffb5454f81d8dbf5b534", sig)
	assert.Equal(t, sig, signer.Sign("g1", "p1"), "signature must be deterministic")

	other := paygateway.NewSigner("other_secret")
	assert.NotEqual(t, sig, other.Sign("g1", "p1"))
	assert.NotEqual(t, sig, signer.Sign("g1", "p2"))
}

func TestSigner_Verify(t *testing.T) {
	signer := paygateway.NewSigner("test_secret")
	valid := signer.Sign("g1", "p1")

	assert.True(t, signer.Verify("g1", "p1", valid))
	assert.False(t, signer.Verify("g1", "p1", "bogus-signature"))
	assert.False(t, signer.Verify("g1", "p2", valid))
	assert.False(t, signer.Verify("g2", "p1", valid))
	assert.False(t, signer.Verify("g1", "p1", ""))
}

func TestClient_CreateOrder(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotBody paygateway.OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_abc",
			"amount":   gotBody.Amount,
			"currency": gotBody.Currency,
			"receipt":  gotBody.Receipt,
			"status":   "created",
		})
	}))
	defer srv.Close()

	client, err := paygateway.NewClient(paygateway.Config{
		BaseURL:   srv.URL + "/",
		KeyID:     "key_test",
		KeySecret: "test_secret",
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	order, err := client.CreateOrder(context.Background(), paygateway.OrderRequest{
		Amount:   49900,
		Currency: "INR",
		Receipt:  "o1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(49900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "key_test", gotAuthUser)
	assert.Equal(t, "test_secret", gotAuthPass)
	assert.Equal(t, "o1", gotBody.Receipt)
	assert.Equal(t, "key_test", client.KeyID())
	assert.True(t, client.Verify("order_abc", "p1", client.Sign("order_abc", "p1")))
}

func TestClient_CreateOrderErrors(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	client, err := paygateway.NewClient(paygateway.Config{BaseURL: srv.URL, KeyID: "k", KeySecret: "s"})
	require.NoError(t, err)

	// Client error from the provider
	_, err = client.CreateOrder(context.Background(), paygateway.OrderRequest{Amount: 1, Currency: "INR"})
	var apiErr *paygateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	assert.False(t, errors.Is(err, paygateway.ErrGatewayUnavailable))

	// Provider outage
	status = http.StatusBadGateway
	_, err = client.CreateOrder(context.Background(), paygateway.OrderRequest{Amount: 1, Currency: "INR"})
	assert.ErrorIs(t, err, paygateway.ErrGatewayUnavailable)

	// Non-positive amount never reaches the provider
	_, err = client.CreateOrder(context.Background(), paygateway.OrderRequest{Amount: 0, Currency: "INR"})
	assert.Error(t, err)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := paygateway.NewClient(paygateway.Config{BaseURL: "http://localhost", KeyID: "k"})
	assert.Error(t, err)
}

func TestOfflineClient(t *testing.T) {
	client := paygateway.NewOfflineClient("key_offline", "test_secret")

	order, err := client.CreateOrder(context.Background(), paygateway.OrderRequest{Amount: 100, Currency: "INR", Receipt: "o1"})
	require.NoError(t, err)
	assert.Regexp(t, `^order_[0-9a-f]{14}$`, order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, paygateway.NewSigner("test_secret").Sign(order.ID, "p1"), client.Sign(order.ID, "p1"))
}
