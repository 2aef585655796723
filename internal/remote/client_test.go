package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

func authedCtx() context.Context {
	return auth.WithSession(context.Background(), auth.Session{
		State:  auth.Authenticated,
		UserID: "user-1",
		Token:  "tok-123",
	})
}

func cartEnvelope(cart *domain.Cart) []byte {
	data, _ := json.Marshal(map[string]any{"success": true, "data": cart})
	return data
}

func TestGetCart_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		w.Write(cartEnvelope(&domain.Cart{Owner: "user-1", Lines: []domain.CartLine{{ID: "l1", ProductID: "prod-1", VariantID: "var-250", Quantity: 2}}}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	cart, err := client.GetCart(authedCtx())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-1", cart.Lines[0].ProductID)
}

func TestAddLine_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prod-1", body["product_id"])
		assert.Equal(t, "var-250", body["variant_id"])
		assert.Equal(t, float64(3), body["quantity"])

		w.Write(cartEnvelope(&domain.Cart{Owner: "user-1"}))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).AddLine(authedCtx(), "prod-1", "var-250", 3)
	require.NoError(t, err)
}

func TestUpdateVariant_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cart/line-9/variant", r.URL.Path)
		w.Write(cartEnvelope(&domain.Cart{Owner: "user-1"}))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).UpdateVariant(authedCtx(), "line-9", "var-500")
	require.NoError(t, err)
}

func TestSyncLines_SendsAllItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart/sync", r.URL.Path)

		var body struct {
			Items []SyncItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Items, 2)
		assert.Equal(t, SyncItem{ProductID: "prod-1", VariantID: "var-250", Quantity: 2}, body.Items[0])

		w.Write(cartEnvelope(&domain.Cart{Owner: "user-1"}))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SyncLines(authedCtx(), []SyncItem{
		{ProductID: "prod-1", VariantID: "var-250", Quantity: 2},
		{ProductID: "prod-2", VariantID: "var-500", Quantity: 1},
	})
	require.NoError(t, err)
}

func TestMissingToken_NotAuthenticated(t *testing.T) {
	client := NewClient("http://backend.invalid")

	_, err := client.GetCart(context.Background())
	assert.True(t, IsKind(err, KindNotAuthenticated))
}

func TestUnauthorizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "code": "unauthenticated", "message": "token expired"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCart(authedCtx())
	assert.True(t, IsKind(err, KindNotAuthenticated))
}

func TestVariantUnavailableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "code": "out_of_stock", "message": "variant exhausted"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).AddLine(authedCtx(), "prod-1", "var-250", 1)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindVariantUnavailable))
	assert.Contains(t, err.Error(), "variant exhausted")
}

func TestServerError_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "boom"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCart(authedCtx())
	assert.True(t, IsKind(err, KindTransient))
}

func TestEnvelopeFailureWithOKStatus_IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "nope"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCart(authedCtx())
	assert.True(t, IsKind(err, KindTransient))
}

func TestNetworkFailure_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewClient(srv.URL).GetCart(authedCtx())
	assert.True(t, IsKind(err, KindTransient))
}

func TestTimeout_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	client.http = &http.Client{Timeout: 20 * time.Millisecond}

	_, err := client.GetCart(authedCtx())
	assert.True(t, IsKind(err, KindTransient))
}
