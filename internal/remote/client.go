package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

const defaultTimeout = 10 * time.Second

// SyncItem is the projection of a cart line sent to the bulk sync
// endpoint during a guest-cart merge.
type SyncItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Client wraps the commerce backend's cart endpoints. Every call is one
// network round trip; the backend is the authority on stock and price.
// No caching and no retries happen here.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool         `json:"success"`
	Data    *domain.Cart `json:"data"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
}

func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	return c.do(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddLine(ctx context.Context, productID, variantID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	}
	return c.do(ctx, http.MethodPost, "/cart", body)
}

func (c *Client) RemoveLine(ctx context.Context, lineID string) (*domain.Cart, error) {
	return c.do(ctx, http.MethodDelete, "/cart/"+lineID, nil)
}

func (c *Client) UpdateQuantity(ctx context.Context, lineID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "/cart/"+lineID, body)
}

// UpdateVariant asks the backend to switch a line's variant. The backend
// applies the same merge-or-rewrite rule the guest store does, so the
// caller must not assume which outcome happened and should use the
// returned cart as-is.
func (c *Client) UpdateVariant(ctx context.Context, lineID, newVariantID string) (*domain.Cart, error) {
	body := map[string]any{"variant_id": newVariantID}
	return c.do(ctx, http.MethodPut, "/cart/"+lineID+"/variant", body)
}

// SyncLines bulk-upserts guest lines into the server cart. The backend
// collapses duplicates per (product, variant) pair, which is what makes
// a retried merge safe.
func (c *Client) SyncLines(ctx context.Context, items []SyncItem) (*domain.Cart, error) {
	body := map[string]any{"items": items}
	return c.do(ctx, http.MethodPost, "/cart/sync", body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &OpError{Kind: KindTransient, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, &OpError{Kind: KindTransient, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	sess := auth.FromContext(ctx)
	if sess.Token == "" {
		return nil, &OpError{Kind: KindNotAuthenticated, Message: "no session token"}
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection failures are both retriable
		return nil, &OpError{Kind: KindTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &OpError{Kind: KindTransient, Message: fmt.Sprintf("decode response: %v", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.Success {
		if env.Data == nil {
			return nil, &OpError{Kind: KindTransient, Message: "response carried no cart"}
		}
		return env.Data, nil
	}

	return nil, classify(resp.StatusCode, env.Code, env.Message)
}

func classify(status int, code, message string) *OpError {
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", status)
	}

	switch {
	case status == http.StatusUnauthorized || code == "unauthenticated":
		return &OpError{Kind: KindNotAuthenticated, Message: message}
	case status == http.StatusConflict || code == "variant_unavailable" || code == "out_of_stock":
		return &OpError{Kind: KindVariantUnavailable, Message: message}
	default:
		return &OpError{Kind: KindTransient, Message: message}
	}
}
