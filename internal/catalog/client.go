package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

const defaultTimeout = 5 * time.Second

// Client fetches product snapshots from the catalog endpoint. Guest cart
// mutations need the full product (variants, prices, stock) because there
// is no server-side lookup for guest lines.
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

type productEnvelope struct {
	Success bool            `json:"success"`
	Data    *domain.Product `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+productID, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}

	var env productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	if !env.Success || env.Data == nil {
		return nil, fmt.Errorf("fetch product %s: %s", productID, env.Message)
	}

	return env.Data, nil
}
