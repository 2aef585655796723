package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/catalog"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
	"github.com/Umesh8907/anuraga-pickles-sub000/internal/remote"
)

// CartService is the facade surface the handlers need.
// Consumers define this interface, not the facade implementation.
type CartService interface {
	GetCart(ctx context.Context, sess auth.Session) (*domain.Cart, error)
	AddLine(ctx context.Context, sess auth.Session, product *domain.Product, variantID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, sess auth.Session, lineID string) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sess auth.Session, lineID string, quantity int) (*domain.Cart, error)
	UpdateVariant(ctx context.Context, sess auth.Session, lineID, newVariantID string) (*domain.Cart, error)
}

// ProductGetter supplies product snapshots for guest-mode mutations.
type ProductGetter interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

type CartHandler struct {
	carts   CartService
	catalog ProductGetter
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, catalog ProductGetter, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
		log:     log,
	}
}

type AddLineRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type UpdateVariantRequestDTO struct {
	VariantID string `json:"variant_id"`
}

type CartResponseDTO struct {
	Cart     *domain.Cart    `json:"cart"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, auth.FromContext(r.Context()))
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	// An omitted variant means the product's default option
	variantID := req.VariantID
	if variantID == "" {
		variant, err := domain.DefaultVariant(product)
		if err != nil {
			h.handleCartError(w, err)
			return
		}
		variantID = variant.ID
	}

	cart, err := h.carts.AddLine(ctx, auth.FromContext(r.Context()), product, variantID, req.Quantity)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondCart(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, auth.FromContext(r.Context()), lineID, req.Quantity)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id is required")
		return
	}

	var req UpdateVariantRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}

	cart, err := h.carts.UpdateVariant(ctx, auth.FromContext(r.Context()), lineID, req.VariantID)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID := chi.URLParam(r, "line_id")
	if lineID == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id is required")
		return
	}

	cart, err := h.carts.RemoveLine(ctx, auth.FromContext(r.Context()), lineID)
	if err != nil {
		h.handleCartError(w, err)
		return
	}

	respondCart(w, http.StatusOK, cart)
}

func (h *CartHandler) handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrVariantNotFound):
		respondError(w, http.StatusConflict, "variant_not_found", "this option is no longer available")
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case remote.IsKind(err, remote.KindNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "session_expired", "please sign in again")
	case remote.IsKind(err, remote.KindVariantUnavailable):
		respondError(w, http.StatusConflict, "variant_unavailable", "this option just sold out, refresh your cart")
	case remote.IsKind(err, remote.KindTransient):
		respondError(w, http.StatusBadGateway, "backend_unavailable", "something went wrong, try again")
	default:
		h.log.Error("unexpected cart error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondCart(w http.ResponseWriter, status int, cart *domain.Cart) {
	respondJSON(w, status, CartResponseDTO{Cart: cart, Subtotal: cart.Subtotal()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
