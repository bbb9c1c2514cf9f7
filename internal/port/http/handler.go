package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartResponse struct {
	Items   entity.Cart        `json:"items"`
	Summary entity.CartSummary `json:"summary"`
}

type AddProductRequest struct {
	ProductID *int `json:"productId"`
}

type UpdateAmountRequest struct {
	Amount *int `json:"amount"`
}

// CartHandler exposes the cart provider to the storefront UI. Mutations always
// answer with the current cart; failures reach the shopper through the
// notifier, not the status code.
type CartHandler struct {
	provider service.CartProvider
	stock    repository.StockReader
	log      logger.Logger
}

func NewCartHandler(provider service.CartProvider, stock repository.StockReader, log logger.Logger) *CartHandler {
	return &CartHandler{provider: provider, stock: stock, log: log}
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w)
}

func (h *CartHandler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == nil {
		h.log.Warnf("Invalid request body for AddProduct: %v", err)
		http.Error(w, "Invalid request body: productId is required", http.StatusBadRequest)
		return
	}

	h.provider.AddProduct(r.Context(), *req.ProductID)
	h.writeCart(w)
}

func (h *CartHandler) HandleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	h.provider.RemoveProduct(r.Context(), productID)
	h.writeCart(w)
}

func (h *CartHandler) HandleUpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.log.Warnf("Invalid request body for UpdateProductAmount: %v", err)
		http.Error(w, "Invalid request body: amount is required", http.StatusBadRequest)
		return
	}

	h.provider.UpdateProductAmount(r.Context(), service.UpdateProductAmount{ProductID: productID, Amount: *req.Amount})
	h.writeCart(w)
}

func (h *CartHandler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	stock, err := h.stock.GetStock(r.Context(), productID)
	if err != nil {
		h.log.Errorf("Failed to get stock for product %d: %v", productID, err)
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Stock not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to get stock", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, stock)
}

func (h *CartHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CartHandler) productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.log.Warnf("Invalid product id %q: %v", raw, err)
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *CartHandler) writeCart(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusOK, CartResponse{Items: h.provider.Cart(), Summary: h.provider.Summary()})
}

func (h *CartHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}
