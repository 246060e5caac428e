package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type BasketHandler struct {
	basket  port.BasketManager
	catalog port.CatalogBrowser
}

func RegisterBasket(
	mux *http.ServeMux, basket port.BasketManager, catalog port.CatalogBrowser,
) {
	h := BasketHandler{basket, catalog}
	mux.HandleFunc("GET /v1/basket", h.GetBasket)
	mux.HandleFunc("DELETE /v1/basket", h.ClearBasket)
	mux.HandleFunc("POST /v1/basket/items", h.AddItem)
	mux.HandleFunc("PUT /v1/basket/items/{id}", h.SetQuantity)
	mux.HandleFunc("DELETE /v1/basket/items/{id}", h.RemoveItem)
	mux.HandleFunc("POST /v1/basket/items/{id}/increment", h.Increment)
	mux.HandleFunc("POST /v1/basket/items/{id}/decrement", h.Decrement)
}

func (h BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newBasket(h.basket.Snapshot()))
}

func (h BasketHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newBasket(h.basket.Clear(r.Context())))
}

// AddItem resolves the product through the catalog, so the basket
// always holds the catalog's price. Quantity defaults to 1.
func (h BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.AddItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, log, err)
		return
	}

	b := h.basket.Add(r.Context(), p, quantity)
	log.Info("item added", "productID", p.ID, "quantity", quantity)
	writeJSON(w, http.StatusOK, newBasket(b))
}

func (h BasketHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "BasketHandler.SetQuantity"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		badRequest(w, log, "invalid product id", err)
		return
	}

	var req QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	writeJSON(w, http.StatusOK, newBasket(h.basket.SetQuantity(r.Context(), id, req.Quantity)))
}

func (h BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "BasketHandler.RemoveItem", h.basket.Remove)
}

func (h BasketHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "BasketHandler.Increment", h.basket.Increment)
}

func (h BasketHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, "BasketHandler.Decrement", h.basket.Decrement)
}

func (h BasketHandler) byID(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(context.Context, int) domain.Basket,
) {
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		badRequest(w, log, "invalid product id", err)
		return
	}
	writeJSON(w, http.StatusOK, newBasket(fn(r.Context(), id)))
}
