package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

type CheckoutHandler struct {
	checkout port.Checkouter
}

func RegisterCheckout(mux *http.ServeMux, checkout port.Checkouter) {
	h := CheckoutHandler{checkout}
	mux.HandleFunc("GET /v1/checkout", h.GetQuote)
	mux.HandleFunc("POST /v1/checkout", h.PostCheckout)
}

func (h CheckoutHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.GetQuote"
	log := slog.With("op", op)

	q, err := h.checkout.Quote(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuote(q))
}

func (h CheckoutHandler) PostCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.PostCheckout"
	log := slog.With("op", op)

	receipt, err := h.checkout.Checkout(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, newReceipt(receipt))
}
