package httphandler

import (
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

// Services are the inbound ports served over HTTP. Spending and
// Metrics may be nil.
type Services struct {
	Basket   port.BasketManager
	Checkout port.Checkouter
	Auth     port.Authenticator
	Catalog  port.CatalogBrowser
	Spending port.SpendingReader
	Metrics  http.Handler
}

func NewRouter(s Services) http.Handler {
	mux := http.NewServeMux()

	RegisterProducts(mux, s.Catalog)
	RegisterBasket(mux, s.Basket, s.Catalog)
	RegisterCheckout(mux, s.Checkout)
	RegisterAuth(mux, s.Auth, s.Spending)

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}

	return LogRequests(AllowJSON(mux))
}
