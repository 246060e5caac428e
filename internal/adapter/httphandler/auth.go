package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

type AuthHandler struct {
	auth     port.Authenticator
	spending port.SpendingReader
}

// RegisterAuth mounts the session routes. A nil spending reader makes
// GET /v1/me/spending answer 503.
func RegisterAuth(
	mux *http.ServeMux, auth port.Authenticator, spending port.SpendingReader,
) {
	h := AuthHandler{auth, spending}
	mux.HandleFunc("POST /v1/login", h.Login)
	mux.HandleFunc("POST /v1/register", h.Register)
	mux.HandleFunc("POST /v1/logout", h.Logout)
	mux.HandleFunc("GET /v1/me", h.Me)
	mux.HandleFunc("PUT /v1/me/budget", h.SetBudget)
	mux.HandleFunc("POST /v1/me/budget/increase", h.IncreaseBudget)
	mux.HandleFunc("GET /v1/me/spending", h.Spending)
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Login"
	log := slog.With("op", op)

	var form domain.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	u, err := h.auth.Login(r.Context(), form)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, newUser(u))
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Register"
	log := slog.With("op", op)

	var form domain.RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	u, err := h.auth.Register(r.Context(), form)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUser(u))
}

func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Me"
	log := slog.With("op", op)

	u, ok := h.auth.Current()
	if !ok {
		writeError(w, log, domain.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, newUser(u))
}

func (h AuthHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
	h.budget(w, r, "AuthHandler.SetBudget", h.auth.SetBudget)
}

func (h AuthHandler) IncreaseBudget(w http.ResponseWriter, r *http.Request) {
	h.budget(w, r, "AuthHandler.IncreaseBudget", h.auth.IncreaseBudget)
}

func (h AuthHandler) budget(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(context.Context, decimal.Decimal) (domain.User, error),
) {
	log := slog.With("op", op)

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, log, "invalid JSON data", err)
		return
	}

	u, err := fn(r.Context(), decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, newUser(u))
}

func (h AuthHandler) Spending(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.Spending"
	log := slog.With("op", op)

	if h.spending == nil {
		writeError(w, log, errNoSpendingView)
		return
	}

	u, ok := h.auth.Current()
	if !ok {
		writeError(w, log, domain.ErrUnauthenticated)
		return
	}

	s, err := h.spending.Spending(r.Context(), u.ID)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpending(s))
}
