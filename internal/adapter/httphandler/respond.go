package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
)

var errNoSpendingView = errors.New("spending view is not configured")

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	res := ErrorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		res = ErrorResponse{Error: domain.ErrInvalidForm.Error(), Fields: verr.Fields}
	case errors.Is(err, domain.ErrInvalidAmount):
		status = http.StatusBadRequest
		res.Error = domain.ErrInvalidAmount.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		res.Error = domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		res.Error = domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrInsufficientBudget):
		status = http.StatusPaymentRequired
		var berr *domain.InsufficientBudgetError
		if errors.As(err, &berr) {
			res.Error = berr.Error()
		}
	case errors.Is(err, domain.ErrEmptyBasket):
		status = http.StatusConflict
		res.Error = domain.ErrEmptyBasket.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
		res.Error = domain.ErrEmailTaken.Error()
	case errors.Is(err, domain.ErrPhoneTaken):
		status = http.StatusConflict
		res.Error = domain.ErrPhoneTaken.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
		res.Error = domain.ErrProductNotFound.Error()
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
		res.Error = domain.ErrUpstream.Error()
	case errors.Is(err, errNoSpendingView):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		res.Error = "request canceled"
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "err", err)
	} else {
		log.Warn("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, res)
}

func badRequest(w http.ResponseWriter, log *slog.Logger, msg string, err error) {
	log.Warn(msg, "err", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}
