package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/takeaway/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, errorStatus(err), ErrorResponse{Error: err.Error()})
}

// errorStatus maps the domain error taxonomy onto HTTP statuses.
func errorStatus(err error) int {
	var conflict *domain.StatusConflictError
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCartEmpty), errors.Is(err, domain.ErrAddressOutOfRange):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userID reads the acting user from the request. Identity is resolved by the
// API gateway upstream; the service layer always receives it explicitly.
func userID(r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
