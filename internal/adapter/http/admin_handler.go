package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// AdminHandler serves the merchant-side order endpoints.
type AdminHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewAdminHandler(service interfaces.OrderService, logger logger.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/order/conditionSearch", h.Search)
	mux.HandleFunc("GET /admin/order/statistics", h.Statistics)
	mux.HandleFunc("PUT /admin/order/confirm", h.Accept)
	mux.HandleFunc("PUT /admin/order/rejection", h.Reject)
	mux.HandleFunc("PUT /admin/order/cancel", h.Cancel)
	mux.HandleFunc("PUT /admin/order/delivery/{id}", h.Dispatch)
	mux.HandleFunc("PUT /admin/order/complete/{id}", h.Complete)
}

func (h *AdminHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := domain.OrderPageQuery{
		Number: r.URL.Query().Get("number"),
		Phone:  r.URL.Query().Get("phone"),
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))

	if raw := r.URL.Query().Get("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		st := domain.Status(n)
		q.Status = &st
	}
	if raw := r.URL.Query().Get("begin_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid begin_time"})
			return
		}
		q.BeginTime = &t
	}
	if raw := r.URL.Query().Get("end_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid end_time"})
			return
		}
		q.EndTime = &t
	}

	result, err := h.service.PageForAdmin(r.Context(), q)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type AcceptOrderRequest struct {
	ID int64 `json:"id"`
}

func (h *AdminHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "order id is required"})
		return
	}

	if err := h.service.Accept(r.Context(), req.ID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type RejectOrderRequest struct {
	ID              int64  `json:"id"`
	RejectionReason string `json:"rejection_reason"`
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "order id is required"})
		return
	}

	if err := h.service.Reject(r.Context(), req.ID, req.RejectionReason); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type CancelOrderRequest struct {
	ID           int64  `json:"id"`
	CancelReason string `json:"cancel_reason"`
}

func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "order id is required"})
		return
	}

	if err := h.service.Cancel(r.Context(), req.ID, req.CancelReason); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	if err := h.service.Dispatch(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	if err := h.service.Complete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
