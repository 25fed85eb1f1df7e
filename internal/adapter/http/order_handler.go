package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

// OrderHandler serves the user-facing order endpoints.
type OrderHandler struct {
	service interfaces.OrderService
	logger  logger.Logger
}

func NewOrderHandler(service interfaces.OrderService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /user/order/submit", h.Submit)
	mux.HandleFunc("PUT /user/order/payment", h.Pay)
	mux.HandleFunc("POST /user/order/cancel/{id}", h.Cancel)
	mux.HandleFunc("POST /user/order/repetition/{id}", h.Repeat)
	mux.HandleFunc("GET /user/order/reminder/{id}", h.Reminder)
	mux.HandleFunc("GET /user/order/details/{id}", h.Details)
	mux.HandleFunc("GET /user/order/page", h.Page)
}

type SubmitOrderRequest struct {
	AddressBookID int64  `json:"address_book_id"`
	Remark        string `json:"remark,omitempty"`
}

type SubmitOrderResponse struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OrderTime   time.Time `json:"order_time"`
	Amount      float64   `json:"amount"`
}

func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return
	}

	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.AddressBookID == 0 {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "address_book_id is required"})
		return
	}

	result, err := h.service.Submit(r.Context(), uid, interfaces.SubmitOrderCommand{
		AddressBookID: req.AddressBookID,
		Remark:        req.Remark,
	})
	if err != nil {
		h.logger.Error("order_submit_failed", "Failed to submit order", "", nil, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitOrderResponse{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		OrderTime:   result.OrderTime,
		Amount:      result.Amount,
	})
}

type PayOrderRequest struct {
	OrderNumber string `json:"order_number"`
}

type PayOrderResponse struct {
	NonceStr  string `json:"nonce_str"`
	PaySign   string `json:"pay_sign"`
	Timestamp string `json:"timestamp"`
	SignType  string `json:"sign_type"`
	Package   string `json:"package"`
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return
	}

	var req PayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderNumber == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "order_number is required"})
		return
	}

	ticket, err := h.service.Pay(r.Context(), uid, req.OrderNumber)
	if err != nil {
		h.logger.Error("order_payment_failed", "Failed to pay order", "", nil, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PayOrderResponse{
		NonceStr:  ticket.NonceStr,
		PaySign:   ticket.PaySign,
		Timestamp: ticket.Timestamp,
		SignType:  ticket.SignType,
		Package:   ticket.Package,
	})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.service.CancelByUser)
}

func (h *OrderHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.service.Repeat)
}

func (h *OrderHandler) userAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, userID, orderID int64) error) {
	uid, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	if err := action(r.Context(), uid, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrderHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	if err := h.service.Reminder(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OrderHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	result, err := h.service.Details(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) Page(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user identity"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	var status *domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		st := domain.Status(n)
		status = &st
	}

	result, err := h.service.PageForUser(r.Context(), uid, status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
