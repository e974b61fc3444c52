package handler

import (
	"encoding/json"
	"net/http"

	"refab-api/internal/model"
	"refab-api/internal/service"
	"refab-api/pkg/apierror"
	"refab-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order submission and lookup requests.
type OrderHandler struct {
	quoteService *service.QuoteService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(quoteService *service.QuoteService) *OrderHandler {
	return &OrderHandler{quoteService: quoteService}
}

// SubmitOrderResponse is the wire shape of a successful submission.
type SubmitOrderResponse struct {
	Success       bool   `json:"success"`
	ID            string `json:"id"`
	OrderID       string `json:"orderId"`
	Price         int    `json:"price"`
	TrackingToken string `json:"trackingToken"`
}

// Submit handles POST /orders. The declared price in the body is verified
// against a server-side recomputation before anything is persisted; the
// returned price is always the server's.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.PriceQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.ValidationError())
		return
	}
	defer r.Body.Close()

	q, err := h.quoteService.Submit(r.Context(), &req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, SubmitOrderResponse{
		Success:       true,
		ID:            q.ID,
		OrderID:       q.OrderID,
		Price:         q.VerifiedPrice,
		TrackingToken: q.TrackingToken,
	})
}

// Get handles GET /orders/{order_id}. Internal lookup by order id; the
// customer-facing path is Track.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		response.Error(w, apierror.BadRequest("order_id is required"))
		return
	}

	q, err := h.quoteService.GetOrder(r.Context(), orderID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, q)
}

// Track handles GET /orders/{order_id}/tracking?token=... The tracking
// token issued at submission time gates the lookup.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	token := r.URL.Query().Get("token")
	if orderID == "" || token == "" {
		response.Error(w, apierror.BadRequest("order_id and token are required"))
		return
	}

	q, err := h.quoteService.Track(r.Context(), orderID, token)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, q)
}
