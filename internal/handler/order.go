package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
	"ledger-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *logrus.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/orders", h.ExecuteOrder).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/accounts/{accountId}/orders", h.GetOrders).Methods(http.MethodGet, http.MethodOptions)
}

// ExecuteOrder records the order; the body maps directly onto model.Order without orderId.
func (h *OrderHandler) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var order model.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.logger.WithError(err).Warn("Failed to decode order request")
		writeError(w, http.StatusUnprocessableEntity, invalidRequestBody)
		return
	}

	out, err := h.orderService.ExecuteOrder(r.Context(), order)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// GetOrders accepts an optional ?status= filter.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	status := r.URL.Query().Get("status")

	orders, err := h.orderService.GetOrders(r.Context(), accountID, status)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
