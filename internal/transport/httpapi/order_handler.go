package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/service/orders"
)

// OrderHandler обслуживает HTTP-операции над заказами и платежами.
type OrderHandler struct {
	service *orders.Service
	logger  *log.Entry
}

// NewOrderHandler создаёт handler заказов.
func NewOrderHandler(service *orders.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "http-orders")
	}
	return &OrderHandler{service: service, logger: logger}
}

// Create обрабатывает POST /v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	order, payment, err := h.service.Create(req.toInput())
	if err != nil {
		h.logger.WithError(err).WithField("customer_id", req.CustomerID).Info("order create rejected")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, orderWithPaymentResponse{
		Order:   fromOrder(order),
		Payment: fromPayment(payment),
	})
}

// Get обрабатывает GET /v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, payment, err := h.service.Get(c.Param("id"))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, orderWithPaymentResponse{
		Order:   fromOrder(order),
		Payment: fromPayment(payment),
	})
}

// ChangeStatus обрабатывает POST /v1/orders/:id/status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	order, err := h.service.ChangeStatus(orderID, req.Status, req.Reason)
	if err != nil {
		h.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"status":   req.Status,
		}).Info("status change rejected")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, fromOrder(order))
}

// ChangePaymentStatus обрабатывает POST /v1/orders/:id/payment/status.
func (h *OrderHandler) ChangePaymentStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req changePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	payment, err := h.service.ChangePaymentStatus(orderID, req.Status, req.AmountCentavos)
	if err != nil {
		h.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"status":   req.Status,
		}).Info("payment status change rejected")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, fromPayment(payment))
}

// RecordPayment обрабатывает POST /v1/orders/:id/payment.
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	orderID := c.Param("id")

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	payment, err := h.service.RecordPayment(orderID, req.AmountCentavos)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Info("payment record rejected")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, fromPayment(payment))
}

// NextStatuses обрабатывает GET /v1/orders/:id/next-statuses.
func (h *OrderHandler) NextStatuses(c *gin.Context) {
	statuses, err := h.service.NextStatuses(c.Param("id"))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, fromStatuses(statuses))
}

// Timeline обрабатывает GET /v1/orders/:id/timeline.
func (h *OrderHandler) Timeline(c *gin.Context) {
	events, err := h.service.Timeline(c.Param("id"))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": fromTimeline(events)})
}
