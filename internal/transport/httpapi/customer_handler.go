package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/service/orders"
)

const defaultListLimit = 100

// CatalogHandler обслуживает клиентов и каталог услуг.
type CatalogHandler struct {
	customers domain.CustomerRepository
	services  domain.ServiceRepository
	orders    *orders.Service
	logger    *log.Entry
}

// NewCatalogHandler создаёт handler клиентов и каталога.
func NewCatalogHandler(
	customers domain.CustomerRepository,
	services domain.ServiceRepository,
	ordersService *orders.Service,
	logger *log.Entry,
) *CatalogHandler {
	if logger == nil {
		logger = log.WithField("component", "http-catalog")
	}
	return &CatalogHandler{
		customers: customers,
		services:  services,
		orders:    ordersService,
		logger:    logger,
	}
}

// CreateCustomer обрабатывает POST /v1/customers.
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if result := customer.Validate(); !result.OK() {
		status, resp := mapDomainError(result.Err())
		c.JSON(status, resp)
		return
	}

	if err := h.customers.Create(customer); err != nil {
		h.logger.WithError(err).Warn("failed to create customer")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, fromCustomer(customer))
}

// GetCustomer обрабатывает GET /v1/customers/:id.
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customers.Get(c.Param("id"))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, fromCustomer(customer))
}

// ListCustomers обрабатывает GET /v1/customers.
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(queryLimit(c))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	out := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, fromCustomer(customer))
	}
	c.JSON(http.StatusOK, gin.H{"customers": out})
}

// CustomerOrders обрабатывает GET /v1/customers/:id/orders.
func (h *CatalogHandler) CustomerOrders(c *gin.Context) {
	customerID := c.Param("id")

	if _, err := h.customers.Get(customerID); err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	ordersList, err := h.orders.ListByCustomer(customerID, queryLimit(c))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	out := make([]orderResponse, 0, len(ordersList))
	for _, order := range ordersList {
		out = append(out, fromOrder(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// CreateService обрабатывает POST /v1/services.
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid_request",
			Message: "request body is not valid json",
		})
		return
	}

	var issues []string
	if strings.TrimSpace(req.Name) == "" {
		issues = append(issues, "Service name is required")
	}
	if req.PriceCentavos <= 0 {
		issues = append(issues, "Invalid price for "+strings.TrimSpace(req.Name))
	}
	if len(issues) > 0 {
		status, resp := mapDomainError(&domain.ValidationError{Issues: issues})
		c.JSON(status, resp)
		return
	}

	now := time.Now().UTC()
	service := domain.Service{
		ID:            uuid.NewString(),
		CategoryID:    strings.TrimSpace(req.CategoryID),
		Name:          strings.TrimSpace(req.Name),
		PriceCentavos: req.PriceCentavos,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.services.Create(service); err != nil {
		h.logger.WithError(err).Warn("failed to create service")
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, fromService(service))
}

// ListServices обрабатывает GET /v1/services.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.services.List(queryLimit(c))
	if err != nil {
		status, resp := mapDomainError(err)
		c.JSON(status, resp)
		return
	}

	out := make([]serviceResponse, 0, len(services))
	for _, service := range services {
		out = append(out, fromService(service))
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

// queryLimit читает ?limit= с безопасным значением по умолчанию.
func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}
	return limit
}
