package httpapi

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// RouterConfig собирает зависимости HTTP API.
type RouterConfig struct {
	Orders      *OrderHandler
	Catalog     *CatalogHandler
	Idempotency domain.IdempotencyRepository
	Logger      *log.Entry
}

// NewRouter строит gin.Engine со всеми маршрутами API.
// Idempotency middleware действует только на POST-запросы с заголовком
// Idempotency-Key; репозиторий может быть nil, тогда защита отключена.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	v1.Use(IdempotencyMiddleware(cfg.Idempotency, cfg.Logger))

	v1.POST("/orders", cfg.Orders.Create)
	v1.GET("/orders/:id", cfg.Orders.Get)
	v1.POST("/orders/:id/status", cfg.Orders.ChangeStatus)
	v1.POST("/orders/:id/payment", cfg.Orders.RecordPayment)
	v1.POST("/orders/:id/payment/status", cfg.Orders.ChangePaymentStatus)
	v1.GET("/orders/:id/next-statuses", cfg.Orders.NextStatuses)
	v1.GET("/orders/:id/timeline", cfg.Orders.Timeline)

	v1.POST("/customers", cfg.Catalog.CreateCustomer)
	v1.GET("/customers", cfg.Catalog.ListCustomers)
	v1.GET("/customers/:id", cfg.Catalog.GetCustomer)
	v1.GET("/customers/:id/orders", cfg.Catalog.CustomerOrders)

	v1.POST("/services", cfg.Catalog.CreateService)
	v1.GET("/services", cfg.Catalog.ListServices)

	return router
}
