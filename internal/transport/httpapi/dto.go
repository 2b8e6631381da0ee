package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/service/orders"
)

// createOrderRequest — тело POST /v1/orders.
type createOrderRequest struct {
	CustomerID         string                   `json:"customer_id"`
	Items              []createOrderItemRequest `json:"items"`
	AmountPaidCentavos int64                    `json:"amount_paid_centavos"`
	PaymentMethodID    string                   `json:"payment_method_id"`
}

type createOrderItemRequest struct {
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	Qty           int32  `json:"qty"`
	PriceCentavos int64  `json:"price_centavos"`
}

func (r createOrderRequest) toInput() orders.CreateOrderInput {
	items := make([]orders.CreateOrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.CreateOrderItemInput{
			ServiceID:     item.ServiceID,
			ServiceName:   item.ServiceName,
			Qty:           item.Qty,
			PriceCentavos: item.PriceCentavos,
		})
	}
	return orders.CreateOrderInput{
		CustomerID:         r.CustomerID,
		Items:              items,
		AmountPaidCentavos: r.AmountPaidCentavos,
		PaymentMethodID:    r.PaymentMethodID,
	}
}

// changeStatusRequest — тело POST /v1/orders/:id/status.
type changeStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// changePaymentStatusRequest — тело POST /v1/orders/:id/payment/status.
type changePaymentStatusRequest struct {
	Status         string `json:"status"`
	AmountCentavos int64  `json:"amount_centavos"`
}

// recordPaymentRequest — тело POST /v1/orders/:id/payment.
type recordPaymentRequest struct {
	AmountCentavos int64 `json:"amount_centavos"`
}

// createCustomerRequest — тело POST /v1/customers.
type createCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// createServiceRequest — тело POST /v1/services.
type createServiceRequest struct {
	CategoryID    string `json:"category_id"`
	Name          string `json:"name"`
	PriceCentavos int64  `json:"price_centavos"`
}

type orderItemResponse struct {
	ID            string `json:"id"`
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	Qty           int32  `json:"qty"`
	PriceCentavos int64  `json:"price_centavos"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customer_id"`
	Status        string              `json:"status"`
	StatusTitle   string              `json:"status_title"`
	TotalCentavos int64               `json:"total_centavos"`
	TotalDisplay  string              `json:"total_display"`
	Items         []orderItemResponse `json:"items"`
	Version       int64               `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type paymentResponse struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	StatusTitle    string `json:"status_title"`
	AmountCentavos int64  `json:"amount_centavos"`
	AmountDisplay  string `json:"amount_display"`
	// PaidAt отсутствует в ответе, если дата оплаты не определена.
	PaidAt   *time.Time `json:"paid_at,omitempty"`
	MethodID string     `json:"method_id,omitempty"`
	Version  int64      `json:"version"`
}

type orderWithPaymentResponse struct {
	Order   orderResponse   `json:"order"`
	Payment paymentResponse `json:"payment"`
}

type timelineEventResponse struct {
	Type       string    `json:"type"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type statusOptionResponse struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type nextStatusesResponse struct {
	Next []statusOptionResponse `json:"next"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type serviceResponse struct {
	ID            string `json:"id"`
	CategoryID    string `json:"category_id,omitempty"`
	Name          string `json:"name"`
	PriceCentavos int64  `json:"price_centavos"`
	PriceDisplay  string `json:"price_display"`
}

func fromOrder(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:            item.ID,
			ServiceID:     item.ServiceID,
			ServiceName:   item.ServiceName,
			Qty:           item.Qty,
			PriceCentavos: item.PriceCentavos,
		})
	}
	return orderResponse{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Status:        order.Status.String(),
		StatusTitle:   order.Status.Title(),
		TotalCentavos: order.TotalCentavos,
		TotalDisplay:  domain.FormatCentavos(order.TotalCentavos),
		Items:         items,
		Version:       order.Version,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func fromPayment(payment domain.Payment) paymentResponse {
	resp := paymentResponse{
		ID:             payment.ID,
		OrderID:        payment.OrderID,
		Status:         payment.Status.String(),
		StatusTitle:    payment.Status.Title(),
		AmountCentavos: payment.AmountCentavos,
		AmountDisplay:  domain.FormatCentavos(payment.AmountCentavos),
		MethodID:       payment.MethodID,
		Version:        payment.Version,
	}
	if !payment.PaidAt.IsZero() {
		paidAt := payment.PaidAt
		resp.PaidAt = &paidAt
	}
	return resp
}

func fromTimeline(events []domain.TimelineEvent) []timelineEventResponse {
	out := make([]timelineEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, timelineEventResponse{
			Type:       event.Type,
			Reason:     event.Reason,
			OccurredAt: event.Occurred,
		})
	}
	return out
}

func fromStatuses(statuses []domain.OrderStatus) nextStatusesResponse {
	next := make([]statusOptionResponse, 0, len(statuses))
	for _, status := range statuses {
		next = append(next, statusOptionResponse{
			Name:  status.String(),
			Title: status.Title(),
		})
	}
	return nextStatusesResponse{Next: next}
}

func fromCustomer(customer domain.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		CreatedAt: customer.CreatedAt,
	}
}

func fromService(service domain.Service) serviceResponse {
	return serviceResponse{
		ID:            service.ID,
		CategoryID:    service.CategoryID,
		Name:          service.Name,
		PriceCentavos: service.PriceCentavos,
		PriceDisplay:  domain.FormatCentavos(service.PriceCentavos),
	}
}
