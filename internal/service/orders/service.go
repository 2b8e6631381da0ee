package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/metrics"
)

// Service координирует жизненный цикл заказов и платежей: загружает
// снимки, прогоняет их через доменные проверки и применяет побочные
// эффекты только при положительном вердикте.
type Service struct {
	orders    domain.OrderRepository
	payments  domain.PaymentRepository
	customers domain.CustomerRepository
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository
	logger    *log.Entry
	metrics   *metrics.LifecycleMetrics
}

// CreateOrderInput описывает запрос на создание заказа.
type CreateOrderInput struct {
	CustomerID         string
	Items              []CreateOrderItemInput
	AmountPaidCentavos int64
	PaymentMethodID    string
}

// CreateOrderItemInput описывает одну позицию нового заказа.
type CreateOrderItemInput struct {
	ServiceID     string
	ServiceName   string
	Qty           int32
	PriceCentavos int64
}

// NewService конструирует сервис с зависимостями.
func NewService(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	svc := NewServiceWithoutMetrics(orders, payments, customers, outbox, timeline, logger)
	svc.metrics = metrics.NewLifecycleMetrics()
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	customers domain.CustomerRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:    orders,
		payments:  payments,
		customers: customers,
		outbox:    outbox,
		timeline:  timeline,
		logger:    logger,
	}
}

// Create создаёт заказ с начальным платежом. Статус платежа выводится
// из внесённой суммы, статус заказа начинается с "pending payment" и
// сразу продвигается в очередь, если заказ оплачен полностью.
func (s *Service) Create(input CreateOrderInput) (domain.Order, domain.Payment, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration("create_order", time.Since(start))
		}
	}()

	if _, err := s.customers.Get(input.CustomerID); err != nil {
		return domain.Order{}, domain.Payment{}, err
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, domain.OrderItem{
			ID:            uuid.NewString(),
			ServiceID:     item.ServiceID,
			ServiceName:   item.ServiceName,
			Qty:           item.Qty,
			PriceCentavos: item.PriceCentavos,
			CreatedAt:     now,
		})
	}

	if result := domain.ValidateOrderItems(items); !result.OK() {
		return domain.Order{}, domain.Payment{}, result.Err()
	}

	total := domain.CalculateTotal(items)
	paymentStatus := domain.AutoDeterminePaymentStatus(input.AmountPaidCentavos, total)
	if result := domain.ValidatePayment(input.AmountPaidCentavos, total, paymentStatus); !result.OK() {
		return domain.Order{}, domain.Payment{}, result.Err()
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerID:    input.CustomerID,
		Status:        domain.OrderStatusPendingPayment,
		TotalCentavos: total,
		Items:         items,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	payment := domain.Payment{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		AmountCentavos: domain.DetermineAmountPaid(paymentStatus, total, input.AmountPaidCentavos),
		MethodID:       input.PaymentMethodID,
		Status:         paymentStatus,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if paidAt, ok := paymentStatus.ComputedPaymentDate(now); ok {
		payment.PaidAt = paidAt
	}

	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, domain.Payment{}, err
	}
	if err := s.payments.Create(payment); err != nil {
		return domain.Order{}, domain.Payment{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}

	s.appendTimeline(order.ID, domain.TimelineEventOrderCreated, "", now)
	s.emitEvent("order", order.ID, "order.created", map[string]interface{}{
		"customer_id":    order.CustomerID,
		"status":         string(order.Status),
		"total_centavos": order.TotalCentavos,
	})
	if payment.AmountCentavos > 0 {
		s.appendTimeline(order.ID, domain.TimelineEventPaymentRecorded, domain.FormatCentavos(payment.AmountCentavos), now)
		s.emitEvent("payment", order.ID, "payment.recorded", map[string]interface{}{
			"status":          string(payment.Status),
			"amount_centavos": payment.AmountCentavos,
		})
	}

	// Полностью оплаченный заказ сразу уходит в очередь.
	if domain.ShouldAutoUpdateStatus(order.Status, payment.Status) {
		if advanced, err := s.autoAdvance(order); err == nil {
			order = advanced
		} else {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("auto-advance after create failed")
		}
	}

	s.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"customer_id":    order.CustomerID,
		"total_centavos": order.TotalCentavos,
		"payment_status": string(payment.Status),
	}).Info("order created")

	return order, payment, nil
}

// ChangeStatus переводит заказ в новый статус. Название статуса
// разбирается на границе; недопустимые переходы отклоняются без
// изменения состояния. Отмена заказа с оплатой оформляет возврат.
func (s *Service) ChangeStatus(orderID, statusName, reason string) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration("change_status", time.Since(start))
		}
	}()

	to, err := domain.ParseOrderStatus(statusName)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := domain.ValidateTransitionWithPayment(order.Status, to, payment.Status, payment.AmountCentavos, order.TotalCentavos); err != nil {
		if s.metrics != nil {
			s.metrics.RecordTransitionRejected()
		}
		s.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     string(order.Status),
			"to":       string(to),
		}).Info("status transition rejected")
		return domain.Order{}, err
	}

	refund := to == domain.OrderStatusCancelled && domain.ShouldRefundOnCancel(to, payment.Status)

	from := order.Status
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, err
	}
	order.Version++

	if s.metrics != nil {
		s.metrics.RecordTransitionAccepted()
		if to.IsTerminal() {
			s.metrics.RecordOrderFinished()
		}
	}

	s.appendTimeline(order.ID, domain.TimelineEventOrderStatusChanged, reason, order.UpdatedAt)
	eventType := "order.status_changed"
	if to == domain.OrderStatusCancelled {
		eventType = "order.cancelled"
	}
	s.emitEvent("order", order.ID, eventType, map[string]interface{}{
		"from":   string(from),
		"status": string(to),
		"reason": reason,
	})

	if refund {
		if err := s.refundPayment(order, payment, reason); err != nil {
			// Отмена уже зафиксирована, поэтому возвращаем сохранённый заказ:
			// вызывающая сторона повторяет только возврат.
			s.logger.WithError(err).WithField("order_id", order.ID).Error("refund on cancel failed")
			return order, fmt.Errorf("%w: %v", domain.ErrRefundPending, err)
		}
	}

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     string(from),
		"to":       string(to),
	}).Info("order status changed")

	return order, nil
}

// ChangePaymentStatus применяет ручную смену статуса платежа.
// Дата и сумма выводятся из нового статуса: полный расчёт фиксирует
// дату и подтягивает сумму к итогу, возврат обнуляет сумму.
func (s *Service) ChangePaymentStatus(orderID, statusName string, amountCentavos int64) (domain.Payment, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration("change_payment_status", time.Since(start))
		}
	}()

	newStatus, err := domain.ParsePaymentStatus(statusName)
	if err != nil {
		return domain.Payment{}, err
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Payment{}, err
	}
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Payment{}, err
	}

	if _, err := domain.ValidatePaymentStatusChange(newStatus, amountCentavos, order.TotalCentavos); err != nil {
		return domain.Payment{}, err
	}

	now := time.Now().UTC()
	previous := payment.Status
	payment.Status = newStatus
	payment.AmountCentavos = domain.DetermineAmountPaid(newStatus, order.TotalCentavos, amountCentavos)
	if paidAt, ok := newStatus.ComputedPaymentDate(now); ok {
		payment.PaidAt = paidAt
	}
	payment.UpdatedAt = now

	if err := s.payments.Save(payment); err != nil {
		return domain.Payment{}, err
	}
	payment.Version++

	s.appendTimeline(order.ID, domain.TimelineEventPaymentStatusChanged, string(previous)+" -> "+string(newStatus), now)
	s.emitEvent("payment", order.ID, "payment.status_changed", map[string]interface{}{
		"from":            string(previous),
		"status":          string(newStatus),
		"amount_centavos": payment.AmountCentavos,
	})

	if domain.ShouldAutoUpdateStatus(order.Status, newStatus) {
		if _, err := s.autoAdvance(order); err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("auto-advance after payment failed")
		}
	}

	s.logger.WithFields(log.Fields{
		"order_id":        order.ID,
		"payment_status":  string(newStatus),
		"amount_centavos": payment.AmountCentavos,
	}).Info("payment status changed")

	return payment, nil
}

// RecordPayment фиксирует внесённую сумму и переклассифицирует статус
// платежа по ней: ноль — ожидание, частично — partial, от итога — paid.
func (s *Service) RecordPayment(orderID string, amountCentavos int64) (domain.Payment, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration("record_payment", time.Since(start))
		}
	}()

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Payment{}, err
	}
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Payment{}, err
	}

	newStatus := domain.AutoDeterminePaymentStatus(amountCentavos, order.TotalCentavos)
	if result := domain.ValidatePayment(amountCentavos, order.TotalCentavos, newStatus); !result.OK() {
		return domain.Payment{}, result.Err()
	}

	now := time.Now().UTC()
	previous := payment.Status
	payment.Status = newStatus
	payment.AmountCentavos = domain.DetermineAmountPaid(newStatus, order.TotalCentavos, amountCentavos)
	if paidAt, ok := newStatus.ComputedPaymentDate(now); ok {
		payment.PaidAt = paidAt
	}
	payment.UpdatedAt = now

	if err := s.payments.Save(payment); err != nil {
		return domain.Payment{}, err
	}
	payment.Version++

	if s.metrics != nil {
		s.metrics.RecordPaymentRecorded()
	}

	s.appendTimeline(order.ID, domain.TimelineEventPaymentRecorded, domain.FormatCentavos(payment.AmountCentavos), now)
	s.emitEvent("payment", order.ID, "payment.recorded", map[string]interface{}{
		"from":            string(previous),
		"status":          string(newStatus),
		"amount_centavos": payment.AmountCentavos,
	})

	if domain.ShouldAutoUpdateStatus(order.Status, newStatus) {
		if _, err := s.autoAdvance(order); err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("auto-advance after payment failed")
		}
	}

	return payment, nil
}

// Get возвращает заказ вместе с его платежом.
func (s *Service) Get(orderID string) (domain.Order, domain.Payment, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, domain.Payment{}, err
	}
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Order{}, domain.Payment{}, err
	}
	return order, payment, nil
}

// ListByCustomer возвращает заказы клиента.
func (s *Service) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(customerID, limit)
}

// NextStatuses возвращает допустимые следующие статусы заказа.
func (s *Service) NextStatuses(orderID string) ([]domain.OrderStatus, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(order.Status), nil
}

// Timeline возвращает события жизненного цикла заказа.
func (s *Service) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.orders.Get(orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
}

// autoAdvance продвигает полностью оплаченный заказ из "pending payment"
// в очередь на обработку.
func (s *Service) autoAdvance(order domain.Order) (domain.Order, error) {
	from := order.Status
	order.Status = domain.OrderStatusQueueing
	order.UpdatedAt = time.Now().UTC()
	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, err
	}
	order.Version++

	if s.metrics != nil {
		s.metrics.RecordAutoAdvance()
		s.metrics.RecordTransitionAccepted()
	}

	s.appendTimeline(order.ID, domain.TimelineEventOrderStatusChanged, "auto-advance after full payment", order.UpdatedAt)
	s.emitEvent("order", order.ID, "order.status_changed", map[string]interface{}{
		"from":   string(from),
		"status": string(order.Status),
		"reason": "auto-advance after full payment",
	})

	return order, nil
}

// refundPayment оформляет возврат при отмене оплаченного заказа.
func (s *Service) refundPayment(order domain.Order, payment domain.Payment, reason string) error {
	now := time.Now().UTC()
	refundedAmount := payment.AmountCentavos
	payment.Status = domain.PaymentStatusRefunded
	payment.AmountCentavos = domain.DetermineAmountPaid(domain.PaymentStatusRefunded, order.TotalCentavos, payment.AmountCentavos)
	payment.UpdatedAt = now

	if err := s.payments.Save(payment); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordRefundIssued()
	}

	s.appendTimeline(order.ID, domain.TimelineEventPaymentRefunded, domain.FormatCentavos(refundedAmount), now)
	s.emitEvent("payment", order.ID, "payment.refunded", map[string]interface{}{
		"status":                   string(domain.PaymentStatusRefunded),
		"refunded_amount_centavos": refundedAmount,
		"reason":                   reason,
	})

	s.logger.WithFields(log.Fields{
		"order_id":        order.ID,
		"amount_centavos": refundedAmount,
	}).Info("payment refunded on cancel")

	return nil
}

func (s *Service) appendTimeline(orderID, eventType, reason string, occurred time.Time) {
	if s.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

func (s *Service) emitEvent(aggregateType, orderID, eventType string, payload map[string]interface{}) {
	if s.outbox == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = orderID
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
