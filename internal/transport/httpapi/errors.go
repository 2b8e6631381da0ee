package httpapi

import (
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// errorResponse — единый формат ошибки API.
type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Issues  []string `json:"issues,omitempty"`
	// ValidNext подсказывает кассиру допустимые следующие статусы.
	ValidNext []statusOptionResponse `json:"valid_next,omitempty"`
	// SuggestedStatus — статус оплаты, который соответствует внесённым деньгам.
	SuggestedStatus string `json:"suggested_status,omitempty"`
}

// mapDomainError переводит доменные ошибки в HTTP-статус и тело ответа.
// Нарушения валидации и переходов отдаются как 422: запрос корректен
// синтаксически, но отвергнут бизнес-правилами.
func mapDomainError(err error) (int, errorResponse) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Code:    "validation_failed",
			Message: "request rejected by validation",
			Issues:  validationErr.Issues,
		}
	}

	var transitionErr *domain.TransitionError
	if errors.As(err, &transitionErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Code:      "invalid_transition",
			Message:   transitionErr.Error(),
			ValidNext: fromStatuses(transitionErr.ValidNext).Next,
		}
	}

	var consistencyErr *domain.ConsistencyError
	if errors.As(err, &consistencyErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Code:            "payment_inconsistency",
			Message:         consistencyErr.Reason,
			SuggestedStatus: string(consistencyErr.Suggested),
		}
	}

	switch {
	case errors.Is(err, domain.ErrUnknownOrderStatus),
		errors.Is(err, domain.ErrUnknownPaymentStatus):
		return http.StatusBadRequest, errorResponse{
			Code:    "unknown_status",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, errorResponse{
			Code:    "order_not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, errorResponse{
			Code:    "payment_not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, errorResponse{
			Code:    "customer_not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrServiceNotFound):
		return http.StatusNotFound, errorResponse{
			Code:    "service_not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, errorResponse{
			Code:    "version_conflict",
			Message: "order was modified concurrently, retry the request",
		}
	case errors.Is(err, domain.ErrRefundPending):
		// Отмена записана, возврат — нет. Кассир повторяет возврат
		// через POST /payment/status со статусом refunded.
		return http.StatusInternalServerError, errorResponse{
			Code:    "refund_pending",
			Message: "order was cancelled but the refund was not recorded, retry the refund",
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Code:    "internal_error",
		Message: "internal error",
	}
}
