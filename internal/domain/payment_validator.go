package domain

import "fmt"

// ValidatePaymentStatusChange проверяет, уместен ли запрошенный статус оплаты
// при фактически учтённых деньгах. Возвращает предлагаемый статус и nil либо
// *ConsistencyError с объяснением. Эталоном служит ClassifyAmount; refunded
// допускается всегда (возврат не зависит от соотношения сумм).
func ValidatePaymentStatusChange(newStatus PaymentStatus, amountCentavos, totalCentavos int64) (PaymentStatus, error) {
	correct := ClassifyAmount(amountCentavos, totalCentavos)

	if newStatus == PaymentStatusRefunded {
		return newStatus, nil
	}

	if newStatus == PaymentStatusPaid && amountCentavos < totalCentavos {
		return correct, &ConsistencyError{
			Reason: fmt.Sprintf(
				"Cannot set status to 'Paid' when amount paid (%s) is less than total (%s).",
				FormatCentavos(amountCentavos), FormatCentavos(totalCentavos),
			),
			Suggested: correct,
		}
	}

	if newStatus == PaymentStatusPending && amountCentavos > 0 {
		return correct, &ConsistencyError{
			Reason: fmt.Sprintf(
				"Cannot set status to '%s' when amount paid is %s. Use 'Partial' instead.",
				newStatus.Title(), FormatCentavos(amountCentavos),
			),
			Suggested: correct,
		}
	}

	if newStatus == PaymentStatusPartial {
		if amountCentavos <= 0 {
			return correct, &ConsistencyError{
				Reason:    "Cannot set status to 'Partial' when no payment has been made. Use 'Pending' instead.",
				Suggested: correct,
			}
		}
		if amountCentavos >= totalCentavos {
			return correct, &ConsistencyError{
				Reason:    "Cannot set status to 'Partial' when full amount is paid. Use 'Paid' instead.",
				Suggested: correct,
			}
		}
	}

	return newStatus, nil
}

// AutoDeterminePaymentStatus выводит корректный статус оплаты из суммы.
// Используется, когда оператор меняет только сумму, а не статус.
func AutoDeterminePaymentStatus(amountCentavos, totalCentavos int64) PaymentStatus {
	return ClassifyAmount(amountCentavos, totalCentavos)
}
