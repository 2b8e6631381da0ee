package domain

import "fmt"

// Деньги хранятся в сентаво (int64, два знака после запятой), чтобы все
// сравнения сумм были точными целочисленными, без плавающей точки.

// FormatCentavos форматирует сумму в сентаво для сообщений кассы ("₱600.00").
func FormatCentavos(v int64) string {
	return fmt.Sprintf("₱%.2f", float64(v)/100)
}
