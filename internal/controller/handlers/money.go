package handlers

import (
	"strconv"
	"strings"

	"github.com/Freeeeeet/coach_bot/internal/service"
)

// parseMoney разбирает сумму вида "5000", "5 000", "12,50" или "20 USD".
// Без валюты возвращает валюту по умолчанию.
func parseMoney(input string) (float64, string, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return 0, "", &service.ValidationError{Field: "amount", Message: "введите сумму, например 5000"}
	}

	currency := service.DefaultCurrency
	if last := fields[len(fields)-1]; len(fields) > 1 && isCurrencyCode(last) {
		currency = strings.ToUpper(last)
		fields = fields[:len(fields)-1]
	}

	number := strings.ReplaceAll(strings.Join(fields, ""), ",", ".")
	amount, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, "", &service.ValidationError{Field: "amount", Message: "не удалось разобрать сумму, пример: 5000 или 20 USD"}
	}
	if amount < 0 {
		return 0, "", &service.ValidationError{Field: "amount", Message: "сумма не может быть отрицательной"}
	}
	return amount, currency, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
