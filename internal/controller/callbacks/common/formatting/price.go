package formatting

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney форматирует сумму с валютой, без дробной части если она нулевая
func FormatMoney(amount float64, currency string) string {
	if currency == "" {
		currency = "ARS"
	}
	if amount == math.Trunc(amount) {
		return fmt.Sprintf("%s %s", groupThousands(fmt.Sprintf("%.0f", amount)), currency)
	}
	return fmt.Sprintf("%s %s", groupThousands(fmt.Sprintf("%.2f", amount)), currency)
}

// FormatBalance показывает баланс ученика: долг или предоплату
func FormatBalance(balance float64, currency string) string {
	switch {
	case balance > 0:
		return "долг " + FormatMoney(balance, currency)
	case balance < 0:
		return "предоплата " + FormatMoney(-balance, currency)
	default:
		return "0"
	}
}

// groupThousands разделяет разряды пробелом: "12500.50" -> "12 500.50"
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
