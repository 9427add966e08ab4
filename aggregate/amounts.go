package aggregate

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount разбирает денежную сумму из документа: "529 525,98",
// "529525.98", "10 000 руб." и подобные формы.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '.':
			b.WriteRune('.')
		case r == ' ' || r == ' ':
			// разделители тысяч
		default:
			// суффиксы вроде "руб." обрезают число
			if b.Len() > 0 {
				return parseFloat(b.String())
			}
		}
	}
	return parseFloat(b.String())
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	// Последняя точка считается десятичной, остальные выбрасываются
	if n := strings.Count(s, "."); n > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatAmount форматирует сумму для подстановки в документы:
// пробелы между тысячами, запятая перед копейками.
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	parts := strings.SplitN(s, ".", 2)

	intPart := parts[0]
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign = "-"
		intPart = intPart[1:]
	}
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	return sign + strings.Join(grouped, " ") + "," + parts[1]
}
