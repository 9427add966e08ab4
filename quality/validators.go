package quality

import (
	"strings"
	"unicode"
)

// ValidateINN валидирует ИНН с проверкой контрольной суммы.
// Поддерживаются ИНН юридических лиц (10 цифр) и физических лиц (12 цифр).
func ValidateINN(inn string) bool {
	cleaned := CleanDigits(inn)

	switch len(cleaned) {
	case 10:
		return validateINN10(cleaned)
	case 12:
		return validateINN12(cleaned)
	default:
		return false
	}
}

// CleanDigits убирает пробелы и дефисы; возвращает пустую строку,
// если после очистки остались нецифровые символы.
func CleanDigits(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)

	for _, r := range cleaned {
		if !unicode.IsDigit(r) {
			return ""
		}
	}
	return cleaned
}

// validateINN10 проверяет контрольную сумму для 10-значного ИНН
func validateINN10(inn string) bool {
	coefficients := []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
	sum := 0

	for i := 0; i < 9; i++ {
		sum += int(inn[i]-'0') * coefficients[i]
	}

	check := sum % 11 % 10
	return check == int(inn[9]-'0')
}

// validateINN12 проверяет обе контрольные цифры 12-значного ИНН
func validateINN12(inn string) bool {
	coefficients1 := []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	sum1 := 0
	for i := 0; i < 10; i++ {
		sum1 += int(inn[i]-'0') * coefficients1[i]
	}
	if sum1%11%10 != int(inn[10]-'0') {
		return false
	}

	coefficients2 := []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	sum2 := 0
	for i := 0; i < 11; i++ {
		sum2 += int(inn[i]-'0') * coefficients2[i]
	}
	return sum2%11%10 == int(inn[11]-'0')
}

// ValidateOGRN валидирует ОГРН (13 цифр) или ОГРНИП (15 цифр).
func ValidateOGRN(ogrn string) bool {
	cleaned := CleanDigits(ogrn)

	switch len(cleaned) {
	case 13:
		return validateOGRNChecksum(cleaned, 11)
	case 15:
		return validateOGRNChecksum(cleaned, 13)
	default:
		return false
	}
}

// validateOGRNChecksum сверяет последнюю цифру с остатком от деления
// числа без неё на mod (11 для ОГРН, 13 для ОГРНИП).
func validateOGRNChecksum(ogrn string, mod uint64) bool {
	var body uint64
	n := len(ogrn) - 1
	for i := 0; i < n; i++ {
		body = body*10 + uint64(ogrn[i]-'0')
	}
	return int(body%mod%10) == int(ogrn[n]-'0')
}
