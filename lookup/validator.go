package lookup

import (
	"fmt"

	"docserver/normalization"
	"docserver/quality"
)

// ValidationResult итог проверки кандидата от внешнего поиска.
type ValidationResult struct {
	Accepted   bool
	Similarity float64
	Reason     string
}

// Validate решает, принять ли кандидата за искомую организацию.
// Поиск на сайте нечёткий и по редкому запросу возвращает первую попавшуюся
// организацию региона, поэтому все проверки обязательны:
// сходство названий, стоп-слова, согласованность финансовых маркеров,
// контрольная сумма ИНН.
func Validate(query string, cand *Candidate) ValidationResult {
	if cand == nil {
		return ValidationResult{Reason: "кандидат отсутствует"}
	}

	if cand.INN != "" && !quality.ValidateINN(cand.INN) {
		return ValidationResult{Reason: fmt.Sprintf("ИНН %s не проходит контрольную сумму", cand.INN)}
	}

	// Безымянный кандидат (слой сырого скана) отклоняется:
	// сравнивать названия не с чем, одного ИНН недостаточно.
	if cand.Name == "" {
		return ValidationResult{Reason: "кандидат без названия, сверка невозможна"}
	}

	// Стоп-слова и финансовые маркеры сверяются по нормализованным
	// названиям: полные формы ОПФ свёрнуты, регистр не влияет.
	normQuery := normalization.NormalizeOrgName(query)
	normName := normalization.NormalizeOrgName(cand.Name)

	if normalization.HasStopWord(normName) {
		return ValidationResult{Reason: fmt.Sprintf("стоп-слово в названии %q", cand.Name)}
	}

	// Запрос про финансовую организацию не должен разрешаться
	// в нефинансовую, и наоборот.
	if normalization.HasFinancialMarker(normQuery) && !normalization.HasFinancialMarker(normName) {
		return ValidationResult{Reason: fmt.Sprintf("запрос финансовый, найдено нефинансовое %q", cand.Name)}
	}

	sim := normalization.Ratio(normQuery, normName)
	if sim < normalization.LookupAcceptThreshold {
		return ValidationResult{
			Similarity: sim,
			Reason:     fmt.Sprintf("сходство %.2f ниже порога %.2f", sim, normalization.LookupAcceptThreshold),
		}
	}

	return ValidationResult{Accepted: true, Similarity: sim}
}
