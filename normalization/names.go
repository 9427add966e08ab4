package normalization

import (
	"regexp"
	"strings"
)

// Пороги схожести подобраны эмпирически на реальных пакетах документов.
const (
	// DedupThreshold минимальная схожесть нормализованных названий,
	// при которой два кредитора считаются одной организацией.
	DedupThreshold = 0.85

	// LookupAcceptThreshold минимальная схожесть запроса и найденной
	// организации, при которой результат внешнего поиска принимается.
	LookupAcceptThreshold = 0.5
)

// longFormReplacements полные формы ОПФ, которые приводятся к аббревиатурам
// до удаления. Порядок важен: более длинные формы раньше.
var longFormReplacements = []struct {
	from string
	to   string
}{
	{"ОБЩЕСТВО С ОГРАНИЧЕННОЙ ОТВЕТСТВЕННОСТЬЮ", "ООО"},
	{"ПУБЛИЧНОЕ АКЦИОНЕРНОЕ ОБЩЕСТВО", "ПАО"},
	{"ОТКРЫТОЕ АКЦИОНЕРНОЕ ОБЩЕСТВО", "ОАО"},
	{"ЗАКРЫТОЕ АКЦИОНЕРНОЕ ОБЩЕСТВО", "ЗАО"},
	{"АКЦИОНЕРНОЕ ОБЩЕСТВО", "АО"},
	{"МИКРОКРЕДИТНАЯ КОМПАНИЯ", "МКК"},
	{"МИКРОФИНАНСОВАЯ КОМПАНИЯ", "МФК"},
	{"МИКРОФИНАНСОВАЯ ОРГАНИЗАЦИЯ", "МФО"},
}

var (
	quoteRe     = regexp.MustCompile("[«»\"'`“”]")
	trailingOPF = regexp.MustCompile(`\(([А-ЯЁ]+)\)\s*$`)
)

// opfTokens аббревиатуры ОПФ, отбрасываемые при сравнении названий.
// Удаление токенами, а не регулярным выражением: \b в RE2 понимает
// только ASCII и не видит границ кириллических слов.
var opfTokens = map[string]bool{
	"ООО": true, "АО": true, "ПАО": true, "ОАО": true, "ЗАО": true, "НКО": true,
}

// NormalizeOrgName приводит название организации к виду для сравнения:
// верхний регистр, без кавычек, без токенов ОПФ, одиночные пробелы.
// Маркеры вида деятельности (МКК, МФК, БАНК и т.д.) сохраняются —
// они значимы при сравнении финансовых организаций.
func NormalizeOrgName(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))

	for _, r := range longFormReplacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	s = quoteRe.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !opfTokens[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// financialMarkers подстроки, по которым название опознаётся как
// финансовая организация.
var financialMarkers = []string{
	"БАНК", "МКК", "МФК", "МФО", "КРЕДИТ", "ЗАЙМ", "ФИНАНС", "СФО",
}

// HasFinancialMarker сообщает, содержит ли нормализованное название
// маркер финансовой организации.
func HasFinancialMarker(normalized string) bool {
	for _, marker := range financialMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

// nonFinancialStopWords подстроки, означающие заведомо нефинансовую
// организацию (полиция, аптеки, медицина, администрации и пр.).
var nonFinancialStopWords = []string{
	"ОВД", "ПОЛИЦИЯ", "МВД", "АПТЕК", "СТРОЙ", "МЕДИЦИН", "ПОЛИКЛИНИК",
	"ШКОЛА", "БОЛЬНИЦ", "МУП", "ГУП", "АДМИНИСТРАЦИЯ", "УПРАВЛЕНИЕ",
}

// HasStopWord сообщает, содержит ли нормализованное название стоп-слово
// нефинансовой организации.
func HasStopWord(normalized string) bool {
	for _, word := range nonFinancialStopWords {
		if strings.Contains(normalized, word) {
			return true
		}
	}
	return false
}

// NormalizeBankName приводит название банка из справочника ЦБ к формату
// документов: ОПФ впереди, основное название в «ёлочках».
//
//	АКБ "Русский Трастовый Банк" (АО) → АО АКБ «Русский Трастовый Банк»
//	ООО КБ "Альтайкапиталбанк" (ООО)  → ООО КБ «Альтайкапиталбанк»
func NormalizeBankName(raw string) string {
	name := strings.TrimSpace(raw)

	// ОПФ в скобках в конце имеет приоритет
	var opfSuffix string
	if m := trailingOPF.FindStringSubmatch(name); m != nil {
		opfSuffix = m[1]
		name = strings.TrimSpace(trailingOPF.ReplaceAllString(name, ""))
	}

	var opfPrefix string
	if fields := strings.Fields(name); len(fields) > 1 {
		switch fields[0] {
		case "ПАО", "АО", "ООО", "ОАО", "ЗАО", "НКО":
			opfPrefix = fields[0]
			name = strings.TrimSpace(strings.TrimPrefix(name, fields[0]))
		}
	}

	finalOPF := opfSuffix
	if finalOPF == "" {
		finalOPF = opfPrefix
	}

	name = strings.ReplaceAll(name, `"`, "")
	if !strings.Contains(name, "«") {
		// Кавычки ставим вокруг части после служебных слов (КБ, АКБ и т.п.)
		name = quoteCore(name)
	}

	if finalOPF != "" {
		return finalOPF + " " + name
	}
	return name
}

// quoteCore заключает в «ёлочки» основное название, оставляя ведущие
// служебные аббревиатуры (КБ, АКБ, Банк) снаружи.
func quoteCore(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}

	lead := 0
	for lead < len(fields)-1 {
		switch fields[lead] {
		case "КБ", "АКБ", "БАНК", "Банк":
			lead++
			continue
		}
		break
	}

	core := strings.Join(fields[lead:], " ")
	if lead == 0 {
		return "«" + core + "»"
	}
	return strings.Join(fields[:lead], " ") + " «" + core + "»"
}
