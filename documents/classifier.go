package documents

import "strings"

// classRule правило классификации: документ получает тип,
// если имя файла или текст содержит любой из маркеров.
type classRule struct {
	docType  Type
	filename []string
	content  []string
}

// Правила проверяются по порядку, первое совпадение выигрывает.
// Справка ГИБДД стоит раньше свидетельства ТС: в её тексте тоже
// встречаются марки и госномера.
var classRules = []classRule{
	{
		docType:  TypeGIBDD,
		filename: []string{"гибдд", "гаи"},
		content:  []string{"гибдд", "госавтоинспекц"},
	},
	{
		docType:  TypeVehicleReg,
		filename: []string{"стс", "птс", "свидетельство_тс", "регистрации_тс"},
		content:  []string{"свидетельство о регистрации тс", "паспорт транспортного средства"},
	},
	{
		docType:  TypeCriminalRecord,
		filename: []string{"судимост"},
		content:  []string{"о наличии (отсутствии) судимости", "судимост"},
	},
	{
		docType:  TypeEGRNNotice,
		filename: []string{"уведомлени"},
		content:  []string{"уведомление об отсутствии в едином государственном реестре недвижимости"},
	},
	{
		docType:  TypeEGRNExtract,
		filename: []string{"егрн", "выписка"},
		content:  []string{"единого государственного реестра недвижимости", "егрн"},
	},
	{
		docType:  TypeInventory,
		filename: []string{"опись"},
		content:  []string{"опись имущества гражданина"},
	},
	{
		docType:  TypePassport,
		filename: []string{"паспорт"},
		content:  []string{"паспорт выдан", "код подразделения"},
	},
	{
		docType:  TypeTaxNotice,
		filename: []string{"налог", "фнс"},
		content:  []string{"налоговое уведомление", "сумма налога", "обязательный платеж"},
	},
	{
		docType:  TypeCreditAgreement,
		filename: []string{"кредит", "займ", "договор"},
		content:  []string{"кредитный договор", "договор займа", "договор потребительского кредита", "индивидуальные условия"},
	},
}

// Classify определяет тип документа по имени файла и тексту.
// Сначала проверяются имена файлов всех правил: имя надёжнее
// распознанного текста. Несовпавший документ получает TypeUnknown,
// ошибок классификация не возвращает.
func Classify(filename, text string) Type {
	name := strings.ToLower(filename)
	content := strings.ToLower(text)

	for _, rule := range classRules {
		if matchesAny(name, rule.filename) {
			return rule.docType
		}
	}
	for _, rule := range classRules {
		if matchesAny(content, rule.content) {
			return rule.docType
		}
	}
	return TypeUnknown
}

func matchesAny(s string, markers []string) bool {
	if s == "" {
		return false
	}
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
