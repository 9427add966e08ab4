package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
)

// TextExtractor достает распознанный текст документа.
type TextExtractor interface {
	Extract(pdfPath string) (string, error)
}

// FieldService превращает неструктурированный текст в типизированные поля.
type FieldService interface {
	ExtractFields(ctx context.Context, instructions, text string, out interface{}) error
}

// Extractor классифицирует документ и извлекает типизированные поля.
type Extractor struct {
	text   TextExtractor
	fields FieldService
}

// NewExtractor создает экстрактор документов.
func NewExtractor(text TextExtractor, fields FieldService) *Extractor {
	return &Extractor{text: text, fields: fields}
}

// Process обрабатывает один документ. Сбой извлечения не фатален:
// запись возвращается с заполненным Err и пустыми полями, остальные
// документы батча обрабатываются дальше.
func (e *Extractor) Process(ctx context.Context, pdfPath string) Record {
	record := Record{
		Filename: filepath.Base(pdfPath),
		Path:     pdfPath,
		Type:     TypeUnknown,
	}

	text, err := e.text.Extract(pdfPath)
	if err != nil {
		// Без текста классифицируем только по имени файла
		record.Type = Classify(record.Filename, "")
		record.Err = fmt.Sprintf("text extraction failed: %v", err)
		log.Printf("[EXTRACT] %s: %s", record.Filename, record.Err)
		return record
	}

	record.Type = Classify(record.Filename, text)

	fields, err := e.extractFields(ctx, record.Type, text)
	if err != nil {
		record.Err = fmt.Sprintf("field extraction failed: %v", err)
		log.Printf("[EXTRACT] %s: %s", record.Filename, record.Err)
		return record
	}
	record.Fields = fields
	return record
}

func (e *Extractor) extractFields(ctx context.Context, docType Type, text string) (Fields, error) {
	switch docType {
	case TypePassport:
		var out PassportFields
		err := e.fields.ExtractFields(ctx, passportInstructions, text, &out)
		return out, err
	case TypeCreditAgreement:
		var out CreditFields
		err := e.fields.ExtractFields(ctx, creditInstructions, text, &out)
		return out, err
	case TypeTaxNotice:
		var out TaxFields
		err := e.fields.ExtractFields(ctx, taxInstructions, text, &out)
		return out, err
	case TypeVehicleReg:
		var out VehicleRegFields
		err := e.fields.ExtractFields(ctx, vehicleInstructions, text, &out)
		return out, err
	case TypeGIBDD:
		var out GIBDDFields
		err := e.fields.ExtractFields(ctx, gibddInstructions, text, &out)
		return out, err
	case TypeEGRNExtract:
		var out EGRNExtractFields
		err := e.fields.ExtractFields(ctx, egrnExtractInstructions, text, &out)
		return out, err
	case TypeEGRNNotice:
		var out EGRNNoticeFields
		err := e.fields.ExtractFields(ctx, egrnNoticeInstructions, text, &out)
		return out, err
	case TypeInventory:
		var out InventoryFields
		err := e.fields.ExtractFields(ctx, inventoryInstructions, text, &out)
		return out, err
	case TypeCriminalRecord:
		var out CriminalRecordFields
		err := e.fields.ExtractFields(ctx, criminalInstructions, text, &out)
		return out, err
	default:
		// Нераспознанный документ сохраняет сырой текст для диагностики
		raw, _ := json.Marshal(map[string]string{"text": text})
		return UnknownFields{Raw: raw}, nil
	}
}

const passportInstructions = `Документ: паспорт гражданина РФ.
Извлеки JSON с полями: "ФИО", "Девичья_фамилия" (если по штампам или записям видно смену фамилии), "Серия", "Номер", "Дата_выдачи" (ДД.ММ.ГГГГ), "Кем_выдан", "Код_подразделения", "Дата_рождения" (ДД.ММ.ГГГГ), "Место_рождения", "Адрес_регистрации".`

const creditInstructions = `Документ: кредитный договор или договор займа.
Извлеки JSON с полями: "Кредитор" (полное название организации), "ИНН_кредитора", "Адрес_кредитора", "Дата_договора" (ДД.ММ.ГГГГ), "Номер_договора", "Сумма_кредита", "Задолженность_в_том_числе" (текущая задолженность, если указана).`

const taxInstructions = `Документ: налоговое уведомление или требование ФНС.
Извлеки JSON с полями: "Налог_сбор_или_иной_обяз_платеж" (название платежа), "Сумма_обяз_платежа", "Штрафы_пени", "Недоимка".`

const vehicleInstructions = `Документ: свидетельство о регистрации ТС или ПТС.
Извлеки JSON с полями: "Марка_модель", "VIN", "Год_выпуска", "Гос_номер", "Тип_ТС", "Стоимость", "Документ" (объект с полями "Тип" и "Дата_регистрации").`

const gibddInstructions = `Документ: справка ГИБДД о зарегистрированных транспортных средствах.
Извлеки JSON с полями: "Есть_транспорт" (true/false), "Результат" (формулировка справки, например "транспорт отсутствует"), "Транспортные_средства" (список объектов с полями "Марка_модель", "VIN", "Год_выпуска", "Гос_номер", "Тип_ТС").`

const egrnExtractInstructions = `Документ: выписка из ЕГРН о правах на недвижимое имущество.
Извлеки JSON с полями: "Есть_недвижимость" (true/false), "Объекты" (список объектов с полями "Вид", "Адрес", "Площадь", "Кадастровый_номер", "Вид_права", "Стоимость"), "сделки" (список переходов прав: объекты с полями "Дата_сделки" (ДД.ММ.ГГГГ), "Вид", "Объект", "Сумма").`

const egrnNoticeInstructions = `Документ: уведомление об отсутствии сведений в ЕГРН.
Извлеки JSON с полями: "Результат" (формулировка уведомления), "Объекты" (список, обычно пустой).`

const inventoryInstructions = `Документ: опись имущества гражданина.
Извлеки JSON с полями: "Недвижимость" (список объектов с полями "Вид", "Адрес", "Площадь", "Вид_права", "Стоимость", "Основание"), "Транспорт" (список объектов с полями "Марка_модель", "VIN", "Год_выпуска", "Гос_номер", "Тип_ТС", "Стоимость").`

const criminalInstructions = `Документ: справка о наличии (отсутствии) судимости.
Извлеки JSON с полями: "ФИО", "Есть_судимость" (true/false), "Результат" (формулировка справки), "Дата_выдачи" (ДД.ММ.ГГГГ).`
