package documents

import "encoding/json"

// Type тип документа должника.
type Type string

const (
	TypePassport        Type = "паспорт"
	TypeCreditAgreement Type = "кредитный_договор"
	TypeTaxNotice       Type = "налоги"
	TypeVehicleReg      Type = "свидетельство_тс"
	TypeGIBDD           Type = "справка_гибдд"
	TypeEGRNExtract     Type = "выписка_егрн"
	TypeEGRNNotice      Type = "уведомление_егрн"
	TypeInventory       Type = "опись_имущества"
	TypeCriminalRecord  Type = "справка_о_судимости"
	TypeUnknown         Type = "unknown"
)

// Fields типизированный набор полей документа.
// Каждый тип документа несёт свою собственную схему.
type Fields interface {
	documentFields()
}

// Record результат обработки одного документа.
// Неизменяем после извлечения. Err заполняется при сбое извлечения,
// список документов батча при этом не прерывается.
type Record struct {
	Filename string `json:"filename"`
	Path     string `json:"filepath"`
	Type     Type   `json:"document_type"`
	Fields   Fields `json:"data,omitempty"`
	Err      string `json:"error,omitempty"`
}

// PassportFields поля паспорта.
type PassportFields struct {
	FIO          string `json:"ФИО"`
	MaidenName   string `json:"Девичья_фамилия,omitempty"`
	Series       string `json:"Серия"`
	Number       string `json:"Номер"`
	IssueDate    string `json:"Дата_выдачи"`
	IssuedBy     string `json:"Кем_выдан"`
	DivisionCode string `json:"Код_подразделения"`
	BirthDate    string `json:"Дата_рождения"`
	BirthPlace   string `json:"Место_рождения"`
	Address      string `json:"Адрес_регистрации"`
}

// CreditFields поля кредитного договора.
type CreditFields struct {
	Creditor        string `json:"Кредитор"`
	CreditorINN     string `json:"ИНН_кредитора,omitempty"`
	CreditorAddress string `json:"Адрес_кредитора,omitempty"`
	AgreementDate   string `json:"Дата_договора"`
	AgreementNumber string `json:"Номер_договора"`
	Amount          string `json:"Сумма_кредита"`
	Outstanding     string `json:"Задолженность_в_том_числе"`
}

// TaxFields поля налогового уведомления.
type TaxFields struct {
	Name      string `json:"Налог_сбор_или_иной_обяз_платеж"`
	Amount    string `json:"Сумма_обяз_платежа"`
	Penalties string `json:"Штрафы_пени,omitempty"`
	Arrears   string `json:"Недоимка,omitempty"`
}

// VehicleDocument реквизиты документа на транспортное средство.
type VehicleDocument struct {
	Kind             string `json:"Тип"`
	RegistrationDate string `json:"Дата_регистрации,omitempty"`
}

// Vehicle транспортное средство.
type Vehicle struct {
	MakeModel string           `json:"Марка_модель"`
	VIN       string           `json:"VIN"`
	Year      string           `json:"Год_выпуска"`
	Plate     string           `json:"Гос_номер"`
	Kind      string           `json:"Тип_ТС"`
	Cost      string           `json:"Стоимость,omitempty"`
	Document  *VehicleDocument `json:"Документ,omitempty"`
}

// VehicleRegFields поля свидетельства о регистрации ТС либо ПТС.
type VehicleRegFields struct {
	Vehicle
}

// GIBDDFields поля справки ГИБДД о наличии транспорта.
type GIBDDFields struct {
	HasVehicles bool      `json:"Есть_транспорт"`
	Result      string    `json:"Результат,omitempty"`
	Vehicles    []Vehicle `json:"Транспортные_средства,omitempty"`
}

// RealEstateItem объект недвижимости.
type RealEstateItem struct {
	Kind            string `json:"Вид"`
	Address         string `json:"Адрес"`
	Area            string `json:"Площадь,omitempty"`
	CadastralNumber string `json:"Кадастровый_номер,omitempty"`
	RightKind       string `json:"Вид_права,omitempty"`
	Cost            string `json:"Стоимость,omitempty"`
	Basis           string `json:"Основание,omitempty"`
}

// Deal сделка с имуществом из истории ЕГРН.
type Deal struct {
	Date    string `json:"Дата_сделки"`
	Kind    string `json:"Вид,omitempty"`
	Subject string `json:"Объект,omitempty"`
	Amount  string `json:"Сумма,omitempty"`
}

// EGRNExtractFields поля выписки из ЕГРН.
type EGRNExtractFields struct {
	HasRealEstate bool             `json:"Есть_недвижимость"`
	Items         []RealEstateItem `json:"Объекты,omitempty"`
	Deals         []Deal           `json:"сделки,omitempty"`
}

// EGRNNoticeFields поля уведомления ЕГРН об отсутствии сведений.
type EGRNNoticeFields struct {
	Result string           `json:"Результат"`
	Items  []RealEstateItem `json:"Объекты,omitempty"`
}

// InventoryFields поля описи имущества гражданина.
type InventoryFields struct {
	RealEstate []RealEstateItem `json:"Недвижимость,omitempty"`
	Vehicles   []Vehicle        `json:"Транспорт,omitempty"`
}

// CriminalRecordFields поля справки о наличии судимости.
type CriminalRecordFields struct {
	FIO          string `json:"ФИО,omitempty"`
	HasConvictions bool `json:"Есть_судимость"`
	Result       string `json:"Результат,omitempty"`
	IssueDate    string `json:"Дата_выдачи,omitempty"`
}

// UnknownFields сырой ответ извлечения для нераспознанного документа.
// Документ сохраняется для диагностики, но в агрегацию не попадает.
type UnknownFields struct {
	Raw json.RawMessage `json:"raw,omitempty"`
}

func (PassportFields) documentFields()       {}
func (CreditFields) documentFields()         {}
func (TaxFields) documentFields()            {}
func (VehicleRegFields) documentFields()     {}
func (GIBDDFields) documentFields()          {}
func (EGRNExtractFields) documentFields()    {}
func (EGRNNoticeFields) documentFields()     {}
func (InventoryFields) documentFields()      {}
func (CriminalRecordFields) documentFields() {}
func (UnknownFields) documentFields()        {}
