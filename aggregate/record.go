package aggregate

import (
	"docserver/ai"
	"docserver/documents"
)

// Credit кредитное обязательство с установленной идентичностью кредитора.
type Credit struct {
	documents.CreditFields
	CreditorOGRN string `json:"ОГРН_кредитора,omitempty"`
}

// DocError диагностика сбоя по одному документу батча.
type DocError struct {
	Filename string `json:"filename"`
	Message  string `json:"error"`
}

// DebtorRecord агрегированная запись должника. Собирается агрегатором
// целиком в памяти и только потом отдается вызывающему, частичное
// состояние наружу не попадает.
type DebtorRecord struct {
	ai.FIOFields

	Passport *documents.PassportFields `json:"паспорт,omitempty"`

	Credits   []Credit              `json:"credits"`
	Taxes     []documents.TaxFields `json:"taxes"`
	TotalDebt string                `json:"Общая_сумма_долга"`

	// Источники сведений о транспорте хранятся раздельно:
	// построителю контекста нужно знать, есть ли справка ГИБДД
	// и что она утверждает.
	Certificates []documents.GIBDDFields `json:"справки_гибдд,omitempty"`
	VehicleDocs  []documents.Vehicle     `json:"транспортные_средства,omitempty"`

	// Недвижимость по источникам, в порядке приоритета изложения.
	InventoryRealEstate []documents.RealEstateItem `json:"недвижимость_опись,omitempty"`
	ExtractRealEstate   []documents.RealEstateItem `json:"недвижимость_егрн,omitempty"`
	NoticeRealEstate    []documents.RealEstateItem `json:"недвижимость_уведомления,omitempty"`

	CriminalRecord *documents.CriminalRecordFields `json:"справка_о_судимости,omitempty"`

	Deals []documents.Deal `json:"сделки,omitempty"`

	// Сырые результаты по типам и ошибки документов для диагностики.
	ByType map[documents.Type][]documents.Fields `json:"по_типам,omitempty"`
	Errors []DocError                            `json:"ошибки,omitempty"`
}
