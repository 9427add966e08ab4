package templatectx

import (
	"strings"
	"testing"

	"docserver/aggregate"
	"docserver/ai"
	"docserver/documents"
)

func TestBuildVehiclesNoDocumentsAtAll(t *testing.T) {
	ctx := Build(&aggregate.DebtorRecord{})

	if len(ctx.Tables["автомобили"]) != 0 {
		t.Errorf("список ТС должен быть пуст: %+v", ctx.Tables["автомобили"])
	}
	if ctx.Fields["Нету_гибдд"] == "" {
		t.Error("текст об отсутствии справки должен подставиться")
	}
}

func TestBuildVehiclesRegistrationWithoutCertificate(t *testing.T) {
	ctx := Build(&aggregate.DebtorRecord{
		VehicleDocs: []documents.Vehicle{
			{MakeModel: "ВАЗ 11183 Lada Kalina", VIN: "XTA11183080124632", Plate: "M946MO174", Kind: "легковой"},
		},
	})

	if len(ctx.Tables["автомобили"]) != 1 {
		t.Fatalf("автомобилей = %d", len(ctx.Tables["автомобили"]))
	}
	// Без справки текст подставляется даже при наличии СТС
	if ctx.Fields["Нету_гибдд"] == "" {
		t.Error("текст об отсутствии справки должен подставиться")
	}
}

func TestBuildVehiclesCertificateSaysNoTransport(t *testing.T) {
	ctx := Build(&aggregate.DebtorRecord{
		Certificates: []documents.GIBDDFields{
			{HasVehicles: false, Result: "транспорт отсутствует"},
		},
		VehicleDocs: []documents.Vehicle{
			{MakeModel: "Lada Granta", VIN: "XTAGFK330JY123456", Kind: "легковой"},
		},
	})

	if len(ctx.Tables["автомобили"]) != 0 {
		t.Errorf("справка об отсутствии должна обнулять список: %+v", ctx.Tables["автомобили"])
	}
	if ctx.Fields["Нету_гибдд"] != "" {
		t.Error("при наличии справки текст должен сниматься")
	}
}

func TestBuildVehiclesCertificateListsVehicles(t *testing.T) {
	ctx := Build(&aggregate.DebtorRecord{
		Certificates: []documents.GIBDDFields{
			{
				HasVehicles: true,
				Vehicles: []documents.Vehicle{
					{MakeModel: "Lada Granta", VIN: "XTAGFK330JY123456", Plate: "А123БВ777", Kind: "Легковой"},
				},
			},
		},
	})

	rows := ctx.Tables["автомобили"]
	if len(rows) != 1 || rows[0]["VIN"] != "XTAGFK330JY123456" {
		t.Errorf("автомобили: %+v", rows)
	}
	if ctx.Fields["Нету_гибдд"] != "" {
		t.Error("при наличии справки текст должен сниматься")
	}
}

func TestBuildVehiclesWordingBeatsFlag(t *testing.T) {
	// Распознавание выставило флаг, но формулировка говорит об отсутствии
	ctx := Build(&aggregate.DebtorRecord{
		Certificates: []documents.GIBDDFields{
			{HasVehicles: true, Result: "транспортные средства не зарегистрированы"},
		},
	})

	if len(ctx.Tables["автомобили"]) != 0 {
		t.Errorf("список: %+v", ctx.Tables["автомобили"])
	}
}

func TestBuildRealEstateNarrativeUnique(t *testing.T) {
	flat := documents.RealEstateItem{Kind: "квартира", Address: "г. Москва, ул. Ленина 1, кв 5", Area: "50 кв.м."}
	land := documents.RealEstateItem{Kind: "земельный участок", Address: "Московская обл, д. Простоквашино"}

	ctx := Build(&aggregate.DebtorRecord{
		InventoryRealEstate: []documents.RealEstateItem{flat, land},
		ExtractRealEstate:   []documents.RealEstateItem{flat}, // дубль из выписки
	})

	narrative := ctx.Fields["Недвижимое_имущество"]
	if narrative == "" || narrative == noRealEstateNarrative {
		t.Fatalf("текст = %q", narrative)
	}
	if n := strings.Count(narrative, "ул. Ленина 1"); n != 1 {
		t.Errorf("адрес встречается %d раз", n)
	}

	if len(ctx.Tables["квартиры"]) != 1 {
		t.Errorf("квартиры: %+v", ctx.Tables["квартиры"])
	}
	if len(ctx.Tables["земельные_участки"]) != 1 {
		t.Errorf("земельные участки: %+v", ctx.Tables["земельные_участки"])
	}
}

func TestBuildRealEstateEmpty(t *testing.T) {
	ctx := Build(&aggregate.DebtorRecord{})
	if ctx.Fields["Недвижимое_имущество"] != noRealEstateNarrative {
		t.Errorf("текст = %q", ctx.Fields["Недвижимое_имущество"])
	}
}

func TestBuildIdentityAndTables(t *testing.T) {
	record := &aggregate.DebtorRecord{
		FIOFields: ai.FIOFields{
			Full:         "Иванов Иван Петрович",
			Surname:      "Иванов",
			Initials:     "Иванов И.П.",
			FullGenitive: "Иванова Ивана Петровича",
		},
		Passport: &documents.PassportFields{Series: "4510", Number: "123456"},
		Credits: []aggregate.Credit{
			{CreditFields: documents.CreditFields{Creditor: "ПАО «Сбербанк»", CreditorINN: "7707083893", Outstanding: "500 000,50"}},
		},
		Taxes: []documents.TaxFields{
			{Name: "Транспортный налог", Amount: "4 000,00"},
		},
		TotalDebt: "504 000,50",
	}

	ctx := Build(record)
	if ctx.Fields["ФИО_рп"] != "Иванова Ивана Петровича" {
		t.Errorf("ФИО_рп = %q", ctx.Fields["ФИО_рп"])
	}
	if ctx.Fields["Серия_паспорта"] != "4510" {
		t.Errorf("серия = %q", ctx.Fields["Серия_паспорта"])
	}
	if ctx.Fields["Общая_сумма_долга"] != "504 000,50" {
		t.Errorf("сумма = %q", ctx.Fields["Общая_сумма_долга"])
	}

	creditors := ctx.Tables["кредиторы"]
	if len(creditors) != 1 || creditors[0]["ИНН_кредитора"] != "7707083893" {
		t.Errorf("кредиторы: %+v", creditors)
	}
	taxes := ctx.Tables["налоги"]
	if len(taxes) != 1 || taxes[0]["Сумма_обяз_платежа"] != "4 000,00" {
		t.Errorf("налоги: %+v", taxes)
	}
}
