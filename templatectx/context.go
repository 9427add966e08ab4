package templatectx

import (
	"docserver/aggregate"
	"docserver/documents"
)

// Context плоский контекст для подстановки в шаблоны документов.
// Fields подставляются как {{ключ}}, Tables раскрываются в строки таблиц.
// Контекст строится заново на каждый рендер и после построения не меняется.
type Context struct {
	Fields map[string]string              `json:"fields"`
	Tables map[string][]map[string]string `json:"tables"`
}

// Build строит контекст шаблонов из записи должника.
func Build(record *aggregate.DebtorRecord) *Context {
	ctx := &Context{
		Fields: make(map[string]string),
		Tables: make(map[string][]map[string]string),
	}

	buildIdentity(ctx, record)
	buildCreditors(ctx, record)
	buildTaxes(ctx, record)
	buildVehicles(ctx, record)
	buildRealEstate(ctx, record)
	buildDeals(ctx, record)

	ctx.Fields["Общая_сумма_долга"] = record.TotalDebt
	return ctx
}

func buildIdentity(ctx *Context, record *aggregate.DebtorRecord) {
	ctx.Fields["ФИО"] = record.Full
	ctx.Fields["Фамилия"] = record.Surname
	ctx.Fields["Имя"] = record.Name
	ctx.Fields["Отчество"] = record.Patronymic
	ctx.Fields["Прежние_имена_фамилия_отчества"] = record.MaidenName
	ctx.Fields["Фамилия_инициалы"] = record.Initials
	ctx.Fields["Фамилия_инициалы_рп"] = record.InitialsGen
	ctx.Fields["Фамилия_инициалы_дп"] = record.InitialsDat
	ctx.Fields["ФИО_рп"] = record.FullGenitive
	ctx.Fields["ФИО_дп"] = record.FullDative
	ctx.Fields["ФИО_вп"] = record.FullAccusative

	if record.Passport == nil {
		return
	}
	p := record.Passport
	ctx.Fields["Серия_паспорта"] = p.Series
	ctx.Fields["Номер_паспорта"] = p.Number
	ctx.Fields["Дата_выдачи_паспорта"] = p.IssueDate
	ctx.Fields["Кем_выдан_паспорт"] = p.IssuedBy
	ctx.Fields["Код_подразделения"] = p.DivisionCode
	ctx.Fields["Дата_рождения"] = p.BirthDate
	ctx.Fields["Место_рождения"] = p.BirthPlace
	ctx.Fields["Адрес_регистрации"] = p.Address
}

func buildCreditors(ctx *Context, record *aggregate.DebtorRecord) {
	rows := make([]map[string]string, 0, len(record.Credits))
	for _, c := range record.Credits {
		rows = append(rows, map[string]string{
			"Кредитор":                  c.Creditor,
			"ИНН_кредитора":             c.CreditorINN,
			"ОГРН_кредитора":            c.CreditorOGRN,
			"Адрес_кредитора":           c.CreditorAddress,
			"Дата_договора":             c.AgreementDate,
			"Номер_договора":            c.AgreementNumber,
			"Сумма_кредита":             c.Amount,
			"Задолженность_в_том_числе": c.Outstanding,
		})
	}
	ctx.Tables["кредиторы"] = rows
}

func buildTaxes(ctx *Context, record *aggregate.DebtorRecord) {
	rows := make([]map[string]string, 0, len(record.Taxes))
	for _, t := range record.Taxes {
		rows = append(rows, map[string]string{
			"Налог_сбор_или_иной_обяз_платеж": t.Name,
			"Сумма_обяз_платежа":              t.Amount,
			"Штрафы_пени":                     t.Penalties,
			"Недоимка":                        t.Arrears,
		})
	}
	ctx.Tables["налоги"] = rows
}

func buildDeals(ctx *Context, record *aggregate.DebtorRecord) {
	rows := make([]map[string]string, 0, len(record.Deals))
	for _, d := range record.Deals {
		rows = append(rows, map[string]string{
			"Дата_сделки": d.Date,
			"Вид":         d.Kind,
			"Объект":      d.Subject,
			"Сумма":       d.Amount,
		})
	}
	ctx.Tables["сделки"] = rows
}

func vehicleRow(v documents.Vehicle) map[string]string {
	return map[string]string{
		"Марка_модель": v.MakeModel,
		"VIN":          v.VIN,
		"Год_выпуска":  v.Year,
		"Гос_номер":    v.Plate,
		"Тип_ТС":       v.Kind,
		"Стоимость":    v.Cost,
	}
}
