package aggregate

import (
	"context"
	"strings"
	"time"

	"docserver/ai"
	"docserver/documents"
	"docserver/normalization"
	"docserver/resolver"
)

// IdentityResolver устанавливает идентичность организации-кредитора.
type IdentityResolver interface {
	Resolve(ctx context.Context, name, number string) resolver.Identity
}

// NameGenerator строит склонённые формы ФИО.
type NameGenerator interface {
	GenerateFIOFields(ctx context.Context, fio, maidenName string) ai.FIOFields
}

// CreditorNormalizer приводит распознанные названия кредиторов к каноничному виду.
type CreditorNormalizer interface {
	NormalizeCreditorNames(ctx context.Context, names []string) map[string]string
}

// Aggregator собирает результаты извлечения батча в одну запись должника.
type Aggregator struct {
	resolver   IdentityResolver
	names      NameGenerator
	normalizer CreditorNormalizer
	now        func() time.Time
}

// NewAggregator создает агрегатор. names и normalizer могут быть nil,
// тогда формы ФИО строятся детерминированным запасным вариантом,
// а названия кредиторов не нормализуются.
func NewAggregator(res IdentityResolver, names NameGenerator, normalizer CreditorNormalizer) *Aggregator {
	return &Aggregator{
		resolver:   res,
		names:      names,
		normalizer: normalizer,
		now:        time.Now,
	}
}

// Aggregate строит запись должника из записей документов одного батча.
// Детерминирован при одинаковых входах и снимке реестров.
func (a *Aggregator) Aggregate(ctx context.Context, records []documents.Record) *DebtorRecord {
	record := &DebtorRecord{
		Credits: []Credit{},
		Taxes:   []documents.TaxFields{},
		ByType:  make(map[documents.Type][]documents.Fields),
	}

	for _, doc := range records {
		if doc.Err != "" {
			record.Errors = append(record.Errors, DocError{Filename: doc.Filename, Message: doc.Err})
		}
		if doc.Fields == nil || doc.Type == documents.TypeUnknown {
			continue
		}
		record.ByType[doc.Type] = append(record.ByType[doc.Type], doc.Fields)
	}

	a.aggregateIdentity(ctx, record)
	a.aggregateCredits(ctx, record)
	a.aggregateTaxes(record)
	a.aggregateVehicles(record)
	a.aggregateRealEstate(record)
	a.aggregateDeals(record)
	a.aggregateTotals(record)

	return record
}

// aggregateIdentity выбирает ФИО и паспортные данные.
// Паспорт авторитетнее прочих документов, справка о судимости
// авторитетнее случайных упоминаний. При равном приоритете
// побеждает последний обработанный документ.
func (a *Aggregator) aggregateIdentity(ctx context.Context, record *DebtorRecord) {
	for _, fields := range record.ByType[documents.TypePassport] {
		passport := fields.(documents.PassportFields)
		if passport.FIO != "" || record.Passport == nil {
			p := passport
			record.Passport = &p
		}
	}

	for _, fields := range record.ByType[documents.TypeCriminalRecord] {
		cr := fields.(documents.CriminalRecordFields)
		c := cr
		record.CriminalRecord = &c
	}

	var fio, maiden string
	switch {
	case record.Passport != nil && record.Passport.FIO != "":
		fio = record.Passport.FIO
		maiden = record.Passport.MaidenName
	case record.CriminalRecord != nil && record.CriminalRecord.FIO != "":
		fio = record.CriminalRecord.FIO
	}
	if fio == "" {
		return
	}

	if a.names != nil {
		record.FIOFields = a.names.GenerateFIOFields(ctx, fio, maiden)
	} else {
		record.FIOFields = ai.FallbackFIOFields(fio, maiden)
	}
}

// aggregateCredits склеивает кредиты, дедуплицирует кредиторов по
// сходству названий и устанавливает идентичность через резолвер.
func (a *Aggregator) aggregateCredits(ctx context.Context, record *DebtorRecord) {
	var credits []Credit
	for _, fields := range record.ByType[documents.TypeCreditAgreement] {
		cf := fields.(documents.CreditFields)
		if strings.TrimSpace(cf.Creditor) == "" && cf.AgreementNumber == "" {
			continue
		}
		credits = append(credits, Credit{CreditFields: cf})
	}

	if a.normalizer != nil && len(credits) > 0 {
		names := make([]string, 0, len(credits))
		for _, c := range credits {
			if c.Creditor != "" {
				names = append(names, c.Creditor)
			}
		}
		normalized := a.normalizer.NormalizeCreditorNames(ctx, names)
		for i := range credits {
			if canonical, ok := normalized[credits[i].Creditor]; ok {
				credits[i].Creditor = canonical
			}
		}
	}

	record.Credits = dedupCredits(credits)

	for i := range record.Credits {
		c := &record.Credits[i]
		if c.CreditorINN != "" && c.CreditorAddress != "" {
			continue
		}
		if a.resolver == nil || c.Creditor == "" {
			continue
		}
		identity := a.resolver.Resolve(ctx, c.Creditor, c.CreditorINN)
		applyIdentity(c, identity)
	}
}

// dedupCredits объединяет записи одного кредитора: нормализованные
// названия со сходством не ниже порога считаются одной организацией.
// Первая встреченная запись сохраняет свою идентичность, атрибуты,
// заполненные ровно с одной стороны, объединяются.
func dedupCredits(credits []Credit) []Credit {
	result := []Credit{}
	for _, c := range credits {
		merged := false
		for i := range result {
			if normalization.NameSimilarity(result[i].Creditor, c.Creditor) >= normalization.DedupThreshold {
				mergeCredit(&result[i], c)
				merged = true
				break
			}
		}
		if !merged {
			result = append(result, c)
		}
	}
	return result
}

func mergeCredit(dst *Credit, src Credit) {
	fillIfEmpty(&dst.CreditorINN, src.CreditorINN)
	fillIfEmpty(&dst.CreditorAddress, src.CreditorAddress)
	fillIfEmpty(&dst.CreditorOGRN, src.CreditorOGRN)
	fillIfEmpty(&dst.AgreementDate, src.AgreementDate)
	fillIfEmpty(&dst.AgreementNumber, src.AgreementNumber)
	fillIfEmpty(&dst.Amount, src.Amount)
	fillIfEmpty(&dst.Outstanding, src.Outstanding)
}

func fillIfEmpty(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// applyIdentity переносит установленную идентичность в кредит.
// Идентичность по одному лишь названию полей не трогает.
func applyIdentity(c *Credit, identity resolver.Identity) {
	if identity.INN == "" && identity.OGRN == "" {
		return
	}
	if identity.Name != "" {
		c.Creditor = identity.Name
	}
	fillIfEmpty(&c.CreditorINN, identity.INN)
	fillIfEmpty(&c.CreditorAddress, identity.Address)
	fillIfEmpty(&c.CreditorOGRN, identity.OGRN)
}

func (a *Aggregator) aggregateTaxes(record *DebtorRecord) {
	seen := make(map[string]bool)
	for _, fields := range record.ByType[documents.TypeTaxNotice] {
		tf := fields.(documents.TaxFields)
		if tf.Name == "" && tf.Amount == "" {
			continue
		}
		key := tf.Name + "|" + tf.Amount
		if seen[key] {
			continue
		}
		seen[key] = true
		record.Taxes = append(record.Taxes, tf)
	}
}

// aggregateVehicles раскладывает сведения о транспорте по источникам.
// Дубликаты снимаются по паре (VIN или госномер, тип ТС).
func (a *Aggregator) aggregateVehicles(record *DebtorRecord) {
	for _, fields := range record.ByType[documents.TypeGIBDD] {
		record.Certificates = append(record.Certificates, fields.(documents.GIBDDFields))
	}

	seen := make(map[string]bool)
	add := func(v documents.Vehicle) {
		key := vehicleKey(v)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		record.VehicleDocs = append(record.VehicleDocs, v)
	}

	for _, fields := range record.ByType[documents.TypeVehicleReg] {
		add(fields.(documents.VehicleRegFields).Vehicle)
	}
	for _, fields := range record.ByType[documents.TypeInventory] {
		for _, v := range fields.(documents.InventoryFields).Vehicles {
			add(v)
		}
	}
}

func vehicleKey(v documents.Vehicle) string {
	id := strings.ToUpper(strings.TrimSpace(v.VIN))
	if id == "" {
		id = strings.ToUpper(strings.TrimSpace(v.Plate))
	}
	if id == "" {
		return ""
	}
	return id + "|" + strings.ToLower(strings.TrimSpace(v.Kind))
}

// aggregateRealEstate собирает объекты недвижимости по источникам.
// Внутри источника дубликаты снимаются по паре (адрес, вид объекта).
func (a *Aggregator) aggregateRealEstate(record *DebtorRecord) {
	dedup := func(items []documents.RealEstateItem) []documents.RealEstateItem {
		seen := make(map[string]bool)
		var result []documents.RealEstateItem
		for _, item := range items {
			if strings.TrimSpace(item.Address) == "" {
				continue
			}
			key := realEstateKey(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, item)
		}
		return result
	}

	var inventory, extract, notice []documents.RealEstateItem
	for _, fields := range record.ByType[documents.TypeInventory] {
		inventory = append(inventory, fields.(documents.InventoryFields).RealEstate...)
	}
	for _, fields := range record.ByType[documents.TypeEGRNExtract] {
		extract = append(extract, fields.(documents.EGRNExtractFields).Items...)
	}
	for _, fields := range record.ByType[documents.TypeEGRNNotice] {
		notice = append(notice, fields.(documents.EGRNNoticeFields).Items...)
	}

	record.InventoryRealEstate = dedup(inventory)
	record.ExtractRealEstate = dedup(extract)
	record.NoticeRealEstate = dedup(notice)
}

func realEstateKey(item documents.RealEstateItem) string {
	return strings.ToLower(strings.TrimSpace(item.Address)) + "|" + strings.ToLower(strings.TrimSpace(item.Kind))
}

// aggregateDeals собирает сделки из выписок ЕГРН за последние три года.
// Сделка без даты отбрасывается, сделка с нечитаемой датой остается:
// лучше показать лишнюю сделку, чем скрыть значимую.
func (a *Aggregator) aggregateDeals(record *DebtorRecord) {
	threshold := a.now().AddDate(-3, 0, 0)

	for _, fields := range record.ByType[documents.TypeEGRNExtract] {
		for _, deal := range fields.(documents.EGRNExtractFields).Deals {
			if strings.TrimSpace(deal.Date) == "" {
				continue
			}
			date, err := time.Parse("02.01.2006", deal.Date)
			if err == nil && date.Before(threshold) {
				continue
			}
			record.Deals = append(record.Deals, deal)
		}
	}
}

// aggregateTotals считает общую сумму долга: задолженности по кредитам
// плюс обязательные платежи. Нечисловые суммы пропускаются.
func (a *Aggregator) aggregateTotals(record *DebtorRecord) {
	var total float64
	var any bool

	for _, c := range record.Credits {
		if v, ok := ParseAmount(c.Outstanding); ok {
			total += v
			any = true
		}
	}
	for _, t := range record.Taxes {
		if v, ok := ParseAmount(t.Amount); ok {
			total += v
			any = true
		}
	}

	if any {
		record.TotalDebt = FormatAmount(total)
	}
}
