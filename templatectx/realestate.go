package templatectx

import (
	"fmt"
	"strings"

	"docserver/aggregate"
	"docserver/documents"
)

const noRealEstateNarrative = "Недвижимое имущество за должником не зарегистрировано."

// buildRealEstate формирует текст "Недвижимое_имущество" и таблицы описи.
// Источники идут в порядке приоритета: опись имущества, выписка ЕГРН,
// уведомления ЕГРН. Пара (адрес, вид) встречается в тексте не более
// одного раза независимо от числа упоминаний в документах.
func buildRealEstate(ctx *Context, record *aggregate.DebtorRecord) {
	seen := make(map[string]bool)
	var unique []documents.RealEstateItem

	for _, source := range [][]documents.RealEstateItem{
		record.InventoryRealEstate,
		record.ExtractRealEstate,
		record.NoticeRealEstate,
	} {
		for _, item := range source {
			key := strings.ToLower(strings.TrimSpace(item.Address)) + "|" + strings.ToLower(strings.TrimSpace(item.Kind))
			if seen[key] {
				continue
			}
			seen[key] = true
			unique = append(unique, item)
		}
	}

	ctx.Fields["Недвижимое_имущество"] = realEstateNarrative(unique)
	buildInventoryTables(ctx, unique)
}

func realEstateNarrative(items []documents.RealEstateItem) string {
	if len(items) == 0 {
		return noRealEstateNarrative
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString(item.Kind)
		if item.Area != "" {
			fmt.Fprintf(&b, " площадью %s", item.Area)
		}
		fmt.Fprintf(&b, ", расположенная по адресу: %s", item.Address)
		if item.RightKind != "" {
			fmt.Fprintf(&b, " (%s)", item.RightKind)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "; ")
}

// buildInventoryTables раскладывает объекты по таблицам описи имущества.
func buildInventoryTables(ctx *Context, items []documents.RealEstateItem) {
	tables := map[string][]map[string]string{
		"квартиры":          {},
		"жилые_дома":        {},
		"земельные_участки": {},
		"иная_недвижимость": {},
	}

	for _, item := range items {
		row := map[string]string{
			"Вид":               item.Kind,
			"Адрес":             item.Address,
			"Площадь":           item.Area,
			"Кадастровый_номер": item.CadastralNumber,
			"Вид_права":         item.RightKind,
			"Стоимость":         item.Cost,
			"Основание":         item.Basis,
		}
		name := inventoryTable(item.Kind)
		tables[name] = append(tables[name], row)
	}

	for name, rows := range tables {
		ctx.Tables[name] = rows
	}
}

func inventoryTable(kind string) string {
	lower := strings.ToLower(kind)
	switch {
	case strings.Contains(lower, "квартир"):
		return "квартиры"
	case strings.Contains(lower, "дом"):
		return "жилые_дома"
	case strings.Contains(lower, "земельн"):
		return "земельные_участки"
	default:
		return "иная_недвижимость"
	}
}
