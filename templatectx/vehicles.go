package templatectx

import (
	"strings"

	"docserver/aggregate"
)

// Подставляется в шаблон, когда справки ГИБДД среди документов нет.
const noGIBDDNarrative = "Справка ГИБДД о зарегистрированных транспортных средствах не предоставлена."

// buildVehicles заполняет список "автомобили" и текст "Нету_гибдд".
// Состояния взаимоисключающие по справке:
//   - справки нет, документов на ТС нет: список пуст, текст подставлен;
//   - справки нет, есть СТС/ПТС: список из них, текст всё равно подставлен;
//   - справка есть и говорит об отсутствии транспорта: список пуст, текст снят;
//   - справка есть и перечисляет ТС: список из справки, текст снят.
func buildVehicles(ctx *Context, record *aggregate.DebtorRecord) {
	rows := []map[string]string{}

	if len(record.Certificates) == 0 {
		for _, v := range record.VehicleDocs {
			rows = append(rows, vehicleRow(v))
		}
		ctx.Tables["автомобили"] = rows
		ctx.Fields["Нету_гибдд"] = noGIBDDNarrative
		return
	}

	for _, cert := range record.Certificates {
		if !certReportsVehicles(cert.HasVehicles, cert.Result) {
			continue
		}
		for _, v := range cert.Vehicles {
			rows = append(rows, vehicleRow(v))
		}
	}

	ctx.Tables["автомобили"] = rows
	ctx.Fields["Нету_гибдд"] = ""
}

// certReportsVehicles трактует содержимое справки. Формулировка
// "транспорт отсутствует" перевешивает флаг: распознавание может
// выставить его неверно.
func certReportsVehicles(hasVehicles bool, result string) bool {
	lower := strings.ToLower(result)
	if strings.Contains(lower, "отсутств") || strings.Contains(lower, "не зарегистрирован") {
		return false
	}
	return hasVehicles
}
