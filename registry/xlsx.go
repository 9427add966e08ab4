package registry

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docserver/normalization"
	"docserver/quality"
)

// Колонки справочника банков ЦБ РФ (FullCoList, выгрузка XLSX).
const (
	banksNameColumn    = "bnk_name"
	banksAddressColumn = "bnk_addr"
	banksOGRNColumn    = "ogrn"
	banksINNColumn     = "inn"
)

// Колонки справочника МФО ЦБ РФ. Заголовки у ЦБ многословные,
// сверяем по вхождению ключевых слов.
const (
	mfoHeaderRow    = 5 // заголовки в 5-й строке
	mfoFirstDataRow = 6
)

// ParseBanksWorkbook читает XLSX-справочник банков ЦБ РФ.
// Заголовки в первой строке, данные со второй.
// Возвращает карту ОГРН → запись с нормализованным названием.
func ParseBanksWorkbook(path string) (map[string]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open banks workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("banks workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read banks sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("banks workbook is empty")
	}

	idx := columnIndex(rows[0])
	nameCol, okName := idx[banksNameColumn]
	ogrnCol, okOGRN := idx[banksOGRNColumn]
	if !okName || !okOGRN {
		return nil, fmt.Errorf("banks workbook misses required columns %q/%q", banksNameColumn, banksOGRNColumn)
	}
	addrCol, hasAddr := idx[banksAddressColumn]
	innCol, hasINN := idx[banksINNColumn]

	banks := make(map[string]Entry)
	for _, row := range rows[1:] {
		ogrn := quality.CleanDigits(cell(row, ogrnCol))
		rawName := strings.TrimSpace(cell(row, nameCol))
		if ogrn == "" || rawName == "" {
			continue
		}

		e := Entry{
			Name: normalization.NormalizeBankName(rawName),
			OGRN: ogrn,
		}
		if hasAddr {
			e.Address = strings.TrimSpace(cell(row, addrCol))
		}
		if hasINN {
			if inn := quality.CleanDigits(cell(row, innCol)); quality.ValidateINN(inn) {
				e.INN = inn
			}
		}
		banks[ogrn] = e
	}

	return banks, nil
}

// ParseMFOWorkbook читает XLSX-справочник МФО ЦБ РФ.
// Заголовки в 5-й строке, данные с 6-й.
// Возвращает карту ИНН → запись.
func ParseMFOWorkbook(path string) (map[string]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MFO workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("MFO workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read MFO sheet %q: %w", sheetName, err)
	}
	if len(rows) < mfoFirstDataRow {
		return nil, fmt.Errorf("MFO workbook is empty")
	}

	headers := rows[mfoHeaderRow-1]
	fullNameCol := findHeader(headers, "полное наименование")
	shortNameCol := findHeader(headers, "сокращенное наименование")
	innCol := findHeader(headers, "идентификационный номер налогоплательщика")
	addrCol := findHeader(headers, "адрес")

	if innCol < 0 || (fullNameCol < 0 && shortNameCol < 0) {
		return nil, fmt.Errorf("MFO workbook misses name or INN columns")
	}

	mfo := make(map[string]Entry)
	for _, row := range rows[mfoFirstDataRow-1:] {
		inn := quality.CleanDigits(cell(row, innCol))
		if inn == "" {
			continue
		}

		name := strings.TrimSpace(cell(row, fullNameCol))
		if name == "" {
			name = strings.TrimSpace(cell(row, shortNameCol))
		}
		if name == "" {
			continue
		}

		e := Entry{Name: name, INN: inn}
		if addrCol >= 0 {
			e.Address = strings.TrimSpace(cell(row, addrCol))
		}
		mfo[inn] = e
	}

	return mfo, nil
}

// columnIndex строит карту «заголовок → номер колонки» по первой строке.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			idx[h] = i
		}
	}
	return idx
}

// findHeader ищет колонку, заголовок которой содержит подстроку.
// Возвращает -1, если колонка не найдена.
func findHeader(headers []string, substr string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), substr) {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
