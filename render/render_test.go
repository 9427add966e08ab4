package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docserver/templatectx"
)

func testContext() *templatectx.Context {
	return &templatectx.Context{
		Fields: map[string]string{
			"ФИО":               "Иванов Иван Петрович",
			"Общая_сумма_долга": "533 525,98",
		},
		Tables: map[string][]map[string]string{
			"кредиторы": {
				{"Кредитор": "ПАО «Сбербанк»", "Задолженность_в_том_числе": "500 000,50"},
				{"Кредитор": "ООО МКК «А Деньги»", "Задолженность_в_том_числе": "33 525,48"},
			},
		},
	}
}

func TestFill(t *testing.T) {
	template := `Должник: {{ФИО}}
Кредиторы:
{{#кредиторы}}- {{Кредитор}}: {{Задолженность_в_том_числе}}
{{/кредиторы}}Итого: {{Общая_сумма_долга}}`

	got, err := Fill(template, testContext())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	want := `Должник: Иванов Иван Петрович
Кредиторы:
- ПАО «Сбербанк»: 500 000,50
- ООО МКК «А Деньги»: 33 525,48
Итого: 533 525,98`
	if got != want {
		t.Errorf("результат:\n%s\nожидалось:\n%s", got, want)
	}
}

func TestFillUnknownFieldBecomesEmpty(t *testing.T) {
	got, err := Fill("до {{Нет_такого_поля}} после", testContext())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if got != "до  после" {
		t.Errorf("результат = %q", got)
	}
}

func TestFillUnknownTableIsError(t *testing.T) {
	if _, err := Fill("{{#нет_таблицы}}x{{/нет_таблицы}}", testContext()); err == nil {
		t.Error("неизвестная таблица должна давать ошибку")
	}
}

func TestRenderAllIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "Заявление.txt")
	if err := os.WriteFile(good, []byte("Должник: {{ФИО}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "Нет_файла.txt")

	outDir := filepath.Join(dir, "out")
	results := RenderAll(NewTextRenderer(), []string{missing, good}, outDir, testContext())

	if len(results) != 2 {
		t.Fatalf("результатов = %d", len(results))
	}
	if results[0].Err == "" {
		t.Error("отсутствующий шаблон должен дать ошибку")
	}
	if results[1].Err != "" {
		t.Errorf("сбой соседнего шаблона затронул заполнение: %s", results[1].Err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Заявление.txt"))
	if err != nil {
		t.Fatalf("выходной файл: %v", err)
	}
	if !strings.Contains(string(data), "Иванов Иван Петрович") {
		t.Errorf("содержимое = %q", data)
	}
}
