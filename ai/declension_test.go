package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFallbackFIOFields(t *testing.T) {
	fields := FallbackFIOFields("Иванов Иван Петрович", "")
	if fields.Surname != "Иванов" || fields.Name != "Иван" || fields.Patronymic != "Петрович" {
		t.Errorf("части ФИО: %+v", fields)
	}
	if fields.Full != "Иванов Иван Петрович" {
		t.Errorf("ФИО = %q", fields.Full)
	}
	if fields.Initials != "Иванов И.П." {
		t.Errorf("инициалы = %q", fields.Initials)
	}
	// Падежи детерминированно не склоняются, формы остаются исходными
	if fields.FullGenitive != "Иванов Иван Петрович" || fields.FullDative != "Иванов Иван Петрович" {
		t.Errorf("склонения: %+v", fields)
	}
}

func TestFallbackFIOFieldsMaidenName(t *testing.T) {
	fields := FallbackFIOFields("Ушакова Валерия Сергеевна", "Романова")
	if fields.Full != "Ушакова (Романова) Валерия Сергеевна" {
		t.Errorf("ФИО = %q", fields.Full)
	}
	if fields.MaidenName != "Романова" {
		t.Errorf("девичья фамилия = %q", fields.MaidenName)
	}
	// Инициалы без девичьей фамилии
	if fields.Initials != "Ушакова В.С." {
		t.Errorf("инициалы = %q", fields.Initials)
	}
}

func TestFallbackFIOFieldsShort(t *testing.T) {
	fields := FallbackFIOFields("Иванов", "")
	if fields.Surname != "Иванов" || fields.Initials != "Иванов" {
		t.Errorf("короткое ФИО: %+v", fields)
	}
}

func TestGenerateFIOFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse(`{
			"Фамилия": "Иванов",
			"Имя": "Иван",
			"Отчество": "Петрович",
			"Прежние_имена_фамилия_отчества": "",
			"ФИО": "Иванов Иван Петрович",
			"Фамилия_инициалы": "Иванов И.П.",
			"Фамилия_инициалы_рп": "Иванова И.П.",
			"Фамилия_инициалы_дп": "Иванову И.П.",
			"ФИО_рп": "Иванова Ивана Петровича",
			"ФИО_дп": "Иванову Ивану Петровичу",
			"ФИО_вп": "Иванова Ивана Петровича"
		}`)))
	}))
	defer srv.Close()

	fields := NewClient(testConfig(srv.URL)).GenerateFIOFields(context.Background(), "Иванов Иван Петрович", "")
	if fields.FullGenitive != "Иванова Ивана Петровича" {
		t.Errorf("ФИО_рп = %q", fields.FullGenitive)
	}
	if fields.InitialsDat != "Иванову И.П." {
		t.Errorf("Фамилия_инициалы_дп = %q", fields.InitialsDat)
	}
}

func TestGenerateFIOFieldsFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	fields := NewClient(testConfig(srv.URL)).GenerateFIOFields(context.Background(), "Иванов Иван Петрович", "")
	if fields.Full != "Иванов Иван Петрович" {
		t.Errorf("фолбэк не сработал: %+v", fields)
	}
}

func TestNormalizeCreditorNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse(`{"сбербанк пао": "ПАО «Сбербанк»"}`)))
	}))
	defer srv.Close()

	normalized := NewClient(testConfig(srv.URL)).NormalizeCreditorNames(context.Background(), []string{"сбербанк пао", "ООО «Ромашка»"})
	if normalized["сбербанк пао"] != "ПАО «Сбербанк»" {
		t.Errorf("нормализация = %q", normalized["сбербанк пао"])
	}
	// Название, которое модель не вернула, остаётся как есть
	if normalized["ООО «Ромашка»"] != "ООО «Ромашка»" {
		t.Errorf("нетронутое название = %q", normalized["ООО «Ромашка»"])
	}
}
