package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// FIOFields все производные формы ФИО для подстановки в шаблоны.
type FIOFields struct {
	Surname        string `json:"Фамилия"`
	Name           string `json:"Имя"`
	Patronymic     string `json:"Отчество"`
	MaidenName     string `json:"Прежние_имена_фамилия_отчества"`
	Full           string `json:"ФИО"`
	Initials       string `json:"Фамилия_инициалы"`
	InitialsGen    string `json:"Фамилия_инициалы_рп"`
	InitialsDat    string `json:"Фамилия_инициалы_дп"`
	FullGenitive   string `json:"ФИО_рп"`
	FullDative     string `json:"ФИО_дп"`
	FullAccusative string `json:"ФИО_вп"`
}

const fioSystemPrompt = "Ты помощник для обработки русских ФИО и склонения по падежам. Отвечай только в формате JSON."

// GenerateFIOFields склоняет ФИО по падежам и строит формы с инициалами.
// При девичьей фамилии полные формы несут её в скобках после склонённой
// фамилии, формы с инициалами девичью фамилию не содержат.
// Ошибка модели не фатальна: возвращается детерминированный запасной
// вариант, где склоняемые формы равны исходной строке.
func (c *Client) GenerateFIOFields(ctx context.Context, fio, maidenName string) FIOFields {
	raw, err := c.ChatJSON(ctx, fioSystemPrompt, fioPrompt(fio, maidenName))
	if err != nil {
		log.Printf("[FIO] generation failed for %q: %v", fio, err)
		return FallbackFIOFields(fio, maidenName)
	}

	var fields FIOFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		log.Printf("[FIO] failed to decode model response for %q: %v", fio, err)
		return FallbackFIOFields(fio, maidenName)
	}
	if fields.Full == "" {
		fields.Full = composeFull(fio, maidenName)
	}
	return fields
}

// FallbackFIOFields строит поля без модели. Склонять по падежам
// детерминированно нельзя, поэтому склоняемые формы остаются
// исходной строкой, а части ФИО берутся разбиением по пробелам.
func FallbackFIOFields(fio, maidenName string) FIOFields {
	fio = strings.TrimSpace(fio)
	full := composeFull(fio, maidenName)

	fields := FIOFields{
		MaidenName:     maidenName,
		Full:           full,
		Initials:       fio,
		InitialsGen:    fio,
		InitialsDat:    fio,
		FullGenitive:   full,
		FullDative:     full,
		FullAccusative: full,
	}

	parts := strings.Fields(fio)
	if len(parts) > 0 {
		fields.Surname = parts[0]
	}
	if len(parts) > 1 {
		fields.Name = parts[1]
	}
	if len(parts) > 2 {
		fields.Patronymic = strings.Join(parts[2:], " ")
	}
	if len(parts) == 3 {
		fields.Initials = initialsForm(parts)
		fields.InitialsGen = fields.Initials
		fields.InitialsDat = fields.Initials
	}
	return fields
}

// composeFull вставляет девичью фамилию в скобках после текущей.
func composeFull(fio, maidenName string) string {
	if maidenName == "" {
		return fio
	}
	parts := strings.Fields(fio)
	if len(parts) < 2 {
		return fio
	}
	return fmt.Sprintf("%s (%s) %s", parts[0], maidenName, strings.Join(parts[1:], " "))
}

// initialsForm строит форму "Иванов И.П." из трёх частей ФИО.
func initialsForm(parts []string) string {
	nameInitial := []rune(parts[1])
	patrInitial := []rune(parts[2])
	if len(nameInitial) == 0 || len(patrInitial) == 0 {
		return strings.Join(parts, " ")
	}
	return fmt.Sprintf("%s %s.%s.", parts[0], string(nameInitial[0]), string(patrInitial[0]))
}

func fioPrompt(fio, maidenName string) string {
	var maidenContext string
	if maidenName != "" {
		maidenContext = fmt.Sprintf(`
КРИТИЧЕСКИ ВАЖНО, У ЧЕЛОВЕКА ЕСТЬ ДЕВИЧЬЯ ФАМИЛИЯ: %q

ПРАВИЛА:
1. Поле "Фамилия" = текущая фамилия БЕЗ девичьей
2. Поле "Прежние_имена_фамилия_отчества" = %q
3. Поле "ФИО" = Фамилия (Девичья_фамилия) Имя Отчество
   Пример: "Ушакова (Романова) Валерия Сергеевна"
4. Все склонения (ФИО_рп, ФИО_дп, ФИО_вп) тоже содержат девичью фамилию в скобках,
   девичья фамилия склоняется вместе с остальными частями:
   ФИО_рп: "Ушаковой (Романовой) Валерии Сергеевны"
   ФИО_дп: "Ушаковой (Романовой) Валерии Сергеевне"
   ФИО_вп: "Ушакову (Романову) Валерию Сергеевну"
5. Формы с инициалами девичью фамилию НЕ содержат`, maidenName, maidenName)
	} else {
		maidenContext = `
ДЕВИЧЬЕЙ ФАМИЛИИ НЕТ:
Поле "Прежние_имена_фамилия_отчества" = ""
Поле "ФИО" = обычный формат "Фамилия Имя Отчество" без скобок`
	}

	return fmt.Sprintf(`Разбери ФИО %q и верни JSON с полями:
%s

1. Фамилия
2. Имя
3. Отчество
4. Прежние_имена_фамилия_отчества
5. ФИО
6. Фамилия_инициалы, формат "Иванов И.П."
7. Фамилия_инициалы_рп, родительный падеж "Иванова И.П."
8. Фамилия_инициалы_дп, дательный падеж "Иванову И.П."
9. ФИО_рп, полное ФИО в родительном падеже
10. ФИО_дп, полное ФИО в дательном падеже
11. ФИО_вп, полное ФИО в винительном падеже

Верни ТОЛЬКО JSON без комментариев и markdown форматирования.`, fio, maidenContext)
}
