package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

const normalizeSystemPrompt = "Ты помощник для нормализации названий российских кредитных организаций. Отвечай только в формате JSON."

// NormalizeCreditorNames приводит распознанные названия кредиторов
// к каноничному виду: организационно-правовая форма спереди, название
// в кавычках «ёлочках», без обрывков распознавания.
// Ошибка модели не фатальна: не нормализованные названия остаются как есть.
func (c *Client) NormalizeCreditorNames(ctx context.Context, names []string) map[string]string {
	result := make(map[string]string, len(names))
	for _, name := range names {
		result[name] = name
	}
	if len(names) == 0 {
		return result
	}

	var list strings.Builder
	for i, name := range names {
		fmt.Fprintf(&list, "%d. %s\n", i+1, name)
	}

	prompt := fmt.Sprintf(`Нормализуй названия кредитных организаций из документов должника.
Названия распознаны со сканов и могут содержать ошибки распознавания.

Правила:
1. Организационно-правовая форма (ПАО, АО, ООО) ставится перед названием
2. Название берётся в кавычки «ёлочки»
3. Очевидные опечатки распознавания исправляются
4. Если название не похоже на организацию, верни его без изменений

Названия:
%s
Верни ТОЛЬКО JSON вида {"исходное название": "нормализованное название", ...} без комментариев и markdown форматирования.`, list.String())

	raw, err := c.ChatJSON(ctx, normalizeSystemPrompt, prompt)
	if err != nil {
		log.Printf("[AI] creditor normalization failed: %v", err)
		return result
	}

	var normalized map[string]string
	if err := json.Unmarshal(raw, &normalized); err != nil {
		log.Printf("[AI] failed to decode normalization result: %v", err)
		return result
	}

	for original, canonical := range normalized {
		canonical = strings.TrimSpace(canonical)
		if _, known := result[original]; known && canonical != "" {
			result[original] = canonical
		}
	}
	return result
}
