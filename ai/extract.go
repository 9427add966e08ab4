package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

const extractSystemPrompt = "Ты помощник для извлечения структурированных данных из распознанных документов. Отвечай только в формате JSON. Если поле не найдено в тексте, верни для него пустую строку."

// ExtractFields извлекает структурированные поля из текста документа.
// instructions описывает тип документа и нужные поля, результат
// декодируется в out. Текст обрезается, чтобы не выходить за контекст модели.
func (c *Client) ExtractFields(ctx context.Context, instructions, text string, out interface{}) error {
	const maxTextLen = 12000
	runes := []rune(text)
	if len(runes) > maxTextLen {
		text = string(runes[:maxTextLen])
	}

	prompt := fmt.Sprintf("%s\n\nТекст документа:\n%s\n\nВерни ТОЛЬКО JSON без комментариев и markdown форматирования.", instructions, text)

	raw, err := c.ChatJSON(ctx, extractSystemPrompt, prompt)
	if err != nil {
		return fmt.Errorf("extraction request failed: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode extraction result: %w", err)
	}
	return nil
}
