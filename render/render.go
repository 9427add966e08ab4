package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docserver/templatectx"
)

// Renderer заполняет один шаблон контекстом.
type Renderer interface {
	Render(templatePath, outputPath string, ctx *templatectx.Context) error
}

// Result итог заполнения одного шаблона.
type Result struct {
	Template string `json:"template"`
	Output   string `json:"output,omitempty"`
	Err      string `json:"error,omitempty"`
}

// RenderAll заполняет все шаблоны набора. Сбой одного шаблона
// изолирован: остальные шаблоны всё равно заполняются.
func RenderAll(r Renderer, templates []string, outputDir string, ctx *templatectx.Context) []Result {
	results := make([]Result, 0, len(templates))

	for _, tmpl := range templates {
		outputPath := filepath.Join(outputDir, filepath.Base(tmpl))
		result := Result{Template: filepath.Base(tmpl), Output: outputPath}

		if err := r.Render(tmpl, outputPath, ctx); err != nil {
			result.Output = ""
			result.Err = err.Error()
			log.Printf("[RENDER] %s: %v", filepath.Base(tmpl), err)
		}
		results = append(results, result)
	}
	return results
}

// TextRenderer заполняет текстовые шаблоны: {{ключ}} подставляется из
// полей контекста, блок {{#таблица}}...{{/таблица}} повторяется на
// каждую строку таблицы.
type TextRenderer struct{}

// NewTextRenderer создает текстовый рендерер.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

var (
	fieldRe = regexp.MustCompile(`\{\{([^{}#/]+)\}\}`)
	tableRe = regexp.MustCompile(`(?s)\{\{#([^{}]+)\}\}(.*?)\{\{/([^{}]+)\}\}`)
)

// Render заполняет один шаблон.
func (t *TextRenderer) Render(templatePath, outputPath string, ctx *templatectx.Context) error {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	filled, err := Fill(string(raw), ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(filled), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Fill подставляет контекст в текст шаблона.
func Fill(template string, ctx *templatectx.Context) (string, error) {
	var tableErr error

	result := tableRe.ReplaceAllStringFunc(template, func(block string) string {
		m := tableRe.FindStringSubmatch(block)
		name := strings.TrimSpace(m[1])
		if strings.TrimSpace(m[3]) != name {
			tableErr = fmt.Errorf("unclosed table block %q", name)
			return block
		}

		rows, ok := ctx.Tables[name]
		if !ok {
			tableErr = fmt.Errorf("unknown table %q", name)
			return block
		}

		var b strings.Builder
		for _, row := range rows {
			b.WriteString(substituteFields(m[2], row))
		}
		return b.String()
	})
	if tableErr != nil {
		return "", tableErr
	}

	return substituteFields(result, ctx.Fields), nil
}

// substituteFields заменяет {{ключ}} значениями из values.
// Неизвестный ключ заменяется пустой строкой: шаблоны общие для всех
// должников, а часть полей у конкретного должника закономерно пуста.
func substituteFields(s string, values map[string]string) string {
	return fieldRe.ReplaceAllStringFunc(s, func(ph string) string {
		key := strings.TrimSpace(ph[2 : len(ph)-2])
		return values[key]
	})
}
