package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"docserver/aggregate"
	"docserver/documents"
	"docserver/render"
	"docserver/templatectx"
)

// DocumentExtractor извлекает типизированные поля из одного PDF.
type DocumentExtractor interface {
	Process(ctx context.Context, pdfPath string) documents.Record
}

// BatchAggregator собирает записи документов в запись должника.
type BatchAggregator interface {
	Aggregate(ctx context.Context, records []documents.Record) *aggregate.DebtorRecord
}

// lawyerFolders сопоставляет юриста с папкой его шаблонов.
var lawyerFolders = map[string]string{
	"urist1": "urist1",
	"urist2": "urist2",
	"urist3": "urist3",
}

// DefaultLawyer папка шаблонов по умолчанию.
const DefaultLawyer = "urist1"

// Processor связывает конвейер обработки батча документов должника:
// извлечение полей, агрегация в одну запись, заполнение шаблонов юриста.
type Processor struct {
	extractor    DocumentExtractor
	aggregator   BatchAggregator
	renderer     render.Renderer
	templateRoot string
	outputRoot   string
}

// New создает процессор документов.
func New(extractor DocumentExtractor, aggregator BatchAggregator, renderer render.Renderer, templateRoot, outputRoot string) *Processor {
	return &Processor{
		extractor:    extractor,
		aggregator:   aggregator,
		renderer:     renderer,
		templateRoot: templateRoot,
		outputRoot:   outputRoot,
	}
}

// TemplateDir возвращает папку шаблонов юриста. Неизвестный юрист или
// отсутствующая папка откатываются на папку по умолчанию.
func (p *Processor) TemplateDir(lawyer string) string {
	folder, ok := lawyerFolders[lawyer]
	if !ok {
		folder = DefaultLawyer
	}

	dir := filepath.Join(p.templateRoot, folder)
	if _, err := os.Stat(dir); err != nil {
		return filepath.Join(p.templateRoot, DefaultLawyer)
	}
	return dir
}

// OutputDir возвращает папку результатов должника.
func (p *Processor) OutputDir(debtorID string) string {
	return filepath.Join(p.outputRoot, debtorID)
}

// ProcessBatch обрабатывает все PDF должника и заполняет шаблоны его юриста.
// Ошибки отдельных документов не прерывают батч, они копятся в записи.
func (p *Processor) ProcessBatch(ctx context.Context, pdfPaths []string, debtorID, lawyer string) (*aggregate.DebtorRecord, []render.Result, error) {
	records := make([]documents.Record, 0, len(pdfPaths))
	for _, path := range pdfPaths {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
		records = append(records, p.extractor.Process(ctx, path))
	}

	record := p.aggregator.Aggregate(ctx, records)

	results, err := p.renderContext(debtorID, lawyer, templatectx.Build(record))
	if err != nil {
		return record, nil, err
	}
	return record, results, nil
}

// RenderFromRaw перезаполняет шаблоны из сохраненных данных должника.
// Используется после ручной правки данных через API.
func (p *Processor) RenderFromRaw(debtorID, lawyer string, raw map[string]any) ([]render.Result, error) {
	return p.renderContext(debtorID, lawyer, templatectx.FromRaw(raw))
}

func (p *Processor) renderContext(debtorID, lawyer string, ctx *templatectx.Context) ([]render.Result, error) {
	templates, err := p.listTemplates(lawyer)
	if err != nil {
		return nil, err
	}

	outputDir := p.OutputDir(debtorID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	return render.RenderAll(p.renderer, templates, outputDir, ctx), nil
}

func (p *Processor) listTemplates(lawyer string) ([]string, error) {
	dir := p.TemplateDir(lawyer)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir %s: %w", dir, err)
	}

	templates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		templates = append(templates, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(templates)
	return templates, nil
}
