package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docserver/aggregate"
	"docserver/database"
	"docserver/documents"
	"docserver/processor"
	"docserver/render"
)

type stubExtractor struct{}

func (stubExtractor) Process(_ context.Context, pdfPath string) documents.Record {
	return documents.Record{
		Filename: filepath.Base(pdfPath),
		Path:     pdfPath,
		Type:     documents.TypePassport,
		Fields:   documents.PassportFields{FIO: "Иванов Иван Петрович"},
	}
}

type stubAggregator struct{}

func (stubAggregator) Aggregate(_ context.Context, records []documents.Record) *aggregate.DebtorRecord {
	record := &aggregate.DebtorRecord{TotalDebt: "10 000,00"}
	for _, r := range records {
		if p, ok := r.Fields.(documents.PassportFields); ok {
			record.Full = p.FIO
		}
	}
	return record
}

func workerEnv(t *testing.T) (*database.DB, *processor.Processor, string) {
	t.Helper()

	root := t.TempDir()
	db, err := database.Open(filepath.Join(root, "test.db"))
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	templateDir := filepath.Join(root, "templ", "urist1")
	if err := os.MkdirAll(templateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(templateDir, "заявление.docx"), []byte("От {{ФИО}}, долг {{Общая_сумма_долга}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	proc := processor.New(stubExtractor{}, stubAggregator{}, render.NewTextRenderer(),
		filepath.Join(root, "templ"), filepath.Join(root, "resultdoc"))
	return db, proc, root
}

func queueDebtor(t *testing.T, db *database.DB, id, pdf string) {
	t.Helper()
	if err := db.CreateDebtor(id, "В очереди...", "urist1"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddDocument(id, filepath.Base(pdf), pdf, "uploaded", false); err != nil {
		t.Fatal(err)
	}
	if _, err := db.EnqueueJob(id); err != nil {
		t.Fatal(err)
	}
}

func waitForStatus(t *testing.T, db *database.DB, id, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		debtor, err := db.GetDebtor(id)
		if err != nil {
			t.Fatal(err)
		}
		if debtor.Status == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("статус = %q, ждали %q", debtor.Status, want)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWorkerProcessesJob(t *testing.T) {
	db, proc, root := workerEnv(t)
	queueDebtor(t, db, "debtor-1", filepath.Join(root, "паспорт.pdf"))

	w := NewWorker(db, proc)
	w.idleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitForStatus(t, db, "debtor-1", database.StatusCompleted)

	debtor, err := db.GetDebtor("debtor-1")
	if err != nil {
		t.Fatal(err)
	}
	if debtor.FullName != "Иванов Иван Петрович" {
		t.Errorf("full_name = %q", debtor.FullName)
	}

	raw, err := db.GetRawData("debtor-1")
	if err != nil {
		t.Fatal(err)
	}
	// сохраняется плоский контекст шаблонов, а не внутренняя запись:
	// обработчики правки данных ищут ключи ФИО и кредиторы
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("raw_data не разбирается: %v", err)
	}
	if got, _ := data["ФИО"].(string); got != "Иванов Иван Петрович" {
		t.Errorf(`raw_data["ФИО"] = %q`, got)
	}
	if _, ok := data["кредиторы"].([]any); !ok {
		t.Errorf("raw_data должен содержать таблицу кредиторов, ключи %v", rawKeys(data))
	}

	docs, err := db.ListDocuments("debtor-1")
	if err != nil {
		t.Fatal(err)
	}
	var generatedPath string
	for _, doc := range docs {
		if doc.IsGenerated {
			generatedPath = doc.Filepath
		}
	}
	if generatedPath == "" {
		t.Fatal("сгенерированный документ не зарегистрирован")
	}
	content, err := os.ReadFile(generatedPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "От Иванов Иван Петрович, долг 10 000,00" {
		t.Errorf("шаблон заполнен как %q", content)
	}
}

func TestWorkerFailsJobWithoutTemplates(t *testing.T) {
	db, _, root := workerEnv(t)
	queueDebtor(t, db, "debtor-2", filepath.Join(root, "паспорт.pdf"))

	// процессор смотрит в несуществующую папку шаблонов
	broken := processor.New(stubExtractor{}, stubAggregator{}, render.NewTextRenderer(),
		filepath.Join(root, "нет_такой_папки"), filepath.Join(root, "resultdoc"))

	w := NewWorker(db, broken)
	w.idleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitForStatus(t, db, "debtor-2", database.StatusError)
}

func TestWorkerUsesFallbackName(t *testing.T) {
	db, _, root := workerEnv(t)
	queueDebtor(t, db, "abcdef1234567890", filepath.Join(root, "кредит.pdf"))

	proc := processor.New(emptyExtractor{}, stubAggregator{}, render.NewTextRenderer(),
		filepath.Join(root, "templ"), filepath.Join(root, "resultdoc"))
	w := NewWorker(db, proc)
	w.idleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitForStatus(t, db, "abcdef1234567890", database.StatusCompleted)

	debtor, err := db.GetDebtor("abcdef1234567890")
	if err != nil {
		t.Fatal(err)
	}
	if debtor.FullName != "Должник abcdef12" {
		t.Errorf("full_name = %q, want запасное имя из id", debtor.FullName)
	}
}

func rawKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	return keys
}

type emptyExtractor struct{}

func (emptyExtractor) Process(_ context.Context, pdfPath string) documents.Record {
	return documents.Record{
		Filename: filepath.Base(pdfPath),
		Path:     pdfPath,
		Type:     documents.TypeUnknown,
	}
}
