package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docserver/ai"
	"docserver/database"
	"docserver/processor"
	"docserver/render"
)

type fakeNames struct {
	calls int
}

func (f *fakeNames) GenerateFIOFields(_ context.Context, fio, maidenName string) ai.FIOFields {
	f.calls++
	return ai.FallbackFIOFields(fio, maidenName)
}

type testEnv struct {
	db     *database.DB
	router *gin.Engine
	names  *fakeNames
	root   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	if err := os.WriteFile(filepath.Join(templateDir, "заявление.docx"), []byte("От {{ФИО}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	uploadDir := filepath.Join(root, "uploads")
	proc := processor.New(nil, nil, render.NewTextRenderer(), filepath.Join(root, "templ"), filepath.Join(root, "resultdoc"))
	names := &fakeNames{}

	debtors := NewDebtorsHandler(db, proc, names, uploadDir)
	upload := NewUploadHandler(db, uploadDir, 1024*1024)
	queue := NewQueueHandler(db)
	download := NewDownloadHandler(db)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/upload", upload.Upload)
	api.GET("/queue/status", queue.Status)
	api.GET("/download/:id", download.Download)
	api.GET("/debtors", debtors.List)
	api.GET("/debtors/:id", debtors.Get)
	api.DELETE("/debtors/:id", debtors.Delete)
	api.GET("/debtors/:id/deals", debtors.Deals)
	api.GET("/debtors/:id/data", debtors.GetData)
	api.PUT("/debtors/:id/data", debtors.UpdateData)
	api.POST("/debtors/:id/save-data", debtors.SaveData)

	return &testEnv{db: db, router: r, names: names, root: root}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	resp := map[string]any{}
	if strings.HasPrefix(w.Body.String(), "{") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("ответ не JSON объект: %v\n%s", err, w.Body.String())
		}
	}
	return w, resp
}

func (e *testEnv) uploadPDFs(t *testing.T, filenames ...string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range filenames {
		fw, err := mw.CreateFormFile("files[]", name)
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(fw, "%PDF-1.4 test content")
	}
	mw.WriteField("lawyer", "urist1")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	resp := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	id, _ := resp["debtor_id"].(string)
	if id == "" {
		t.Fatal("upload не вернул debtor_id")
	}
	return id
}

func TestUploadCreatesDebtorAndJob(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"Паспорт Иванова.pdf", "записка.txt"} {
		fw, _ := mw.CreateFormFile("files[]", name)
		fmt.Fprint(fw, "content")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp["uploaded_count"].(float64) != 1 {
		t.Errorf("uploaded_count = %v, want 1", resp["uploaded_count"])
	}
	skipped := resp["skipped"].([]any)
	if len(skipped) != 1 {
		t.Fatalf("len(skipped) = %d, want 1 (не-PDF)", len(skipped))
	}

	debtorID := resp["debtor_id"].(string)
	debtor, err := env.db.GetDebtor(debtorID)
	if err != nil || debtor == nil {
		t.Fatalf("должник не создан: %v", err)
	}
	if debtor.Status != database.StatusQueued {
		t.Errorf("status = %q, want queued", debtor.Status)
	}

	state, err := env.db.QueueStatus()
	if err != nil {
		t.Fatal(err)
	}
	if state.Queued != 1 {
		t.Errorf("queued = %d, want 1", state.Queued)
	}
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files[]", "записка.txt")
	fmt.Fprint(fw, "content")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListAndGetDebtor(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf", "кредит.pdf")

	w, _ := env.do(t, http.MethodGet, "/api/debtors", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	w, resp := env.do(t, http.MethodGet, "/api/debtors/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	docs := resp["documents"].(map[string]any)
	if uploaded := docs["uploaded"].([]any); len(uploaded) != 2 {
		t.Errorf("uploaded документов = %d, want 2", len(uploaded))
	}

	w, _ = env.do(t, http.MethodGet, "/api/debtors/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing debtor status = %d, want 404", w.Code)
	}
}

func TestDeleteDebtorRemovesFiles(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	uploadFolder := filepath.Join(env.root, "uploads", id)
	if _, err := os.Stat(uploadFolder); err != nil {
		t.Fatalf("папка загрузки не создана: %v", err)
	}

	w, _ := env.do(t, http.MethodDelete, "/api/debtors/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}

	if _, err := os.Stat(uploadFolder); !os.IsNotExist(err) {
		t.Error("папка загрузки должна удаляться вместе с должником")
	}
	debtor, err := env.db.GetDebtor(id)
	if err != nil {
		t.Fatal(err)
	}
	if debtor != nil {
		t.Error("должник должен быть удален")
	}
}

func TestDealsFilter(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	recent := time.Now().AddDate(0, -6, 0).Format("02.01.2006")
	raw := fmt.Sprintf(`{"сделки": [
		{"Дата_сделки": %q, "Предмет": "квартира"},
		{"Дата_сделки": "15.06.2015", "Предмет": "гараж"},
		{"Дата_сделки": "не читается", "Предмет": "участок"},
		{"Предмет": "без даты"}
	]}`, recent)
	if err := env.db.SaveRawData(id, raw); err != nil {
		t.Fatal(err)
	}

	w, _ := env.do(t, http.MethodGet, "/api/debtors/"+id+"/deals", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("deals status = %d", w.Code)
	}
	var deals []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &deals); err != nil {
		t.Fatal(err)
	}

	// свежая и нечитаемая остаются, старая и без даты отсеиваются
	if len(deals) != 2 {
		t.Fatalf("len(deals) = %d, want 2: %v", len(deals), deals)
	}
}

func TestGetDataNotFound(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	w, _ := env.do(t, http.MethodGet, "/api/debtors/"+id+"/data", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 при пустых данных", w.Code)
	}
}

func TestSaveDataRegeneratesFIOForms(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	if err := env.db.SaveRawData(id, `{"ФИО": "Иванов Иван Петрович", "Адрес_регистрации": "г. Новосибирск"}`); err != nil {
		t.Fatal(err)
	}

	w, resp := env.do(t, http.MethodPost, "/api/debtors/"+id+"/save-data",
		map[string]any{"ФИО": "Петров Петр Иванович"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if env.names.calls != 1 {
		t.Errorf("генератор форм ФИО вызван %d раз, want 1", env.names.calls)
	}

	updated := resp["updated_data"].(map[string]any)
	if updated["ФИО"] != "Петров Петр Иванович" {
		t.Errorf("ФИО = %v", updated["ФИО"])
	}
	if updated["Фамилия_инициалы"] != "Петров П.И." {
		t.Errorf("Фамилия_инициалы = %v", updated["Фамилия_инициалы"])
	}
	if updated["Адрес_регистрации"] != "г. Новосибирск" {
		t.Error("непереданные поля должны сохраняться")
	}

	debtor, err := env.db.GetDebtor(id)
	if err != nil {
		t.Fatal(err)
	}
	if debtor.FullName != "Петров Петр Иванович" {
		t.Errorf("full_name в БД = %q", debtor.FullName)
	}
}

func TestSaveDataWithoutFIOChangeSkipsGeneration(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	if err := env.db.SaveRawData(id, `{"ФИО": "Иванов Иван Петрович"}`); err != nil {
		t.Fatal(err)
	}

	w, _ := env.do(t, http.MethodPost, "/api/debtors/"+id+"/save-data",
		map[string]any{"Адрес_регистрации": "г. Москва"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.names.calls != 0 {
		t.Errorf("генератор форм ФИО не должен вызываться, calls = %d", env.names.calls)
	}
}

func TestUpdateDataRegeneratesDocuments(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	if err := env.db.SaveRawData(id, `{"ФИО": "Иванов Иван Петрович"}`); err != nil {
		t.Fatal(err)
	}

	w, _ := env.do(t, http.MethodPut, "/api/debtors/"+id+"/data",
		map[string]any{"ФИО": "Сидоров Сидор Сидорович"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// перегенерация идет в фоне, ждем завершения
	deadline := time.Now().Add(3 * time.Second)
	for {
		debtor, err := env.db.GetDebtor(id)
		if err != nil {
			t.Fatal(err)
		}
		if debtor.Status == database.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("перегенерация не завершилась, status = %q", debtor.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}

	docs, err := env.db.ListDocuments(id)
	if err != nil {
		t.Fatal(err)
	}
	var generated *database.Document
	for i := range docs {
		if docs[i].IsGenerated {
			generated = &docs[i]
		}
	}
	if generated == nil {
		t.Fatal("сгенерированный документ не зарегистрирован")
	}

	content, err := os.ReadFile(generated.Filepath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "От Сидоров Сидор Сидорович" {
		t.Errorf("шаблон заполнен как %q", content)
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	id := env.uploadPDFs(t, "паспорт.pdf")

	docs, err := env.db.ListDocuments(id)
	if err != nil || len(docs) == 0 {
		t.Fatalf("нет документов: %v", err)
	}

	w, _ := env.do(t, http.MethodGet, fmt.Sprintf("/api/download/%d", docs[0].ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	w, _ = env.do(t, http.MethodGet, "/api/download/99999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", w.Code)
	}
}

func TestQueueStatusPositions(t *testing.T) {
	env := newTestEnv(t)
	first := env.uploadPDFs(t, "a.pdf")
	second := env.uploadPDFs(t, "b.pdf")

	w, resp := env.do(t, http.MethodGet, "/api/queue/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	if resp["queued"].(float64) != 2 {
		t.Errorf("queued = %v, want 2", resp["queued"])
	}
	jobs := resp["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d", len(jobs))
	}

	job1 := jobs[0].(map[string]any)
	job2 := jobs[1].(map[string]any)
	if job1["debtor_id"] != first || job2["debtor_id"] != second {
		t.Error("задания должны идти в порядке постановки")
	}
	if job1["position"].(float64) != 1 || job2["position"].(float64) != 2 {
		t.Errorf("positions = %v, %v", job1["position"], job2["position"])
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Паспорт Иванова.pdf", "Паспорт_Иванова.pdf"},
		{"кредит (копия)???.pdf", "кредит_копия.pdf"},
		{"report.pdf", "report.pdf"},
		{"а б  в___г.pdf", "а_б_в_г.pdf"},
	}

	for _, tt := range tests {
		if got := SecureFilename(tt.in); got != tt.want {
			t.Errorf("SecureFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("д", 300) + ".pdf"
	got := SecureFilename(long)
	if runes := []rune(got); len(runes) != 104 {
		t.Errorf("длинное имя должно обрезаться до 100 символов + расширение, got %d", len(runes))
	}
}
