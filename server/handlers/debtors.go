package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"docserver/ai"
	"docserver/database"
	"docserver/processor"
	apperrors "docserver/server/errors"
)

// NameGenerator строит склонённые формы ФИО при ручной правке данных.
type NameGenerator interface {
	GenerateFIOFields(ctx context.Context, fio, maidenName string) ai.FIOFields
}

// DebtorsHandler обрабатывает запросы по должникам
type DebtorsHandler struct {
	db        *database.DB
	proc      *processor.Processor
	names     NameGenerator
	uploadDir string
}

// NewDebtorsHandler создает обработчик должников
func NewDebtorsHandler(db *database.DB, proc *processor.Processor, names NameGenerator, uploadDir string) *DebtorsHandler {
	return &DebtorsHandler{
		db:        db,
		proc:      proc,
		names:     names,
		uploadDir: uploadDir,
	}
}

// List возвращает должников, опционально отфильтрованных по имени
// GET /api/debtors?search=...
func (h *DebtorsHandler) List(c *gin.Context) {
	debtors, err := h.db.ListDebtors(c.Query("search"))
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to list debtors", err))
		return
	}

	resp := make([]gin.H, 0, len(debtors))
	for _, d := range debtors {
		resp = append(resp, gin.H{
			"id":         d.ID,
			"full_name":  d.FullName,
			"date_added": d.DateAdded,
			"status":     d.Status,
			"lawyer":     d.Lawyer,
		})
	}
	c.JSON(200, resp)
}

// Get возвращает должника с его документами и данными
// GET /api/debtors/:id
func (h *DebtorsHandler) Get(c *gin.Context) {
	id := c.Param("id")

	debtor, err := h.db.GetDebtor(id)
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to get debtor", err))
		return
	}
	if debtor == nil {
		SendError(c, apperrors.NewNotFoundError("Должник не найден", nil))
		return
	}

	docs, err := h.db.ListDocuments(id)
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to list documents", err))
		return
	}

	uploaded := []gin.H{}
	generated := []gin.H{}
	for _, doc := range docs {
		info := gin.H{"id": doc.ID, "filename": doc.Filename, "doc_type": doc.DocType}
		if doc.IsGenerated {
			generated = append(generated, info)
		} else {
			uploaded = append(uploaded, info)
		}
	}

	c.JSON(200, gin.H{
		"id":         debtor.ID,
		"full_name":  debtor.FullName,
		"date_added": debtor.DateAdded,
		"status":     debtor.Status,
		"lawyer":     debtor.Lawyer,
		"documents":  gin.H{"uploaded": uploaded, "generated": generated},
		"raw_data":   parseRawData(debtor.RawData),
	})
}

// Delete удаляет должника вместе с файлами на диске
// DELETE /api/debtors/:id
func (h *DebtorsHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	docs, err := h.db.ListDocuments(id)
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to list documents", err))
		return
	}
	for _, doc := range docs {
		if err := os.Remove(doc.Filepath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to delete file", "path", doc.Filepath, "error", err)
		}
	}

	// CASCADE удаляет документы и задания очереди вместе с должником
	if err := h.db.DeleteDebtor(id); err != nil {
		SendError(c, apperrors.NewInternalError("failed to delete debtor", err))
		return
	}

	for _, dir := range []string{filepath.Join(h.uploadDir, id), h.proc.OutputDir(id)} {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("Failed to delete folder", "path", dir, "error", err)
		}
	}

	c.JSON(200, gin.H{"success": true})
}

// Deals возвращает сделки должника за последние 3 года
// GET /api/debtors/:id/deals
func (h *DebtorsHandler) Deals(c *gin.Context) {
	raw, err := h.db.GetRawData(c.Param("id"))
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to get raw data", err))
		return
	}

	data := parseRawData(raw)
	items, _ := data["сделки"].([]any)

	threeYearsAgo := time.Now().AddDate(-3, 0, 0)
	filtered := []map[string]any{}
	for _, item := range items {
		deal, ok := item.(map[string]any)
		if !ok {
			continue
		}
		dateStr, _ := deal["Дата_сделки"].(string)
		if dateStr == "" {
			continue
		}

		date, err := time.Parse("02.01.2006", dateStr)
		// нечитаемая дата не повод скрывать сделку от юриста
		if err != nil || !date.Before(threeYearsAgo) {
			filtered = append(filtered, deal)
		}
	}

	c.JSON(200, filtered)
}

// GetData возвращает сохраненные данные должника
// GET /api/debtors/:id/data
func (h *DebtorsHandler) GetData(c *gin.Context) {
	raw, err := h.db.GetRawData(c.Param("id"))
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to get raw data", err))
		return
	}
	if raw == "" || raw == "{}" {
		SendError(c, apperrors.NewNotFoundError("Данные не найдены", nil))
		return
	}

	c.JSON(200, parseRawData(raw))
}

// SaveData сохраняет правки данных должника без перегенерации документов.
// При изменении ФИО или девичьей фамилии производные формы ФИО
// генерируются заново.
// POST /api/debtors/:id/save-data
func (h *DebtorsHandler) SaveData(c *gin.Context) {
	id := c.Param("id")

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		SendError(c, apperrors.NewValidationError("Данные не переданы", err))
		return
	}

	current, appErr := h.loadData(id)
	if appErr != nil {
		SendError(c, appErr)
		return
	}

	fio, _ := updates["ФИО"].(string)
	maiden, _ := updates["Девичья_фамилия"].(string)
	fioChanged := fio != "" && fio != asString(current["ФИО"])
	maidenChanged := hasKey(updates, "Девичья_фамилия") && maiden != asString(current["Девичья_фамилия"])

	if fioChanged || maidenChanged {
		fioValue := fio
		if fioValue == "" {
			fioValue = asString(current["ФИО"])
		}
		maidenValue := maiden
		if !hasKey(updates, "Девичья_фамилия") {
			maidenValue = asString(current["Девичья_фамилия"])
		}
		if fioValue != "" {
			fields := h.names.GenerateFIOFields(c.Request.Context(), fioValue, maidenValue)
			mergeStruct(updates, fields)
		}
	}

	for k, v := range updates {
		current[k] = v
	}

	if err := h.saveData(id, current); err != nil {
		SendError(c, err)
		return
	}

	if fio != "" {
		if err := h.db.UpdateDebtorName(id, fio); err != nil {
			SendError(c, apperrors.NewInternalError("failed to update debtor name", err))
			return
		}
	}

	c.JSON(200, gin.H{"success": true, "message": "Данные сохранены", "updated_data": current})
}

// UpdateData сохраняет правки и перегенерирует документы в фоне
// PUT /api/debtors/:id/data
func (h *DebtorsHandler) UpdateData(c *gin.Context) {
	id := c.Param("id")

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		SendError(c, apperrors.NewValidationError("Данные не переданы", err))
		return
	}

	current, appErr := h.loadData(id)
	if appErr != nil {
		SendError(c, appErr)
		return
	}

	for k, v := range updates {
		current[k] = v
	}

	if err := h.saveData(id, current); err != nil {
		SendError(c, err)
		return
	}

	if fio, _ := updates["ФИО"].(string); fio != "" {
		if err := h.db.UpdateDebtorName(id, fio); err != nil {
			SendError(c, apperrors.NewInternalError("failed to update debtor name", err))
			return
		}
	}

	if err := h.db.UpdateDebtorStatus(id, database.StatusProcessing); err != nil {
		SendError(c, apperrors.NewInternalError("failed to update status", err))
		return
	}

	go h.regenerate(id, current)

	c.JSON(200, gin.H{"success": true, "message": "Данные обновлены, документы генерируются"})
}

// regenerate перезаполняет шаблоны из обновленных данных.
// Выполняется в фоне, результат виден через статус должника.
func (h *DebtorsHandler) regenerate(id string, data map[string]any) {
	debtor, err := h.db.GetDebtor(id)
	if err != nil || debtor == nil {
		slog.Error("Regeneration: debtor lookup failed", "debtor_id", id, "error", err)
		return
	}

	results, err := h.proc.RenderFromRaw(id, debtor.Lawyer, data)
	if err != nil {
		slog.Error("Regeneration failed", "debtor_id", id, "error", err)
		if dbErr := h.db.UpdateDebtorStatus(id, database.StatusError); dbErr != nil {
			slog.Error("Failed to set error status", "debtor_id", id, "error", dbErr)
		}
		return
	}

	if err := h.db.DeleteGeneratedDocuments(id); err != nil {
		slog.Error("Failed to clear generated documents", "debtor_id", id, "error", err)
	}
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		if err := h.db.AddDocument(id, r.Template, r.Output, "generated", true); err != nil {
			slog.Error("Failed to register generated document", "debtor_id", id, "file", r.Template, "error", err)
		}
	}

	if err := h.db.UpdateDebtorStatus(id, database.StatusCompleted); err != nil {
		slog.Error("Failed to set completed status", "debtor_id", id, "error", err)
	}
	slog.Info("Regeneration completed", "debtor_id", id, "templates", len(results))
}

func (h *DebtorsHandler) loadData(id string) (map[string]any, *apperrors.AppError) {
	raw, err := h.db.GetRawData(id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get raw data", err)
	}
	if raw == "" || raw == "{}" {
		return nil, apperrors.NewNotFoundError("Данные не найдены", nil)
	}
	return parseRawData(raw), nil
}

func (h *DebtorsHandler) saveData(id string, data map[string]any) *apperrors.AppError {
	encoded, err := json.Marshal(data)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal raw data", err)
	}
	if err := h.db.SaveRawData(id, string(encoded)); err != nil {
		return apperrors.NewInternalError("failed to save raw data", err)
	}
	return nil
}

// parseRawData разбирает сохраненный JSON должника. Битые данные
// не валят обработчик, а дают пустую карту.
func parseRawData(raw string) map[string]any {
	data := map[string]any{}
	if raw == "" {
		return data
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("Failed to parse raw data", "error", err)
		return map[string]any{}
	}
	return data
}

// mergeStruct вливает экспортируемые поля структуры в карту по json тегам.
func mergeStruct(dst map[string]any, src any) {
	encoded, err := json.Marshal(src)
	if err != nil {
		return
	}
	fields := map[string]any{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return
	}
	for k, v := range fields {
		dst[k] = v
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
