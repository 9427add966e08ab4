package handlers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docserver/database"
	apperrors "docserver/server/errors"
	"docserver/server/middleware"
)

// UploadHandler принимает батч PDF должника и ставит его в очередь
type UploadHandler struct {
	db        *database.DB
	uploadDir string
	maxSize   int64
}

// NewUploadHandler создает обработчик загрузки
func NewUploadHandler(db *database.DB, uploadDir string, maxSize int64) *UploadHandler {
	return &UploadHandler{
		db:        db,
		uploadDir: uploadDir,
		maxSize:   maxSize,
	}
}

type skippedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Upload сохраняет PDF файлы, создает должника и задание очереди.
// Не-PDF и слишком большие файлы пропускаются, но не валят загрузку.
// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files[]"]) == 0 {
		SendError(c, apperrors.NewValidationError("Файлы не переданы", err))
		return
	}
	files := form.File["files[]"]

	lawyer := c.PostForm("lawyer")
	if lawyer == "" {
		lawyer = "urist1"
	}

	debtorID := uuid.New().String()
	debtorDir := filepath.Join(h.uploadDir, debtorID)
	if err := os.MkdirAll(debtorDir, 0o755); err != nil {
		SendError(c, apperrors.NewInternalError("failed to create upload dir", err))
		return
	}

	uploaded := []string{}
	skipped := []skippedFile{}
	for _, file := range files {
		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			skipped = append(skipped, skippedFile{Filename: file.Filename, Reason: "Не PDF файл"})
			continue
		}
		if file.Size > h.maxSize {
			skipped = append(skipped, skippedFile{
				Filename: file.Filename,
				Reason: fmt.Sprintf("Размер %.1f MB превышает лимит %.0f MB",
					float64(file.Size)/(1024*1024), float64(h.maxSize)/(1024*1024)),
			})
			continue
		}

		dst := filepath.Join(debtorDir, SecureFilename(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			skipped = append(skipped, skippedFile{Filename: file.Filename, Reason: err.Error()})
			continue
		}
		uploaded = append(uploaded, dst)
	}

	if len(uploaded) == 0 {
		os.RemoveAll(debtorDir)
		msg := "Не передано ни одного корректного PDF файла"
		if len(skipped) > 0 {
			msg = fmt.Sprintf("%s (пропущено файлов: %d)", msg, len(skipped))
		}
		c.JSON(400, gin.H{"error": msg, "skipped": skipped})
		return
	}

	if err := h.db.CreateDebtor(debtorID, "В очереди...", lawyer); err != nil {
		SendError(c, apperrors.NewInternalError("failed to create debtor", err))
		return
	}
	for _, path := range uploaded {
		if err := h.db.AddDocument(debtorID, filepath.Base(path), path, "uploaded", false); err != nil {
			SendError(c, apperrors.NewInternalError("failed to register document", err))
			return
		}
	}
	if _, err := h.db.EnqueueJob(debtorID); err != nil {
		SendError(c, apperrors.NewInternalError("failed to enqueue job", err))
		return
	}

	LogInfoGin(c, "Debtor queued",
		"debtor_id", debtorID,
		"uploaded", len(uploaded),
		"skipped", len(skipped),
		"lawyer", lawyer,
	)

	c.JSON(200, gin.H{
		"success":        true,
		"debtor_id":      debtorID,
		"uploaded_count": len(uploaded),
		"total_count":    len(files),
		"skipped":        skipped,
	})
}

var (
	unsafeChars  = regexp.MustCompile(`[^а-яА-ЯёЁa-zA-Z0-9_.\- ]`)
	spaceRuns    = regexp.MustCompile(`[\s_]+`)
	maxBaseRunes = 100
)

// SecureFilename строит безопасное имя файла с сохранением кириллицы.
// Базовое имя ограничено 100 символами: в Linux лимит имени 255 байт,
// а кириллица в UTF-8 занимает 2 байта на символ.
func SecureFilename(filename string) string {
	base := filename
	ext := ""
	if i := strings.LastIndex(filename, "."); i > 0 {
		base, ext = filename[:i], filename[i+1:]
	}

	base = unsafeChars.ReplaceAllString(base, "_")
	base = spaceRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")

	if runes := []rune(base); len(runes) > maxBaseRunes {
		base = string(runes[:maxBaseRunes])
	}

	if ext != "" {
		return base + "." + ext
	}
	return base
}

// LogInfoGin логирует информационное сообщение с request ID запроса
func LogInfoGin(c *gin.Context, msg string, attrs ...any) {
	attrs = append(attrs, "request_id", middleware.GetRequestID(c.Request.Context()))
	slog.Info(msg, attrs...)
}
