package handlers

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"docserver/database"
	apperrors "docserver/server/errors"
)

// DownloadHandler отдает файлы документов
type DownloadHandler struct {
	db *database.DB
}

// NewDownloadHandler создает обработчик скачивания
func NewDownloadHandler(db *database.DB) *DownloadHandler {
	return &DownloadHandler{db: db}
}

// Download отдает файл документа по его id
// GET /api/download/:id
func (h *DownloadHandler) Download(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		SendError(c, apperrors.NewValidationError("Некорректный id документа", err))
		return
	}

	doc, err := h.db.GetDocument(id)
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to get document", err))
		return
	}
	if doc == nil {
		SendError(c, apperrors.NewNotFoundError("Документ не найден", nil))
		return
	}

	if _, err := os.Stat(doc.Filepath); err != nil {
		SendError(c, apperrors.NewNotFoundError("Файл не найден на диске", err))
		return
	}

	c.FileAttachment(doc.Filepath, doc.Filename)
}
