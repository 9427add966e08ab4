package handlers

import (
	"github.com/gin-gonic/gin"

	"docserver/database"
	apperrors "docserver/server/errors"
)

// QueueHandler отдает состояние очереди обработки
type QueueHandler struct {
	db *database.DB
}

// NewQueueHandler создает обработчик очереди
func NewQueueHandler(db *database.DB) *QueueHandler {
	return &QueueHandler{db: db}
}

// Status возвращает счётчики очереди и задания с позициями.
// Позиция есть только у ожидающих заданий, у обрабатываемых она 0.
// GET /api/queue/status
func (h *QueueHandler) Status(c *gin.Context) {
	state, err := h.db.QueueStatus()
	if err != nil {
		SendError(c, apperrors.NewInternalError("failed to get queue status", err))
		return
	}

	jobs := make([]gin.H, 0, len(state.Jobs))
	position := 0
	for _, job := range state.Jobs {
		pos := 0
		if job.Status == database.StatusQueued {
			position++
			pos = position
		}
		jobs = append(jobs, gin.H{
			"job_id":     job.ID,
			"debtor_id":  job.DebtorID,
			"full_name":  job.FullName,
			"status":     job.Status,
			"position":   pos,
			"created_at": job.CreatedAt,
		})
	}

	c.JSON(200, gin.H{
		"queued":     state.Queued,
		"processing": state.Processing,
		"jobs":       jobs,
	})
}
