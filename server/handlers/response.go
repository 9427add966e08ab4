package handlers

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "docserver/server/errors"
	"docserver/server/middleware"
)

// SendError отправляет JSON ошибку и логирует её. Не-AppError ошибки
// становятся 500 с общим сообщением, детали остаются в логах.
func SendError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unhandled error", err)
	}

	slog.Error("HTTP error",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status_code", appErr.StatusCode(),
		"error", appErr.Err,
		"user_message", appErr.Message,
		"context", appErr.Context,
		"request_id", middleware.GetRequestID(c.Request.Context()),
	)

	c.JSON(appErr.StatusCode(), gin.H{"error": appErr.UserMessage()})
}
