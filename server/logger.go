package server

import (
	"context"
	"log/slog"
	"os"
	"time"

	"docserver/server/middleware"
)

var (
	// Logger глобальный структурированный логгер
	Logger *slog.Logger
)

func init() {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true, // Добавляем информацию об источнике (файл, строка)
	}

	Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(Logger)
}

// LogError логирует ошибку с контекстом из запроса
func LogError(ctx context.Context, err error, msg string, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", middleware.GetRequestID(ctx))
	Logger.Error(msg, attrs...)
}

// LogWarn логирует предупреждение
func LogWarn(ctx context.Context, msg string, attrs ...any) {
	attrs = append(attrs, "request_id", middleware.GetRequestID(ctx))
	Logger.Warn(msg, attrs...)
}

// LogInfo логирует информационное сообщение
func LogInfo(ctx context.Context, msg string, attrs ...any) {
	attrs = append(attrs, "request_id", middleware.GetRequestID(ctx))
	Logger.Info(msg, attrs...)
}

// LogDuration логирует продолжительность выполнения операции
func LogDuration(ctx context.Context, operation string, duration time.Duration, attrs ...any) {
	attrs = append(attrs, "request_id", middleware.GetRequestID(ctx), "duration_ms", duration.Milliseconds())
	Logger.Info(operation+" completed", attrs...)
}

// --- Специализированные функции логирования обработки должников ---

// LogProcessingStart логирует взятие задания из очереди
func LogProcessingStart(jobID int64, debtorID string, files int) {
	Logger.Info("Processing started",
		"job_id", jobID,
		"debtor_id", debtorID,
		"files", files,
	)
}

// LogProcessingComplete логирует завершение обработки должника
func LogProcessingComplete(jobID int64, debtorID string, documents, generated int, duration time.Duration) {
	Logger.Info("Processing completed",
		"job_id", jobID,
		"debtor_id", debtorID,
		"documents", documents,
		"generated", generated,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogProcessingError логирует ошибку обработки должника
func LogProcessingError(jobID int64, debtorID string, err error) {
	Logger.Error("Processing error",
		"job_id", jobID,
		"debtor_id", debtorID,
		"error", err,
	)
}
