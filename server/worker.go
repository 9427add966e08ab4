package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docserver/database"
	"docserver/processor"
	"docserver/templatectx"
)

// Worker единственный обработчик очереди. Задания выполняются строго
// по одному: обработка батча упирается в лимиты внешних сервисов,
// параллелизм внутри нее не ускорит.
type Worker struct {
	db         *database.DB
	proc       *processor.Processor
	idleDelay  time.Duration
	errorDelay time.Duration
}

// NewWorker создает воркер очереди
func NewWorker(db *database.DB, proc *processor.Processor) *Worker {
	return &Worker{
		db:         db,
		proc:       proc,
		idleDelay:  2 * time.Second,
		errorDelay: 5 * time.Second,
	}
}

// Run крутит цикл очереди до отмены контекста. Зависшие после
// прошлого запуска задания сначала возвращаются в очередь.
func (w *Worker) Run(ctx context.Context) {
	if reset, err := w.db.ResetOrphanedJobs(); err != nil {
		Logger.Error("Failed to reset orphaned jobs", "error", err)
	} else if reset > 0 {
		Logger.Info("Orphaned jobs requeued", "count", reset)
	}

	Logger.Info("Processing worker started")
	for {
		select {
		case <-ctx.Done():
			Logger.Info("Processing worker stopped")
			return
		default:
		}

		job, err := w.db.ClaimNextJob()
		if err != nil {
			Logger.Error("Failed to claim job", "error", err)
			if !sleepCtx(ctx, w.errorDelay) {
				return
			}
			continue
		}
		if job == nil {
			if !sleepCtx(ctx, w.idleDelay) {
				return
			}
			continue
		}

		if err := w.process(ctx, job); err != nil {
			LogProcessingError(job.ID, job.DebtorID, err)
			if dbErr := w.db.FailJob(job.ID, job.DebtorID, err.Error()); dbErr != nil {
				Logger.Error("Failed to mark job failed", "job_id", job.ID, "error", dbErr)
			}
			continue
		}
		if err := w.db.CompleteJob(job.ID, job.DebtorID); err != nil {
			Logger.Error("Failed to mark job completed", "job_id", job.ID, "error", err)
		}
	}
}

// process обрабатывает один батч должника: извлечение, агрегация,
// заполнение шаблонов и сохранение результатов.
func (w *Worker) process(ctx context.Context, job *database.Job) error {
	start := time.Now()

	docs, err := w.db.ListDocuments(job.DebtorID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		if !doc.IsGenerated {
			paths = append(paths, doc.Filepath)
		}
	}

	debtor, err := w.db.GetDebtor(job.DebtorID)
	if err != nil {
		return fmt.Errorf("failed to get debtor: %w", err)
	}
	if debtor == nil {
		return fmt.Errorf("debtor %s not found", job.DebtorID)
	}

	LogProcessingStart(job.ID, job.DebtorID, len(paths))

	record, results, err := w.proc.ProcessBatch(ctx, paths, job.DebtorID, debtor.Lawyer)
	if err != nil {
		return fmt.Errorf("failed to process batch: %w", err)
	}

	// В базе лежит плоский контекст шаблонов: правки через API
	// и перегенерация читают те же ключи, что и первичное заполнение.
	raw, err := json.Marshal(templatectx.Build(record).Raw())
	if err != nil {
		return fmt.Errorf("failed to marshal template context: %w", err)
	}
	if err := w.db.SaveRawData(job.DebtorID, string(raw)); err != nil {
		return fmt.Errorf("failed to save raw data: %w", err)
	}

	fullName := record.Full
	if fullName == "" {
		fullName = "Должник " + shortID(job.DebtorID)
	}
	if err := w.db.UpdateDebtorName(job.DebtorID, fullName); err != nil {
		return fmt.Errorf("failed to update debtor name: %w", err)
	}

	// повторная обработка не должна плодить дубли сгенерированных документов
	if err := w.db.DeleteGeneratedDocuments(job.DebtorID); err != nil {
		return fmt.Errorf("failed to clear generated documents: %w", err)
	}
	generated := 0
	for _, r := range results {
		if r.Err != "" {
			continue
		}
		if err := w.db.AddDocument(job.DebtorID, r.Template, r.Output, "generated", true); err != nil {
			return fmt.Errorf("failed to register generated document: %w", err)
		}
		generated++
	}

	LogProcessingComplete(job.ID, job.DebtorID, len(paths), generated, time.Since(start))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// sleepCtx ждет d или отмену контекста. Возвращает false при отмене.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
