package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Job задание очереди обработки
type Job struct {
	ID           int64  `json:"id"`
	DebtorID     string `json:"debtor_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	StartedAt    string `json:"started_at,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	// FullName заполняется только в QueueStatus, в таблице jobs его нет.
	FullName string `json:"full_name,omitempty"`
}

// EnqueueJob ставит должника в очередь обработки.
func (db *DB) EnqueueJob(debtorID string) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO processing_jobs (debtor_id, status, created_at) VALUES (?, ?, ?)`,
		debtorID, StatusQueued, time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return res.LastInsertId()
}

// ClaimNextJob атомарно захватывает старейшее задание очереди.
// Обновление с условием status = 'queued' и проверка числа
// затронутых строк гарантируют, что задание достанется одному
// воркеру. Возвращает nil, если очередь пуста.
func (db *DB) ClaimNextJob() (*Job, error) {
	row := db.conn.QueryRow(
		`SELECT id, debtor_id, created_at FROM processing_jobs
		 WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		StatusQueued,
	)

	var job Job
	err := row.Scan(&job.ID, &job.DebtorID, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick job: %w", err)
	}

	res, err := db.conn.Exec(
		`UPDATE processing_jobs SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
		StatusProcessing, time.Now().Format(time.RFC3339), job.ID, StatusQueued,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check claim: %w", err)
	}
	if affected == 0 {
		// Задание успел взять кто-то другой
		return nil, nil
	}

	if err := db.UpdateDebtorStatus(job.DebtorID, StatusProcessing); err != nil {
		return nil, err
	}

	job.Status = StatusProcessing
	return &job, nil
}

// CompleteJob помечает задание выполненным.
func (db *DB) CompleteJob(jobID int64, debtorID string) error {
	_, err := db.conn.Exec(
		`UPDATE processing_jobs SET status = ?, finished_at = ? WHERE id = ?`,
		StatusCompleted, time.Now().Format(time.RFC3339), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return db.UpdateDebtorStatus(debtorID, StatusCompleted)
}

// FailJob помечает задание проваленным с текстом ошибки.
func (db *DB) FailJob(jobID int64, debtorID, message string) error {
	_, err := db.conn.Exec(
		`UPDATE processing_jobs SET status = 'failed', finished_at = ?, error_message = ? WHERE id = ?`,
		time.Now().Format(time.RFC3339), message, jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return db.UpdateDebtorStatus(debtorID, StatusError)
}

// ResetOrphanedJobs возвращает зависшие processing задания в очередь.
// Вызывается при старте: после падения процесса задания остаются
// захваченными, хотя их никто не обрабатывает.
func (db *DB) ResetOrphanedJobs() (int64, error) {
	res, err := db.conn.Exec(
		`UPDATE processing_jobs SET status = ?, started_at = NULL WHERE status = ?`,
		StatusQueued, StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset orphaned jobs: %w", err)
	}
	if _, err := db.conn.Exec(
		`UPDATE debtors SET status = ? WHERE status = ?`,
		StatusQueued, StatusProcessing,
	); err != nil {
		return 0, fmt.Errorf("failed to reset debtor statuses: %w", err)
	}
	return res.RowsAffected()
}

// QueueState состояние очереди обработки
type QueueState struct {
	Queued     int   `json:"queued"`
	Processing int   `json:"processing"`
	Jobs       []Job `json:"jobs"`
}

// QueueStatus возвращает очередь: счётчики и задания в порядке обработки.
// Позиция задания в очереди равна его индексу среди queued.
func (db *DB) QueueStatus() (*QueueState, error) {
	rows, err := db.conn.Query(
		`SELECT j.id, j.debtor_id, j.status, j.created_at, COALESCE(d.full_name, '')
		 FROM processing_jobs j
		 LEFT JOIN debtors d ON j.debtor_id = d.id
		 WHERE j.status IN (?, ?) ORDER BY j.created_at ASC, j.id ASC`,
		StatusQueued, StatusProcessing,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	state := &QueueState{Jobs: []Job{}}
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.DebtorID, &job.Status, &job.CreatedAt, &job.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		switch job.Status {
		case StatusQueued:
			state.Queued++
		case StatusProcessing:
			state.Processing++
		}
		state.Jobs = append(state.Jobs, job)
	}
	return state, rows.Err()
}
