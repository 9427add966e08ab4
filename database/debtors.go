package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Статусы должника повторяют статусы его задания в очереди.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Debtor запись должника
type Debtor struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	DateAdded string `json:"date_added"`
	Status    string `json:"status"`
	RawData   string `json:"raw_data,omitempty"`
	Lawyer    string `json:"lawyer"`
}

// Document запись документа должника
type Document struct {
	ID          int64  `json:"id"`
	DebtorID    string `json:"debtor_id"`
	Filename    string `json:"filename"`
	Filepath    string `json:"filepath"`
	DocType     string `json:"doc_type"`
	IsGenerated bool   `json:"is_generated"`
}

// CreateDebtor создает запись должника со статусом queued.
func (db *DB) CreateDebtor(id, fullName, lawyer string) error {
	if lawyer == "" {
		lawyer = "urist1"
	}
	_, err := db.conn.Exec(
		`INSERT INTO debtors (id, full_name, date_added, status, lawyer) VALUES (?, ?, ?, ?, ?)`,
		id, fullName, time.Now().Format(time.RFC3339), StatusQueued, lawyer,
	)
	if err != nil {
		return fmt.Errorf("failed to create debtor: %w", err)
	}
	return nil
}

// GetDebtor возвращает должника по id.
func (db *DB) GetDebtor(id string) (*Debtor, error) {
	row := db.conn.QueryRow(
		`SELECT id, full_name, date_added, status, raw_data, lawyer FROM debtors WHERE id = ?`, id,
	)

	var d Debtor
	err := row.Scan(&d.ID, &d.FullName, &d.DateAdded, &d.Status, &d.RawData, &d.Lawyer)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debtor: %w", err)
	}
	return &d, nil
}

// ListDebtors возвращает должников, отфильтрованных по подстроке имени.
// Пустой запрос возвращает всех, свежие записи первыми.
func (db *DB) ListDebtors(search string) ([]Debtor, error) {
	rows, err := db.conn.Query(
		`SELECT id, full_name, date_added, status, lawyer FROM debtors
		 WHERE full_name LIKE ? ORDER BY date_added DESC`,
		"%"+search+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debtors: %w", err)
	}
	defer rows.Close()

	debtors := []Debtor{}
	for rows.Next() {
		var d Debtor
		if err := rows.Scan(&d.ID, &d.FullName, &d.DateAdded, &d.Status, &d.Lawyer); err != nil {
			return nil, fmt.Errorf("failed to scan debtor: %w", err)
		}
		debtors = append(debtors, d)
	}
	return debtors, rows.Err()
}

// UpdateDebtorStatus меняет статус должника.
func (db *DB) UpdateDebtorStatus(id, status string) error {
	_, err := db.conn.Exec(`UPDATE debtors SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update debtor status: %w", err)
	}
	return nil
}

// UpdateDebtorName меняет ФИО должника.
func (db *DB) UpdateDebtorName(id, fullName string) error {
	_, err := db.conn.Exec(`UPDATE debtors SET full_name = ? WHERE id = ?`, fullName, id)
	if err != nil {
		return fmt.Errorf("failed to update debtor name: %w", err)
	}
	return nil
}

// GetRawData возвращает сохранённую запись должника как JSON.
func (db *DB) GetRawData(id string) (string, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT raw_data FROM debtors WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get raw data: %w", err)
	}
	return raw, nil
}

// SaveRawData сохраняет запись должника как JSON.
func (db *DB) SaveRawData(id, rawJSON string) error {
	_, err := db.conn.Exec(`UPDATE debtors SET raw_data = ? WHERE id = ?`, rawJSON, id)
	if err != nil {
		return fmt.Errorf("failed to save raw data: %w", err)
	}
	return nil
}

// DeleteDebtor удаляет должника. Документы и задания уходят каскадом.
func (db *DB) DeleteDebtor(id string) error {
	_, err := db.conn.Exec(`DELETE FROM debtors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete debtor: %w", err)
	}
	return nil
}

// AddDocument регистрирует документ должника.
func (db *DB) AddDocument(debtorID, filename, filepath, docType string, generated bool) error {
	_, err := db.conn.Exec(
		`INSERT INTO documents (debtor_id, filename, filepath, doc_type, is_generated) VALUES (?, ?, ?, ?, ?)`,
		debtorID, filename, filepath, docType, generated,
	)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	return nil
}

// GetDocument возвращает документ по id. Возвращает nil, nil если документа нет.
func (db *DB) GetDocument(id int64) (*Document, error) {
	var d Document
	err := db.conn.QueryRow(
		`SELECT id, debtor_id, filename, filepath, doc_type, is_generated FROM documents WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.DebtorID, &d.Filename, &d.Filepath, &d.DocType, &d.IsGenerated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &d, nil
}

// ListDocuments возвращает документы должника.
func (db *DB) ListDocuments(debtorID string) ([]Document, error) {
	rows, err := db.conn.Query(
		`SELECT id, debtor_id, filename, filepath, doc_type, is_generated
		 FROM documents WHERE debtor_id = ? ORDER BY id`,
		debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.DebtorID, &d.Filename, &d.Filepath, &d.DocType, &d.IsGenerated); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteGeneratedDocuments удаляет записи о сгенерированных документах
// перед повторной генерацией.
func (db *DB) DeleteGeneratedDocuments(debtorID string) error {
	_, err := db.conn.Exec(`DELETE FROM documents WHERE debtor_id = ? AND is_generated = 1`, debtorID)
	if err != nil {
		return fmt.Errorf("failed to delete generated documents: %w", err)
	}
	return nil
}
