package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Имена файлов персистентного хранилища справочников.
const (
	banksFile      = "bank_registry.json"
	mfoFile        = "mfo_registry.json"
	lastUpdateFile = "last_update.json"
)

// UpdateInfo метаданные последнего обновления справочников.
type UpdateInfo struct {
	LastUpdate time.Time `json:"last_update"`
	NextUpdate time.Time `json:"next_update"`
	BanksCount int       `json:"banks_count"`
	MFOCount   int       `json:"mfo_count"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Store файловое хранилище снимков справочника.
// Снимок сохраняется двумя JSON-файлами плюс метаданные обновления.
type Store struct {
	dir string
}

// NewStore создает хранилище в указанной папке.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save записывает снимок и метаданные на диск.
func (st *Store) Save(s *Snapshot, info UpdateInfo) error {
	if err := writeJSON(filepath.Join(st.dir, banksFile), s.banks); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(st.dir, mfoFile), s.mfo); err != nil {
		return err
	}
	return writeJSON(filepath.Join(st.dir, lastUpdateFile), info)
}

// Load читает снимок с диска. Отсутствие файлов — не ошибка:
// возвращается пустой снимок, сервис работает только по внешнему поиску.
func (st *Store) Load() (*Snapshot, error) {
	banks := make(map[string]Entry)
	mfo := make(map[string]Entry)

	if err := readJSON(filepath.Join(st.dir, banksFile), &banks); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(st.dir, mfoFile), &mfo); err != nil {
		return nil, err
	}

	return NewSnapshot(banks, mfo)
}

// LastUpdateInfo читает метаданные последнего обновления.
func (st *Store) LastUpdateInfo() (UpdateInfo, error) {
	var info UpdateInfo
	if err := readJSON(filepath.Join(st.dir, lastUpdateFile), &info); err != nil {
		return UpdateInfo{}, err
	}
	if info.LastUpdate.IsZero() {
		info.Status = "never_updated"
	}
	return info, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return nil
}
