package registry

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Источники справочников ЦБ РФ. Банки выгружаются страницей
// FullCoList («Экспортировать в XLSX»), МФО — прямой ссылкой.
const (
	DefaultBanksURL = "https://cbr.ru/Queries/UniDbQuery/DownloadExcel/98547"
	DefaultMFOURL   = "https://cbr.ru/vfs/finmarkets/files/supervision/list_MFO.xlsx"
)

// Updater скачивает справочники ЦБ РФ и строит новый снимок.
// Обновление не мутирует текущий снимок: построенный Snapshot
// подменяется у владельца целиком.
type Updater struct {
	banksURL   string
	mfoURL     string
	httpClient *http.Client
	store      *Store
}

// NewUpdater создает обновлятор справочников.
func NewUpdater(store *Store, banksURL, mfoURL string) *Updater {
	if banksURL == "" {
		banksURL = DefaultBanksURL
	}
	if mfoURL == "" {
		mfoURL = DefaultMFOURL
	}

	return &Updater{
		banksURL: banksURL,
		mfoURL:   mfoURL,
		store:    store,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Refresh скачивает оба справочника, парсит их и возвращает новый снимок.
// Недоступность справочника МФО не фатальна: снимок строится только
// из банков. Недоступность обоих — ошибка.
func (u *Updater) Refresh(ctx context.Context) (*Snapshot, error) {
	banksPath, banksErr := u.download(ctx, u.banksURL, "banks_registry.xlsx")
	mfoPath, mfoErr := u.download(ctx, u.mfoURL, "mfo_registry.xlsx")

	var banks, mfo map[string]Entry

	if banksErr == nil {
		var err error
		banks, err = ParseBanksWorkbook(banksPath)
		if err != nil {
			log.Printf("[REGISTRY] failed to parse banks workbook: %v", err)
		}
	} else {
		log.Printf("[REGISTRY] failed to download banks registry: %v", banksErr)
	}

	if mfoErr == nil {
		var err error
		mfo, err = ParseMFOWorkbook(mfoPath)
		if err != nil {
			log.Printf("[REGISTRY] failed to parse MFO workbook: %v", err)
		}
	} else {
		log.Printf("[REGISTRY] failed to download MFO registry: %v", mfoErr)
	}

	if len(banks) == 0 && len(mfo) == 0 {
		return nil, fmt.Errorf("no registry data available: banks=%v, mfo=%v", banksErr, mfoErr)
	}

	snapshot, err := NewSnapshot(banks, mfo)
	if err != nil {
		return nil, err
	}

	banksCount, mfoCount := snapshot.Size()
	info := UpdateInfo{
		LastUpdate: time.Now(),
		NextUpdate: nextUpdateTime(),
		BanksCount: banksCount,
		MFOCount:   mfoCount,
		Status:     "success",
	}
	if err := u.store.Save(snapshot, info); err != nil {
		log.Printf("[REGISTRY] failed to persist snapshot: %v", err)
	}

	log.Printf("[REGISTRY] snapshot refreshed: %d banks, %d MFO", banksCount, mfoCount)
	return snapshot, nil
}

// download скачивает файл справочника в папку хранилища.
func (u *Updater) download(ctx context.Context, url, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	path := filepath.Join(u.store.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save %q: %w", path, err)
	}
	return path, nil
}

// Обновление планируется на 3:00 следующего дня.
func nextUpdateTime() time.Time {
	next := time.Now().AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 3, 0, 0, 0, next.Location())
}
