package registry

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager владеет текущим снимком справочников и обновляет его по расписанию.
// Снимок неизменяемый, поэтому читатели работают без блокировок дольше,
// чем длится подмена указателя.
type Manager struct {
	updater *Updater
	store   *Store

	mu   sync.RWMutex
	snap *Snapshot
}

// NewManager создает менеджер справочников.
func NewManager(updater *Updater, store *Store) *Manager {
	return &Manager{updater: updater, store: store}
}

// Snapshot возвращает текущий снимок. До первой загрузки снимок пустой.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		empty, _ := NewSnapshot(nil, nil)
		return empty
	}
	return m.snap
}

// Load поднимает снимок с диска. Отсутствие сохранённых справочников
// не ошибка: снимок останется пустым до первого Refresh.
func (m *Manager) Load() error {
	snap, err := m.store.Load()
	if err != nil {
		return err
	}
	m.swap(snap)

	banks, mfo := snap.Size()
	if banks+mfo > 0 {
		log.Printf("[REGISTRY] loaded persisted snapshot: %d banks, %d MFO", banks, mfo)
	}
	return nil
}

// Refresh скачивает свежие справочники и подменяет снимок.
func (m *Manager) Refresh(ctx context.Context) error {
	snap, err := m.updater.Refresh(ctx)
	if err != nil {
		return err
	}
	m.swap(snap)
	return nil
}

// Run обновляет справочники каждый день в 3:00 до отмены контекста.
// Если на диске ничего нет, первое обновление выполняется сразу.
func (m *Manager) Run(ctx context.Context) {
	banks, mfo := m.Snapshot().Size()
	if banks+mfo == 0 {
		if err := m.Refresh(ctx); err != nil {
			log.Printf("[REGISTRY] initial refresh failed: %v", err)
		}
	}

	for {
		wait := time.Until(nextUpdateTime())
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			if err := m.Refresh(ctx); err != nil {
				log.Printf("[REGISTRY] scheduled refresh failed: %v", err)
			}
		}
	}
}

func (m *Manager) swap(snap *Snapshot) {
	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
}
