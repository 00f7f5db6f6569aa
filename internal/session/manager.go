package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rpg-creator/shared/constants"
	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// defaultIdleTTL - сколько Store без подписчиков живет в памяти после последнего обращения.
const defaultIdleTTL = 30 * time.Minute

// Manager выдает по одному Store на устройство. Store создается при первом обращении
// и поднимает текущую личность из rpg-user.
// Store без подписчиков, к которому не обращались дольше Options.IdleTTL, выбрасывается
// из памяти: его состояние уже лежит в хранилище и поднимется при следующем For.
type Manager struct {
	storage interfaces.DeviceStorage
	opts    Options
	now     func() time.Time
	logger  *zap.Logger

	mu        sync.Mutex
	stores    map[string]*managedStore
	lastSweep time.Time
}

type managedStore struct {
	store    *Store
	lastUsed time.Time
}

// NewManager создает менеджер сессий.
func NewManager(storage interfaces.DeviceStorage, opts Options, logger *zap.Logger) *Manager {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	return &Manager{
		storage: storage,
		opts:    opts,
		now:     time.Now,
		logger:  logger.Named("SessionStore"),
		stores:  make(map[string]*managedStore),
	}
}

// For возвращает сессию устройства.
func (m *Manager) For(ctx context.Context, deviceID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweepLocked(now)
	if entry, ok := m.stores[deviceID]; ok {
		entry.lastUsed = now
		return entry.store, nil
	}

	store := &Store{
		deviceID: deviceID,
		storage:  m.storage,
		opts:     m.opts,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   m.logger.With(zap.String("deviceID", deviceID)),
	}
	var identity models.Identity
	found, err := interfaces.LoadJSON(ctx, m.storage, deviceID, constants.StorageKeyCurrentUser, &identity)
	if err != nil {
		return nil, fmt.Errorf("failed to load current identity: %w", err)
	}
	if found {
		store.current = &identity
	}
	m.stores[deviceID] = &managedStore{store: store, lastUsed: now}
	return store, nil
}

// Len возвращает число сессий в памяти.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// sweepLocked выбрасывает простаивающие сессии не чаще раза в IdleTTL.
// Сессия с подписчиками (открытый WebSocket) или с идущей операцией остается.
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < m.opts.IdleTTL {
		return
	}
	m.lastSweep = now
	evicted := 0
	for deviceID, entry := range m.stores {
		if now.Sub(entry.lastUsed) < m.opts.IdleTTL || entry.store.subject.Len() > 0 {
			continue
		}
		if !entry.store.opMu.TryLock() {
			continue
		}
		entry.store.opMu.Unlock()
		delete(m.stores, deviceID)
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug("Idle sessions evicted", zap.Int("evicted", evicted), zap.Int("remaining", len(m.stores)))
	}
}
