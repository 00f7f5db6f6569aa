package database

import (
	"context"
	"sync"

	"rpg-creator/shared/interfaces"
	"rpg-creator/shared/models"
)

var _ interfaces.DeviceStorage = (*MemoryDeviceStorage)(nil)

// MemoryDeviceStorage хранит значения в памяти процесса. Используется по умолчанию и в тестах.
type MemoryDeviceStorage struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemoryDeviceStorage создает пустое хранилище.
func NewMemoryDeviceStorage() *MemoryDeviceStorage {
	return &MemoryDeviceStorage{items: make(map[string]map[string]string)}
}

func (s *MemoryDeviceStorage) GetItem(_ context.Context, deviceID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[deviceID][key]
	if !ok {
		return "", models.ErrNotFound
	}
	return value, nil
}

func (s *MemoryDeviceStorage) SetItem(_ context.Context, deviceID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	device, ok := s.items[deviceID]
	if !ok {
		device = make(map[string]string)
		s.items[deviceID] = device
	}
	device[key] = value
	return nil
}

func (s *MemoryDeviceStorage) RemoveItem(_ context.Context, deviceID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[deviceID], key)
	return nil
}
